package chat

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/roomedit"
)

// --- Fakes ---

type fakeModels struct {
	text   string
	err    error
	model  string
	config *genai.GenerateContentConfig
	parts  []*genai.Part
}

func (f *fakeModels) GenerateContent(_ context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	f.model, f.config = model, config
	if len(contents) > 0 {
		f.parts = contents[0].Parts
	}
	if f.err != nil {
		return nil, f.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{Content: &genai.Content{Parts: []*genai.Part{{Text: f.text}}}}},
	}, nil
}

type memBlobs struct {
	blobs map[roomedit.ImageRef]imagestore.Blob
	n     int
}

func newMemBlobs() *memBlobs { return &memBlobs{blobs: map[roomedit.ImageRef]imagestore.Blob{}} }

func (m *memBlobs) Put(_ context.Context, data []byte, ct string) (roomedit.ImageRef, error) {
	m.n++
	ref := roomedit.ImageRef("mem://" + string(rune('a'+m.n)))
	m.blobs[ref] = imagestore.Blob{Data: data, ContentType: ct}
	return ref, nil
}

func (m *memBlobs) Get(_ context.Context, ref roomedit.ImageRef) (imagestore.Blob, error) {
	b, ok := m.blobs[ref]
	if !ok {
		return imagestore.Blob{}, imagestore.ErrNotFound
	}
	return b, nil
}

func solidPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 180, B: 160, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// --- Intent ---

func TestIntentClient_ParseIntent(t *testing.T) {
	models := &fakeModels{text: "```json\n" + `{
		"intent": "edit_objects",
		"edits": [{"target": "sofa", "action": "modify", "attributes": [
			{"name": "color", "value": "green"},
			{"name": "material", "value": null}
		]}],
		"constraints": {"preserveLighting": true}
	}` + "\n```"}
	c := NewIntentClient(models, "test-model")
	instr, err := c.ParseIntent(context.Background(), "make the sofa green", roomedit.IntentContext{
		HasPreviousImage: true,
		Catalog:          roomedit.Catalog{{ID: "o1", Label: "sofa", Category: roomedit.CategoryFurniture, BBox: roomedit.BBox{0.1, 0.1, 0.4, 0.4}}},
	})
	if err != nil {
		t.Fatalf("ParseIntent() error = %v", err)
	}
	if instr.Intent != roomedit.IntentEditObjects || len(instr.Edits) != 1 {
		t.Fatalf("ParseIntent() = %+v", instr)
	}
	attrs := instr.Edits[0].Attributes
	if v := attrs["color"]; v == nil || *v != "green" {
		t.Errorf("color = %v, want green", v)
	}
	if v, ok := attrs["material"]; !ok || v != nil {
		t.Errorf("material = %v, %v, want explicit null", v, ok)
	}
	if !instr.Constraints.PreserveLighting || instr.Request != "make the sofa green" {
		t.Errorf("ParseIntent() = %+v", instr)
	}
	if models.model != "test-model" || models.config.ResponseMIMEType != "application/json" || models.config.ResponseSchema == nil {
		t.Errorf("call config = %s %+v", models.model, models.config)
	}
	if !strings.Contains(models.parts[0].Text, "- sofa (furniture)") {
		t.Errorf("prompt does not list the catalog:\n%s", models.parts[0].Text)
	}
}

func TestIntentClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
	}{
		{"call fails", &fakeModels{err: errors.New("deadline")}},
		{"not json", &fakeModels{text: "I think you want a green sofa."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewIntentClient(tt.models, "m").ParseIntent(context.Background(), "x", roomedit.IntentContext{}); err == nil {
				t.Error("ParseIntent() error = nil")
			}
		})
	}
}

// --- Detection ---

func TestDetectionClient_Detect(t *testing.T) {
	blobs := newMemBlobs()
	ref, _ := blobs.Put(context.Background(), solidPNG(t, 4, 4), "image/png")
	models := &fakeModels{text: `[
		{"label": "sofa", "category": "furniture", "box_2d": [100, 200, 400, 600]},
		{"label": "floor lamp", "category": "lighting", "box_2d": [300, 900, 100, 800]},
		{"label": "", "category": "furniture", "box_2d": [0, 0, 10, 10]},
		{"label": "ghost", "box_2d": [1, 2]}
	]`}
	res := NewDetectionClient(models, blobs, "m").Detect(context.Background(), ref)
	if res.Status != roomedit.DetectionFound {
		t.Fatalf("Status = %q, err = %v", res.Status, res.Err)
	}
	if len(res.Objects) != 2 {
		t.Fatalf("Objects = %+v, want 2 valid objects", res.Objects)
	}
	sofa := res.Objects[0]
	if sofa.ID != "obj_1" || sofa.BBox != (roomedit.BBox{0.2, 0.1, 0.6, 0.4}) {
		t.Errorf("sofa = %+v, want obj_1 with [0.2 0.1 0.6 0.4]", sofa)
	}
	lamp := res.Objects[1]
	if lamp.BBox != (roomedit.BBox{0.8, 0.1, 0.9, 0.3}) || lamp.Category != roomedit.CategoryLighting {
		t.Errorf("lamp = %+v, want reordered box", lamp)
	}
	if models.parts[0].InlineData == nil || models.parts[0].InlineData.MIMEType != "image/png" {
		t.Error("image part missing from detection request")
	}
}

func TestDetectionClient_ThreeStates(t *testing.T) {
	blobs := newMemBlobs()
	ref, _ := blobs.Put(context.Background(), solidPNG(t, 4, 4), "image/png")
	tests := []struct {
		name   string
		models *fakeModels
		ref    roomedit.ImageRef
		want   roomedit.DetectionStatus
	}{
		{"none found", &fakeModels{text: "[]"}, ref, roomedit.DetectionEmpty},
		{"call failed", &fakeModels{err: errors.New("500")}, ref, roomedit.DetectionFailed},
		{"garbage", &fakeModels{text: "no objects, sorry"}, ref, roomedit.DetectionFailed},
		{"missing image", &fakeModels{text: "[]"}, "mem://missing", roomedit.DetectionFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := NewDetectionClient(tt.models, blobs, "m").Detect(context.Background(), tt.ref)
			if res.Status != tt.want {
				t.Errorf("Status = %q, want %q", res.Status, tt.want)
			}
			if (res.Status == roomedit.DetectionFailed) != (res.Err != nil) {
				t.Errorf("Err = %v for status %q", res.Err, res.Status)
			}
		})
	}
}

func TestDetectionClient_CapsObjects(t *testing.T) {
	var entries []string
	for i := 0; i < 9; i++ {
		entries = append(entries, `{"label": "chair", "box_2d": [100, 100, 200, 200]}`)
	}
	blobs := newMemBlobs()
	ref, _ := blobs.Put(context.Background(), solidPNG(t, 2, 2), "image/png")
	res := NewDetectionClient(&fakeModels{text: "[" + strings.Join(entries, ",") + "]"}, blobs, "m").Detect(context.Background(), ref)
	if len(res.Objects) != MaxDetectedObjects {
		t.Errorf("len(Objects) = %d, want %d", len(res.Objects), MaxDetectedObjects)
	}
}

// --- Imagen ---

func TestImagenClient_Inpaint(t *testing.T) {
	var got imagenRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/models/"+ModelImagenCapability+":predict") {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer tok" {
			t.Errorf("Authorization = %q", r.Header.Get("Authorization"))
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		json.NewEncoder(w).Encode(imagenResponse{Predictions: []imagenPrediction{{
			BytesBase64Encoded: base64.StdEncoding.EncodeToString([]byte("edited")),
			MimeType:           "image/png",
		}}})
	}))
	defer server.Close()

	blobs := newMemBlobs()
	base, _ := blobs.Put(context.Background(), solidPNG(t, 32, 16), "image/png")
	c := NewImagenClient(nil, "m", VertexConfig{ProjectID: "p", Region: "us-central1", AccessToken: "tok", BaseURL: server.URL}, blobs)

	size := roomedit.Square(64)
	ref, err := c.Inpaint(context.Background(), "make it green", base, roomedit.MaskRect{X: 8, Y: 8, Width: 16, Height: 16}, size)
	if err != nil {
		t.Fatalf("Inpaint() error = %v", err)
	}
	if string(blobs.blobs[ref].Data) != "edited" {
		t.Errorf("stored = %q, want the edited image", blobs.blobs[ref].Data)
	}
	if len(got.Instances) != 1 || got.Instances[0].Prompt != "make it green" || got.Instances[0].Mask == nil {
		t.Fatalf("request = %+v", got)
	}

	// Base image was scaled to the canvas so the mask aligns.
	raw, _ := base64.StdEncoding.DecodeString(got.Instances[0].Image.BytesBase64Encoded)
	cfg, err := png.DecodeConfig(bytes.NewReader(raw))
	if err != nil || cfg.Width != 64 || cfg.Height != 64 {
		t.Errorf("base image = %dx%d (%v), want 64x64", cfg.Width, cfg.Height, err)
	}
}

func TestImagenClient_InpaintRequiresVertex(t *testing.T) {
	c := NewImagenClient(nil, "m", VertexConfig{}, newMemBlobs())
	if _, err := c.Inpaint(context.Background(), "p", "mem://x", roomedit.MaskRect{Width: 1, Height: 1}, roomedit.Square(8)); err == nil {
		t.Error("Inpaint() error = nil without Vertex config")
	}
}

func TestImagenClient_InpaintAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"code":400,"message":"bad mask"}}`, http.StatusBadRequest)
	}))
	defer server.Close()
	blobs := newMemBlobs()
	base, _ := blobs.Put(context.Background(), solidPNG(t, 8, 8), "image/png")
	c := NewImagenClient(nil, "m", VertexConfig{ProjectID: "p", Region: "r", AccessToken: "t", BaseURL: server.URL}, blobs)
	_, err := c.Inpaint(context.Background(), "p", base, roomedit.MaskRect{Width: 2, Height: 2}, roomedit.Square(8))
	if err == nil || !strings.Contains(err.Error(), "400") {
		t.Errorf("Inpaint() error = %v, want status 400", err)
	}
}

func TestRenderMask(t *testing.T) {
	data, err := RenderMask(roomedit.Square(10), roomedit.MaskRect{X: 2, Y: 3, Width: 4, Height: 5})
	if err != nil {
		t.Fatalf("RenderMask() error = %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	white := func(x, y int) bool {
		r, _, _, _ := img.At(x, y).RGBA()
		return r > 0x8000
	}
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			inside := x >= 2 && x < 6 && y >= 3 && y < 8
			if white(x, y) != inside {
				t.Fatalf("pixel (%d,%d) white = %v, want %v", x, y, white(x, y), inside)
			}
		}
	}
	if _, err := RenderMask(roomedit.Square(10), roomedit.MaskRect{X: 20, Y: 20, Width: 2, Height: 2}); err == nil {
		t.Error("RenderMask() outside canvas error = nil")
	}
}

func TestFloorPlanClient_Analyze(t *testing.T) {
	models := &fakeModels{text: "```json\n" + `{"rooms": [
		{"name": " Living Room ", "type": "living_room",
		 "doors": [{"position": "west", "type": "standard", "connects_to": "Kitchen"}],
		 "windows": [{"position": "north", "count": 2}],
		 "adjacent_rooms": ["Kitchen"]},
		{"name": "", "type": "closet"},
		{"name": "Kitchen", "doors": [{"position": "east", "connects_to": "Living Room"}]}
	]}` + "\n```"}
	plan, err := NewFloorPlanClient(models, "m").Analyze(context.Background(), solidPNG(t, 4, 4), "image/png", "apartment")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Living Room", "Kitchen"}, plan.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
	adj, err := plan.Adjacency("living room")
	if err != nil {
		t.Fatalf("Adjacency() error = %v", err)
	}
	if diff := cmp.Diff(roomedit.RoomAdjacency{roomedit.WallWest: {"Kitchen"}}, adj); diff != "" {
		t.Errorf("Adjacency() mismatch (-want +got):\n%s", diff)
	}
	if models.model != "m" || models.config.ResponseSchema == nil || models.config.ResponseMIMEType != "application/json" {
		t.Errorf("request model = %q, config = %+v", models.model, models.config)
	}
	if models.parts[0].InlineData == nil || models.parts[0].InlineData.MIMEType != "image/png" {
		t.Error("image part missing from floor plan request")
	}
	if !strings.Contains(models.parts[1].Text, "apartment") {
		t.Errorf("prompt = %q, want the hint", models.parts[1].Text)
	}
}

func TestFloorPlanClient_Errors(t *testing.T) {
	tests := []struct {
		name   string
		models *fakeModels
		data   []byte
	}{
		{"empty image", &fakeModels{text: `{"rooms": [{"name": "Den"}]}`}, nil},
		{"call fails", &fakeModels{err: errors.New("deadline")}, []byte("png")},
		{"not json", &fakeModels{text: "This looks like a two-bedroom flat."}, []byte("png")},
		{"no rooms", &fakeModels{text: `{"rooms": []}`}, []byte("png")},
		{"only unnamed rooms", &fakeModels{text: `{"rooms": [{"name": "  "}]}`}, []byte("png")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewFloorPlanClient(tt.models, "m").Analyze(context.Background(), tt.data, "image/png", ""); err == nil {
				t.Error("Analyze() error = nil, want error")
			}
		})
	}
}
