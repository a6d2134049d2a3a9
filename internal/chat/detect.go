package chat

// detect.go implements roomedit.VisionDetectionService. Gemini returns boxes
// as box_2d [ymin, xmin, ymax, xmax] on a 0-1000 grid; they are converted to
// normalized [x1, y1, x2, y2] here, once, and every object goes through
// roomedit.NormalizeObject before it reaches a catalog.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/assets"
	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/jsonutil"
	"github.com/fpang/roomedit/internal/roomedit"
)

// MaxDetectedObjects caps the catalog at the main pieces of the room.
const MaxDetectedObjects = 6

// boxScale is Gemini's box_2d grid size.
const boxScale = 1000.0

// ImageSource reads image bytes by ref.
type ImageSource interface {
	Get(ctx context.Context, ref roomedit.ImageRef) (imagestore.Blob, error)
}

// DetectionClient finds objects in room images with a Gemini vision model.
type DetectionClient struct {
	models ContentGenerator
	images ImageSource
	model  string
	max    int
}

var _ roomedit.VisionDetectionService = (*DetectionClient)(nil)

// NewDetectionClient returns a DetectionClient reading images from images.
func NewDetectionClient(models ContentGenerator, images ImageSource, model string) *DetectionClient {
	if model == "" {
		model = GetModelName()
	}
	return &DetectionClient{models: models, images: images, model: model, max: MaxDetectedObjects}
}

type detectedBox struct {
	Label    string    `json:"label"`
	Name     string    `json:"name"`
	Category string    `json:"category"`
	Box2D    []float64 `json:"box_2d"`
}

func detectionSchema() *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeArray,
		Items: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"label": {Type: genai.TypeString},
				"category": {
					Type: genai.TypeString,
					Enum: []string{
						string(roomedit.CategoryFurniture),
						string(roomedit.CategorySurface),
						string(roomedit.CategoryLighting),
						string(roomedit.CategoryArchitectural),
					},
				},
				"box_2d": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeInteger}},
			},
			Required: []string{"label", "box_2d"},
		},
	}
}

// Detect implements roomedit.VisionDetectionService. Any call or parse
// failure is DetectionFailed; a clean answer with no usable objects is
// DetectionEmpty.
func (c *DetectionClient) Detect(ctx context.Context, ref roomedit.ImageRef) roomedit.DetectionResult {
	blob, err := c.images.Get(ctx, ref)
	if err != nil {
		return roomedit.Failed(fmt.Errorf("load image: %w", err))
	}

	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: blob.ContentType, Data: blob.Data}},
		{Text: assets.RenderDetectionPrompt(c.max)},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   detectionSchema(),
	}

	log.Debug().
		Str("model", c.model).
		Str("image", string(ref)).
		Int("image_bytes", len(blob.Data)).
		Msg("Starting Gemini API call for object detection")

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Object detection call failed")
		return roomedit.Failed(fmt.Errorf("failed to generate content: %w", err))
	}
	if resp == nil {
		return roomedit.Failed(fmt.Errorf("received empty response from Gemini API"))
	}

	raw := resp.Text()
	boxes, err := jsonutil.ParseJSON[[]detectedBox](raw)
	if err != nil {
		log.Warn().Err(err).Str("response", truncate(raw, 300)).Msg("Unparseable detection response")
		return roomedit.Failed(fmt.Errorf("failed to parse detection response: %w", err))
	}

	catalog := c.normalize(boxes)
	log.Info().
		Str("image", string(ref)).
		Int("returned", len(boxes)).
		Int("kept", len(catalog)).
		Dur("duration", elapsed).
		Msg("Objects detected")
	return roomedit.Found(catalog)
}

// normalize converts boxes into a catalog, dropping invalid entries and
// keeping at most c.max objects.
func (c *DetectionClient) normalize(boxes []detectedBox) roomedit.Catalog {
	var catalog roomedit.Catalog
	for i, b := range boxes {
		if len(catalog) >= c.max {
			break
		}
		raw := roomedit.RawObject{Label: b.Label, Name: b.Name, Category: b.Category}
		if bbox, ok := fromBox2D(b.Box2D); ok {
			raw.BBox = bbox
		}
		obj, err := roomedit.NormalizeObject(raw, fmt.Sprintf("obj_%d", i+1))
		if err != nil {
			log.Debug().Err(err).Int("index", i).Msg("Dropping detected object")
			continue
		}
		catalog = append(catalog, obj)
	}
	return catalog
}

// fromBox2D converts [ymin, xmin, ymax, xmax] on the 0-1000 grid into
// normalized [x1, y1, x2, y2], reordering swapped corners.
func fromBox2D(box []float64) ([]float64, bool) {
	if len(box) != 4 {
		return nil, false
	}
	y1, x1, y2, x2 := box[0]/boxScale, box[1]/boxScale, box[2]/boxScale, box[3]/boxScale
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	b := roomedit.BBox{x1, y1, x2, y2}.Clamp()
	return b[:], true
}
