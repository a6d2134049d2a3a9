package chat

// imagen.go implements roomedit.ImageSynthesisService. Whole-room generation
// goes through the genai SDK; mask-based inpainting goes through the Vertex AI
// Imagen capability REST endpoint, which the SDK does not expose for API-key
// clients.

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	"image/png"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/roomedit"
)

// ImageSink stores image bytes and returns their ref.
type ImageSink interface {
	Put(ctx context.Context, data []byte, contentType string) (roomedit.ImageRef, error)
}

// VertexConfig locates the Imagen capability model.
type VertexConfig struct {
	ProjectID   string
	Region      string
	AccessToken string // GCP OAuth2 access token, not the Gemini API key
	// BaseURL overrides https://{region}-aiplatform.googleapis.com.
	BaseURL string
}

// VertexConfigFromEnv reads VERTEX_AI_PROJECT, VERTEX_AI_REGION (default
// us-central1) and VERTEX_AI_TOKEN.
func VertexConfigFromEnv() VertexConfig {
	region := os.Getenv("VERTEX_AI_REGION")
	if region == "" {
		region = "us-central1"
	}
	return VertexConfig{
		ProjectID:   os.Getenv("VERTEX_AI_PROJECT"),
		Region:      region,
		AccessToken: os.Getenv("VERTEX_AI_TOKEN"),
	}
}

// Configured reports whether inpainting can be called.
func (c VertexConfig) Configured() bool {
	return c.ProjectID != "" && c.Region != "" && c.AccessToken != ""
}

// ImagenClient generates and inpaints room images.
type ImagenClient struct {
	images     ImageGenerator
	model      string
	vertex     VertexConfig
	store      imagestore.BlobStore
	httpClient *http.Client
}

var _ roomedit.ImageSynthesisService = (*ImagenClient)(nil)

// NewImagenClient returns an ImagenClient that saves every output to store.
func NewImagenClient(images ImageGenerator, model string, vertex VertexConfig, store imagestore.BlobStore) *ImagenClient {
	if model == "" {
		model = GetImagenModel()
	}
	return &ImagenClient{
		images: images,
		model:  model,
		vertex: vertex,
		store:  store,
		httpClient: &http.Client{
			Timeout: 90 * time.Second,
		},
	}
}

// Generate renders a new room and stores it.
func (c *ImagenClient) Generate(ctx context.Context, prompt string, size roomedit.Size) (roomedit.ImageRef, error) {
	log.Debug().
		Str("model", c.model).
		Str("prompt", truncate(prompt, 100)).
		Str("size", size.String()).
		Msg("Generate: Starting Imagen call")

	start := time.Now()
	resp, err := c.images.GenerateImages(ctx, c.model, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "1:1",
		OutputMIMEType: "image/png",
	})
	if err != nil {
		return "", fmt.Errorf("generate images: %w", err)
	}
	if resp == nil || len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return "", fmt.Errorf("no images returned from Imagen")
	}

	out, err := fitPNG(resp.GeneratedImages[0].Image.ImageBytes, size)
	if err != nil {
		return "", err
	}
	ref, err := c.store.Put(ctx, out, "image/png")
	if err != nil {
		return "", fmt.Errorf("store generated image: %w", err)
	}
	log.Info().Str("ref", string(ref)).Dur("duration", time.Since(start)).Msg("Room image generated")
	return ref, nil
}

// --- Vertex AI Imagen request/response types ---

type imagenRequest struct {
	Instances  []imagenInstance `json:"instances"`
	Parameters imagenParameters `json:"parameters"`
}

type imagenInstance struct {
	Prompt string      `json:"prompt"`
	Image  imagenData  `json:"image"`
	Mask   *imagenMask `json:"mask,omitempty"`
}

type imagenData struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
}

type imagenMask struct {
	Image imagenData `json:"image"`
	// MASK_MODE_FOREGROUND: white pixels are edited.
	MaskMode string `json:"maskMode,omitempty"`
}

type imagenParameters struct {
	SampleCount int    `json:"sampleCount"`
	EditMode    string `json:"editMode,omitempty"`
}

type imagenResponse struct {
	Predictions []imagenPrediction `json:"predictions"`
	Error       *imagenError       `json:"error,omitempty"`
}

type imagenPrediction struct {
	BytesBase64Encoded string `json:"bytesBase64Encoded"`
	MimeType           string `json:"mimeType"`
}

type imagenError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Inpaint edits the masked rectangle of base and stores the result. The base
// image is first scaled to size so the mask, which is in canvas pixels,
// lines up with it.
func (c *ImagenClient) Inpaint(ctx context.Context, prompt string, base roomedit.ImageRef, mask roomedit.MaskRect, size roomedit.Size) (roomedit.ImageRef, error) {
	if !c.vertex.Configured() {
		return "", fmt.Errorf("inpainting requires VERTEX_AI_PROJECT, VERTEX_AI_REGION and VERTEX_AI_TOKEN")
	}
	blob, err := c.store.Get(ctx, base)
	if err != nil {
		return "", fmt.Errorf("load base image: %w", err)
	}
	baseData, err := fitPNG(blob.Data, size)
	if err != nil {
		return "", err
	}
	maskData, err := RenderMask(size, mask)
	if err != nil {
		return "", err
	}

	log.Debug().
		Str("base", string(base)).
		Interface("mask", mask).
		Str("prompt", truncate(prompt, 100)).
		Msg("Inpaint: Starting Imagen API call")

	start := time.Now()
	edited, err := c.predict(ctx, imagenRequest{
		Instances: []imagenInstance{{
			Prompt: prompt,
			Image:  imagenData{BytesBase64Encoded: base64.StdEncoding.EncodeToString(baseData)},
			Mask: &imagenMask{
				Image:    imagenData{BytesBase64Encoded: base64.StdEncoding.EncodeToString(maskData)},
				MaskMode: "MASK_MODE_FOREGROUND",
			},
		}},
		Parameters: imagenParameters{SampleCount: 1, EditMode: "inpainting-insert"},
	})
	if err != nil {
		return "", err
	}

	ref, err := c.store.Put(ctx, edited, "image/png")
	if err != nil {
		return "", fmt.Errorf("store edited image: %w", err)
	}
	log.Info().
		Str("base", string(base)).
		Str("ref", string(ref)).
		Dur("duration", time.Since(start)).
		Msg("Inpaint completed")
	return ref, nil
}

func (c *ImagenClient) predict(ctx context.Context, req imagenRequest) ([]byte, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	baseURL := c.vertex.BaseURL
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s-aiplatform.googleapis.com", c.vertex.Region)
	}
	url := fmt.Sprintf("%s/v1/projects/%s/locations/%s/publishers/google/models/%s:predict",
		baseURL, c.vertex.ProjectID, c.vertex.Region, ModelImagenCapability)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.vertex.AccessToken)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		log.Error().
			Int("status", resp.StatusCode).
			Str("body", truncate(string(respBody), 500)).
			Msg("Imagen API returned error")
		return nil, fmt.Errorf("API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 200))
	}

	var out imagenResponse
	if err := json.Unmarshal(respBody, &out); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if out.Error != nil {
		return nil, fmt.Errorf("API error: %s (code: %d)", out.Error.Message, out.Error.Code)
	}
	if len(out.Predictions) == 0 {
		return nil, fmt.Errorf("no predictions returned from Imagen")
	}
	decoded, err := base64.StdEncoding.DecodeString(out.Predictions[0].BytesBase64Encoded)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response image: %w", err)
	}
	return decoded, nil
}

// fitPNG decodes data and returns it as a PNG of exactly size. Images that
// already match are re-encoded without scaling.
func fitPNG(data []byte, size roomedit.Size) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}
	var out image.Image = src
	if b := src.Bounds(); b.Dx() != size.Width || b.Dy() != size.Height {
		dst := image.NewRGBA(image.Rect(0, 0, size.Width, size.Height))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		out = dst
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	return buf.Bytes(), nil
}
