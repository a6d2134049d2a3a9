package chat

import (
	"context"
	"os"

	"google.golang.org/genai"
)

// Model IDs
//
// | Model                     | API Model ID               | Used for                    |
// |---------------------------|----------------------------|-----------------------------|
// | Gemini 3 Flash (Preview)  | gemini-3-flash-preview     | Intent parsing, detection   |
// | Gemini 2.5 Flash          | gemini-2.5-flash           | Stable fallback             |
// | Imagen 3 Generate         | imagen-3.0-generate-002    | Whole-room generation       |
// | Imagen 3 Capability       | imagen-3.0-capability-001  | Mask-based inpainting       |
const (
	ModelGemini3FlashPreview = "gemini-3-flash-preview"
	ModelGemini25Flash       = "gemini-2.5-flash"
	ModelImagenGenerate      = "imagen-3.0-generate-002"
	ModelImagenCapability    = "imagen-3.0-capability-001"
)

// DefaultModelName is the Gemini model used for text and vision calls.
const DefaultModelName = ModelGemini3FlashPreview

// GetModelName returns GEMINI_MODEL, or DefaultModelName.
func GetModelName() string {
	if env := os.Getenv("GEMINI_MODEL"); env != "" {
		return env
	}
	return DefaultModelName
}

// GetImagenModel returns IMAGEN_MODEL, or the Imagen generate model.
func GetImagenModel() string {
	if env := os.Getenv("IMAGEN_MODEL"); env != "" {
		return env
	}
	return ModelImagenGenerate
}

// ContentGenerator is the part of *genai.Models used for text and vision.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// ImageGenerator is the part of *genai.Models used for image generation.
type ImageGenerator interface {
	GenerateImages(ctx context.Context, model, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error)
}

// NewClient creates a Gemini API client.
func NewClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	return genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func boolPtr(b bool) *bool { return &b }
