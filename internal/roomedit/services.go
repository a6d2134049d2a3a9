package roomedit

import "context"

// IntentContext is what the language service may know about the room when it
// parses a request.
type IntentContext struct {
	HasPreviousImage bool
	Catalog          Catalog
}

// LanguageIntentService turns free text into a structured instruction.
type LanguageIntentService interface {
	ParseIntent(ctx context.Context, text string, ictx IntentContext) (EditInstruction, error)
}

// DetectionStatus distinguishes the three outcomes of a detection call.
type DetectionStatus string

// Detection outcomes. "No objects" and "detection failed" are never collapsed.
const (
	DetectionFound  DetectionStatus = "found"
	DetectionEmpty  DetectionStatus = "empty"
	DetectionFailed DetectionStatus = "failed"
)

// DetectionResult is the outcome of a VisionDetectionService call.
type DetectionResult struct {
	Status  DetectionStatus
	Objects Catalog
	// Err is set when Status is DetectionFailed.
	Err error
}

// Found returns a successful result, or an empty one for no objects.
func Found(objects Catalog) DetectionResult {
	if len(objects) == 0 {
		return DetectionResult{Status: DetectionEmpty}
	}
	return DetectionResult{Status: DetectionFound, Objects: objects}
}

// Failed returns a failed result carrying err.
func Failed(err error) DetectionResult {
	return DetectionResult{Status: DetectionFailed, Err: err}
}

// VisionDetectionService finds objects in an image.
type VisionDetectionService interface {
	Detect(ctx context.Context, image ImageRef) DetectionResult
}

// ImageSynthesisService renders and inpaints images.
type ImageSynthesisService interface {
	Generate(ctx context.Context, prompt string, size Size) (ImageRef, error)
	Inpaint(ctx context.Context, prompt string, base ImageRef, mask MaskRect, size Size) (ImageRef, error)
}
