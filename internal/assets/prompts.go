package assets

import (
	"bytes"
	"strings"
	"text/template"
)

// PromptObject is a catalog entry as shown to the intent model.
type PromptObject struct {
	Label    string
	Category string
}

// IntentPromptData is the dynamic part of the intent prompt.
type IntentPromptData struct {
	HasPreviousImage bool
	Objects          []PromptObject
	Request          string
}

// RenderIntentPrompt renders the per-request intent prompt.
func RenderIntentPrompt(data IntentPromptData) string {
	return render(intentUserTmpl, data)
}

// RenderDetectionPrompt renders the detection prompt for at most maxObjects.
func RenderDetectionPrompt(maxObjects int) string {
	return render(detectionTmpl, struct{ MaxObjects int }{maxObjects})
}

// RenderFloorPlanPrompt renders the floor plan analysis prompt. context is
// an optional hint such as "two-bedroom apartment".
func RenderFloorPlanPrompt(context string) string {
	return render(floorPlanTmpl, struct{ Context string }{strings.TrimSpace(context)})
}

func render(tmpl *template.Template, data any) string {
	var buf bytes.Buffer
	// The templates only read plain fields; execution cannot fail on them.
	_ = tmpl.Execute(&buf, data)
	return strings.TrimSpace(buf.String())
}
