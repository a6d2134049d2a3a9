// Package assets embeds the prompt templates sent to Gemini.
//
// Prompts are plain text files under prompts/ so they can be reviewed and
// edited without touching Go code.
package assets

import (
	_ "embed"
	"text/template"
)

// IntentSystemPrompt instructs the model how to classify a room-edit request.
//
//go:embed prompts/intent-system.txt
var IntentSystemPrompt string

//go:embed prompts/intent-user.txt
var intentUserTemplate string

//go:embed prompts/detection.txt
var detectionTemplate string

//go:embed prompts/floorplan.txt
var floorPlanTemplate string

// template.Must panics on a malformed template at startup rather than at
// call time.
var (
	intentUserTmpl = template.Must(template.New("intent-user").Parse(intentUserTemplate))
	detectionTmpl  = template.Must(template.New("detection").Parse(detectionTemplate))
	floorPlanTmpl  = template.Must(template.New("floorplan").Parse(floorPlanTemplate))
)
