package chat

// intent.go implements roomedit.LanguageIntentService with Gemini structured
// output. The catalog goes into the prompt so the model can only name objects
// that exist; the roomedit classifier still drops anything it invents.

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/assets"
	"github.com/fpang/roomedit/internal/jsonutil"
	"github.com/fpang/roomedit/internal/roomedit"
)

// IntentClient parses edit requests with a Gemini model.
type IntentClient struct {
	models ContentGenerator
	model  string
}

var _ roomedit.LanguageIntentService = (*IntentClient)(nil)

// NewIntentClient returns an IntentClient calling model through models
// (usually client.Models).
func NewIntentClient(models ContentGenerator, model string) *IntentClient {
	if model == "" {
		model = GetModelName()
	}
	return &IntentClient{models: models, model: model}
}

// --- Wire format ---

type intentResponse struct {
	Intent      string          `json:"intent"`
	Edits       []intentEdit    `json:"edits"`
	Constraints intentConstrain `json:"constraints"`
}

type intentEdit struct {
	Target     string            `json:"target"`
	Action     string            `json:"action"`
	Attributes []intentAttribute `json:"attributes"`
}

// intentAttribute is a key/value pair; a schema cannot describe a map with
// free-form keys.
type intentAttribute struct {
	Name  string  `json:"name"`
	Value *string `json:"value"`
}

type intentConstrain struct {
	PreserveLayout   bool `json:"preserveLayout"`
	PreserveLighting bool `json:"preserveLighting"`
	PreserveCamera   bool `json:"preserveCamera"`
}

func intentSchema() *genai.Schema {
	str := &genai.Schema{Type: genai.TypeString}
	flag := &genai.Schema{Type: genai.TypeBoolean}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"intent": {
				Type: genai.TypeString,
				Enum: []string{string(roomedit.IntentGenerateRoom), string(roomedit.IntentEditObjects), string(roomedit.IntentRegenerateRoom)},
			},
			"edits": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"target": str,
						"action": {Type: genai.TypeString, Enum: []string{string(roomedit.ActionModify), string(roomedit.ActionReplace)}},
						"attributes": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"name":  str,
									"value": {Type: genai.TypeString, Nullable: boolPtr(true)},
								},
								Required: []string{"name", "value"},
							},
						},
					},
					Required: []string{"target", "action"},
				},
			},
			"constraints": {
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"preserveLayout":   flag,
					"preserveLighting": flag,
					"preserveCamera":   flag,
				},
			},
		},
		Required: []string{"intent"},
	}
}

// ParseIntent implements roomedit.LanguageIntentService.
func (c *IntentClient) ParseIntent(ctx context.Context, text string, ictx roomedit.IntentContext) (roomedit.EditInstruction, error) {
	data := assets.IntentPromptData{HasPreviousImage: ictx.HasPreviousImage, Request: text}
	for _, o := range ictx.Catalog {
		data.Objects = append(data.Objects, assets.PromptObject{Label: o.Label, Category: string(o.Category)})
	}
	prompt := assets.RenderIntentPrompt(data)

	config := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: assets.IntentSystemPrompt}}},
		ResponseMIMEType:  "application/json",
		ResponseSchema:    intentSchema(),
	}
	contents := []*genai.Content{{Role: "user", Parts: []*genai.Part{{Text: prompt}}}}

	log.Debug().
		Str("model", c.model).
		Int("catalog_size", len(ictx.Catalog)).
		Str("request", truncate(text, 100)).
		Msg("Starting Gemini API call for intent parsing")

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, contents, config)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Intent parsing call failed")
		return roomedit.EditInstruction{}, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return roomedit.EditInstruction{}, fmt.Errorf("received empty response from Gemini API")
	}

	raw := resp.Text()
	parsed, err := jsonutil.ParseJSON[intentResponse](raw)
	if err != nil {
		log.Warn().Err(err).Str("response", truncate(raw, 300)).Msg("Unparseable intent response")
		return roomedit.EditInstruction{}, fmt.Errorf("failed to parse intent response: %w", err)
	}

	instr := parsed.instruction(text)
	log.Debug().
		Str("intent", string(instr.Intent)).
		Int("edits", len(instr.Edits)).
		Dur("duration", elapsed).
		Msg("Intent parsed")
	return instr, nil
}

func (r intentResponse) instruction(text string) roomedit.EditInstruction {
	instr := roomedit.EditInstruction{
		Intent:  roomedit.Intent(r.Intent),
		Request: text,
		Constraints: roomedit.Constraints{
			PreserveLayout:   r.Constraints.PreserveLayout,
			PreserveLighting: r.Constraints.PreserveLighting,
			PreserveCamera:   r.Constraints.PreserveCamera,
		},
	}
	for _, e := range r.Edits {
		edit := roomedit.TargetedEdit{Target: e.Target, Action: roomedit.Action(e.Action)}
		if len(e.Attributes) > 0 {
			edit.Attributes = make(map[string]*string, len(e.Attributes))
			for _, a := range e.Attributes {
				if a.Name != "" {
					edit.Attributes[a.Name] = a.Value
				}
			}
		}
		instr.Edits = append(instr.Edits, edit)
	}
	return instr
}
