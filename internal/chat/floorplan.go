package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"

	"github.com/fpang/roomedit/internal/assets"
	"github.com/fpang/roomedit/internal/floorplan"
	"github.com/fpang/roomedit/internal/jsonutil"
)

// FloorPlanClient reads rooms, doors and windows off a floor plan image with
// a Gemini vision model. Its output feeds floorplan.Plan.Adjacency.
type FloorPlanClient struct {
	models ContentGenerator
	model  string
}

// NewFloorPlanClient returns a FloorPlanClient. An empty model uses
// GetModelName.
func NewFloorPlanClient(models ContentGenerator, model string) *FloorPlanClient {
	if model == "" {
		model = GetModelName()
	}
	return &FloorPlanClient{models: models, model: model}
}

func floorPlanSchema() *genai.Schema {
	wall := &genai.Schema{Type: genai.TypeString, Enum: []string{"north", "south", "east", "west"}}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"rooms": {
				Type: genai.TypeArray,
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"name": {Type: genai.TypeString},
						"type": {Type: genai.TypeString},
						"doors": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"position":    wall,
									"type":        {Type: genai.TypeString},
									"connects_to": {Type: genai.TypeString},
								},
								Required: []string{"position"},
							},
						},
						"windows": {
							Type: genai.TypeArray,
							Items: &genai.Schema{
								Type: genai.TypeObject,
								Properties: map[string]*genai.Schema{
									"position": wall,
									"count":    {Type: genai.TypeInteger},
									"type":     {Type: genai.TypeString},
								},
								Required: []string{"position"},
							},
						},
						"adjacent_rooms": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
					},
					Required: []string{"name"},
				},
			},
		},
		Required: []string{"rooms"},
	}
}

// Analyze extracts the rooms of the floor plan in data. hint is an optional
// description such as "two-bedroom apartment". Rooms without a name are
// dropped; a plan with no rooms left is an error.
func (c *FloorPlanClient) Analyze(ctx context.Context, data []byte, contentType, hint string) (*floorplan.Plan, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("floor plan image is empty")
	}
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: contentType, Data: data}},
		{Text: assets.RenderFloorPlanPrompt(hint)},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   floorPlanSchema(),
	}

	log.Debug().
		Str("model", c.model).
		Int("image_bytes", len(data)).
		Msg("Starting Gemini API call for floor plan analysis")

	start := time.Now()
	resp, err := c.models.GenerateContent(ctx, c.model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	elapsed := time.Since(start)
	if err != nil {
		log.Error().Err(err).Dur("duration", elapsed).Msg("Floor plan analysis call failed")
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}
	if resp == nil {
		return nil, fmt.Errorf("received empty response from Gemini API")
	}

	raw := resp.Text()
	plan, err := jsonutil.ParseJSON[floorplan.Plan](raw)
	if err != nil {
		log.Warn().Err(err).Str("response", truncate(raw, 300)).Msg("Unparseable floor plan response")
		return nil, fmt.Errorf("failed to parse floor plan response: %w", err)
	}

	rooms := plan.Rooms[:0]
	for _, r := range plan.Rooms {
		r.Name = strings.TrimSpace(r.Name)
		if r.Name == "" {
			log.Debug().Str("type", r.Type).Msg("Dropping unnamed room")
			continue
		}
		rooms = append(rooms, r)
	}
	plan.Rooms = rooms
	if len(plan.Rooms) == 0 {
		return nil, fmt.Errorf("no rooms found in floor plan")
	}

	log.Info().
		Int("rooms", len(plan.Rooms)).
		Dur("duration", elapsed).
		Msg("Floor plan analyzed")
	return &plan, nil
}
