// Package mcpserver exposes room-edit planning as a Model Context Protocol
// tool so an assistant can plan object-targeted edits and surface
// ambiguities to the user before any image is generated.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

// ToolPlanRoomEdit is the name of the planning tool.
const ToolPlanRoomEdit = "plan_room_edit"

// PlanInput is the tool input.
type PlanInput struct {
	Intent  string      `json:"intent" jsonschema:"generate_room, edit_objects or regenerate_room"`
	Request string      `json:"request" jsonschema:"the user's request, verbatim"`
	Edits   []EditArg   `json:"edits,omitempty" jsonschema:"objects to change, for edit_objects"`
	Image   string      `json:"image,omitempty" jsonschema:"reference of the latest image of the room, if any"`
	Objects []ObjectArg `json:"objects,omitempty" jsonschema:"objects detected in the latest image"`
	// Adjacency maps a wall (north, south, east, west) to rooms behind it.
	Adjacency map[string][]string `json:"adjacency,omitempty" jsonschema:"wall to adjacent rooms; walls with none are exterior"`
	Canvas    int                 `json:"canvas,omitempty" jsonschema:"square output resolution in pixels, default 1024"`
}

// EditArg is one targeted edit.
type EditArg struct {
	Target      string            `json:"target" jsonschema:"the object as the user named it"`
	ObjectID    string            `json:"objectId,omitempty" jsonschema:"catalog id when the user picked the object"`
	Action      string            `json:"action,omitempty" jsonschema:"modify or replace"`
	Instruction string            `json:"instruction,omitempty" jsonschema:"what to do to this object"`
	Attributes  map[string]string `json:"attributes,omitempty" jsonschema:"attribute changes such as color or material"`
}

// ObjectArg is one detected object. Either label or name is accepted.
type ObjectArg struct {
	ID       string    `json:"id,omitempty"`
	Label    string    `json:"label,omitempty"`
	Name     string    `json:"name,omitempty"`
	Category string    `json:"category,omitempty" jsonschema:"furniture, surface, lighting or architectural"`
	BBox     []float64 `json:"bbox" jsonschema:"normalized [x1, y1, x2, y2] in 0..1"`
}

// PlanOutput is the tool result.
type PlanOutput struct {
	Intent    string              `json:"intent"`
	Tasks     []roomedit.TaskView `json:"tasks"`
	Targets   []TargetOut         `json:"targets,omitempty"`
	Anomalies []string            `json:"anomalies,omitempty"`
}

// TargetOut is the catalog object an edit resolved to.
type TargetOut struct {
	ObjectID string `json:"objectId"`
	Label    string `json:"label"`
	EditType string `json:"editType"`
}

// rejection is the body of an error result.
type rejection struct {
	Kind       roomedit.ErrorKind         `json:"kind"`
	Error      string                     `json:"error"`
	Suggestion string                     `json:"suggestion,omitempty"`
	Options    []roomedit.AmbiguityOption `json:"options,omitempty"`
	Available  []string                   `json:"available,omitempty"`
}

// New returns an MCP server with the planning tool registered.
func New(version string) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "roomedit", Version: version}, nil)
	mcp.AddTool(server, &mcp.Tool{
		Name: ToolPlanRoomEdit,
		Description: "Plan an object-targeted edit of a room image. Returns ordered inpaint or generate tasks " +
			"with pixel masks, or a rejection: ambiguity (ask the user which option), constraint, or validation.",
	}, planRoomEdit)
	return server
}

// Run serves the tools over stdin/stdout until ctx is done or the client
// disconnects.
func Run(ctx context.Context, version string) error {
	log.Info().Str("version", version).Msg("Starting MCP server on stdio")
	return New(version).Run(ctx, &mcp.StdioTransport{})
}

func planRoomEdit(_ context.Context, _ *mcp.CallToolRequest, in PlanInput) (*mcp.CallToolResult, PlanOutput, error) {
	resp, err := orchestrator.PlanOffline(in.request())
	if err != nil {
		log.Debug().Err(err).Str("kind", string(roomedit.KindOf(err))).Msg("plan_room_edit rejected")
		return rejected(err), PlanOutput{}, nil
	}
	out := PlanOutput{
		Intent:    string(resp.Plan.Instruction.Intent),
		Tasks:     resp.Tasks,
		Anomalies: resp.Plan.Anomalies,
	}
	for _, t := range resp.Plan.Targets {
		out.Targets = append(out.Targets, TargetOut{ObjectID: t.Object.ID, Label: t.Object.Label, EditType: string(t.EditType)})
	}
	return nil, out, nil
}

func (in PlanInput) request() orchestrator.PlanRequest {
	req := orchestrator.PlanRequest{
		Instruction: roomedit.EditInstruction{Intent: roomedit.Intent(in.Intent), Request: in.Request},
		Canvas:      in.Canvas,
	}
	for _, e := range in.Edits {
		edit := roomedit.TargetedEdit{Target: e.Target, ObjectID: e.ObjectID, Action: roomedit.Action(e.Action)}
		if edit.Action == "" {
			edit.Action = roomedit.ActionModify
		}
		if len(e.Attributes) > 0 || e.Instruction != "" {
			edit.Attributes = make(map[string]*string, len(e.Attributes)+1)
			for k, v := range e.Attributes {
				edit.Attributes[k] = roomedit.StrPtr(v)
			}
			if e.Instruction != "" {
				edit.Attributes[roomedit.AttrInstruction] = roomedit.StrPtr(e.Instruction)
			}
		}
		req.Instruction.Edits = append(req.Instruction.Edits, edit)
	}
	if in.Image != "" {
		req.Previous = &orchestrator.PreviousImage{Image: roomedit.ImageRef(in.Image)}
		for _, o := range in.Objects {
			req.Previous.Objects = append(req.Previous.Objects, roomedit.RawObject{
				ID: o.ID, Label: o.Label, Name: o.Name, Category: o.Category, BBox: o.BBox,
			})
		}
	}
	if len(in.Adjacency) > 0 {
		req.Adjacency = make(roomedit.RoomAdjacency, len(in.Adjacency))
		for name, rooms := range in.Adjacency {
			wall, ok := roomedit.ExtractWall(name)
			if !ok {
				wall = roomedit.Wall(name)
			}
			req.Adjacency[wall] = append(req.Adjacency[wall], rooms...)
		}
	}
	return req
}

func rejected(err error) *mcp.CallToolResult {
	r := rejection{Kind: roomedit.KindOf(err), Error: err.Error()}
	var (
		amb *roomedit.AmbiguityError
		con *roomedit.ConstraintError
		val *roomedit.ValidationError
	)
	switch {
	case errors.As(err, &amb):
		r.Suggestion, r.Options = amb.Suggestion, amb.Options
	case errors.As(err, &con):
		r.Suggestion = con.Suggestion
	case errors.As(err, &val):
		r.Suggestion, r.Available = val.Suggestion, val.Available
	}
	body, _ := json.Marshal(r)
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{&mcp.TextContent{Text: string(body)}},
	}
}
