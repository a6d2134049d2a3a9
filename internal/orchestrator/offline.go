package orchestrator

import (
	"github.com/fpang/roomedit/internal/roomedit"
)

// PreviousImage is the latest image and its detected objects as a client
// sends them. Objects go through roomedit.NormalizeObject.
type PreviousImage struct {
	Image   roomedit.ImageRef    `json:"image"`
	Objects []roomedit.RawObject `json:"objects,omitempty"`
}

// PlanRequest asks for a plan without touching any service or store.
type PlanRequest struct {
	Instruction roomedit.EditInstruction `json:"instruction"`
	Previous    *PreviousImage           `json:"previous,omitempty"`
	Adjacency   roomedit.RoomAdjacency   `json:"adjacency,omitempty"`
	Canvas      int                      `json:"canvas,omitempty"`
}

// PlanResponse is a plan and its flattened tasks.
type PlanResponse struct {
	Plan  *roomedit.Plan      `json:"plan"`
	Tasks []roomedit.TaskView `json:"tasks"`
}

// PlanOffline runs the assembler on a client-supplied instruction and image.
// A previous image with no objects is treated as awaiting detection.
func PlanOffline(req PlanRequest) (*PlanResponse, error) {
	var prev *roomedit.ImageState
	if req.Previous != nil {
		prev = &roomedit.ImageState{Image: req.Previous.Image, CatalogStatus: roomedit.CatalogPending}
		if len(req.Previous.Objects) > 0 {
			catalog, err := roomedit.NormalizeCatalog(req.Previous.Objects)
			if err != nil {
				return nil, err
			}
			prev.Catalog = catalog
			prev.CatalogStatus = roomedit.CatalogDetected
		}
	}
	plan, err := roomedit.NewAssembler(
		roomedit.WithCanvas(req.Canvas),
		roomedit.WithAdjacency(req.Adjacency),
	).Plan(req.Instruction, prev)
	if err != nil {
		return nil, err
	}
	return &PlanResponse{Plan: plan, Tasks: roomedit.Views(plan.Tasks)}, nil
}
