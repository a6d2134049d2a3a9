package roomedit

import "fmt"

// TaskKind discriminates the EditTask union.
type TaskKind string

// Task kinds.
const (
	TaskGenerate TaskKind = "generate"
	TaskInpaint  TaskKind = "inpaint"
)

// Size is an output canvas size in pixels.
type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Square returns a resolution x resolution size.
func Square(resolution int) Size { return Size{Width: resolution, Height: resolution} }

func (s Size) String() string { return fmt.Sprintf("%dx%d", s.Width, s.Height) }

// MaskRect is a hard-edged rectangular pixel mask. Pixels inside the rect
// may be modified by inpainting; everything else must stay as it is.
type MaskRect struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Area returns the mask area in pixels.
func (m MaskRect) Area() int { return m.Width * m.Height }

// BaseImage is the input image of an inpaint task: either the latest image of
// the room when the batch was planned, or the output of an earlier task in the
// same batch. Exactly one of Ref and ChainedFrom is set.
type BaseImage struct {
	Ref         ImageRef `json:"ref,omitempty"`
	ChainedFrom *int     `json:"chainedFrom,omitempty"`
}

// LatestImage returns a BaseImage pointing at a concrete image.
func LatestImage(ref ImageRef) BaseImage { return BaseImage{Ref: ref} }

// ChainedFrom returns a BaseImage pointing at the output of task index i.
func ChainedFrom(i int) BaseImage { return BaseImage{ChainedFrom: &i} }

// IsChained reports whether the base image is the output of an earlier task.
func (b BaseImage) IsChained() bool { return b.ChainedFrom != nil }

// Resolve returns the concrete image given the outputs of the tasks already
// executed in this batch, in order.
func (b BaseImage) Resolve(outputs []ImageRef) (ImageRef, error) {
	if b.ChainedFrom == nil {
		if b.Ref == "" {
			return "", fmt.Errorf("base image has neither a ref nor a chained task")
		}
		return b.Ref, nil
	}
	i := *b.ChainedFrom
	if i < 0 || i >= len(outputs) {
		return "", fmt.Errorf("base image chained from task %d, but only %d tasks have run", i, len(outputs))
	}
	return outputs[i], nil
}

func (b BaseImage) String() string {
	if b.ChainedFrom != nil {
		return fmt.Sprintf("task[%d].output", *b.ChainedFrom)
	}
	return string(b.Ref)
}

// EditTask is one step to run against the image synthesis service:
// a *GenerateTask or an *InpaintTask.
type EditTask interface {
	Kind() TaskKind
	isEditTask()
}

// GenerateTask renders a whole new room image.
type GenerateTask struct {
	Prompt string `json:"prompt"`
	Size   Size   `json:"size"`
}

// Kind implements EditTask.
func (*GenerateTask) Kind() TaskKind { return TaskGenerate }
func (*GenerateTask) isEditTask()    {}

// InpaintTask edits the masked region of BaseImage.
type InpaintTask struct {
	Prompt    string    `json:"prompt"`
	BaseImage BaseImage `json:"baseImage"`
	Mask      MaskRect  `json:"mask"`
	Size      Size      `json:"size"`
	// TargetID is the catalog id of the edited object.
	TargetID string `json:"targetId"`
}

// Kind implements EditTask.
func (*InpaintTask) Kind() TaskKind { return TaskInpaint }
func (*InpaintTask) isEditTask()    {}

// TaskView is a flat, serializable rendering of an EditTask for transports.
type TaskView struct {
	Kind        TaskKind  `json:"kind"`
	Prompt      string    `json:"prompt"`
	Size        Size      `json:"size"`
	BaseImage   string    `json:"baseImage,omitempty"`
	ChainedFrom *int      `json:"chainedFrom,omitempty"`
	Mask        *MaskRect `json:"mask,omitempty"`
	TargetID    string    `json:"targetId,omitempty"`
}

// Views renders tasks as TaskViews, preserving order.
func Views(tasks []EditTask) []TaskView {
	views := make([]TaskView, 0, len(tasks))
	for _, t := range tasks {
		switch t := t.(type) {
		case *GenerateTask:
			views = append(views, TaskView{Kind: TaskGenerate, Prompt: t.Prompt, Size: t.Size})
		case *InpaintTask:
			mask := t.Mask
			views = append(views, TaskView{
				Kind:        TaskInpaint,
				Prompt:      t.Prompt,
				Size:        t.Size,
				BaseImage:   string(t.BaseImage.Ref),
				ChainedFrom: t.BaseImage.ChainedFrom,
				Mask:        &mask,
				TargetID:    t.TargetID,
			})
		}
	}
	return views
}
