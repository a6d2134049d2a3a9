package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/roomedit"
)

// TaskError reports which task of a batch failed. Nothing from a failed batch
// is persisted; the room keeps its previous state.
type TaskError struct {
	Index int
	Kind  roomedit.TaskKind
	Err   error
}

func (e *TaskError) Error() string {
	return fmt.Sprintf("task %d (%s): %v", e.Index, e.Kind, e.Err)
}

func (e *TaskError) Unwrap() error { return e.Err }

// Execution is the outcome of running one task batch.
type Execution struct {
	// Outputs holds the image produced by each task, in order.
	Outputs []roomedit.ImageRef
	// State is the new latest state of the room.
	State *roomedit.ImageState
}

// Execute runs tasks in order against synth. An inpaint task chained to an
// earlier task edits that task's output. The returned state follows the
// identity policy: a batch of inpaint tasks carries previous's catalog
// forward unchanged, a generate task leaves the catalog pending.
func Execute(ctx context.Context, tasks []roomedit.EditTask, synth roomedit.ImageSynthesisService, previous *roomedit.ImageState) (*Execution, error) {
	if len(tasks) == 0 {
		return nil, fmt.Errorf("no tasks to execute")
	}
	generate, err := batchKind(tasks)
	if err != nil {
		return nil, err
	}

	outputs := make([]roomedit.ImageRef, 0, len(tasks))
	for i, task := range tasks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		start := time.Now()
		var out roomedit.ImageRef
		switch t := task.(type) {
		case *roomedit.GenerateTask:
			out, err = synth.Generate(ctx, t.Prompt, t.Size)
		case *roomedit.InpaintTask:
			var base roomedit.ImageRef
			base, err = t.BaseImage.Resolve(outputs)
			if err == nil {
				out, err = synth.Inpaint(ctx, t.Prompt, base, t.Mask, t.Size)
			}
		default:
			err = fmt.Errorf("unsupported task type %T", task)
		}
		if err != nil {
			log.Error().Err(err).Int("task", i).Str("kind", string(task.Kind())).Msg("Task failed, aborting batch")
			return nil, &TaskError{Index: i, Kind: task.Kind(), Err: err}
		}
		if out == "" {
			return nil, &TaskError{Index: i, Kind: task.Kind(), Err: fmt.Errorf("synthesis returned no image")}
		}
		log.Debug().
			Int("task", i).
			Str("kind", string(task.Kind())).
			Str("output", string(out)).
			Dur("duration", time.Since(start)).
			Msg("Task completed")
		outputs = append(outputs, out)
	}

	latest := outputs[len(outputs)-1]
	exec := &Execution{Outputs: outputs}
	if generate {
		var parent roomedit.ImageRef
		if previous != nil {
			parent = previous.Image
		}
		exec.State = roomedit.Regenerated(latest, parent)
	} else {
		exec.State = roomedit.CarryForward(previous, latest)
	}
	return exec, nil
}

// batchKind reports whether tasks is a single generation. Batches mixing
// generation with inpainting are rejected.
func batchKind(tasks []roomedit.EditTask) (generate bool, err error) {
	first := tasks[0].Kind()
	for i, t := range tasks {
		if t.Kind() != first {
			return false, fmt.Errorf("task %d is %s in a %s batch", i, t.Kind(), first)
		}
	}
	if first == roomedit.TaskGenerate && len(tasks) > 1 {
		return false, fmt.Errorf("batch has %d generate tasks", len(tasks))
	}
	return first == roomedit.TaskGenerate, nil
}
