// Package orchestrator drives one conversational turn for a room: it loads
// the latest image state, classifies and plans the request with the roomedit
// core, runs the resulting tasks, detects objects in freshly generated
// images, and saves the new state.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/imagestore"
	"github.com/fpang/roomedit/internal/metrics"
	"github.com/fpang/roomedit/internal/roomedit"
	"github.com/fpang/roomedit/internal/store"
)

// ImageUploader stores user-supplied images.
type ImageUploader interface {
	Put(ctx context.Context, data []byte, contentType string) (roomedit.ImageRef, error)
}

// Config wires an Orchestrator to its services.
type Config struct {
	Language roomedit.LanguageIntentService
	Detector roomedit.VisionDetectionService
	Synth    roomedit.ImageSynthesisService
	States   store.StateStore
	// Uploads receives images passed to Seed. Optional.
	Uploads ImageUploader
	// Canvas is the square output resolution; zero means
	// roomedit.DefaultResolution.
	Canvas int
}

// Orchestrator runs turns. It is safe for concurrent use across rooms;
// concurrent turns on the same room race and the last write wins.
type Orchestrator struct {
	cfg        Config
	classifier *roomedit.Classifier
	metricsOut io.Writer
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithMetricsWriter sends EMF documents to w instead of stdout.
func WithMetricsWriter(w io.Writer) Option {
	return func(o *Orchestrator) { o.metricsOut = w }
}

// New returns an Orchestrator for cfg.
func New(cfg Config, opts ...Option) *Orchestrator {
	if cfg.Canvas <= 0 {
		cfg.Canvas = roomedit.DefaultResolution
	}
	o := &Orchestrator{
		cfg:        cfg,
		classifier: roomedit.NewClassifier(cfg.Language),
		metricsOut: os.Stdout,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// TurnRequest is one user message about one room.
type TurnRequest struct {
	RoomID string `json:"roomId"`
	Text   string `json:"text"`
	// SelectedObjectID is set when the user clicked an object.
	SelectedObjectID string `json:"selectedObjectId,omitempty"`
	// Adjacency describes the room's walls for window rules.
	Adjacency roomedit.RoomAdjacency `json:"adjacency,omitempty"`
	// DryRun plans without calling the synthesis service.
	DryRun bool `json:"dryRun,omitempty"`
}

// TurnResult is what a turn produced.
type TurnResult struct {
	RoomID string              `json:"roomId"`
	Plan   *roomedit.Plan      `json:"plan"`
	Tasks  []roomedit.TaskView `json:"tasks"`
	// Outputs and State are empty for a dry run.
	Outputs []roomedit.ImageRef  `json:"outputs,omitempty"`
	State   *roomedit.ImageState `json:"state,omitempty"`
	// Detection is the detection outcome for a generated image, empty when
	// no detection ran.
	Detection roomedit.DetectionStatus `json:"detection,omitempty"`
}

func (o *Orchestrator) assembler(adj roomedit.RoomAdjacency) *roomedit.Assembler {
	return roomedit.NewAssembler(roomedit.WithCanvas(o.cfg.Canvas), roomedit.WithAdjacency(adj))
}

// RunTurn classifies, plans and executes req. Errors from the core come back
// unchanged so callers can inspect them with errors.As.
func (o *Orchestrator) RunTurn(ctx context.Context, req TurnRequest) (result *TurnResult, err error) {
	start := time.Now()
	m := metrics.New(metrics.Namespace).To(o.metricsOut)
	defer func() {
		m.Duration("TurnLatencyMs", time.Since(start)).Count("TurnCount")
		if err != nil {
			kind := roomedit.KindOf(err)
			m.Dimension("Outcome", "rejected").Count("TurnRejected").Property("rejectionKind", string(kind))
		} else {
			m.Dimension("Outcome", "ok").Metric("TaskCount", float64(len(result.Tasks)), metrics.UnitCount)
		}
		m.Flush()
	}()

	if err := store.ValidateRoomID(req.RoomID); err != nil {
		return nil, &roomedit.ValidationError{Reason: err.Error(), Suggestion: "Use a simple room id such as living-room"}
	}
	prev, err := o.cfg.States.GetState(ctx, req.RoomID)
	if err != nil {
		return nil, fmt.Errorf("load room state: %w", err)
	}

	instr, err := o.classifier.Classify(ctx, roomedit.ClassifyInput{
		Text:             req.Text,
		SelectedObjectID: req.SelectedObjectID,
		Previous:         prev,
	})
	if err != nil {
		logRejection(req.RoomID, "classify", err)
		return nil, err
	}

	plan, err := o.assembler(req.Adjacency).Plan(instr, prev)
	if err != nil {
		logRejection(req.RoomID, "plan", err)
		return nil, err
	}
	for _, a := range plan.Anomalies {
		log.Warn().Str("room", req.RoomID).Str("anomaly", a).Msg("Classifier output corrected during planning")
	}
	m.Dimension("Intent", string(plan.Instruction.Intent))

	result = &TurnResult{RoomID: req.RoomID, Plan: plan, Tasks: roomedit.Views(plan.Tasks)}
	log.Info().
		Str("room", req.RoomID).
		Str("intent", string(plan.Instruction.Intent)).
		Int("tasks", len(plan.Tasks)).
		Bool("dry_run", req.DryRun).
		Msg("Turn planned")
	if req.DryRun {
		return result, nil
	}

	exec, err := Execute(ctx, plan.Tasks, o.cfg.Synth, prev)
	if err != nil {
		return nil, err
	}
	state := exec.State
	if !plan.Targeted() {
		var status roomedit.DetectionStatus
		state, status = o.detect(ctx, req.RoomID, state)
		result.Detection = status
	}
	if err := o.cfg.States.PutState(ctx, req.RoomID, state); err != nil {
		return nil, fmt.Errorf("save room state: %w", err)
	}

	result.Outputs = exec.Outputs
	result.State = state
	log.Info().
		Str("room", req.RoomID).
		Str("image", string(state.Image)).
		Str("catalog_status", string(state.CatalogStatus)).
		Int("objects", len(state.Catalog)).
		Dur("duration", time.Since(start)).
		Msg("Turn complete")
	return result, nil
}

// Seed starts (or restarts) a room from an existing photo and detects its
// objects. Location metadata is stripped before the photo is stored.
func (o *Orchestrator) Seed(ctx context.Context, roomID string, data []byte, contentType string) (*roomedit.ImageState, roomedit.DetectionStatus, error) {
	if err := store.ValidateRoomID(roomID); err != nil {
		return nil, "", &roomedit.ValidationError{Reason: err.Error()}
	}
	if o.cfg.Uploads == nil {
		return nil, "", errors.New("image uploads are not configured")
	}
	ref, err := o.cfg.Uploads.Put(ctx, imagestore.PrepareUpload(data, contentType), contentType)
	if err != nil {
		return nil, "", fmt.Errorf("store uploaded image: %w", err)
	}
	state, status := o.detect(ctx, roomID, roomedit.Regenerated(ref, ""))
	if err := o.cfg.States.PutState(ctx, roomID, state); err != nil {
		return nil, "", fmt.Errorf("save room state: %w", err)
	}
	log.Info().Str("room", roomID).Str("image", string(ref)).Str("detection", string(status)).Msg("Room seeded")
	return state, status, nil
}

// State returns the latest state of a room, or nil.
func (o *Orchestrator) State(ctx context.Context, roomID string) (*roomedit.ImageState, error) {
	return o.cfg.States.GetState(ctx, roomID)
}

// detect fills the catalog of a freshly generated image. A failed detection
// is logged and leaves the catalog pending; it does not fail the turn.
func (o *Orchestrator) detect(ctx context.Context, roomID string, state *roomedit.ImageState) (*roomedit.ImageState, roomedit.DetectionStatus) {
	if o.cfg.Detector == nil {
		return state, ""
	}
	res := o.cfg.Detector.Detect(ctx, state.Image)
	switch res.Status {
	case roomedit.DetectionFailed:
		log.Warn().Err(res.Err).Str("room", roomID).Str("image", string(state.Image)).Msg("Object detection failed, catalog stays pending")
	case roomedit.DetectionEmpty:
		log.Info().Str("room", roomID).Str("image", string(state.Image)).Msg("No objects detected")
	default:
		log.Debug().Str("room", roomID).Int("objects", len(res.Objects)).Msg("Objects detected")
	}
	return roomedit.WithDetection(state, res), res.Status
}

func logRejection(roomID, stage string, err error) {
	kind := roomedit.KindOf(err)
	ev := log.Info()
	if kind == roomedit.KindInternal || kind == roomedit.KindUndetermined {
		ev = log.Warn()
	}
	ev.Err(err).Str("room", roomID).Str("stage", stage).Str("kind", string(kind)).Msg("Turn rejected")
}
