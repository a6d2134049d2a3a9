// Package httpapi exposes room editing over HTTP. Routes:
//
//	GET  /health                  liveness
//	POST /plan                    plan a client-supplied instruction, no side effects
//	POST /edit                    run one turn for a room
//	GET  /rooms/{room}            latest image state of a room
//	POST /rooms/{room}/image      start a room from an uploaded photo
//
// Rejections are rendered per kind: ambiguity 409 with options, constraint
// and undetermined target 422, validation 400, anything else 500.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/orchestrator"
	"github.com/fpang/roomedit/internal/roomedit"
)

// TurnRunner is the orchestrator surface the handlers use.
type TurnRunner interface {
	RunTurn(ctx context.Context, req orchestrator.TurnRequest) (*orchestrator.TurnResult, error)
	Seed(ctx context.Context, roomID string, data []byte, contentType string) (*roomedit.ImageState, roomedit.DetectionStatus, error)
	State(ctx context.Context, roomID string) (*roomedit.ImageState, error)
}

// URLSigner turns an image ref into a short-lived download URL.
type URLSigner interface {
	URL(ctx context.Context, ref roomedit.ImageRef, expiry time.Duration) (string, error)
}

// Options configure a Server.
type Options struct {
	// Signer adds imageUrl to responses when set.
	Signer URLSigner
	// OriginSecret, when set, is required in the x-origin-verify header.
	OriginSecret string
	// Canvas is the default canvas for /plan requests that omit one.
	Canvas int
	// Version is reported by /health.
	Version string
}

// Server holds the handler dependencies.
type Server struct {
	turns TurnRunner
	opts  Options
}

// NewServer returns a Server for turns.
func NewServer(turns TurnRunner, opts Options) *Server {
	return &Server{turns: turns, opts: opts}
}

// Handler returns the routed handler wrapped in the metrics and origin
// middleware.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /plan", s.handlePlan)
	mux.HandleFunc("POST /edit", s.handleEdit)
	mux.HandleFunc("GET /rooms/{room}", s.handleState)
	mux.HandleFunc("POST /rooms/{room}/image", s.handleSeed)
	return withMetrics(withOriginVerify(s.opts.OriginSecret, mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": s.opts.Version})
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.PlanRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Canvas == 0 {
		req.Canvas = s.opts.Canvas
	}
	resp, err := orchestrator.PlanOffline(req)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, resp)
}

// editResponse adds a download URL to a turn result.
type editResponse struct {
	*orchestrator.TurnResult
	ImageURL string `json:"imageUrl,omitempty"`
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	var req orchestrator.TurnRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Text) == "" && req.SelectedObjectID == "" {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error: "text is required",
			Kind:  roomedit.KindValidation,
		})
		return
	}
	res, err := s.turns.RunTurn(r.Context(), req)
	if err != nil {
		respondError(w, err)
		return
	}
	out := editResponse{TurnResult: res}
	if res.State != nil {
		out.ImageURL = s.signedURL(r.Context(), res.State.Image)
	}
	respondJSON(w, http.StatusOK, out)
}

// stateResponse is a room state with a download URL.
type stateResponse struct {
	RoomID    string                   `json:"roomId"`
	State     *roomedit.ImageState     `json:"state"`
	Detection roomedit.DetectionStatus `json:"detection,omitempty"`
	ImageURL  string                   `json:"imageUrl,omitempty"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	state, err := s.turns.State(r.Context(), room)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "failed to load room", err.Error())
		return
	}
	if state == nil {
		respondJSON(w, http.StatusNotFound, errorResponse{Error: "room not found", Kind: roomedit.KindValidation, Target: room})
		return
	}
	respondJSON(w, http.StatusOK, stateResponse{RoomID: room, State: state, ImageURL: s.signedURL(r.Context(), state.Image)})
}

func (s *Server) handleSeed(w http.ResponseWriter, r *http.Request) {
	room := r.PathValue("room")
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		respondJSON(w, http.StatusUnsupportedMediaType, errorResponse{
			Error:      "body must be an image",
			Kind:       roomedit.KindValidation,
			Suggestion: "Send a JPEG or PNG with a matching Content-Type",
		})
		return
	}
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxImageBody))
	if err != nil {
		respondJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "image too large", Kind: roomedit.KindValidation})
		return
	}
	state, status, err := s.turns.Seed(r.Context(), room, data, contentType)
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, stateResponse{
		RoomID:    room,
		State:     state,
		Detection: status,
		ImageURL:  s.signedURL(r.Context(), state.Image),
	})
}

func (s *Server) signedURL(ctx context.Context, ref roomedit.ImageRef) string {
	if s.opts.Signer == nil || ref == "" {
		return ""
	}
	url, err := s.opts.Signer.URL(ctx, ref, 15*time.Minute)
	if err != nil {
		log.Warn().Err(err).Str("image", string(ref)).Msg("Failed to presign image URL")
		return ""
	}
	return url
}
