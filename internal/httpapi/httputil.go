package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/fpang/roomedit/internal/roomedit"
)

// maxJSONBody bounds request bodies that are not image uploads.
const maxJSONBody = 1 << 20

// maxImageBody bounds uploaded room photos.
const maxImageBody = 20 << 20

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// httpError sends a plain JSON error. internalDetails are logged server-side
// and never sent to the client.
func httpError(w http.ResponseWriter, status int, clientMsg string, internalDetails ...string) {
	if len(internalDetails) > 0 {
		log.Error().
			Int("status", status).
			Str("clientMsg", clientMsg).
			Strs("internalDetails", internalDetails).
			Msg("HTTP error with internal details")
	}
	respondJSON(w, status, errorResponse{Error: clientMsg, Kind: roomedit.KindInternal})
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Error      string                     `json:"error"`
	Kind       roomedit.ErrorKind         `json:"kind"`
	Reason     string                     `json:"reason,omitempty"`
	Suggestion string                     `json:"suggestion,omitempty"`
	Target     string                     `json:"target,omitempty"`
	Constraint string                     `json:"constraint,omitempty"`
	Available  []string                   `json:"available,omitempty"`
	Options    []roomedit.AmbiguityOption `json:"options,omitempty"`
}

// statusFor maps a rejection kind to its HTTP status.
func statusFor(kind roomedit.ErrorKind) int {
	switch kind {
	case roomedit.KindAmbiguity:
		return http.StatusConflict
	case roomedit.KindConstraint, roomedit.KindUndetermined:
		return http.StatusUnprocessableEntity
	case roomedit.KindValidation:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// respondError renders a pipeline error. Structured rejections carry their
// details; anything else is logged and reported as an internal error.
func respondError(w http.ResponseWriter, err error) {
	kind := roomedit.KindOf(err)
	resp := errorResponse{Error: err.Error(), Kind: kind}

	var (
		amb *roomedit.AmbiguityError
		con *roomedit.ConstraintError
		val *roomedit.ValidationError
	)
	switch {
	case errors.As(err, &amb):
		resp.Error = "Which one did you mean?"
		resp.Reason, resp.Suggestion, resp.Target = amb.Reason, amb.Suggestion, amb.Phrase
		resp.Options = amb.Options
	case errors.As(err, &con):
		resp.Reason, resp.Suggestion, resp.Target = con.Reason, con.Suggestion, con.Target
		resp.Constraint = con.Constraint
	case errors.As(err, &val):
		resp.Reason, resp.Suggestion, resp.Target = val.Reason, val.Suggestion, val.Target
		resp.Available = val.Available
	case kind == roomedit.KindUndetermined:
		log.Warn().Err(err).Msg("Could not determine edit target")
		resp.Error = "Could not understand which object to change"
		resp.Suggestion = "Name the object, or click it in the image"
	default:
		httpError(w, http.StatusInternalServerError, "internal error", err.Error())
		return
	}
	respondJSON(w, statusFor(kind), resp)
}

// decodeJSON reads a bounded JSON body into v, rejecting unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "invalid JSON body",
			Kind:   roomedit.KindValidation,
			Reason: err.Error(),
		})
		return false
	}
	return true
}
