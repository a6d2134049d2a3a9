package roomedit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCannotDetermineTarget is returned when the language-understanding call
// fails or returns something unusable. The classifier fails closed rather
// than guessing.
var ErrCannotDetermineTarget = errors.New("cannot determine edit target")

// ErrorKind names the rejection families so transports can render each one
// differently.
type ErrorKind string

// Error kinds.
const (
	KindAmbiguity    ErrorKind = "ambiguity"
	KindConstraint   ErrorKind = "constraint"
	KindValidation   ErrorKind = "validation"
	KindUndetermined ErrorKind = "undetermined"
	KindInternal     ErrorKind = "internal"
)

// KindOf returns the rejection kind of err, or KindInternal for
// anything that is not one of this package's structured errors.
func KindOf(err error) ErrorKind {
	var (
		amb *AmbiguityError
		con *ConstraintError
		val *ValidationError
	)
	switch {
	case errors.As(err, &amb):
		return KindAmbiguity
	case errors.As(err, &con):
		return KindConstraint
	case errors.As(err, &val):
		return KindValidation
	case errors.Is(err, ErrCannotDetermineTarget):
		return KindUndetermined
	}
	return KindInternal
}

// AmbiguityOption is one catalog entry a phrase could refer to.
type AmbiguityOption struct {
	ID       string `json:"id"`
	Label    string `json:"label"`
	Position string `json:"position,omitempty"`
}

// AmbiguityError means a target phrase matched several catalog objects and
// carried no disambiguating qualifier. Recoverable by asking the user which
// one they meant.
type AmbiguityError struct {
	Phrase     string            `json:"phrase"`
	Options    []AmbiguityOption `json:"options"`
	Reason     string            `json:"reason"`
	Suggestion string            `json:"suggestion"`
}

func (e *AmbiguityError) Error() string {
	return fmt.Sprintf("ambiguous target %q: %s", e.Phrase, strings.Join(e.Labels(), ", "))
}

// Labels returns the label of every option, in catalog order.
func (e *AmbiguityError) Labels() []string {
	labels := make([]string, 0, len(e.Options))
	for _, o := range e.Options {
		labels = append(labels, o.Label)
	}
	return labels
}

// ConstraintError means the edit violates a domain rule. Recoverable by
// rephrasing the request.
type ConstraintError struct {
	Target     string   `json:"target"`
	EditType   EditType `json:"editType"`
	Rule       string   `json:"rule"`
	Constraint string   `json:"constraint"`
	Reason     string   `json:"reason"`
	Suggestion string   `json:"suggestion"`
}

func (e *ConstraintError) Error() string {
	return fmt.Sprintf("constraint violated (%s) for %q: %s", e.Rule, e.Target, e.Constraint)
}

// ValidationError means a structural precondition was violated: missing base
// image, empty catalog, empty edit list, oversized mask, unresolved target.
// It usually signals an upstream misclassification.
type ValidationError struct {
	Reason     string `json:"reason"`
	Suggestion string `json:"suggestion,omitempty"`
	// Target is the phrase or label the failure is about, if any.
	Target string `json:"target,omitempty"`
	// Available lists the catalog labels when a target could not be resolved.
	Available []string `json:"available,omitempty"`
	// AreaPercent is the offending normalized area, for oversized masks.
	AreaPercent float64 `json:"areaPercent,omitempty"`
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Reason)
	if e.Target != "" {
		fmt.Fprintf(&sb, " (target %q)", e.Target)
	}
	if len(e.Available) > 0 {
		fmt.Fprintf(&sb, "; available: %s", strings.Join(e.Available, ", "))
	}
	return sb.String()
}
