package roomedit

import (
	"fmt"
	"strings"
)

// Resolution is the outcome of matching a phrase against a catalog.
type Resolution struct {
	// Object is the resolved object; only meaningful when Resolved is true.
	Object   DetectedObject
	Resolved bool
	// Matches is the number of catalog entries the phrase matched.
	Matches int
	// ByQualifier is true when several objects matched and the first one in
	// catalog order was chosen because the phrase carried a qualifier.
	ByQualifier bool
}

// Resolver matches free-text target phrases against a catalog.
type Resolver struct {
	qualifiers QualifierDetector
}

// NewResolver returns a Resolver using the given qualifier strategy, or the
// keyword heuristics when q is nil.
func NewResolver(q QualifierDetector) *Resolver {
	if q == nil {
		q = KeywordHeuristics{}
	}
	return &Resolver{qualifiers: q}
}

// Resolve matches phrase against catalog. Both sides are lowercased and a
// match occurs when either string contains the other.
//
//   - one match: resolved.
//   - no match: unresolved (Resolved false, nil error).
//   - several matches with a qualifier in the phrase: the first match in
//     catalog order. Matches are not re-ranked by how well the qualifier fits.
//   - several matches without a qualifier: *AmbiguityError listing them all.
//
// A qualified phrase that matches nothing as a whole is retried with the
// qualifier stripped ("chair by the window" → "chair").
func (r *Resolver) Resolve(phrase string, catalog Catalog) (Resolution, error) {
	p := strings.ToLower(strings.TrimSpace(phrase))
	if p == "" {
		return Resolution{}, nil
	}

	qualified := r.qualifiers.HasQualifier(p)
	matches := matchLabels(p, catalog)
	if len(matches) == 0 && qualified {
		if core := corePhrase(p); core != "" && core != p {
			matches = matchLabels(core, catalog)
		}
	}

	switch {
	case len(matches) == 0:
		return Resolution{}, nil
	case len(matches) == 1:
		return Resolution{Object: matches[0], Resolved: true, Matches: 1}, nil
	case qualified:
		return Resolution{Object: matches[0], Resolved: true, Matches: len(matches), ByQualifier: true}, nil
	}

	options := make([]AmbiguityOption, 0, len(matches))
	quoted := make([]string, 0, len(matches))
	for _, m := range matches {
		options = append(options, AmbiguityOption{ID: m.ID, Label: m.Label, Position: PositionHint(m.BBox)})
		quoted = append(quoted, fmt.Sprintf("%q", m.Label))
	}
	return Resolution{Matches: len(matches)}, &AmbiguityError{
		Phrase:     phrase,
		Options:    options,
		Reason:     fmt.Sprintf("%q matches %d objects", phrase, len(matches)),
		Suggestion: "Name the object you mean explicitly, for example " + strings.Join(quoted, " or "),
	}
}

func matchLabels(p string, catalog Catalog) []DetectedObject {
	var matches []DetectedObject
	for _, o := range catalog {
		label := strings.ToLower(strings.TrimSpace(o.Label))
		if label == "" {
			continue
		}
		if strings.Contains(label, p) || strings.Contains(p, label) {
			matches = append(matches, o)
		}
	}
	return matches
}

// PositionHint describes where a box sits in the frame on a 3x3 grid:
// "top-left", "center", "bottom-right", and so on. Zero boxes get no hint.
func PositionHint(b BBox) string {
	if b == (BBox{}) {
		return ""
	}
	cx, cy := b.Center()
	col := "center"
	switch {
	case cx < 1.0/3:
		col = "left"
	case cx > 2.0/3:
		col = "right"
	}
	row := "center"
	switch {
	case cy < 1.0/3:
		row = "top"
	case cy > 2.0/3:
		row = "bottom"
	}
	switch {
	case row == "center" && col == "center":
		return "center"
	case row == "center":
		return "center-" + col
	case col == "center":
		return row + "-center"
	}
	return row + "-" + col
}
