package roomedit

import (
	"fmt"
	"strings"
)

// Wall is a wall of the room by compass position.
type Wall string

// Walls.
const (
	WallNorth Wall = "north"
	WallSouth Wall = "south"
	WallEast  Wall = "east"
	WallWest  Wall = "west"
)

// wallAliases maps wall words in free text to walls. Viewer-relative words
// assume the camera faces north, the way floor plans are drawn.
var wallAliases = []struct {
	word string
	wall Wall
}{
	{"north", WallNorth},
	{"south", WallSouth},
	{"east", WallEast},
	{"west", WallWest},
	{"back", WallNorth},
	{"far", WallNorth},
	{"front", WallSouth},
	{"right", WallEast},
	{"left", WallWest},
}

// ExtractWall finds a wall position in free text ("add a window on the
// north wall", "window on the left"). The first alias in text order wins.
func ExtractWall(text string) (Wall, bool) {
	words := strings.Fields(normalizeWords(text))
	for _, w := range words {
		for _, a := range wallAliases {
			if w == a.word {
				return a.wall, true
			}
		}
	}
	return "", false
}

// RoomAdjacency lists, per wall, the rooms on the other side of it. A wall
// with no neighbors is an exterior wall.
type RoomAdjacency map[Wall][]string

// Interior reports whether the wall is shared with another room.
func (a RoomAdjacency) Interior(w Wall) bool {
	return len(a[w]) > 0
}

// EditProposal is what a ConstraintRule checks.
type EditProposal struct {
	Target      string
	Instruction string
	EditType    EditType
	Adjacency   RoomAdjacency
}

// ConstraintRule is one domain rule. Check returns nil when the proposal
// passes.
type ConstraintRule interface {
	Name() string
	Check(p EditProposal) *ConstraintError
}

// StructuralElements cannot be removed.
var StructuralElements = []string{"wall", "ceiling", "floor", "column", "beam"}

// Constraint messages.
const (
	ConstraintExteriorWindows = "Windows may only be added to exterior walls"
	ConstraintStructural      = "Structural elements cannot be removed"
)

// exteriorWindowRule rejects adding a window to a wall shared with another room.
type exteriorWindowRule struct{}

func (exteriorWindowRule) Name() string { return "exterior_windows" }

func (exteriorWindowRule) Check(p EditProposal) *ConstraintError {
	if p.EditType != EditAdd || !containsPhrase(normalizeWords(p.Target), "window") {
		return nil
	}
	wall, ok := ExtractWall(p.Target + " " + p.Instruction)
	if !ok || !p.Adjacency.Interior(wall) {
		return nil
	}
	return &ConstraintError{
		Target:     p.Target,
		EditType:   p.EditType,
		Rule:       "exterior_windows",
		Constraint: ConstraintExteriorWindows,
		Reason:     fmt.Sprintf("the %s wall is shared with %s", wall, strings.Join(p.Adjacency[wall], ", ")),
		Suggestion: "Add the window to an exterior wall instead",
	}
}

// structuralRule rejects removing a structural element.
type structuralRule struct{}

func (structuralRule) Name() string { return "structural_immutability" }

func (structuralRule) Check(p EditProposal) *ConstraintError {
	if p.EditType != EditRemove {
		return nil
	}
	// Match on the head noun so "floor lamp" is a lamp, not a floor.
	words := strings.Fields(normalizeWords(p.Target))
	if len(words) == 0 {
		return nil
	}
	head := " " + words[len(words)-1] + " "
	for _, s := range StructuralElements {
		if containsPhrase(head, s) {
			return &ConstraintError{
				Target:     p.Target,
				EditType:   p.EditType,
				Rule:       "structural_immutability",
				Constraint: ConstraintStructural,
				Reason:     fmt.Sprintf("%q is a structural element", p.Target),
				Suggestion: "Change its finish or color instead of removing it",
			}
		}
	}
	return nil
}

// DefaultRules returns the built-in rule table.
func DefaultRules() []ConstraintRule {
	return []ConstraintRule{exteriorWindowRule{}, structuralRule{}}
}

// Validator checks proposed edits against an ordered rule table. The first
// violated rule wins.
type Validator struct {
	rules    []ConstraintRule
	inferrer EditTypeInferrer
}

// ValidatorOption configures a Validator.
type ValidatorOption func(*Validator)

// WithRule appends a rule after the existing ones.
func WithRule(r ConstraintRule) ValidatorOption {
	return func(v *Validator) { v.rules = append(v.rules, r) }
}

// WithRules replaces the whole rule table.
func WithRules(rules ...ConstraintRule) ValidatorOption {
	return func(v *Validator) { v.rules = append([]ConstraintRule(nil), rules...) }
}

// WithEditTypeInferrer replaces the edit-type heuristic.
func WithEditTypeInferrer(i EditTypeInferrer) ValidatorOption {
	return func(v *Validator) { v.inferrer = i }
}

// NewValidator returns a Validator with the default rules.
func NewValidator(opts ...ValidatorOption) *Validator {
	v := &Validator{rules: DefaultRules(), inferrer: KeywordHeuristics{}}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// InferEditType exposes the validator's edit-type strategy.
func (v *Validator) InferEditType(instruction string) EditType {
	return v.inferrer.InferEditType(instruction)
}

// Validate checks target and instruction against every rule in order and
// returns the first violation as a *ConstraintError, or nil.
func (v *Validator) Validate(target, instruction string, adjacency RoomAdjacency) error {
	p := EditProposal{
		Target:      target,
		Instruction: instruction,
		EditType:    v.inferrer.InferEditType(instruction),
		Adjacency:   adjacency,
	}
	for _, rule := range v.rules {
		if cerr := rule.Check(p); cerr != nil {
			return cerr
		}
	}
	return nil
}
