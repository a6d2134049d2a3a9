package roomedit

import (
	"errors"
	"testing"
)

func TestInferEditType(t *testing.T) {
	tests := []struct {
		in   string
		want EditType
	}{
		{"remove the rug", EditRemove},
		{"Delete that lamp", EditRemove},
		{"add a plant by the window", EditAdd},
		{"place a mirror above the sofa", EditAdd},
		{"put a throw on it", EditAdd},
		{"change to a leather sofa", EditReplace},
		{"replace with a sectional", EditReplace},
		{"swap the lamp for a floor lamp", EditReplace},
		{"make it green", EditModify},
		{"address the clutter", EditModify},
		{"removing the wall", EditRemove},
		{"the wall should be deleted", EditRemove},
		{"removal of the old rug", EditRemove},
		{"adding a window on the north wall", EditAdd},
		{"placing a vase on the table", EditAdd},
		{"putting a rug under the bed", EditAdd},
		{"swapping the lamp for a pendant", EditReplace},
		{"changed to oak", EditReplace},
		{"an input panel", EditModify},
		{"", EditModify},
	}
	var h KeywordHeuristics
	for _, tt := range tests {
		if got := h.InferEditType(tt.in); got != tt.want {
			t.Errorf("InferEditType(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestHasQualifier(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"chair", false},
		{"chair by the window", true},
		{"left chair", true},
		{"chair next to the door", true},
		{"lamp in the corner", true},
		{"nearby chair", false},
		{"baby chair", false},
		{"leftmost chair", true},
		{"rightmost armchair", true},
		{"chair nearest the door", true},
		{"chair in the corners", true},
		{"leftover chair", false},
	}
	var h KeywordHeuristics
	for _, tt := range tests {
		if got := h.HasQualifier(tt.in); got != tt.want {
			t.Errorf("HasQualifier(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestExtractWall(t *testing.T) {
	tests := []struct {
		in     string
		want   Wall
		wantOK bool
	}{
		{"add a window on the north wall", WallNorth, true},
		{"window on the left", WallWest, true},
		{"put a window in the back", WallNorth, true},
		{"add a window", "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractWall(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ExtractWall(%q) = %q, %v, want %q, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestValidate_StructuralRemovalInflected(t *testing.T) {
	tests := []struct {
		target, instruction string
	}{
		{"wall", "removing the wall"},
		{"wall", "the wall should be deleted"},
		{"ceiling beam", "deleting the beam"},
	}
	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.instruction, func(t *testing.T) {
			var cerr *ConstraintError
			if err := v.Validate(tt.target, tt.instruction, nil); !errors.As(err, &cerr) || cerr.Constraint != ConstraintStructural {
				t.Fatalf("Validate(%q, %q) = %v, want %q", tt.target, tt.instruction, err, ConstraintStructural)
			}
		})
	}
}

func TestValidate_StructuralRemoval(t *testing.T) {
	v := NewValidator()
	err := v.Validate("wall", "remove the wall", nil)
	var cerr *ConstraintError
	if !errors.As(err, &cerr) {
		t.Fatalf("Validate() error = %v, want *ConstraintError", err)
	}
	if cerr.Constraint != "Structural elements cannot be removed" {
		t.Errorf("Constraint = %q", cerr.Constraint)
	}
	if cerr.EditType != EditRemove {
		t.Errorf("EditType = %q, want %q", cerr.EditType, EditRemove)
	}
	for _, target := range []string{"ceiling", "support column", "exposed beams"} {
		if err := v.Validate(target, "delete it", nil); err == nil {
			t.Errorf("Validate(%q, delete) = nil, want constraint error", target)
		}
	}
}

func TestValidate_Allowed(t *testing.T) {
	adj := RoomAdjacency{WallEast: {"kitchen"}}
	tests := []struct {
		target, instruction string
	}{
		{"floor lamp", "remove the floor lamp"},
		{"wall", "paint the wall sage green"},
		{"window", "add a window on the north wall"},
		{"window", "add a window"},
		{"sofa", "remove the sofa"},
	}
	v := NewValidator()
	for _, tt := range tests {
		if err := v.Validate(tt.target, tt.instruction, adj); err != nil {
			t.Errorf("Validate(%q, %q) = %v, want nil", tt.target, tt.instruction, err)
		}
	}
}

func TestValidate_InteriorWindow(t *testing.T) {
	adj := RoomAdjacency{WallEast: {"kitchen"}, WallNorth: nil}
	err := NewValidator().Validate("window", "add a window on the right wall", adj)
	var cerr *ConstraintError
	if !errors.As(err, &cerr) {
		t.Fatalf("Validate() error = %v, want *ConstraintError", err)
	}
	if cerr.Constraint != ConstraintExteriorWindows {
		t.Errorf("Constraint = %q, want %q", cerr.Constraint, ConstraintExteriorWindows)
	}
	if KindOf(err) != KindConstraint {
		t.Errorf("KindOf() = %q, want %q", KindOf(err), KindConstraint)
	}
}

type noSofaRule struct{}

func (noSofaRule) Name() string { return "no_sofa" }

func (noSofaRule) Check(p EditProposal) *ConstraintError {
	if p.Target == "sofa" {
		return &ConstraintError{Target: p.Target, Rule: "no_sofa", Constraint: "Sofas are fixed"}
	}
	return nil
}

func TestValidate_CustomRule(t *testing.T) {
	v := NewValidator(WithRule(noSofaRule{}))
	var cerr *ConstraintError
	if err := v.Validate("sofa", "make it blue", nil); !errors.As(err, &cerr) || cerr.Rule != "no_sofa" {
		t.Errorf("Validate() = %v, want no_sofa violation", err)
	}

	// Rule order decides which violation is reported.
	v = NewValidator(WithRules(noSofaRule{}, structuralRule{}))
	if err := v.Validate("sofa", "remove it", nil); !errors.As(err, &cerr) || cerr.Rule != "no_sofa" {
		t.Errorf("Validate() = %v, want first rule to win", err)
	}
}
