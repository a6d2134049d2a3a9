package roomedit

import "strings"

// Intent is the top-level classification of a request.
type Intent string

// Intents.
const (
	IntentGenerateRoom   Intent = "generate_room"
	IntentEditObjects    Intent = "edit_objects"
	IntentRegenerateRoom Intent = "regenerate_room"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case IntentGenerateRoom, IntentEditObjects, IntentRegenerateRoom:
		return true
	}
	return false
}

// Action is what a targeted edit does to its object.
type Action string

// Actions.
const (
	ActionModify  Action = "modify"
	ActionReplace Action = "replace"
)

// AttrInstruction is the attribute key holding the per-edit instruction text.
const AttrInstruction = "instruction"

// TargetedEdit names one object and what to do to it. Attribute values may
// be nil, meaning "unset" (e.g. {"color": "green", "material": null}).
type TargetedEdit struct {
	Target string `json:"target"`
	// ObjectID pins the edit to a catalog id, bypassing phrase matching.
	// Set for explicit selections.
	ObjectID   string             `json:"objectId,omitempty"`
	Action     Action             `json:"action"`
	Attributes map[string]*string `json:"attributes,omitempty"`
}

// instructionText returns the text describing this edit: the explicit
// instruction attribute when present, the raw request otherwise, and a
// synthesized "<action> <target>" as a last resort.
func (e TargetedEdit) instructionText(request string) string {
	if v, ok := e.Attributes[AttrInstruction]; ok && v != nil && strings.TrimSpace(*v) != "" {
		return *v
	}
	if strings.TrimSpace(request) != "" {
		return request
	}
	action := e.Action
	if action == "" {
		action = ActionModify
	}
	return string(action) + " " + e.Target
}

// clone returns a deep copy of e.
func (e TargetedEdit) clone() TargetedEdit {
	out := e
	if e.Attributes != nil {
		out.Attributes = make(map[string]*string, len(e.Attributes))
		for k, v := range e.Attributes {
			if v != nil {
				s := *v
				v = &s
			}
			out.Attributes[k] = v
		}
	}
	return out
}

// Constraints are informational flags consumed only by prompt text.
type Constraints struct {
	PreserveLayout   bool `json:"preserveLayout,omitempty"`
	PreserveLighting bool `json:"preserveLighting,omitempty"`
	PreserveCamera   bool `json:"preserveCamera,omitempty"`
}

// EditInstruction is the structured form of a request.
type EditInstruction struct {
	Intent      Intent         `json:"intent"`
	Edits       []TargetedEdit `json:"edits,omitempty"`
	Constraints Constraints    `json:"constraints"`
	// Request is the raw user text the instruction was classified from.
	Request string `json:"request,omitempty"`
}

// clone returns a deep copy so stage transitions never alias their input.
func (in EditInstruction) clone() EditInstruction {
	out := in
	if in.Edits != nil {
		out.Edits = make([]TargetedEdit, len(in.Edits))
		for i, e := range in.Edits {
			out.Edits[i] = e.clone()
		}
	}
	return out
}

// withIntent returns a copy of in with a different intent.
func (in EditInstruction) withIntent(intent Intent) EditInstruction {
	out := in.clone()
	out.Intent = intent
	if intent != IntentEditObjects {
		out.Edits = nil
	}
	return out
}

// StrPtr returns a pointer to s, for building attribute maps.
func StrPtr(s string) *string { return &s }
