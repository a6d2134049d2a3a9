package roomedit

import (
	"fmt"
	"strings"
)

// Stage is a step of the planning state machine. A plan only moves forward:
// Classified → Resolved → Validated → Assembled.
type Stage string

// Planning stages.
const (
	StageClassified Stage = "classified"
	StageResolved   Stage = "resolved"
	StageValidated  Stage = "validated"
	StageAssembled  Stage = "assembled"
)

// ResolvedEdit is a targeted edit bound to the catalog object it names.
type ResolvedEdit struct {
	Edit        TargetedEdit   `json:"edit"`
	Object      DetectedObject `json:"object"`
	EditType    EditType       `json:"editType"`
	Instruction string         `json:"instruction"`
	// ByQualifier marks a target picked by catalog order among several
	// qualified matches.
	ByQualifier bool `json:"byQualifier,omitempty"`
}

// Plan is the result of planning one instruction against one image state.
// Each stage returns a new Plan; earlier values are never modified.
type Plan struct {
	Stage Stage `json:"stage"`
	// Instruction is the instruction actually planned, after any downgrade.
	Instruction EditInstruction `json:"instruction"`
	Targets     []ResolvedEdit  `json:"targets,omitempty"`
	Tasks       []EditTask      `json:"-"`
	// Anomalies records upstream misclassifications the assembler corrected.
	Anomalies []string `json:"anomalies,omitempty"`
}

// Targeted reports whether the plan edits objects in place, in which case the
// resulting image inherits the previous catalog.
func (p *Plan) Targeted() bool {
	return p.Instruction.Intent == IntentEditObjects
}

func (p Plan) next(stage Stage) Plan {
	out := p
	out.Stage = stage
	out.Targets = append([]ResolvedEdit(nil), p.Targets...)
	out.Tasks = append([]EditTask(nil), p.Tasks...)
	out.Anomalies = append([]string(nil), p.Anomalies...)
	return out
}

// Assembler turns an EditInstruction and the latest ImageState into an
// ordered task list. It is safe for concurrent use; it holds no state
// between calls.
type Assembler struct {
	resolution int
	adjacency  RoomAdjacency
	validator  *Validator
	resolver   *Resolver
}

// AssemblerOption configures an Assembler.
type AssemblerOption func(*Assembler)

// WithCanvas sets the square output resolution.
func WithCanvas(resolution int) AssemblerOption {
	return func(a *Assembler) {
		if resolution > 0 {
			a.resolution = resolution
		}
	}
}

// WithAdjacency sets the room's wall adjacency for window placement rules.
func WithAdjacency(adj RoomAdjacency) AssemblerOption {
	return func(a *Assembler) { a.adjacency = adj }
}

// WithValidator replaces the constraint validator.
func WithValidator(v *Validator) AssemblerOption {
	return func(a *Assembler) { a.validator = v }
}

// WithResolver replaces the object resolver.
func WithResolver(r *Resolver) AssemblerOption {
	return func(a *Assembler) { a.resolver = r }
}

// NewAssembler returns an Assembler with a DefaultResolution canvas, the
// default rules and keyword heuristics.
func NewAssembler(opts ...AssemblerOption) *Assembler {
	a := &Assembler{
		resolution: DefaultResolution,
		validator:  NewValidator(),
		resolver:   NewResolver(nil),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Resolution returns the configured canvas size.
func (a *Assembler) Resolution() int { return a.resolution }

// BuildEditTasks plans instr against prev with default settings and returns
// only the tasks. Errors are *AmbiguityError, *ConstraintError or
// *ValidationError.
func BuildEditTasks(instr EditInstruction, prev *ImageState) ([]EditTask, error) {
	return NewAssembler().BuildEditTasks(instr, prev)
}

// BuildEditTasks is Plan without the bookkeeping.
func (a *Assembler) BuildEditTasks(instr EditInstruction, prev *ImageState) ([]EditTask, error) {
	p, err := a.Plan(instr, prev)
	if err != nil {
		return nil, err
	}
	return p.Tasks, nil
}

// Plan runs the full state machine. The whole batch fails on the first
// error; a partial task list is never returned.
func (a *Assembler) Plan(instr EditInstruction, prev *ImageState) (*Plan, error) {
	p := Plan{Stage: StageClassified, Instruction: instr.clone()}

	switch instr.Intent {
	case IntentGenerateRoom:
		if prev == nil {
			return a.generate(p, "")
		}
		if !prev.HasCatalog() {
			p.Anomalies = append(p.Anomalies, "generate_room with an existing image and no catalog; regenerating instead")
			p.Instruction = p.Instruction.withIntent(IntentRegenerateRoom)
			return a.generate(p, prev.Image)
		}
		// Downgrade rather than throw away the existing room.
		first := prev.Catalog[0]
		p.Anomalies = append(p.Anomalies, fmt.Sprintf("generate_room with an existing image; downgraded to a targeted edit of %q", first.Label))
		p.Instruction = p.Instruction.withIntent(IntentEditObjects)
		p.Instruction.Edits = []TargetedEdit{{
			Target:     first.Label,
			ObjectID:   first.ID,
			Action:     ActionModify,
			Attributes: map[string]*string{AttrInstruction: StrPtr(instr.Request)},
		}}
		return a.edit(p, prev)

	case IntentRegenerateRoom:
		if prev == nil {
			p.Instruction = p.Instruction.withIntent(IntentGenerateRoom)
			return a.generate(p, "")
		}
		return a.generate(p, prev.Image)

	case IntentEditObjects:
		switch {
		case prev == nil || prev.Image == "":
			return nil, &ValidationError{
				Reason:     "no previous image available",
				Suggestion: "Generate a room first, then edit its objects",
			}
		case !prev.HasCatalog():
			return nil, &ValidationError{
				Reason:     "previous image has no detected objects",
				Suggestion: "Wait for object detection to finish or regenerate the room",
			}
		case len(instr.Edits) == 0:
			return nil, &ValidationError{
				Reason:     "no edits requested",
				Suggestion: "Name the object you want to change",
			}
		}
		return a.edit(p, prev)
	}

	return nil, &ValidationError{Reason: fmt.Sprintf("unknown intent %q", instr.Intent)}
}

// generate emits the single whole-room task. parent is the image being
// replaced, if any; its catalog does not carry over.
func (a *Assembler) generate(p Plan, parent ImageRef) (*Plan, error) {
	prompt := GeneratePrompt(p.Instruction)
	if parent != "" {
		prompt = "Regenerate the room from scratch.\n" + prompt
	}
	out := p.next(StageAssembled)
	out.Tasks = []EditTask{&GenerateTask{Prompt: prompt, Size: Square(a.resolution)}}
	return &out, nil
}

func (a *Assembler) edit(p Plan, prev *ImageState) (*Plan, error) {
	validated, err := a.check(p, prev.Catalog)
	if err != nil {
		return nil, err
	}
	assembled, err := a.assemble(validated, prev.Image)
	if err != nil {
		return nil, err
	}
	return &assembled, nil
}

// check takes the edits in order and, for each one, binds it to a catalog
// object, applies the domain rules and then the area ceiling. The first
// failing edit decides the error. No mask exists until every edit passes.
func (a *Assembler) check(p Plan, catalog Catalog) (Plan, error) {
	out := p.next(StageResolved)
	out.Targets = make([]ResolvedEdit, 0, len(p.Instruction.Edits))
	for _, e := range p.Instruction.Edits {
		re, err := a.resolve(e, p.Instruction.Request, catalog)
		if err != nil {
			return Plan{}, err
		}
		if err := a.validate(re); err != nil {
			return Plan{}, err
		}
		out.Targets = append(out.Targets, re)
	}
	return out.next(StageValidated), nil
}

// resolve binds one edit to a catalog object.
func (a *Assembler) resolve(e TargetedEdit, request string, catalog Catalog) (ResolvedEdit, error) {
	re := ResolvedEdit{Edit: e.clone(), Instruction: e.instructionText(request)}
	if e.ObjectID != "" {
		obj, ok := catalog.ByID(e.ObjectID)
		if !ok {
			return ResolvedEdit{}, unresolved(e.ObjectID, catalog)
		}
		re.Object = obj
	} else {
		res, err := a.resolver.Resolve(e.Target, catalog)
		if err != nil {
			return ResolvedEdit{}, err
		}
		if !res.Resolved {
			return ResolvedEdit{}, unresolved(e.Target, catalog)
		}
		re.Object = res.Object
		re.ByQualifier = res.ByQualifier
	}
	re.EditType = a.validator.InferEditType(re.Instruction)
	return re, nil
}

// validate runs the domain rules, then the unpadded area ceiling.
func (a *Assembler) validate(t ResolvedEdit) error {
	if err := a.validator.Validate(t.Object.Label, t.Instruction, a.adjacency); err != nil {
		return err
	}
	return CheckMaskArea(t.Object.Label, t.Object.BBox)
}

// assemble builds masks and chains the inpaint tasks: the first edits the
// latest image, each later one edits the output of the one before it.
func (a *Assembler) assemble(p Plan, latest ImageRef) (Plan, error) {
	out := p.next(StageAssembled)
	size := Square(a.resolution)
	out.Tasks = make([]EditTask, 0, len(p.Targets))
	for i, t := range p.Targets {
		base := LatestImage(latest)
		if i > 0 {
			base = ChainedFrom(i - 1)
		}
		out.Tasks = append(out.Tasks, &InpaintTask{
			Prompt:    InpaintPrompt(t.Object, t.Edit, p.Instruction),
			BaseImage: base,
			Mask:      BuildMask(t.Object.BBox, a.resolution),
			Size:      size,
			TargetID:  t.Object.ID,
		})
	}
	return out, nil
}

func unresolved(target string, catalog Catalog) *ValidationError {
	return &ValidationError{
		Reason:     fmt.Sprintf("target %q not found in catalog", target),
		Suggestion: "Name one of: " + strings.Join(catalog.Labels(), ", "),
		Target:     target,
		Available:  catalog.Labels(),
	}
}
