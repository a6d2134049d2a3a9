package roomedit

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ClassifyInput is everything the classifier looks at for one request.
type ClassifyInput struct {
	Text string
	// SelectedObjectID is an object the user picked explicitly, if any.
	SelectedObjectID string
	// Previous is the latest image of the room, nil for a new room.
	Previous *ImageState
}

// Classifier turns a request into an EditInstruction.
type Classifier struct {
	lang     LanguageIntentService
	resolver *Resolver
	inferrer EditTypeInferrer
}

// ClassifierOption configures a Classifier.
type ClassifierOption func(*Classifier)

// WithClassifierResolver replaces the resolver used for the fallback check.
func WithClassifierResolver(r *Resolver) ClassifierOption {
	return func(c *Classifier) { c.resolver = r }
}

// WithClassifierInferrer replaces the edit-type heuristic used for explicit
// selections.
func WithClassifierInferrer(i EditTypeInferrer) ClassifierOption {
	return func(c *Classifier) { c.inferrer = i }
}

// NewClassifier returns a Classifier backed by lang.
func NewClassifier(lang LanguageIntentService, opts ...ClassifierOption) *Classifier {
	c := &Classifier{lang: lang, resolver: NewResolver(nil), inferrer: KeywordHeuristics{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify applies, in order: an explicit selection wins outright; otherwise
// the language service classifies the text, edits naming nothing in the
// catalog or the text are dropped, and an edit request with no resolvable
// target falls back to (re)generation. A failing language service yields an
// error wrapping ErrCannotDetermineTarget.
func (c *Classifier) Classify(ctx context.Context, in ClassifyInput) (EditInstruction, error) {
	text := strings.TrimSpace(in.Text)

	if in.SelectedObjectID != "" {
		return c.selected(text, in)
	}

	var catalog Catalog
	if in.Previous != nil {
		catalog = in.Previous.Catalog.Clone()
	}
	if c.lang == nil {
		return EditInstruction{}, fmt.Errorf("%w: no language service configured", ErrCannotDetermineTarget)
	}
	if err := ctx.Err(); err != nil {
		return EditInstruction{}, err
	}
	parsed, err := c.lang.ParseIntent(ctx, text, IntentContext{HasPreviousImage: in.Previous != nil, Catalog: catalog})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return EditInstruction{}, err
		}
		return EditInstruction{}, fmt.Errorf("%w: %w", ErrCannotDetermineTarget, err)
	}
	if !parsed.Intent.Valid() {
		return EditInstruction{}, fmt.Errorf("%w: unknown intent %q", ErrCannotDetermineTarget, parsed.Intent)
	}
	instr := parsed.clone()
	instr.Request = text

	if instr.Intent == IntentEditObjects {
		instr.Edits = c.groundedEdits(instr.Edits, text, catalog)
		if !c.anyResolvable(instr.Edits, catalog) {
			instr = instr.withIntent(IntentRegenerateRoom)
		}
	}
	if instr.Intent == IntentRegenerateRoom && in.Previous == nil {
		instr = instr.withIntent(IntentGenerateRoom)
	}
	return instr, nil
}

func (c *Classifier) selected(text string, in ClassifyInput) (EditInstruction, error) {
	var catalog Catalog
	if in.Previous != nil {
		catalog = in.Previous.Catalog
	}
	obj, ok := catalog.ByID(in.SelectedObjectID)
	if !ok {
		return EditInstruction{}, &ValidationError{
			Reason:     fmt.Sprintf("selected object %q is not in the current catalog", in.SelectedObjectID),
			Suggestion: "Select an object in the latest image",
			Target:     in.SelectedObjectID,
			Available:  catalog.Labels(),
		}
	}
	action := ActionModify
	if c.inferrer.InferEditType(text) == EditReplace {
		action = ActionReplace
	}
	return EditInstruction{
		Intent: IntentEditObjects,
		Edits: []TargetedEdit{{
			Target:     obj.Label,
			ObjectID:   obj.ID,
			Action:     action,
			Attributes: map[string]*string{AttrInstruction: StrPtr(text)},
		}},
		Request: text,
	}, nil
}

// groundedEdits drops edits whose target is neither in the catalog nor
// literally named in the user's text.
func (c *Classifier) groundedEdits(edits []TargetedEdit, text string, catalog Catalog) []TargetedEdit {
	normalized := normalizeWords(text)
	var kept []TargetedEdit
	for _, e := range edits {
		if strings.TrimSpace(e.Target) == "" {
			continue
		}
		if c.matchesCatalog(e.Target, catalog) || containsPhrase(normalized, e.Target) {
			if e.Action != ActionReplace {
				e.Action = ActionModify
			}
			kept = append(kept, e)
		}
	}
	return kept
}

func (c *Classifier) anyResolvable(edits []TargetedEdit, catalog Catalog) bool {
	for _, e := range edits {
		if c.matchesCatalog(e.Target, catalog) {
			return true
		}
	}
	return false
}

// matchesCatalog is true for a resolved phrase and for an ambiguous one; the
// assembler reports the ambiguity.
func (c *Classifier) matchesCatalog(phrase string, catalog Catalog) bool {
	res, err := c.resolver.Resolve(phrase, catalog)
	var amb *AmbiguityError
	return res.Resolved || errors.As(err, &amb)
}
