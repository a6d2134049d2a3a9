package roomedit

import (
	"context"
	"errors"
	"testing"
)

type fakeLanguage struct {
	instr EditInstruction
	err   error
	calls int
	got   IntentContext
}

func (f *fakeLanguage) ParseIntent(_ context.Context, _ string, ictx IntentContext) (EditInstruction, error) {
	f.calls++
	f.got = ictx
	return f.instr, f.err
}

func TestClassify_ExplicitSelectionWins(t *testing.T) {
	lang := &fakeLanguage{err: errors.New("should not be called")}
	instr, err := NewClassifier(lang).Classify(context.Background(), ClassifyInput{
		Text:             "swap it for a leather one",
		SelectedObjectID: "o1",
		Previous:         sceneState(),
	})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if lang.calls != 0 {
		t.Errorf("language service called %d times, want 0", lang.calls)
	}
	if instr.Intent != IntentEditObjects || len(instr.Edits) != 1 {
		t.Fatalf("Classify() = %+v, want one targeted edit", instr)
	}
	e := instr.Edits[0]
	if e.Target != "sofa" || e.ObjectID != "o1" || e.Action != ActionReplace {
		t.Errorf("edit = %+v, want sofa/o1/replace", e)
	}
	if v := e.Attributes[AttrInstruction]; v == nil || *v != "swap it for a leather one" {
		t.Errorf("instruction attribute = %v", v)
	}
}

func TestClassify_SelectionNotInCatalog(t *testing.T) {
	_, err := NewClassifier(&fakeLanguage{}).Classify(context.Background(), ClassifyInput{
		Text:             "make it blue",
		SelectedObjectID: "o9",
		Previous:         sceneState(),
	})
	if KindOf(err) != KindValidation {
		t.Errorf("Classify() error = %v, want validation error", err)
	}
}

func TestClassify_FailsClosed(t *testing.T) {
	tests := []struct {
		name string
		lang *fakeLanguage
	}{
		{"service error", &fakeLanguage{err: errors.New("503 from model")}},
		{"unknown intent", &fakeLanguage{instr: EditInstruction{Intent: "tidy_up"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClassifier(tt.lang).Classify(context.Background(), ClassifyInput{Text: "make the sofa blue", Previous: sceneState()})
			if !errors.Is(err, ErrCannotDetermineTarget) {
				t.Errorf("Classify() error = %v, want ErrCannotDetermineTarget", err)
			}
			if KindOf(err) != KindUndetermined {
				t.Errorf("KindOf() = %q, want %q", KindOf(err), KindUndetermined)
			}
		})
	}
}

func TestClassify_PassesCatalogContext(t *testing.T) {
	lang := &fakeLanguage{instr: EditInstruction{Intent: IntentEditObjects, Edits: []TargetedEdit{{Target: "sofa", Action: ActionModify}}}}
	instr, err := NewClassifier(lang).Classify(context.Background(), ClassifyInput{Text: "make the sofa blue", Previous: sceneState()})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if !lang.got.HasPreviousImage || len(lang.got.Catalog) != 2 {
		t.Errorf("IntentContext = %+v, want previous image and catalog", lang.got)
	}
	if instr.Intent != IntentEditObjects || instr.Edits[0].Target != "sofa" {
		t.Errorf("Classify() = %+v, want edit of sofa", instr)
	}
	if instr.Request != "make the sofa blue" {
		t.Errorf("Request = %q", instr.Request)
	}
}

func TestClassify_DropsInventedTargets(t *testing.T) {
	lang := &fakeLanguage{instr: EditInstruction{
		Intent: IntentEditObjects,
		Edits: []TargetedEdit{
			{Target: "ottoman", Action: ActionModify},
			{Target: "sofa", Action: ActionModify},
		},
	}}
	instr, err := NewClassifier(lang).Classify(context.Background(), ClassifyInput{Text: "make the sofa blue", Previous: sceneState()})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if len(instr.Edits) != 1 || instr.Edits[0].Target != "sofa" {
		t.Errorf("Edits = %+v, want only sofa", instr.Edits)
	}
}

func TestClassify_Fallbacks(t *testing.T) {
	unresolvable := EditInstruction{Intent: IntentEditObjects, Edits: []TargetedEdit{{Target: "ottoman"}}}
	tests := []struct {
		name     string
		instr    EditInstruction
		text     string
		previous *ImageState
		want     Intent
	}{
		{"no target with previous image", unresolvable, "make it cozier", sceneState(), IntentRegenerateRoom},
		{"literal target not in catalog", unresolvable, "add an ottoman", sceneState(), IntentRegenerateRoom},
		{"no target without previous image", unresolvable, "make it cozier", nil, IntentGenerateRoom},
		{"regenerate without previous image", EditInstruction{Intent: IntentRegenerateRoom}, "start over", nil, IntentGenerateRoom},
		{"regenerate with previous image", EditInstruction{Intent: IntentRegenerateRoom}, "start over", sceneState(), IntentRegenerateRoom},
		{"generate passes through", EditInstruction{Intent: IntentGenerateRoom}, "a scandinavian living room", nil, IntentGenerateRoom},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			instr, err := NewClassifier(&fakeLanguage{instr: tt.instr}).Classify(context.Background(), ClassifyInput{Text: tt.text, Previous: tt.previous})
			if err != nil {
				t.Fatalf("Classify() error = %v", err)
			}
			if instr.Intent != tt.want {
				t.Errorf("Intent = %q, want %q", instr.Intent, tt.want)
			}
			if instr.Intent != IntentEditObjects && len(instr.Edits) != 0 {
				t.Errorf("Edits = %+v, want none for %s", instr.Edits, instr.Intent)
			}
		})
	}
}

func TestClassify_AmbiguousTargetIsKept(t *testing.T) {
	lang := &fakeLanguage{instr: EditInstruction{Intent: IntentEditObjects, Edits: []TargetedEdit{{Target: "chair"}}}}
	prev := &ImageState{Image: "img", Catalog: chairCatalog()}
	instr, err := NewClassifier(lang).Classify(context.Background(), ClassifyInput{Text: "make the chair red", Previous: prev})
	if err != nil {
		t.Fatalf("Classify() error = %v", err)
	}
	if instr.Intent != IntentEditObjects {
		t.Errorf("Intent = %q, want the ambiguity left for the assembler", instr.Intent)
	}
	var amb *AmbiguityError
	if _, err := BuildEditTasks(instr, prev); !errors.As(err, &amb) {
		t.Errorf("BuildEditTasks() error = %v, want *AmbiguityError", err)
	}
}
