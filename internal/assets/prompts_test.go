package assets

import (
	"strings"
	"testing"
)

func TestRenderIntentPrompt(t *testing.T) {
	got := RenderIntentPrompt(IntentPromptData{
		HasPreviousImage: true,
		Objects:          []PromptObject{{Label: "sofa", Category: "furniture"}, {Label: "floor lamp", Category: "lighting"}},
		Request:          "make the sofa green",
	})
	for _, want := range []string{"There is a current image", "- sofa (furniture)", "- floor lamp (lighting)", "Request: make the sofa green"} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderIntentPrompt() missing %q:\n%s", want, got)
		}
	}

	got = RenderIntentPrompt(IntentPromptData{Request: "a cozy reading nook"})
	if !strings.Contains(got, "no image of the room yet") {
		t.Errorf("RenderIntentPrompt() without image:\n%s", got)
	}
}

func TestRenderDetectionPrompt(t *testing.T) {
	if got := RenderDetectionPrompt(6); !strings.Contains(got, "at most 6 entries") {
		t.Errorf("RenderDetectionPrompt() = %s", got)
	}
}

func TestRenderFloorPlanPrompt(t *testing.T) {
	got := RenderFloorPlanPrompt("two-bedroom apartment")
	for _, want := range []string{"It shows a two-bedroom apartment.", `"connects_to"`, `"adjacent_rooms"`} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderFloorPlanPrompt() missing %q:\n%s", want, got)
		}
	}
	if got := RenderFloorPlanPrompt("  "); strings.Contains(got, "It shows") {
		t.Errorf("RenderFloorPlanPrompt() without context:\n%s", got)
	}
}

func TestIntentSystemPrompt(t *testing.T) {
	for _, intent := range []string{"generate_room", "edit_objects", "regenerate_room"} {
		if !strings.Contains(IntentSystemPrompt, intent) {
			t.Errorf("IntentSystemPrompt does not mention %s", intent)
		}
	}
}
