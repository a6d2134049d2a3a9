package roomedit

import (
	"fmt"
	"sort"
	"strings"
)

// preservedElements is everything outside the mask that an inpaint must
// leave alone. Mask geometry alone does not stop the synthesis model from
// drifting, so the prompt names each one.
var preservedElements = []string{
	"walls",
	"floor",
	"ceiling",
	"other furniture",
	"lighting",
	"decor",
}

// InpaintPrompt builds the prompt for editing target inside its mask.
func InpaintPrompt(target DetectedObject, edit TargetedEdit, instr EditInstruction) string {
	var sb strings.Builder
	action := edit.Action
	if action == "" {
		action = ActionModify
	}
	fmt.Fprintf(&sb, "Edit only the masked region of this room photo. The masked region contains the %s (%s).\n", target.Label, target.Category)
	if action == ActionReplace {
		fmt.Fprintf(&sb, "Replace the %s as requested.\n", target.Label)
	} else {
		fmt.Fprintf(&sb, "Modify the %s as requested.\n", target.Label)
	}
	fmt.Fprintf(&sb, "Request: %s\n", edit.instructionText(instr.Request))
	if attrs := attributeLines(edit.Attributes); len(attrs) > 0 {
		sb.WriteString("Attributes:\n")
		for _, a := range attrs {
			sb.WriteString("- " + a + "\n")
		}
	}
	sb.WriteString("Do not change anything outside the mask. Keep unchanged: ")
	sb.WriteString(strings.Join(preservedElements, ", "))
	sb.WriteString(".\n")
	sb.WriteString(constraintLines(instr.Constraints))
	sb.WriteString("Match the existing perspective, scale and shadows so the edit blends in.")
	return sb.String()
}

// GeneratePrompt builds the prompt for rendering a whole room.
func GeneratePrompt(instr EditInstruction) string {
	var sb strings.Builder
	sb.WriteString("Photorealistic interior photograph of a room.\n")
	if r := strings.TrimSpace(instr.Request); r != "" {
		fmt.Fprintf(&sb, "Request: %s\n", r)
	}
	sb.WriteString(constraintLines(instr.Constraints))
	sb.WriteString("Eye-level camera, natural light, no people, no text.")
	return sb.String()
}

// attributeLines renders attributes in key order. Nil values mean the
// attribute is explicitly unset.
func attributeLines(attrs map[string]*string) []string {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		if k == AttrInstruction {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		if v := attrs[k]; v != nil {
			lines = append(lines, k+": "+*v)
		} else {
			lines = append(lines, k+": unchanged")
		}
	}
	return lines
}

func constraintLines(c Constraints) string {
	var sb strings.Builder
	if c.PreserveLayout {
		sb.WriteString("Preserve the room layout.\n")
	}
	if c.PreserveLighting {
		sb.WriteString("Preserve the existing lighting.\n")
	}
	if c.PreserveCamera {
		sb.WriteString("Preserve the camera angle and framing.\n")
	}
	return sb.String()
}
