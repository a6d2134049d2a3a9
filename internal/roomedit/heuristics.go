package roomedit

// heuristics.go holds the keyword heuristics behind edit-type inference and
// ambiguity qualifiers. Both are strategies so a stronger language model can
// replace them without touching the assembler's guarantees.

import (
	"slices"
	"strings"
	"unicode"
)

// EditType is the kind of change an instruction asks for.
type EditType string

// Edit types.
const (
	EditRemove  EditType = "remove"
	EditAdd     EditType = "add"
	EditReplace EditType = "replace"
	EditModify  EditType = "modify"
)

// EditTypeInferrer infers the edit type of a free-text instruction.
type EditTypeInferrer interface {
	InferEditType(instruction string) EditType
}

// QualifierDetector reports whether a target phrase carries a disambiguating
// qualifier (a position word or an architectural-element name).
type QualifierDetector interface {
	HasQualifier(phrase string) bool
}

// KeywordHeuristics is the default keyword-matching strategy. Keywords match
// whole words in their inflected forms, so "removing" is a remove and
// "leftmost" a position, while "address" is not an "add".
type KeywordHeuristics struct{}

var (
	_ EditTypeInferrer  = KeywordHeuristics{}
	_ QualifierDetector = KeywordHeuristics{}
)

// keyword is a sequence of words; each word is the set of forms it may take.
type keyword [][]string

// forms returns stem+suffix for every suffix.
func forms(stem string, suffixes ...string) []string {
	out := make([]string, 0, len(suffixes))
	for _, suf := range suffixes {
		out = append(out, stem+suf)
	}
	return out
}

func word(w ...string) []string { return w }

var editTypeKeywords = []struct {
	editType EditType
	keywords []keyword
}{
	{EditRemove, []keyword{
		{forms("remov", "e", "es", "ed", "ing", "al")},
		{forms("delet", "e", "es", "ed", "ing", "ion")},
	}},
	{EditAdd, []keyword{
		{forms("add", "", "s", "ed", "ing", "ition")},
		{forms("plac", "e", "es", "ed", "ing", "ement")},
		{forms("put", "", "s", "ting")},
	}},
	{EditReplace, []keyword{
		{forms("chang", "e", "es", "ed", "ing"), word("to", "into")},
		{forms("replac", "e", "es", "ed", "ing"), word("with", "by")},
		{forms("swap", "", "s", "ped", "ping")},
	}},
}

// positionKeywords are the position words that disambiguate a target.
var positionKeywords = []keyword{
	{forms("near", "", "er", "est")},
	{word("by", "beside")},
	{word("next"), word("to")},
	{forms("left", "", "most")},
	{forms("right", "", "most")},
	{forms("corner", "", "s")},
	{word("center", "centre", "centered", "centred", "central", "middle")},
}

// ArchitecturalElements are element names that disambiguate a target when
// they appear in the phrase ("the chair by the window").
var ArchitecturalElements = []string{"window", "door", "wall", "ceiling", "floor", "fireplace", "column", "beam", "staircase", "stairs", "archway"}

// InferEditType implements EditTypeInferrer: remove/delete → remove;
// add/place/put → add; change to/replace with/swap → replace; else modify.
func (KeywordHeuristics) InferEditType(instruction string) EditType {
	words := strings.Fields(normalizeWords(instruction))
	for _, kw := range editTypeKeywords {
		for _, k := range kw.keywords {
			if k.matchAt(words) >= 0 {
				return kw.editType
			}
		}
	}
	return EditModify
}

// HasQualifier implements QualifierDetector.
func (KeywordHeuristics) HasQualifier(phrase string) bool {
	if positionIndex(strings.Fields(normalizeWords(phrase))) >= 0 {
		return true
	}
	text := normalizeWords(phrase)
	for _, a := range ArchitecturalElements {
		if containsPhrase(text, a) {
			return true
		}
	}
	return false
}

// matchAt returns the index of the first word where k starts, or -1.
func (k keyword) matchAt(words []string) int {
	for i := 0; i+len(k) <= len(words); i++ {
		if k.matchesFrom(words, i) {
			return i
		}
	}
	return -1
}

func (k keyword) matchesFrom(words []string, i int) bool {
	if i+len(k) > len(words) {
		return false
	}
	for j, accepted := range k {
		if !slices.Contains(accepted, words[i+j]) {
			return false
		}
	}
	return true
}

// positionIndex returns the index of the first word starting a position
// qualifier, or -1.
func positionIndex(words []string) int {
	for i := range words {
		for _, k := range positionKeywords {
			if k.matchesFrom(words, i) {
				return i
			}
		}
	}
	return -1
}

// normalizeWords lowercases s and collapses every run of non-alphanumeric
// characters into a single space, padding both ends so phrases can be matched
// as " word ".
func normalizeWords(s string) string {
	var sb strings.Builder
	sb.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			space = false
			continue
		}
		if !space {
			sb.WriteByte(' ')
			space = true
		}
	}
	if !space {
		sb.WriteByte(' ')
	}
	return sb.String()
}

// containsPhrase reports whether normalized text contains phrase as whole
// words. A trailing plural "s" on the last word also matches.
func containsPhrase(normalized, phrase string) bool {
	p := strings.TrimSpace(normalizeWords(phrase))
	if p == "" {
		return false
	}
	return strings.Contains(normalized, " "+p+" ") || strings.Contains(normalized, " "+p+"s ")
}

// stopWords are dropped when reducing a qualified phrase to its head noun.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "on": true, "in": true, "at": true,
	"of": true, "to": true, "with": true, "one": true, "that": true, "this": true,
}

// corePhrase reduces a qualified phrase to the part naming the object:
// "chair near the window" → "chair", "leftmost armchair" → "armchair",
// "lamp in the corner" → "lamp".
func corePhrase(phrase string) string {
	words := strings.Fields(normalizeWords(phrase))
	var kept []string
	if cut := positionIndex(words); cut > 0 {
		kept = words[:cut]
	} else {
		for _, w := range words {
			if !isPositionWord(w) {
				kept = append(kept, w)
			}
		}
	}
	var out []string
	for _, w := range kept {
		if !stopWords[w] {
			out = append(out, w)
		}
	}
	return strings.Join(out, " ")
}

func isPositionWord(w string) bool {
	if w == "next" {
		return true
	}
	for _, k := range positionKeywords {
		if len(k) == 1 && slices.Contains(k[0], w) {
			return true
		}
	}
	return false
}
