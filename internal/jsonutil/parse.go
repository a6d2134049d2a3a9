// Package jsonutil extracts and decodes JSON from model responses that may be
// wrapped in markdown fences or surrounded by prose.
package jsonutil

import (
	"encoding/json"
	"fmt"
	"strings"
)

// StripMarkdownFences returns the body of a ```json ... ``` (or bare ```)
// block, or text unchanged when it is not fenced.
func StripMarkdownFences(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	_, body, ok := strings.Cut(text, "\n")
	if !ok {
		return text
	}
	if i := strings.LastIndex(body, "```"); i >= 0 {
		body = body[:i]
	}
	return strings.TrimSpace(body)
}

// ExtractJSON returns the first complete JSON object or array in text.
// Brackets inside string literals are ignored.
func ExtractJSON(text string) (string, error) {
	start := strings.IndexAny(text, "{[")
	if start < 0 {
		return "", fmt.Errorf("no JSON content found")
	}
	depth := 0
	inString, escaped := false, false
	for i := start; i < len(text); i++ {
		c := text[i]
		switch {
		case escaped:
			escaped = false
		case inString && c == '\\':
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{' || c == '[':
			depth++
		case c == '}' || c == ']':
			depth--
			if depth == 0 {
				return text[start : i+1], nil
			}
		}
	}
	return "", fmt.Errorf("unterminated JSON starting at offset %d", start)
}

// ParseJSON strips fences, extracts the JSON payload and decodes it into T.
func ParseJSON[T any](raw string) (T, error) {
	var out T
	payload, err := ExtractJSON(StripMarkdownFences(raw))
	if err != nil {
		return out, fmt.Errorf("%w (raw length: %d)", err, len(raw))
	}
	if err := json.Unmarshal([]byte(payload), &out); err != nil {
		return out, fmt.Errorf("invalid JSON: %w (text: %s)", err, preview(payload, 200))
	}
	return out, nil
}

func preview(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
