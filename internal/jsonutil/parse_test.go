package jsonutil

import "testing"

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name, in, want string
	}{
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n[1,2]\n```", "[1,2]"},
		{"no fence", `  {"a":1} `, `{"a":1}`},
		{"unclosed fence", "```json\n{\"a\":1}", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripMarkdownFences(tt.in); got != tt.want {
				t.Errorf("StripMarkdownFences() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name, in, want string
		wantErr        bool
	}{
		{"prose around object", `Here you go: {"a": {"b": 1}} hope it helps {}`, `{"a": {"b": 1}}`, false},
		{"array first", `result [{"x":1}] done`, `[{"x":1}]`, false},
		{"brace in string", `{"label": "shelf }"}`, `{"label": "shelf }"}`, false},
		{"escaped quote", `{"label": "21\" monitor"}`, `{"label": "21\" monitor"}`, false},
		{"none", "no json here", "", true},
		{"unterminated", `{"a": 1`, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ExtractJSON() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	type item struct {
		Label string `json:"label"`
	}
	got, err := ParseJSON[[]item]("```json\n[{\"label\":\"sofa\"},{\"label\":\"lamp\"}]\n```")
	if err != nil {
		t.Fatalf("ParseJSON() error = %v", err)
	}
	if len(got) != 2 || got[1].Label != "lamp" {
		t.Errorf("ParseJSON() = %+v", got)
	}
	if _, err := ParseJSON[item](`{"label": 3}`); err == nil {
		t.Error("ParseJSON() error = nil, want type error")
	}
}
