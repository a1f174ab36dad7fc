package translate

import (
	"testing"
)

func TestExtractResults(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantCount int
		wantErr   bool
	}{
		{
			name: "plain valid array",
			input: `[
				{"index": 0, "text": "こんにちは"},
				{"index": 1, "text": "さようなら"}
			]`,
			wantCount: 2,
		},
		{
			name: "preamble with valid array",
			input: `Here is the translation:
			[
				{"index": 0, "text": "Bonjour"},
				{"index": 1, "text": "Au revoir"}
			]`,
			wantCount: 2,
		},
		{
			name: "valid array with trailing text",
			input: `[
				{"index": 0, "text": "Hola"}
			]
			I hope this helps!`,
			wantCount: 1,
		},
		{
			name: "wrapper object with results key",
			input: `{"results": [
				{"index": 0, "text": "Translated"}
			]}`,
			wantCount: 1,
		},
		{
			name: "wrapper object with translations key",
			input: `{"translations": [
				{"index": 0, "text": "Übersetzt"}
			]}`,
			wantCount: 1,
		},
		{
			name:      "wrapper object with unknown key",
			input:     `{"output": [{"index": 3, "text": "Переведено"}]}`,
			wantCount: 1,
		},
		{
			name:    "empty array",
			input:   `[]`,
			wantErr: true,
		},
		{
			name:    "no JSON at all",
			input:   `This is just plain text.`,
			wantErr: true,
		},
		{
			name:    "invalid JSON",
			input:   `[{"index": 0, "text": "incomplete"`,
			wantErr: true,
		},
		{
			name:    "array with empty text",
			input:   `[{"index": 0, "text": ""}]`,
			wantErr: true,
		},
		{
			name: "line break escape in text",
			input: `[
				{"index": 0, "text": "That's why they are fuming...\Nthese two."}
			]`,
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := extractResults(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(results) != tt.wantCount {
				t.Errorf("got %d results, want %d", len(results), tt.wantCount)
			}
		})
	}
}

func TestExtractResultsKeepsLineBreakMarker(t *testing.T) {
	results, err := extractResults(`[{"index": 0, "text": "one\Ntwo"}]`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results[0].Text != `one\Ntwo` {
		t.Errorf("text = %q, want literal \\N preserved", results[0].Text)
	}
}

func TestCleanJSONResponse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain JSON",
			input: `[{"index": 0, "text": "hello"}]`,
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "json code fence",
			input: "```json\n[{\"index\": 0, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "plain code fence",
			input: "```\n[{\"index\": 0, \"text\": \"hello\"}]\n```",
			want:  `[{"index": 0, "text": "hello"}]`,
		},
		{
			name:  "with leading/trailing whitespace",
			input: "  \n\n```json\n[{\"index\": 0}]\n```\n\n  ",
			want:  `[{"index": 0}]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cleanJSONResponse(tt.input); got != tt.want {
				t.Errorf("cleanJSONResponse() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFixInvalidEscapes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{`a\Nb`, `a\\Nb`},
		{`a\nb`, `a\nb`},
		{`\"quoted\"`, `\"quoted\"`},
		{`\\N`, `\\N`},
		{`trailing\`, `trailing\`},
	}
	for _, tt := range tests {
		if got := fixInvalidEscapes(tt.input); got != tt.want {
			t.Errorf("fixInvalidEscapes(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestValidateResults(t *testing.T) {
	tests := []struct {
		name    string
		results []Result
		want    bool
	}{
		{"empty slice", []Result{}, false},
		{"nil slice", nil, false},
		{"result with text", []Result{{Index: 0, Text: "hello"}}, true},
		{"result with empty text", []Result{{Index: 0, Text: ""}}, false},
		{
			"multiple results one valid",
			[]Result{{Index: 0, Text: ""}, {Index: 1, Text: "valid"}},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := validateResults(tt.results); got != tt.want {
				t.Errorf("validateResults() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateString(t *testing.T) {
	if got := truncateString("abcdef", 3); got != "abc..." {
		t.Errorf("truncateString = %q", got)
	}
	if got := truncateString("abc", 3); got != "abc" {
		t.Errorf("truncateString = %q", got)
	}
}
