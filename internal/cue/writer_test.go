package cue

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "00:00:00.000"},
		{0.5, "00:00:00.500"},
		{74.815, "00:01:14.815"},
		{3723.5, "01:02:03.500"},
		{59.9996, "00:01:00.000"},
		{-3, "00:00:00.000"},
		{36000, "10:00:00.000"},
	}

	for _, tt := range tests {
		if got := FormatTime(tt.seconds); got != tt.want {
			t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}

func TestWriteRoundTrip(t *testing.T) {
	cues := []Cue{
		{ID: "intro", Index: 0, StartTime: 0, EndTime: 1.25, Text: "Hello"},
		{ID: "1", Index: 1, StartTime: 1.25, EndTime: 4.999, Text: "Two\nlines"},
		{ID: "2", Index: 2, StartTime: 3, EndTime: 3723.5, Text: "overlapping"},
		{ID: "3", Index: 3, StartTime: 4000.001, EndTime: 4000.001, Text: ""},
	}

	var sb strings.Builder
	if err := Write(&sb, cues, DefaultLineBreak); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	got, err := Parse(sb.String())
	if err != nil {
		t.Fatalf("Parse failed: %v\n%s", err, sb.String())
	}

	if diff := cmp.Diff(cues, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRoundTripCustomLineBreak(t *testing.T) {
	cues := []Cue{
		{ID: "0", Index: 0, StartTime: 1, EndTime: 2, Text: "a<br/>b<br/>c"},
	}

	var sb strings.Builder
	if err := Write(&sb, cues, "<br/>"); err != nil {
		t.Fatalf("Write failed: %v", err)
	}
	if !strings.Contains(sb.String(), "a\nb\nc\n") {
		t.Errorf("expected payload lines split on marker, got:\n%s", sb.String())
	}

	p := &Parser{LineBreak: "<br/>"}
	got, err := p.Parse(sb.String())
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got[0].Text != cues[0].Text {
		t.Errorf("text: got %q, want %q", got[0].Text, cues[0].Text)
	}
}

func TestWriteFileRoundTrip(t *testing.T) {
	cues := []Cue{
		{ID: "0", Index: 0, StartTime: 1, EndTime: 4, Text: "Hello, world!"},
		{ID: "1", Index: 1, StartTime: 5.5, EndTime: 8.2, Text: "This is a test."},
	}

	path := filepath.Join(t.TempDir(), "nested", "out.vtt")
	if err := WriteFile(path, cues, DefaultLineBreak); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written file: %v", err)
	}
	got, err := Parse(string(data))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := cmp.Diff(cues, got, cmpopts.EquateApprox(0, 1e-6)); diff != "" {
		t.Errorf("mismatch (-want +got):\n%s", diff)
	}
}
