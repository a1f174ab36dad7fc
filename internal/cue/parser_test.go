package cue

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestParseTime(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"00:01:14.815", 74.815},
		{"01:02:03,500", 3723.5},
		{"00:00.500", 0.5},
		{"00:05", 5},
		{"10:00", 600},
		{"1:00:00", 3600},
		{" 00:00:01.000 ", 1},
		{"00:00:07.000 align:start position:10%", 7},
		{"00:00:02.250\tline:0", 2.25},
		{"00:00:03.", 3},
		{"00:00:00.5", 0.005},
		{"00:90:00.000", 5400},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTime(tt.input)
			if err != nil {
				t.Fatalf("ParseTime(%q) returned error: %v", tt.input, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseTime(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseTimeErrors(t *testing.T) {
	tests := []string{
		"",
		"   ",
		"15",
		"15.000",
		"aa:00.000",
		"00:bb:00.000",
		"00:00:cc",
		"00:00:01.xyz",
		"-1:00.000",
		"00:00:00:01.000",
		":00.000",
	}

	for _, input := range tests {
		t.Run(input, func(t *testing.T) {
			_, err := ParseTime(input)
			if err == nil {
				t.Fatalf("ParseTime(%q) expected error", input)
			}
			if !errors.Is(err, ErrInvalidTimestamp) {
				t.Errorf("expected ErrInvalidTimestamp, got %v", err)
			}
		})
	}
}

func TestParseScenario(t *testing.T) {
	text := "WEBVTT\n\n1\n00:00:01.000 --> 00:00:03.000\nHello\n\n00:00:05.000 --> 00:00:07.000\nWorld\n"

	cues, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []Cue{
		{ID: "1", Index: 0, StartTime: 1, EndTime: 3, Text: "Hello"},
		{ID: "1", Index: 1, StartTime: 5, EndTime: 7, Text: "World"},
	}
	if diff := cmp.Diff(want, cues); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseIdentifiers(t *testing.T) {
	text := `WEBVTT

00:00:01.000 --> 00:00:02.000
first

intro
00:00:02.000 --> 00:00:03.000
second

00:00:03.000 --> 00:00:04.000
third
`
	cues, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 3 {
		t.Fatalf("expected 3 cues, got %d", len(cues))
	}

	wantIDs := []string{"0", "intro", "2"}
	for i, c := range cues {
		if c.ID != wantIDs[i] {
			t.Errorf("cue %d: id got %q, want %q", i, c.ID, wantIDs[i])
		}
		if c.Index != i {
			t.Errorf("cue %d: index got %d", i, c.Index)
		}
	}
}

func TestParsePayload(t *testing.T) {
	text := "WEBVTT - with a title\r\n\r\n" +
		"00:00:05.500 --> 00:00:08.200 align:middle line:84%\r\n" +
		"  This is a test.  \r\n" +
		"With multiple lines.\r\n" +
		"\r\n" +
		"00:00:10.000 --> 00:00:12.500\r\n" +
		"\r\n" +
		"00:00:13,000 --> 00:00:14,000\r\n" +
		"<b>bold</b>"

	p := &Parser{LineBreak: "<br/>"}
	cues, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}

	want := []Cue{
		{ID: "0", Index: 0, StartTime: 5.5, EndTime: 8.2, Text: "This is a test.<br/>With multiple lines."},
		{ID: "1", Index: 1, StartTime: 10, EndTime: 12.5, Text: ""},
		{ID: "2", Index: 2, StartTime: 13, EndTime: 14, Text: "<b>bold</b>"},
	}
	if diff := cmp.Diff(want, cues, cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Errorf("cues mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSkipsMetadataBlocks(t *testing.T) {
	text := `WEBVTT

NOTE this file was
hand written

STYLE
::cue { color: yellow }

00:00:01.000 --> 00:00:02.000
Hello

NOTE
00:00:03.000 --> 00:00:04.000
identifier that looks like a note
`
	cues, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 2 {
		t.Fatalf("expected 2 cues, got %d", len(cues))
	}
	if cues[0].Text != "Hello" || cues[0].ID != "0" {
		t.Errorf("cue 0: got %+v", cues[0])
	}
	if cues[1].ID != "NOTE" {
		t.Errorf("cue 1: id got %q, want %q", cues[1].ID, "NOTE")
	}
}

func TestParseHeaderIsNotValidated(t *testing.T) {
	cues, err := Parse("not a header\n\n00:01.000 --> 00:02.000\nok\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 1 {
		t.Fatalf("expected 1 cue, got %d", len(cues))
	}
}

func TestParseEmpty(t *testing.T) {
	for _, text := range []string{"", "WEBVTT", "WEBVTT\n\n\n"} {
		cues, err := Parse(text)
		if err != nil {
			t.Errorf("Parse(%q) returned error: %v", text, err)
		}
		if len(cues) != 0 {
			t.Errorf("Parse(%q): expected no cues, got %d", text, len(cues))
		}
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		line    int
		wantErr error
	}{
		{
			name:    "bad start timestamp",
			text:    "WEBVTT\n\n00:xx.000 --> 00:02.000\nHello\n",
			line:    3,
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "single group end timestamp",
			text:    "WEBVTT\n\n1\n00:00:01.000 --> 2\nHello\n",
			line:    4,
			wantErr: ErrInvalidTimestamp,
		},
		{
			name:    "identifier without timing",
			text:    "WEBVTT\n\nintro\nHello\n",
			line:    4,
			wantErr: ErrMissingTiming,
		},
		{
			name:    "identifier at end of input",
			text:    "WEBVTT\n\n00:01.000 --> 00:02.000\nok\n\ndangling",
			line:    6,
			wantErr: ErrMissingTiming,
		},
		{
			name:    "end before start",
			text:    "WEBVTT\n\n00:05.000 --> 00:02.000\nbackwards\n",
			line:    3,
			wantErr: ErrEndBeforeStart,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cues, err := Parse(tt.text)
			if err == nil {
				t.Fatal("expected error")
			}
			if cues != nil {
				t.Errorf("expected no cues on error, got %d", len(cues))
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
			var perr *ParseError
			if !errors.As(err, &perr) {
				t.Fatalf("expected *ParseError, got %T", err)
			}
			if perr.Line != tt.line {
				t.Errorf("line: got %d, want %d", perr.Line, tt.line)
			}
		})
	}
}

func TestParseZeroLengthCue(t *testing.T) {
	cues, err := Parse("WEBVTT\n\n00:02.000 --> 00:02.000\nblink\n")
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if len(cues) != 1 || cues[0].StartTime != cues[0].EndTime {
		t.Fatalf("unexpected cues: %+v", cues)
	}
	if cues[0].Contains(2) {
		t.Error("zero-length cue should never contain a time")
	}
}

func TestCueContains(t *testing.T) {
	c := Cue{StartTime: 1, EndTime: 3}
	tests := []struct {
		t    float64
		want bool
	}{
		{0.999, false},
		{1, true},
		{2.5, true},
		{3, false},
	}
	for _, tt := range tests {
		if got := c.Contains(tt.t); got != tt.want {
			t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
		}
	}
}
