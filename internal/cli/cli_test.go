package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"golang.org/x/text/encoding/unicode"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/logging"
	"github.com/henry234/texttrack/internal/track"
)

const captionsVTT = `WEBVTT

1
00:00:01.000 --> 00:00:03.000
Hello

00:00:05.000 --> 00:00:07.000
World
`

const chaptersVTT = `WEBVTT

00:00:00.000 --> 00:00:04.000
Opening

00:00:04.000 --> 00:00:08.000
Middle

00:00:08.000 --> 00:00:10.000
Credits
`

func TestMain(m *testing.M) {
	logger = logging.Nop()
	os.Exit(m.Run())
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})
	err := rootCmd.Execute()
	return out.String(), err
}

func TestIsManifestPath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"movie.yaml", true},
		{"movie.YML", true},
		{"dir/movie.yml", true},
		{"captions.vtt", false},
		{"movie.mkv#1", false},
		{"yaml", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := isManifestPath(tt.path); got != tt.want {
				t.Errorf("isManifestPath(%q) = %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestOutputPaths(t *testing.T) {
	tests := []struct {
		name string
		got  string
		want string
	}{
		{"first stream", extractOutputPath("media/movie.mkv", 0), "media/movie.vtt"},
		{"later stream", extractOutputPath("movie.mp4", 2), "movie.2.vtt"},
		{"translate", translateOutputPath("movie.vtt", "ja"), "movie.ja.vtt"},
		{"translate no ext", translateOutputPath("movie", "fr"), "movie.fr.vtt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %q, want %q", tt.got, tt.want)
			}
		})
	}
}

func TestPrintCues(t *testing.T) {
	cues := []cue.Cue{
		{ID: "1", Index: 0, StartTime: 1, EndTime: 3, Text: "Hello\nthere"},
		{ID: "1", Index: 1, StartTime: 65.5, EndTime: 67, Text: "World"},
	}

	var buf bytes.Buffer
	if err := printCues(&buf, cues, false); err != nil {
		t.Fatal(err)
	}
	want := "0\t00:00:01.000 --> 00:00:03.000\t\"Hello\\nthere\"\n" +
		"1\t00:01:05.500 --> 00:01:07.000\t\"World\"\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("text output (-want +got):\n%s", diff)
	}

	buf.Reset()
	if err := printCues(&buf, nil, true); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "[]" {
		t.Errorf("empty JSON output = %q, want []", got)
	}
}

func TestPrintCueChange(t *testing.T) {
	var buf bytes.Buffer
	printCueChange(&buf, 2, "en", []cue.Cue{{Text: "a"}, {Text: "b"}})
	printCueChange(&buf, 3.25, "en", nil)

	want := "00:00:02.000  en: \"a\" | \"b\"\n00:00:03.250  en: -\n"
	if diff := cmp.Diff(want, buf.String()); diff != "" {
		t.Errorf("output (-want +got):\n%s", diff)
	}
}

func TestOpenSessionSingleFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.vtt", captionsVTT)

	sess, err := openSession(context.Background(), path, track.Captions, 0)
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if got := sess.clock.Duration(); got != 7 {
		t.Errorf("derived duration = %v, want 7", got)
	}
	all := sess.tracks.All()
	if len(all) != 1 {
		t.Fatalf("expected 1 track, got %d", len(all))
	}
	if all[0].Kind() != track.Captions || !all[0].Default() || all[0].ReadyState() != track.Loaded {
		t.Errorf("unexpected track: kind=%v default=%v ready=%v", all[0].Kind(), all[0].Default(), all[0].ReadyState())
	}

	sess, err = openSession(context.Background(), path, track.Captions, 42)
	if err != nil {
		t.Fatal(err)
	}
	if got := sess.clock.Duration(); got != 42 {
		t.Errorf("override duration = %v, want 42", got)
	}
}

func TestOpenSessionManifest(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "en.vtt", captionsVTT)
	writeFile(t, dir, "ch.vtt", chaptersVTT)
	path := writeFile(t, dir, "movie.yaml", `duration: 20
tracks:
  - id: en
    kind: captions
    src: en.vtt
    srclang: en
    default: true
  - id: ch
    kind: chapters
    src: ch.vtt
  - id: gone
    src: missing.vtt
`)

	sess, err := openSession(context.Background(), path, track.Subtitles, 0)
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	if got := sess.clock.Duration(); got != 20 {
		t.Errorf("duration = %v, want 20", got)
	}

	failed := failedTracks(sess.tracks)
	if len(failed) != 1 || failed[0].ID() != "gone" {
		t.Errorf("failed tracks = %v", failed)
	}
	if ch := sess.tracks.DefaultChapters(context.Background()); ch == nil || ch.ID() != "ch" {
		t.Errorf("DefaultChapters = %v", ch)
	}

	if _, err := openSession(context.Background(), filepath.Join(dir, "nope.yaml"), track.Subtitles, 0); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestParseCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.vtt", captionsVTT)

	out, err := execute(t, "parse", path, "--json")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}

	var got []cue.Cue
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, out)
	}
	want := []cue.Cue{
		{ID: "1", Index: 0, StartTime: 1, EndTime: 3, Text: "Hello"},
		{ID: "1", Index: 1, StartTime: 5, EndTime: 7, Text: "World"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cues (-want +got):\n%s", diff)
	}
}

func TestPlayCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "en.vtt", captionsVTT)

	out, err := execute(t, "play", path, "--step", "1")
	if err != nil {
		t.Fatalf("play failed: %v", err)
	}

	for _, want := range []string{
		"00:00:01.000  tt_subtitles_und_1: \"Hello\"\n",
		"00:00:03.000  tt_subtitles_und_1: -\n",
		"00:00:05.000  tt_subtitles_und_1: \"World\"\n",
		"00:00:07.000  tt_subtitles_und_1: -\n",
		"00:00:07.000  -- ended\n",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "00:00:02.000") {
		t.Errorf("no cue change expected at 2s:\n%s", out)
	}
}

func TestChaptersCommand(t *testing.T) {
	path := writeFile(t, t.TempDir(), "ch.vtt", chaptersVTT)

	out, err := execute(t, "chapters", path, "--at", "5")
	if err != nil {
		t.Fatalf("chapters failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 chapters, got %d:\n%s", len(lines), out)
	}
	for i, line := range lines {
		selected := strings.HasPrefix(line, "*")
		if selected != (i == 1) {
			t.Errorf("line %d selection = %v: %q", i, selected, line)
		}
	}
	if !strings.Contains(lines[1], "Middle") || !strings.Contains(lines[1], "00:00:04.000") {
		t.Errorf("selected line = %q", lines[1])
	}
}

func TestTranslateValidation(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("ANTHROPIC_API_KEY", "")

	if _, err := execute(t, "translate", filepath.Join(dir, "missing.vtt"), "-t", "es"); err == nil ||
		!strings.Contains(err.Error(), "not found") {
		t.Errorf("missing file error = %v", err)
	}

	path := writeFile(t, dir, "en.vtt", captionsVTT)
	_, err := execute(t, "translate", path, "-t", "es", "--provider", "anthropic")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("missing key error = %v", err)
	}

	// a UTF-16 track parses and reaches the key check
	path = writeFile(t, dir, "en16.vtt", utf16LE(t, captionsVTT))
	_, err = execute(t, "translate", path, "-t", "es", "--provider", "anthropic")
	if err == nil || !strings.Contains(err.Error(), "ANTHROPIC_API_KEY") {
		t.Errorf("UTF-16 track error = %v", err)
	}

	path = writeFile(t, dir, "broken.vtt", "WEBVTT\n\n00:xx --> 00:01.000\nHi\n")
	_, err = execute(t, "translate", path, "-t", "es", "--provider", "anthropic")
	if err == nil || !strings.Contains(err.Error(), "failed to parse") {
		t.Errorf("broken track error = %v", err)
	}
}

func utf16LE(t *testing.T, s string) string {
	t.Helper()
	enc := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder()
	out, err := enc.String(s)
	if err != nil {
		t.Fatal(err)
	}
	return out
}

func TestLoadTrackFileDecodesBOM(t *testing.T) {
	dir := t.TempDir()
	want := []cue.Cue{
		{ID: "1", Index: 0, StartTime: 1, EndTime: 3, Text: "Hello"},
		{ID: "1", Index: 1, StartTime: 5, EndTime: 7, Text: "World"},
	}

	tests := []struct {
		name    string
		content string
	}{
		{"utf-8", captionsVTT},
		{"utf-8 bom", "\uFEFF" + captionsVTT},
		{"utf-16le bom", utf16LE(t, captionsVTT)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, strings.ReplaceAll(tt.name, " ", "_")+".vtt", tt.content)
			got, err := loadTrackFile(context.Background(), path, "")
			if err != nil {
				t.Fatalf("loadTrackFile failed: %v", err)
			}
			if diff := cmp.Diff(want, got); diff != "" {
				t.Errorf("cues (-want +got):\n%s", diff)
			}
		})
	}

	if _, err := loadTrackFile(context.Background(), filepath.Join(dir, "missing.vtt"), ""); err == nil {
		t.Error("expected error for missing file")
	}
}
