package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNamedAddsComponentField(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.Named("tracker").Infow("cue change", "track", "tt_captions_en_1")

	entries := logs.All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["component"] != "tracker" {
		t.Errorf("component: got %v, want %q", fields["component"], "tracker")
	}
	if fields["track"] != "tt_captions_en_1" {
		t.Errorf("track: got %v, want %q", fields["track"], "tt_captions_en_1")
	}
}

func TestNopDoesNotPanic(t *testing.T) {
	l := Nop()
	l.Infow("ignored", "k", 1)
	l.Named("x").Debugw("ignored")
}

func TestNewLoggerLevels(t *testing.T) {
	if NewLogger(false).Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("non-verbose logger should not enable debug")
	}
	if !NewLogger(true).Desugar().Core().Enabled(zap.DebugLevel) {
		t.Error("verbose logger should enable debug")
	}
}
