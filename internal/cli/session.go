package cli

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/manifest"
	"github.com/henry234/texttrack/internal/media"
	"github.com/henry234/texttrack/internal/playback"
	"github.com/henry234/texttrack/internal/source"
	"github.com/henry234/texttrack/internal/track"
)

const httpTimeout = 30 * time.Second

// session is one media item with its tracks loaded and a clock sized to it.
type session struct {
	manifest *manifest.Manifest
	clock    *playback.Clock
	tracks   *track.List
}

func isManifestPath(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}

func newLoader() source.Loader {
	return source.NewAuto(&http.Client{Timeout: httpTimeout}, media.NewExtractor(""))
}

// openSession reads a manifest, or wraps a single track source of the given
// kind, loads every track and sizes the clock. duration overrides the media
// length when positive.
func openSession(ctx context.Context, path string, kind track.Kind, duration float64) (*session, error) {
	var m *manifest.Manifest
	if isManifestPath(path) {
		var err error
		if m, err = manifest.Load(path); err != nil {
			return nil, err
		}
	} else {
		m = manifest.Single(path, kind)
		if base, _, err := source.SplitStream(path); err == nil && media.IsMediaFile(base) {
			m.Media = base
		}
	}

	opts, err := m.Options()
	if err != nil {
		return nil, err
	}

	clock := playback.NewClock(0)
	list := track.NewList(clock, newLoader(), logger)
	if _, err := list.Add(opts...); err != nil {
		return nil, err
	}

	for _, t := range list.All() {
		// failures stay on the track and are reported by callers
		_ = t.Load(ctx)
	}

	clock.SetDuration(resolveDuration(ctx, m, list, duration))
	logger.Debugw("session opened",
		"source", path,
		"tracks", list.Len(),
		"duration", clock.Duration(),
	)
	return &session{manifest: m, clock: clock, tracks: list}, nil
}

// resolveDuration picks the media length: the override, then the manifest,
// then a probe of the media file, then the end of the last cue.
func resolveDuration(ctx context.Context, m *manifest.Manifest, list *track.List, override float64) float64 {
	if override > 0 {
		return override
	}
	if m.Duration > 0 {
		return m.Duration
	}
	if m.Media != "" && !source.IsURL(m.Media) {
		info, err := media.Probe(ctx, m.Media)
		if err == nil && info.Duration > 0 {
			return info.Duration
		}
		logger.Warnw("could not probe media duration", "media", m.Media, "error", err)
	}

	var end float64
	for _, t := range list.All() {
		for _, c := range t.Cues() {
			end = max(end, c.EndTime)
		}
	}
	return end
}

// failedTracks reports the tracks that could not be loaded.
func failedTracks(list *track.List) []*track.Track {
	var out []*track.Track
	for _, t := range list.All() {
		if t.ReadyState() == track.Failed {
			out = append(out, t)
		}
	}
	return out
}

func parseKindFlag(s string) (track.Kind, error) {
	kind, err := track.ParseKind(s)
	if err != nil {
		return 0, fmt.Errorf("invalid --kind: %w", err)
	}
	return kind, nil
}

// loadTrackFile reads a local track through the BOM-aware file loader and
// parses it with lineBreak as the payload marker.
func loadTrackFile(ctx context.Context, path, lineBreak string) ([]cue.Cue, error) {
	text, err := source.FileLoader{}.Load(ctx, path)
	if err != nil {
		return nil, err
	}

	parser := cue.NewParser()
	if lineBreak != "" {
		parser.LineBreak = lineBreak
	}
	cues, err := parser.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return cues, nil
}
