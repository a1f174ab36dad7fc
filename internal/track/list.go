package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/henry234/texttrack/internal/logging"
	"github.com/henry234/texttrack/internal/source"
	"github.com/henry234/texttrack/internal/tracker"
)

var ErrTrackNotFound = errors.New("track not found")

// List is the set of text tracks attached to one player. It owns the ID
// generator and fans clock ticks out to every active track.
type List struct {
	clock  tracker.Clock
	loader source.Loader
	logger *logging.Logger
	ids    IDGenerator

	tracks    []*Track
	listeners []Listener
	onChange  []func(Kind)
}

func NewList(clock tracker.Clock, loader source.Loader, logger *logging.Logger) *List {
	if logger == nil {
		logger = logging.Nop()
	}
	return &List{
		clock:  clock,
		loader: loader,
		logger: logger,
	}
}

// Add creates one track per options value, assigning IDs to those that lack
// one. Nothing is added when an ID is already taken.
func (l *List) Add(opts ...Options) ([]*Track, error) {
	seen := make(map[string]bool, len(l.tracks)+len(opts))
	for _, t := range l.tracks {
		seen[t.ID()] = true
	}

	added := make([]*Track, 0, len(opts))
	for _, o := range opts {
		if o.ID == "" {
			o.ID = l.ids.Next(o.Kind, o.Language)
		}
		if seen[o.ID] {
			return nil, fmt.Errorf("duplicate track id %q", o.ID)
		}
		seen[o.ID] = true

		t := New(o, l.clock, l.loader, l.logger)
		for _, lis := range l.listeners {
			t.On(lis)
		}
		added = append(added, t)
	}

	l.tracks = append(l.tracks, added...)
	return added, nil
}

// On registers a listener on every current and future track.
func (l *List) On(lis Listener) {
	l.listeners = append(l.listeners, lis)
	for _, t := range l.tracks {
		t.On(lis)
	}
}

// OnTrackChange registers fn to be called with the kind whose selection
// changed.
func (l *List) OnTrackChange(fn func(Kind)) {
	l.onChange = append(l.onChange, fn)
}

func (l *List) trackChange(kind Kind) {
	for _, fn := range l.onChange {
		fn(kind)
	}
}

func (l *List) Get(id string) (*Track, bool) {
	for _, t := range l.tracks {
		if t.ID() == id {
			return t, true
		}
	}
	return nil, false
}

func (l *List) All() []*Track {
	return l.tracks
}

func (l *List) Len() int {
	return len(l.tracks)
}

func (l *List) ByKind(kind Kind) []*Track {
	var out []*Track
	for _, t := range l.tracks {
		if t.Kind() == kind {
			out = append(out, t)
		}
	}
	return out
}

// Show shows the track with the given id. With exclusive set, other tracks
// of the same kind are disabled first. Load failures are logged and recorded
// on the track; only an unknown id is returned as an error.
func (l *List) Show(ctx context.Context, id string, exclusive bool) error {
	target, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	if exclusive {
		for _, t := range l.tracks {
			if t != target && t.Kind() == target.Kind() && t.Mode() != ModeOff {
				t.Disable()
			}
		}
	}

	if err := target.Show(ctx); err != nil {
		l.logger.Warnw("showing track without cues", "track", id, "error", err)
	}
	l.trackChange(target.Kind())
	return nil
}

// SetMode moves one track to mode. Exclusive only applies to ModeShowing.
func (l *List) SetMode(ctx context.Context, id string, mode Mode, exclusive bool) error {
	t, ok := l.Get(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrTrackNotFound, id)
	}

	switch mode {
	case ModeShowing:
		return l.Show(ctx, id, exclusive)
	case ModeHidden:
		if err := t.Hide(ctx); err != nil {
			l.logger.Warnw("hiding track without cues", "track", id, "error", err)
		}
	case ModeOff:
		t.Disable()
	default:
		return fmt.Errorf("unknown track mode %v", mode)
	}
	l.trackChange(t.Kind())
	return nil
}

// DisableKind turns off every track of the given kind.
func (l *List) DisableKind(kind Kind) {
	for _, t := range l.tracks {
		if t.Kind() == kind {
			t.Disable()
		}
	}
	l.trackChange(kind)
}

// ShowDefaults shows the first track of each kind flagged as default.
func (l *List) ShowDefaults(ctx context.Context) {
	shown := make(map[Kind]bool)
	for _, t := range l.tracks {
		if !t.Default() || shown[t.Kind()] {
			continue
		}
		shown[t.Kind()] = true
		if err := l.Show(ctx, t.ID(), true); err != nil {
			l.logger.Warnw("failed to show default track", "track", t.ID(), "error", err)
		}
	}
}

// DefaultChapters returns the chapters track used for navigation: the first
// one flagged default, else the first chapters track. Its cues are loaded if
// needed.
func (l *List) DefaultChapters(ctx context.Context) *Track {
	chapters := l.ByKind(Chapters)
	if len(chapters) == 0 {
		return nil
	}

	pick := chapters[0]
	for _, t := range chapters {
		if t.Default() {
			pick = t
			break
		}
	}
	if pick.ReadyState() == None {
		_ = pick.Load(ctx)
	}
	return pick
}

// TimeUpdate ticks every track that is not off and returns how many changed.
func (l *List) TimeUpdate() int {
	changed := 0
	for _, t := range l.tracks {
		if t.TimeUpdate() {
			changed++
		}
	}
	return changed
}

// Ended forwards the end of playback to every track that is not off.
func (l *List) Ended() {
	for _, t := range l.tracks {
		t.Ended()
	}
}
