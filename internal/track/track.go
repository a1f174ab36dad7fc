// Package track models the text tracks attached to a media player: their
// kind, display mode and loading lifecycle, and the per-track active cue
// tracking that runs on every clock tick.
package track

import (
	"context"
	"errors"
	"fmt"

	"github.com/henry234/texttrack/internal/cue"
	"github.com/henry234/texttrack/internal/logging"
	"github.com/henry234/texttrack/internal/source"
	"github.com/henry234/texttrack/internal/tracker"
)

var ErrNoSource = errors.New("track has no source")

type Options struct {
	// assigned by the owning List when empty
	ID       string
	Kind     Kind
	Src      string
	Language string
	Label    string
	Title    string
	// shown by List.ShowDefaults
	Default bool
	// payload line-break marker; cue.DefaultLineBreak when empty
	LineBreak string
}

type EventType uint8

const (
	EventLoaded EventType = iota
	EventError
	EventCueChange
)

func (e EventType) String() string {
	switch e {
	case EventLoaded:
		return "loaded"
	case EventError:
		return "error"
	case EventCueChange:
		return "cuechange"
	}
	return fmt.Sprintf("event(%d)", uint8(e))
}

type Event struct {
	Type  EventType
	Track *Track
	// active cues after a cue change
	Active []cue.Cue
	Err    error
}

type Listener func(Event)

// Track is one timed-text track. Like the tracker it wraps, a Track is not
// safe for concurrent use.
type Track struct {
	opts   Options
	clock  tracker.Clock
	loader source.Loader
	logger *logging.Logger

	mode    Mode
	ready   ReadyState
	cues    []cue.Cue
	tracker *tracker.Tracker
	err     error

	listeners []Listener
}

func New(opts Options, clock tracker.Clock, loader source.Loader, logger *logging.Logger) *Track {
	if logger == nil {
		logger = logging.Nop()
	}
	return &Track{
		opts:   opts,
		clock:  clock,
		loader: loader,
		logger: logger,
	}
}

// On registers a listener for loaded, error and cuechange events.
func (t *Track) On(l Listener) {
	t.listeners = append(t.listeners, l)
}

func (t *Track) emit(ev Event) {
	ev.Track = t
	for _, l := range t.listeners {
		l(ev)
	}
}

// Load fetches and parses the track source. It only does work while the
// track has never been loaded; later calls return the stored load error.
func (t *Track) Load(ctx context.Context) error {
	if t.ready != None {
		return t.err
	}
	t.ready = Loading

	if t.opts.Src == "" || t.loader == nil {
		return t.fail(ErrNoSource)
	}

	t.logger.Debugw("loading track", "track", t.opts.ID, "src", t.opts.Src)
	text, err := t.loader.Load(ctx, t.opts.Src)
	if err != nil {
		return t.fail(fmt.Errorf("failed to load %s: %w", t.opts.Src, err))
	}
	return t.LoadText(text)
}

// LoadText parses text already in hand and replaces the track's cues.
func (t *Track) LoadText(text string) error {
	parser := cue.NewParser()
	if t.opts.LineBreak != "" {
		parser.LineBreak = t.opts.LineBreak
	}

	cues, err := parser.Parse(text)
	if err != nil {
		return t.fail(err)
	}

	t.cues = cues
	t.tracker = tracker.New(cues, t.clock)
	t.ready = Loaded
	t.err = nil

	t.logger.Debugw("track loaded", "track", t.opts.ID, "cues", len(cues), "ordered", t.tracker.Ordered())
	t.emit(Event{Type: EventLoaded})

	if t.mode != ModeOff {
		t.update()
	}
	return nil
}

func (t *Track) fail(err error) error {
	t.cues = nil
	t.tracker = nil
	t.err = err

	if t.ready != Failed {
		t.ready = Failed
		t.logger.Warnw("track failed to load", "track", t.opts.ID, "src", t.opts.Src, "error", err)
		t.emit(Event{Type: EventError, Err: err})
	}
	return err
}

// Reload forgets the loaded cues and loads the source again.
func (t *Track) Reload(ctx context.Context) error {
	hadActive := len(t.ActiveCues()) > 0

	t.ready = None
	t.err = nil
	t.cues = nil
	t.tracker = nil

	err := t.Load(ctx)
	if err != nil && hadActive && t.mode != ModeOff {
		t.emit(Event{Type: EventCueChange})
	}
	return err
}

// Show activates the track and displays its cues.
func (t *Track) Show(ctx context.Context) error {
	err := t.activate(ctx)
	t.mode = ModeShowing
	return err
}

// Hide keeps the track following the clock without displaying it.
func (t *Track) Hide(ctx context.Context) error {
	err := t.activate(ctx)
	t.mode = ModeHidden
	return err
}

// Disable stops cue tracking. A track that had active cues emits one last
// cue change with an empty set.
func (t *Track) Disable() {
	if t.mode == ModeOff {
		return
	}
	hadActive := len(t.ActiveCues()) > 0
	if t.tracker != nil {
		t.tracker.Reset()
	}
	t.mode = ModeOff
	if hadActive {
		t.emit(Event{Type: EventCueChange})
	}
}

func (t *Track) activate(ctx context.Context) error {
	var err error
	if t.ready == None {
		err = t.Load(ctx)
	}

	if t.mode == ModeOff && t.tracker != nil {
		t.tracker.Reset()
		t.update()
	}
	return err
}

// TimeUpdate runs one clock tick and reports whether the active cues changed.
func (t *Track) TimeUpdate() bool {
	if t.mode == ModeOff {
		return false
	}
	return t.update()
}

func (t *Track) update() bool {
	if t.tracker == nil || t.clock == nil {
		return false
	}
	active, changed := t.tracker.Update(t.clock.CurrentTime())
	if changed {
		t.emit(Event{Type: EventCueChange, Active: active})
	}
	return changed
}

// Ended resets cue tracking when playback reaches the end of the media.
func (t *Track) Ended() {
	if t.mode == ModeOff || t.tracker == nil {
		return
	}
	t.tracker.Reset()
}

// Cues returns the parsed cues in parse order. The slice must not be modified.
func (t *Track) Cues() []cue.Cue {
	return t.cues
}

// ActiveCues returns the cues active at the last tick. Disabled and failed
// tracks have none.
func (t *Track) ActiveCues() []cue.Cue {
	if t.mode == ModeOff || t.tracker == nil {
		return nil
	}
	return t.tracker.Active()
}

func (t *Track) Stats() tracker.Stats {
	if t.tracker == nil {
		return tracker.Stats{}
	}
	return t.tracker.Stats()
}

func (t *Track) ID() string             { return t.opts.ID }
func (t *Track) Kind() Kind             { return t.opts.Kind }
func (t *Track) Src() string            { return t.opts.Src }
func (t *Track) Language() string       { return t.opts.Language }
func (t *Track) Label() string          { return t.opts.Label }
func (t *Track) Title() string          { return t.opts.Title }
func (t *Track) Default() bool          { return t.opts.Default }
func (t *Track) Options() Options       { return t.opts }
func (t *Track) Mode() Mode             { return t.mode }
func (t *Track) ReadyState() ReadyState { return t.ready }
func (t *Track) Err() error             { return t.err }
