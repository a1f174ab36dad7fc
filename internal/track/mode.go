package track

import (
	"fmt"
	"strings"
)

// Mode controls whether a track follows the clock and whether its cues are
// displayed. Hidden tracks keep firing cue changes without being shown.
type Mode uint8

const (
	ModeOff Mode = iota
	ModeHidden
	ModeShowing
)

func (m Mode) String() string {
	switch m {
	case ModeOff:
		return "off"
	case ModeHidden:
		return "hidden"
	case ModeShowing:
		return "showing"
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "off", "disabled":
		return ModeOff, nil
	case "hidden":
		return ModeHidden, nil
	case "showing", "show":
		return ModeShowing, nil
	}
	return 0, fmt.Errorf("unknown track mode %q", s)
}

func (m Mode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

type ReadyState uint8

const (
	None ReadyState = iota
	Loading
	Loaded
	Failed
)

func (s ReadyState) String() string {
	switch s {
	case None:
		return "none"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	}
	return fmt.Sprintf("readystate(%d)", uint8(s))
}

func (s ReadyState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
