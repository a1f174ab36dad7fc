package cue

import (
	"errors"
	"fmt"
	"time"
)

// single timed-text unit in parse order
type Cue struct {
	// explicit identifier, or the ordinal position when the source omits it
	ID string `json:"id"`
	// 0-based position in parse order
	Index     int     `json:"index"`
	StartTime float64 `json:"start_time"`
	EndTime   float64 `json:"end_time"`
	// payload lines joined with the parser's line-break marker
	Text string `json:"text"`
}

// Contains reports whether t falls in [StartTime, EndTime).
func (c Cue) Contains(t float64) bool {
	return c.StartTime <= t && t < c.EndTime
}

func (c Cue) Start() time.Duration {
	return Duration(c.StartTime)
}

func (c Cue) End() time.Duration {
	return Duration(c.EndTime)
}

// converts seconds to a time.Duration rounded to the millisecond
func Duration(seconds float64) time.Duration {
	return (time.Duration(seconds*float64(time.Second)) + time.Millisecond/2).
		Truncate(time.Millisecond)
}

var (
	ErrMissingTiming    = errors.New("missing cue timing line")
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrEndBeforeStart   = errors.New("cue ends before it starts")
)

// fatal error on a timing line; wraps one of the Err* sentinels
type ParseError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.Line, e.Err, e.Text)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
