// Package playback simulates a media player's clock so tracks can be driven
// without real media.
package playback

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

// Clock is a seekable playback position inside [0, duration]. It is not safe
// for concurrent use.
type Clock struct {
	now      float64
	duration float64
}

func NewClock(duration float64) *Clock {
	c := &Clock{}
	c.SetDuration(duration)
	return c
}

func (c *Clock) CurrentTime() float64 { return c.now }
func (c *Clock) Duration() float64    { return c.duration }

// SetDuration changes the media length, pulling the position back inside it.
func (c *Clock) SetDuration(d float64) {
	if math.IsNaN(d) || d < 0 {
		d = 0
	}
	c.duration = d
	c.Seek(c.now)
}

// Seek moves to t clamped to [0, duration] and returns the new position.
// NaN leaves the position unchanged.
func (c *Clock) Seek(t float64) float64 {
	if !math.IsNaN(t) {
		c.now = min(max(t, 0), c.duration)
	}
	return c.now
}

// Advance moves forward by dt and reports whether the end was reached.
func (c *Clock) Advance(dt float64) bool {
	c.Seek(c.now + dt)
	return c.Ended()
}

func (c *Clock) Ended() bool {
	return c.now >= c.duration
}

type Config struct {
	// playback range in seconds; To <= 0 plays to the end
	From, To float64
	// media seconds per tick
	Step float64
	// wall time between ticks; zero runs as fast as possible
	Interval time.Duration
	// passes over the range; values below 1 mean 1
	Loops int
}

var ErrInvalidStep = errors.New("playback step must be positive")

// Run plays the configured range on clock, calling tick after every position
// change and ended each time a pass reaches its end. It returns ctx's error
// when cancelled.
func Run(ctx context.Context, clock *Clock, cfg Config, tick func(now float64), ended func()) error {
	if !(cfg.Step > 0) {
		return ErrInvalidStep
	}
	loops := max(cfg.Loops, 1)
	to := cfg.To
	if to <= 0 || to > clock.Duration() {
		to = clock.Duration()
	}

	var ticker *time.Ticker
	if cfg.Interval > 0 {
		ticker = time.NewTicker(cfg.Interval)
		defer ticker.Stop()
	}

	wait := func() error {
		if err := ctx.Err(); err != nil || ticker == nil {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			return nil
		}
	}

	for pass := 0; pass < loops; pass++ {
		tick(clock.Seek(cfg.From))

		for clock.CurrentTime() < to {
			if err := wait(); err != nil {
				return err
			}
			now := clock.CurrentTime()
			next := min(now+cfg.Step, to)
			if next <= now {
				return fmt.Errorf("%w: step %v makes no progress at %v", ErrInvalidStep, cfg.Step, now)
			}
			tick(clock.Seek(next))
		}

		if ended != nil {
			ended()
		}
	}
	return nil
}
