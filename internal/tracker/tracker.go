// Package tracker keeps the set of cues active at the current playback time.
//
// A Tracker caches the window [prev, next) over which the last computed active
// set stays valid. Updates inside the window cost nothing; updates outside it
// rescan only the cues around the playhead, walking away from the last active
// cues until the scan can prove nothing further out is active.
package tracker

import (
	"math"
	"slices"

	"github.com/henry234/texttrack/internal/cue"
)

// playback clock of the host media player
type Clock interface {
	CurrentTime() float64
	Duration() float64
}

// activation status of one cue, owned by the tracker
type Status uint8

const (
	Inactive Status = iota
	Active
)

func (s Status) String() string {
	if s == Active {
		return "active"
	}
	return "inactive"
}

// counters describing the work done by a Tracker
type Stats struct {
	Updates    int // calls to Update with a non-empty cue list
	Recomputes int // updates that crossed the window
	Visits     int // cues examined across all recomputes
}

// Tracker is not safe for concurrent use; the host serialises clock ticks.
type Tracker struct {
	cues    []cue.Cue
	status  []Status
	clock   Clock
	ordered bool

	prev, next  float64
	first, last int
	active      []cue.Cue
	activeIdx   []int

	stats Stats
}

// New builds a tracker over cues, which it copies and never modifies.
func New(cues []cue.Cue, clock Clock) *Tracker {
	t := &Tracker{
		cues:    slices.Clone(cues),
		status:  make([]Status, len(cues)),
		clock:   clock,
		ordered: isOrdered(cues),
	}
	t.Reset()
	return t
}

// isOrdered reports whether start and end times are both non-decreasing,
// which is what makes the early scan termination exact.
func isOrdered(cues []cue.Cue) bool {
	for i := 1; i < len(cues); i++ {
		if cues[i].StartTime < cues[i-1].StartTime ||
			cues[i].EndTime < cues[i-1].EndTime {
			return false
		}
	}
	return true
}

// Reset drops all derived state. The resulting window is empty, so the next
// Update always recomputes.
func (t *Tracker) Reset() {
	t.next = 0
	t.prev = t.duration()
	t.first = 0
	t.last = 0
	for _, i := range t.activeIdx {
		t.status[i] = Inactive
	}
	t.active = nil
	t.activeIdx = nil
}

// Update returns the cues active at now, in time order, and whether the set
// was recomputed. The returned slice must not be modified.
func (t *Tracker) Update(now float64) ([]cue.Cue, bool) {
	if len(t.cues) == 0 {
		return nil, false
	}
	t.stats.Updates++

	// NaN fails both comparisons and leaves the state alone
	if !(now < t.prev || now >= t.next) {
		return t.active, false
	}

	t.recompute(now, now >= t.next)
	return t.active, true
}

type scan struct {
	cues       []cue.Cue
	ordered    bool
	now        float64
	prev, next float64
	before     []int // actives found walking backward, in visit order
	after      []int // actives found walking forward, in visit order
	pending    int   // lowest index of a visited cue that has not started
	visits     int
}

// visit classifies cue i and reports whether the walk in the given direction
// can stop.
func (s *scan) visit(i int, forward bool) bool {
	s.visits++
	c := s.cues[i]

	switch {
	case c.EndTime <= s.now:
		s.prev = math.Max(s.prev, c.EndTime)
		// ordered ends: every earlier cue ended no later than this one
		return !forward && s.ordered

	case s.now < c.StartTime:
		s.next = math.Min(s.next, c.StartTime)
		if i < s.pending {
			s.pending = i
		}
		// ordered starts: every later cue starts no earlier than this one
		return forward && s.ordered

	default:
		s.next = math.Min(s.next, c.EndTime)
		s.prev = math.Max(s.prev, c.StartTime)
		if forward {
			s.after = append(s.after, i)
		} else {
			s.before = append(s.before, i)
		}
		return false
	}
}

func (s *scan) walk(from int, forward bool) {
	if forward {
		for i := from; i < len(s.cues); i++ {
			if s.visit(i, forward) {
				return
			}
		}
		return
	}
	for i := from; i >= 0; i-- {
		if s.visit(i, forward) {
			return
		}
	}
}

func (t *Tracker) recompute(now float64, forward bool) {
	n := len(t.cues)
	duration := t.duration()

	s := &scan{
		cues:    t.cues,
		ordered: t.ordered,
		now:     now,
		prev:    0,
		next:    duration,
		pending: n - 1,
	}
	if now < 0 {
		s.prev = math.Inf(-1)
	}
	if now >= duration {
		s.next = math.Inf(1)
	}

	if t.ordered {
		hint := t.last
		if forward {
			hint = t.first
		}
		hint = min(max(hint, 0), n-1)

		if forward {
			s.walk(hint, true)
			s.walk(hint-1, false)
		} else {
			s.walk(hint, false)
			s.walk(hint+1, true)
		}
	} else {
		s.walk(0, true)
	}

	idx := make([]int, 0, len(s.before)+len(s.after))
	for i := len(s.before) - 1; i >= 0; i-- {
		idx = append(idx, s.before[i])
	}
	idx = append(idx, s.after...)
	if !t.ordered {
		slices.SortStableFunc(idx, func(a, b int) int {
			switch {
			case t.cues[a].StartTime < t.cues[b].StartTime:
				return -1
			case t.cues[a].StartTime > t.cues[b].StartTime:
				return 1
			}
			return 0
		})
	}

	for _, i := range t.activeIdx {
		t.status[i] = Inactive
	}
	active := make([]cue.Cue, len(idx))
	first, last := s.pending, s.pending
	for j, i := range idx {
		t.status[i] = Active
		active[j] = t.cues[i]
		if j == 0 || i < first {
			first = i
		}
		if j == 0 || i > last {
			last = i
		}
	}

	t.active = active
	t.activeIdx = idx
	t.prev = s.prev
	t.next = s.next
	t.first = first
	t.last = last

	t.stats.Recomputes++
	t.stats.Visits += s.visits
}

func (t *Tracker) duration() float64 {
	if t.clock == nil {
		return 0
	}
	d := t.clock.Duration()
	if math.IsNaN(d) || d < 0 {
		return 0
	}
	return d
}

// Active returns the cues active after the last update.
func (t *Tracker) Active() []cue.Cue {
	return t.active
}

// Status returns the activation status of the cue at index i.
func (t *Tracker) Status(i int) Status {
	if i < 0 || i >= len(t.status) {
		return Inactive
	}
	return t.status[i]
}

// Ordered reports whether the windowed scan may stop early. Unordered cue
// lists are scanned in full on every recompute.
func (t *Tracker) Ordered() bool {
	return t.ordered
}

// Window returns the interval [prev, next) over which Update is a no-op.
func (t *Tracker) Window() (prev, next float64) {
	return t.prev, t.next
}

// Len returns the number of tracked cues.
func (t *Tracker) Len() int {
	return len(t.cues)
}

func (t *Tracker) Stats() Stats {
	return t.stats
}
