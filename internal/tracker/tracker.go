// Package tracker keeps per-file bookkeeping of committed time windows and
// answers free-gap queries for the selection engine. Each source file is a
// bounded one-dimensional resource: committed windows are exclusion zones,
// and neighboring windows must stay at least a minimum gap apart.
package tracker

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
)

// DefaultMinGap is the minimum spacing in seconds between two committed
// windows within the same source file.
const DefaultMinGap = 1.0

// ErrNoCapacity is returned by ProposeStart when no free range can hold a
// window of the requested length.
var ErrNoCapacity = errors.New("no free range fits requested length")

// Interval is a half-open [Start, End) window in seconds.
type Interval struct {
	Start float64
	End   float64
}

// Length returns the interval length in seconds.
func (iv Interval) Length() float64 {
	return iv.End - iv.Start
}

// Tracker tracks committed windows within a single source file.
// It is not safe for concurrent use; the selection engine is the sole writer.
type Tracker struct {
	total     float64
	minGap    float64
	committed []Interval // sorted by Start, non-overlapping
}

// New creates a tracker for a file of the given total duration. A minGap of
// zero or less falls back to DefaultMinGap; a negative total is treated as
// zero capacity.
func New(total, minGap float64) *Tracker {
	if total < 0 {
		total = 0
	}
	if minGap <= 0 {
		minGap = DefaultMinGap
	}
	return &Tracker{total: total, minGap: minGap}
}

// Total returns the file's total duration.
func (t *Tracker) Total() float64 {
	return t.total
}

// Committed returns a copy of the committed windows in start order.
func (t *Tracker) Committed() []Interval {
	out := make([]Interval, len(t.committed))
	copy(out, t.committed)
	return out
}

// AvailableDuration returns the duration still open for allocation: the
// total minus committed window lengths, minus one min-gap per adjacent pair
// of committed windows. Never negative.
func (t *Tracker) AvailableDuration() float64 {
	used := 0.0
	for _, iv := range t.committed {
		used += iv.Length()
	}
	if n := len(t.committed); n > 1 {
		used += t.minGap * float64(n-1)
	}
	if used >= t.total {
		return 0
	}
	return t.total - used
}

// CanFit reports whether at least one free gap can hold a window of the
// given length.
func (t *Tracker) CanFit(length float64) bool {
	if length <= 0 || length > t.total {
		return false
	}
	return len(t.freeGaps(length)) > 0
}

// ProposeStart draws a random start offset for a window of the given length.
// The draw is two-staged: first one eligible free gap is picked uniformly at
// random, then a uniform start within it. Picking the gap first gives every
// eligible gap equal weight instead of biasing toward large contiguous runs
// of free space.
func (t *Tracker) ProposeStart(length float64, rng *rand.Rand) (float64, error) {
	if length <= 0 {
		return 0, fmt.Errorf("propose start: %w", ErrNoCapacity)
	}
	gaps := t.freeGaps(length)
	if len(gaps) == 0 {
		return 0, ErrNoCapacity
	}
	gap := gaps[rng.Intn(len(gaps))]
	slack := gap.Length() - length
	return gap.Start + rng.Float64()*slack, nil
}

// Commit records [start, start+length) as taken. The caller must have
// validated the placement via CanFit or ProposeStart first; Commit does not
// re-check overlap.
func (t *Tracker) Commit(start, length float64) {
	t.committed = append(t.committed, Interval{Start: start, End: start + length})
	sort.Slice(t.committed, func(i, j int) bool {
		return t.committed[i].Start < t.committed[j].Start
	})
}

// freeGaps enumerates the maximal free sub-ranges that can hold a window of
// the given length. Edges that touch a committed window are shrunk by the
// min gap; the file's own boundaries need no buffer.
func (t *Tracker) freeGaps(length float64) []Interval {
	var gaps []Interval
	add := func(lo, hi float64) {
		if hi-lo >= length {
			gaps = append(gaps, Interval{Start: lo, End: hi})
		}
	}

	if len(t.committed) == 0 {
		add(0, t.total)
		return gaps
	}

	add(0, t.committed[0].Start-t.minGap)
	for i := 0; i < len(t.committed)-1; i++ {
		add(t.committed[i].End+t.minGap, t.committed[i+1].Start-t.minGap)
	}
	add(t.committed[len(t.committed)-1].End+t.minGap, t.total)
	return gaps
}
