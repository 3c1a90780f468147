// Package transition nudges selected clips toward visually interesting cut
// points. Candidate offsets stand in for real scene-boundary detection: they
// are drawn at random inside each clip and a shift is only accepted when it
// stays within a bounded tolerance of the clip midpoint.
package transition

import (
	"log/slog"
	"math"
	"math/rand"

	"github.com/clipforge/clipforge-agent/internal/selection"
)

const (
	// MaxShiftRatio bounds an accepted shift: the chosen offset may deviate
	// from the clip midpoint by at most this fraction of the clip duration.
	// The boundary itself is accepted.
	MaxShiftRatio = 0.2

	// maxCandidates is the most cut-point candidates examined per clip.
	maxCandidates = 3
)

// Optimizer adjusts clip start offsets after selection. It never talks back
// to the resource trackers: an accepted shift pins the clip's end so the
// window stays inside the interval that was committed for it.
type Optimizer struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// New creates an optimizer drawing candidates from rng. logger may be nil.
func New(rng *rand.Rand, logger *slog.Logger) *Optimizer {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Optimizer{rng: rng, logger: logger}
}

// Optimize returns a copy of clips with starts nudged toward cut points.
// Order and count are preserved; rejected shifts leave clips untouched.
func (o *Optimizer) Optimize(clips []selection.Clip) []selection.Clip {
	out := make([]selection.Clip, len(clips))
	shifted := 0
	for i, c := range clips {
		out[i] = o.optimizeClip(c)
		if out[i].Start != c.Start {
			shifted++
		}
	}
	if shifted > 0 {
		o.logger.Debug("transition pass complete", "clips", len(clips), "shifted", shifted)
	}
	return out
}

func (o *Optimizer) optimizeClip(c selection.Clip) selection.Clip {
	if c.Duration <= 0 {
		return c
	}

	n := 1 + o.rng.Intn(maxCandidates)
	offsets := make([]float64, n)
	for i := range offsets {
		offsets[i] = o.rng.Float64() * c.Duration
	}

	return applyShift(c, pickNearestMidpoint(offsets, c.Duration))
}

// pickNearestMidpoint returns the candidate offset closest to duration/2.
func pickNearestMidpoint(offsets []float64, duration float64) float64 {
	mid := duration / 2
	best := offsets[0]
	for _, off := range offsets[1:] {
		if math.Abs(off-mid) < math.Abs(best-mid) {
			best = off
		}
	}
	return best
}

// applyShift accepts the offset when it sits within MaxShiftRatio of the
// midpoint (inclusive at the boundary). The end of the clip is pinned so the
// shifted window never escapes the committed interval, which shortens the
// clip by the accepted offset.
func applyShift(c selection.Clip, offset float64) selection.Clip {
	if math.Abs(offset-c.Duration/2) > MaxShiftRatio*c.Duration {
		return c
	}

	c.Start += offset
	c.Duration -= offset
	return c
}
