package transition

import (
	"math/rand"
	"testing"
	"time"

	"github.com/clipforge/clipforge-agent/internal/selection"
)

func clip(start, duration float64) selection.Clip {
	return selection.Clip{
		SourceID:  "src",
		Path:      "/v/src.mp4",
		Start:     start,
		Duration:  duration,
		Timestamp: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestApplyShift_BoundaryInclusive(t *testing.T) {
	// Midpoint 5.0, max deviation 0.2*10 = 2.0.
	c := clip(100, 10)

	got := applyShift(c, 3.0)
	if got.Start != 103 {
		t.Fatalf("offset at boundary: start = %v, want 103 (accepted)", got.Start)
	}
	if got.Duration != 7 {
		t.Fatalf("offset at boundary: duration = %v, want 7 (end pinned)", got.Duration)
	}
}

func TestApplyShift_JustOutsideTolerance(t *testing.T) {
	c := clip(100, 10)

	got := applyShift(c, 2.9) // deviation 2.1 > 2.0
	if got != c {
		t.Fatalf("offset outside tolerance modified clip: %+v", got)
	}
}

func TestApplyShift_StaysInsideCommittedWindow(t *testing.T) {
	c := clip(40, 8)

	for _, off := range []float64{2.5, 4.0, 5.5} {
		got := applyShift(c, off)
		if got.Start < c.Start || got.End() > c.End()+1e-12 {
			t.Fatalf("offset %v moved window to [%v, %v), outside committed [%v, %v)",
				off, got.Start, got.End(), c.Start, c.End())
		}
	}
}

func TestPickNearestMidpoint(t *testing.T) {
	tests := []struct {
		name     string
		offsets  []float64
		duration float64
		want     float64
	}{
		{name: "single", offsets: []float64{1.2}, duration: 10, want: 1.2},
		{name: "closest wins", offsets: []float64{1.0, 4.5, 9.0}, duration: 10, want: 4.5},
		{name: "exact midpoint", offsets: []float64{2.0, 5.0}, duration: 10, want: 5.0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := pickNearestMidpoint(tc.offsets, tc.duration); got != tc.want {
				t.Fatalf("pickNearestMidpoint() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestOptimize_PreservesOrderAndCount(t *testing.T) {
	clips := []selection.Clip{clip(0, 10), clip(20, 10), clip(40, 10)}

	o := New(rand.New(rand.NewSource(1)), nil)
	out := o.Optimize(clips)

	if len(out) != len(clips) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(clips))
	}
	for i := range out {
		if out[i].SourceID != clips[i].SourceID {
			t.Fatalf("order changed at %d", i)
		}
		if out[i].Start < clips[i].Start || out[i].End() > clips[i].End()+1e-12 {
			t.Fatalf("clip %d left its committed window: [%v, %v) vs [%v, %v)",
				i, out[i].Start, out[i].End(), clips[i].Start, clips[i].End())
		}
	}
}

func TestOptimize_NeverBreaksWindowsAcrossManyTrials(t *testing.T) {
	rng := rand.New(rand.NewSource(77))
	o := New(rng, nil)

	for trial := 0; trial < 1000; trial++ {
		c := clip(rng.Float64()*100, 1+rng.Float64()*20)
		out := o.Optimize([]selection.Clip{c})[0]
		if out.Start < c.Start || out.End() > c.End()+1e-9 || out.Duration < 0 {
			t.Fatalf("trial %d: [%v, %v) escaped [%v, %v)", trial, out.Start, out.End(), c.Start, c.End())
		}
	}
}

func TestOptimize_ZeroDurationClipUntouched(t *testing.T) {
	o := New(rand.New(rand.NewSource(5)), nil)
	c := clip(10, 0)
	if got := o.Optimize([]selection.Clip{c})[0]; got != c {
		t.Fatalf("zero-duration clip modified: %+v", got)
	}
}
