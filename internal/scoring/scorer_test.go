package scoring

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"testing"
)

type failingProber struct{}

func (failingProber) Duration(ctx context.Context, path string) (float64, error) {
	return 0, errors.New("probe exploded")
}

func TestHeuristic_ScoreWithinBand(t *testing.T) {
	h := NewHeuristic(rand.New(rand.NewSource(3)), nil, nil)

	for i := 0; i < 500; i++ {
		f := h.Score(context.Background(), "/videos/a.mp4", float64(i), 5)
		for name, v := range map[string]float64{"scene": f.Scene, "motion": f.Motion, "color": f.Color} {
			if v < FeatureFloor || v > FeatureCeil {
				t.Fatalf("%s = %v, want in [%v, %v]", name, v, FeatureFloor, FeatureCeil)
			}
		}
	}
}

func TestHeuristic_DeterministicUnderFixedSeed(t *testing.T) {
	a := NewHeuristic(rand.New(rand.NewSource(11)), nil, nil)
	b := NewHeuristic(rand.New(rand.NewSource(11)), nil, nil)

	for i := 0; i < 50; i++ {
		fa := a.Score(context.Background(), "/videos/a.mp4", 0, 5)
		fb := b.Score(context.Background(), "/videos/a.mp4", 0, 5)
		if fa != fb {
			t.Fatalf("draw %d differs under same seed: %+v vs %+v", i, fa, fb)
		}
	}
}

func TestHeuristic_ProbeFailureDoesNotAbort(t *testing.T) {
	h := NewHeuristic(rand.New(rand.NewSource(5)), failingProber{}, nil)

	f := h.Score(context.Background(), "/videos/broken.mp4", 0, 5)
	if f.Scene < FeatureFloor || f.Scene > FeatureCeil {
		t.Fatalf("scene = %v, want default band despite probe failure", f.Scene)
	}
}

func TestFeatures_Quality(t *testing.T) {
	f := Features{Scene: 0.3, Motion: 0.6, Color: 0.9}
	if got, want := f.Quality(), 0.6; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Quality() = %v, want %v", got, want)
	}
}

func TestFeatures_Distance(t *testing.T) {
	a := Features{Scene: 0.2, Motion: 0.5, Color: 0.8}
	b := Features{Scene: 0.5, Motion: 0.5, Color: 0.2}
	if got, want := a.Distance(b), 0.3; math.Abs(got-want) > 1e-12 {
		t.Fatalf("Distance() = %v, want %v", got, want)
	}
}

func TestMean(t *testing.T) {
	if got := Mean(nil); got != (Features{}) {
		t.Fatalf("Mean(nil) = %+v, want zero vector", got)
	}

	got := Mean([]Features{
		{Scene: 0.2, Motion: 0.4, Color: 0.6},
		{Scene: 0.4, Motion: 0.6, Color: 0.8},
	})
	want := Features{Scene: 0.3, Motion: 0.5, Color: 0.7}
	if math.Abs(got.Scene-want.Scene) > 1e-12 ||
		math.Abs(got.Motion-want.Motion) > 1e-12 ||
		math.Abs(got.Color-want.Color) > 1e-12 {
		t.Fatalf("Mean() = %+v, want %+v", got, want)
	}
}

func TestSourceProfile_WithinBand(t *testing.T) {
	h := NewHeuristic(rand.New(rand.NewSource(8)), nil, nil)

	p := h.SourceProfile(context.Background(), "/videos/a.mp4", 60)
	if p.Scene < FeatureFloor || p.Scene > FeatureCeil {
		t.Fatalf("profile scene = %v, want in band", p.Scene)
	}

	if got := h.SourceProfile(context.Background(), "/videos/empty.mp4", 0); got != (Features{}) {
		t.Fatalf("zero-duration profile = %+v, want zero vector", got)
	}
}
