// Package scoring produces heuristic visual feature vectors for candidate
// clip windows. Real perceptual analysis is not wired in; scores are drawn
// from a deterministic random source within a fixed band, which keeps the
// selection pipeline exercisable end to end and reproducible under a fixed
// seed.
package scoring

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
)

const (
	// FeatureFloor and FeatureCeil bound every heuristic score. Keeping the
	// band inside (0, 1) avoids degenerate all-zero or all-one vectors when
	// no real analyzer is available.
	FeatureFloor = 0.1
	FeatureCeil  = 0.9

	// ProfileSamples is how many windows are sampled when averaging a whole
	// source file into one profile vector.
	ProfileSamples = 4

	// profileWindow is the length in seconds of each profile sample window.
	profileWindow = 2.0
)

// Features describes one candidate window: scene-change likelihood, motion
// intensity, and color variety, each in [0, 1].
type Features struct {
	Scene  float64 `json:"scene"`
	Motion float64 `json:"motion"`
	Color  float64 `json:"color"`
}

// Quality is the mean of the three feature values.
func (f Features) Quality() float64 {
	return (f.Scene + f.Motion + f.Color) / 3
}

// Distance is the mean absolute difference between two feature vectors.
func (f Features) Distance(o Features) float64 {
	return (math.Abs(f.Scene-o.Scene) + math.Abs(f.Motion-o.Motion) + math.Abs(f.Color-o.Color)) / 3
}

// Mean averages a set of feature vectors. An empty set yields the zero
// vector.
func Mean(fs []Features) Features {
	if len(fs) == 0 {
		return Features{}
	}
	var sum Features
	for _, f := range fs {
		sum.Scene += f.Scene
		sum.Motion += f.Motion
		sum.Color += f.Color
	}
	n := float64(len(fs))
	return Features{Scene: sum.Scene / n, Motion: sum.Motion / n, Color: sum.Color / n}
}

// Scorer scores a candidate window of a source file.
type Scorer interface {
	Score(ctx context.Context, path string, start, duration float64) Features
}

// MetadataProber is the slice of the duration probe the scorer may consult.
// A failed probe never aborts scoring.
type MetadataProber interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Heuristic is the stand-in analyzer. It never fails: any probe error is
// logged and the default-range random vector is returned anyway.
type Heuristic struct {
	rng    *rand.Rand
	prober MetadataProber // may be nil
	logger *slog.Logger
}

// NewHeuristic creates a scorer drawing from rng. prober and logger may be
// nil.
func NewHeuristic(rng *rand.Rand, prober MetadataProber, logger *slog.Logger) *Heuristic {
	return &Heuristic{rng: rng, prober: prober, logger: logger}
}

// Score returns a feature vector for the window [start, start+duration) of
// path. Each component is drawn uniformly from [FeatureFloor, FeatureCeil].
func (h *Heuristic) Score(ctx context.Context, path string, start, duration float64) Features {
	if h.prober != nil {
		if _, err := h.prober.Duration(ctx, path); err != nil && h.logger != nil {
			h.logger.Debug("metadata probe failed during scoring, using default band",
				"path", path, "start", start, "error", err)
		}
	}
	return Features{
		Scene:  h.draw(),
		Motion: h.draw(),
		Color:  h.draw(),
	}
}

// SourceProfile averages ProfileSamples windows spread evenly across a file
// of the given total duration into one representative vector.
func (h *Heuristic) SourceProfile(ctx context.Context, path string, total float64) Features {
	if total <= 0 {
		return Features{}
	}
	window := profileWindow
	if window > total {
		window = total
	}
	samples := make([]Features, 0, ProfileSamples)
	for i := 0; i < ProfileSamples; i++ {
		at := (total - window) * float64(i) / float64(ProfileSamples-1)
		samples = append(samples, h.Score(ctx, path, at, window))
	}
	return Mean(samples)
}

func (h *Heuristic) draw() float64 {
	return FeatureFloor + h.rng.Float64()*(FeatureCeil-FeatureFloor)
}
