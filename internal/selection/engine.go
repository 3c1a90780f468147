// Package selection assembles an ordered list of non-overlapping clips from
// a pool of source files, targeting a total duration. Two policies are
// offered: plain randomized allocation, and a diversity-aware greedy search
// that scores candidate windows against the clips already chosen.
package selection

import (
	"context"
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/clipforge/clipforge-agent/internal/scoring"
	"github.com/clipforge/clipforge-agent/internal/tracker"
)

const (
	// TopHalfDivisor restricts the plain policy's draw to the
	// most-capacious fraction of eligible sources. Dividing by two keeps
	// usage spread across files without draining the largest one first.
	TopHalfDivisor = 2

	// CandidateDraws is how many placements the diversity policy samples
	// per source per slot before keeping the best.
	CandidateDraws = 5
)

// Scorer is the feature analysis the diversity policy consults.
type Scorer interface {
	Score(ctx context.Context, path string, start, duration float64) scoring.Features
	SourceProfile(ctx context.Context, path string, total float64) scoring.Features
}

// Engine runs selection over a fixed pool of sources. Construct one per run:
// the random source carries the run's seed and the engine mutates per-source
// trackers as it commits clips.
type Engine struct {
	scorer Scorer
	rng    *rand.Rand
	logger *slog.Logger
}

// NewEngine wires a selection engine. scorer may be nil when only the plain
// policy is used; logger may be nil.
func NewEngine(scorer Scorer, rng *rand.Rand, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Engine{scorer: scorer, rng: rng, logger: logger}
}

type poolEntry struct {
	src     Source
	tracker *tracker.Tracker
	profile scoring.Features
}

// Select assembles clips until the target duration is met or capacity runs
// out. Insufficient capacity is a degraded success: the result reports the
// shortfall. Only a run with zero clips returns ErrNoClips. The caller may
// cancel ctx between slots; clips committed so far remain valid.
func (e *Engine) Select(ctx context.Context, sources []Source, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pool := make([]*poolEntry, 0, len(sources))
	for _, src := range sources {
		if src.Duration <= 0 {
			e.logger.Debug("source has no usable duration, skipping", "source_id", src.ID, "path", src.Path)
			continue
		}
		pool = append(pool, &poolEntry{src: src, tracker: tracker.New(src.Duration, p.MinGap)})
	}

	res := &Result{
		Policy:       p.Policy,
		RequestedSec: p.TargetTotal,
		Seed:         p.Seed,
	}

	if p.Policy == PolicyDiversity && e.scorer != nil {
		res.Profiles = make(map[string]scoring.Features, len(pool))
		for _, entry := range pool {
			entry.profile = e.scorer.SourceProfile(ctx, entry.src.Path, entry.src.Duration)
			res.Profiles[entry.src.ID] = entry.profile
		}
	}

	wanted := int(math.Ceil(p.TargetTotal / p.ClipLength))
	var selectedFeatures []scoring.Features

	for slot := 0; slot < wanted; slot++ {
		if ctx.Err() != nil {
			e.logger.Info("selection canceled, keeping clips committed so far",
				"selected", len(res.Clips), "wanted", wanted)
			break
		}

		eligible := e.eligible(pool, p.ClipLength)
		if len(eligible) == 0 {
			break
		}

		var picked *poolEntry
		var start float64
		var feats scoring.Features
		var scored, ok bool

		if p.Policy == PolicyDiversity && e.scorer != nil {
			picked, start, feats, ok = e.pickDiverse(ctx, eligible, p, selectedFeatures)
			scored = ok
		}
		if !ok {
			picked, start, ok = e.pickPlain(eligible, p.ClipLength)
			feats = scoring.Features{}
		}
		if !ok {
			break
		}

		picked.tracker.Commit(start, p.ClipLength)
		res.Clips = append(res.Clips, Clip{
			SourceID:  picked.src.ID,
			Path:      picked.src.Path,
			Start:     start,
			Duration:  p.ClipLength,
			Timestamp: picked.src.Timestamp,
			Features:  feats,
		})
		if scored {
			selectedFeatures = append(selectedFeatures, feats)
		}
	}

	sort.SliceStable(res.Clips, func(i, j int) bool {
		a, b := res.Clips[i], res.Clips[j]
		if !a.Timestamp.Equal(b.Timestamp) {
			return a.Timestamp.Before(b.Timestamp)
		}
		return a.Start < b.Start
	})

	for _, c := range res.Clips {
		res.AchievedSec += c.Duration
	}
	if res.AchievedSec < res.RequestedSec {
		res.ShortfallSec = res.RequestedSec - res.AchievedSec
	}
	if res.ShortfallSec > 0 {
		e.logger.Warn("selection fell short of target",
			"requested_sec", res.RequestedSec,
			"achieved_sec", res.AchievedSec,
			"shortfall_sec", res.ShortfallSec,
			"clips", len(res.Clips))
	}

	if len(res.Clips) == 0 {
		return res, ErrNoClips
	}
	return res, nil
}

func (e *Engine) eligible(pool []*poolEntry, clipLength float64) []*poolEntry {
	var out []*poolEntry
	for _, entry := range pool {
		if entry.tracker.CanFit(clipLength) {
			out = append(out, entry)
		}
	}
	return out
}

// pickPlain sorts eligible sources by remaining capacity, restricts the draw
// to the top half (always at least one), and picks uniformly within it. The
// two-stage bias favors roomy files without being fully greedy.
func (e *Engine) pickPlain(eligible []*poolEntry, clipLength float64) (*poolEntry, float64, bool) {
	ranked := make([]*poolEntry, len(eligible))
	copy(ranked, eligible)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].tracker.AvailableDuration() > ranked[j].tracker.AvailableDuration()
	})

	top := len(ranked) / TopHalfDivisor
	if top < 1 {
		top = 1
	}
	picked := ranked[e.rng.Intn(top)]

	start, err := picked.tracker.ProposeStart(clipLength, e.rng)
	if err != nil {
		// CanFit was checked; a failure here means the tracker state moved
		// underneath us, which the single-writer model rules out.
		e.logger.Error("placement failed for eligible source", "source_id", picked.src.ID, "error", err)
		return nil, 0, false
	}
	return picked, start, true
}

// pickDiverse samples up to CandidateDraws placements per eligible source,
// scores each, and keeps the candidate with the best blend of its own
// quality and its distance from the mean features of clips already selected.
// Returns ok=false when no candidate could be evaluated, in which case the
// caller falls back to the plain draw for this slot.
func (e *Engine) pickDiverse(ctx context.Context, eligible []*poolEntry, p Params, selected []scoring.Features) (*poolEntry, float64, scoring.Features, bool) {
	selectedMean := scoring.Mean(selected)

	var (
		best      *poolEntry
		bestStart float64
		bestFeats scoring.Features
		bestScore = math.Inf(-1)
		found     bool
	)

	for _, entry := range eligible {
		for draw := 0; draw < CandidateDraws; draw++ {
			start, err := entry.tracker.ProposeStart(p.ClipLength, e.rng)
			if err != nil {
				break
			}

			feats := e.scorer.Score(ctx, entry.src.Path, start, p.ClipLength)
			if p.MinSceneScore > 0 && feats.Scene < p.MinSceneScore {
				continue
			}

			diversity := 0.0
			if len(selected) > 0 {
				diversity = feats.Distance(selectedMean)
			}
			quality := feats.Quality()
			score := (1-p.DiversityWeight)*quality + p.DiversityWeight*diversity

			if score > bestScore {
				best, bestStart, bestFeats, bestScore = entry, start, feats, score
				found = true
			}
		}
	}

	if !found {
		return nil, 0, scoring.Features{}, false
	}
	return best, bestStart, bestFeats, true
}
