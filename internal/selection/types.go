package selection

import (
	"errors"
	"fmt"
	"time"

	"github.com/clipforge/clipforge-agent/internal/scoring"
)

// Policy names a clip selection strategy.
type Policy string

const (
	// PolicyPlain draws sources at random, biased toward files with more
	// remaining capacity.
	PolicyPlain Policy = "plain"
	// PolicyDiversity scores candidate windows and keeps the one that best
	// balances quality against dissimilarity from clips already chosen.
	PolicyDiversity Policy = "diversity"
)

// ErrNoClips marks a run that selected nothing at all. A run that selected
// fewer clips than requested is a degraded success and carries its shortfall
// in the Result instead.
var ErrNoClips = errors.New("selection produced no clips")

// Source is the selection-facing view of one catalog file. A zero Duration
// excludes the file from allocation without failing the run.
type Source struct {
	ID        string
	Path      string
	Duration  float64
	Timestamp time.Time
}

// Clip is one committed, non-overlapping window drawn from a source.
type Clip struct {
	SourceID  string           `json:"source_id"`
	Path      string           `json:"path"`
	Start     float64          `json:"start"`
	Duration  float64          `json:"duration"`
	Timestamp time.Time        `json:"timestamp"`
	Features  scoring.Features `json:"features"`
}

// End returns the exclusive end offset of the clip within its source.
func (c Clip) End() float64 {
	return c.Start + c.Duration
}

// Result is the outcome of one selection run, ordered by (timestamp, start)
// and immutable once the transition optimizer has finished with it.
type Result struct {
	Clips        []Clip                      `json:"clips"`
	Policy       Policy                      `json:"policy"`
	RequestedSec float64                     `json:"requested_sec"`
	AchievedSec  float64                     `json:"achieved_sec"`
	ShortfallSec float64                     `json:"shortfall_sec"`
	Seed         int64                       `json:"seed"`
	Profiles     map[string]scoring.Features `json:"profiles,omitempty"`
}

// Params tunes a selection run.
type Params struct {
	ClipLength      float64
	TargetTotal     float64
	Policy          Policy
	DiversityWeight float64
	MinGap          float64
	MinSceneScore   float64
	Seed            int64
}

// Validate rejects parameter combinations the engine cannot honor.
func (p Params) Validate() error {
	if p.ClipLength <= 0 {
		return fmt.Errorf("clip length must be positive, got %v", p.ClipLength)
	}
	if p.TargetTotal <= 0 {
		return fmt.Errorf("target total duration must be positive, got %v", p.TargetTotal)
	}
	if p.DiversityWeight < 0 || p.DiversityWeight > 1 {
		return fmt.Errorf("diversity weight must be in [0, 1], got %v", p.DiversityWeight)
	}
	if p.MinSceneScore < 0 || p.MinSceneScore > 1 {
		return fmt.Errorf("min scene score must be in [0, 1], got %v", p.MinSceneScore)
	}
	switch p.Policy {
	case PolicyPlain, PolicyDiversity:
	default:
		return fmt.Errorf("unknown policy %q", p.Policy)
	}
	return nil
}
