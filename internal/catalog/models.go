// Package catalog tracks source folders, their video files, and the jobs
// and selection runs executed against them.
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clipforge/clipforge-agent/internal/scoring"
	"github.com/clipforge/clipforge-agent/internal/selection"
)

type Source struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Path        string    `json:"path"`
	DisplayName string    `json:"display_name"`
	Present     bool      `json:"present"`
	CreatedAt   time.Time `json:"created_at"`
}

type File struct {
	ID          string    `json:"id"`
	SourceID    string    `json:"source_id"`
	Path        string    `json:"path"`
	Filename    string    `json:"filename"`
	Size        int64     `json:"size"`
	Mtime       time.Time `json:"mtime"`
	ShotAt      time.Time `json:"shot_at"`
	DurationSec float64   `json:"duration_sec"`
	Probed      bool      `json:"probed"`
	CreatedAt   time.Time `json:"created_at"`
}

const (
	JobTypeScan   = "scan"
	JobTypeSelect = "select"

	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

type Job struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	SourceID    string    `json:"source_id,omitempty"`
	SelectionID string    `json:"selection_id,omitempty"`
	Progress    int       `json:"progress"`
	Error       string    `json:"error,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Selection is a persisted selection run: the request parameters plus the
// outcome once the run completes.
type Selection struct {
	ID              string    `json:"id"`
	Status          string    `json:"status"`
	Policy          string    `json:"policy"`
	ClipLengthSec   float64   `json:"clip_length_sec"`
	TargetTotalSec  float64   `json:"target_total_sec"`
	DiversityWeight float64   `json:"diversity_weight"`
	MinSceneScore   float64   `json:"min_scene_score"`
	MinGapSec       float64   `json:"min_gap_sec"`
	Seed            int64     `json:"seed"`
	AchievedSec     float64   `json:"achieved_sec"`
	ShortfallSec    float64   `json:"shortfall_sec"`
	CreatedAt       time.Time `json:"created_at"`
}

// SelectionClip is one committed clip of a completed selection, in final
// playback order.
type SelectionClip struct {
	ID          string           `json:"id"`
	SelectionID string           `json:"selection_id"`
	FileID      string           `json:"file_id"`
	Position    int              `json:"position"`
	StartSec    float64          `json:"start_sec"`
	DurationSec float64          `json:"duration_sec"`
	Features    scoring.Features `json:"features"`
}

type ConfigEntry struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// Params converts the stored request into engine parameters.
func (s *Selection) Params() selection.Params {
	return selection.Params{
		ClipLength:      s.ClipLengthSec,
		TargetTotal:     s.TargetTotalSec,
		Policy:          selection.Policy(s.Policy),
		DiversityWeight: s.DiversityWeight,
		MinSceneScore:   s.MinSceneScore,
		MinGap:          s.MinGapSec,
		Seed:            s.Seed,
	}
}

var videoExtensions = map[string]bool{
	".mp4": true,
	".mov": true,
	".mkv": true,
}

func NewID() string {
	return uuid.NewString()
}

func IsVideoFile(filename string) bool {
	idx := strings.LastIndexByte(filename, '.')
	if idx < 0 {
		return false
	}
	return videoExtensions[strings.ToLower(filename[idx:])]
}
