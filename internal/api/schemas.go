package api

import (
	"time"

	"github.com/clipforge/clipforge-agent/internal/catalog"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

type StatusResponse struct {
	State        string       `json:"state"`
	LastError    string       `json:"last_error,omitempty"`
	SourcesCount int          `json:"sources_count"`
	FilesCount   int          `json:"files_count"`
	JobsRunning  int          `json:"jobs_running"`
	ActiveJob    *JobResponse `json:"active_job,omitempty"`
}

type AddFolderRequest struct {
	Path        string `json:"path"`
	DisplayName string `json:"display_name,omitempty"`
}

type AddFolderResponse struct {
	SourceID string `json:"source_id"`
}

type SourceResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Path        string `json:"path"`
	DisplayName string `json:"display_name"`
	Present     bool   `json:"present"`
	CreatedAt   string `json:"created_at"`
}

type SourcesResponse struct {
	Sources []SourceResponse `json:"sources"`
}

type ScanRequest struct {
	SourceID string `json:"source_id,omitempty"`
}

type ScanResponse struct {
	JobID string `json:"job_id"`
}

type JobResponse struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	SourceID    string `json:"source_id,omitempty"`
	SelectionID string `json:"selection_id,omitempty"`
	Progress    int    `json:"progress"`
	Error       string `json:"error,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

type JobsResponse struct {
	Jobs []JobResponse `json:"jobs"`
}

type FileResponse struct {
	ID          string  `json:"id"`
	SourceID    string  `json:"source_id"`
	Path        string  `json:"path"`
	Filename    string  `json:"filename"`
	Size        int64   `json:"size"`
	ShotAt      string  `json:"shot_at"`
	DurationSec float64 `json:"duration_sec"`
	Probed      bool    `json:"probed"`
	CreatedAt   string  `json:"created_at"`
}

type FilesResponse struct {
	Files []FileResponse `json:"files"`
}

// SelectionRequest carries the tunable parameters of a selection run.
// Omitted fields fall back to the agent's configured defaults.
type SelectionRequest struct {
	Policy          string  `json:"policy,omitempty"`
	ClipLengthSec   float64 `json:"clip_length_sec,omitempty"`
	TargetTotalSec  float64 `json:"target_total_sec,omitempty"`
	DiversityWeight float64 `json:"diversity_weight,omitempty"`
	MinSceneScore   float64 `json:"min_scene_score,omitempty"`
	MinGapSec       float64 `json:"min_gap_sec,omitempty"`
	Seed            int64   `json:"seed,omitempty"`
}

type SelectionAcceptedResponse struct {
	SelectionID string `json:"selection_id"`
	JobID       string `json:"job_id"`
}

type SelectionResponse struct {
	ID              string  `json:"id"`
	Status          string  `json:"status"`
	Policy          string  `json:"policy"`
	ClipLengthSec   float64 `json:"clip_length_sec"`
	TargetTotalSec  float64 `json:"target_total_sec"`
	DiversityWeight float64 `json:"diversity_weight"`
	MinSceneScore   float64 `json:"min_scene_score"`
	MinGapSec       float64 `json:"min_gap_sec"`
	Seed            int64   `json:"seed"`
	AchievedSec     float64 `json:"achieved_sec"`
	ShortfallSec    float64 `json:"shortfall_sec"`
	CreatedAt       string  `json:"created_at"`
}

type SelectionsResponse struct {
	Selections []SelectionResponse `json:"selections"`
}

type SelectionClipResponse struct {
	ID          string  `json:"id"`
	FileID      string  `json:"file_id"`
	Position    int     `json:"position"`
	StartSec    float64 `json:"start_sec"`
	DurationSec float64 `json:"duration_sec"`
	Scene       float64 `json:"scene"`
	Motion      float64 `json:"motion"`
	Color       float64 `json:"color"`
}

type SelectionClipsResponse struct {
	Clips []SelectionClipResponse `json:"clips"`
}

type RunnerStateResponse struct {
	Paused bool `json:"paused"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func SourceToResponse(s *catalog.Source) SourceResponse {
	return SourceResponse{
		ID:          s.ID,
		Type:        s.Type,
		Path:        s.Path,
		DisplayName: s.DisplayName,
		Present:     s.Present,
		CreatedAt:   s.CreatedAt.Format(time.RFC3339),
	}
}

func JobToResponse(j *catalog.Job) JobResponse {
	return JobResponse{
		ID:          j.ID,
		Type:        j.Type,
		Status:      j.Status,
		SourceID:    j.SourceID,
		SelectionID: j.SelectionID,
		Progress:    j.Progress,
		Error:       j.Error,
		CreatedAt:   j.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   j.UpdatedAt.Format(time.RFC3339),
	}
}

func FileToResponse(f *catalog.File) FileResponse {
	return FileResponse{
		ID:          f.ID,
		SourceID:    f.SourceID,
		Path:        f.Path,
		Filename:    f.Filename,
		Size:        f.Size,
		ShotAt:      f.ShotAt.Format(time.RFC3339),
		DurationSec: f.DurationSec,
		Probed:      f.Probed,
		CreatedAt:   f.CreatedAt.Format(time.RFC3339),
	}
}

func SelectionToResponse(s *catalog.Selection) SelectionResponse {
	return SelectionResponse{
		ID:              s.ID,
		Status:          s.Status,
		Policy:          s.Policy,
		ClipLengthSec:   s.ClipLengthSec,
		TargetTotalSec:  s.TargetTotalSec,
		DiversityWeight: s.DiversityWeight,
		MinSceneScore:   s.MinSceneScore,
		MinGapSec:       s.MinGapSec,
		Seed:            s.Seed,
		AchievedSec:     s.AchievedSec,
		ShortfallSec:    s.ShortfallSec,
		CreatedAt:       s.CreatedAt.Format(time.RFC3339),
	}
}

func SelectionClipToResponse(c *catalog.SelectionClip) SelectionClipResponse {
	return SelectionClipResponse{
		ID:          c.ID,
		FileID:      c.FileID,
		Position:    c.Position,
		StartSec:    c.StartSec,
		DurationSec: c.DurationSec,
		Scene:       c.Features.Scene,
		Motion:      c.Features.Motion,
		Color:       c.Features.Color,
	}
}
