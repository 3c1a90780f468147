package catalog

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipforge/clipforge-agent/internal/probe"
	"github.com/clipforge/clipforge-agent/internal/scoring"
	"github.com/clipforge/clipforge-agent/internal/selection"
	"github.com/clipforge/clipforge-agent/internal/transition"
)

type CatalogService interface {
	AddFolder(ctx context.Context, path, displayName string) (*Source, error)
	RemoveSource(ctx context.Context, id string) error
	GetSources(ctx context.Context) ([]*Source, error)
	GetSource(ctx context.Context, id string) (*Source, error)
	GetFiles(ctx context.Context, sourceID string) ([]*File, error)
	GetFile(ctx context.Context, id string) (*File, error)
	CountFiles(ctx context.Context) (int, error)

	ScanSource(ctx context.Context, sourceID string) (*Job, error)
	ExecuteScan(ctx context.Context, jobID, sourceID, path string) error

	RequestSelection(ctx context.Context, sel *Selection) (*Job, error)
	ExecuteSelection(ctx context.Context, jobID, selectionID string) error
	GetSelection(ctx context.Context, id string) (*Selection, error)
	ListSelections(ctx context.Context, limit int) ([]*Selection, error)
	GetSelectionClips(ctx context.Context, selectionID string) ([]*SelectionClip, error)
}

type Service struct {
	repo   Repository
	prober probe.Prober
	logger *slog.Logger
}

// NewService wires the catalog service. prober may be nil, in which case
// scanned files keep zero duration until a real probe is available; logger
// may be nil.
func NewService(repo Repository, prober probe.Prober, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, prober: prober, logger: logger}
}

func (s *Service) AddFolder(ctx context.Context, path, displayName string) (*Source, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("path does not exist: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path is not a directory")
	}

	existing, err := s.repo.GetSourceByPath(ctx, absPath)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	if displayName == "" {
		displayName = filepath.Base(absPath)
	}

	source := &Source{
		ID:          NewID(),
		Type:        "folder",
		Path:        absPath,
		DisplayName: displayName,
		Present:     true,
		CreatedAt:   time.Now(),
	}
	if err := s.repo.CreateSource(ctx, source); err != nil {
		return nil, err
	}

	s.logger.Info("folder added", "source_id", source.ID, "path", absPath)
	return source, nil
}

func (s *Service) RemoveSource(ctx context.Context, id string) error {
	if err := s.repo.DeleteFilesBySource(ctx, id); err != nil {
		return err
	}
	return s.repo.DeleteSource(ctx, id)
}

func (s *Service) GetSources(ctx context.Context) ([]*Source, error) {
	return s.repo.ListSources(ctx)
}

func (s *Service) GetSource(ctx context.Context, id string) (*Source, error) {
	return s.repo.GetSource(ctx, id)
}

func (s *Service) GetFiles(ctx context.Context, sourceID string) ([]*File, error) {
	return s.repo.GetFilesBySource(ctx, sourceID)
}

func (s *Service) GetFile(ctx context.Context, id string) (*File, error) {
	return s.repo.GetFile(ctx, id)
}

func (s *Service) CountFiles(ctx context.Context) (int, error) {
	return s.repo.CountFiles(ctx)
}

func (s *Service) ScanSource(ctx context.Context, sourceID string) (*Job, error) {
	source, err := s.repo.GetSource(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if source == nil {
		return nil, fmt.Errorf("source not found")
	}

	now := time.Now()
	job := &Job{
		ID:        NewID(),
		Type:      JobTypeScan,
		Status:    JobStatusPending,
		SourceID:  sourceID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ExecuteScan walks the source folder, probing every video file it finds.
// A failed probe degrades the file to zero duration; only a failed walk
// fails the job.
func (s *Service) ExecuteScan(ctx context.Context, jobID, sourceID, path string) error {
	if err := s.repo.UpdateJobStatus(ctx, jobID, JobStatusRunning, ""); err != nil {
		return err
	}

	var found int
	walkErr := filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != path {
				return filepath.SkipDir
			}
			return nil
		}
		if !IsVideoFile(d.Name()) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}

		file := &File{
			ID:        NewID(),
			SourceID:  sourceID,
			Path:      p,
			Filename:  d.Name(),
			Size:      info.Size(),
			Mtime:     info.ModTime(),
			ShotAt:    ShotAtFromName(d.Name(), info.ModTime()),
			CreatedAt: time.Now(),
		}

		if s.prober != nil {
			if res, err := s.prober.Probe(ctx, p); err != nil {
				s.logger.Warn("duration probe failed, file excluded from allocation",
					"path", p, "error", err)
			} else {
				file.DurationSec = res.Duration
				file.Probed = true
			}
		}

		if err := s.repo.UpsertFile(ctx, file); err != nil {
			return err
		}
		found++
		return nil
	})

	if walkErr != nil {
		s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, walkErr.Error())
		return walkErr
	}

	s.logger.Info("scan complete", "source_id", sourceID, "files", found)
	return s.repo.UpdateJobStatus(ctx, jobID, JobStatusCompleted, "")
}

// RequestSelection persists the selection request and enqueues its job. A
// zero seed is replaced with a time-derived one so the stored row always
// reproduces the run.
func (s *Service) RequestSelection(ctx context.Context, sel *Selection) (*Job, error) {
	if sel.ID == "" {
		sel.ID = NewID()
	}
	if sel.Seed == 0 {
		sel.Seed = time.Now().UnixNano()
	}
	sel.Status = JobStatusPending
	sel.CreatedAt = time.Now()

	if err := sel.Params().Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.CreateSelection(ctx, sel); err != nil {
		return nil, err
	}

	now := time.Now()
	job := &Job{
		ID:          NewID(),
		Type:        JobTypeSelect,
		Status:      JobStatusPending,
		SelectionID: sel.ID,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateJob(ctx, job); err != nil {
		return nil, err
	}
	return job, nil
}

// ExecuteSelection runs the engine and transition pass for a stored
// selection request and persists the ordered clips.
func (s *Service) ExecuteSelection(ctx context.Context, jobID, selectionID string) error {
	if err := s.repo.UpdateJobStatus(ctx, jobID, JobStatusRunning, ""); err != nil {
		return err
	}

	sel, err := s.repo.GetSelection(ctx, selectionID)
	if err != nil {
		return s.failSelection(ctx, jobID, selectionID, err)
	}
	if sel == nil {
		return s.failSelection(ctx, jobID, selectionID, fmt.Errorf("selection not found"))
	}

	files, err := s.repo.ListFiles(ctx)
	if err != nil {
		return s.failSelection(ctx, jobID, selectionID, err)
	}

	sources := make([]selection.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, selection.Source{
			ID:        f.ID,
			Path:      f.Path,
			Duration:  f.DurationSec,
			Timestamp: f.ShotAt,
		})
	}

	rng := rand.New(rand.NewSource(sel.Seed))
	var meta scoring.MetadataProber
	if s.prober != nil {
		meta = probe.DurationAdapter{P: s.prober}
	}
	scorer := scoring.NewHeuristic(rng, meta, s.logger)
	engine := selection.NewEngine(scorer, rng, s.logger)

	res, err := engine.Select(ctx, sources, sel.Params())
	if err != nil {
		// ErrNoClips and parameter errors both land here; either way the
		// run produced nothing usable.
		return s.failSelection(ctx, jobID, selectionID, err)
	}

	optimized := transition.New(rng, s.logger).Optimize(res.Clips)

	clips := make([]*SelectionClip, len(optimized))
	for i, c := range optimized {
		clips[i] = &SelectionClip{
			ID:          NewID(),
			SelectionID: selectionID,
			FileID:      c.SourceID,
			Position:    i,
			StartSec:    c.Start,
			DurationSec: c.Duration,
			Features:    c.Features,
		}
	}
	if err := s.repo.ReplaceSelectionClips(ctx, selectionID, clips); err != nil {
		return s.failSelection(ctx, jobID, selectionID, err)
	}

	// Shortfall reflects allocation capacity, measured before the
	// transition pass trims clip tails.
	if err := s.repo.UpdateSelectionOutcome(ctx, selectionID, JobStatusCompleted, res.AchievedSec, res.ShortfallSec); err != nil {
		return s.failSelection(ctx, jobID, selectionID, err)
	}

	s.logger.Info("selection complete",
		"selection_id", selectionID,
		"clips", len(clips),
		"achieved_sec", res.AchievedSec,
		"shortfall_sec", res.ShortfallSec)
	return s.repo.UpdateJobStatus(ctx, jobID, JobStatusCompleted, "")
}

func (s *Service) failSelection(ctx context.Context, jobID, selectionID string, cause error) error {
	s.repo.UpdateSelectionOutcome(ctx, selectionID, JobStatusFailed, 0, 0)
	s.repo.UpdateJobStatus(ctx, jobID, JobStatusFailed, cause.Error())
	return cause
}

func (s *Service) GetSelection(ctx context.Context, id string) (*Selection, error) {
	return s.repo.GetSelection(ctx, id)
}

func (s *Service) ListSelections(ctx context.Context, limit int) ([]*Selection, error) {
	return s.repo.ListSelections(ctx, limit)
}

func (s *Service) GetSelectionClips(ctx context.Context, selectionID string) ([]*SelectionClip, error) {
	return s.repo.GetSelectionClips(ctx, selectionID)
}
