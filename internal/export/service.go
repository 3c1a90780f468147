package export

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/clipforge/clipforge-agent/internal/catalog"
)

type Service struct {
	repo   catalog.Repository
	logger *slog.Logger
}

func NewService(repo catalog.Repository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{repo: repo, logger: logger}
}

// Export resolves a completed selection's clips against the file catalog and
// writes the requested timeline format into req.OutputDir. Clips whose file
// row has vanished are skipped and reported, not fatal.
func (s *Service) Export(ctx context.Context, req ExportRequest) (*ExportResponse, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}
	switch req.Format {
	case FormatEDL, FormatJSON, FormatCSV:
	default:
		return nil, fmt.Errorf("unsupported format %q", req.Format)
	}

	sel, err := s.repo.GetSelection(ctx, req.SelectionID)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, fmt.Errorf("selection not found")
	}
	if sel.Status != catalog.JobStatusCompleted {
		return nil, fmt.Errorf("selection is %s, not completed", sel.Status)
	}

	clips, err := s.repo.GetSelectionClips(ctx, req.SelectionID)
	if err != nil {
		return nil, err
	}

	resolved, unresolved := s.resolve(ctx, clips)
	if len(resolved) == 0 {
		return nil, fmt.Errorf("no exportable clips in selection")
	}

	title := req.ProjectName
	if title == "" {
		title = "ClipForge Selection"
	}
	frameRate := req.FrameRate
	if frameRate <= 0 {
		frameRate = 30
	}

	var data []byte
	switch req.Format {
	case FormatEDL:
		data = []byte(GenerateEDL(resolved, title, frameRate))
	case FormatJSON:
		data, err = GenerateJSON(resolved, title, frameRate)
	case FormatCSV:
		data, err = GenerateCSV(resolved)
	}
	if err != nil {
		return nil, fmt.Errorf("generate %s: %w", req.Format, err)
	}

	filename := SanitizeName(title, 64) + "." + req.Format
	outPath := filepath.Join(req.OutputDir, filename)
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return nil, fmt.Errorf("write timeline: %w", err)
	}

	s.logger.Info("selection exported",
		"selection_id", req.SelectionID,
		"format", req.Format,
		"clips", len(resolved),
		"output", outPath)

	return &ExportResponse{
		Status:          "ok",
		Format:          req.Format,
		OutputPath:      outPath,
		ClipCount:       len(resolved),
		UnresolvedClips: unresolved,
	}, nil
}

func (s *Service) resolve(ctx context.Context, clips []*catalog.SelectionClip) ([]ResolvedClip, []string) {
	resolved := make([]ResolvedClip, 0, len(clips))
	var unresolved []string

	for _, c := range clips {
		file, err := s.repo.GetFile(ctx, c.FileID)
		if err != nil || file == nil {
			s.logger.Warn("clip file missing from catalog", "clip_id", c.ID, "file_id", c.FileID)
			unresolved = append(unresolved, c.ID)
			continue
		}

		startMs := int(c.StartSec * 1000)
		resolved = append(resolved, ResolvedClip{
			ClipName:  file.Filename,
			MediaPath: file.Path,
			StartMs:   startMs,
			EndMs:     startMs + int(c.DurationSec*1000),
			Scene:     c.Features.Scene,
			Motion:    c.Features.Motion,
			Color:     c.Features.Color,
		})
	}
	return resolved, unresolved
}
