package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/clipforge/clipforge-agent/internal/catalog"
	"github.com/clipforge/clipforge-agent/internal/db"
	"github.com/clipforge/clipforge-agent/internal/scoring"
)

func setupExportFixture(t *testing.T) (catalog.Repository, string, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.New(dbPath, nil)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	repo := catalog.NewRepository(database.Conn())
	ctx := context.Background()

	source := &catalog.Source{
		ID: "s1", Type: "folder", Path: "/media", DisplayName: "Media",
		Present: true, CreatedAt: time.Now(),
	}
	if err := repo.CreateSource(ctx, source); err != nil {
		t.Fatalf("create source: %v", err)
	}

	file := &catalog.File{
		ID: "f1", SourceID: "s1", Path: "/media/a.mp4", Filename: "a.mp4",
		Size: 100, Mtime: time.Now(), ShotAt: time.Now(),
		DurationSec: 60, Probed: true, CreatedAt: time.Now(),
	}
	if err := repo.UpsertFile(ctx, file); err != nil {
		t.Fatalf("upsert file: %v", err)
	}

	sel := &catalog.Selection{
		ID: "sel1", Status: catalog.JobStatusPending, Policy: "plain",
		ClipLengthSec: 5, TargetTotalSec: 10, MinGapSec: 1, Seed: 1,
		CreatedAt: time.Now(),
	}
	if err := repo.CreateSelection(ctx, sel); err != nil {
		t.Fatalf("create selection: %v", err)
	}
	clips := []*catalog.SelectionClip{
		{ID: "c1", SelectionID: "sel1", FileID: "f1", Position: 0, StartSec: 2, DurationSec: 5,
			Features: scoring.Features{Scene: 0.5, Motion: 0.4, Color: 0.6}},
		{ID: "c2", SelectionID: "sel1", FileID: "f1", Position: 1, StartSec: 20, DurationSec: 5},
	}
	if err := repo.ReplaceSelectionClips(ctx, "sel1", clips); err != nil {
		t.Fatalf("replace clips: %v", err)
	}
	if err := repo.UpdateSelectionOutcome(ctx, "sel1", catalog.JobStatusCompleted, 10, 0); err != nil {
		t.Fatalf("update outcome: %v", err)
	}

	return repo, t.TempDir(), func() { database.Close() }
}

func TestService_Export_EDL(t *testing.T) {
	repo, outDir, cleanup := setupExportFixture(t)
	defer cleanup()

	svc := NewService(repo, nil)
	resp, err := svc.Export(context.Background(), ExportRequest{
		SelectionID: "sel1",
		ProjectName: "Road Trip",
		Format:      FormatEDL,
		FrameRate:   30,
		OutputDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if resp.ClipCount != 2 {
		t.Errorf("ClipCount = %d, want 2", resp.ClipCount)
	}

	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	edl := string(data)
	if !strings.Contains(edl, "TITLE: Road Trip") {
		t.Errorf("EDL missing title: %q", edl)
	}
	if !strings.Contains(edl, "* MEDIA PATH:  /media/a.mp4") {
		t.Errorf("EDL missing media path: %q", edl)
	}
}

func TestService_Export_JSON(t *testing.T) {
	repo, outDir, cleanup := setupExportFixture(t)
	defer cleanup()

	svc := NewService(repo, nil)
	resp, err := svc.Export(context.Background(), ExportRequest{
		SelectionID: "sel1",
		Format:      FormatJSON,
		OutputDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, err := os.ReadFile(resp.OutputPath)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	var tl jsonTimeline
	if err := json.Unmarshal(data, &tl); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if tl.Totals.ClipCount != 2 || tl.Totals.DurationSec != 10 {
		t.Errorf("totals = %+v, want 2 clips / 10s", tl.Totals)
	}
	if tl.Clips[1].RecordIn != 5 {
		t.Errorf("second clip RecordIn = %v, want 5 (cumulative)", tl.Clips[1].RecordIn)
	}
}

func TestService_Export_CSV(t *testing.T) {
	repo, outDir, cleanup := setupExportFixture(t)
	defer cleanup()

	svc := NewService(repo, nil)
	resp, err := svc.Export(context.Background(), ExportRequest{
		SelectionID: "sel1",
		Format:      FormatCSV,
		OutputDir:   outDir,
	})
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}

	data, _ := os.ReadFile(resp.OutputPath)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 3 {
		t.Fatalf("CSV has %d lines, want header + 2 rows", len(lines))
	}
	if !strings.HasPrefix(lines[0], "position,name,media_path") {
		t.Errorf("unexpected CSV header: %q", lines[0])
	}
}

func TestService_Export_RejectsIncompleteSelection(t *testing.T) {
	repo, outDir, cleanup := setupExportFixture(t)
	defer cleanup()

	ctx := context.Background()
	sel := &catalog.Selection{
		ID: "sel2", Status: catalog.JobStatusRunning, Policy: "plain",
		ClipLengthSec: 5, TargetTotalSec: 10, MinGapSec: 1, Seed: 1,
		CreatedAt: time.Now(),
	}
	if err := repo.CreateSelection(ctx, sel); err != nil {
		t.Fatalf("create selection: %v", err)
	}

	svc := NewService(repo, nil)
	_, err := svc.Export(ctx, ExportRequest{
		SelectionID: "sel2",
		Format:      FormatEDL,
		OutputDir:   outDir,
	})
	if err == nil {
		t.Error("Export() should reject a selection that has not completed")
	}
}

func TestService_Export_UnsupportedFormat(t *testing.T) {
	repo, outDir, cleanup := setupExportFixture(t)
	defer cleanup()

	svc := NewService(repo, nil)
	_, err := svc.Export(context.Background(), ExportRequest{
		SelectionID: "sel1",
		Format:      "xml",
		OutputDir:   outDir,
	})
	if err == nil {
		t.Error("Export() should reject unknown formats")
	}
}
