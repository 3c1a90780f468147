package catalog

import (
	"context"
	"database/sql"
	"time"
)

type Repository interface {
	CreateSource(ctx context.Context, source *Source) error
	GetSource(ctx context.Context, id string) (*Source, error)
	GetSourceByPath(ctx context.Context, path string) (*Source, error)
	ListSources(ctx context.Context) ([]*Source, error)
	DeleteSource(ctx context.Context, id string) error
	UpdateSourcePresent(ctx context.Context, id string, present bool) error

	GetFile(ctx context.Context, id string) (*File, error)
	ListFiles(ctx context.Context) ([]*File, error)
	GetFilesBySource(ctx context.Context, sourceID string) ([]*File, error)
	DeleteFilesBySource(ctx context.Context, sourceID string) error
	UpsertFile(ctx context.Context, file *File) error
	CountFiles(ctx context.Context) (int, error)

	CreateJob(ctx context.Context, job *Job) error
	GetJob(ctx context.Context, id string) (*Job, error)
	ListJobs(ctx context.Context, limit int) ([]*Job, error)
	ListPendingJobs(ctx context.Context) ([]*Job, error)
	UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error
	UpdateJobProgress(ctx context.Context, id string, progress int) error

	CreateSelection(ctx context.Context, sel *Selection) error
	GetSelection(ctx context.Context, id string) (*Selection, error)
	ListSelections(ctx context.Context, limit int) ([]*Selection, error)
	UpdateSelectionOutcome(ctx context.Context, id, status string, achievedSec, shortfallSec float64) error
	ReplaceSelectionClips(ctx context.Context, selectionID string, clips []*SelectionClip) error
	GetSelectionClips(ctx context.Context, selectionID string) ([]*SelectionClip, error)

	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error
}

type SQLiteRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) CreateSource(ctx context.Context, s *Source) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO sources (id, type, path, display_name, present, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.Type, s.Path, s.DisplayName, boolToInt(s.Present), s.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSource(ctx context.Context, id string) (*Source, error) {
	return r.scanSource(r.db.QueryRowContext(ctx, `
		SELECT id, type, path, display_name, present, created_at
		FROM sources WHERE id = ?
	`, id))
}

func (r *SQLiteRepository) GetSourceByPath(ctx context.Context, path string) (*Source, error) {
	return r.scanSource(r.db.QueryRowContext(ctx, `
		SELECT id, type, path, display_name, present, created_at
		FROM sources WHERE path = ?
	`, path))
}

func (r *SQLiteRepository) scanSource(row *sql.Row) (*Source, error) {
	var s Source
	var present int
	var createdAt string

	err := row.Scan(&s.ID, &s.Type, &s.Path, &s.DisplayName, &present, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	s.Present = present == 1
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &s, nil
}

func (r *SQLiteRepository) ListSources(ctx context.Context) ([]*Source, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, type, path, display_name, present, created_at
		FROM sources ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sources []*Source
	for rows.Next() {
		var s Source
		var present int
		var createdAt string
		if err := rows.Scan(&s.ID, &s.Type, &s.Path, &s.DisplayName, &present, &createdAt); err != nil {
			return nil, err
		}
		s.Present = present == 1
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		sources = append(sources, &s)
	}
	return sources, rows.Err()
}

func (r *SQLiteRepository) DeleteSource(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM sources WHERE id = ?", id)
	return err
}

func (r *SQLiteRepository) UpdateSourcePresent(ctx context.Context, id string, present bool) error {
	_, err := r.db.ExecContext(ctx, "UPDATE sources SET present = ? WHERE id = ?", boolToInt(present), id)
	return err
}

const fileColumns = "id, source_id, path, filename, size, mtime, shot_at, duration_sec, probed, created_at"

func (r *SQLiteRepository) GetFile(ctx context.Context, id string) (*File, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+fileColumns+" FROM files WHERE id = ?", id)
	f, err := scanFileRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return f, err
}

func (r *SQLiteRepository) ListFiles(ctx context.Context) ([]*File, error) {
	return r.queryFiles(ctx, "SELECT "+fileColumns+" FROM files ORDER BY shot_at, filename")
}

func (r *SQLiteRepository) GetFilesBySource(ctx context.Context, sourceID string) ([]*File, error) {
	return r.queryFiles(ctx, "SELECT "+fileColumns+" FROM files WHERE source_id = ? ORDER BY filename", sourceID)
}

func (r *SQLiteRepository) queryFiles(ctx context.Context, query string, args ...any) ([]*File, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []*File
	for rows.Next() {
		f, err := scanFileRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}

func scanFileRow(scan func(...any) error) (*File, error) {
	var f File
	var mtime, shotAt, createdAt string
	var probed int
	err := scan(&f.ID, &f.SourceID, &f.Path, &f.Filename, &f.Size, &mtime, &shotAt, &f.DurationSec, &probed, &createdAt)
	if err != nil {
		return nil, err
	}
	f.Mtime, _ = time.Parse(time.RFC3339, mtime)
	f.ShotAt, _ = time.Parse(time.RFC3339, shotAt)
	f.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	f.Probed = probed == 1
	return &f, nil
}

func (r *SQLiteRepository) DeleteFilesBySource(ctx context.Context, sourceID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM files WHERE source_id = ?", sourceID)
	return err
}

func (r *SQLiteRepository) UpsertFile(ctx context.Context, f *File) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime = excluded.mtime,
			shot_at = excluded.shot_at,
			duration_sec = excluded.duration_sec,
			probed = excluded.probed
	`, f.ID, f.SourceID, f.Path, f.Filename, f.Size,
		f.Mtime.Format(time.RFC3339), f.ShotAt.Format(time.RFC3339),
		f.DurationSec, boolToInt(f.Probed), f.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) CountFiles(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM files").Scan(&count)
	return count, err
}

const jobColumns = "id, type, status, source_id, selection_id, progress, error, created_at, updated_at"

func (r *SQLiteRepository) CreateJob(ctx context.Context, j *Job) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO jobs (`+jobColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, j.ID, j.Type, j.Status, nullString(j.SourceID), nullString(j.SelectionID),
		j.Progress, j.Error, j.CreatedAt.Format(time.RFC3339), j.UpdatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetJob(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+jobColumns+" FROM jobs WHERE id = ?", id)
	j, err := scanJobRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return j, err
}

func (r *SQLiteRepository) ListJobs(ctx context.Context, limit int) ([]*Job, error) {
	return r.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs ORDER BY created_at DESC LIMIT ?", limit)
}

func (r *SQLiteRepository) ListPendingJobs(ctx context.Context) ([]*Job, error) {
	return r.queryJobs(ctx, "SELECT "+jobColumns+" FROM jobs WHERE status = ? ORDER BY created_at", JobStatusPending)
}

func (r *SQLiteRepository) queryJobs(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var jobs []*Job
	for rows.Next() {
		j, err := scanJobRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

func scanJobRow(scan func(...any) error) (*Job, error) {
	var j Job
	var sourceID, selectionID sql.NullString
	var createdAt, updatedAt string
	err := scan(&j.ID, &j.Type, &j.Status, &sourceID, &selectionID, &j.Progress, &j.Error, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	j.SourceID = sourceID.String
	j.SelectionID = selectionID.String
	j.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	j.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &j, nil
}

func (r *SQLiteRepository) UpdateJobStatus(ctx context.Context, id, status, errorMsg string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?
	`, status, errorMsg, time.Now().Format(time.RFC3339), id)
	return err
}

func (r *SQLiteRepository) UpdateJobProgress(ctx context.Context, id string, progress int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET progress = ?, updated_at = ? WHERE id = ?
	`, progress, time.Now().Format(time.RFC3339), id)
	return err
}

const selectionColumns = `id, status, policy, clip_length_sec, target_total_sec,
	diversity_weight, min_scene_score, min_gap_sec, seed, achieved_sec, shortfall_sec, created_at`

func (r *SQLiteRepository) CreateSelection(ctx context.Context, s *Selection) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO selections (`+selectionColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.ID, s.Status, s.Policy, s.ClipLengthSec, s.TargetTotalSec,
		s.DiversityWeight, s.MinSceneScore, s.MinGapSec, s.Seed,
		s.AchievedSec, s.ShortfallSec, s.CreatedAt.Format(time.RFC3339))
	return err
}

func (r *SQLiteRepository) GetSelection(ctx context.Context, id string) (*Selection, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+selectionColumns+" FROM selections WHERE id = ?", id)
	s, err := scanSelectionRow(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return s, err
}

func (r *SQLiteRepository) ListSelections(ctx context.Context, limit int) ([]*Selection, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+selectionColumns+" FROM selections ORDER BY created_at DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var selections []*Selection
	for rows.Next() {
		s, err := scanSelectionRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		selections = append(selections, s)
	}
	return selections, rows.Err()
}

func scanSelectionRow(scan func(...any) error) (*Selection, error) {
	var s Selection
	var createdAt string
	err := scan(&s.ID, &s.Status, &s.Policy, &s.ClipLengthSec, &s.TargetTotalSec,
		&s.DiversityWeight, &s.MinSceneScore, &s.MinGapSec, &s.Seed,
		&s.AchievedSec, &s.ShortfallSec, &createdAt)
	if err != nil {
		return nil, err
	}
	s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &s, nil
}

func (r *SQLiteRepository) UpdateSelectionOutcome(ctx context.Context, id, status string, achievedSec, shortfallSec float64) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE selections SET status = ?, achieved_sec = ?, shortfall_sec = ? WHERE id = ?
	`, status, achievedSec, shortfallSec, id)
	return err
}

func (r *SQLiteRepository) ReplaceSelectionClips(ctx context.Context, selectionID string, clips []*SelectionClip) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM clips WHERE selection_id = ?", selectionID); err != nil {
		return err
	}
	for _, c := range clips {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO clips (id, selection_id, file_id, position, start_sec, duration_sec, scene, motion, color)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, c.ID, selectionID, c.FileID, c.Position, c.StartSec, c.DurationSec,
			c.Features.Scene, c.Features.Motion, c.Features.Color)
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (r *SQLiteRepository) GetSelectionClips(ctx context.Context, selectionID string) ([]*SelectionClip, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, selection_id, file_id, position, start_sec, duration_sec, scene, motion, color
		FROM clips WHERE selection_id = ? ORDER BY position
	`, selectionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clips []*SelectionClip
	for rows.Next() {
		var c SelectionClip
		if err := rows.Scan(&c.ID, &c.SelectionID, &c.FileID, &c.Position,
			&c.StartSec, &c.DurationSec, &c.Features.Scene, &c.Features.Motion, &c.Features.Color); err != nil {
			return nil, err
		}
		clips = append(clips, &c)
	}
	return clips, rows.Err()
}

func (r *SQLiteRepository) GetConfig(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx, "SELECT value FROM config WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

func (r *SQLiteRepository) SetConfig(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO config (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
