package db

import (
	"path/filepath"
	"testing"
)

func TestNew_CreatesAndMigrates(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer database.Close()

	for _, table := range []string{"sources", "files", "jobs", "selections", "clips", "config"} {
		var name string
		err := database.Conn().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %q missing after migration: %v", table, err)
		}
	}
}

func TestNew_MigrationsIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	first, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("first New() error = %v", err)
	}
	first.Close()

	second, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("second New() error = %v", err)
	}
	second.Close()
}

func TestNew_MarksInterruptedJobs(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	database, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	_, err = database.Conn().Exec(`
		INSERT INTO jobs (id, type, status, created_at, updated_at)
		VALUES ('j1', 'select', 'running', datetime('now'), datetime('now'))`)
	if err != nil {
		t.Fatalf("insert job: %v", err)
	}
	database.Close()

	reopened, err := New(dbPath, nil)
	if err != nil {
		t.Fatalf("reopen New() error = %v", err)
	}
	defer reopened.Close()

	var status, errMsg string
	if err := reopened.Conn().QueryRow("SELECT status, error FROM jobs WHERE id='j1'").Scan(&status, &errMsg); err != nil {
		t.Fatalf("query job: %v", err)
	}
	if status != "failed" {
		t.Errorf("status = %q, want failed", status)
	}
	if errMsg == "" {
		t.Error("error message empty, want interruption note")
	}
}
