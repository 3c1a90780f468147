package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew_Defaults(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", cfg.Port(), DefaultPort)
	}
	if cfg.LogLevel() != DefaultLogLevel {
		t.Errorf("LogLevel() = %s, want %s", cfg.LogLevel(), DefaultLogLevel)
	}
	sel := cfg.Selection()
	if sel.ClipLengthSec != DefaultClipLengthSec {
		t.Errorf("ClipLengthSec = %v, want %v", sel.ClipLengthSec, DefaultClipLengthSec)
	}
	if sel.Policy != DefaultPolicy {
		t.Errorf("Policy = %s, want %s", sel.Policy, DefaultPolicy)
	}
	if sel.MinGapSec != DefaultMinGapSec {
		t.Errorf("MinGapSec = %v, want %v", sel.MinGapSec, DefaultMinGapSec)
	}
}

func TestNew_EnvOverrides(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvPort, "9100")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvHeadless, "true")
	t.Setenv(EnvSeed, "1234")

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9100 {
		t.Errorf("Port() = %d, want 9100", cfg.Port())
	}
	if cfg.LogLevel() != "debug" {
		t.Errorf("LogLevel() = %s, want debug", cfg.LogLevel())
	}
	if !cfg.Headless() {
		t.Error("Headless() = false, want true")
	}
	if cfg.Selection().Seed != 1234 {
		t.Errorf("Seed = %d, want 1234", cfg.Selection().Seed)
	}
}

func TestNew_InvalidPort(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())

	for _, bad := range []string{"nope", "0", "70000"} {
		t.Setenv(EnvPort, bad)
		if _, err := New(); err == nil {
			t.Errorf("New() with port %q expected error", bad)
		}
	}
}

func TestNew_TOMLFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)

	contents := `
port = 9200
log_level = "warn"

[selection]
clip_length_sec = 3.5
policy = "diversity"
diversity_weight = 0.7
`
	if err := os.WriteFile(filepath.Join(dataDir, ConfigFilename), []byte(contents), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9200 {
		t.Errorf("Port() = %d, want 9200", cfg.Port())
	}
	sel := cfg.Selection()
	if sel.ClipLengthSec != 3.5 {
		t.Errorf("ClipLengthSec = %v, want 3.5", sel.ClipLengthSec)
	}
	if sel.Policy != "diversity" {
		t.Errorf("Policy = %s, want diversity", sel.Policy)
	}
	if sel.DiversityWeight != 0.7 {
		t.Errorf("DiversityWeight = %v, want 0.7", sel.DiversityWeight)
	}
	// Untouched fields keep defaults.
	if sel.TargetTotalSec != DefaultTargetTotalSec {
		t.Errorf("TargetTotalSec = %v, want default %v", sel.TargetTotalSec, DefaultTargetTotalSec)
	}
}

func TestNew_EnvBeatsFile(t *testing.T) {
	dataDir := t.TempDir()
	t.Setenv(EnvDataDir, dataDir)
	t.Setenv(EnvPort, "9300")

	contents := "port = 9200\n"
	if err := os.WriteFile(filepath.Join(dataDir, ConfigFilename), []byte(contents), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := New()
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if cfg.Port() != 9300 {
		t.Errorf("Port() = %d, want env override 9300", cfg.Port())
	}
}

func TestNew_ExplicitMissingFileFails(t *testing.T) {
	t.Setenv(EnvDataDir, t.TempDir())
	t.Setenv(EnvConfigFile, "/nonexistent/clipforge.toml")

	if _, err := New(); err == nil {
		t.Error("New() with missing explicit config expected error")
	}
}
