// Package config manages agent configuration. Defaults are overridden by an
// optional TOML file, which is in turn overridden by CLIPFORGE_* environment
// variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/pelletier/go-toml/v2"
)

const (
	DefaultPort     = 8787
	DefaultLogLevel = "info"
	DefaultDataDir  = ".clipforge"

	// Selection defaults.
	DefaultClipLengthSec  = 5.0
	DefaultTargetTotalSec = 60.0
	DefaultPolicy         = "plain"
	DefaultMinGapSec      = 1.0

	EnvPort       = "CLIPFORGE_PORT"
	EnvLogLevel   = "CLIPFORGE_LOG_LEVEL"
	EnvDataDir    = "CLIPFORGE_DATA_DIR"
	EnvHeadless   = "CLIPFORGE_HEADLESS"
	EnvConfigFile = "CLIPFORGE_CONFIG"
	EnvSeed       = "CLIPFORGE_SEED"

	DBFilename     = "clipforge.db"
	LockFilename   = "clipforge.lock"
	ConfigFilename = "clipforge.toml"
)

// SelectionDefaults are the file-configurable defaults applied to selection
// requests that omit a field.
type SelectionDefaults struct {
	ClipLengthSec   float64 `toml:"clip_length_sec"`
	TargetTotalSec  float64 `toml:"target_total_sec"`
	Policy          string  `toml:"policy"`
	DiversityWeight float64 `toml:"diversity_weight"`
	MinSceneScore   float64 `toml:"min_scene_score"`
	MinGapSec       float64 `toml:"min_gap_sec"`
	Seed            int64   `toml:"seed"`
}

type fileConfig struct {
	Port      int               `toml:"port"`
	LogLevel  string            `toml:"log_level"`
	DataDir   string            `toml:"data_dir"`
	Headless  bool              `toml:"headless"`
	Selection SelectionDefaults `toml:"selection"`
}

// Config is the resolved agent configuration.
type Config struct {
	port      int
	logLevel  string
	dataDir   string
	headless  bool
	selection SelectionDefaults
	path      string // config file actually loaded, if any
}

// New resolves configuration: defaults, then the TOML file (CLIPFORGE_CONFIG
// or <data dir>/clipforge.toml when present), then environment variables.
func New() (*Config, error) {
	cfg := &Config{
		port:     DefaultPort,
		logLevel: DefaultLogLevel,
		dataDir:  defaultDataDir(),
		selection: SelectionDefaults{
			ClipLengthSec:  DefaultClipLengthSec,
			TargetTotalSec: DefaultTargetTotalSec,
			Policy:         DefaultPolicy,
			MinGapSec:      DefaultMinGapSec,
		},
	}

	// The data dir env override applies before the file lookup so the
	// default file location follows it.
	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	path := os.Getenv(EnvConfigFile)
	explicit := path != ""
	if path == "" {
		path = filepath.Join(cfg.dataDir, ConfigFilename)
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, explicit bool) error {
	contents, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	if err := toml.Unmarshal(contents, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	c.path = path

	if fc.Port != 0 {
		c.port = fc.Port
	}
	if fc.LogLevel != "" {
		c.logLevel = fc.LogLevel
	}
	if fc.DataDir != "" {
		c.dataDir = fc.DataDir
	}
	if fc.Headless {
		c.headless = true
	}
	if fc.Selection.ClipLengthSec > 0 {
		c.selection.ClipLengthSec = fc.Selection.ClipLengthSec
	}
	if fc.Selection.TargetTotalSec > 0 {
		c.selection.TargetTotalSec = fc.Selection.TargetTotalSec
	}
	if fc.Selection.Policy != "" {
		c.selection.Policy = fc.Selection.Policy
	}
	if fc.Selection.DiversityWeight > 0 {
		c.selection.DiversityWeight = fc.Selection.DiversityWeight
	}
	if fc.Selection.MinSceneScore > 0 {
		c.selection.MinSceneScore = fc.Selection.MinSceneScore
	}
	if fc.Selection.MinGapSec > 0 {
		c.selection.MinGapSec = fc.Selection.MinGapSec
	}
	if fc.Selection.Seed != 0 {
		c.selection.Seed = fc.Selection.Seed
	}
	return nil
}

func (c *Config) loadEnv() error {
	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		c.port = port
	}
	if ll := os.Getenv(EnvLogLevel); ll != "" {
		c.logLevel = ll
	}
	if dd := os.Getenv(EnvDataDir); dd != "" {
		c.dataDir = dd
	}
	if h := os.Getenv(EnvHeadless); h != "" {
		headless, err := strconv.ParseBool(h)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvHeadless, err)
		}
		c.headless = headless
	}
	if s := os.Getenv(EnvSeed); s != "" {
		seed, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", EnvSeed, err)
		}
		c.selection.Seed = seed
	}
	return nil
}

// Port returns the HTTP server port.
func (c *Config) Port() int { return c.port }

// LogLevel returns the log level (debug, info, warn, error).
func (c *Config) LogLevel() string { return c.logLevel }

// DataDir returns the data directory path.
func (c *Config) DataDir() string { return c.dataDir }

// DBPath returns the full path to the SQLite database file.
func (c *Config) DBPath() string { return filepath.Join(c.dataDir, DBFilename) }

// LockPath returns the daemon lock file path.
func (c *Config) LockPath() string { return filepath.Join(c.dataDir, LockFilename) }

// Headless reports whether the system tray should be skipped.
func (c *Config) Headless() bool { return c.headless }

// Selection returns the selection defaults.
func (c *Config) Selection() SelectionDefaults { return c.selection }

// Path returns the config file that was loaded, or "" when running on
// defaults.
func (c *Config) Path() string { return c.path }

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags).
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
