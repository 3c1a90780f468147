// Package probe resolves media metadata for source files. The agent treats
// the probe as an external collaborator: a failed probe degrades a file to
// zero duration instead of aborting whatever run needed it.
package probe

import (
	"context"
	"fmt"
	"log/slog"
)

// Result carries the metadata the selection pipeline cares about.
type Result struct {
	Duration  float64 `json:"duration"`
	Width     int     `json:"width"`
	Height    int     `json:"height"`
	Codec     string  `json:"codec"`
	FrameRate float64 `json:"frame_rate"`
	HasAudio  bool    `json:"has_audio"`
}

// Prober resolves metadata for one file.
type Prober interface {
	Probe(ctx context.Context, path string) (*Result, error)
	// Available reports whether the underlying tool can run at all,
	// preflight-style.
	Available() bool
}

// Stub serves canned durations, for tests and machines without ffprobe.
type Stub struct {
	Durations map[string]float64
	logger    *slog.Logger
}

// NewStub creates a stub prober. logger may be nil.
func NewStub(durations map[string]float64, logger *slog.Logger) *Stub {
	return &Stub{Durations: durations, logger: logger}
}

func (s *Stub) Probe(ctx context.Context, path string) (*Result, error) {
	if d, ok := s.Durations[path]; ok {
		return &Result{Duration: d, FrameRate: 30}, nil
	}
	if s.logger != nil {
		s.logger.Debug("stub probe has no entry", "path", path)
	}
	return nil, fmt.Errorf("stub probe: no metadata for %s", path)
}

func (s *Stub) Available() bool {
	return true
}

// DurationAdapter exposes a Prober through the narrow duration-only
// interface the scoring package consumes.
type DurationAdapter struct {
	P Prober
}

func (a DurationAdapter) Duration(ctx context.Context, path string) (float64, error) {
	res, err := a.P.Probe(ctx, path)
	if err != nil {
		return 0, err
	}
	return res.Duration, nil
}
