// Package watcher keeps the catalog fresh by polling source folders and
// enqueueing a rescan when their contents change.
package watcher

import (
	"context"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipforge/clipforge-agent/internal/catalog"
)

type Watcher interface {
	Start(ctx context.Context)
	Stop()
}

// signature summarizes a folder's video contents cheaply enough to poll.
type signature struct {
	count   int
	maxTime time.Time
}

type PollingWatcher struct {
	service      catalog.CatalogService
	logger       *slog.Logger
	pollInterval time.Duration
	seen         map[string]signature
	cancel       context.CancelFunc
}

func NewPollingWatcher(service catalog.CatalogService, logger *slog.Logger) *PollingWatcher {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &PollingWatcher{
		service:      service,
		logger:       logger,
		pollInterval: 30 * time.Second,
		seen:         make(map[string]signature),
	}
}

func (w *PollingWatcher) Start(ctx context.Context) {
	ctx, w.cancel = context.WithCancel(ctx)
	w.logger.Info("folder watcher started", "interval", w.pollInterval)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	// Prime signatures so startup does not rescan unchanged folders; the
	// daemon scans on demand anyway.
	w.poll(ctx, false)

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("folder watcher stopping")
			return
		case <-ticker.C:
			w.poll(ctx, true)
		}
	}
}

func (w *PollingWatcher) Stop() {
	if w.cancel != nil {
		w.cancel()
	}
}

func (w *PollingWatcher) poll(ctx context.Context, enqueue bool) {
	sources, err := w.service.GetSources(ctx)
	if err != nil {
		w.logger.Error("watcher failed to list sources", "error", err)
		return
	}

	for _, source := range sources {
		sig := folderSignature(source.Path)
		prev, known := w.seen[source.ID]
		w.seen[source.ID] = sig

		if !enqueue || (known && prev == sig) {
			continue
		}

		w.logger.Info("source folder changed, enqueueing rescan",
			"source_id", source.ID,
			"files", sig.count)
		if _, err := w.service.ScanSource(ctx, source.ID); err != nil {
			w.logger.Error("failed to enqueue rescan", "source_id", source.ID, "error", err)
		}
	}
}

func folderSignature(root string) signature {
	var sig signature
	filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && p != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !catalog.IsVideoFile(d.Name()) {
			return nil
		}
		sig.count++
		if info, err := d.Info(); err == nil && info.ModTime().After(sig.maxTime) {
			sig.maxTime = info.ModTime()
		}
		return nil
	})
	return sig
}
