// Package ui is the agent's system tray: a status glance plus pause,
// resume, and quit controls.
package ui

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/getlantern/systray"

	"github.com/clipforge/clipforge-agent/internal/catalog"
)

type Tray struct {
	catalogSvc catalog.CatalogService
	runner     *catalog.Runner
	logger     *slog.Logger

	statusItem  *systray.MenuItem
	sourcesItem *systray.MenuItem
	pauseItem   *systray.MenuItem

	mu sync.Mutex

	onQuit func()
}

type TrayConfig struct {
	CatalogService catalog.CatalogService
	Runner         *catalog.Runner
	Logger         *slog.Logger
	OnQuit         func()
}

func NewTray(cfg TrayConfig) *Tray {
	return &Tray{
		catalogSvc: cfg.CatalogService,
		runner:     cfg.Runner,
		logger:     cfg.Logger,
		onQuit:     cfg.OnQuit,
	}
}

func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetIcon(iconBytes)
	systray.SetTitle("ClipForge")
	systray.SetTooltip("ClipForge Agent")

	t.statusItem = systray.AddMenuItem("Status: Idle", "Current agent status")
	t.statusItem.Disable()

	t.sourcesItem = systray.AddMenuItem("Sources: 0", "Watched source folders")
	t.sourcesItem.Disable()

	systray.AddSeparator()

	t.pauseItem = systray.AddMenuItem("Pause", "Pause background jobs")

	systray.AddSeparator()

	quitItem := systray.AddMenuItem("Quit", "Quit ClipForge Agent")

	go func() {
		for {
			select {
			case <-t.pauseItem.ClickedCh:
				t.togglePause()
			case <-quitItem.ClickedCh:
				t.logger.Info("quit requested from tray")
				if t.onQuit != nil {
					t.onQuit()
				}
				systray.Quit()
				return
			}
		}
	}()

	t.logger.Info("system tray ready")
}

func (t *Tray) onExit() {
	t.logger.Info("system tray exiting")
}

func (t *Tray) togglePause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner == nil {
		return
	}

	if t.runner.IsPaused() {
		t.runner.Resume()
		t.pauseItem.SetTitle("Pause")
		t.statusItem.SetTitle("Status: Idle")
	} else {
		t.runner.Pause()
		t.pauseItem.SetTitle("Resume")
		t.statusItem.SetTitle("Status: Paused")
	}
}

func (t *Tray) UpdateStatus(status string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.runner != nil && t.runner.IsPaused() {
		return
	}
	t.statusItem.SetTitle("Status: " + status)
}

func (t *Tray) UpdateSourcesCount(count int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sourcesItem.SetTitle(fmt.Sprintf("Sources: %d", count))
}

func (t *Tray) Quit() {
	systray.Quit()
}
