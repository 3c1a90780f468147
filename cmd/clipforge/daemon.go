package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/clipforge/clipforge-agent/internal/api"
	"github.com/clipforge/clipforge-agent/internal/catalog"
	"github.com/clipforge/clipforge-agent/internal/config"
	"github.com/clipforge/clipforge-agent/internal/db"
	"github.com/clipforge/clipforge-agent/internal/export"
	"github.com/clipforge/clipforge-agent/internal/logging"
	"github.com/clipforge/clipforge-agent/internal/playback"
	"github.com/clipforge/clipforge-agent/internal/probe"
	"github.com/clipforge/clipforge-agent/internal/ui"
	"github.com/clipforge/clipforge-agent/internal/watcher"
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run the ClipForge agent (HTTP API, job runner, tray)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runDaemon()
	},
}

func runDaemon() error {
	startTime := time.Now()

	cfg, err := config.New()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	// One daemon per data dir.
	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("another clipforge daemon is already running (lock: %s)", cfg.LockPath())
	}
	defer lock.Unlock()

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting clipforge agent",
		"version", config.Version,
		"data_dir", logging.SanitizePath(cfg.DataDir()))

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := catalog.NewRepository(database.Conn())

	deviceID, err := ensureDeviceID(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure device ID: %w", err)
	}

	authToken, err := ensureAuthToken(repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	fmt.Printf("ClipForge Agent %s\n", config.Version)
	fmt.Printf("  API URL:    http://127.0.0.1:%d\n", cfg.Port())
	fmt.Printf("  Auth Token: %s\n", authToken)
	fmt.Printf("  Device ID:  %s...\n", deviceID[:16])
	fmt.Println()

	prober := probe.NewFFprobe(logger)
	if !prober.Available() {
		logger.Warn("ffprobe not found on PATH, scanned files will have no duration")
	}

	catalogSvc := catalog.NewService(repo, prober, logger)
	playbackSvc := playback.NewServer(logger)
	exportSvc := export.NewService(repo, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := catalog.NewRunner(catalogSvc, repo, logger)
	go runner.Start(ctx)

	folderWatcher := watcher.NewPollingWatcher(catalogSvc, logger)
	go folderWatcher.Start(ctx)

	apiServer := api.NewServer(api.ServerConfig{
		Port:              cfg.Port(),
		CatalogService:    catalogSvc,
		PlaybackServer:    playbackSvc,
		Repository:        repo,
		Runner:            runner,
		ExportService:     exportSvc,
		SelectionDefaults: cfg.Selection(),
		Logger:            logger,
		StartTime:         startTime,
		DeviceID:          deviceID,
	})

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	quitCh := make(chan struct{})

	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			close(quitCh)
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			CatalogService: catalogSvc,
			Runner:         runner,
			Logger:         logger,
			OnQuit: func() {
				close(quitCh)
			},
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func ensureDeviceID(repo catalog.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "device_id")
	if err == nil && existing != "" {
		return existing, nil
	}

	idBytes := make([]byte, 16)
	if _, err := rand.Read(idBytes); err != nil {
		return "", err
	}
	deviceID := hex.EncodeToString(idBytes)

	if err := repo.SetConfig(ctx, "device_id", deviceID); err != nil {
		return "", err
	}

	return deviceID, nil
}

func ensureAuthToken(repo catalog.Repository) (string, error) {
	ctx := context.Background()

	existing, err := repo.GetConfig(ctx, "auth_token")
	if err == nil && existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, "auth_token", token); err != nil {
		return "", err
	}

	return token, nil
}
