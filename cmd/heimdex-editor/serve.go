package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/api"
	"github.com/heimdex/heimdex-editor/internal/backend"
	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/db"
	"github.com/heimdex/heimdex-editor/internal/history"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/metrics"
	"github.com/heimdex/heimdex-editor/internal/session"
	"github.com/heimdex/heimdex-editor/internal/timeline"
	"github.com/heimdex/heimdex-editor/internal/ui"
)

func newServeCmd(load func() (*config.EnvConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the editor API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runServe(cfg)
		},
	}
}

func runServe(cfg config.Config) error {
	startTime := time.Now()

	if err := os.MkdirAll(cfg.DataDir(), 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting heimdex editor",
		"version", config.Version,
		"data_dir", cfg.DataDir(),
		"backend_url", cfg.BackendURL(),
	)

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	repo := history.NewRepository(database.Conn())

	authToken, err := ensureAuthToken(context.Background(), repo)
	if err != nil {
		return fmt.Errorf("failed to ensure auth token: %w", err)
	}

	apiURL := fmt.Sprintf("http://127.0.0.1:%d", cfg.Port())
	fmt.Println()
	fmt.Println("╔═══════════════════════════════════════════════════════════╗")
	fmt.Printf("║  %-56s ║\n", "HEIMDEX EDITOR v"+config.Version)
	fmt.Println("╠═══════════════════════════════════════════════════════════╣")
	fmt.Printf("║  API URL:    %-45s ║\n", apiURL)
	fmt.Printf("║  Backend:    %-45s ║\n", cfg.BackendURL())
	fmt.Printf("║  Auth Token: %-45s ║\n", authToken)
	fmt.Println("╚═══════════════════════════════════════════════════════════╝")
	fmt.Println()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m := metrics.New()
	sessions := session.NewManager(ctx, session.Options{
		Backend:      newBackendClient(cfg, logger),
		Recorder:     repo,
		Metrics:      m,
		Logger:       logger,
		Axis:         timeline.NewAxis(cfg.PixelsPerSecond()),
		PollInterval: cfg.PollInterval(),
	})

	apiServer := api.NewServer(api.ServerConfig{
		Port:           cfg.Port(),
		Sessions:       sessions,
		History:        repo,
		Metrics:        m,
		AllowedOrigins: cfg.AllowedOrigins(),
		Logger:         logger,
		StartTime:      startTime,
		Version:        config.Version,
	})

	quitCh := make(chan struct{})
	quit := onceCloser(quitCh)

	go func() {
		if err := apiServer.Start(); err != nil {
			logger.Error("HTTP server error", "error", err)
			quit()
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received shutdown signal", "signal", sig)
			quit()
		case <-quitCh:
		}
	}()

	if cfg.Headless() {
		logger.Info("running in headless mode (no system tray)")
	} else {
		tray := ui.NewTray(ui.TrayConfig{
			Sessions: sessions,
			Logger:   logger,
			APIURL:   apiURL,
			OnShowURL: func(url string) error {
				logger.Info("editor api address", "url", url)
				return nil
			},
			OnQuit: quit,
		})
		go tray.Run()
	}

	<-quitCh

	logger.Info("initiating graceful shutdown")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown HTTP server", "error", err)
	}
	sessions.CloseAll()
	cancel()

	logger.Info("shutdown complete")
	return nil
}

// StubBackendURL selects the in-process stub backend instead of HTTP.
const StubBackendURL = "stub"

func newBackendClient(cfg config.Config, logger *slog.Logger) backend.Client {
	logger = logging.WithComponent(logger, "backend")
	if cfg.BackendURL() == StubBackendURL {
		logger.Warn("using stub media backend, uploads and exports are discarded")
		return backend.NewStubClient(logger)
	}
	return backend.NewHTTPClient(cfg.BackendURL(), cfg.BackendTimeout(), logger)
}

// ensureAuthToken returns the stored API token, creating one on first run.
func ensureAuthToken(ctx context.Context, repo history.Repository) (string, error) {
	existing, err := repo.GetConfig(ctx, history.KeyAuthToken)
	if err != nil {
		return "", err
	}
	if existing != "" {
		return existing, nil
	}

	tokenBytes := make([]byte, 32)
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", err
	}
	token := hex.EncodeToString(tokenBytes)

	if err := repo.SetConfig(ctx, history.KeyAuthToken, token); err != nil {
		return "", err
	}
	return token, nil
}
