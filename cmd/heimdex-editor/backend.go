package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heimdex/heimdex-editor/internal/config"
	"github.com/heimdex/heimdex-editor/internal/logging"
	"github.com/heimdex/heimdex-editor/internal/mediabackend"
)

func newBackendCmd(load func() (*config.EnvConfig, error)) *cobra.Command {
	return &cobra.Command{
		Use:   "backend",
		Short: "Start the local media backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			return runBackend(cmd.Context(), cfg)
		},
	}
}

func runBackend(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	logger := logging.WithComponent(logging.NewLogger(cfg.LogLevel()), "mediabackend")

	store, err := mediabackend.NewStore(cfg.MediaDir())
	if err != nil {
		return fmt.Errorf("failed to open media store: %w", err)
	}

	ff := mediabackend.NewFFmpeg(mediabackend.WithFFmpegPath(cfg.FFmpegPath()))
	verifyCtx, verifyCancel := context.WithTimeout(ctx, 10*time.Second)
	if err := ff.VerifyInstalled(verifyCtx); err != nil {
		logger.Warn("ffmpeg unavailable, thumbnails and export will fail", "path", cfg.FFmpegPath(), "error", err)
	}
	verifyCancel()

	pub, err := newPublisher(ctx, cfg, logger)
	if err != nil {
		return err
	}

	b := mediabackend.New(mediabackend.Config{
		Port:      cfg.BackendPort(),
		PublicURL: cfg.BackendPublicURL(),
		Store:     store,
		FFmpeg:    ff,
		Publisher: pub,
		Logger:    logger,
	})
	srv := b.NewServer()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting media backend", "addr", srv.Addr, "media_dir", cfg.MediaDir())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("media backend: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// newPublisher uploads exports to S3 when a bucket is configured and keeps
// them on disk otherwise.
func newPublisher(ctx context.Context, cfg config.Config, logger *slog.Logger) (mediabackend.Publisher, error) {
	if bucket := cfg.ExportBucket(); bucket != "" {
		pub, err := mediabackend.NewS3Publisher(ctx, bucket, cfg.ExportKeyPrefix())
		if err != nil {
			return nil, fmt.Errorf("failed to configure S3 export: %w", err)
		}
		logger.Info("exports publish to S3", "bucket", bucket, "prefix", cfg.ExportKeyPrefix())
		return pub, nil
	}

	pub, err := mediabackend.NewFSPublisher(cfg.ExportDir())
	if err != nil {
		return nil, err
	}
	logger.Info("exports publish to disk", "dir", cfg.ExportDir())
	return pub, nil
}
