package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/italolelis/baduk_downloader/internal/config"
	"github.com/italolelis/baduk_downloader/internal/dc/badukmovies"
	"github.com/italolelis/baduk_downloader/internal/downloader"
	"github.com/italolelis/baduk_downloader/internal/downloader/progress"
	"github.com/italolelis/baduk_downloader/internal/logctx"
	"github.com/italolelis/baduk_downloader/internal/notifier"
	"github.com/italolelis/baduk_downloader/internal/pipeline"
	"github.com/italolelis/baduk_downloader/internal/telemetry"
)

const serviceName = "baduk_downloader"

// version is set at build time.
var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(logctx.NewContextHandler(
		slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.SlogLevel()}),
	))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	ctx = logctx.WithRunID(ctx, logctx.NewRunID())
	ctx = logctx.WithLogger(ctx, logger)

	logger.InfoContext(ctx, "baduk downloader starting...", "log_level", cfg.LogLevel, "version", version)

	if err := run(ctx, cfg); err != nil {
		logger.ErrorContext(ctx, "fatal error", "err", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		cancel()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Start Telemetry
	tel, err := telemetry.New(ctx, telemetry.Config{
		Enabled:        cfg.TelemetryEnabled || cfg.MetricsAddr != "",
		ServiceName:    serviceName,
		ServiceVersion: version,
	})
	if err != nil {
		return fmt.Errorf("failed to setup telemetry: %w", err)
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.ErrorContext(ctx, "failed to shutdown telemetry", "err", err)
		}
	}()

	if cfg.MetricsAddr != "" {
		server := setupMetricsServer(ctx, tel, cfg.MetricsAddr)

		go func() {
			logger.InfoContext(ctx, "serving metrics", "addr", cfg.MetricsAddr)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.ErrorContext(ctx, "metrics server failed", "err", err)
			}
		}()

		defer server.Close()
	}

	// =========================================================================
	// Start Notification
	var notif notifier.Notifier = notifier.Noop{}
	if cfg.DiscordWebhookURL != "" {
		notif = notifier.NewDiscordNotifier(cfg.DiscordWebhookURL)
	}

	summary, err := download(ctx, cfg, tel)
	if err != nil {
		notify(ctx, notif, notifier.RunFailed(err))

		return err
	}

	notify(ctx, notif, notifier.RunFinished(summary.Done, summary.Skipped, summary.Files))

	return nil
}

func download(ctx context.Context, cfg *config.Config, tel *telemetry.Telemetry) (pipeline.Summary, error) {
	logger := logctx.LoggerFromContext(ctx)

	// =========================================================================
	// Resolve Credentials
	email, password, err := credentials(cfg)
	if err != nil {
		return pipeline.Summary{}, err
	}

	// =========================================================================
	// Start Site Client
	client, err := badukmovies.NewClient(badukmovies.Options{
		BaseURL:         cfg.BaseURL,
		UserAgent:       cfg.UserAgent,
		RequestInterval: cfg.RequestInterval,
		Telemetry:       tel,
	})
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("failed to build site client: %w", err)
	}

	dashboard, err := client.Authenticate(ctx, email, password)
	if err != nil {
		return pipeline.Summary{}, err
	}

	episodes, err := client.Episodes(dashboard)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("failed to list episodes: %w", err)
	}

	// =========================================================================
	// Start Pipeline
	root, err := filepath.Abs(cfg.TargetDir)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("failed to resolve target directory: %w", err)
	}

	var sink pipeline.ProgressSink = progress.NewLog(logger)
	if cfg.ProgressBar {
		sink = progress.NewBar(os.Stderr)
	}

	p := pipeline.New(root,
		client,
		downloader.NewDownloader(downloader.NewHTTPOpener(client.HTTPClient()), tel),
		pipeline.WithSkipExisting(cfg.SkipExisting),
		pipeline.WithProgress(sink),
		pipeline.WithTelemetry(tel),
	)

	if err := p.Run(ctx, episodes); err != nil {
		return p.Summary(), err
	}

	return p.Summary(), nil
}

func notify(ctx context.Context, notif notifier.Notifier, content string) {
	if err := notif.Notify(context.WithoutCancel(ctx), content); err != nil {
		logctx.LoggerFromContext(ctx).ErrorContext(ctx, "failed to send notification", "err", err)
	}
}

// setupMetricsServer exposes the prometheus handler.
func setupMetricsServer(ctx context.Context, tel *telemetry.Telemetry, addr string) *http.Server {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", tel.Handler())

	return &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}
}
