package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/infrastructure/llm"
	"NewsIngest/internal/infrastructure/parser"
	"NewsIngest/internal/infrastructure/scheduler"
	"NewsIngest/internal/infrastructure/storage"
	"NewsIngest/internal/infrastructure/telegram"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/scanner"
	"NewsIngest/internal/server"
	"NewsIngest/internal/usecase"
)

const shutdownTimeout = 30 * time.Second

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg      config.Config
	logger   *slog.Logger
	pipeline *usecase.Pipeline
	store    *storage.Store
	closers  []io.Closer
}

// New builds every adapter named in cfg. The caller must Close the result.
func New(ctx context.Context, cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level, cfg.Logging.Format)
	}

	registry := scanner.NewRegistry()
	registry.Register(parser.NewNewsAPIScanner(
		&http.Client{Timeout: cfg.News.Timeout},
		cfg.News.Endpoint,
		cfg.News.APIKey,
		baseLogger.With("component", "scanner.newsapi"),
	))
	registry.Register(parser.NewFeedScanner(
		&http.Client{Timeout: cfg.News.Timeout},
		baseLogger.With("component", "scanner.feed"),
	))

	source := parser.NewStrategySource(registry, cfg.News.Sources, parser.SourceOptions{
		PageSize:    cfg.News.PageSize,
		Concurrency: cfg.News.Concurrency,
	}, baseLogger.With("component", "source"))

	a := &Application{cfg: cfg, logger: baseLogger}

	summarizer, err := llm.NewSummarizer(ctx, cfg.AI, baseLogger.With("component", "llm"))
	switch {
	case errors.Is(err, domain.ErrNoProvider):
		baseLogger.Warn("no AI provider credential configured, summaries will use content excerpts")
		summarizer = nil
	case err != nil:
		return nil, fmt.Errorf("summarizer: %w", err)
	}
	if closer, ok := summarizer.(io.Closer); ok {
		a.closers = append(a.closers, closer)
	}

	store, err := storage.Open(ctx, cfg.Storage, baseLogger.With("component", "storage"))
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("storage: %w", err)
	}
	a.store = store
	a.closers = append(a.closers, store)

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" || tg.ChatID != "" {
		n, err := telegram.NewNotifier(tg)
		if err != nil {
			baseLogger.Warn("telegram notifications disabled", "error", err)
		} else {
			notifier = n
		}
	}

	a.pipeline = usecase.NewPipeline(usecase.PipelineDeps{
		Source:            source,
		Repository:        store.Repository,
		Summarizer:        summarizer,
		Notifier:          notifier,
		EnrichConcurrency: cfg.AI.Concurrency,
		Logger:            baseLogger.With("component", "pipeline"),
	})

	return a, nil
}

// RunOnce performs a single pipeline execution.
func (a *Application) RunOnce(ctx context.Context) (domain.RunReport, error) {
	return a.pipeline.Run(ctx)
}

// Serve runs the HTTP trigger, plus the interval scheduler when configured,
// until ctx is cancelled.
func (a *Application) Serve(ctx context.Context) error {
	srv := server.New(a.pipeline, a.cfg.Server, a.logger.With("component", "http"))

	var sched *usecase.Scheduler
	if interval := a.cfg.Scheduler.Interval; interval > 0 {
		sched = usecase.NewScheduler(
			scheduler.NewIntervalScheduler(interval),
			a.pipeline,
			a.logger.With("component", "scheduler"),
		)
		if err := sched.Start(ctx); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
		a.logger.Info("scheduled runs enabled", "interval", interval)
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	var serveErr error
	select {
	case serveErr = <-errCh:
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if sched != nil {
		if err := sched.Stop(shutdownCtx); err != nil {
			a.logger.Warn("scheduler stop", "error", err)
		}
	}
	if serveErr != nil {
		return serveErr
	}
	return srv.Shutdown(shutdownCtx)
}

// Close releases storage and provider clients.
func (a *Application) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// Migrate creates the article schema for SQL drivers and returns the current row count.
func Migrate(ctx context.Context, cfg config.Config, logger *slog.Logger) (int, error) {
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	store, err := storage.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return 0, err
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		return 0, err
	}
	return store.SQL.Count(ctx)
}
