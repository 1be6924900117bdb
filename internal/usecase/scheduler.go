package usecase

import (
	"context"
	"log/slog"
	"time"

	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
)

// Scheduler wires the interval driver with the pipeline use case.
type Scheduler struct {
	driver   ports.Scheduler
	pipeline *Pipeline
	logger   *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, log *slog.Logger) *Scheduler {
	return &Scheduler{driver: driver, pipeline: pipeline, logger: logging.OrDiscard(log)}
}

// Start registers the pipeline with the provided scheduler. Run failures are
// logged and the next tick proceeds as usual.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		report, err := s.pipeline.Run(ctx)
		if err != nil {
			s.logger.Warn("scheduled run failed", "trigger", trigger, "error", err)
			return
		}
		s.logger.Info("scheduled run done", "trigger", trigger, "fetched", report.Fetched, "stored", report.Stored)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
