package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"NewsIngest/internal/dedup"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
)

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Source     ports.ArticleSource
	Repository ports.ArticleRepository
	// Summarizer may be nil when no provider credential is configured.
	Summarizer ports.Summarizer
	// Notifier is optional.
	Notifier ports.Notifier

	EnrichConcurrency int
	Logger            *slog.Logger
}

// Pipeline implements the fetch, deduplicate, enrich and persist workflow.
type Pipeline struct {
	source    ports.ArticleSource
	enricher  *Enricher
	persister *Persister
	notifier  ports.Notifier
	logger    *slog.Logger
	now       func() time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := logging.OrDiscard(deps.Logger)
	return &Pipeline{
		source:    deps.Source,
		enricher:  NewEnricher(deps.Summarizer, deps.EnrichConcurrency, logger.With("stage", "enrich")),
		persister: NewPersister(deps.Repository, logger.With("stage", "persist")),
		notifier:  deps.Notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Run executes one ingestion pass. Per-article problems are absorbed by the
// stages; only fatal errors are returned, including a recovered panic.
func (p *Pipeline) Run(ctx context.Context) (report domain.RunReport, err error) {
	report.StartedAt = p.now().UTC()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pipeline panic: %v", r)
		}
		report.FinishedAt = p.now().UTC()
		if err != nil {
			p.logger.Error("pipeline run failed", "error", err)
		}
	}()

	if p.source == nil {
		return report, errors.New("pipeline: article source is not configured")
	}

	fetched, err := p.source.FetchLatest(ctx)
	if err != nil {
		return report, fmt.Errorf("fetch: %w", err)
	}
	report.Fetched = len(fetched)

	unique := dedup.Deduplicate(fetched)
	report.Unique = len(unique)
	p.logger.Debug("deduplicated", "fetched", report.Fetched, "unique", report.Unique)

	enriched := p.enricher.Enrich(ctx, unique)
	for _, a := range enriched {
		if a.SummaryProvider != "" {
			report.Summarized++
		}
	}
	if err := ctx.Err(); err != nil {
		return report, fmt.Errorf("enrich: %w", err)
	}

	inserted, err := p.persister.Persist(ctx, enriched)
	report.Inserted = inserted
	report.Stored = len(inserted)
	if err != nil {
		return report, err
	}

	p.logger.Info("pipeline run done",
		"fetched", report.Fetched,
		"unique", report.Unique,
		"summarized", report.Summarized,
		"stored", report.Stored,
	)

	p.notify(ctx, report)
	return report, nil
}

func (p *Pipeline) notify(ctx context.Context, report domain.RunReport) {
	if p.notifier == nil || report.Stored == 0 {
		return
	}
	if err := p.notifier.PublishDigest(ctx, BuildDigest(report)); err != nil {
		p.logger.Warn("digest not delivered", "error", err)
	}
}

// BuildDigest renders the newly stored articles as a plain-text message.
func BuildDigest(report domain.RunReport) string {
	if len(report.Inserted) == 0 {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Stored %d new of %d fetched articles\n\n", report.Stored, report.Fetched)
	for _, a := range report.Inserted {
		fmt.Fprintf(&b, "- %s (%s)\n%s\n%s\n\n", a.Title, a.Source, a.Summary, a.URL)
	}
	return strings.TrimSpace(b.String())
}
