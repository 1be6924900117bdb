package parser

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/scanner"
)

const defaultScanner = newsAPIScannerName

// StrategySource implements ArticleSource via registered scanner strategies.
// One failing source never aborts the fetch; only a run where every source
// fails, or a missing credential, is reported as an error.
type StrategySource struct {
	registry    *scanner.Registry
	sources     []config.SourceConfig
	pageSize    int
	concurrency int
	logger      *slog.Logger
}

var _ ports.ArticleSource = (*StrategySource)(nil)

// SourceOptions tunes how StrategySource queries its sources.
type SourceOptions struct {
	PageSize    int
	Concurrency int
}

// NewStrategySource wires scanner registry with config-defined sources.
func NewStrategySource(reg *scanner.Registry, sources []config.SourceConfig, opts SourceOptions, log *slog.Logger) *StrategySource {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	return &StrategySource{
		registry:    reg,
		sources:     sources,
		pageSize:    opts.PageSize,
		concurrency: opts.Concurrency,
		logger:      logging.OrDiscard(log),
	}
}

// FetchLatest queries every configured source and concatenates the results in
// source order, each source's articles in the order the API returned them.
func (s *StrategySource) FetchLatest(ctx context.Context) ([]domain.Article, error) {
	if s.registry == nil {
		return nil, fmt.Errorf("scanner registry is not configured")
	}
	if len(s.sources) == 0 {
		return nil, fmt.Errorf("no news sources configured")
	}

	s.logger.Debug("fetch latest", "sources", len(s.sources), "concurrency", s.concurrency)

	results := make([][]domain.Article, len(s.sources))
	errs := make([]error, len(s.sources))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, src := range s.sources {
		g.Go(func() error {
			results[i], errs[i] = s.scanSource(ctx, src)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("fetch latest: %w", err)
	}

	var (
		aggregated []domain.Article
		failures   []error
	)
	for i, src := range s.sources {
		if err := errs[i]; err != nil {
			if errors.Is(err, domain.ErrMissingCredential) {
				return nil, err
			}
			s.logger.Warn("source failed, skipping", "source", src.ID, "error", err)
			failures = append(failures, err)
			continue
		}
		s.logger.Debug("source produced articles", "source", src.ID, "count", len(results[i]))
		aggregated = append(aggregated, results[i]...)
	}

	if len(failures) == len(s.sources) {
		return nil, fmt.Errorf("%w: %w", domain.ErrAllSourcesFailed, errors.Join(failures...))
	}

	s.logger.Info("fetch done", "articles", len(aggregated), "failed_sources", len(failures))
	return aggregated, nil
}

func (s *StrategySource) scanSource(ctx context.Context, src config.SourceConfig) ([]domain.Article, error) {
	name := src.Scanner
	if name == "" {
		name = defaultScanner
	}

	strategy, err := s.registry.Resolve(name)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", src.ID, err)
	}

	return strategy.Scan(ctx, scanner.Request{
		SourceID: src.ID,
		PageSize: s.pageSize,
		Options:  src.Options,
	})
}
