package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"NewsIngest/internal/dedup"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
)

// Persister writes articles whose url is not stored yet. Existing records are never updated.
type Persister struct {
	repository ports.ArticleRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewPersister wires the repository used for existence checks and inserts.
func NewPersister(repo ports.ArticleRepository, log *slog.Logger) *Persister {
	return &Persister{
		repository: repo,
		logger:     logging.OrDiscard(log),
		now:        time.Now,
	}
}

// Persist stores new articles sequentially and returns those actually inserted.
// Per-article failures are logged and skipped.
func (p *Persister) Persist(ctx context.Context, articles []domain.Article) ([]domain.Article, error) {
	if p.repository == nil {
		return nil, errors.New("persist: repository is not configured")
	}

	var inserted []domain.Article
	for _, article := range articles {
		if err := ctx.Err(); err != nil {
			return inserted, fmt.Errorf("persist: %w", err)
		}

		exists, err := p.repository.ExistsByURL(ctx, article.URL)
		if err != nil {
			p.logger.Warn("existence check failed, skipping", "url", article.URL, "error", err)
			continue
		}
		if exists {
			p.logger.Debug("already stored", "url", article.URL)
			continue
		}

		if err := p.repository.Insert(ctx, p.record(article)); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				p.logger.Info("stored concurrently, skipping", "url", article.URL)
				continue
			}
			p.logger.Warn("insert failed, skipping", "url", article.URL, "error", err)
			continue
		}
		inserted = append(inserted, article)
	}

	return inserted, nil
}

func (p *Persister) record(article domain.Article) domain.StoredArticle {
	return domain.StoredArticle{
		ID:      dedup.StableID(article),
		Article: article,
		Metadata: domain.Metadata{
			ProcessedAt: p.now().UTC(),
			AIGenerated: article.SummaryProvider != "",
			Provider:    article.SummaryProvider,
		},
	}
}
