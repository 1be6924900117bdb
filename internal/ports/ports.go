package ports

import (
	"context"
	"time"

	"NewsIngest/internal/domain"
)

// ArticleSource pulls recent raw articles from all configured news sources.
type ArticleSource interface {
	FetchLatest(ctx context.Context) ([]domain.Article, error)
}

// Summarizer turns a prompt into a short text completion.
// Implementations return *domain.ProviderError on failure.
type Summarizer interface {
	Name() string
	Summarize(ctx context.Context, prompt string) (string, error)
}

// ArticleRepository persists enriched articles keyed by URL.
type ArticleRepository interface {
	ExistsByURL(ctx context.Context, url string) (bool, error)
	Insert(ctx context.Context, article domain.StoredArticle) error
}

// Notifier streams run digests to Telegram or other channels.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipelines execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
