package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"NewsIngest/internal/classify"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
	"NewsIngest/internal/textutil"
)

const (
	promptContentRunes   = 1000
	fallbackContentRunes = 200
)

// Enricher attaches a summary and a location to every article it is given.
// It never drops an article: the output always has the input's length and order.
type Enricher struct {
	summarizer  ports.Summarizer
	concurrency int
	logger      *slog.Logger
}

// NewEnricher builds an enricher. A nil summarizer means every article gets the fallback excerpt.
func NewEnricher(summarizer ports.Summarizer, concurrency int, log *slog.Logger) *Enricher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Enricher{
		summarizer:  summarizer,
		concurrency: concurrency,
		logger:      logging.OrDiscard(log),
	}
}

// Enrich processes articles with bounded concurrency.
func (e *Enricher) Enrich(ctx context.Context, articles []domain.Article) []domain.Article {
	out := make([]domain.Article, len(articles))

	var g errgroup.Group
	g.SetLimit(e.concurrency)
	for i, article := range articles {
		g.Go(func() error {
			out[i] = e.enrichOne(ctx, article)
			return nil
		})
	}
	_ = g.Wait()

	return out
}

func (e *Enricher) enrichOne(ctx context.Context, article domain.Article) (enriched domain.Article) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Warn("enrichment panicked, keeping article unchanged", "url", article.URL, "panic", fmt.Sprint(r))
			enriched = article
		}
	}()

	enriched = article
	enriched.Summary, enriched.SummaryProvider = e.summarize(ctx, article)

	loc := classify.Locate(article.Title + " " + article.Content)
	enriched.City, enriched.Country = loc.City, loc.Country

	if enriched.Category == "" {
		text := article.Title + " " + article.Content
		enriched.Category = classify.Category(text)
		enriched.Tags = classify.Tags(text)
	}
	return enriched
}

func (e *Enricher) summarize(ctx context.Context, article domain.Article) (summary, provider string) {
	if e.summarizer == nil {
		return FallbackSummary(article.Content), ""
	}

	summary, err := e.summarizer.Summarize(ctx, BuildPrompt(article))
	if err != nil {
		e.logger.Warn("summary failed, using excerpt", "url", article.URL, "error", err)
		return FallbackSummary(article.Content), ""
	}
	return summary, e.summarizer.Name()
}

// BuildPrompt asks for a short factual summary of the title and the opening of the content.
func BuildPrompt(article domain.Article) string {
	return fmt.Sprintf(
		"Summarize the following news article in 2-3 sentences. Be factual and concise.\n\nTitle: %s\n\nContent: %s",
		article.Title,
		textutil.Truncate(article.Content, promptContentRunes),
	)
}

// FallbackSummary is the first 200 runes of content followed by "...".
func FallbackSummary(content string) string {
	return textutil.Truncate(content, fallbackContentRunes) + "..."
}
