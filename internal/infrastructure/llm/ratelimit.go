package llm

import (
	"context"
	"io"

	"golang.org/x/time/rate"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

// RateLimitedSummarizer caps provider requests per second across all callers.
type RateLimitedSummarizer struct {
	next    ports.Summarizer
	limiter *rate.Limiter
}

var _ ports.Summarizer = (*RateLimitedSummarizer)(nil)

// NewRateLimitedSummarizer allows rps calls per second with the given burst.
func NewRateLimitedSummarizer(next ports.Summarizer, rps float64, burst int) *RateLimitedSummarizer {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedSummarizer{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

func (r *RateLimitedSummarizer) Name() string {
	return r.next.Name()
}

// Summarize waits for a token and delegates. Cancellation while waiting is a provider failure.
func (r *RateLimitedSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", domain.NewProviderError(r.next.Name(), err)
	}
	return r.next.Summarize(ctx, prompt)
}

// Close releases the wrapped summarizer when it holds resources.
func (r *RateLimitedSummarizer) Close() error {
	if closer, ok := r.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
