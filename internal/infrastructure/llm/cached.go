package llm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"NewsIngest/internal/ports"
)

// CachedSummarizer memoizes successful summaries by prompt hash.
type CachedSummarizer struct {
	next  ports.Summarizer
	cache *gocache.Cache
}

var _ ports.Summarizer = (*CachedSummarizer)(nil)

// NewCachedSummarizer keeps entries for ttl and sweeps expired ones every ttl/2.
func NewCachedSummarizer(next ports.Summarizer, ttl time.Duration) *CachedSummarizer {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &CachedSummarizer{
		next:  next,
		cache: gocache.New(ttl, cleanup),
	}
}

func (c *CachedSummarizer) Name() string {
	return c.next.Name()
}

// Summarize returns the cached summary for prompt or delegates and stores the result.
// Failures are never cached.
func (c *CachedSummarizer) Summarize(ctx context.Context, prompt string) (string, error) {
	key := promptKey(prompt)
	if v, ok := c.cache.Get(key); ok {
		if summary, ok := v.(string); ok {
			return summary, nil
		}
	}

	summary, err := c.next.Summarize(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.cache.SetDefault(key, summary)
	return summary, nil
}

func promptKey(prompt string) string {
	sum := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(sum[:])
}

// Close releases the wrapped summarizer when it holds resources.
func (c *CachedSummarizer) Close() error {
	if closer, ok := c.next.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
