package usecase

import (
	"context"
	"errors"
	"strings"
	"sync"

	"NewsIngest/internal/domain"
)

type fakeSource struct {
	articles []domain.Article
	err      error
}

func (f *fakeSource) FetchLatest(context.Context) ([]domain.Article, error) {
	return f.articles, f.err
}

type fakeSummarizer struct {
	mu      sync.Mutex
	prompts []string
	fail    func(prompt string) bool
	panicOn string
}

func (f *fakeSummarizer) Name() string { return "fake" }

func (f *fakeSummarizer) Summarize(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()

	if f.panicOn != "" && strings.Contains(prompt, f.panicOn) {
		panic("provider exploded")
	}
	if f.fail != nil && f.fail(prompt) {
		return "", domain.NewProviderError("fake", errors.New("service unavailable"))
	}
	return "AI summary.", nil
}

type memoryRepository struct {
	mu        sync.Mutex
	records   map[string]domain.StoredArticle
	insertErr map[string]error
	existsErr map[string]error
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{records: map[string]domain.StoredArticle{}}
}

func (r *memoryRepository) ExistsByURL(_ context.Context, url string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.existsErr[url]; err != nil {
		return false, err
	}
	_, ok := r.records[url]
	return ok, nil
}

func (r *memoryRepository) Insert(_ context.Context, article domain.StoredArticle) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.insertErr[article.Article.URL]; err != nil {
		return err
	}
	if _, ok := r.records[article.Article.URL]; ok {
		return domain.ErrDuplicate
	}
	r.records[article.Article.URL] = article
	return nil
}

type fakeNotifier struct {
	mu      sync.Mutex
	digests []string
	err     error
}

func (n *fakeNotifier) PublishDigest(_ context.Context, digest string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.digests = append(n.digests, digest)
	return n.err
}

func article(title, content, url string) domain.Article {
	return domain.Article{Title: title, Content: content, URL: url, Source: "BBC News"}
}
