package parser

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"NewsIngest/internal/classify"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/scanner"
)

const feedScannerName = "feed"

// FeedScanner reads an RSS or Atom feed named by the source's "url" option.
// It needs no credential.
type FeedScanner struct {
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

var _ scanner.Scanner = (*FeedScanner)(nil)

// NewFeedScanner wires an HTTP client; a nil client gets a 15s timeout.
func NewFeedScanner(client *http.Client, log *slog.Logger) *FeedScanner {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &FeedScanner{client: client, logger: logging.OrDiscard(log), now: time.Now}
}

// Name identifies the strategy inside the registry.
func (f *FeedScanner) Name() string {
	return feedScannerName
}

// Scan downloads the feed and returns at most req.PageSize entries in feed order.
func (f *FeedScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	feedURL := strings.TrimSpace(req.Options["url"])
	if feedURL == "" {
		return nil, fmt.Errorf("source %s: feed url option is empty", req.SourceID)
	}

	feed, err := f.fetchFeed(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceID, err)
	}

	source := cleanText(feed.Title)
	if source == "" {
		source = req.SourceID
	}

	articles := make([]domain.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if req.PageSize > 0 && len(articles) >= req.PageSize {
			break
		}
		if article, ok := f.toArticle(item, source); ok {
			articles = append(articles, article)
		}
	}

	f.logger.Debug("feed scanned", "source", req.SourceID, "received", len(feed.Items), "kept", len(articles))
	return articles, nil
}

func (f *FeedScanner) fetchFeed(ctx context.Context, feedURL string) (*gofeed.Feed, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsIngest/1.0")
	req.Header.Set("Accept", "application/rss+xml, application/atom+xml, application/xml;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned %s", resp.Status)
	}

	feed, err := gofeed.NewParser().Parse(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return nil, fmt.Errorf("parse feed: %w", err)
	}
	return feed, nil
}

func (f *FeedScanner) toArticle(item *gofeed.Item, source string) (domain.Article, bool) {
	if item == nil {
		return domain.Article{}, false
	}

	title := cleanText(item.Title)
	content := cleanText(item.Content)
	if content == "" {
		content = cleanText(item.Description)
	}
	link := strings.TrimSpace(item.Link)
	if title == "" || content == "" || link == "" {
		return domain.Article{}, false
	}

	publishedAt := f.now().UTC()
	switch {
	case item.PublishedParsed != nil:
		publishedAt = item.PublishedParsed.UTC()
	case item.UpdatedParsed != nil:
		publishedAt = item.UpdatedParsed.UTC()
	}

	text := title + " " + content
	return domain.Article{
		Title:       title,
		Content:     content,
		Summary:     cleanText(item.Description),
		Source:      source,
		URL:         link,
		ImageURL:    itemImage(item),
		PublishedAt: publishedAt,
		Category:    classify.Category(text),
		Tags:        classify.Tags(text),
	}, true
}

func itemImage(item *gofeed.Item) string {
	if item.Image != nil && item.Image.URL != "" {
		return strings.TrimSpace(item.Image.URL)
	}
	for _, enc := range item.Enclosures {
		if enc != nil && strings.HasPrefix(enc.Type, "image/") {
			return strings.TrimSpace(enc.URL)
		}
	}
	return ""
}
