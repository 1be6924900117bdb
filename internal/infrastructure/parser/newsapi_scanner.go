package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"NewsIngest/internal/classify"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/scanner"
)

const (
	newsAPIScannerName = "newsapi"
	removedPlaceholder = "[Removed]"
	maxErrorBody       = 1024
	maxResponseBody    = 8 << 20
)

var (
	truncationMarker = regexp.MustCompile(`\s*(…|\.\.\.)?\s*\[\+\d+ chars\]\s*$`)
	whitespace       = regexp.MustCompile(`\s+`)
)

// NewsAPIScanner queries a NewsAPI-compatible search endpoint for one source at a time.
type NewsAPIScanner struct {
	client   *http.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
	now      func() time.Time
}

var _ scanner.Scanner = (*NewsAPIScanner)(nil)

type newsAPIResponse struct {
	Status   string           `json:"status"`
	Code     string           `json:"code"`
	Message  string           `json:"message"`
	Articles []newsAPIArticle `json:"articles"`
}

type newsAPIArticle struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content"`
	URL         string `json:"url"`
	URLToImage  string `json:"urlToImage"`
	PublishedAt string `json:"publishedAt"`
	Source      struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"source"`
}

// NewNewsAPIScanner wires an HTTP client; a nil client gets a 15s timeout.
func NewNewsAPIScanner(client *http.Client, endpoint, apiKey string, log *slog.Logger) *NewsAPIScanner {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &NewsAPIScanner{
		client:   client,
		endpoint: endpoint,
		apiKey:   apiKey,
		logger:   logging.OrDiscard(log),
		now:      time.Now,
	}
}

// Name identifies the strategy inside the registry.
func (n *NewsAPIScanner) Name() string {
	return newsAPIScannerName
}

// Scan requests one page of recent articles for req.SourceID and keeps the
// entries that carry a title, content and url.
func (n *NewsAPIScanner) Scan(ctx context.Context, req scanner.Request) ([]domain.Article, error) {
	if strings.TrimSpace(n.apiKey) == "" {
		return nil, fmt.Errorf("news api key: %w", domain.ErrMissingCredential)
	}

	pageURL, err := buildQueryURL(n.endpoint, req)
	if err != nil {
		return nil, err
	}

	payload, err := n.fetch(ctx, pageURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", req.SourceID, err)
	}

	articles := make([]domain.Article, 0, len(payload.Articles))
	for _, raw := range payload.Articles {
		article, ok := n.toArticle(raw, req.SourceID)
		if !ok {
			continue
		}
		articles = append(articles, article)
	}

	n.logger.Debug("source scanned", "source", req.SourceID, "received", len(payload.Articles), "kept", len(articles))
	return articles, nil
}

func (n *NewsAPIScanner) fetch(ctx context.Context, pageURL string) (*newsAPIResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "NewsIngest/1.0")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Api-Key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var apiErr newsAPIResponse
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Message != "" {
			return nil, fmt.Errorf("news api returned %s: %s: %s", resp.Status, apiErr.Code, apiErr.Message)
		}
		return nil, fmt.Errorf("news api returned %s", resp.Status)
	}

	var payload newsAPIResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	if payload.Status == "error" {
		return nil, fmt.Errorf("news api error %s: %s", payload.Code, payload.Message)
	}

	return &payload, nil
}

func (n *NewsAPIScanner) toArticle(raw newsAPIArticle, sourceID string) (domain.Article, bool) {
	title := cleanText(raw.Title)
	content := truncationMarker.ReplaceAllString(cleanText(raw.Content), "")
	link := strings.TrimSpace(raw.URL)
	if title == "" || content == "" || link == "" || title == removedPlaceholder {
		return domain.Article{}, false
	}

	source := strings.TrimSpace(raw.Source.Name)
	if source == "" {
		source = sourceID
	}

	publishedAt := n.now().UTC()
	if parsed, err := time.Parse(time.RFC3339, strings.TrimSpace(raw.PublishedAt)); err == nil {
		publishedAt = parsed.UTC()
	}

	text := title + " " + content
	return domain.Article{
		Title:       title,
		Content:     content,
		Summary:     cleanText(raw.Description),
		Source:      source,
		URL:         link,
		ImageURL:    strings.TrimSpace(raw.URLToImage),
		PublishedAt: publishedAt,
		Category:    classify.Category(text),
		Tags:        classify.Tags(text),
	}, true
}

// cleanText drops any HTML markup and entities and collapses whitespace.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	if strings.ContainsAny(s, "<&") {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(s)); err == nil {
			s = doc.Text()
		}
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(s, " "))
}

func buildQueryURL(base string, req scanner.Request) (string, error) {
	parsed, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("invalid news endpoint %s: %w", base, err)
	}

	query := parsed.Query()
	for k, v := range req.Options {
		query.Set(k, v)
	}
	if req.SourceID != "" {
		query.Set("sources", req.SourceID)
	}
	if req.PageSize > 0 {
		query.Set("pageSize", strconv.Itoa(req.PageSize))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}
