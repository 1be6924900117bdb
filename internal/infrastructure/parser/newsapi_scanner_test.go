package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/scanner"
)

const sampleResponse = `{
  "status": "ok",
  "totalResults": 4,
  "articles": [
    {
      "source": {"id": "bbc-news", "name": "BBC News"},
      "title": "New AI chip unveiled in Tokyo",
      "description": "<p>A <b>faster</b> chip.</p>",
      "url": "https://bbc.example/ai-chip",
      "urlToImage": "https://bbc.example/ai-chip.jpg",
      "publishedAt": "2025-11-08T10:00:00Z",
      "content": "Engineers showed a breaking new design… [+2345 chars]"
    },
    {
      "source": {"id": "bbc-news", "name": "BBC News"},
      "title": "Missing content",
      "url": "https://bbc.example/missing",
      "content": null
    },
    {
      "source": {"id": null, "name": ""},
      "title": "[Removed]",
      "url": "https://removed.com",
      "content": "[Removed]"
    },
    {
      "source": {"id": "bbc-news", "name": ""},
      "title": "Quiet day",
      "url": "https://bbc.example/quiet",
      "publishedAt": "not a date",
      "content": "Nothing much happened."
    }
  ]
}`

func TestBuildQueryURL(t *testing.T) {
	t.Parallel()

	u, err := buildQueryURL("https://newsapi.org/v2/top-headlines?language=en", scanner.Request{
		SourceID: "bbc-news",
		PageSize: 10,
		Options:  map[string]string{"sortBy": "publishedAt"},
	})
	if err != nil {
		t.Fatalf("buildQueryURL returned error: %v", err)
	}

	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}

	q := parsed.Query()
	if q.Get("sources") != "bbc-news" {
		t.Fatalf("expected sources=bbc-news, got %s", q.Get("sources"))
	}
	if q.Get("pageSize") != "10" {
		t.Fatalf("expected pageSize=10, got %s", q.Get("pageSize"))
	}
	if q.Get("language") != "en" || q.Get("sortBy") != "publishedAt" {
		t.Fatalf("existing or option params lost: %s", parsed.RawQuery)
	}
}

func TestCleanText(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"  plain   text \n here ":        "plain text here",
		"<p>Hello <b>world</b></p>":      "Hello world",
		"Fish &amp; chips":               "Fish & chips",
		"":                               "",
		"<div>\n  spaced\n\n out </div>": "spaced out",
	}
	for in, want := range cases {
		if got := cleanText(in); got != want {
			t.Errorf("cleanText(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewsAPIScannerScan(t *testing.T) {
	t.Parallel()

	seen := make(chan *http.Request, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen <- r.Clone(context.Background())
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleResponse))
	}))
	defer server.Close()

	now := time.Date(2025, time.November, 9, 12, 0, 0, 0, time.UTC)
	sc := NewNewsAPIScanner(server.Client(), server.URL, "secret", nil)
	sc.now = func() time.Time { return now }

	articles, err := sc.Scan(context.Background(), scanner.Request{SourceID: "bbc-news", PageSize: 10})
	if err != nil {
		t.Fatalf("Scan error: %v", err)
	}

	r := <-seen
	if r.Header.Get("X-Api-Key") != "secret" || r.URL.Query().Get("sources") != "bbc-news" || r.URL.Query().Get("pageSize") != "10" {
		t.Fatalf("unexpected request: %s %v", r.URL.String(), r.Header)
	}

	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Title != "New AI chip unveiled in Tokyo" {
		t.Fatalf("unexpected title: %s", first.Title)
	}
	if first.Content != "Engineers showed a breaking new design" {
		t.Fatalf("truncation marker not stripped: %q", first.Content)
	}
	if first.Summary != "A faster chip." {
		t.Fatalf("description not cleaned: %q", first.Summary)
	}
	if first.Source != "BBC News" || first.URL != "https://bbc.example/ai-chip" || first.ImageURL != "https://bbc.example/ai-chip.jpg" {
		t.Fatalf("unexpected fields: %+v", first)
	}
	if !first.PublishedAt.Equal(time.Date(2025, time.November, 8, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected published date: %v", first.PublishedAt)
	}
	if first.Category != "Technology" {
		t.Fatalf("expected Technology, got %q", first.Category)
	}
	if len(first.Tags) != 1 || first.Tags[0] != "breaking" {
		t.Fatalf("unexpected tags: %v", first.Tags)
	}

	second := articles[1]
	if second.Source != "bbc-news" {
		t.Fatalf("expected source id fallback, got %q", second.Source)
	}
	if !second.PublishedAt.Equal(now) {
		t.Fatalf("expected now fallback, got %v", second.PublishedAt)
	}
	if second.Category != "General" {
		t.Fatalf("expected General, got %q", second.Category)
	}
}

func TestNewsAPIScannerErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status":"error","code":"apiKeyInvalid","message":"Your API key is invalid."}`))
	}))
	defer server.Close()

	sc := NewNewsAPIScanner(server.Client(), server.URL, "bad", nil)
	_, err := sc.Scan(context.Background(), scanner.Request{SourceID: "cnn", PageSize: 10})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "apiKeyInvalid") {
		t.Fatalf("error should carry api code: %v", err)
	}
}

func TestNewsAPIScannerMissingKey(t *testing.T) {
	t.Parallel()

	sc := NewNewsAPIScanner(nil, "http://127.0.0.1:1", "", nil)
	_, err := sc.Scan(context.Background(), scanner.Request{SourceID: "cnn"})
	if !errors.Is(err, domain.ErrMissingCredential) {
		t.Fatalf("expected ErrMissingCredential, got %v", err)
	}
}
