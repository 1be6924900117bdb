package parser

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"NewsIngest/internal/scanner"
)

const rssFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
  <title>Harbor Gazette</title>
  <item>
    <title>Port of Lisbon expands</title>
    <link>https://gazette.example/lisbon</link>
    <description>Short &lt;b&gt;teaser&lt;/b&gt;</description>
    <content:encoded><![CDATA[<p>The port of Lisbon opened a new terminal.</p>]]></content:encoded>
    <pubDate>Sat, 08 Nov 2025 10:00:00 +0000</pubDate>
    <enclosure url="https://gazette.example/lisbon.jpg" type="image/jpeg"/>
  </item>
  <item>
    <title>No link here</title>
    <description>Dropped because it has no url.</description>
  </item>
  <item>
    <title>Second story</title>
    <link>https://gazette.example/second</link>
    <description>Plain body.</description>
    <pubDate>not a date</pubDate>
  </item>
</channel>
</rss>`

const atomFeed = `<?xml version="1.0" encoding="utf-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Wire Atom</title>
  <entry>
    <title>Atom entry</title>
    <link rel="alternate" href="https://wire.example/atom"/>
    <summary>Atom summary text.</summary>
    <updated>2025-11-07T08:30:00Z</updated>
  </entry>
</feed>`

func serveFeed(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFeedScannerRSS(t *testing.T) {
	t.Parallel()

	srv := serveFeed(t, rssFeed)
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fs := NewFeedScanner(srv.Client(), nil)
	fs.now = func() time.Time { return fixed }

	articles, err := fs.Scan(context.Background(), scanner.Request{
		SourceID: "gazette",
		Options:  map[string]string{"url": srv.URL},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(articles) != 2 {
		t.Fatalf("expected 2 articles, got %d", len(articles))
	}

	first := articles[0]
	if first.Source != "Harbor Gazette" || first.URL != "https://gazette.example/lisbon" {
		t.Fatalf("unexpected first article %+v", first)
	}
	if first.Content != "The port of Lisbon opened a new terminal." || first.Summary != "Short teaser" {
		t.Fatalf("html not stripped: %q / %q", first.Content, first.Summary)
	}
	if first.ImageURL != "https://gazette.example/lisbon.jpg" {
		t.Fatalf("unexpected image %q", first.ImageURL)
	}
	if !first.PublishedAt.Equal(time.Date(2025, 11, 8, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected date %v", first.PublishedAt)
	}
	if !articles[1].PublishedAt.Equal(fixed) {
		t.Fatalf("unparseable date should fall back to now, got %v", articles[1].PublishedAt)
	}
}

func TestFeedScannerAtom(t *testing.T) {
	t.Parallel()

	srv := serveFeed(t, atomFeed)
	articles, err := NewFeedScanner(srv.Client(), nil).Scan(context.Background(), scanner.Request{
		SourceID: "wire",
		Options:  map[string]string{"url": srv.URL},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(articles) != 1 {
		t.Fatalf("expected 1 article, got %d", len(articles))
	}
	got := articles[0]
	if got.URL != "https://wire.example/atom" || got.Content != "Atom summary text." || got.Source != "Wire Atom" {
		t.Fatalf("unexpected article %+v", got)
	}
}

func TestFeedScannerPageSize(t *testing.T) {
	t.Parallel()

	srv := serveFeed(t, rssFeed)
	articles, err := NewFeedScanner(srv.Client(), nil).Scan(context.Background(), scanner.Request{
		SourceID: "gazette",
		PageSize: 1,
		Options:  map[string]string{"url": srv.URL},
	})
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if len(articles) != 1 || articles[0].Title != "Port of Lisbon expands" {
		t.Fatalf("unexpected articles %+v", articles)
	}
}

func TestFeedScannerErrors(t *testing.T) {
	t.Parallel()

	fs := NewFeedScanner(nil, nil)
	if _, err := fs.Scan(context.Background(), scanner.Request{SourceID: "x"}); err == nil {
		t.Fatal("expected error for missing url option")
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	if _, err := NewFeedScanner(srv.Client(), nil).Scan(context.Background(), scanner.Request{
		SourceID: "x",
		Options:  map[string]string{"url": srv.URL},
	}); err == nil {
		t.Fatal("expected error for upstream failure")
	}
}
