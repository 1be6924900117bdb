package storage

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"NewsIngest/internal/domain"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// articleRow is the persisted shape of an article, shared by SQL and REST stores.
type articleRow struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Content     string          `json:"content"`
	Summary     string          `json:"summary"`
	Source      string          `json:"source"`
	URL         string          `json:"url"`
	ImageURL    *string         `json:"image_url"`
	PublishedAt time.Time       `json:"published_at"`
	City        *string         `json:"city"`
	Country     *string         `json:"country"`
	Category    string          `json:"category"`
	Tags        []string        `json:"tags"`
	Metadata    domain.Metadata `json:"metadata"`
	CreatedAt   time.Time       `json:"created_at"`
}

func newRow(stored domain.StoredArticle, now time.Time) articleRow {
	a := stored.Article
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return articleRow{
		ID:          stored.ID,
		Title:       a.Title,
		Content:     a.Content,
		Summary:     a.Summary,
		Source:      a.Source,
		URL:         a.URL,
		ImageURL:    optional(a.ImageURL),
		PublishedAt: a.PublishedAt.UTC(),
		City:        optional(a.City),
		Country:     optional(a.Country),
		Category:    a.Category,
		Tags:        tags,
		Metadata:    stored.Metadata,
		CreatedAt:   now.UTC(),
	}
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func validTable(name string) bool {
	return tableName.MatchString(name)
}

// isUniqueViolation recognizes key conflicts from both SQL drivers.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
