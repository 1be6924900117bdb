package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

const maxErrorBody = 1024

// RESTRepository talks to a PostgREST-style table API (Supabase and friends).
type RESTRepository struct {
	endpoint   string
	serviceKey string
	client     *http.Client
	now        func() time.Time
}

var _ ports.ArticleRepository = (*RESTRepository)(nil)

// NewRESTRepository targets {baseURL}/rest/v1/{table}. A nil client gets a 10s timeout.
func NewRESTRepository(baseURL, serviceKey, table string, client *http.Client) (*RESTRepository, error) {
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(serviceKey) == "" {
		return nil, fmt.Errorf("rest repository url and service key: %w", domain.ErrMissingCredential)
	}
	if !validTable(table) {
		return nil, fmt.Errorf("rest repository: invalid table name %q", table)
	}
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &RESTRepository{
		endpoint:   strings.TrimSuffix(baseURL, "/") + "/rest/v1/" + table,
		serviceKey: serviceKey,
		client:     client,
		now:        time.Now,
	}, nil
}

// ExistsByURL selects at most one id filtered by url.
func (r *RESTRepository) ExistsByURL(ctx context.Context, articleURL string) (bool, error) {
	q := url.Values{}
	q.Set("select", "id")
	q.Set("url", "eq."+articleURL)
	q.Set("limit", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}
	r.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, statusError("query exists", resp)
	}

	var rows []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return false, fmt.Errorf("decode exists: %w", err)
	}
	return len(rows) > 0, nil
}

// Insert posts one row. HTTP 409 is reported as domain.ErrDuplicate.
func (r *RESTRepository) Insert(ctx context.Context, article domain.StoredArticle) error {
	body, err := json.Marshal(newRow(article, r.now()))
	if err != nil {
		return fmt.Errorf("encode row: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	r.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := r.client.Do(req)
	if err != nil {
		return fmt.Errorf("insert %s: %w", article.Article.URL, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusConflict:
		return fmt.Errorf("insert %s: %w", article.Article.URL, domain.ErrDuplicate)
	case resp.StatusCode >= http.StatusBadRequest:
		return statusError("insert "+article.Article.URL, resp)
	}
	return nil
}

func (r *RESTRepository) authorize(req *http.Request) {
	req.Header.Set("apikey", r.serviceKey)
	req.Header.Set("Authorization", "Bearer "+r.serviceKey)
}

func statusError(op string, resp *http.Response) error {
	payload, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return fmt.Errorf("%s: store returned %s: %s", op, resp.Status, strings.TrimSpace(string(payload)))
}
