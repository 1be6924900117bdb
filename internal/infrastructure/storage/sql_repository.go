package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"

	"NewsIngest/internal/config"
	"NewsIngest/internal/domain"
	"NewsIngest/internal/ports"
)

var columns = []string{
	"id", "title", "content", "summary", "source", "url", "image_url", "published_at",
	"city", "country", "category", "tags", "metadata", "created_at",
}

// SQLRepository persists articles through database/sql for Postgres and SQLite.
type SQLRepository struct {
	db      *sql.DB
	driver  string
	table   string
	builder sq.StatementBuilderType
	now     func() time.Time
}

var _ ports.ArticleRepository = (*SQLRepository)(nil)

// NewSQLRepository wires a sql.DB opened for driver (config.DriverPostgres or config.DriverSQLite).
func NewSQLRepository(db *sql.DB, driver, table string) (*SQLRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("sql repository: nil db")
	}
	if !validTable(table) {
		return nil, fmt.Errorf("sql repository: invalid table name %q", table)
	}

	builder := sq.StatementBuilder.PlaceholderFormat(sq.Question)
	switch driver {
	case config.DriverPostgres:
		builder = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	case config.DriverSQLite:
	default:
		return nil, fmt.Errorf("sql repository: unsupported driver %q", driver)
	}

	return &SQLRepository{
		db:      db,
		driver:  driver,
		table:   table,
		builder: builder,
		now:     time.Now,
	}, nil
}

// ExistsByURL reports whether a record is already stored under url.
func (r *SQLRepository) ExistsByURL(ctx context.Context, url string) (bool, error) {
	query, args, err := r.builder.
		Select("1").
		From(r.table).
		Where(sq.Eq{"url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	err = r.db.QueryRowContext(ctx, query, args...).Scan(&one)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Insert writes one record. A key conflict is reported as domain.ErrDuplicate.
func (r *SQLRepository) Insert(ctx context.Context, article domain.StoredArticle) error {
	row := newRow(article, r.now())

	tags, err := json.Marshal(row.Tags)
	if err != nil {
		return fmt.Errorf("encode tags: %w", err)
	}
	metadata, err := json.Marshal(row.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}

	query, args, err := r.builder.
		Insert(r.table).
		Columns(columns...).
		Values(
			row.ID, row.Title, row.Content, row.Summary, row.Source, row.URL, nullable(row.ImageURL), row.PublishedAt,
			nullable(row.City), nullable(row.Country), row.Category, string(tags), string(metadata), row.CreatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("insert %s: %w", row.URL, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert %s: %w", row.URL, err)
	}
	return nil
}

// Count returns the number of stored articles.
func (r *SQLRepository) Count(ctx context.Context) (int, error) {
	query, args, err := r.builder.Select("COUNT(*)").From(r.table).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build count: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count articles: %w", err)
	}
	return n, nil
}
