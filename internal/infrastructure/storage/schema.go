package storage

import (
	"context"
	"fmt"

	"NewsIngest/internal/config"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS %[1]s (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    content      TEXT NOT NULL,
    summary      TEXT NOT NULL,
    source       TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    image_url    TEXT,
    published_at TIMESTAMPTZ NOT NULL,
    city         TEXT,
    country      TEXT,
    category     TEXT NOT NULL,
    tags         JSONB NOT NULL DEFAULT '[]',
    metadata     JSONB NOT NULL DEFAULT '{}',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

const sqliteSchema = `CREATE TABLE IF NOT EXISTS %[1]s (
    id           TEXT PRIMARY KEY,
    title        TEXT NOT NULL,
    content      TEXT NOT NULL,
    summary      TEXT NOT NULL,
    source       TEXT NOT NULL,
    url          TEXT NOT NULL UNIQUE,
    image_url    TEXT,
    published_at DATETIME NOT NULL,
    city         TEXT,
    country      TEXT,
    category     TEXT NOT NULL,
    tags         TEXT NOT NULL DEFAULT '[]',
    metadata     TEXT NOT NULL DEFAULT '{}',
    created_at   DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
)`

// Migrate creates the articles table and its indexes when missing.
func (r *SQLRepository) Migrate(ctx context.Context) error {
	ddl := sqliteSchema
	if r.driver == config.DriverPostgres {
		ddl = postgresSchema
	}

	statements := []string{
		fmt.Sprintf(ddl, r.table),
		fmt.Sprintf(`CREATE INDEX IF NOT EXISTS %[1]s_published_at_idx ON %[1]s (published_at)`, r.table),
	}
	for _, stmt := range statements {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate %s: %w", r.table, err)
		}
	}
	return nil
}
