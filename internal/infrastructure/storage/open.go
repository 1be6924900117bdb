package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"NewsIngest/internal/config"
	"NewsIngest/internal/logging"
	"NewsIngest/internal/ports"
)

// Store bundles the configured repository with the resources behind it.
type Store struct {
	Repository ports.ArticleRepository
	// SQL is nil for the rest driver.
	SQL *SQLRepository
	db  *sql.DB
}

// Open connects the driver named in cfg. SQLite stores are migrated on open;
// Postgres expects `migrate` to have run.
func Open(ctx context.Context, cfg config.StorageConfig, log *slog.Logger) (*Store, error) {
	log = logging.OrDiscard(log)

	switch cfg.Driver {
	case config.DriverREST:
		repo, err := NewRESTRepository(cfg.URL, cfg.ServiceKey, cfg.Table, nil)
		if err != nil {
			return nil, err
		}
		log.Info("storage opened", "driver", cfg.Driver, "table", cfg.Table)
		return &Store{Repository: repo}, nil

	case config.DriverSQLite, config.DriverPostgres:
		if cfg.DSN == "" {
			return nil, fmt.Errorf("storage %s: empty dsn", cfg.Driver)
		}
		db, err := sql.Open(cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
		}
		if cfg.Driver == config.DriverSQLite {
			db.SetMaxOpenConns(1)
		}
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping %s: %w", cfg.Driver, err)
		}

		repo, err := NewSQLRepository(db, cfg.Driver, cfg.Table)
		if err != nil {
			_ = db.Close()
			return nil, err
		}
		if cfg.Driver == config.DriverSQLite {
			if err := repo.Migrate(ctx); err != nil {
				_ = db.Close()
				return nil, err
			}
		}

		log.Info("storage opened", "driver", cfg.Driver, "table", cfg.Table)
		return &Store{Repository: repo, SQL: repo, db: db}, nil

	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}

// Migrate creates the schema for SQL drivers.
func (s *Store) Migrate(ctx context.Context) error {
	if s.SQL == nil {
		return errors.New("migrate: the rest driver manages its schema remotely")
	}
	return s.SQL.Migrate(ctx)
}

// Close releases the database handle, if any.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
