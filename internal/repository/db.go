package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"
)

type Config struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite"
)

// Store wraps the catalog database. Postgres DSNs open a pgx pool wrapped
// for database/sql; anything else opens an embedded sqlite file, which dev
// setups and tests share with production code paths.
type Store struct {
	DB     *sql.DB
	driver string
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// Open connects to the catalog store described by cfg.DSN.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		logger.Info("connecting to postgres catalog store")
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse database DSN", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MinConns > 0 {
			pc.MinConns = cfg.MinConns
		}
		pc.MaxConnLifetime = cfg.MaxConnLifetime
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
		pc.ConnConfig.RuntimeParams["application_name"] = "bwa-catalog"

		dialCtx := ctx
		if cfg.DialTimeout > 0 {
			var cancel context.CancelFunc
			dialCtx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
			defer cancel()
		}
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			return nil, err
		}

		// Wrap pool as *sql.DB so the repository runs the same code on
		// either backend.
		db := stdlib.OpenDBFromPool(pool)
		logger.Info("successfully connected to database")
		return &Store{DB: db, driver: driverPostgres, pool: pool, logger: logger}, nil
	}

	logger.Info("opening sqlite catalog store", "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	// sqlite handles one writer; a small pool avoids lock contention.
	db.SetMaxOpenConns(1)
	return &Store{DB: db, driver: driverSQLite, logger: logger}, nil
}

// Close closes the database connections gracefully
func (s *Store) Close() {
	s.logger.Info("closing database connections")
	if s.DB != nil {
		if err := s.DB.Close(); err != nil {
			s.logger.Error("failed to close database", "error", err)
		}
	}
	if s.pool != nil {
		s.pool.Close()
	}
	s.logger.Info("database connections closed")
}

// HealthCheck pings the store to catch DSN issues early.
func (s *Store) HealthCheck(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.DB.PingContext(ctx)
}

const schemaSQLite = `
CREATE TABLE IF NOT EXISTS products (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	code TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	manufacturer_description TEXT NOT NULL DEFAULT '',
	product_details TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL
);`

const schemaPostgres = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	code TEXT NOT NULL UNIQUE,
	category TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	manufacturer_description TEXT NOT NULL DEFAULT '',
	product_details TEXT NOT NULL DEFAULT '',
	price TEXT NOT NULL DEFAULT '',
	image_url TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);`

// EnsureSchema creates the products table when missing. The UNIQUE
// constraint on code is the serialization boundary the allocator's retry
// loop leans on.
func (s *Store) EnsureSchema(ctx context.Context) error {
	schema := schemaSQLite
	if s.driver == driverPostgres {
		schema = schemaPostgres
	}
	_, err := s.DB.ExecContext(ctx, schema)
	return err
}

// rebind rewrites ? placeholders to $n for postgres. The repository writes
// queries once, in sqlite style.
func (s *Store) rebind(query string) string {
	if s.driver != driverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
