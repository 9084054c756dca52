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

// DB wraps a database/sql handle plus the pgx pool when the DSN is Postgres.
// SQLite DSNs (anything that is not a postgres URL) use the modernc driver,
// which keeps local batch runs dependency-free of a server.
type DB struct {
	SQL      *sql.DB
	pool     *pgxpool.Pool
	Postgres bool
}

// Open connects according to the DSN scheme. Postgres goes through a pgx
// pool wrapped for database/sql; everything else is treated as a SQLite path
// (":memory:" included).
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://") {
		return openPostgres(ctx, cfg, logger)
	}

	logger.Info("opening sqlite database", "path", cfg.DSN)
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		logger.Error("failed to open sqlite database", "error", err)
		return nil, err
	}
	// modernc sqlite is single-writer; serialize access through one conn
	db.SetMaxOpenConns(1)
	return &DB{SQL: db}, nil
}

func openPostgres(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database", "dsn", cfg.DSN)
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to parse database config", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "license-extractor"

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	logger.Info("successfully connected to database")
	return &DB{SQL: stdlib.OpenDBFromPool(pool), pool: pool, Postgres: true}, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := d.SQL.Close(); err != nil {
		logger.Error("failed to close database handle", "error", err)
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the database to catch DSN issues early.
func (d *DB) HealthCheck(ctx context.Context, timeout time.Duration) error {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if d.pool != nil {
		return d.pool.Ping(ctx)
	}
	return d.SQL.PingContext(ctx)
}

const jobsSchema = `
CREATE TABLE IF NOT EXISTS extraction_job (
	id            TEXT PRIMARY KEY,
	image_path    TEXT NOT NULL,
	status        TEXT NOT NULL,
	raw_text      TEXT,
	result_json   TEXT,
	confidence    REAL,
	needs_review  INTEGER NOT NULL DEFAULT 0,
	error_message TEXT,
	started_at    TEXT NOT NULL,
	finished_at   TEXT
)`

// Migrate creates the extraction_job table when missing. The DDL is kept to
// the dialect subset both Postgres and SQLite accept.
func (d *DB) Migrate(ctx context.Context) error {
	_, err := d.SQL.ExecContext(ctx, jobsSchema)
	return err
}

// rebind rewrites "?" placeholders to "$n" for Postgres.
func (d *DB) rebind(query string) string {
	if !d.Postgres {
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
