package postgres

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	// Import the PostgreSQL driver.
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/hrygo/emocontext/internal/profile"
	"github.com/hrygo/emocontext/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	db, err := sql.Open("postgres", profile.DSN)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		return nil, errors.Wrap(err, "failed to open database")
	}

	// Assemblers read in bursts and write rarely.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Hour)
	db.SetConnMaxIdleTime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		slog.Error("failed to ping database", "error", err)
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

const schema = `
CREATE TABLE IF NOT EXISTS emotional_memory (
	id TEXT PRIMARY KEY,
	timestamp TIMESTAMPTZ NOT NULL,
	participant_ids TEXT NOT NULL DEFAULT ',',
	significance DOUBLE PRECISION NOT NULL DEFAULT 0,
	payload JSONB NOT NULL,
	created_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_emotional_memory_timestamp ON emotional_memory(timestamp DESC);
CREATE TABLE IF NOT EXISTS assembly_metrics (
	id BIGSERIAL PRIMARY KEY,
	hour_bucket TIMESTAMPTZ NOT NULL,
	goal TEXT NOT NULL,
	request_count BIGINT NOT NULL DEFAULT 0,
	success_count BIGINT NOT NULL DEFAULT 0,
	cache_hits BIGINT NOT NULL DEFAULT 0,
	token_sum BIGINT NOT NULL DEFAULT 0,
	latency_sum_ms BIGINT NOT NULL DEFAULT 0,
	latency_p50_ms INTEGER NOT NULL DEFAULT 0,
	latency_p95_ms INTEGER NOT NULL DEFAULT 0,
	UNIQUE (hour_bucket, goal)
);
`

func (d *DB) Migrate(ctx context.Context) error {
	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return errors.Wrap(err, "failed to create schema")
	}
	return nil
}
