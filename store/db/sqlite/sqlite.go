package sqlite

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/hrygo/emocontext/internal/profile"
	"github.com/hrygo/emocontext/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens the SQLite database named by profile.DSN.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}
	if profile.DSN == "" {
		return nil, errors.New("dsn required")
	}

	db, err := sql.Open("sqlite", profile.DSN)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open db with dsn: %s", profile.DSN)
	}

	// SQLite is single-writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, "failed to set %s", pragma)
		}
	}

	return &DB{db: db, profile: profile}, nil
}

// NewFromDB wraps an already opened connection, e.g. an in-memory database.
func NewFromDB(db *sql.DB) *DB {
	return &DB{db: db}
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
	timestamp TEXT NOT NULL,
	participant_ids TEXT NOT NULL DEFAULT ',',
	significance REAL NOT NULL DEFAULT 0,
	payload TEXT NOT NULL,
	created_ts BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_emotional_memory_timestamp ON emotional_memory(timestamp);
CREATE TABLE IF NOT EXISTS assembly_metrics (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	hour_bucket TEXT NOT NULL,
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
