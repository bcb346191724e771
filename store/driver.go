package store

import (
	"context"
	"database/sql"
)

// Driver is an interface for store database drivers.
type Driver interface {
	GetDB() *sql.DB
	Close() error

	// Migrate creates the schema when it does not exist yet.
	Migrate(ctx context.Context) error

	// EmotionalMemory model related methods.
	UpsertEmotionalMemory(ctx context.Context, upsert *EmotionalMemory) (*EmotionalMemory, error)
	ListEmotionalMemories(ctx context.Context, find *FindEmotionalMemory) ([]*EmotionalMemory, error)
	DeleteEmotionalMemory(ctx context.Context, delete *DeleteEmotionalMemory) error

	// AssemblyMetrics model related methods.
	UpsertAssemblyMetrics(ctx context.Context, upsert *UpsertAssemblyMetrics) (*AssemblyMetrics, error)
	ListAssemblyMetrics(ctx context.Context, find *FindAssemblyMetrics) ([]*AssemblyMetrics, error)
	DeleteAssemblyMetrics(ctx context.Context, delete *DeleteAssemblyMetrics) error
}
