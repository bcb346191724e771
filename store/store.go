package store

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/hrygo/emocontext/internal/profile"
)

// Store provides database access to emotional memory records.
type Store struct {
	profile *profile.Profile
	driver  Driver
}

// New creates a new instance of Store.
func New(driver Driver, profile *profile.Profile) *Store {
	return &Store{
		driver:  driver,
		profile: profile,
	}
}

func (s *Store) GetDriver() Driver {
	return s.driver
}

func (s *Store) Close() error {
	return s.driver.Close()
}

// Migrate prepares the schema.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.driver.Migrate(ctx); err != nil {
		return errors.Wrap(err, "failed to migrate schema")
	}
	return nil
}

// UpsertEmotionalMemory inserts or replaces a record by id.
func (s *Store) UpsertEmotionalMemory(ctx context.Context, upsert *EmotionalMemory) (*EmotionalMemory, error) {
	if upsert == nil || upsert.ID == "" {
		return nil, errors.New("emotional memory id is required")
	}
	if upsert.CreatedTs == 0 {
		upsert.CreatedTs = time.Now().Unix()
	}
	return s.driver.UpsertEmotionalMemory(ctx, upsert)
}

// ListEmotionalMemories lists records most recent first.
func (s *Store) ListEmotionalMemories(ctx context.Context, find *FindEmotionalMemory) ([]*EmotionalMemory, error) {
	if find == nil {
		find = &FindEmotionalMemory{}
	}
	if find.Limit > MaxListLimit {
		find.Limit = MaxListLimit
	}
	return s.driver.ListEmotionalMemories(ctx, find)
}

// DeleteEmotionalMemory deletes records matching the conditions.
func (s *Store) DeleteEmotionalMemory(ctx context.Context, delete *DeleteEmotionalMemory) error {
	if delete == nil || (delete.ID == nil && delete.ParticipantID == nil) {
		return errors.New("delete requires an id or participant id")
	}
	return s.driver.DeleteEmotionalMemory(ctx, delete)
}

// UpsertAssemblyMetrics accumulates an hourly metrics row.
func (s *Store) UpsertAssemblyMetrics(ctx context.Context, upsert *UpsertAssemblyMetrics) (*AssemblyMetrics, error) {
	if upsert == nil || upsert.Goal == "" {
		return nil, errors.New("assembly metrics goal is required")
	}
	return s.driver.UpsertAssemblyMetrics(ctx, upsert)
}

func (s *Store) ListAssemblyMetrics(ctx context.Context, find *FindAssemblyMetrics) ([]*AssemblyMetrics, error) {
	if find == nil {
		find = &FindAssemblyMetrics{}
	}
	if find.Limit <= 0 || find.Limit > MaxListLimit {
		find.Limit = MaxListLimit
	}
	return s.driver.ListAssemblyMetrics(ctx, find)
}

func (s *Store) DeleteAssemblyMetrics(ctx context.Context, delete *DeleteAssemblyMetrics) error {
	if delete == nil || delete.BeforeTime == nil {
		return errors.New("before_time is required for deletion")
	}
	return s.driver.DeleteAssemblyMetrics(ctx, delete)
}
