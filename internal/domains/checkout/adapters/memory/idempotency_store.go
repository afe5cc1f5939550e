package memory

import (
	"context"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/checkout/ports"
	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore provides an in-memory implementation for development and tests.
// Records written inside a memdb transaction are rolled back with it.
type IdempotencyStore struct {
	db      *memdb.DB
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

// NewIdempotencyStore constructs an empty in-memory store.
func NewIdempotencyStore(db *memdb.DB) *IdempotencyStore {
	s := &IdempotencyStore{
		db:      db,
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
	db.Register(s)
	return s
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

// Get returns the stored record for the provided key, or nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	release := s.db.Acquire(ctx)
	defer release()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	copy := record
	return &copy, nil
}

// Save persists the record or returns the existing record if it matches.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	release := s.db.Acquire(ctx)
	defer release()

	if existing, ok := s.records[record.Key]; ok {
		copy := existing
		if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
			return &copy, ports.ErrIdempotencyConflict
		}
		return &copy, nil
	}

	now := s.now()
	record.CreatedAt = now
	record.UpdatedAt = now
	s.records[record.Key] = record
	saved := record
	return &saved, nil
}

// Snapshot implements memdb.Table.
func (s *IdempotencyStore) Snapshot() any {
	copied := make(map[string]ports.IdempotencyRecord, len(s.records))
	for k, v := range s.records {
		copied[k] = v
	}
	return copied
}

// Restore implements memdb.Table.
func (s *IdempotencyStore) Restore(snapshot any) {
	s.records = snapshot.(map[string]ports.IdempotencyRecord)
}
