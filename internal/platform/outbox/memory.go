package outbox

import (
	"context"
	"sort"
	"time"

	"github.com/Apurer/canteen-api/internal/platform/memdb"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps outbox rows in process for development and tests.
type MemoryStore struct {
	db     *memdb.DB
	events map[string]Event
}

func NewMemoryStore(db *memdb.DB) *MemoryStore {
	s := &MemoryStore{db: db, events: map[string]Event{}}
	db.Register(s)
	return s
}

func (s *MemoryStore) Append(ctx context.Context, events ...Event) error {
	release := s.db.Acquire(ctx)
	defer release()
	for _, e := range events {
		s.events[e.ID] = e
	}
	return nil
}

func (s *MemoryStore) Pending(ctx context.Context, limit int) ([]Event, error) {
	release := s.db.Acquire(ctx)
	defer release()
	pending := make([]Event, 0)
	for _, e := range s.events {
		if e.PublishedAt == nil {
			pending = append(pending, e)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].OccurredAt.Before(pending[j].OccurredAt) })
	if limit > 0 && len(pending) > limit {
		pending = pending[:limit]
	}
	return pending, nil
}

func (s *MemoryStore) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	release := s.db.Acquire(ctx)
	defer release()
	for _, id := range ids {
		if e, ok := s.events[id]; ok {
			published := at
			e.PublishedAt = &published
			s.events[id] = e
		}
	}
	return nil
}

// All returns every stored event, oldest first.
func (s *MemoryStore) All(ctx context.Context) []Event {
	release := s.db.Acquire(ctx)
	defer release()
	all := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		all = append(all, e)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].OccurredAt.Before(all[j].OccurredAt) })
	return all
}

// Snapshot implements memdb.Table.
func (s *MemoryStore) Snapshot() any {
	copied := make(map[string]Event, len(s.events))
	for k, v := range s.events {
		copied[k] = v
	}
	return copied
}

// Restore implements memdb.Table.
func (s *MemoryStore) Restore(state any) {
	s.events = state.(map[string]Event)
}
