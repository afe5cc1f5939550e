package outbox

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	pgplatform "github.com/Apurer/canteen-api/internal/platform/postgres"
)

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists outbox rows next to the business tables.
type PostgresStore struct {
	db *gorm.DB
}

func NewPostgresStore(db *gorm.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// eventRecord is the outbox_events row; platform/migrations owns the schema.
type eventRecord struct {
	ID            string     `gorm:"primaryKey;column:id;type:uuid"`
	AggregateType string     `gorm:"column:aggregate_type;size:64"`
	AggregateID   string     `gorm:"column:aggregate_id;size:64;index"`
	EventType     string     `gorm:"column:event_type;size:128"`
	Payload       []byte     `gorm:"column:payload;type:jsonb"`
	OccurredAt    time.Time  `gorm:"column:occurred_at;index"`
	PublishedAt   *time.Time `gorm:"column:published_at;index"`
}

func (eventRecord) TableName() string { return "outbox_events" }

func (s *PostgresStore) Append(ctx context.Context, events ...Event) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}
	records := make([]eventRecord, 0, len(events))
	for _, e := range events {
		records = append(records, eventRecord{
			ID:            e.ID,
			AggregateType: e.AggregateType,
			AggregateID:   e.AggregateID,
			EventType:     e.EventType,
			Payload:       e.Payload,
			OccurredAt:    e.OccurredAt,
		})
	}
	return pgplatform.Conn(ctx, s.db).Create(&records).Error
}

func (s *PostgresStore) Pending(ctx context.Context, limit int) ([]Event, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	query := pgplatform.Conn(ctx, s.db).Where("published_at IS NULL").Order("occurred_at")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []eventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, err
	}
	events := make([]Event, 0, len(records))
	for _, r := range records {
		events = append(events, Event{
			ID:            r.ID,
			AggregateType: r.AggregateType,
			AggregateID:   r.AggregateID,
			EventType:     r.EventType,
			Payload:       r.Payload,
			OccurredAt:    r.OccurredAt,
		})
	}
	return events, nil
}

func (s *PostgresStore) MarkPublished(ctx context.Context, ids []string, at time.Time) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	return pgplatform.Conn(ctx, s.db).Model(&eventRecord{}).
		Where("id IN ?", ids).
		Update("published_at", at).Error
}

func (s *PostgresStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres outbox store not configured")
	}
	return nil
}
