package outbox

import (
	"context"
	"log/slog"
	"time"
)

const defaultBatchSize = 100

// Relay polls the store and forwards pending events to a publisher. Delivery
// is at-least-once: a crash between publish and mark re-sends the batch.
type Relay struct {
	store     Store
	publisher Publisher
	interval  time.Duration
	batchSize int
	logger    *slog.Logger
	now       func() time.Time
}

func NewRelay(store Store, publisher Publisher, interval time.Duration, logger *slog.Logger) *Relay {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &Relay{
		store:     store,
		publisher: publisher,
		interval:  interval,
		batchSize: defaultBatchSize,
		logger:    logger,
		now:       time.Now,
	}
}

// Run polls until ctx is cancelled.
func (r *Relay) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, err := r.Flush(ctx); err != nil && ctx.Err() == nil {
				r.log(ctx, slog.LevelWarn, "outbox relay flush failed", slog.String("error", err.Error()))
			}
		case <-ctx.Done():
			return
		}
	}
}

// Flush publishes one batch of pending events and returns how many were sent.
func (r *Relay) Flush(ctx context.Context) (int, error) {
	events, err := r.store.Pending(ctx, r.batchSize)
	if err != nil || len(events) == 0 {
		return 0, err
	}
	if err := r.publisher.Publish(ctx, events); err != nil {
		return 0, err
	}
	ids := make([]string, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	if err := r.store.MarkPublished(ctx, ids, r.now().UTC()); err != nil {
		return 0, err
	}
	r.log(ctx, slog.LevelDebug, "outbox events relayed", slog.Int("count", len(events)))
	return len(events), nil
}

func (r *Relay) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if r.logger == nil {
		return
	}
	r.logger.LogAttrs(ctx, level, msg, attrs...)
}
