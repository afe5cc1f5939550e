package ports

import (
	"context"
	"fmt"
	"time"

	"github.com/Apurer/canteen-api/internal/domains/users/domain"
	"github.com/Apurer/canteen-api/internal/shared/failure"
)

var ErrSessionNotFound = fmt.Errorf("session %w", failure.ErrNotFound)

// SessionStore persists the sessions behind issued tokens.
type SessionStore interface {
	Save(ctx context.Context, session domain.Session) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	// PurgeExpired removes sessions expired at now and reports how many went.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
