package ports

import (
	"context"
	"time"

	"github.com/srgjo27/seathold/internal/core/domain"
)

type UnlockFunc func(ctx context.Context) error

// Locker hands out the exclusive section of a key. Lock blocks until the
// section is acquired or ctx is done.
type Locker interface {
	Lock(ctx context.Context, key string) (UnlockFunc, error)
}

type Catalog interface {
	Screening(ctx context.Context, screeningID string) (*domain.Screening, error)
}

type AuditSink interface {
	Publish(ctx context.Context, event domain.AuditEvent) error
}

type SeatCache interface {
	Get(ctx context.Context, screeningID string) ([]domain.Seat, bool, error)
	Set(ctx context.Context, screeningID string, seats []domain.Seat, ttl time.Duration) error
	Invalidate(ctx context.Context, screeningID string) error
}
