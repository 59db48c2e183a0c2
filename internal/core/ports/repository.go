package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/seathold/internal/core/domain"
)

// SeatRegistry is the authoritative seat state of each screening.
type SeatRegistry interface {
	// TryTransition moves every seat from one status to another or none of them.
	// A *domain.ConflictError lists the seats that were not in from.
	TryTransition(ctx context.Context, screeningID string, seatIDs []string, from, to domain.SeatStatus) error
	Seats(ctx context.Context, screeningID string) ([]domain.Seat, error)
}

type HoldRepository interface {
	Insert(ctx context.Context, hold *domain.Hold) error
	Get(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error)
	UpdateStatus(ctx context.Context, holdID uuid.UUID, status domain.HoldStatus, at time.Time) error
	ListActiveByScreening(ctx context.Context, screeningID string) ([]domain.Hold, error)
	ScreeningsWithActive(ctx context.Context) ([]string, error)
}

type Tx interface {
	Seats() SeatRegistry
	Holds() HoldRepository
}

// Store pairs seat and hold mutations. Nothing done inside Atomic is visible unless fn returns nil.
type Store interface {
	Atomic(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Snapshot(ctx context.Context, screeningID string) ([]domain.Seat, error)
	FindHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error)
	ScreeningsWithActive(ctx context.Context) ([]string, error)
}
