package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

// Ledger owns hold records. Every mutation runs inside one Store.Atomic call
// together with the matching seat transition, so observers see both or neither.
// Callers serialize mutations per screening.
type Ledger struct {
	store ports.Store
	newID func() uuid.UUID
}

func NewLedger(store ports.Store) *Ledger {
	return &Ledger{store: store, newID: uuid.New}
}

// NormalizeSeats rejects empty and duplicated seat sets and returns the seats sorted.
func NormalizeSeats(seatIDs []string) ([]string, error) {
	if len(seatIDs) == 0 {
		return nil, domain.ErrEmptySeatSet
	}

	seen := make(map[string]struct{}, len(seatIDs))
	out := make([]string, 0, len(seatIDs))
	for _, id := range seatIDs {
		if id == "" {
			return nil, fmt.Errorf("%w: empty seat id", domain.ErrInvalidRequest)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: %s", domain.ErrDuplicateSeat, id)
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}

	sort.Strings(out)
	return out, nil
}

func (l *Ledger) Create(ctx context.Context, screeningID, holderID string, seatIDs []string, now time.Time, ttl time.Duration) (*domain.Hold, error) {
	seats, err := NormalizeSeats(seatIDs)
	if err != nil {
		return nil, err
	}

	hold := &domain.Hold{
		ID:          l.newID(),
		ScreeningID: screeningID,
		HolderID:    holderID,
		SeatIDs:     seats,
		Status:      domain.HoldActive,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
		UpdatedAt:   now,
	}

	err = l.store.Atomic(ctx, func(ctx context.Context, tx ports.Tx) error {
		if err := tx.Seats().TryTransition(ctx, screeningID, seats, domain.SeatAvailable, domain.SeatHeld); err != nil {
			return err
		}
		return tx.Holds().Insert(ctx, hold)
	})
	if err != nil {
		return nil, err
	}

	return hold, nil
}

// Cancel releases the seats of an active hold owned by requesterID.
func (l *Ledger) Cancel(ctx context.Context, holdID uuid.UUID, requesterID string, now time.Time) (*domain.Hold, error) {
	return l.finish(ctx, holdID, now, domain.SeatAvailable, domain.HoldCancelled, func(h *domain.Hold) error {
		if h.HolderID != requesterID {
			return domain.ErrNotOwner
		}
		return nil
	})
}

// Confirm books the seats of an active hold for good.
func (l *Ledger) Confirm(ctx context.Context, holdID uuid.UUID, now time.Time) (*domain.Hold, error) {
	return l.finish(ctx, holdID, now, domain.SeatBooked, domain.HoldConfirmed, nil)
}

// ExpireIfStale expires the hold when its TTL has passed. It reports false,
// without error, for holds that are fresh or already terminal.
func (l *Ledger) ExpireIfStale(ctx context.Context, holdID uuid.UUID, now time.Time) (*domain.Hold, bool, error) {
	var expired *domain.Hold

	err := l.store.Atomic(ctx, func(ctx context.Context, tx ports.Tx) error {
		h, err := tx.Holds().Get(ctx, holdID)
		if err != nil {
			return err
		}
		if !h.IsStale(now) {
			return nil
		}
		if err := l.release(ctx, tx, h, now, domain.SeatAvailable, domain.HoldExpired); err != nil {
			return err
		}
		expired = h
		return nil
	})
	if err != nil {
		return nil, false, err
	}

	return expired, expired != nil, nil
}

func (l *Ledger) FindActiveByScreening(ctx context.Context, screeningID string) ([]domain.Hold, error) {
	var holds []domain.Hold
	err := l.store.Atomic(ctx, func(ctx context.Context, tx ports.Tx) error {
		var err error
		holds, err = tx.Holds().ListActiveByScreening(ctx, screeningID)
		return err
	})
	return holds, err
}

func (l *Ledger) finish(ctx context.Context, holdID uuid.UUID, now time.Time, seatTo domain.SeatStatus, holdTo domain.HoldStatus, check func(*domain.Hold) error) (*domain.Hold, error) {
	var done *domain.Hold

	err := l.store.Atomic(ctx, func(ctx context.Context, tx ports.Tx) error {
		h, err := tx.Holds().Get(ctx, holdID)
		if err != nil {
			return err
		}
		if check != nil {
			if err := check(h); err != nil {
				return err
			}
		}
		if h.Status != domain.HoldActive || h.IsStale(now) {
			return domain.ErrNotActive
		}
		if err := l.release(ctx, tx, h, now, seatTo, holdTo); err != nil {
			return err
		}
		done = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	return done, nil
}

// release moves the seats of h out of HELD and records the new hold status.
// A registry conflict here means seats and holds disagree, which must abort the pair.
func (l *Ledger) release(ctx context.Context, tx ports.Tx, h *domain.Hold, now time.Time, seatTo domain.SeatStatus, holdTo domain.HoldStatus) error {
	if err := tx.Seats().TryTransition(ctx, h.ScreeningID, h.SeatIDs, domain.SeatHeld, seatTo); err != nil {
		return fmt.Errorf("hold %s seats out of sync: %v", h.ID, err)
	}
	if err := tx.Holds().UpdateStatus(ctx, h.ID, holdTo, now); err != nil {
		return err
	}
	h.Status = holdTo
	h.UpdatedAt = now
	return nil
}
