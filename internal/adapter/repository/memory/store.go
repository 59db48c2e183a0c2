package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

type shard struct {
	mu    sync.RWMutex
	seats map[string]domain.SeatStatus
	order []string
	holds map[uuid.UUID]*domain.Hold
}

// Store keeps seats and holds in process memory. Each screening is its own
// shard; a transaction stages its writes and applies them in one step on commit.
type Store struct {
	mu     sync.RWMutex
	shards map[string]*shard
	index  map[uuid.UUID]string
}

func NewStore() *Store {
	return &Store{
		shards: make(map[string]*shard),
		index:  make(map[uuid.UUID]string),
	}
}

// AddScreening registers the seat layout of a screening with every seat AVAILABLE.
// Seats already known keep their status.
func (s *Store) AddScreening(screeningID string, seatIDs []string) {
	s.mu.Lock()
	sh, ok := s.shards[screeningID]
	if !ok {
		sh = &shard{seats: make(map[string]domain.SeatStatus), holds: make(map[uuid.UUID]*domain.Hold)}
		s.shards[screeningID] = sh
	}
	s.mu.Unlock()

	sh.mu.Lock()
	defer sh.mu.Unlock()
	for _, id := range seatIDs {
		if _, exists := sh.seats[id]; exists {
			continue
		}
		sh.seats[id] = domain.SeatAvailable
		sh.order = append(sh.order, id)
	}
}

func (s *Store) shard(screeningID string) *shard {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shards[screeningID]
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	tx := newTx(s)
	if err := fn(ctx, tx); err != nil {
		return err
	}
	return tx.commit()
}

func (s *Store) Snapshot(_ context.Context, screeningID string) ([]domain.Seat, error) {
	sh := s.shard(screeningID)
	if sh == nil {
		return nil, domain.ErrScreeningNotFound
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	seats := make([]domain.Seat, 0, len(sh.order))
	for _, id := range sh.order {
		seats = append(seats, domain.Seat{ScreeningID: screeningID, SeatID: id, Status: sh.seats[id]})
	}
	return seats, nil
}

func (s *Store) FindHold(_ context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	s.mu.RLock()
	screeningID, ok := s.index[holdID]
	sh := s.shards[screeningID]
	s.mu.RUnlock()
	if !ok || sh == nil {
		return nil, domain.ErrHoldNotFound
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	h, ok := sh.holds[holdID]
	if !ok {
		return nil, domain.ErrHoldNotFound
	}
	return h.Clone(), nil
}

func (s *Store) ScreeningsWithActive(_ context.Context) ([]string, error) {
	s.mu.RLock()
	ids := make([]string, 0, len(s.shards))
	shards := make([]*shard, 0, len(s.shards))
	for id, sh := range s.shards {
		ids = append(ids, id)
		shards = append(shards, sh)
	}
	s.mu.RUnlock()

	var out []string
	for i, sh := range shards {
		sh.mu.RLock()
		for _, h := range sh.holds {
			if h.Status == domain.HoldActive {
				out = append(out, ids[i])
				break
			}
		}
		sh.mu.RUnlock()
	}
	sort.Strings(out)
	return out, nil
}

type seatKey struct {
	screeningID string
	seatID      string
}

type tx struct {
	store *Store
	seats map[seatKey]domain.SeatStatus
	holds map[uuid.UUID]*domain.Hold
}

func newTx(s *Store) *tx {
	return &tx{
		store: s,
		seats: make(map[seatKey]domain.SeatStatus),
		holds: make(map[uuid.UUID]*domain.Hold),
	}
}

func (t *tx) Seats() ports.SeatRegistry   { return (*txSeats)(t) }
func (t *tx) Holds() ports.HoldRepository { return (*txHolds)(t) }

func (t *tx) seatStatus(sh *shard, screeningID, seatID string) (domain.SeatStatus, bool) {
	if st, ok := t.seats[seatKey{screeningID, seatID}]; ok {
		return st, true
	}
	if sh == nil {
		return "", false
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	st, ok := sh.seats[seatID]
	return st, ok
}

func (t *tx) hold(holdID uuid.UUID) (*domain.Hold, bool) {
	if h, ok := t.holds[holdID]; ok {
		return h, true
	}
	t.store.mu.RLock()
	screeningID, ok := t.store.index[holdID]
	sh := t.store.shards[screeningID]
	t.store.mu.RUnlock()
	if !ok || sh == nil {
		return nil, false
	}
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	h, ok := sh.holds[holdID]
	if !ok {
		return nil, false
	}
	return h.Clone(), true
}

func (t *tx) commit() error {
	byShard := make(map[string][]seatKey)
	for k := range t.seats {
		byShard[k.screeningID] = append(byShard[k.screeningID], k)
	}
	for _, h := range t.holds {
		if _, ok := byShard[h.ScreeningID]; !ok {
			byShard[h.ScreeningID] = nil
		}
	}

	t.store.mu.Lock()
	for _, h := range t.holds {
		t.store.index[h.ID] = h.ScreeningID
	}
	shards := make(map[string]*shard, len(byShard))
	for id := range byShard {
		sh, ok := t.store.shards[id]
		if !ok {
			sh = &shard{seats: make(map[string]domain.SeatStatus), holds: make(map[uuid.UUID]*domain.Hold)}
			t.store.shards[id] = sh
		}
		shards[id] = sh
	}
	t.store.mu.Unlock()

	ids := make([]string, 0, len(shards))
	for id := range shards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		shards[id].mu.Lock()
	}
	defer func() {
		for _, id := range ids {
			shards[id].mu.Unlock()
		}
	}()

	for id, keys := range byShard {
		sh := shards[id]
		for _, k := range keys {
			if _, known := sh.seats[k.seatID]; !known {
				sh.order = append(sh.order, k.seatID)
			}
			sh.seats[k.seatID] = t.seats[k]
		}
	}
	for _, h := range t.holds {
		shards[h.ScreeningID].holds[h.ID] = h
	}
	return nil
}

type txSeats tx

func (r *txSeats) TryTransition(_ context.Context, screeningID string, seatIDs []string, from, to domain.SeatStatus) error {
	t := (*tx)(r)
	sh := t.store.shard(screeningID)

	var blocked []string
	for _, id := range seatIDs {
		st, ok := t.seatStatus(sh, screeningID, id)
		if !ok || st != from {
			blocked = append(blocked, id)
		}
	}
	if len(blocked) > 0 {
		return &domain.ConflictError{Seats: blocked}
	}
	for _, id := range seatIDs {
		t.seats[seatKey{screeningID, id}] = to
	}
	return nil
}

func (r *txSeats) Seats(_ context.Context, screeningID string) ([]domain.Seat, error) {
	t := (*tx)(r)
	sh := t.store.shard(screeningID)
	if sh == nil {
		return nil, domain.ErrScreeningNotFound
	}
	sh.mu.RLock()
	order := append([]string(nil), sh.order...)
	sh.mu.RUnlock()

	seats := make([]domain.Seat, 0, len(order))
	for _, id := range order {
		st, _ := t.seatStatus(sh, screeningID, id)
		seats = append(seats, domain.Seat{ScreeningID: screeningID, SeatID: id, Status: st})
	}
	return seats, nil
}

type txHolds tx

func (r *txHolds) Insert(_ context.Context, hold *domain.Hold) error {
	t := (*tx)(r)
	if _, exists := t.hold(hold.ID); exists {
		return fmt.Errorf("hold %s already exists", hold.ID)
	}
	t.holds[hold.ID] = hold.Clone()
	return nil
}

func (r *txHolds) Get(_ context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	h, ok := (*tx)(r).hold(holdID)
	if !ok {
		return nil, domain.ErrHoldNotFound
	}
	return h.Clone(), nil
}

func (r *txHolds) UpdateStatus(_ context.Context, holdID uuid.UUID, status domain.HoldStatus, at time.Time) error {
	t := (*tx)(r)
	h, ok := t.hold(holdID)
	if !ok {
		return domain.ErrHoldNotFound
	}
	h.Status = status
	h.UpdatedAt = at
	t.holds[holdID] = h
	return nil
}

func (r *txHolds) ListActiveByScreening(_ context.Context, screeningID string) ([]domain.Hold, error) {
	t := (*tx)(r)
	seen := make(map[uuid.UUID]struct{})
	var out []domain.Hold
	for id, h := range t.holds {
		if h.ScreeningID != screeningID {
			continue
		}
		seen[id] = struct{}{}
		if h.Status == domain.HoldActive {
			out = append(out, *h.Clone())
		}
	}
	if sh := t.store.shard(screeningID); sh != nil {
		sh.mu.RLock()
		for id, h := range sh.holds {
			if _, staged := seen[id]; staged || h.Status != domain.HoldActive {
				continue
			}
			out = append(out, *h.Clone())
		}
		sh.mu.RUnlock()
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *txHolds) ScreeningsWithActive(ctx context.Context) ([]string, error) {
	return (*tx)(r).store.ScreeningsWithActive(ctx)
}
