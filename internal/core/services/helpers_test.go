package services_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/adapter/lock"
	"github.com/srgjo27/seathold/internal/adapter/repository/memory"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
	"github.com/srgjo27/seathold/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingSink struct {
	mu     sync.Mutex
	events []domain.AuditEvent
}

func (s *recordingSink) Publish(_ context.Context, e domain.AuditEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return nil
}

func (s *recordingSink) Events() []domain.AuditEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.AuditEvent(nil), s.events...)
}

type fixture struct {
	store   *memory.Store
	catalog *memory.Catalog
	locks   *lock.Table
	sink    *recordingSink
	clock   *fakeClock
	coord   *services.Coordinator
}

type fixtureOption func(*fixtureConfig)

type fixtureConfig struct {
	store  ports.Store
	audit  ports.AuditSink
	cache  ports.SeatCache
	locker ports.Locker
	cfg    services.Config
}

func withStore(s ports.Store) fixtureOption     { return func(c *fixtureConfig) { c.store = s } }
func withAudit(a ports.AuditSink) fixtureOption { return func(c *fixtureConfig) { c.audit = a } }
func withCache(sc ports.SeatCache) fixtureOption {
	return func(c *fixtureConfig) { c.cache = sc }
}
func withLocker(l ports.Locker) fixtureOption { return func(c *fixtureConfig) { c.locker = l } }
func withBusyTimeout(d time.Duration) fixtureOption {
	return func(c *fixtureConfig) { c.cfg.BusyTimeout = d }
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	f := &fixture{
		store:   memory.NewStore(),
		catalog: memory.NewCatalog(),
		locks:   lock.NewTable(),
		sink:    &recordingSink{},
		clock:   newFakeClock(),
	}

	fc := fixtureConfig{
		cfg: services.Config{
			DefaultTTL:  5 * time.Minute,
			MaxTTL:      15 * time.Minute,
			BusyTimeout: 2 * time.Second,
			CacheTTL:    time.Second,
		},
	}
	for _, opt := range opts {
		opt(&fc)
	}

	store := ports.Store(f.store)
	if fc.store != nil {
		store = fc.store
	}
	audit := ports.AuditSink(f.sink)
	if fc.audit != nil {
		audit = fc.audit
	}
	locker := ports.Locker(f.locks)
	if fc.locker != nil {
		locker = fc.locker
	}

	f.coord = services.NewCoordinator(store, locker, f.catalog, audit, fc.cache, fc.cfg,
		hclog.NewNullLogger(), services.WithClock(f.clock.Now))

	return f
}

func (f *fixture) addScreening(id string, seats ...string) {
	f.store.AddScreening(id, seats)
	f.catalog.Add(domain.Screening{
		ID:       id,
		SeatIDs:  seats,
		StartsAt: f.clock.Now().Add(24 * time.Hour),
		Status:   domain.ScreeningScheduled,
	})
}

func (f *fixture) place(t *testing.T, screeningID, holderID string, seats ...string) (*services.HoldResult, error) {
	t.Helper()
	return f.coord.PlaceHold(context.Background(), services.PlaceHoldRequest{
		ScreeningID: screeningID,
		HolderID:    holderID,
		SeatIDs:     seats,
	})
}

func (f *fixture) seatStatus(t *testing.T, screeningID string) map[string]domain.SeatStatus {
	t.Helper()
	seats, err := f.store.Snapshot(context.Background(), screeningID)
	require.NoError(t, err)
	out := make(map[string]domain.SeatStatus, len(seats))
	for _, s := range seats {
		out[s.SeatID] = s.Status
	}
	return out
}

// assertPartition checks that HELD seats and ACTIVE holds agree one to one.
func (f *fixture) assertPartition(t *testing.T, screeningID string) {
	t.Helper()
	holds, err := services.NewLedger(f.store).FindActiveByScreening(context.Background(), screeningID)
	require.NoError(t, err)

	owner := make(map[string]uuid.UUID)
	for _, h := range holds {
		for _, s := range h.SeatIDs {
			_, taken := owner[s]
			assert.False(t, taken, "seat %s referenced by two active holds", s)
			owner[s] = h.ID
		}
	}

	for seat, status := range f.seatStatus(t, screeningID) {
		_, held := owner[seat]
		if status == domain.SeatHeld {
			assert.True(t, held, "seat %s is HELD without an active hold", seat)
		} else {
			assert.False(t, held, "seat %s is %s but referenced by an active hold", seat, status)
		}
	}
}
