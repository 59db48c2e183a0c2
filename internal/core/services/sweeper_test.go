package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/srgjo27/seathold/internal/adapter/repository/memory"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every hold listing for one screening.
type flakyStore struct {
	*memory.Store
	broken string
}

func (s *flakyStore) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	return s.Store.Atomic(ctx, func(ctx context.Context, tx ports.Tx) error {
		return fn(ctx, flakyTx{Tx: tx, broken: s.broken})
	})
}

type flakyTx struct {
	ports.Tx
	broken string
}

func (t flakyTx) Holds() ports.HoldRepository {
	return flakyHolds{HoldRepository: t.Tx.Holds(), broken: t.broken}
}

type flakyHolds struct {
	ports.HoldRepository
	broken string
}

func (h flakyHolds) ListActiveByScreening(ctx context.Context, screeningID string) ([]domain.Hold, error) {
	if screeningID == h.broken {
		return nil, errors.New("disk on fire")
	}
	return h.HoldRepository.ListActiveByScreening(ctx, screeningID)
}

func TestSweepAll_ReleasesExpiredHolds(t *testing.T) {
	f := newFixture(t)
	f.addScreening("s1", "A", "B")
	f.addScreening("s2", "A")
	ctx := context.Background()

	old, err := f.place(t, "s1", "holder-1", "A")
	require.NoError(t, err)
	_, err = f.place(t, "s2", "holder-2", "A")
	require.NoError(t, err)

	f.clock.Advance(4 * time.Minute)
	fresh, err := f.place(t, "s1", "holder-3", "B")
	require.NoError(t, err)

	f.clock.Advance(time.Minute)
	n := f.coord.Sweeper().SweepAll(ctx)

	assert.Equal(t, 2, n)
	assert.Equal(t, int64(2), f.coord.Sweeper().Expired())
	assert.Zero(t, f.coord.Sweeper().Failures())

	status := f.seatStatus(t, "s1")
	assert.Equal(t, domain.SeatAvailable, status["A"])
	assert.Equal(t, domain.SeatHeld, status["B"])
	assert.Equal(t, domain.SeatAvailable, f.seatStatus(t, "s2")["A"])

	h, err := f.coord.GetHold(ctx, old.HoldID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldExpired, h.Status)

	h, err = f.coord.GetHold(ctx, fresh.HoldID)
	require.NoError(t, err)
	assert.Equal(t, domain.HoldActive, h.Status)

	// nothing left to do on a second pass
	assert.Zero(t, f.coord.Sweeper().SweepAll(ctx))

	f.assertPartition(t, "s1")
	f.assertPartition(t, "s2")
}

func TestSweepAll_IsolatesFailingScreening(t *testing.T) {
	base := memory.NewStore()
	f := newFixture(t, withStore(&flakyStore{Store: base, broken: "bad"}))
	f.store = base
	f.addScreening("bad", "A")
	f.addScreening("good", "A")

	// place on "bad" directly, the lazy sweep there only logs its failure
	_, err := f.place(t, "bad", "holder-1", "A")
	require.NoError(t, err)
	_, err = f.place(t, "good", "holder-2", "A")
	require.NoError(t, err)

	f.clock.Advance(6 * time.Minute)
	n := f.coord.Sweeper().SweepAll(context.Background())

	assert.Equal(t, 1, n)
	assert.Equal(t, int64(1), f.coord.Sweeper().Failures())
	assert.Equal(t, domain.SeatAvailable, f.seatStatus(t, "good")["A"])
	assert.Equal(t, domain.SeatHeld, f.seatStatus(t, "bad")["A"])
}

func TestSweepScreening_WaitsForSection(t *testing.T) {
	f := newFixture(t, withBusyTimeout(20*time.Millisecond))
	f.addScreening("s1", "A")
	ctx := context.Background()

	_, err := f.place(t, "s1", "holder-1", "A")
	require.NoError(t, err)
	f.clock.Advance(10 * time.Minute)

	unlock, err := f.locks.Lock(ctx, "s1")
	require.NoError(t, err)

	_, err = f.coord.Sweeper().SweepScreening(ctx, "s1")
	assert.ErrorIs(t, err, domain.ErrBusy)
	assert.Equal(t, domain.SeatHeld, f.seatStatus(t, "s1")["A"])

	assert.Zero(t, f.coord.Sweeper().SweepAll(ctx))
	assert.Equal(t, int64(1), f.coord.Sweeper().Failures())

	require.NoError(t, unlock(ctx))

	n, err := f.coord.Sweeper().SweepScreening(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, domain.SeatAvailable, f.seatStatus(t, "s1")["A"])
}

func TestSweeperRun_StopsOnCancel(t *testing.T) {
	f := newFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		f.coord.Sweeper().Run(ctx)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
