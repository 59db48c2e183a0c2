package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/srgjo27/seathold/internal/adapter/repository/memory"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeSeats(t *testing.T) {
	tests := []struct {
		name    string
		in      []string
		want    []string
		wantErr error
	}{
		{"sorted", []string{"C", "A", "B"}, []string{"A", "B", "C"}, nil},
		{"single", []string{"A"}, []string{"A"}, nil},
		{"empty", nil, nil, domain.ErrEmptySeatSet},
		{"duplicate", []string{"A", "B", "A"}, nil, domain.ErrDuplicateSeat},
		{"blank id", []string{"A", ""}, nil, domain.ErrInvalidRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := services.NormalizeSeats(tt.in)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.ErrorIs(t, err, domain.ErrInvalidRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLedger_ConflictLeavesNoHold(t *testing.T) {
	store := memory.NewStore()
	store.AddScreening("s1", []string{"A", "B", "C"})
	ledger := services.NewLedger(store)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	first, err := ledger.Create(ctx, "s1", "holder-1", []string{"B"}, now, time.Minute)
	require.NoError(t, err)

	_, err = ledger.Create(ctx, "s1", "holder-2", []string{"A", "B", "C"}, now, time.Minute)
	require.Error(t, err)
	assert.Equal(t, []string{"B"}, domain.ConflictSeats(err))

	active, err := ledger.FindActiveByScreening(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, first.ID, active[0].ID)

	seats, err := store.Snapshot(ctx, "s1")
	require.NoError(t, err)
	for _, s := range seats {
		if s.SeatID == "B" {
			assert.Equal(t, domain.SeatHeld, s.Status)
		} else {
			assert.Equal(t, domain.SeatAvailable, s.Status)
		}
	}
}

func TestLedger_ExpireIfStale(t *testing.T) {
	store := memory.NewStore()
	store.AddScreening("s1", []string{"A"})
	ledger := services.NewLedger(store)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	h, err := ledger.Create(ctx, "s1", "holder-1", []string{"A"}, now, time.Minute)
	require.NoError(t, err)

	_, ok, err := ledger.ExpireIfStale(ctx, h.ID, now.Add(59*time.Second))
	require.NoError(t, err)
	assert.False(t, ok)

	// expiry is inclusive of the deadline itself
	expired, ok, err := ledger.ExpireIfStale(ctx, h.ID, now.Add(time.Minute))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, domain.HoldExpired, expired.Status)

	_, ok, err = ledger.ExpireIfStale(ctx, h.ID, now.Add(2*time.Minute))
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = ledger.Confirm(ctx, h.ID, now.Add(2*time.Minute))
	assert.ErrorIs(t, err, domain.ErrNotActive)
}

func TestLedger_ConfirmStaleIsNotActive(t *testing.T) {
	store := memory.NewStore()
	store.AddScreening("s1", []string{"A"})
	ledger := services.NewLedger(store)
	ctx := context.Background()
	now := time.Date(2026, 10, 15, 18, 0, 0, 0, time.UTC)

	h, err := ledger.Create(ctx, "s1", "holder-1", []string{"A"}, now, time.Minute)
	require.NoError(t, err)

	_, err = ledger.Confirm(ctx, h.ID, now.Add(time.Minute))
	assert.ErrorIs(t, err, domain.ErrNotActive)

	seats, err := store.Snapshot(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SeatHeld, seats[0].Status)
}
