package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
	"go.uber.org/atomic"
)

const DefaultSweepInterval = 30 * time.Second

// Sweeper reclaims seats from holds that outlived their TTL. The background
// pass goes through the same per-screening section as interactive requests.
type Sweeper struct {
	ledger   *Ledger
	store    ports.Store
	sections *sections
	events   *transitions
	interval time.Duration
	now      func() time.Time
	logger   hclog.Logger

	expired  atomic.Int64
	failures atomic.Int64
}

func (s *Sweeper) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("sweeper started", "interval", s.interval)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("sweeper stopped")
			return
		case <-ticker.C:
			s.SweepAll(ctx)
		}
	}
}

// SweepAll makes one pass over every screening with active holds and returns
// how many holds expired. A failing screening is logged and skipped.
func (s *Sweeper) SweepAll(ctx context.Context) int {
	ids, err := s.store.ScreeningsWithActive(ctx)
	if err != nil {
		s.failures.Inc()
		s.logger.Error("failed to list screenings with active holds", "error", err)
		return 0
	}

	total := 0
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}

		err := s.sections.run(ctx, id, func(ctx context.Context) error {
			n, err := s.sweepLocked(ctx, id, s.now())
			total += n
			return err
		})
		if err != nil {
			s.failures.Inc()
			s.logger.Error("sweep failed", "screening_id", id, "error", err)
		}
	}

	if total > 0 {
		s.logger.Info("expired holds released", "count", total)
	}

	return total
}

// SweepScreening expires the stale holds of one screening inside its section.
func (s *Sweeper) SweepScreening(ctx context.Context, screeningID string) (int, error) {
	var n int
	err := s.sections.run(ctx, screeningID, func(ctx context.Context) error {
		var err error
		n, err = s.sweepLocked(ctx, screeningID, s.now())
		return err
	})
	return n, err
}

// sweepLocked requires the caller to hold the screening's section. One hold
// failing does not stop the others.
func (s *Sweeper) sweepLocked(ctx context.Context, screeningID string, now time.Time) (int, error) {
	holds, err := s.ledger.FindActiveByScreening(ctx, screeningID)
	if err != nil {
		return 0, fmt.Errorf("list active holds: %w", err)
	}

	var errs []error
	n := 0
	for i := range holds {
		if !holds[i].IsStale(now) {
			continue
		}

		h, ok, err := s.ledger.ExpireIfStale(ctx, holds[i].ID, now)
		if err != nil {
			errs = append(errs, fmt.Errorf("expire hold %s: %w", holds[i].ID, err))
			continue
		}
		if !ok {
			continue
		}

		n++
		s.expired.Inc()
		s.events.record(ctx, h, domain.HoldActive, domain.ActorSweeper, now)
		s.logger.Debug("hold expired", "hold_id", h.ID, "screening_id", h.ScreeningID, "holder_id", h.HolderID)
	}

	return n, errors.Join(errs...)
}

func (s *Sweeper) Expired() int64 {
	return s.expired.Load()
}

func (s *Sweeper) Failures() int64 {
	return s.failures.Load()
}
