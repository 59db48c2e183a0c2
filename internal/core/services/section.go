package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

// sections runs work inside the exclusive section of one screening. Holds,
// cancels, confirms and sweeps all enter through here.
type sections struct {
	locker  ports.Locker
	timeout time.Duration
	logger  hclog.Logger
}

func (s *sections) run(ctx context.Context, screeningID string, fn func(ctx context.Context) error) error {
	waitCtx, cancel := context.WithTimeout(ctx, s.timeout)
	unlock, err := s.locker.Lock(waitCtx, screeningID)
	cancel()

	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return domain.ErrBusy
		}
		return fmt.Errorf("enter screening %s: %w", screeningID, err)
	}

	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			s.logger.Error("failed to leave screening section", "screening_id", screeningID, "error", err)
		}
	}()

	return fn(ctx)
}
