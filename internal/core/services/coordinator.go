package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/armon/go-metrics"
	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

const (
	DefaultHoldTTL     = 5 * time.Minute
	DefaultMaxHoldTTL  = 15 * time.Minute
	DefaultBusyTimeout = 3 * time.Second
)

type Config struct {
	DefaultTTL    time.Duration
	MaxTTL        time.Duration
	BusyTimeout   time.Duration
	SweepInterval time.Duration
	CacheTTL      time.Duration
}

func (c Config) withDefaults() Config {
	if c.DefaultTTL <= 0 {
		c.DefaultTTL = DefaultHoldTTL
	}
	if c.MaxTTL <= 0 {
		c.MaxTTL = DefaultMaxHoldTTL
	}
	if c.MaxTTL < c.DefaultTTL {
		c.MaxTTL = c.DefaultTTL
	}
	if c.BusyTimeout <= 0 {
		c.BusyTimeout = DefaultBusyTimeout
	}
	if c.SweepInterval <= 0 {
		c.SweepInterval = DefaultSweepInterval
	}
	return c
}

type PlaceHoldRequest struct {
	ScreeningID string
	HolderID    string
	SeatIDs     []string
	TTL         time.Duration
}

type HoldResult struct {
	HoldID      uuid.UUID `json:"hold_id"`
	ScreeningID string    `json:"screening_id"`
	SeatIDs     []string  `json:"seat_ids"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type Option func(*Coordinator)

// WithClock replaces time.Now, for the coordinator and its sweeper.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) { c.now = now }
}

// Coordinator is the entry point for hold requests. Every mutation of a
// screening happens inside that screening's exclusive section.
type Coordinator struct {
	cfg      Config
	ledger   *Ledger
	store    ports.Store
	catalog  ports.Catalog
	cache    ports.SeatCache
	sections *sections
	events   *transitions
	sweeper  *Sweeper
	now      func() time.Time
	logger   hclog.Logger
}

func NewCoordinator(
	store ports.Store,
	locker ports.Locker,
	catalog ports.Catalog,
	audit ports.AuditSink,
	cache ports.SeatCache,
	cfg Config,
	logger hclog.Logger,
	opts ...Option,
) *Coordinator {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	cfg = cfg.withDefaults()

	c := &Coordinator{
		cfg:     cfg,
		ledger:  NewLedger(store),
		store:   store,
		catalog: catalog,
		cache:   cache,
		now:     time.Now,
		logger:  logger.Named("coordinator"),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.sections = &sections{locker: locker, timeout: cfg.BusyTimeout, logger: c.logger}
	c.events = &transitions{audit: audit, cache: cache, logger: c.logger}
	c.sweeper = &Sweeper{
		ledger:   c.ledger,
		store:    store,
		sections: c.sections,
		events:   c.events,
		interval: cfg.SweepInterval,
		now:      c.now,
		logger:   logger.Named("sweeper"),
	}

	return c
}

func (c *Coordinator) Sweeper() *Sweeper {
	return c.sweeper
}

func (c *Coordinator) PlaceHold(ctx context.Context, req PlaceHoldRequest) (*HoldResult, error) {
	defer metrics.MeasureSince([]string{"hold", "place"}, time.Now())

	seats, ttl, err := c.validate(ctx, req)
	if err != nil {
		return nil, err
	}

	var hold *domain.Hold
	err = c.sections.run(ctx, req.ScreeningID, func(ctx context.Context) error {
		now := c.now()
		if _, err := c.sweeper.sweepLocked(ctx, req.ScreeningID, now); err != nil {
			c.logger.Warn("lazy sweep failed", "screening_id", req.ScreeningID, "error", err)
		}

		hold, err = c.ledger.Create(ctx, req.ScreeningID, req.HolderID, seats, now, ttl)
		if err != nil {
			return err
		}

		c.events.record(ctx, hold, "", req.HolderID, now)
		return nil
	})
	if err != nil {
		c.countFailure(err)
		if errors.Is(err, domain.ErrConflict) {
			c.logger.Debug("hold conflict", "screening_id", req.ScreeningID, "holder_id", req.HolderID,
				"seats", strings.Join(domain.ConflictSeats(err), ","))
		}
		return nil, err
	}

	c.logger.Info("hold placed", "hold_id", hold.ID, "screening_id", hold.ScreeningID,
		"holder_id", hold.HolderID, "seats", len(hold.SeatIDs), "expires_at", hold.ExpiresAt)

	return &HoldResult{
		HoldID:      hold.ID,
		ScreeningID: hold.ScreeningID,
		SeatIDs:     hold.SeatIDs,
		ExpiresAt:   hold.ExpiresAt,
	}, nil
}

func (c *Coordinator) validate(ctx context.Context, req PlaceHoldRequest) ([]string, time.Duration, error) {
	if req.ScreeningID == "" {
		return nil, 0, fmt.Errorf("%w: screening id is required", domain.ErrInvalidRequest)
	}
	if req.HolderID == "" {
		return nil, 0, fmt.Errorf("%w: holder id is required", domain.ErrInvalidRequest)
	}

	seats, err := NormalizeSeats(req.SeatIDs)
	if err != nil {
		return nil, 0, err
	}

	ttl := req.TTL
	if ttl <= 0 {
		ttl = c.cfg.DefaultTTL
	}
	if ttl > c.cfg.MaxTTL {
		return nil, 0, fmt.Errorf("%w: ttl %s exceeds %s", domain.ErrInvalidRequest, ttl, c.cfg.MaxTTL)
	}

	screening, err := c.catalog.Screening(ctx, req.ScreeningID)
	if err != nil {
		if errors.Is(err, domain.ErrScreeningNotFound) {
			return nil, 0, fmt.Errorf("%w: %w", domain.ErrInvalidRequest, err)
		}
		return nil, 0, fmt.Errorf("lookup screening %s: %w", req.ScreeningID, err)
	}

	if !screening.Reservable(c.now()) {
		return nil, 0, fmt.Errorf("%w: screening %s is not open for holds", domain.ErrInvalidRequest, req.ScreeningID)
	}

	var unknown []string
	for _, id := range seats {
		if !screening.HasSeat(id) {
			unknown = append(unknown, id)
		}
	}
	if len(unknown) > 0 {
		return nil, 0, fmt.Errorf("%w: seats not in screening: %s", domain.ErrInvalidRequest, strings.Join(unknown, ","))
	}

	return seats, ttl, nil
}

func (c *Coordinator) CancelHold(ctx context.Context, holdID uuid.UUID, requesterID string) error {
	return c.finish(ctx, holdID, requesterID, func(ctx context.Context, now time.Time) (*domain.Hold, error) {
		return c.ledger.Cancel(ctx, holdID, requesterID, now)
	})
}

// ConfirmHold is called by the payment flow once it has succeeded on its side.
func (c *Coordinator) ConfirmHold(ctx context.Context, holdID uuid.UUID) error {
	return c.finish(ctx, holdID, domain.ActorConfirmation, func(ctx context.Context, now time.Time) (*domain.Hold, error) {
		return c.ledger.Confirm(ctx, holdID, now)
	})
}

func (c *Coordinator) finish(ctx context.Context, holdID uuid.UUID, actor string, apply func(ctx context.Context, now time.Time) (*domain.Hold, error)) error {
	current, err := c.store.FindHold(ctx, holdID)
	if err != nil {
		return err
	}

	var done *domain.Hold
	err = c.sections.run(ctx, current.ScreeningID, func(ctx context.Context) error {
		now := c.now()
		if _, err := c.sweeper.sweepLocked(ctx, current.ScreeningID, now); err != nil {
			c.logger.Warn("lazy sweep failed", "screening_id", current.ScreeningID, "error", err)
		}

		done, err = apply(ctx, now)
		if err != nil {
			return err
		}

		c.events.record(ctx, done, domain.HoldActive, actor, now)
		return nil
	})
	if err != nil {
		c.countFailure(err)
		return err
	}

	c.logger.Info("hold finished", "hold_id", done.ID, "screening_id", done.ScreeningID,
		"status", done.Status, "actor", actor)
	return nil
}

func (c *Coordinator) GetHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	return c.store.FindHold(ctx, holdID)
}

// Availability returns a possibly stale view of seat states. It must not be
// used to decide a later write; PlaceHold re-checks inside the section.
func (c *Coordinator) Availability(ctx context.Context, screeningID string) ([]domain.Seat, error) {
	if c.cache != nil {
		seats, ok, err := c.cache.Get(ctx, screeningID)
		if err != nil {
			c.logger.Warn("seat cache read failed", "screening_id", screeningID, "error", err)
		} else if ok {
			return seats, nil
		}
	}

	seats, err := c.store.Snapshot(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	if c.cache != nil && c.cfg.CacheTTL > 0 {
		if err := c.cache.Set(ctx, screeningID, seats, c.cfg.CacheTTL); err != nil {
			c.logger.Warn("seat cache write failed", "screening_id", screeningID, "error", err)
		}
	}

	return seats, nil
}

func (c *Coordinator) countFailure(err error) {
	switch {
	case errors.Is(err, domain.ErrConflict):
		metrics.IncrCounter([]string{"hold", "conflict"}, 1)
	case errors.Is(err, domain.ErrBusy):
		metrics.IncrCounter([]string{"hold", "busy"}, 1)
	}
}
