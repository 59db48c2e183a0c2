package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/srgjo27/seathold/internal/core/domain"
)

const seatKeyPrefix = "seats:"

// SeatCache keeps short-lived availability snapshots in Redis, one key per screening.
type SeatCache struct {
	client redis.Cmdable
}

func NewSeatCache(client redis.Cmdable) *SeatCache {
	return &SeatCache{client: client}
}

func seatKey(screeningID string) string {
	return seatKeyPrefix + screeningID
}

func (c *SeatCache) Get(ctx context.Context, screeningID string) ([]domain.Seat, bool, error) {
	raw, err := c.client.Get(ctx, seatKey(screeningID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read seat cache: %w", err)
	}

	var seats []domain.Seat
	if err := json.Unmarshal(raw, &seats); err != nil {
		return nil, false, fmt.Errorf("failed to decode seat cache: %w", err)
	}
	return seats, true, nil
}

func (c *SeatCache) Set(ctx context.Context, screeningID string, seats []domain.Seat, ttl time.Duration) error {
	raw, err := json.Marshal(seats)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, seatKey(screeningID), raw, ttl).Err()
}

func (c *SeatCache) Invalidate(ctx context.Context, screeningID string) error {
	return c.client.Del(ctx, seatKey(screeningID)).Err()
}
