package cache

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

type catalogEntry struct {
	screening domain.Screening
	fetchedAt time.Time
}

// Catalog memoizes screening lookups of another catalog. Entries are kept
// for ttl so a screening that ends or is canceled stops accepting holds soon after.
// Lookup failures are never cached.
type Catalog struct {
	next  ports.Catalog
	cache *lru.Cache
	ttl   time.Duration
	now   func() time.Time
}

func NewCatalog(next ports.Catalog, size int, ttl time.Duration) (*Catalog, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("failed to create catalog cache: %w", err)
	}
	return &Catalog{next: next, cache: c, ttl: ttl, now: time.Now}, nil
}

func (c *Catalog) Screening(ctx context.Context, screeningID string) (*domain.Screening, error) {
	if v, ok := c.cache.Get(screeningID); ok {
		e := v.(catalogEntry)
		if c.ttl <= 0 || c.now().Sub(e.fetchedAt) < c.ttl {
			s := e.screening
			s.SeatIDs = append([]string(nil), s.SeatIDs...)
			return &s, nil
		}
		c.cache.Remove(screeningID)
	}

	s, err := c.next.Screening(ctx, screeningID)
	if err != nil {
		return nil, err
	}

	entry := catalogEntry{screening: *s, fetchedAt: c.now()}
	entry.screening.SeatIDs = append([]string(nil), s.SeatIDs...)
	c.cache.Add(screeningID, entry)

	return s, nil
}

func (c *Catalog) Len() int {
	return c.cache.Len()
}
