package memory

import (
	"context"
	"sync"

	"github.com/srgjo27/seathold/internal/core/domain"
)

// Catalog is a static screening catalog, used when no database backs the service.
type Catalog struct {
	mu         sync.RWMutex
	screenings map[string]domain.Screening
}

func NewCatalog() *Catalog {
	return &Catalog{screenings: make(map[string]domain.Screening)}
}

func (c *Catalog) Add(s domain.Screening) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s.SeatIDs = append([]string(nil), s.SeatIDs...)
	c.screenings[s.ID] = s
}

func (c *Catalog) Screening(_ context.Context, screeningID string) (*domain.Screening, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.screenings[screeningID]
	if !ok {
		return nil, domain.ErrScreeningNotFound
	}
	s.SeatIDs = append([]string(nil), s.SeatIDs...)
	return &s, nil
}
