package domain

import (
	"time"

	"github.com/google/uuid"
)

type HoldStatus string

const (
	HoldActive    HoldStatus = "ACTIVE"
	HoldConfirmed HoldStatus = "CONFIRMED"
	HoldCancelled HoldStatus = "CANCELLED"
	HoldExpired   HoldStatus = "EXPIRED"
)

func (s HoldStatus) IsTerminal() bool {
	return s == HoldConfirmed || s == HoldCancelled || s == HoldExpired
}

type Hold struct {
	ID          uuid.UUID  `json:"id"`
	ScreeningID string     `json:"screening_id"`
	HolderID    string     `json:"holder_id"`
	SeatIDs     []string   `json:"seat_ids"`
	Status      HoldStatus `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	ExpiresAt   time.Time  `json:"expires_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// IsStale reports whether an active hold has outlived its TTL.
func (h *Hold) IsStale(now time.Time) bool {
	return h.Status == HoldActive && !h.ExpiresAt.After(now)
}

func (h *Hold) Clone() *Hold {
	c := *h
	c.SeatIDs = append([]string(nil), h.SeatIDs...)
	return &c
}
