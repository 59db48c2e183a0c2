package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActorSweeper      = "sweeper"
	ActorConfirmation = "confirmation"
)

// AuditEvent describes one hold state transition. From is empty for a freshly created hold.
type AuditEvent struct {
	HoldID      uuid.UUID  `json:"hold_id"`
	ScreeningID string     `json:"screening_id"`
	SeatIDs     []string   `json:"seat_ids"`
	From        HoldStatus `json:"from_status"`
	To          HoldStatus `json:"to_status"`
	Timestamp   time.Time  `json:"timestamp"`
	Actor       string     `json:"actor"`
}
