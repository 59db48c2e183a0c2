package domain

import "time"

type SeatStatus string

const (
	SeatAvailable SeatStatus = "AVAILABLE"
	SeatHeld      SeatStatus = "HELD"
	SeatBooked    SeatStatus = "BOOKED"
)

type Seat struct {
	ScreeningID string     `json:"screening_id"`
	SeatID      string     `json:"seat_id"`
	Status      SeatStatus `json:"status"`
}

func (s *Seat) IsAvailable() bool {
	return s.Status == SeatAvailable
}

type ScreeningStatus string

const (
	ScreeningScheduled ScreeningStatus = "SCHEDULED"
	ScreeningCanceled  ScreeningStatus = "CANCELED"
	ScreeningEnded     ScreeningStatus = "ENDED"
)

// Screening is owned by the catalog. The seat layout never changes after creation.
type Screening struct {
	ID       string
	SeatIDs  []string
	StartsAt time.Time
	Status   ScreeningStatus
}

// Reservable reports whether seats of the screening can still be held at now.
func (s *Screening) Reservable(now time.Time) bool {
	if s.Status != ScreeningScheduled {
		return false
	}
	return s.StartsAt.IsZero() || now.Before(s.StartsAt)
}

func (s *Screening) HasSeat(seatID string) bool {
	for _, id := range s.SeatIDs {
		if id == seatID {
			return true
		}
	}
	return false
}
