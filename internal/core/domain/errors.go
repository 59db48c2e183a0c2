package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrConflict       = errors.New("seats not available")
	ErrBusy           = errors.New("screening busy, retry later")
)

var (
	ErrHoldNotFound      = errors.New("hold not found")
	ErrNotOwner          = errors.New("hold belongs to another holder")
	ErrNotActive         = errors.New("hold is not active")
	ErrScreeningNotFound = errors.New("screening not found")
)

var (
	ErrEmptySeatSet  = fmt.Errorf("%w: no seats selected", ErrInvalidRequest)
	ErrDuplicateSeat = fmt.Errorf("%w: duplicate seat", ErrInvalidRequest)
)

// ConflictError lists the seats that blocked a transition.
type ConflictError struct {
	Seats []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.Seats, ","))
}

func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// ConflictSeats extracts the blocking seats from err, if any.
func ConflictSeats(err error) []string {
	var ce *ConflictError
	if errors.As(err, &ce) {
		return ce.Seats
	}
	return nil
}
