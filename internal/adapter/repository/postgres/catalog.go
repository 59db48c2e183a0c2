package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/srgjo27/seathold/internal/core/domain"
)

// Catalog reads screening layouts. It never writes: screenings are owned elsewhere.
type Catalog struct {
	db *sql.DB
}

func NewCatalog(db *sql.DB) *Catalog {
	return &Catalog{db: db}
}

func (c *Catalog) Screening(ctx context.Context, screeningID string) (*domain.Screening, error) {
	s := domain.Screening{ID: screeningID}
	var startsAt sql.NullTime

	err := c.db.QueryRowContext(ctx, `SELECT starts_at, status FROM screenings WHERE id = $1`, screeningID).
		Scan(&startsAt, &s.Status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrScreeningNotFound
		}

		return nil, err
	}

	if startsAt.Valid {
		s.StartsAt = startsAt.Time
	}

	rows, err := c.db.QueryContext(ctx, `SELECT seat_id FROM screening_seats WHERE screening_id = $1 ORDER BY seat_id`, screeningID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		s.SeatIDs = append(s.SeatIDs, id)
	}

	return &s, rows.Err()
}
