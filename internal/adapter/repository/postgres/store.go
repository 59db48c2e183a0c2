package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/srgjo27/seathold/internal/core/domain"
	"github.com/srgjo27/seathold/internal/core/ports"
)

type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store maps every seat/hold pairing onto one database transaction.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Atomic(ctx context.Context, fn func(ctx context.Context, tx ports.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer tx.Rollback()

	if err := fn(ctx, &pgTx{q: tx}); err != nil {
		return err
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

func (s *Store) Snapshot(ctx context.Context, screeningID string) ([]domain.Seat, error) {
	return (&seatRegistry{q: s.db}).Seats(ctx, screeningID)
}

func (s *Store) FindHold(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	return (&holdRepository{q: s.db}).Get(ctx, holdID)
}

func (s *Store) ScreeningsWithActive(ctx context.Context) ([]string, error) {
	return (&holdRepository{q: s.db}).ScreeningsWithActive(ctx)
}

type pgTx struct {
	q queryer
}

func (t *pgTx) Seats() ports.SeatRegistry   { return &seatRegistry{q: t.q} }
func (t *pgTx) Holds() ports.HoldRepository { return &holdRepository{q: t.q} }

type seatRegistry struct {
	q queryer
}

func (r *seatRegistry) TryTransition(ctx context.Context, screeningID string, seatIDs []string, from, to domain.SeatStatus) error {
	query := `
	SELECT seat_id, status
	FROM screening_seats
	WHERE screening_id = $1 AND seat_id = ANY($2)
	ORDER BY seat_id
	FOR UPDATE
	`

	rows, err := r.q.QueryContext(ctx, query, screeningID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("failed to lock seats: %w", err)
	}

	defer rows.Close()

	current := make(map[string]domain.SeatStatus, len(seatIDs))
	for rows.Next() {
		var id string
		var status domain.SeatStatus
		if err := rows.Scan(&id, &status); err != nil {
			return err
		}
		current[id] = status
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to read locked seats: %w", err)
	}

	var blocked []string
	for _, id := range seatIDs {
		if st, ok := current[id]; !ok || st != from {
			blocked = append(blocked, id)
		}
	}
	if len(blocked) > 0 {
		return &domain.ConflictError{Seats: blocked}
	}

	update := `
	UPDATE screening_seats
	SET status = $1,
		version = version + 1,
		updated_at = NOW()
	WHERE screening_id = $2 AND seat_id = ANY($3) AND status = $4
	`

	result, err := r.q.ExecContext(ctx, update, to, screeningID, pq.Array(seatIDs), from)
	if err != nil {
		return fmt.Errorf("failed to update seat status: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected != int64(len(seatIDs)) {
		return fmt.Errorf("seat update touched %d of %d rows", rowsAffected, len(seatIDs))
	}

	return nil
}

func (r *seatRegistry) Seats(ctx context.Context, screeningID string) ([]domain.Seat, error) {
	query := `
	SELECT seat_id, status
	FROM screening_seats
	WHERE screening_id = $1
	ORDER BY seat_id
	`
	rows, err := r.q.QueryContext(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var seats []domain.Seat
	for rows.Next() {
		seat := domain.Seat{ScreeningID: screeningID}
		if err := rows.Scan(&seat.SeatID, &seat.Status); err != nil {
			return nil, err
		}

		seats = append(seats, seat)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(seats) == 0 {
		return nil, domain.ErrScreeningNotFound
	}

	return seats, nil
}

type holdRepository struct {
	q queryer
}

const holdColumns = `id, screening_id, holder_id, seat_ids, status, created_at, expires_at, updated_at`

func (r *holdRepository) Insert(ctx context.Context, hold *domain.Hold) error {
	query := `
	INSERT INTO holds (` + holdColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query, hold.ID, hold.ScreeningID, hold.HolderID, pq.Array(hold.SeatIDs),
		hold.Status, hold.CreatedAt, hold.ExpiresAt, hold.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert hold: %w", err)
	}

	return nil
}

func (r *holdRepository) Get(ctx context.Context, holdID uuid.UUID) (*domain.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	hold, err := scanHold(r.q.QueryRowContext(ctx, query, holdID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrHoldNotFound
		}

		return nil, err
	}

	return hold, nil
}

func (r *holdRepository) UpdateStatus(ctx context.Context, holdID uuid.UUID, status domain.HoldStatus, at time.Time) error {
	query := `
	UPDATE holds
	SET status = $1, updated_at = $2
	WHERE id = $3
	`

	result, err := r.q.ExecContext(ctx, query, status, at, holdID)
	if err != nil {
		return fmt.Errorf("failed to update hold: %w", err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if n == 0 {
		return domain.ErrHoldNotFound
	}

	return nil
}

func (r *holdRepository) ListActiveByScreening(ctx context.Context, screeningID string) ([]domain.Hold, error) {
	query := `
	SELECT ` + holdColumns + `
	FROM holds
	WHERE screening_id = $1 AND status = 'ACTIVE'
	ORDER BY created_at
	`

	rows, err := r.q.QueryContext(ctx, query, screeningID)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var holds []domain.Hold
	for rows.Next() {
		h, err := scanHold(rows)
		if err != nil {
			return nil, err
		}

		holds = append(holds, *h)
	}

	return holds, rows.Err()
}

func (r *holdRepository) ScreeningsWithActive(ctx context.Context) ([]string, error) {
	rows, err := r.q.QueryContext(ctx, `SELECT DISTINCT screening_id FROM holds WHERE status = 'ACTIVE' ORDER BY screening_id`)
	if err != nil {
		return nil, err
	}

	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}

		ids = append(ids, id)
	}

	return ids, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHold(row scanner) (*domain.Hold, error) {
	var h domain.Hold
	err := row.Scan(&h.ID, &h.ScreeningID, &h.HolderID, pq.Array(&h.SeatIDs), &h.Status,
		&h.CreatedAt, &h.ExpiresAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &h, nil
}
