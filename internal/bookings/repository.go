package bookings

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// Repository defines data access for bookings
type Repository interface {
	CreateBooking(ctx context.Context, booking *Booking) error
	GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error)
	ListByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Booking, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Booking, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	query := `
		INSERT INTO bookings (
			id, listing_id, contractor_id, homeowner_id, scheduled_at,
			notes, status, created_at, updated_at
		) VALUES (:id, :listing_id, :contractor_id, :homeowner_id, :scheduled_at,
		          :notes, :status, :created_at, :updated_at)`

	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("failed to create booking: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var booking Booking
	query := `
		SELECT id, listing_id, contractor_id, homeowner_id, scheduled_at,
		       notes, status, created_at, updated_at
		FROM bookings
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get booking: %w", err)
	}
	return &booking, nil
}

func (r *PostgresRepository) ListByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Booking, error) {
	out := []Booking{}
	query := `
		SELECT id, listing_id, contractor_id, homeowner_id, scheduled_at,
		       notes, status, created_at, updated_at
		FROM bookings
		WHERE homeowner_id = $1
		ORDER BY scheduled_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, homeownerID); err != nil {
		return nil, fmt.Errorf("failed to list homeowner bookings: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Booking, error) {
	out := []Booking{}
	query := `
		SELECT id, listing_id, contractor_id, homeowner_id, scheduled_at,
		       notes, status, created_at, updated_at
		FROM bookings
		WHERE contractor_id = $1
		ORDER BY scheduled_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, contractorID); err != nil {
		return nil, fmt.Errorf("failed to list contractor bookings: %w", err)
	}
	return out, nil
}

// UpdateStatus moves the booking's status with the previous status in
// the WHERE clause so concurrent transitions cannot race past the
// transition table.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE bookings SET status = $3, updated_at = NOW() WHERE id = $1 AND status = $2`,
		id, from, to)
	if err != nil {
		return fmt.Errorf("failed to update booking status: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrInvalidTransition
	}
	return nil
}
