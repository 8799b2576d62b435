package reviews

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Repository defines data access for reviews
type Repository interface {
	CreateReview(ctx context.Context, review *Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*Review, error)
	ListByListing(ctx context.Context, listingID uuid.UUID) ([]Review, error)
	SetResponse(ctx context.Context, id uuid.UUID, response string, respondedAt time.Time) error
	AggregateForListing(ctx context.Context, listingID uuid.UUID) (*RatingAggregate, error)
}

type PostgresRepository struct {
	db *sqlx.DB
}

func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) CreateReview(ctx context.Context, review *Review) error {
	query := `
		INSERT INTO reviews (
			id, booking_id, listing_id, contractor_id, reviewer_id,
			rating, comment, created_at
		) VALUES (:id, :booking_id, :listing_id, :contractor_id, :reviewer_id,
		          :rating, :comment, :created_at)`

	if _, err := r.db.NamedExecContext(ctx, query, review); err != nil {
		var pqErr *pq.Error
		// unique_violation on the booking_id unique index
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrAlreadyReviewed
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	var review Review
	query := `
		SELECT id, booking_id, listing_id, contractor_id, reviewer_id,
		       rating, comment, response, responded_at, created_at
		FROM reviews
		WHERE id = $1`

	if err := r.db.GetContext(ctx, &review, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return &review, nil
}

func (r *PostgresRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Review, error) {
	out := []Review{}
	query := `
		SELECT id, booking_id, listing_id, contractor_id, reviewer_id,
		       rating, comment, response, responded_at, created_at
		FROM reviews
		WHERE listing_id = $1
		ORDER BY created_at DESC`

	if err := r.db.SelectContext(ctx, &out, query, listingID); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) SetResponse(ctx context.Context, id uuid.UUID, response string, respondedAt time.Time) error {
	query := `UPDATE reviews SET response = $2, responded_at = $3 WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id, response, respondedAt)
	if err != nil {
		return fmt.Errorf("failed to set review response: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) AggregateForListing(ctx context.Context, listingID uuid.UUID) (*RatingAggregate, error) {
	agg := RatingAggregate{ListingID: listingID}
	query := `
		SELECT COALESCE(AVG(rating), 0) AS rating_value, COUNT(*) AS review_count
		FROM reviews
		WHERE listing_id = $1`

	if err := r.db.QueryRowContext(ctx, query, listingID).Scan(&agg.RatingValue, &agg.ReviewCount); err != nil {
		return nil, fmt.Errorf("failed to aggregate reviews: %w", err)
	}
	return &agg, nil
}
