package reviews

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("review not found")
	ErrAlreadyReviewed = errors.New("booking already reviewed")
	ErrNotResponder    = errors.New("only the reviewed contractor may respond")
)

// Review is a homeowner's rating of a completed booking
type Review struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	BookingID    uuid.UUID  `db:"booking_id" json:"booking_id"`
	ListingID    uuid.UUID  `db:"listing_id" json:"listing_id"`
	ContractorID uuid.UUID  `db:"contractor_id" json:"contractor_id"`
	ReviewerID   uuid.UUID  `db:"reviewer_id" json:"reviewer_id"`
	Rating       int        `db:"rating" json:"rating"`
	Comment      string     `db:"comment" json:"comment"`
	Response     *string    `db:"response" json:"response,omitempty"`
	RespondedAt  *time.Time `db:"responded_at" json:"responded_at,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// CreateReviewRequest is the review submission payload
type CreateReviewRequest struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	Rating    int       `json:"rating" binding:"required,min=1,max=5"`
	Comment   string    `json:"comment"`
}

// RespondRequest is the contractor's reply payload
type RespondRequest struct {
	Response string `json:"response" binding:"required"`
}

// RatingAggregate is a listing's recomputed review stats
type RatingAggregate struct {
	ListingID   uuid.UUID `db:"listing_id"`
	RatingValue float64   `db:"rating_value"`
	ReviewCount int       `db:"review_count"`
}
