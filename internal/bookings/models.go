package bookings

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
	ErrNotParticipant    = errors.New("caller is not part of this booking")
)

// Status is the booking lifecycle state
type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// transitions is the full set of legal status moves. Anything absent
// is rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransition reports whether moving from one status to another is legal
func CanTransition(from, to Status) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Booking is a scheduled service between a homeowner and a listing
type Booking struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ListingID    uuid.UUID `db:"listing_id" json:"listing_id"`
	ContractorID uuid.UUID `db:"contractor_id" json:"contractor_id"`
	HomeownerID  uuid.UUID `db:"homeowner_id" json:"homeowner_id"`
	ScheduledAt  time.Time `db:"scheduled_at" json:"scheduled_at"`
	Notes        string    `db:"notes" json:"notes"`
	Status       Status    `db:"status" json:"status"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// CreateBookingRequest is the booking payload
type CreateBookingRequest struct {
	ListingID   uuid.UUID `json:"listing_id" binding:"required"`
	ScheduledAt time.Time `json:"scheduled_at" binding:"required"`
	Notes       string    `json:"notes"`
}

// TransitionRequest asks for a status change
type TransitionRequest struct {
	Status Status `json:"status" binding:"required"`
}
