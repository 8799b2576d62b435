package bookings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/listings"
)

// ListingReader resolves the listing a booking targets
type ListingReader interface {
	GetListing(ctx context.Context, id uuid.UUID) (*listings.Listing, error)
}

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type Service struct {
	repo     Repository
	listings ListingReader
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, listingReader ListingReader, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		listings: listingReader,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) Create(ctx context.Context, homeownerID uuid.UUID, req CreateBookingRequest) (*Booking, error) {
	listing, err := s.listings.GetListing(ctx, req.ListingID)
	if err != nil {
		return nil, err
	}
	if req.ScheduledAt.Before(s.now()) {
		return nil, fmt.Errorf("scheduled time %s is in the past", req.ScheduledAt.Format(time.RFC3339))
	}

	now := s.now()
	booking := &Booking{
		ID:           uuid.New(),
		ListingID:    listing.ID,
		ContractorID: listing.ContractorID,
		HomeownerID:  homeownerID,
		ScheduledAt:  req.ScheduledAt,
		Notes:        req.Notes,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.CreateBooking(ctx, booking); err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, listing.ContractorID, "booking_requested",
		"New booking request", fmt.Sprintf("A homeowner requested %q.", listing.Title)); err != nil {
		s.logger.Warn("Failed to notify contractor of booking",
			zap.String("booking_id", booking.ID.String()),
			zap.Error(err))
	}

	s.logger.Info("Booking created",
		zap.String("booking_id", booking.ID.String()),
		zap.String("listing_id", listing.ID.String()))
	return booking, nil
}

func (s *Service) Get(ctx context.Context, callerID, bookingID uuid.UUID) (*Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HomeownerID != callerID && booking.ContractorID != callerID {
		return nil, ErrNotParticipant
	}
	return booking, nil
}

func (s *Service) ListByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Booking, error) {
	return s.repo.ListByHomeowner(ctx, homeownerID)
}

func (s *Service) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Booking, error) {
	return s.repo.ListByContractor(ctx, contractorID)
}

// Transition moves a booking along pending → confirmed → completed,
// with cancellation allowed from either non-terminal state. The
// contractor confirms and completes; either participant may cancel.
func (s *Service) Transition(ctx context.Context, callerID, bookingID uuid.UUID, to Status) (*Booking, error) {
	booking, err := s.repo.GetBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.HomeownerID != callerID && booking.ContractorID != callerID {
		return nil, ErrNotParticipant
	}
	if !CanTransition(booking.Status, to) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, booking.Status, to)
	}
	if (to == StatusConfirmed || to == StatusCompleted) && callerID != booking.ContractorID {
		return nil, fmt.Errorf("%w: only the contractor may mark a booking %s", ErrNotParticipant, to)
	}

	if err := s.repo.UpdateStatus(ctx, bookingID, booking.Status, to); err != nil {
		return nil, err
	}

	counterpart := booking.HomeownerID
	if callerID == booking.HomeownerID {
		counterpart = booking.ContractorID
	}
	if err := s.notifier.Notify(ctx, counterpart, "booking_"+string(to),
		"Booking "+string(to), fmt.Sprintf("Your booking is now %s.", to)); err != nil {
		s.logger.Warn("Failed to notify booking counterpart",
			zap.String("booking_id", bookingID.String()),
			zap.Error(err))
	}

	booking.Status = to
	s.logger.Info("Booking status changed",
		zap.String("booking_id", bookingID.String()),
		zap.String("status", string(to)))
	return booking, nil
}
