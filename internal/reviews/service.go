package reviews

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

var (
	ErrBookingNotCompleted = errors.New("booking is not completed")
	ErrNotBookingOwner     = errors.New("only the booking's homeowner may review it")
)

// BookingRef is the slice of a booking the review flow needs
type BookingRef struct {
	ID           uuid.UUID
	ListingID    uuid.UUID
	ContractorID uuid.UUID
	HomeownerID  uuid.UUID
	Completed    bool
}

// BookingReader resolves a booking for review validation
type BookingReader interface {
	GetBookingRef(ctx context.Context, bookingID uuid.UUID) (*BookingRef, error)
}

// ListingUpdater persists a listing's recomputed rating aggregate
type ListingUpdater interface {
	UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error
}

// BadgeRecomputer re-evaluates the contractor's badge set after the
// rating inputs change
type BadgeRecomputer interface {
	Recompute(ctx context.Context, contractorID uuid.UUID) (badges.Delta, error)
}

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type Service struct {
	repo     Repository
	bookings BookingReader
	listings ListingUpdater
	badges   BadgeRecomputer
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, bookings BookingReader, listings ListingUpdater, recomputer BadgeRecomputer, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		bookings: bookings,
		listings: listings,
		badges:   recomputer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

// Create records a review for a completed booking, folds it into the
// listing's rating aggregate and recomputes the contractor's badges.
// One review per booking; a second attempt returns ErrAlreadyReviewed.
func (s *Service) Create(ctx context.Context, reviewerID uuid.UUID, req CreateReviewRequest) (*Review, error) {
	booking, err := s.bookings.GetBookingRef(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	if booking.HomeownerID != reviewerID {
		return nil, ErrNotBookingOwner
	}
	if !booking.Completed {
		return nil, ErrBookingNotCompleted
	}

	review := &Review{
		ID:           uuid.New(),
		BookingID:    booking.ID,
		ListingID:    booking.ListingID,
		ContractorID: booking.ContractorID,
		ReviewerID:   reviewerID,
		Rating:       req.Rating,
		Comment:      req.Comment,
		CreatedAt:    s.now(),
	}
	if err := s.repo.CreateReview(ctx, review); err != nil {
		return nil, err
	}

	agg, err := s.repo.AggregateForListing(ctx, booking.ListingID)
	if err != nil {
		return nil, err
	}
	if err := s.listings.UpdateRatingAggregate(ctx, booking.ListingID, agg.RatingValue, agg.ReviewCount); err != nil {
		return nil, err
	}

	if _, err := s.badges.Recompute(ctx, booking.ContractorID); err != nil {
		s.logger.Warn("Badge recompute after review failed",
			zap.String("contractor_id", booking.ContractorID.String()),
			zap.Error(err))
	}

	if err := s.notifier.Notify(ctx, booking.ContractorID, "review_received",
		"New review", "A homeowner left a review on your listing."); err != nil {
		s.logger.Warn("Failed to notify contractor of review",
			zap.String("contractor_id", booking.ContractorID.String()),
			zap.Error(err))
	}

	s.logger.Info("Review created",
		zap.String("review_id", review.ID.String()),
		zap.String("listing_id", booking.ListingID.String()),
		zap.Int("rating", req.Rating))
	return review, nil
}

// Respond records the contractor's reply to a review
func (s *Service) Respond(ctx context.Context, contractorID, reviewID uuid.UUID, req RespondRequest) (*Review, error) {
	review, err := s.repo.GetReview(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.ContractorID != contractorID {
		return nil, ErrNotResponder
	}

	respondedAt := s.now()
	if err := s.repo.SetResponse(ctx, reviewID, req.Response, respondedAt); err != nil {
		return nil, err
	}

	review.Response = &req.Response
	review.RespondedAt = &respondedAt
	return review, nil
}

func (s *Service) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Review, error) {
	return s.repo.ListByListing(ctx, listingID)
}
