package reviews

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateReview(ctx context.Context, review *Review) error {
	args := m.Called(ctx, review)
	return args.Error(0)
}

func (m *MockRepository) GetReview(ctx context.Context, id uuid.UUID) (*Review, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Review), args.Error(1)
}

func (m *MockRepository) ListByListing(ctx context.Context, listingID uuid.UUID) ([]Review, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Review), args.Error(1)
}

func (m *MockRepository) SetResponse(ctx context.Context, id uuid.UUID, response string, respondedAt time.Time) error {
	args := m.Called(ctx, id, response, respondedAt)
	return args.Error(0)
}

func (m *MockRepository) AggregateForListing(ctx context.Context, listingID uuid.UUID) (*RatingAggregate, error) {
	args := m.Called(ctx, listingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RatingAggregate), args.Error(1)
}

type MockBookingReader struct {
	mock.Mock
}

func (m *MockBookingReader) GetBookingRef(ctx context.Context, bookingID uuid.UUID) (*BookingRef, error) {
	args := m.Called(ctx, bookingID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BookingRef), args.Error(1)
}

type MockListingUpdater struct {
	mock.Mock
}

func (m *MockListingUpdater) UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error {
	args := m.Called(ctx, listingID, ratingValue, reviewCount)
	return args.Error(0)
}

type MockRecomputer struct {
	mock.Mock
}

func (m *MockRecomputer) Recompute(ctx context.Context, contractorID uuid.UUID) (badges.Delta, error) {
	args := m.Called(ctx, contractorID)
	return args.Get(0).(badges.Delta), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	args := m.Called(ctx, userID, notifType, title, body)
	return args.Error(0)
}

type testDeps struct {
	repo       *MockRepository
	bookings   *MockBookingReader
	listings   *MockListingUpdater
	recomputer *MockRecomputer
	notifier   *MockNotifier
	svc        *Service
}

func newTestDeps() *testDeps {
	d := &testDeps{
		repo:       new(MockRepository),
		bookings:   new(MockBookingReader),
		listings:   new(MockListingUpdater),
		recomputer: new(MockRecomputer),
		notifier:   new(MockNotifier),
	}
	d.svc = NewService(d.repo, d.bookings, d.listings, d.recomputer, d.notifier, zap.NewNop())
	d.svc.now = func() time.Time { return time.Date(2026, 4, 10, 9, 0, 0, 0, time.UTC) }
	return d
}

func completedBooking(homeownerID uuid.UUID) *BookingRef {
	return &BookingRef{
		ID:           uuid.New(),
		ListingID:    uuid.New(),
		ContractorID: uuid.New(),
		HomeownerID:  homeownerID,
		Completed:    true,
	}
}

func TestCreateReviewUpdatesAggregateAndBadges(t *testing.T) {
	d := newTestDeps()
	reviewer := uuid.New()
	booking := completedBooking(reviewer)

	d.bookings.On("GetBookingRef", mock.Anything, booking.ID).Return(booking, nil)
	d.repo.On("CreateReview", mock.Anything, mock.MatchedBy(func(r *Review) bool {
		return r.BookingID == booking.ID && r.Rating == 5
	})).Return(nil)
	d.repo.On("AggregateForListing", mock.Anything, booking.ListingID).
		Return(&RatingAggregate{ListingID: booking.ListingID, RatingValue: 4.6, ReviewCount: 11}, nil)
	d.listings.On("UpdateRatingAggregate", mock.Anything, booking.ListingID, 4.6, 11).Return(nil)
	d.recomputer.On("Recompute", mock.Anything, booking.ContractorID).Return(badges.Delta{}, nil)
	d.notifier.On("Notify", mock.Anything, booking.ContractorID, "review_received", mock.Anything, mock.Anything).Return(nil)

	review, err := d.svc.Create(context.Background(), reviewer, CreateReviewRequest{
		BookingID: booking.ID,
		Rating:    5,
		Comment:   "Fast and tidy work",
	})

	assert.NoError(t, err)
	assert.Equal(t, booking.ContractorID, review.ContractorID)
	d.listings.AssertExpectations(t)
	d.recomputer.AssertExpectations(t)
}

func TestCreateReviewRejectsIncompleteBooking(t *testing.T) {
	d := newTestDeps()
	reviewer := uuid.New()
	booking := completedBooking(reviewer)
	booking.Completed = false

	d.bookings.On("GetBookingRef", mock.Anything, booking.ID).Return(booking, nil)

	_, err := d.svc.Create(context.Background(), reviewer, CreateReviewRequest{BookingID: booking.ID, Rating: 4})

	assert.ErrorIs(t, err, ErrBookingNotCompleted)
	d.repo.AssertNotCalled(t, "CreateReview", mock.Anything, mock.Anything)
}

func TestCreateReviewRejectsNonOwner(t *testing.T) {
	d := newTestDeps()
	booking := completedBooking(uuid.New())

	d.bookings.On("GetBookingRef", mock.Anything, booking.ID).Return(booking, nil)

	_, err := d.svc.Create(context.Background(), uuid.New(), CreateReviewRequest{BookingID: booking.ID, Rating: 4})

	assert.ErrorIs(t, err, ErrNotBookingOwner)
}

func TestCreateReviewSurfacesDuplicate(t *testing.T) {
	d := newTestDeps()
	reviewer := uuid.New()
	booking := completedBooking(reviewer)

	d.bookings.On("GetBookingRef", mock.Anything, booking.ID).Return(booking, nil)
	d.repo.On("CreateReview", mock.Anything, mock.Anything).Return(ErrAlreadyReviewed)

	_, err := d.svc.Create(context.Background(), reviewer, CreateReviewRequest{BookingID: booking.ID, Rating: 4})

	assert.ErrorIs(t, err, ErrAlreadyReviewed)
	d.listings.AssertNotCalled(t, "UpdateRatingAggregate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondRejectsOtherContractor(t *testing.T) {
	d := newTestDeps()
	reviewID := uuid.New()

	d.repo.On("GetReview", mock.Anything, reviewID).Return(&Review{
		ID:           reviewID,
		ContractorID: uuid.New(),
	}, nil)

	_, err := d.svc.Respond(context.Background(), uuid.New(), reviewID, RespondRequest{Response: "thanks"})

	assert.ErrorIs(t, err, ErrNotResponder)
	d.repo.AssertNotCalled(t, "SetResponse", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRespondSetsResponse(t *testing.T) {
	d := newTestDeps()
	contractorID := uuid.New()
	reviewID := uuid.New()

	d.repo.On("GetReview", mock.Anything, reviewID).Return(&Review{
		ID:           reviewID,
		ContractorID: contractorID,
	}, nil)
	d.repo.On("SetResponse", mock.Anything, reviewID, "Thanks for the kind words", mock.Anything).Return(nil)

	review, err := d.svc.Respond(context.Background(), contractorID, reviewID, RespondRequest{
		Response: "Thanks for the kind words",
	})

	assert.NoError(t, err)
	assert.NotNil(t, review.Response)
	assert.Equal(t, "Thanks for the kind words", *review.Response)
	assert.NotNil(t, review.RespondedAt)
}
