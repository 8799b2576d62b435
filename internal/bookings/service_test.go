package bookings

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/listings"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateBooking(ctx context.Context, booking *Booking) error {
	args := m.Called(ctx, booking)
	return args.Error(0)
}

func (m *MockRepository) GetBooking(ctx context.Context, id uuid.UUID) (*Booking, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Booking), args.Error(1)
}

func (m *MockRepository) ListByHomeowner(ctx context.Context, homeownerID uuid.UUID) ([]Booking, error) {
	args := m.Called(ctx, homeownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Booking, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Booking), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

type MockListingReader struct {
	mock.Mock
}

func (m *MockListingReader) GetListing(ctx context.Context, id uuid.UUID) (*listings.Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*listings.Listing), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	args := m.Called(ctx, userID, notifType, title, body)
	return args.Error(0)
}

var testNow = time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)

func newTestService(repo *MockRepository, reader *MockListingReader, notifier *MockNotifier) *Service {
	svc := NewService(repo, reader, notifier, zap.NewNop())
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from    Status
		to      Status
		allowed bool
	}{
		{StatusPending, StatusConfirmed, true},
		{StatusPending, StatusCancelled, true},
		{StatusPending, StatusCompleted, false},
		{StatusConfirmed, StatusCompleted, true},
		{StatusConfirmed, StatusCancelled, true},
		{StatusConfirmed, StatusPending, false},
		{StatusCompleted, StatusCancelled, false},
		{StatusCancelled, StatusConfirmed, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, CanTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestCreateBookingNotifiesContractor(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	homeownerID := uuid.New()
	contractorID := uuid.New()
	listingID := uuid.New()

	reader.On("GetListing", mock.Anything, listingID).Return(&listings.Listing{
		ID:           listingID,
		ContractorID: contractorID,
		Title:        "Gutter cleaning",
	}, nil)
	repo.On("CreateBooking", mock.Anything, mock.MatchedBy(func(b *Booking) bool {
		return b.Status == StatusPending && b.ContractorID == contractorID
	})).Return(nil)
	notifier.On("Notify", mock.Anything, contractorID, "booking_requested", mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.Create(context.Background(), homeownerID, CreateBookingRequest{
		ListingID:   listingID,
		ScheduledAt: testNow.Add(48 * time.Hour),
	})

	assert.NoError(t, err)
	assert.Equal(t, StatusPending, booking.Status)
	notifier.AssertExpectations(t)
}

func TestCreateBookingRejectsPastSchedule(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	listingID := uuid.New()
	reader.On("GetListing", mock.Anything, listingID).Return(&listings.Listing{ID: listingID}, nil)

	_, err := svc.Create(context.Background(), uuid.New(), CreateBookingRequest{
		ListingID:   listingID,
		ScheduledAt: testNow.Add(-time.Hour),
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateBooking", mock.Anything, mock.Anything)
}

func TestHomeownerCannotConfirm(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	homeownerID := uuid.New()
	bookingID := uuid.New()
	repo.On("GetBooking", mock.Anything, bookingID).Return(&Booking{
		ID:           bookingID,
		HomeownerID:  homeownerID,
		ContractorID: uuid.New(),
		Status:       StatusPending,
	}, nil)

	_, err := svc.Transition(context.Background(), homeownerID, bookingID, StatusConfirmed)

	assert.ErrorIs(t, err, ErrNotParticipant)
	repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHomeownerMayCancelPending(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	homeownerID := uuid.New()
	contractorID := uuid.New()
	bookingID := uuid.New()
	repo.On("GetBooking", mock.Anything, bookingID).Return(&Booking{
		ID:           bookingID,
		HomeownerID:  homeownerID,
		ContractorID: contractorID,
		Status:       StatusPending,
	}, nil)
	repo.On("UpdateStatus", mock.Anything, bookingID, StatusPending, StatusCancelled).Return(nil)
	notifier.On("Notify", mock.Anything, contractorID, "booking_cancelled", mock.Anything, mock.Anything).Return(nil)

	booking, err := svc.Transition(context.Background(), homeownerID, bookingID, StatusCancelled)

	assert.NoError(t, err)
	assert.Equal(t, StatusCancelled, booking.Status)
}

func TestTransitionRejectsCompletedToCancelled(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	contractorID := uuid.New()
	bookingID := uuid.New()
	repo.On("GetBooking", mock.Anything, bookingID).Return(&Booking{
		ID:           bookingID,
		HomeownerID:  uuid.New(),
		ContractorID: contractorID,
		Status:       StatusCompleted,
	}, nil)

	_, err := svc.Transition(context.Background(), contractorID, bookingID, StatusCancelled)

	assert.ErrorIs(t, err, ErrInvalidTransition)
}

func TestGetRejectsOutsider(t *testing.T) {
	repo := new(MockRepository)
	reader := new(MockListingReader)
	notifier := new(MockNotifier)
	svc := newTestService(repo, reader, notifier)

	bookingID := uuid.New()
	repo.On("GetBooking", mock.Anything, bookingID).Return(&Booking{
		ID:           bookingID,
		HomeownerID:  uuid.New(),
		ContractorID: uuid.New(),
	}, nil)

	_, err := svc.Get(context.Background(), uuid.New(), bookingID)

	assert.ErrorIs(t, err, ErrNotParticipant)
}
