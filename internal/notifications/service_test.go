package notifications

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateNotification(ctx context.Context, n *Notification) error {
	args := m.Called(ctx, n)
	return args.Error(0)
}

func (m *MockRepository) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	args := m.Called(ctx, userID, unreadOnly)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Notification), args.Error(1)
}

func (m *MockRepository) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	args := m.Called(ctx, userID, notificationID)
	return args.Error(0)
}

func (m *MockRepository) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Preferences), args.Error(1)
}

func (m *MockRepository) UpsertPreferences(ctx context.Context, prefs *Preferences) error {
	args := m.Called(ctx, prefs)
	return args.Error(0)
}

type MockChannel struct {
	mock.Mock
	enabled bool
}

func (m *MockChannel) Deliver(ctx context.Context, prefs *Preferences, n *Notification) error {
	args := m.Called(ctx, prefs, n)
	return args.Error(0)
}

func (m *MockChannel) Enabled(prefs *Preferences) bool {
	return m.enabled
}

func newTestService(repo *MockRepository, channels ...Channel) *Service {
	svc := NewService(repo, channels, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestNotifyFansOutToEnabledChannelsOnly(t *testing.T) {
	repo := new(MockRepository)
	email := &MockChannel{enabled: true}
	sms := &MockChannel{enabled: false}
	svc := newTestService(repo, email, sms)

	userID := uuid.New()
	repo.On("CreateNotification", mock.Anything, mock.MatchedBy(func(n *Notification) bool {
		return n.UserID == userID && n.Type == "quote_received" && !n.Read
	})).Return(nil)
	repo.On("GetPreferences", mock.Anything, userID).Return(&Preferences{
		UserID:       userID,
		EmailEnabled: true,
		Email:        "owner@example.com",
	}, nil)
	email.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	err := svc.Notify(context.Background(), userID, "quote_received", "New quote", "A contractor sent a quote.")

	assert.NoError(t, err)
	email.AssertExpectations(t)
	sms.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything, mock.Anything)
}

func TestNotifySucceedsWhenChannelFails(t *testing.T) {
	repo := new(MockRepository)
	email := &MockChannel{enabled: true}
	svc := newTestService(repo, email)

	userID := uuid.New()
	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(nil)
	repo.On("GetPreferences", mock.Anything, userID).Return(&Preferences{UserID: userID, EmailEnabled: true}, nil)
	email.On("Deliver", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("ses throttled"))

	err := svc.Notify(context.Background(), userID, "booking_confirmed", "Booking confirmed", "See you Thursday.")

	assert.NoError(t, err)
}

func TestNotifyFailsWhenRecordCannotBeWritten(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	repo.On("CreateNotification", mock.Anything, mock.Anything).Return(errors.New("db down"))

	err := svc.Notify(context.Background(), uuid.New(), "x", "y", "z")

	assert.Error(t, err)
}

func TestUpdatePreferencesMergesPartialUpdate(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo)

	userID := uuid.New()
	repo.On("GetPreferences", mock.Anything, userID).Return(&Preferences{
		UserID:       userID,
		EmailEnabled: true,
		SMSEnabled:   false,
		Email:        "pro@example.com",
	}, nil)

	enableSMS := true
	phone := "+15551234567"
	repo.On("UpsertPreferences", mock.Anything, mock.MatchedBy(func(p *Preferences) bool {
		return p.SMSEnabled && p.Phone == phone && p.EmailEnabled
	})).Return(nil)

	prefs, err := svc.UpdatePreferences(context.Background(), userID, UpdatePreferencesRequest{
		SMSEnabled: &enableSMS,
		Phone:      &phone,
	})

	assert.NoError(t, err)
	assert.True(t, prefs.SMSEnabled)
	assert.True(t, prefs.EmailEnabled)
	repo.AssertExpectations(t)
}
