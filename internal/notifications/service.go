package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Service struct {
	repo     Repository
	channels []Channel
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, channels []Channel, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		channels: channels,
		logger:   logger,
		now:      time.Now,
	}
}

// Notify records an in-app notification and fans it out to every
// channel the user enabled. Channel failures are logged, not returned:
// the in-app record is the delivery of record.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	n := &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      notifType,
		Title:     title,
		Body:      body,
		CreatedAt: s.now(),
	}
	if err := s.repo.CreateNotification(ctx, n); err != nil {
		return err
	}

	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to load notification preferences, skipping fan-out",
			zap.String("user_id", userID.String()),
			zap.Error(err))
		return nil
	}

	for _, ch := range s.channels {
		if !ch.Enabled(prefs) {
			continue
		}
		if err := ch.Deliver(ctx, prefs, n); err != nil {
			s.logger.Warn("Notification channel delivery failed",
				zap.String("user_id", userID.String()),
				zap.String("type", notifType),
				zap.Error(err))
		}
	}
	return nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]Notification, error) {
	return s.repo.ListByUser(ctx, userID, unreadOnly)
}

func (s *Service) MarkRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	return s.repo.MarkRead(ctx, userID, notificationID)
}

func (s *Service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}

func (s *Service) GetPreferences(ctx context.Context, userID uuid.UUID) (*Preferences, error) {
	return s.repo.GetPreferences(ctx, userID)
}

func (s *Service) UpdatePreferences(ctx context.Context, userID uuid.UUID, req UpdatePreferencesRequest) (*Preferences, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.EmailEnabled != nil {
		prefs.EmailEnabled = *req.EmailEnabled
	}
	if req.SMSEnabled != nil {
		prefs.SMSEnabled = *req.SMSEnabled
	}
	if req.Phone != nil {
		prefs.Phone = *req.Phone
	}

	if err := s.repo.UpsertPreferences(ctx, prefs); err != nil {
		return nil, err
	}
	return prefs, nil
}
