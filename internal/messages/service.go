package messages

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/auth"
)

// ResponseRecorder feeds contractor response-time samples into the
// profile aggregate behind quick_responder eligibility
type ResponseRecorder interface {
	RecordResponseSample(ctx context.Context, contractorID uuid.UUID, minutes float64) error
}

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type Service struct {
	repo      Repository
	responses ResponseRecorder
	notifier  Notifier
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(repo Repository, responses ResponseRecorder, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:      repo,
		responses: responses,
		notifier:  notifier,
		logger:    logger,
		now:       time.Now,
	}
}

// Send delivers a message, creating the conversation on first contact.
// A contractor's reply to pending homeowner messages is sampled into
// their response-time average.
func (s *Service) Send(ctx context.Context, senderID uuid.UUID, senderRole auth.Role, req SendMessageRequest) (*Message, error) {
	if senderID == req.RecipientID {
		return nil, ErrSelfConversation
	}

	homeownerID, contractorID := senderID, req.RecipientID
	if senderRole == auth.RoleContractor {
		homeownerID, contractorID = req.RecipientID, senderID
	}

	conv, err := s.repo.GetOrCreateConversation(ctx, homeownerID, contractorID)
	if err != nil {
		return nil, err
	}

	if senderRole == auth.RoleContractor {
		s.sampleResponseTime(ctx, conv, homeownerID, contractorID)
	}

	msg := &Message{
		ID:             uuid.New(),
		ConversationID: conv.ID,
		SenderID:       senderID,
		Body:           req.Body,
		CreatedAt:      s.now(),
	}
	if err := s.repo.CreateMessage(ctx, msg); err != nil {
		return nil, err
	}

	if err := s.notifier.Notify(ctx, req.RecipientID, "message_received",
		"New message", "You have a new message."); err != nil {
		s.logger.Warn("Failed to notify message recipient",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err))
	}
	return msg, nil
}

func (s *Service) sampleResponseTime(ctx context.Context, conv *Conversation, homeownerID, contractorID uuid.UUID) {
	oldest, err := s.repo.OldestUnreadFrom(ctx, conv.ID, homeownerID)
	if err != nil {
		s.logger.Warn("Failed to measure response time",
			zap.String("conversation_id", conv.ID.String()),
			zap.Error(err))
		return
	}
	if oldest == nil {
		return
	}

	minutes := s.now().Sub(*oldest).Minutes()
	if minutes < 0 {
		return
	}
	if err := s.responses.RecordResponseSample(ctx, contractorID, minutes); err != nil {
		s.logger.Warn("Failed to record response sample",
			zap.String("contractor_id", contractorID.String()),
			zap.Error(err))
	}
}

func (s *Service) ListConversations(ctx context.Context, userID uuid.UUID) ([]ConversationSummary, error) {
	return s.repo.ListConversations(ctx, userID)
}

func (s *Service) ListMessages(ctx context.Context, callerID, conversationID uuid.UUID) ([]Message, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return nil, err
	}
	if conv.HomeownerID != callerID && conv.ContractorID != callerID {
		return nil, ErrNotParticipant
	}
	return s.repo.ListMessages(ctx, conversationID)
}

// MarkRead flags the counterpart's messages as read
func (s *Service) MarkRead(ctx context.Context, callerID, conversationID uuid.UUID) (int64, error) {
	conv, err := s.repo.GetConversation(ctx, conversationID)
	if err != nil {
		return 0, err
	}
	if conv.HomeownerID != callerID && conv.ContractorID != callerID {
		return 0, ErrNotParticipant
	}
	return s.repo.MarkRead(ctx, conversationID, callerID)
}
