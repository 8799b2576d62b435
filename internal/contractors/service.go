package contractors

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

// BadgeRecomputer re-evaluates a contractor's badge set after an event
// that changes eligibility inputs
type BadgeRecomputer interface {
	Recompute(ctx context.Context, contractorID uuid.UUID) (badges.Delta, error)
}

// Notifier delivers an in-app notification to a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error
}

type Service struct {
	repo     Repository
	badges   BadgeRecomputer
	notifier Notifier
	logger   *zap.Logger
	now      func() time.Time
}

func NewService(repo Repository, recomputer BadgeRecomputer, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		repo:     repo,
		badges:   recomputer,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
	}
}

func (s *Service) GetProfile(ctx context.Context, contractorID uuid.UUID) (*Profile, error) {
	return s.repo.GetProfile(ctx, contractorID)
}

// CreateDefaultProfile provisions the empty profile a contractor gets
// on signup. Badge evaluation and listing creation both require the
// profile row to exist.
func (s *Service) CreateDefaultProfile(ctx context.Context, contractorID uuid.UUID) error {
	if err := s.repo.CreateDefaultProfile(ctx, contractorID); err != nil {
		return err
	}
	s.logger.Info("Created default contractor profile",
		zap.String("contractor_id", contractorID.String()))
	return nil
}

func (s *Service) UpdateProfile(ctx context.Context, contractorID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	return s.repo.UpdateProfile(ctx, contractorID, req)
}

// RecordResponseSample adds a messaging response-time observation to
// the contractor's rolling average. Quick-responder eligibility reads
// this aggregate, so the badge set is recomputed afterwards.
func (s *Service) RecordResponseSample(ctx context.Context, contractorID uuid.UUID, minutes float64) error {
	if minutes < 0 {
		return fmt.Errorf("response sample must be non-negative, got %f", minutes)
	}
	if err := s.repo.RecordResponseSample(ctx, contractorID, minutes); err != nil {
		return err
	}
	if _, err := s.badges.Recompute(ctx, contractorID); err != nil {
		s.logger.Warn("Badge recompute after response sample failed",
			zap.String("contractor_id", contractorID.String()),
			zap.Error(err))
	}
	return nil
}

func (s *Service) SubmitVerification(ctx context.Context, contractorID uuid.UUID, req SubmitVerificationRequest) (*VerificationRequest, error) {
	if _, err := s.repo.GetProfile(ctx, contractorID); err != nil {
		return nil, err
	}

	vr := &VerificationRequest{
		ID:              uuid.New(),
		ContractorID:    contractorID,
		LicenseDocURL:   req.LicenseDocURL,
		InsuranceDocURL: req.InsuranceDocURL,
		Status:          VerificationPending,
		CreatedAt:       s.now(),
	}
	if err := s.repo.CreateVerificationRequest(ctx, vr); err != nil {
		return nil, err
	}

	s.logger.Info("Verification request submitted",
		zap.String("request_id", vr.ID.String()),
		zap.String("contractor_id", contractorID.String()))
	return vr, nil
}

func (s *Service) ListPendingVerifications(ctx context.Context) ([]VerificationRequest, error) {
	return s.repo.ListVerificationRequests(ctx, VerificationPending)
}

// ReviewVerification applies an admin decision. Approval flips the
// profile's license and insurance flags, which feed verified_pro
// eligibility, so the badge set is recomputed immediately.
func (s *Service) ReviewVerification(ctx context.Context, requestID, reviewerID uuid.UUID, req ReviewVerificationRequest) (*VerificationRequest, error) {
	status := VerificationRejected
	if req.Approve {
		status = VerificationApproved
	}

	vr, err := s.repo.ReviewVerificationRequest(ctx, requestID, status, req.Notes, reviewerID, s.now())
	if err != nil {
		return nil, err
	}

	if status == VerificationApproved {
		if _, err := s.badges.Recompute(ctx, vr.ContractorID); err != nil {
			s.logger.Warn("Badge recompute after verification approval failed",
				zap.String("contractor_id", vr.ContractorID.String()),
				zap.Error(err))
		}
	}

	title := "Verification rejected"
	body := "Your verification request was rejected."
	notifType := "verification_rejected"
	if status == VerificationApproved {
		title = "Verification approved"
		body = "Your license and insurance are now verified."
		notifType = "verification_approved"
	}
	if req.Notes != "" {
		body = body + " " + req.Notes
	}
	if err := s.notifier.Notify(ctx, vr.ContractorID, notifType, title, body); err != nil {
		s.logger.Warn("Failed to notify contractor of verification decision",
			zap.String("contractor_id", vr.ContractorID.String()),
			zap.Error(err))
	}

	s.logger.Info("Verification request reviewed",
		zap.String("request_id", requestID.String()),
		zap.String("status", string(status)))
	return vr, nil
}
