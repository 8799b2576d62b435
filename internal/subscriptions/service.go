package subscriptions

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

// PaymentProvider creates hosted checkout sessions. The payment
// platform's internals stay behind this seam; tier changes only land
// through its webhook callbacks.
type PaymentProvider interface {
	CreateCheckout(ctx context.Context, contractorID uuid.UUID, plan Plan) (*CheckoutSession, error)
}

// TierStore reads and writes the contractor's subscription tier
type TierStore interface {
	GetTier(ctx context.Context, contractorID uuid.UUID) (badges.SubscriptionTier, error)
	SetTier(ctx context.Context, contractorID uuid.UUID, tier badges.SubscriptionTier) error
}

// BadgeRecomputer re-evaluates the contractor's badge set after a tier
// change. Membership badges track the current tier, so a downgrade
// removes them on the next evaluation.
type BadgeRecomputer interface {
	Recompute(ctx context.Context, contractorID uuid.UUID) (badges.Delta, error)
}

type Service struct {
	provider      PaymentProvider
	tiers         TierStore
	badges        BadgeRecomputer
	webhookSecret string
	logger        *zap.Logger
}

func NewService(provider PaymentProvider, tiers TierStore, recomputer BadgeRecomputer, webhookSecret string, logger *zap.Logger) *Service {
	return &Service{
		provider:      provider,
		tiers:         tiers,
		badges:        recomputer,
		webhookSecret: webhookSecret,
		logger:        logger,
	}
}

func (s *Service) Plans() []Plan {
	return Plans()
}

func (s *Service) CurrentPlan(ctx context.Context, contractorID uuid.UUID) (Plan, error) {
	tier, err := s.tiers.GetTier(ctx, contractorID)
	if err != nil {
		return Plan{}, err
	}
	return PlanByTier(tier)
}

// CreateCheckout starts the provider checkout flow for a paid tier
func (s *Service) CreateCheckout(ctx context.Context, contractorID uuid.UUID, tier badges.SubscriptionTier) (*CheckoutSession, error) {
	plan, err := PlanByTier(tier)
	if err != nil {
		return nil, err
	}
	if plan.PriceCents == 0 {
		return nil, fmt.Errorf("tier %s needs no checkout", tier)
	}
	return s.provider.CreateCheckout(ctx, contractorID, plan)
}

// VerifySignature checks the HMAC-SHA256 signature a provider attaches
// to its webhook payloads
func (s *Service) VerifySignature(payload []byte, signature string) error {
	mac := hmac.New(sha256.New, []byte(s.webhookSecret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return ErrInvalidSignature
	}
	return nil
}

// HandleWebhook applies a verified provider event: checkout completion
// sets the purchased tier, cancellation drops back to free. Either way
// the badge set is recomputed immediately so membership badges track
// the new tier.
func (s *Service) HandleWebhook(ctx context.Context, event WebhookEvent) error {
	contractorID, err := uuid.Parse(event.ContractorID)
	if err != nil {
		return fmt.Errorf("invalid contractor id in webhook: %w", err)
	}

	var tier badges.SubscriptionTier
	switch event.Type {
	case EventCheckoutCompleted:
		tier = badges.SubscriptionTier(event.Tier)
		if _, err := PlanByTier(tier); err != nil {
			return err
		}
	case EventSubscriptionCancelled:
		tier = badges.TierFree
	default:
		return fmt.Errorf("%w: %s", ErrUnknownEvent, event.Type)
	}

	if err := s.tiers.SetTier(ctx, contractorID, tier); err != nil {
		return err
	}

	if _, err := s.badges.Recompute(ctx, contractorID); err != nil {
		s.logger.Warn("Badge recompute after tier change failed",
			zap.String("contractor_id", contractorID.String()),
			zap.Error(err))
	}

	s.logger.Info("Subscription tier updated",
		zap.String("contractor_id", contractorID.String()),
		zap.String("tier", string(tier)),
		zap.String("event", event.Type))
	return nil
}
