package subscriptions

import (
	"errors"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

var (
	ErrUnknownTier      = errors.New("unknown subscription tier")
	ErrInvalidSignature = errors.New("webhook signature mismatch")
	ErrUnknownEvent     = errors.New("unknown webhook event type")
)

// Plan describes one subscription tier offered to contractors
type Plan struct {
	Tier             badges.SubscriptionTier `json:"tier"`
	Name             string                  `json:"name"`
	PriceCents       int                     `json:"price_cents"`
	Features         []string                `json:"features"`
	JobResponseLimit int                     `json:"job_response_limit"` // 0 means unlimited
	FeaturedListing  bool                    `json:"featured_listing"`
	PrioritySearch   bool                    `json:"priority_search"`
	SMSNotifications bool                    `json:"sms_notifications"`
}

var plans = []Plan{
	{
		Tier:       badges.TierFree,
		Name:       "Free",
		PriceCents: 0,
		Features: []string{
			"Basic listing",
			"Respond to 3 jobs per month",
			"Standard search visibility",
			"Email notifications",
			"Basic profile",
		},
		JobResponseLimit: 3,
	},
	{
		Tier:       badges.TierPro,
		Name:       "Pro",
		PriceCents: 4900,
		Features: []string{
			"Featured listing in category",
			"Unlimited job responses",
			"Priority in search results",
			"Pro Member badge",
			"Basic analytics dashboard",
			"Email & SMS notifications",
			"Portfolio gallery",
			"Response time tracking",
		},
		FeaturedListing:  true,
		PrioritySearch:   true,
		SMSNotifications: true,
	},
	{
		Tier:       badges.TierElite,
		Name:       "Elite",
		PriceCents: 9900,
		Features: []string{
			"Everything in Pro",
			"Homepage featured rotation",
			"Top position in search",
			"Elite Pro badge",
			"Advanced analytics dashboard",
			"Instant lead notifications",
			"Priority customer support",
			"Custom service areas",
			"Unlimited portfolio items",
		},
		FeaturedListing:  true,
		PrioritySearch:   true,
		SMSNotifications: true,
	},
}

// Plans returns every offered plan, cheapest first
func Plans() []Plan {
	out := make([]Plan, len(plans))
	copy(out, plans)
	return out
}

// PlanByTier looks a plan up by its tier
func PlanByTier(tier badges.SubscriptionTier) (Plan, error) {
	for _, p := range plans {
		if p.Tier == tier {
			return p, nil
		}
	}
	return Plan{}, ErrUnknownTier
}

// CheckoutRequest asks the payment provider for a checkout session
type CheckoutRequest struct {
	Tier badges.SubscriptionTier `json:"tier" binding:"required"`
}

// CheckoutSession is the provider-hosted payment page handed back to
// the client
type CheckoutSession struct {
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// WebhookEvent is a payment provider callback
type WebhookEvent struct {
	Type         string `json:"type"`
	ContractorID string `json:"contractor_id"`
	Tier         string `json:"tier"`
}

const (
	EventCheckoutCompleted     = "checkout.completed"
	EventSubscriptionCancelled = "subscription.cancelled"
)
