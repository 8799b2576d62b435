package badges

import (
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrNotFound is returned when a contractor profile does not exist.
	// Callers are expected to create a default profile and retry.
	ErrNotFound = errors.New("contractor profile not found")

	// ErrConflict is returned when the atomic badge-set apply detects a
	// concurrent modification of the profile.
	ErrConflict = errors.New("badge set modified concurrently")
)

// AwardValidity is the rolling validity window for performance badges.
const AwardValidity = 365 * 24 * time.Hour

// SubscriptionTier is the contractor's paid plan
type SubscriptionTier string

const (
	TierFree  SubscriptionTier = "free"
	TierPro   SubscriptionTier = "pro"
	TierElite SubscriptionTier = "elite"
)

// BadgeType identifies a qualification badge
type BadgeType string

const (
	BadgeTopRated       BadgeType = "top_rated"
	BadgeBestOfYear     BadgeType = "best_of_year"
	BadgeQuickResponder BadgeType = "quick_responder"
	BadgeVerifiedPro    BadgeType = "verified_pro"
	BadgeEliteMember    BadgeType = "elite_member"
	BadgeProMember      BadgeType = "pro_member"
)

// badgeInfo carries display metadata and the expiry policy per badge type
type badgeInfo struct {
	displayName string
	description string
	expires     bool
}

var badgeCatalog = map[BadgeType]badgeInfo{
	BadgeTopRated:       {"Top Rated", "4.5+ stars with 10+ reviews", true},
	BadgeBestOfYear:     {"Best of the Year", "Top 5% in category", true},
	BadgeQuickResponder: {"Quick Responder", "Responds within 2 hours on average", true},
	BadgeVerifiedPro:    {"Verified Pro", "License and insurance verified", false},
	BadgeEliteMember:    {"Elite Member", "Elite subscription member", false},
	BadgeProMember:      {"Pro Member", "Pro subscription member", false},
}

// Valid reports whether the badge type is a known one
func (b BadgeType) Valid() bool {
	_, ok := badgeCatalog[b]
	return ok
}

// DisplayName returns the user-facing name for the badge
func (b BadgeType) DisplayName() string {
	return badgeCatalog[b].displayName
}

// Description returns the user-facing description for the badge
func (b BadgeType) Description() string {
	return badgeCatalog[b].description
}

// Expires reports whether the badge carries the rolling 1-year validity.
// Non-expiring badges track current state and are removed the moment their
// condition stops holding.
func (b BadgeType) Expires() bool {
	return badgeCatalog[b].expires
}

// ContractorProfile is the per-contractor state the engine evaluates.
// The Badges field is a denormalized cache of the badge records and is
// only ever written together with them.
type ContractorProfile struct {
	ContractorID           uuid.UUID        `db:"contractor_id" json:"contractor_id"`
	LicenseVerified        bool             `db:"license_verified" json:"license_verified"`
	InsuranceVerified      bool             `db:"insurance_verified" json:"insurance_verified"`
	SubscriptionTier       SubscriptionTier `db:"subscription_tier" json:"subscription_tier"`
	AverageResponseMinutes float64          `db:"avg_response_minutes" json:"average_response_minutes"`
	ResponseSampleCount    int              `db:"response_sample_count" json:"response_sample_count"`
	Badges                 []BadgeType      `db:"-" json:"badges"`
	Version                int64            `db:"version" json:"-"`
}

// Listing is the ranking input owned by the listings module
type Listing struct {
	ID           uuid.UUID `db:"id" json:"id"`
	ContractorID uuid.UUID `db:"contractor_id" json:"contractor_id"`
	CategoryID   string    `db:"category_id" json:"category_id"`
	RatingValue  float64   `db:"rating_value" json:"rating_value"`
	ReviewCount  int       `db:"review_count" json:"review_count"`
}

// CohortEntry is one listing's ranking inputs within a category cohort
type CohortEntry struct {
	ContractorID uuid.UUID `db:"contractor_id" json:"contractor_id"`
	RatingValue  float64   `db:"rating_value" json:"rating_value"`
	ReviewCount  int       `db:"review_count" json:"review_count"`
}

// CategoryScore is a contractor's ephemeral composite score within a
// category; computed during ranking, never persisted.
type CategoryScore struct {
	ContractorID uuid.UUID
	Score        float64
}

// BadgeRecord is a materialized badge award
type BadgeRecord struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	ContractorID uuid.UUID  `db:"contractor_id" json:"contractor_id"`
	Type         BadgeType  `db:"badge_type" json:"badge_type"`
	DisplayName  string     `db:"display_name" json:"display_name"`
	Description  string     `db:"description" json:"description"`
	AwardedAt    time.Time  `db:"awarded_at" json:"awarded_at"`
	ExpiresAt    *time.Time `db:"expires_at" json:"expires_at,omitempty"`
}

// Expired reports whether the record's validity window has elapsed
func (r BadgeRecord) Expired(now time.Time) bool {
	return r.ExpiresAt != nil && now.After(*r.ExpiresAt)
}

// BadgeSet is an unordered set of badge types
type BadgeSet map[BadgeType]struct{}

// NewBadgeSet builds a set from the given types
func NewBadgeSet(types ...BadgeType) BadgeSet {
	s := make(BadgeSet, len(types))
	for _, t := range types {
		s[t] = struct{}{}
	}
	return s
}

// Has reports set membership
func (s BadgeSet) Has(t BadgeType) bool {
	_, ok := s[t]
	return ok
}

// Add inserts a badge type
func (s BadgeSet) Add(t BadgeType) {
	s[t] = struct{}{}
}

// Types returns the set's members in a stable sorted order
func (s BadgeSet) Types() []BadgeType {
	out := make([]BadgeType, 0, len(s))
	for t := range s {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
