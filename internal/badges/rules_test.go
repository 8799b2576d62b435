package badges

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestTopRatedThresholds(t *testing.T) {
	// Scenario A: 12 reviews at 4.6 qualifies
	assert.True(t, topRated(&Listing{ReviewCount: 12, RatingValue: 4.6}))

	// Scenario B: 9 reviews at 5.0 does not - review count below threshold
	assert.False(t, topRated(&Listing{ReviewCount: 9, RatingValue: 5.0}))

	assert.False(t, topRated(&Listing{ReviewCount: 10, RatingValue: 4.49}))
	assert.True(t, topRated(&Listing{ReviewCount: 10, RatingValue: 4.5}))
	assert.False(t, topRated(nil))
}

func TestVerifiedProRequiresBothFlags(t *testing.T) {
	// Scenario C, rule level
	p := &ContractorProfile{LicenseVerified: true, InsuranceVerified: false}
	assert.False(t, verifiedPro(p))

	p.InsuranceVerified = true
	assert.True(t, verifiedPro(p))
}

func TestQuickResponderMissingStatsIsFalse(t *testing.T) {
	assert.False(t, quickResponder(&ContractorProfile{}))
	assert.False(t, quickResponder(&ContractorProfile{AverageResponseMinutes: 30, ResponseSampleCount: 4}))
	assert.True(t, quickResponder(&ContractorProfile{AverageResponseMinutes: 119, ResponseSampleCount: 5}))
	assert.False(t, quickResponder(&ContractorProfile{AverageResponseMinutes: 120, ResponseSampleCount: 5}))
}

func TestMembershipBadgesFollowTier(t *testing.T) {
	assert.True(t, eliteMember(&ContractorProfile{SubscriptionTier: TierElite}))
	assert.False(t, eliteMember(&ContractorProfile{SubscriptionTier: TierPro}))
	assert.True(t, proMember(&ContractorProfile{SubscriptionTier: TierPro}))
	assert.False(t, proMember(&ContractorProfile{SubscriptionTier: TierFree}))
}

func TestEvaluateBadgesNoListingSkipsRatingChecks(t *testing.T) {
	agg := &Aggregate{
		Profile: &ContractorProfile{
			ContractorID:           uuid.New(),
			SubscriptionTier:       TierElite,
			LicenseVerified:        true,
			InsuranceVerified:      true,
			AverageResponseMinutes: 60,
			ResponseSampleCount:    10,
		},
	}

	set := evaluateBadges(agg)

	assert.ElementsMatch(t,
		[]BadgeType{BadgeEliteMember, BadgeVerifiedPro, BadgeQuickResponder},
		set.Types(),
	)
}

func TestEvaluateBadgesBestOfYearPrefilter(t *testing.T) {
	id := uuid.New()
	agg := &Aggregate{
		Profile: &ContractorProfile{ContractorID: id, SubscriptionTier: TierFree},
		Listings: []Listing{
			{ContractorID: id, CategoryID: "plumbing", RatingValue: 4.8, ReviewCount: 19},
		},
		Cohort: []CohortEntry{
			{ContractorID: id, RatingValue: 4.8, ReviewCount: 19},
		},
	}

	// 19 reviews fails the pre-filter even though rank would qualify
	set := evaluateBadges(agg)
	assert.False(t, set.Has(BadgeBestOfYear))

	agg.Listings[0].ReviewCount = 20
	agg.Cohort[0].ReviewCount = 20
	set = evaluateBadges(agg)
	assert.True(t, set.Has(BadgeBestOfYear))
	assert.True(t, set.Has(BadgeTopRated))
}

func TestEvaluateBadgesDeterministic(t *testing.T) {
	id := uuid.New()
	agg := &Aggregate{
		Profile: &ContractorProfile{
			ContractorID:           id,
			SubscriptionTier:       TierPro,
			LicenseVerified:        true,
			InsuranceVerified:      true,
			AverageResponseMinutes: 45,
			ResponseSampleCount:    8,
		},
		Listings: []Listing{
			{ContractorID: id, CategoryID: "roofing", RatingValue: 4.9, ReviewCount: 30},
		},
		Cohort: []CohortEntry{
			{ContractorID: id, RatingValue: 4.9, ReviewCount: 30},
			{ContractorID: uuid.New(), RatingValue: 4.1, ReviewCount: 12},
		},
	}

	first := evaluateBadges(agg).Types()
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, evaluateBadges(agg).Types())
	}
}
