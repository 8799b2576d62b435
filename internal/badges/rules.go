package badges

// Eligibility rules. Each rule is a total function over well-formed
// aggregated data: missing optional inputs mean "not satisfied", never an
// error, and evaluation order does not matter.

const (
	topRatedMinReviews   = 10
	topRatedMinRating    = 4.5
	quickResponderMinSamples = 5
	quickResponderMaxMinutes = 120.0
	bestOfYearMinReviews = 20
	bestOfYearMinRating  = 4.7
)

func eliteMember(p *ContractorProfile) bool {
	return p.SubscriptionTier == TierElite
}

func proMember(p *ContractorProfile) bool {
	return p.SubscriptionTier == TierPro
}

func verifiedPro(p *ContractorProfile) bool {
	return p.LicenseVerified && p.InsuranceVerified
}

func topRated(l *Listing) bool {
	return l != nil && l.ReviewCount >= topRatedMinReviews && l.RatingValue >= topRatedMinRating
}

func quickResponder(p *ContractorProfile) bool {
	return p.ResponseSampleCount >= quickResponderMinSamples &&
		p.AverageResponseMinutes < quickResponderMaxMinutes
}

// bestOfYearPrefilter is the cheap rejection applied before any cohort
// ranking is computed.
func bestOfYearPrefilter(l *Listing) bool {
	return l != nil && l.ReviewCount >= bestOfYearMinReviews && l.RatingValue >= bestOfYearMinRating
}

// evaluateBadges returns the badge set the aggregated contractor currently
// qualifies for. Deterministic for fixed input.
func evaluateBadges(agg *Aggregate) BadgeSet {
	set := NewBadgeSet()
	p := agg.Profile

	if eliteMember(p) {
		set.Add(BadgeEliteMember)
	}
	if proMember(p) {
		set.Add(BadgeProMember)
	}
	if verifiedPro(p) {
		set.Add(BadgeVerifiedPro)
	}
	if quickResponder(p) {
		set.Add(BadgeQuickResponder)
	}

	listing := agg.PrimaryListing()
	if topRated(listing) {
		set.Add(BadgeTopRated)
	}
	if bestOfYearPrefilter(listing) && inTopPercentile(agg.Cohort, p.ContractorID) {
		set.Add(BadgeBestOfYear)
	}

	return set
}
