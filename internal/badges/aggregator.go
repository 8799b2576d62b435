package badges

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/pkg/cache"
)

// Store is the engine's boundary to the external data store
type Store interface {
	GetProfile(ctx context.Context, contractorID uuid.UUID) (*ContractorProfile, error)
	ListListingsByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error)
	ListCohort(ctx context.Context, categoryID string) ([]CohortEntry, error)
	ListBadgeRecords(ctx context.Context, contractorID uuid.UUID) ([]BadgeRecord, error)
	ListContractorIDs(ctx context.Context) ([]uuid.UUID, error)

	// ApplyBadgeSet atomically replaces the contractor's badge set: it
	// inserts toCreate, deletes toRemove, rewrites the denormalized badge
	// cache on profile and listings, and bumps the profile version. It
	// returns ErrConflict when version no longer matches.
	ApplyBadgeSet(ctx context.Context, contractorID uuid.UUID, version int64, toCreate []BadgeRecord, toRemove []BadgeType, badgeCache []BadgeType) error
}

// Aggregate bundles everything eligibility evaluation needs for one
// contractor. Cohort holds the sanitized (rating, reviewCount) pairs of
// every listing sharing the primary listing's category.
type Aggregate struct {
	Profile  *ContractorProfile
	Listings []Listing
	Cohort   []CohortEntry
}

// PrimaryListing returns the contractor's first listing, or nil
func (a *Aggregate) PrimaryListing() *Listing {
	if len(a.Listings) == 0 {
		return nil
	}
	return &a.Listings[0]
}

// Aggregator assembles eligibility inputs. Reads only; cohort reads go
// through a TTL cache since a full-category sweep hits the same cohort once
// per member.
type Aggregator struct {
	store  Store
	cache  *cache.TTLCache
	logger *zap.Logger
}

// NewAggregator creates an aggregator
func NewAggregator(store Store, cohortCache *cache.TTLCache, logger *zap.Logger) *Aggregator {
	return &Aggregator{
		store:  store,
		cache:  cohortCache,
		logger: logger,
	}
}

// Aggregate gathers the profile, listings and category cohort for a
// contractor. Returns ErrNotFound when the profile is missing; a contractor
// without listings yields an empty cohort, not an error.
func (a *Aggregator) Aggregate(ctx context.Context, contractorID uuid.UUID) (*Aggregate, error) {
	profile, err := a.store.GetProfile(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("fetch profile %s: %w", contractorID, err)
	}

	listings, err := a.store.ListListingsByContractor(ctx, contractorID)
	if err != nil {
		return nil, fmt.Errorf("fetch listings for %s: %w", contractorID, err)
	}

	agg := &Aggregate{
		Profile:  profile,
		Listings: listings,
	}
	if len(listings) == 0 || listings[0].CategoryID == "" {
		return agg, nil
	}

	cohort, err := a.fetchCohort(ctx, listings[0].CategoryID)
	if err != nil {
		return nil, fmt.Errorf("fetch cohort %q: %w", listings[0].CategoryID, err)
	}
	agg.Cohort = cohort

	return agg, nil
}

func (a *Aggregator) fetchCohort(ctx context.Context, categoryID string) ([]CohortEntry, error) {
	key := "cohort:" + categoryID
	if cached, ok := a.cache.Get(key); ok {
		return cached.([]CohortEntry), nil
	}

	raw, err := a.store.ListCohort(ctx, categoryID)
	if err != nil {
		return nil, err
	}

	cohort := a.sanitizeCohort(categoryID, raw)
	a.cache.Set(key, cohort)

	return cohort, nil
}

// sanitizeCohort drops malformed cohort rows instead of failing the whole
// computation; a bad listing is a data-integrity signal, not a fatal error.
func (a *Aggregator) sanitizeCohort(categoryID string, raw []CohortEntry) []CohortEntry {
	cohort := make([]CohortEntry, 0, len(raw))
	for _, e := range raw {
		if e.ContractorID == uuid.Nil || e.ReviewCount < 0 || e.RatingValue < 0 || e.RatingValue > 5 {
			a.logger.Warn("excluding malformed cohort entry",
				zap.String("category", categoryID),
				zap.String("contractorId", e.ContractorID.String()),
				zap.Float64("rating", e.RatingValue),
				zap.Int("reviews", e.ReviewCount),
			)
			continue
		}
		cohort = append(cohort, e)
	}
	return cohort
}

// InvalidateCohort evicts a category's cached cohort; listing writers call
// this after mutating rating aggregates.
func (a *Aggregator) InvalidateCohort(categoryID string) {
	a.cache.Delete("cohort:" + categoryID)
}
