package listings

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/pkg/cache"
)

// CohortInvalidator drops cached category cohort stats after a write
// that changes ranking inputs
type CohortInvalidator interface {
	InvalidateCohort(categoryID string)
}

type noopInvalidator struct{}

func (noopInvalidator) InvalidateCohort(string) {}

type Service struct {
	repo     Repository
	search   SearchIndex
	cache    *cache.TTLCache
	cohorts  CohortInvalidator
	logger   *zap.Logger
	cacheTTL time.Duration
}

func NewService(repo Repository, search SearchIndex, c *cache.TTLCache, cohorts CohortInvalidator, cacheTTL time.Duration, logger *zap.Logger) *Service {
	if cohorts == nil {
		cohorts = noopInvalidator{}
	}
	return &Service{
		repo:     repo,
		search:   search,
		cache:    c,
		cohorts:  cohorts,
		logger:   logger,
		cacheTTL: cacheTTL,
	}
}

func listingCacheKey(id uuid.UUID) string {
	return "listing:" + id.String()
}

func (s *Service) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	if cached, ok := s.cache.Get(listingCacheKey(id)); ok {
		return cached.(*Listing), nil
	}

	listing, err := s.repo.GetListing(ctx, id)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(listingCacheKey(id), listing, s.cacheTTL)
	return listing, nil
}

func (s *Service) CreateListing(ctx context.Context, contractorID uuid.UUID, req CreateListingRequest) (*Listing, error) {
	if req.PriceMax > 0 && req.PriceMin > req.PriceMax {
		return nil, fmt.Errorf("price_min %.2f exceeds price_max %.2f", req.PriceMin, req.PriceMax)
	}

	listing := &Listing{
		ID:           uuid.New(),
		ContractorID: contractorID,
		CategoryID:   req.CategoryID,
		Title:        req.Title,
		Description:  req.Description,
		ServiceArea:  req.ServiceArea,
		PriceMin:     req.PriceMin,
		PriceMax:     req.PriceMax,
		Badges:       []string{},
		Active:       true,
		CreatedAt:    time.Now(),
	}
	if err := s.repo.CreateListing(ctx, listing); err != nil {
		return nil, err
	}

	s.indexAsync(listing)
	s.cohorts.InvalidateCohort(listing.CategoryID)

	s.logger.Info("Listing created",
		zap.String("listing_id", listing.ID.String()),
		zap.String("contractor_id", contractorID.String()),
		zap.String("category_id", listing.CategoryID))
	return listing, nil
}

func (s *Service) UpdateListing(ctx context.Context, contractorID, listingID uuid.UUID, req UpdateListingRequest) (*Listing, error) {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.ContractorID != contractorID {
		return nil, ErrForbidden
	}

	if req.Title != "" {
		listing.Title = req.Title
	}
	if req.Description != "" {
		listing.Description = req.Description
	}
	if req.ServiceArea != "" {
		listing.ServiceArea = req.ServiceArea
	}
	if req.PriceMin > 0 {
		listing.PriceMin = req.PriceMin
	}
	if req.PriceMax > 0 {
		listing.PriceMax = req.PriceMax
	}
	if req.Active != nil {
		listing.Active = *req.Active
	}

	if err := s.repo.UpdateListing(ctx, listing); err != nil {
		return nil, err
	}

	s.cache.Delete(listingCacheKey(listingID))
	s.indexAsync(listing)
	if req.Active != nil {
		s.cohorts.InvalidateCohort(listing.CategoryID)
	}
	return listing, nil
}

func (s *Service) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error) {
	return s.repo.ListByContractor(ctx, contractorID)
}

// Browse serves filtered listing pages. Text queries go through the
// search index first; on index failure the SQL path answers instead so
// browse never hard-fails on a degraded cluster.
func (s *Service) Browse(ctx context.Context, filter BrowseFilter) (*BrowseResult, error) {
	filter.Normalize()

	if filter.Query != "" && s.search != nil {
		result, err := s.browseViaSearch(ctx, filter)
		if err == nil {
			return result, nil
		}
		s.logger.Warn("Search index unavailable, falling back to SQL browse", zap.Error(err))
	}

	return s.repo.Browse(ctx, filter)
}

func (s *Service) browseViaSearch(ctx context.Context, filter BrowseFilter) (*BrowseResult, error) {
	ids, total, err := s.search.Search(ctx, filter)
	if err != nil {
		return nil, err
	}

	fetched, err := s.repo.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}

	// Restore index relevance order; GetByIDs does not preserve it.
	byID := make(map[uuid.UUID]Listing, len(fetched))
	for _, l := range fetched {
		byID[l.ID] = l
	}
	ordered := make([]Listing, 0, len(ids))
	for _, id := range ids {
		if l, ok := byID[id]; ok {
			ordered = append(ordered, l)
		}
	}

	return &BrowseResult{
		Listings: ordered,
		Total:    total,
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	const key = "categories"
	if cached, ok := s.cache.Get(key); ok {
		return cached.([]Category), nil
	}

	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, err
	}
	s.cache.SetWithTTL(key, categories, s.cacheTTL)
	return categories, nil
}

// UpdateRatingAggregate persists a listing's recomputed rating inputs.
// Called by the reviews module after a review lands.
func (s *Service) UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error {
	listing, err := s.repo.GetListing(ctx, listingID)
	if err != nil {
		return err
	}
	if err := s.repo.UpdateRatingAggregate(ctx, listingID, ratingValue, reviewCount); err != nil {
		return err
	}

	s.cache.Delete(listingCacheKey(listingID))
	s.cohorts.InvalidateCohort(listing.CategoryID)

	listing.RatingValue = ratingValue
	listing.ReviewCount = reviewCount
	s.indexAsync(listing)
	return nil
}

func (s *Service) ToggleBookmark(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	if _, err := s.repo.GetListing(ctx, listingID); err != nil {
		return false, err
	}
	return s.repo.ToggleBookmark(ctx, userID, listingID)
}

func (s *Service) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]Listing, error) {
	return s.repo.ListBookmarked(ctx, userID)
}

// indexAsync pushes the listing to the search index without blocking
// the request. Index writes are best-effort; SQL stays authoritative.
func (s *Service) indexAsync(listing *Listing) {
	if s.search == nil {
		return
	}
	copied := *listing
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.search.IndexListing(ctx, &copied); err != nil {
			s.logger.Warn("Failed to index listing",
				zap.String("listing_id", copied.ID.String()),
				zap.Error(err))
		}
	}()
}
