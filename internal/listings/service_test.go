package listings

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/pkg/cache"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetListing(ctx context.Context, id uuid.UUID) (*Listing, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Listing), args.Error(1)
}

func (m *MockRepository) CreateListing(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockRepository) UpdateListing(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]Listing, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) Browse(ctx context.Context, filter BrowseFilter) (*BrowseResult, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*BrowseResult), args.Error(1)
}

func (m *MockRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Listing, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

func (m *MockRepository) UpdateRatingAggregate(ctx context.Context, listingID uuid.UUID, ratingValue float64, reviewCount int) error {
	args := m.Called(ctx, listingID, ratingValue, reviewCount)
	return args.Error(0)
}

func (m *MockRepository) ListCategories(ctx context.Context) ([]Category, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Category), args.Error(1)
}

func (m *MockRepository) ToggleBookmark(ctx context.Context, userID, listingID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, listingID)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) ListBookmarked(ctx context.Context, userID uuid.UUID) ([]Listing, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Listing), args.Error(1)
}

type MockSearchIndex struct {
	mock.Mock
}

func (m *MockSearchIndex) IndexListing(ctx context.Context, listing *Listing) error {
	args := m.Called(ctx, listing)
	return args.Error(0)
}

func (m *MockSearchIndex) RemoveListing(ctx context.Context, listingID uuid.UUID) error {
	args := m.Called(ctx, listingID)
	return args.Error(0)
}

func (m *MockSearchIndex) Search(ctx context.Context, filter BrowseFilter) ([]uuid.UUID, int, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]uuid.UUID), args.Int(1), args.Error(2)
}

type MockInvalidator struct {
	mock.Mock
}

func (m *MockInvalidator) InvalidateCohort(categoryID string) {
	m.Called(categoryID)
}

func newTestService(repo *MockRepository, search SearchIndex, invalidator CohortInvalidator) *Service {
	return NewService(repo, search, cache.New(5*time.Minute), invalidator, 5*time.Minute, zap.NewNop())
}

func TestBrowseFallsBackToSQLWhenSearchFails(t *testing.T) {
	repo := new(MockRepository)
	search := new(MockSearchIndex)
	svc := newTestService(repo, search, nil)

	filter := BrowseFilter{Query: "plumbing", Page: 1, PageSize: 20}
	search.On("Search", mock.Anything, filter).Return(nil, 0, errors.New("connection refused"))

	expected := &BrowseResult{Listings: []Listing{{Title: "Plumbing repair"}}, Total: 1, Page: 1, PageSize: 20}
	repo.On("Browse", mock.Anything, filter).Return(expected, nil)

	result, err := svc.Browse(context.Background(), filter)

	assert.NoError(t, err)
	assert.Equal(t, expected, result)
	repo.AssertExpectations(t)
}

func TestBrowsePreservesSearchRelevanceOrder(t *testing.T) {
	repo := new(MockRepository)
	search := new(MockSearchIndex)
	svc := newTestService(repo, search, nil)

	first := uuid.New()
	second := uuid.New()
	filter := BrowseFilter{Query: "roofing", Page: 1, PageSize: 20}

	search.On("Search", mock.Anything, filter).Return([]uuid.UUID{first, second}, 2, nil)
	// SQL returns them in the opposite order.
	repo.On("GetByIDs", mock.Anything, []uuid.UUID{first, second}).Return([]Listing{
		{ID: second, Title: "Roof inspection"},
		{ID: first, Title: "Roof replacement"},
	}, nil)

	result, err := svc.Browse(context.Background(), filter)

	assert.NoError(t, err)
	assert.Len(t, result.Listings, 2)
	assert.Equal(t, first, result.Listings[0].ID)
	assert.Equal(t, second, result.Listings[1].ID)
	assert.Equal(t, 2, result.Total)
}

func TestBrowseWithoutQuerySkipsSearchIndex(t *testing.T) {
	repo := new(MockRepository)
	search := new(MockSearchIndex)
	svc := newTestService(repo, search, nil)

	filter := BrowseFilter{CategoryID: "plumbing", Page: 1, PageSize: 20}
	expected := &BrowseResult{Listings: []Listing{}, Page: 1, PageSize: 20}
	repo.On("Browse", mock.Anything, filter).Return(expected, nil)

	_, err := svc.Browse(context.Background(), filter)

	assert.NoError(t, err)
	search.AssertNotCalled(t, "Search", mock.Anything, mock.Anything)
}

func TestGetListingServesSecondReadFromCache(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	id := uuid.New()
	listing := &Listing{ID: id, Title: "Deck building"}
	repo.On("GetListing", mock.Anything, id).Return(listing, nil).Once()

	first, err := svc.GetListing(context.Background(), id)
	assert.NoError(t, err)

	second, err := svc.GetListing(context.Background(), id)
	assert.NoError(t, err)
	assert.Equal(t, first, second)
	repo.AssertNumberOfCalls(t, "GetListing", 1)
}

func TestUpdateListingRejectsOtherContractor(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	owner := uuid.New()
	intruder := uuid.New()
	listingID := uuid.New()
	repo.On("GetListing", mock.Anything, listingID).Return(&Listing{ID: listingID, ContractorID: owner}, nil)

	_, err := svc.UpdateListing(context.Background(), intruder, listingID, UpdateListingRequest{Title: "hijacked"})

	assert.ErrorIs(t, err, ErrForbidden)
	repo.AssertNotCalled(t, "UpdateListing", mock.Anything, mock.Anything)
}

func TestUpdateRatingAggregateInvalidatesCohort(t *testing.T) {
	repo := new(MockRepository)
	invalidator := new(MockInvalidator)
	svc := newTestService(repo, nil, invalidator)

	listingID := uuid.New()
	repo.On("GetListing", mock.Anything, listingID).Return(&Listing{ID: listingID, CategoryID: "electrical"}, nil)
	repo.On("UpdateRatingAggregate", mock.Anything, listingID, 4.6, 12).Return(nil)
	invalidator.On("InvalidateCohort", "electrical").Return()

	err := svc.UpdateRatingAggregate(context.Background(), listingID, 4.6, 12)

	assert.NoError(t, err)
	invalidator.AssertExpectations(t)
}

func TestCreateListingRejectsInvertedPriceRange(t *testing.T) {
	repo := new(MockRepository)
	svc := newTestService(repo, nil, nil)

	_, err := svc.CreateListing(context.Background(), uuid.New(), CreateListingRequest{
		CategoryID: "plumbing",
		Title:      "Pipe repair",
		PriceMin:   500,
		PriceMax:   100,
	})

	assert.Error(t, err)
	repo.AssertNotCalled(t, "CreateListing", mock.Anything, mock.Anything)
}
