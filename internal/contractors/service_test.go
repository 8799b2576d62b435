package contractors

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"listinghub/marketplace/marketplace-backend/internal/badges"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) GetProfile(ctx context.Context, contractorID uuid.UUID) (*Profile, error) {
	args := m.Called(ctx, contractorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) CreateDefaultProfile(ctx context.Context, contractorID uuid.UUID) error {
	args := m.Called(ctx, contractorID)
	return args.Error(0)
}

func (m *MockRepository) UpdateProfile(ctx context.Context, contractorID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	args := m.Called(ctx, contractorID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Profile), args.Error(1)
}

func (m *MockRepository) RecordResponseSample(ctx context.Context, contractorID uuid.UUID, minutes float64) error {
	args := m.Called(ctx, contractorID, minutes)
	return args.Error(0)
}

func (m *MockRepository) CreateVerificationRequest(ctx context.Context, req *VerificationRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockRepository) GetVerificationRequest(ctx context.Context, id uuid.UUID) (*VerificationRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerificationRequest), args.Error(1)
}

func (m *MockRepository) ListVerificationRequests(ctx context.Context, status VerificationStatus) ([]VerificationRequest, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]VerificationRequest), args.Error(1)
}

func (m *MockRepository) ReviewVerificationRequest(ctx context.Context, id uuid.UUID, status VerificationStatus, notes string, reviewedBy uuid.UUID, reviewedAt time.Time) (*VerificationRequest, error) {
	args := m.Called(ctx, id, status, notes, reviewedBy, reviewedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*VerificationRequest), args.Error(1)
}

type MockRecomputer struct {
	mock.Mock
}

func (m *MockRecomputer) Recompute(ctx context.Context, contractorID uuid.UUID) (badges.Delta, error) {
	args := m.Called(ctx, contractorID)
	return args.Get(0).(badges.Delta), args.Error(1)
}

type MockNotifier struct {
	mock.Mock
}

func (m *MockNotifier) Notify(ctx context.Context, userID uuid.UUID, notifType, title, body string) error {
	args := m.Called(ctx, userID, notifType, title, body)
	return args.Error(0)
}

func newTestService(repo *MockRepository, recomputer *MockRecomputer, notifier *MockNotifier) *Service {
	svc := NewService(repo, recomputer, notifier, zap.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) }
	return svc
}

func TestSubmitVerificationRequiresProfile(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	contractorID := uuid.New()
	repo.On("GetProfile", mock.Anything, contractorID).Return(nil, ErrNotFound)

	_, err := svc.SubmitVerification(context.Background(), contractorID, SubmitVerificationRequest{
		LicenseDocURL:   "https://docs.example.com/license.pdf",
		InsuranceDocURL: "https://docs.example.com/insurance.pdf",
	})

	assert.ErrorIs(t, err, ErrNotFound)
	repo.AssertNotCalled(t, "CreateVerificationRequest", mock.Anything, mock.Anything)
}

func TestSubmitVerificationCreatesPendingRequest(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	contractorID := uuid.New()
	repo.On("GetProfile", mock.Anything, contractorID).Return(&Profile{ContractorID: contractorID}, nil)
	repo.On("CreateVerificationRequest", mock.Anything, mock.MatchedBy(func(vr *VerificationRequest) bool {
		return vr.ContractorID == contractorID && vr.Status == VerificationPending
	})).Return(nil)

	vr, err := svc.SubmitVerification(context.Background(), contractorID, SubmitVerificationRequest{
		LicenseDocURL:   "https://docs.example.com/license.pdf",
		InsuranceDocURL: "https://docs.example.com/insurance.pdf",
	})

	assert.NoError(t, err)
	assert.Equal(t, VerificationPending, vr.Status)
	assert.NotEqual(t, uuid.Nil, vr.ID)
	repo.AssertExpectations(t)
}

func TestReviewVerificationApprovalTriggersRecompute(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	contractorID := uuid.New()
	requestID := uuid.New()
	reviewerID := uuid.New()

	reviewed := &VerificationRequest{
		ID:           requestID,
		ContractorID: contractorID,
		Status:       VerificationApproved,
	}
	repo.On("ReviewVerificationRequest", mock.Anything, requestID, VerificationApproved, "looks good", reviewerID, mock.Anything).
		Return(reviewed, nil)
	recomputer.On("Recompute", mock.Anything, contractorID).Return(badges.Delta{}, nil)
	notifier.On("Notify", mock.Anything, contractorID, "verification_approved", mock.Anything, mock.Anything).Return(nil)

	vr, err := svc.ReviewVerification(context.Background(), requestID, reviewerID, ReviewVerificationRequest{
		Approve: true,
		Notes:   "looks good",
	})

	assert.NoError(t, err)
	assert.Equal(t, VerificationApproved, vr.Status)
	recomputer.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestReviewVerificationRejectionSkipsRecompute(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	contractorID := uuid.New()
	requestID := uuid.New()
	reviewerID := uuid.New()

	reviewed := &VerificationRequest{
		ID:           requestID,
		ContractorID: contractorID,
		Status:       VerificationRejected,
	}
	repo.On("ReviewVerificationRequest", mock.Anything, requestID, VerificationRejected, "blurry documents", reviewerID, mock.Anything).
		Return(reviewed, nil)
	notifier.On("Notify", mock.Anything, contractorID, "verification_rejected", mock.Anything, mock.Anything).Return(nil)

	vr, err := svc.ReviewVerification(context.Background(), requestID, reviewerID, ReviewVerificationRequest{
		Approve: false,
		Notes:   "blurry documents",
	})

	assert.NoError(t, err)
	assert.Equal(t, VerificationRejected, vr.Status)
	recomputer.AssertNotCalled(t, "Recompute", mock.Anything, mock.Anything)
	notifier.AssertExpectations(t)
}

func TestRecordResponseSampleRejectsNegative(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	err := svc.RecordResponseSample(context.Background(), uuid.New(), -5)

	assert.Error(t, err)
	repo.AssertNotCalled(t, "RecordResponseSample", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordResponseSampleRecomputesBadges(t *testing.T) {
	repo := new(MockRepository)
	recomputer := new(MockRecomputer)
	notifier := new(MockNotifier)
	svc := newTestService(repo, recomputer, notifier)

	contractorID := uuid.New()
	repo.On("RecordResponseSample", mock.Anything, contractorID, 42.5).Return(nil)
	recomputer.On("Recompute", mock.Anything, contractorID).Return(badges.Delta{}, nil)

	err := svc.RecordResponseSample(context.Background(), contractorID, 42.5)

	assert.NoError(t, err)
	recomputer.AssertExpectations(t)
}
