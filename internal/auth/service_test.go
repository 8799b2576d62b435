package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateUser(ctx context.Context, user *User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

func (m *MockRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*User), args.Error(1)
}

// MockProfileCreator is a mock implementation of the ProfileCreator interface
type MockProfileCreator struct {
	mock.Mock
}

func (m *MockProfileCreator) CreateDefaultProfile(ctx context.Context, contractorID uuid.UUID) error {
	args := m.Called(ctx, contractorID)
	return args.Error(0)
}

func newTestService(repo Repository, profiles ProfileCreator) *Service {
	return NewService(repo, profiles, "test-secret", time.Hour, zap.NewNop())
}

func TestRegisterContractorCreatesDefaultProfile(t *testing.T) {
	repo := new(MockRepository)
	profiles := new(MockProfileCreator)
	service := newTestService(repo, profiles)

	repo.On("GetUserByEmail", mock.Anything, "c@example.com").Return(nil, ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)
	profiles.On("CreateDefaultProfile", mock.Anything, mock.AnythingOfType("uuid.UUID")).Return(nil)

	user, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "c@example.com",
		Password: "hunter2hunter2",
		Name:     "Casey",
		Role:     RoleContractor,
	})

	require.NoError(t, err)
	assert.Equal(t, RoleContractor, user.Role)
	assert.NotEqual(t, "hunter2hunter2", user.PasswordHash)
	profiles.AssertExpectations(t)
}

func TestRegisterHomeownerSkipsProfile(t *testing.T) {
	repo := new(MockRepository)
	profiles := new(MockProfileCreator)
	service := newTestService(repo, profiles)

	repo.On("GetUserByEmail", mock.Anything, "h@example.com").Return(nil, ErrNotFound)
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	_, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "h@example.com",
		Password: "hunter2hunter2",
		Name:     "Harper",
		Role:     RoleHomeowner,
	})

	require.NoError(t, err)
	profiles.AssertNotCalled(t, "CreateDefaultProfile", mock.Anything, mock.Anything)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockProfileCreator))

	repo.On("GetUserByEmail", mock.Anything, "c@example.com").Return(&User{}, nil)

	_, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "c@example.com",
		Password: "hunter2hunter2",
		Name:     "Casey",
		Role:     RoleContractor,
	})

	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestLoginTokenRoundTrip(t *testing.T) {
	repo := new(MockRepository)
	service := newTestService(repo, new(MockProfileCreator))

	repo.On("GetUserByEmail", mock.Anything, "c@example.com").Return(nil, ErrNotFound).Once()
	repo.On("CreateUser", mock.Anything, mock.AnythingOfType("*auth.User")).Return(nil)

	profiles := new(MockProfileCreator)
	profiles.On("CreateDefaultProfile", mock.Anything, mock.Anything).Return(nil)
	service.profiles = profiles

	user, err := service.Register(context.Background(), &RegisterRequest{
		Email:    "c@example.com",
		Password: "hunter2hunter2",
		Name:     "Casey",
		Role:     RoleContractor,
	})
	require.NoError(t, err)

	repo.On("GetUserByEmail", mock.Anything, user.Email).Return(user, nil)

	resp, err := service.Login(context.Background(), &LoginRequest{
		Email:    user.Email,
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	claims, err := service.ParseToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID.String(), claims.UserID)
	assert.Equal(t, RoleContractor, claims.Role)

	_, err = service.Login(context.Background(), &LoginRequest{
		Email:    user.Email,
		Password: "wrong-password",
	})
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}
