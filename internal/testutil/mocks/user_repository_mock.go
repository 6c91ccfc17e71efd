package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/mwrona/vocaflash/internal/models"
)

// MockUserRepository is a mock implementation of repository.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Ensure(ctx context.Context, user models.User) (*models.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) UpdateSettings(ctx context.Context, id string, dailyNew, dailyReview int, strategy string) error {
	args := m.Called(ctx, id, dailyNew, dailyReview, strategy)
	return args.Error(0)
}
