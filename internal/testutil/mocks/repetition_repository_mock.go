package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/mwrona/vocaflash/internal/models"
)

// MockRepetitionRepository is a mock implementation of repository.RepetitionRepository
type MockRepetitionRepository struct {
	mock.Mock
}

func (m *MockRepetitionRepository) Get(ctx context.Context, id string, userID string) (*models.Repetition, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Repetition), args.Error(1)
}

func (m *MockRepetitionRepository) ListByUser(ctx context.Context, userID string, wordID string) ([]models.Repetition, error) {
	args := m.Called(ctx, userID, wordID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repetition), args.Error(1)
}

func (m *MockRepetitionRepository) Update(ctx context.Context, rep models.Repetition) error {
	args := m.Called(ctx, rep)
	return args.Error(0)
}

func (m *MockRepetitionRepository) Delete(ctx context.Context, id string, userID string) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockRepetitionRepository) DueByUser(ctx context.Context, userID string, limit int) ([]models.Repetition, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repetition), args.Error(1)
}

func (m *MockRepetitionRepository) CreateForWords(ctx context.Context, userID string, words []models.Word) ([]models.Repetition, error) {
	args := m.Called(ctx, userID, words)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Repetition), args.Error(1)
}

func (m *MockRepetitionRepository) StatsByLevel(ctx context.Context, userID string) ([]models.LevelStats, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.LevelStats), args.Error(1)
}
