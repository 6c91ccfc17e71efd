package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/mwrona/vocaflash/internal/models"
)

// MockFlashcardRepository is a mock implementation of repository.FlashcardRepository
type MockFlashcardRepository struct {
	mock.Mock
}

func (m *MockFlashcardRepository) InsertSession(ctx context.Context, session models.FlashcardSession) (*models.FlashcardSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlashcardSession), args.Error(1)
}

func (m *MockFlashcardRepository) SessionByID(ctx context.Context, id string, userID string) (*models.FlashcardSession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlashcardSession), args.Error(1)
}

func (m *MockFlashcardRepository) LatestSessionByUser(ctx context.Context, userID string) (*models.FlashcardSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlashcardSession), args.Error(1)
}

func (m *MockFlashcardRepository) SessionsByUser(ctx context.Context, userID string) ([]models.FlashcardSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlashcardSession), args.Error(1)
}

func (m *MockFlashcardRepository) UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error {
	args := m.Called(ctx, id, status, endedAt)
	return args.Error(0)
}

func (m *MockFlashcardRepository) InsertItems(ctx context.Context, items []models.FlashcardItem) ([]models.FlashcardItem, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.FlashcardItem), args.Error(1)
}

func (m *MockFlashcardRepository) ItemByID(ctx context.Context, id string) (*models.FlashcardItem, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FlashcardItem), args.Error(1)
}

func (m *MockFlashcardRepository) UpdateItemStage(ctx context.Context, id string, stage string) error {
	args := m.Called(ctx, id, stage)
	return args.Error(0)
}
