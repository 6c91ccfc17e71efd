package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

// MockQuizTx is a mock implementation of repository.QuizTx
type MockQuizTx struct {
	mock.Mock
}

func (m *MockQuizTx) InsertSession(ctx context.Context, session models.QuizSession) (*models.QuizSession, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockQuizTx) InsertPackage(ctx context.Context, pkg models.QuizPackage) (*models.QuizPackage, error) {
	args := m.Called(ctx, pkg)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizPackage), args.Error(1)
}

func (m *MockQuizTx) InsertItems(ctx context.Context, items []models.QuizItem) ([]models.QuizItem, error) {
	args := m.Called(ctx, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizItem), args.Error(1)
}

func (m *MockQuizTx) Savepoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockQuizTx) ReleaseSavepoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

func (m *MockQuizTx) RollbackToSavepoint(ctx context.Context, name string) error {
	args := m.Called(ctx, name)
	return args.Error(0)
}

// MockQuizRepository is a mock implementation of repository.QuizRepository.
// Transact runs fn against the Tx field so tests can assert savepoint calls.
type MockQuizRepository struct {
	mock.Mock
	Tx *MockQuizTx
}

func (m *MockQuizRepository) Transact(ctx context.Context, fn func(tx repository.QuizTx) error) error {
	args := m.Called(ctx)
	if err := args.Error(0); err != nil {
		return err
	}
	return fn(m.Tx)
}

func (m *MockQuizRepository) SessionByID(ctx context.Context, id string, userID string) (*models.QuizSession, error) {
	args := m.Called(ctx, id, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockQuizRepository) LatestSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockQuizRepository) ActiveSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizSession), args.Error(1)
}

func (m *MockQuizRepository) SessionsByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizSession), args.Error(1)
}

func (m *MockQuizRepository) UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error {
	args := m.Called(ctx, id, status, endedAt)
	return args.Error(0)
}

func (m *MockQuizRepository) PackagesBySession(ctx context.Context, sessionID string) ([]models.QuizPackage, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.QuizPackage), args.Error(1)
}

func (m *MockQuizRepository) PackageByID(ctx context.Context, id string) (*models.QuizPackage, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QuizPackage), args.Error(1)
}

func (m *MockQuizRepository) SessionOwner(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

func (m *MockQuizRepository) UpdateItemAnswer(ctx context.Context, itemID string, answer string) error {
	args := m.Called(ctx, itemID, answer)
	return args.Error(0)
}
