package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/mwrona/vocaflash/internal/ai"
	"github.com/mwrona/vocaflash/internal/models"
)

// MockGenerator is a mock implementation of ai.Generator
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateQuizQuestions(ctx context.Context, words []models.Word, level string) ([]ai.GeneratedQuestion, error) {
	args := m.Called(ctx, words, level)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]ai.GeneratedQuestion), args.Error(1)
}
