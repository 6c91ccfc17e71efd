package repository

import (
	"context"
	"time"

	"github.com/mwrona/vocaflash/internal/models"
)

// FlashcardRepository handles flashcard session and item data access
type FlashcardRepository interface {
	InsertSession(ctx context.Context, session models.FlashcardSession) (*models.FlashcardSession, error)
	// SessionByID loads a session with its items (repetition and word
	// preloaded on each item). Returns nil when not found.
	SessionByID(ctx context.Context, id string, userID string) (*models.FlashcardSession, error)
	// LatestSessionByUser returns the most recently started session with
	// items, or nil when the user has none.
	LatestSessionByUser(ctx context.Context, userID string) (*models.FlashcardSession, error)
	SessionsByUser(ctx context.Context, userID string) ([]models.FlashcardSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error

	InsertItems(ctx context.Context, items []models.FlashcardItem) ([]models.FlashcardItem, error)
	// ItemByID loads an item with its repetition preloaded. Returns nil when
	// not found.
	ItemByID(ctx context.Context, id string) (*models.FlashcardItem, error)
	UpdateItemStage(ctx context.Context, id string, stage string) error
}
