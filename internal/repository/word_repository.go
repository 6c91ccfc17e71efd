package repository

import (
	"context"

	"github.com/mwrona/vocaflash/internal/models"
)

// WordRepository handles vocabulary catalog access
type WordRepository interface {
	Get(ctx context.Context, id string) (*models.Word, error)
	List(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
	Count(ctx context.Context, filter models.WordFilter) (int, error)
	Insert(ctx context.Context, word models.Word) (*models.Word, error)
	Update(ctx context.Context, word models.Word) error
	Delete(ctx context.Context, id string) error

	// UnlearnedByUser returns up to limit words with no repetition row for
	// the user, in random order. Empty levels means the whole catalog.
	UnlearnedByUser(ctx context.Context, userID string, levels []string, limit int) ([]models.Word, error)

	// RandomByLevels returns up to limit words (with meanings) whose level is
	// in levels, in random order.
	RandomByLevels(ctx context.Context, levels []string, limit int) ([]models.Word, error)
}
