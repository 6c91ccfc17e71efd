package repository

import (
	"context"

	"github.com/mwrona/vocaflash/internal/models"
)

// RepetitionRepository handles per-user SM-2 repetition records
type RepetitionRepository interface {
	Get(ctx context.Context, id string, userID string) (*models.Repetition, error)
	ListByUser(ctx context.Context, userID string, wordID string) ([]models.Repetition, error)
	Update(ctx context.Context, rep models.Repetition) error
	Delete(ctx context.Context, id string, userID string) error

	// DueByUser returns up to limit repetitions with date_next_rep <= now,
	// most overdue first; ties break on id so the order is deterministic.
	DueByUser(ctx context.Context, userID string, limit int) ([]models.Repetition, error)

	// CreateForWords creates one default-state repetition per word
	// (EF 2.5, 0 repetitions, interval 0, due at the start of today) and
	// returns exactly the created records.
	CreateForWords(ctx context.Context, userID string, words []models.Word) ([]models.Repetition, error)

	// StatsByLevel aggregates the user's progress per CEFR level.
	StatsByLevel(ctx context.Context, userID string) ([]models.LevelStats, error)
}
