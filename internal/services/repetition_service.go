package services

import (
	"context"
	"database/sql"
	stderrors "errors"

	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

// RepetitionStats is the per-level progress report for one user.
type RepetitionStats struct {
	UserID string                      `json:"user_id"`
	Stats  map[string]models.LevelStats `json:"stats"`
}

// RepetitionService handles the read surface over SM-2 repetition records
type RepetitionService interface {
	GetRepetition(ctx context.Context, id string, userID string) (*models.Repetition, error)
	ListRepetitions(ctx context.Context, userID string, wordID string) ([]models.Repetition, error)
	DeleteRepetition(ctx context.Context, id string, userID string) error
	GetStats(ctx context.Context, userID string) (*RepetitionStats, error)
}

type repetitionService struct {
	repetitionRepo repository.RepetitionRepository
}

// NewRepetitionService creates a new RepetitionService
func NewRepetitionService(repetitionRepo repository.RepetitionRepository) RepetitionService {
	return &repetitionService{repetitionRepo: repetitionRepo}
}

func (s *repetitionService) GetRepetition(ctx context.Context, id string, userID string) (*models.Repetition, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting repetition: id=%s", id)

	rep, err := s.repetitionRepo.Get(ctx, id, userID)
	if err != nil {
		log.Error("failed to get repetition: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if rep == nil {
		return nil, errors.NewNotFoundError("repetition", id)
	}
	return rep, nil
}

func (s *repetitionService) ListRepetitions(ctx context.Context, userID string, wordID string) ([]models.Repetition, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing repetitions: user_id=%s, word_id=%s", userID, wordID)

	reps, err := s.repetitionRepo.ListByUser(ctx, userID, wordID)
	if err != nil {
		log.Error("failed to list repetitions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return reps, nil
}

func (s *repetitionService) DeleteRepetition(ctx context.Context, id string, userID string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting repetition: id=%s", id)

	if err := s.repetitionRepo.Delete(ctx, id, userID); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("repetition", id)
		}
		log.Error("failed to delete repetition: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *repetitionService) GetStats(ctx context.Context, userID string) (*RepetitionStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting repetition stats: user_id=%s", userID)

	rows, err := s.repetitionRepo.StatsByLevel(ctx, userID)
	if err != nil {
		log.Error("failed to get stats: %v", err)
		return nil, errors.NewInternalError(err)
	}

	// Every CEFR level appears in the report, even with an empty catalog.
	stats := make(map[string]models.LevelStats, len(models.CEFRLevels))
	for _, level := range models.CEFRLevels {
		stats[level] = models.LevelStats{Level: level}
	}
	for _, row := range rows {
		stats[row.Level] = row
	}

	return &RepetitionStats{UserID: userID, Stats: stats}, nil
}
