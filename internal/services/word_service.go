package services

import (
	"context"
	"database/sql"
	stderrors "errors"
	"strings"

	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

// WordList is a page of the vocabulary catalog.
type WordList struct {
	Words []models.Word `json:"words"`
	Total int           `json:"total"`
}

// WordService handles vocabulary catalog business logic
type WordService interface {
	GetWord(ctx context.Context, id string) (*models.Word, error)
	ListWords(ctx context.Context, filter models.WordFilter) (*WordList, error)
	CreateWord(ctx context.Context, word models.Word) (*models.Word, error)
	UpdateWord(ctx context.Context, word models.Word) (*models.Word, error)
	DeleteWord(ctx context.Context, id string) error
}

type wordService struct {
	wordRepo repository.WordRepository
}

// NewWordService creates a new WordService
func NewWordService(wordRepo repository.WordRepository) WordService {
	return &wordService{wordRepo: wordRepo}
}

func (s *wordService) GetWord(ctx context.Context, id string) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting word: id=%s", id)

	word, err := s.wordRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if word == nil {
		return nil, errors.NewNotFoundError("word", id)
	}
	return word, nil
}

func (s *wordService) ListWords(ctx context.Context, filter models.WordFilter) (*WordList, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing words: level=%s, search=%s", filter.Level, filter.Search)

	words, err := s.wordRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	total, err := s.wordRepo.Count(ctx, filter)
	if err != nil {
		log.Error("failed to count words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &WordList{Words: words, Total: total}, nil
}

func (s *wordService) CreateWord(ctx context.Context, word models.Word) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating word: word=%s, level=%s", word.Word, word.Level)

	if err := validateWord(word); err != nil {
		return nil, err
	}

	created, err := s.wordRepo.Insert(ctx, word)
	if err != nil {
		log.Error("failed to create word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return created, nil
}

func (s *wordService) UpdateWord(ctx context.Context, word models.Word) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating word: id=%s", word.ID)

	if err := validateWord(word); err != nil {
		return nil, err
	}

	if err := s.wordRepo.Update(ctx, word); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return nil, errors.NewNotFoundError("word", word.ID)
		}
		log.Error("failed to update word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetWord(ctx, word.ID)
}

func (s *wordService) DeleteWord(ctx context.Context, id string) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting word: id=%s", id)

	if err := s.wordRepo.Delete(ctx, id); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return errors.NewNotFoundError("word", id)
		}
		log.Error("failed to delete word: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func validateWord(word models.Word) error {
	if strings.TrimSpace(word.Word) == "" {
		return errors.NewValidationError("word", "cannot be empty")
	}
	valid := false
	for _, l := range models.CEFRLevels {
		if strings.EqualFold(word.Level, l) {
			valid = true
			break
		}
	}
	if !valid {
		return errors.NewValidationError("level", "must be a CEFR code (A1..C2)")
	}
	return nil
}
