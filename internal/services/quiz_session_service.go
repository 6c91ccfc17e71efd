package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mwrona/vocaflash/internal/ai"
	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

// QuizConfig holds the quiz engine knobs. Injected at construction so tests
// can shrink packages and attempt counts.
type QuizConfig struct {
	WordsPerPackage       int
	MaxPackages           int
	MaxGenerationAttempts int
	DefaultLevel          string
	Levels                []string
	LevelUpThreshold      float64
	LevelDownThreshold    float64
}

// DefaultQuizConfig returns the production configuration.
func DefaultQuizConfig() QuizConfig {
	return QuizConfig{
		WordsPerPackage:       12,
		MaxPackages:           3,
		MaxGenerationAttempts: 2,
		DefaultLevel:          "B1-B2",
		Levels:                []string{"A1-A2", "B1-B2", "C1-C2"},
		LevelUpThreshold:      0.75,
		LevelDownThreshold:    0.50,
	}
}

// Answer is one submitted answer for a quiz item.
type Answer struct {
	ItemID string `json:"item_id"`
	Answer string `json:"answer"`
}

// QuizSessionService orchestrates quiz sessions: package generation with
// AI-backed question sourcing and savepoint retry, answer scoring, adaptive
// difficulty and completion gating.
type QuizSessionService interface {
	// StartSession resumes today's active session or creates a new one with
	// its first package generated synchronously.
	StartSession(ctx context.Context, userID string) (*models.QuizSession, error)
	// FinishSession completes the active session once all packages exist and
	// the last one is fully answered.
	FinishSession(ctx context.Context, userID string) (*models.QuizSession, error)
	GetSession(ctx context.Context, id string, userID string) (*models.QuizSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.QuizSession, error)
	// GenerateNextPackage creates the next package at a difficulty adapted to
	// the previous package's score.
	GenerateNextPackage(ctx context.Context, userID string) (*models.QuizPackage, error)
	// SubmitPackage records answers and returns the score summary.
	// Re-submission overwrites prior answers.
	SubmitPackage(ctx context.Context, userID string, packageID string, answers []Answer) (*models.PackageResult, error)
}

type quizSessionService struct {
	quizRepo  repository.QuizRepository
	wordRepo  repository.WordRepository
	generator ai.Generator
	cfg       QuizConfig
}

// NewQuizSessionService creates a new QuizSessionService
func NewQuizSessionService(quizRepo repository.QuizRepository, wordRepo repository.WordRepository, generator ai.Generator, cfg QuizConfig) QuizSessionService {
	return &quizSessionService{
		quizRepo:  quizRepo,
		wordRepo:  wordRepo,
		generator: generator,
		cfg:       cfg,
	}
}

func (s *quizSessionService) StartSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting quiz session: user_id=%s", userID)

	last, err := s.quizRepo.LatestSessionByUser(ctx, userID)
	if err != nil {
		log.Error("failed to load latest quiz session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if last != nil {
		if last.Status == models.SessionStatusActive && sameDay(last.StartedAt, time.Now()) {
			log.Debug("resuming today's quiz session: id=%s", last.ID)
			return last, nil
		}
		if last.Status == models.SessionStatusActive {
			log.Info("auto-closing stale quiz session: id=%s", last.ID)
			now := time.Now().UTC()
			if err := s.quizRepo.UpdateSessionStatus(ctx, last.ID, models.SessionStatusCompleted, &now); err != nil {
				log.Error("failed to close stale quiz session: %v", err)
				return nil, errors.NewInternalError(err)
			}
		}
	}

	return s.createSession(ctx, userID)
}

// createSession persists the session and generates its first package inside
// one transaction. Nothing is visible to readers if generation fails.
func (s *quizSessionService) createSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating quiz session: user_id=%s", userID)

	words, err := s.fetchWords(ctx, s.cfg.DefaultLevel)
	if err != nil {
		return nil, err
	}

	var sessionID string
	err = s.quizRepo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{
			UserID: userID,
			Type:   "default",
			Status: models.SessionStatusActive,
		})
		if err != nil {
			return errors.NewInternalError(err)
		}
		sessionID = session.ID

		_, err = s.populatePackage(ctx, tx, session.ID, 1, s.cfg.DefaultLevel, words)
		return err
	})
	if err != nil {
		return nil, err
	}

	full, err := s.quizRepo.SessionByID(ctx, sessionID, userID)
	if err != nil {
		log.Error("failed to reload quiz session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if full == nil {
		return nil, errors.NewInternalError(fmt.Errorf("session %s vanished after create", sessionID))
	}
	return full, nil
}

// fetchWords loads the random word pool for a level pair such as "B1-B2".
// An empty pool is fatal, retrying won't create vocabulary.
func (s *quizSessionService) fetchWords(ctx context.Context, level string) ([]models.Word, error) {
	log := logger.FromContext(ctx)

	levels := strings.Split(level, "-")
	words, err := s.wordRepo.RandomByLevels(ctx, levels, s.cfg.WordsPerPackage)
	if err != nil {
		log.Error("failed to fetch words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(words) == 0 {
		log.Warn("no words found for levels: %v", levels)
		return nil, errors.NewInsufficientDataError(fmt.Sprintf("no words found for levels: %s", strings.Join(levels, ", ")))
	}
	if len(words) < s.cfg.WordsPerPackage {
		log.Warn("not enough words: found %d for levels %v, expected %d", len(words), levels, s.cfg.WordsPerPackage)
	}
	return words, nil
}

// populatePackage creates a package row and generates its questions,
// retrying persistence under a savepoint. The package row survives a failed
// attempt; exhausting attempts fails the whole transaction.
func (s *quizSessionService) populatePackage(ctx context.Context, tx repository.QuizTx, sessionID string, seq int, level string, words []models.Word) (*models.QuizPackage, error) {
	log := logger.FromContext(ctx)
	log.Debug("populating package: session_id=%s, seq=%d, level=%s", sessionID, seq, level)

	pkg, err := tx.InsertPackage(ctx, models.QuizPackage{
		SessionID: sessionID,
		Seq:       seq,
		Name:      fmt.Sprintf("package-%d", seq),
		Level:     level,
	})
	if err != nil {
		return nil, errors.NewInternalError(err)
	}

	var lastErr error
	for attempt := 1; attempt <= s.cfg.MaxGenerationAttempts; attempt++ {
		lastErr = s.generateAndSaveItems(ctx, tx, pkg.ID, words, level, attempt)
		if lastErr == nil {
			return pkg, nil
		}
		log.Error("generation attempt %d failed: %v", attempt, lastErr)
	}
	return nil, errors.NewUpstreamError("failed to create quiz: generation failed after retries", lastErr)
}

// generateAndSaveItems runs one generation attempt. Items are written under a
// named savepoint so a persistence failure rolls back only this attempt.
func (s *quizSessionService) generateAndSaveItems(ctx context.Context, tx repository.QuizTx, packageID string, words []models.Word, level string, attempt int) error {
	questions, err := s.generator.GenerateQuizQuestions(ctx, words, level)
	if err != nil {
		return err
	}
	if len(questions) == 0 {
		return nil
	}

	items := make([]models.QuizItem, 0, len(questions))
	for _, q := range questions {
		items = append(items, models.QuizItem{
			PackageID:     packageID,
			WordID:        q.WordID,
			Type:          q.Type,
			Question:      q.Question,
			CorrectAnswer: q.CorrectAnswer,
			AnswerA:       q.AnswerA,
			AnswerB:       q.AnswerB,
			AnswerC:       q.AnswerC,
		})
	}

	savepoint := fmt.Sprintf("save_items_%d", attempt)
	if err := tx.Savepoint(ctx, savepoint); err != nil {
		return err
	}
	if _, err := tx.InsertItems(ctx, items); err != nil {
		if rbErr := tx.RollbackToSavepoint(ctx, savepoint); rbErr != nil {
			return fmt.Errorf("rollback to %s failed: %v (after: %w)", savepoint, rbErr, err)
		}
		return err
	}
	return tx.ReleaseSavepoint(ctx, savepoint)
}

func (s *quizSessionService) GenerateNextPackage(ctx context.Context, userID string) (*models.QuizPackage, error) {
	log := logger.FromContext(ctx)
	log.Debug("generating next package: user_id=%s", userID)

	session, err := s.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	packages, err := s.quizRepo.PackagesBySession(ctx, session.ID)
	if err != nil {
		log.Error("failed to load packages: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(packages) >= s.cfg.MaxPackages {
		return nil, errors.NewValidationError("session", fmt.Sprintf("session complete, maximum %d packages allowed", s.cfg.MaxPackages))
	}
	if len(packages) == 0 {
		return nil, errors.NewValidationError("session", "session has no packages")
	}

	last := packages[len(packages)-1]
	if !allAnswered(last) {
		return nil, errors.NewValidationError("package", "complete previous package first")
	}

	nextLevel := s.adaptiveLevel(ctx, last)
	nextSeq := len(packages) + 1

	words, err := s.fetchWords(ctx, nextLevel)
	if err != nil {
		return nil, err
	}

	var pkgID string
	err = s.quizRepo.Transact(ctx, func(tx repository.QuizTx) error {
		pkg, err := s.populatePackage(ctx, tx, session.ID, nextSeq, nextLevel, words)
		if err != nil {
			return err
		}
		pkgID = pkg.ID
		return nil
	})
	if err != nil {
		return nil, err
	}

	created, err := s.quizRepo.PackageByID(ctx, pkgID)
	if err != nil {
		log.Error("failed to reload package: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if created == nil {
		return nil, errors.NewInternalError(fmt.Errorf("package %s vanished after create", pkgID))
	}
	return created, nil
}

func (s *quizSessionService) SubmitPackage(ctx context.Context, userID string, packageID string, answers []Answer) (*models.PackageResult, error) {
	log := logger.FromContext(ctx)
	log.Debug("submitting package: id=%s, answers=%d", packageID, len(answers))

	pkg, err := s.quizRepo.PackageByID(ctx, packageID)
	if err != nil {
		log.Error("failed to load package: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if pkg == nil {
		return nil, errors.NewNotFoundError("package", packageID)
	}

	owner, err := s.quizRepo.SessionOwner(ctx, pkg.SessionID)
	if err != nil {
		log.Error("failed to load session owner: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if owner != userID {
		return nil, errors.NewUnauthorizedError("package belongs to another user")
	}

	// Answers for unknown item ids are ignored; each item counts once from
	// its current state.
	byID := make(map[string]int, len(pkg.Items))
	for i := range pkg.Items {
		byID[pkg.Items[i].ID] = i
	}
	for _, answer := range answers {
		i, ok := byID[answer.ItemID]
		if !ok {
			continue
		}
		if err := s.quizRepo.UpdateItemAnswer(ctx, answer.ItemID, answer.Answer); err != nil {
			log.Error("failed to save answer: %v", err)
			return nil, errors.NewInternalError(err)
		}
		a := answer.Answer
		pkg.Items[i].UserAnswer = &a
	}

	correct := 0
	for _, item := range pkg.Items {
		if item.UserAnswer != nil && *item.UserAnswer == item.CorrectAnswer {
			correct++
		}
	}
	total := len(pkg.Items)
	percentage := 0.0
	if total > 0 {
		percentage = float64(correct) / float64(total) * 100
	}

	log.Info("package submitted: id=%s, correct=%d/%d", packageID, correct, total)
	return &models.PackageResult{
		PackageID:       pkg.ID,
		CorrectCount:    correct,
		Total:           total,
		ScorePercentage: percentage,
	}, nil
}

func (s *quizSessionService) FinishSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("finishing quiz session: user_id=%s", userID)

	session, err := s.activeSession(ctx, userID)
	if err != nil {
		return nil, err
	}

	packages, err := s.quizRepo.PackagesBySession(ctx, session.ID)
	if err != nil {
		log.Error("failed to load packages: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if len(packages) < s.cfg.MaxPackages {
		return nil, errors.NewValidationError("session", fmt.Sprintf("cannot finish session, less than %d packages generated", s.cfg.MaxPackages))
	}
	if !allAnswered(packages[len(packages)-1]) {
		return nil, errors.NewValidationError("session", "cannot finish session, last package is not completed")
	}

	now := time.Now().UTC()
	if err := s.quizRepo.UpdateSessionStatus(ctx, session.ID, models.SessionStatusCompleted, &now); err != nil {
		log.Error("failed to complete quiz session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.Status = models.SessionStatusCompleted
	session.EndedAt = &now
	session.Packages = packages
	return session, nil
}

func (s *quizSessionService) GetSession(ctx context.Context, id string, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting quiz session: id=%s", id)

	session, err := s.quizRepo.SessionByID(ctx, id, userID)
	if err != nil {
		log.Error("failed to get quiz session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", id)
	}
	return session, nil
}

func (s *quizSessionService) ListSessions(ctx context.Context, userID string) ([]models.QuizSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing quiz sessions: user_id=%s", userID)

	sessions, err := s.quizRepo.SessionsByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list quiz sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}
	for i := range sessions {
		if sessions[i].Packages, err = s.quizRepo.PackagesBySession(ctx, sessions[i].ID); err != nil {
			log.Error("failed to load packages: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}
	return sessions, nil
}

func (s *quizSessionService) activeSession(ctx context.Context, userID string) (*models.QuizSession, error) {
	session, err := s.quizRepo.ActiveSessionByUser(ctx, userID)
	if err != nil {
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("active session", userID)
	}
	return session, nil
}

// adaptiveLevel picks the next difficulty from the last package's score:
// above the up threshold moves one level up, below the down threshold one
// level down, both clamped to the configured range.
func (s *quizSessionService) adaptiveLevel(ctx context.Context, last models.QuizPackage) string {
	log := logger.FromContext(ctx)

	correct := 0
	for _, item := range last.Items {
		if item.UserAnswer != nil && *item.UserAnswer == item.CorrectAnswer {
			correct++
		}
	}
	score := 0.0
	if len(last.Items) > 0 {
		score = float64(correct) / float64(len(last.Items))
	}

	index := -1
	for i, level := range s.cfg.Levels {
		if level == last.Level {
			index = i
			break
		}
	}
	if index == -1 {
		index = 1 // unknown level starts from the middle
	}

	switch {
	case score > s.cfg.LevelUpThreshold && index < len(s.cfg.Levels)-1:
		index++
	case score < s.cfg.LevelDownThreshold && index > 0:
		index--
	}

	next := s.cfg.Levels[index]
	log.Debug("adaptive level: score=%.0f%%, %s -> %s", score*100, last.Level, next)
	return next
}

func allAnswered(pkg models.QuizPackage) bool {
	for _, item := range pkg.Items {
		if item.UserAnswer == nil {
			return false
		}
	}
	return true
}
