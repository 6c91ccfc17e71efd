package services

import (
	"context"
	"time"

	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
	"github.com/mwrona/vocaflash/internal/selection"
	"github.com/mwrona/vocaflash/internal/srs"
)

// FlashcardSessionService orchestrates the daily flashcard session lifecycle:
// idempotent start, population from due reviews plus new words, SM-2 scoring
// and completion gating.
type FlashcardSessionService interface {
	// StartSession returns today's session, creating it if needed. A stale
	// active session from a previous day is auto-closed first.
	StartSession(ctx context.Context, userID string) (*models.FlashcardSession, error)
	// FinishSession completes the latest session once every item is passed.
	// Completed sessions are returned as-is.
	FinishSession(ctx context.Context, userID string) (*models.FlashcardSession, error)
	GetSession(ctx context.Context, id string, userID string) (*models.FlashcardSession, error)
	ListSessions(ctx context.Context, userID string) ([]models.FlashcardSessionWithStats, error)
	// SendScore applies an SM-2 review (score 0..5) to an item's repetition
	// and advances the item stage.
	SendScore(ctx context.Context, itemID string, userID string, score int) (*models.FlashcardItem, error)
}

type flashcardSessionService struct {
	sessionRepo    repository.FlashcardRepository
	repetitionRepo repository.RepetitionRepository
	users          UserService
	strategies     *selection.Factory
}

// NewFlashcardSessionService creates a new FlashcardSessionService
func NewFlashcardSessionService(
	sessionRepo repository.FlashcardRepository,
	repetitionRepo repository.RepetitionRepository,
	users UserService,
	strategies *selection.Factory,
) FlashcardSessionService {
	return &flashcardSessionService{
		sessionRepo:    sessionRepo,
		repetitionRepo: repetitionRepo,
		users:          users,
		strategies:     strategies,
	}
}

func (s *flashcardSessionService) StartSession(ctx context.Context, userID string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("starting flashcard session: user_id=%s", userID)

	strategyType, err := s.users.GetLearningStrategy(ctx, userID)
	if err != nil {
		return nil, err
	}

	last, err := s.sessionRepo.LatestSessionByUser(ctx, userID)
	if err != nil {
		log.Error("failed to load latest session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if last == nil {
		return s.createSession(ctx, userID, strategyType)
	}

	if sameDay(last.StartedAt, time.Now()) {
		log.Debug("resuming today's session: id=%s", last.ID)
		return last, nil
	}

	if last.Status == models.SessionStatusActive {
		log.Info("auto-closing stale session: id=%s", last.ID)
		now := time.Now().UTC()
		if err := s.sessionRepo.UpdateSessionStatus(ctx, last.ID, models.SessionStatusCompleted, &now); err != nil {
			log.Error("failed to close stale session: %v", err)
			return nil, errors.NewInternalError(err)
		}
	}

	return s.createSession(ctx, userID, strategyType)
}

// createSession persists the session row, then populates it: due reviews up
// to the daily review limit, then new words filling the remaining capacity
// capped by the daily new limit.
func (s *flashcardSessionService) createSession(ctx context.Context, userID string, strategyType string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating flashcard session: user_id=%s, type=%s", userID, strategyType)

	session, err := s.sessionRepo.InsertSession(ctx, models.FlashcardSession{
		UserID: userID,
		Type:   strategyType,
		Status: models.SessionStatusActive,
	})
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, errors.NewInternalError(err)
	}

	if err := s.populateSession(ctx, session, userID, strategyType); err != nil {
		return nil, err
	}

	full, err := s.sessionRepo.SessionByID(ctx, session.ID, userID)
	if err != nil {
		log.Error("failed to reload session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if full == nil {
		return nil, errors.NewInternalError(nil)
	}
	return full, nil
}

func (s *flashcardSessionService) populateSession(ctx context.Context, session *models.FlashcardSession, userID string, strategyType string) error {
	log := logger.FromContext(ctx)

	limits, err := s.users.GetLimits(ctx, userID)
	if err != nil {
		return err
	}

	due, err := s.repetitionRepo.DueByUser(ctx, userID, limits.DailyReview)
	if err != nil {
		log.Error("failed to load due repetitions: %v", err)
		return errors.NewInternalError(err)
	}

	items := make([]models.FlashcardItem, 0, limits.DailyReview)
	for _, rep := range due {
		items = append(items, models.FlashcardItem{
			SessionID:    session.ID,
			RepetitionID: rep.ID,
			Status:       models.ItemStatusReview,
			Stage:        models.ItemStageReview,
		})
	}

	// Remaining capacity goes to new words, capped by the daily new limit.
	missing := limits.DailyReview - len(due)
	countToAdd := min(missing, limits.DailyNew)
	if countToAdd > 0 {
		strategy := s.strategies.Strategy(ctx, strategyType)
		words, err := strategy.SelectNew(ctx, userID, countToAdd, strategyType)
		if err != nil {
			log.Error("failed to select new words: %v", err)
			return errors.NewInternalError(err)
		}
		if len(words) > 0 {
			reps, err := s.repetitionRepo.CreateForWords(ctx, userID, words)
			if err != nil {
				log.Error("failed to create repetitions: %v", err)
				return errors.NewInternalError(err)
			}
			for _, rep := range reps {
				items = append(items, models.FlashcardItem{
					SessionID:    session.ID,
					RepetitionID: rep.ID,
					Status:       models.ItemStatusNew,
					Stage:        models.ItemStageReview,
				})
			}
		}
	}

	// Fewer items than the limits is fine, the catalog may simply be short.
	if len(items) == 0 {
		log.Debug("session created empty: no due or new words")
		return nil
	}
	if _, err := s.sessionRepo.InsertItems(ctx, items); err != nil {
		log.Error("failed to insert items: %v", err)
		return errors.NewInternalError(err)
	}
	log.Info("session populated: id=%s, review=%d, new=%d", session.ID, len(due), len(items)-len(due))
	return nil
}

func (s *flashcardSessionService) FinishSession(ctx context.Context, userID string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("finishing flashcard session: user_id=%s", userID)

	session, err := s.sessionRepo.LatestSessionByUser(ctx, userID)
	if err != nil {
		log.Error("failed to load latest session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", userID)
	}
	if session.Status == models.SessionStatusCompleted {
		return session, nil
	}

	for _, item := range session.Items {
		if item.Stage != models.ItemStagePassed {
			return nil, errors.NewValidationError("session", "cannot finish session, not all items are passed")
		}
	}

	now := time.Now().UTC()
	if err := s.sessionRepo.UpdateSessionStatus(ctx, session.ID, models.SessionStatusCompleted, &now); err != nil {
		log.Error("failed to complete session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	session.Status = models.SessionStatusCompleted
	session.EndedAt = &now
	return session, nil
}

func (s *flashcardSessionService) GetSession(ctx context.Context, id string, userID string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting flashcard session: id=%s", id)

	session, err := s.sessionRepo.SessionByID(ctx, id, userID)
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if session == nil {
		return nil, errors.NewNotFoundError("session", id)
	}
	return session, nil
}

func (s *flashcardSessionService) ListSessions(ctx context.Context, userID string) ([]models.FlashcardSessionWithStats, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing flashcard sessions: user_id=%s", userID)

	sessions, err := s.sessionRepo.SessionsByUser(ctx, userID)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, errors.NewInternalError(err)
	}

	out := make([]models.FlashcardSessionWithStats, 0, len(sessions))
	for _, session := range sessions {
		full, err := s.sessionRepo.SessionByID(ctx, session.ID, userID)
		if err != nil {
			log.Error("failed to load session items: %v", err)
			return nil, errors.NewInternalError(err)
		}
		items := session.Items
		if full != nil {
			items = full.Items
		}
		session.Items = nil
		out = append(out, models.FlashcardSessionWithStats{
			FlashcardSession: session,
			Stats:            sessionStats(items),
		})
	}
	return out, nil
}

func (s *flashcardSessionService) SendScore(ctx context.Context, itemID string, userID string, score int) (*models.FlashcardItem, error) {
	log := logger.FromContext(ctx)
	log.Debug("scoring item: id=%s, score=%d", itemID, score)

	if score < 0 || score > 5 {
		return nil, errors.NewValidationError("score", "must be between 0 and 5")
	}

	item, err := s.sessionRepo.ItemByID(ctx, itemID)
	if err != nil {
		log.Error("failed to load item: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if item == nil || item.Repetition == nil {
		return nil, errors.NewNotFoundError("item", itemID)
	}
	if item.Repetition.UserID != userID {
		return nil, errors.NewUnauthorizedError("item belongs to another user")
	}

	result := srs.Calculate(srs.State{
		EasinessFactor: item.Repetition.EasinessFactor,
		Repetitions:    item.Repetition.Repetitions,
		NextInterval:   item.Repetition.NextInterval,
	}, score)

	rep := *item.Repetition
	rep.EasinessFactor = result.EasinessFactor
	rep.Repetitions = result.Repetitions
	rep.NextInterval = result.NextInterval
	rep.DateNextRep = result.DateNextRep
	lastRep := result.DateLastRep
	rep.DateLastRep = &lastRep

	if err := s.repetitionRepo.Update(ctx, rep); err != nil {
		log.Error("failed to update repetition: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if err := s.sessionRepo.UpdateItemStage(ctx, itemID, result.Stage); err != nil {
		log.Error("failed to update item stage: %v", err)
		return nil, errors.NewInternalError(err)
	}

	item.Stage = result.Stage
	item.Repetition = &rep
	log.Debug("item scored: id=%s, stage=%s, interval=%d, ef=%.2f", itemID, result.Stage, result.NextInterval, result.EasinessFactor)
	return item, nil
}

func sessionStats(items []models.FlashcardItem) models.SessionStats {
	stats := models.SessionStats{TotalCards: len(items)}
	for _, item := range items {
		switch item.Status {
		case models.ItemStatusNew:
			stats.NewCards++
		case models.ItemStatusReview:
			stats.ReviewCards++
		}
		switch item.Stage {
		case models.ItemStageLearning:
			stats.RepeatCards++
		case models.ItemStagePassed:
			stats.MasteredCards++
		}
	}
	return stats
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Local().Date()
	by, bm, bd := b.Local().Date()
	return ay == by && am == bm && ad == bd
}
