package services

import (
	"context"

	"github.com/mwrona/vocaflash/internal/errors"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

// UserService handles user settings business logic
type UserService interface {
	// EnsureUser mirrors the identity provider's account locally, creating
	// the row on first sight.
	EnsureUser(ctx context.Context, user models.User) (*models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
	UpdateSettings(ctx context.Context, id string, dailyNew, dailyReview int, strategy string) (*models.User, error)
	GetLimits(ctx context.Context, id string) (models.UserLimits, error)
	GetLearningStrategy(ctx context.Context, id string) (string, error)
}

type userService struct {
	userRepo repository.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) EnsureUser(ctx context.Context, user models.User) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("ensuring user: id=%s", user.ID)

	ensured, err := s.userRepo.Ensure(ctx, user)
	if err != nil {
		log.Error("failed to ensure user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return ensured, nil
}

func (s *userService) GetUser(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting user: id=%s", id)

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if user == nil {
		return nil, errors.NewNotFoundError("user", id)
	}
	return user, nil
}

func (s *userService) UpdateSettings(ctx context.Context, id string, dailyNew, dailyReview int, strategy string) (*models.User, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating settings: id=%s", id)

	if dailyNew <= 0 {
		return nil, errors.NewValidationError("daily_new_limit", "must be positive")
	}
	if dailyReview <= 0 {
		return nil, errors.NewValidationError("daily_review_limit", "must be positive")
	}
	if strategy == "" {
		strategy = models.DefaultLearningStrategy
	}

	if err := s.userRepo.UpdateSettings(ctx, id, dailyNew, dailyReview, strategy); err != nil {
		log.Error("failed to update settings: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return s.GetUser(ctx, id)
}

func (s *userService) GetLimits(ctx context.Context, id string) (models.UserLimits, error) {
	limits := models.UserLimits{
		DailyReview: models.DefaultDailyReviewLimit,
		DailyNew:    models.DefaultDailyNewLimit,
	}

	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return limits, errors.NewInternalError(err)
	}
	if user == nil {
		// Unknown users learn with the defaults.
		return limits, nil
	}
	if user.DailyReviewLimit > 0 {
		limits.DailyReview = user.DailyReviewLimit
	}
	if user.DailyNewLimit > 0 {
		limits.DailyNew = user.DailyNewLimit
	}
	return limits, nil
}

func (s *userService) GetLearningStrategy(ctx context.Context, id string) (string, error) {
	user, err := s.userRepo.Get(ctx, id)
	if err != nil {
		return "", errors.NewInternalError(err)
	}
	if user == nil || user.LearningStrategy == "" {
		return models.DefaultLearningStrategy, nil
	}
	return user.LearningStrategy, nil
}
