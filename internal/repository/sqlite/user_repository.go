package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

type userRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository implementation
func NewUserRepository(db *sql.DB) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Get(ctx context.Context, id string) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("getting user: id=%s", id)

	var u models.User
	err := r.db.QueryRowContext(ctx, `
SELECT id, name, surname, email, role, daily_new_limit, daily_review_limit, learning_strategy, created_at
FROM profiles
WHERE id = ?
`, id).Scan(&u.ID, &u.Name, &u.Surname, &u.Email, &u.Role, &u.DailyNewLimit, &u.DailyReviewLimit, &u.LearningStrategy, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("user not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get user: %v", err)
		return nil, err
	}
	return &u, nil
}

func (r *userRepository) Ensure(ctx context.Context, user models.User) (*models.User, error) {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("ensuring user: id=%s", user.ID)

	if user.Role == "" {
		user.Role = "user"
	}
	if user.DailyNewLimit <= 0 {
		user.DailyNewLimit = models.DefaultDailyNewLimit
	}
	if user.DailyReviewLimit <= 0 {
		user.DailyReviewLimit = models.DefaultDailyReviewLimit
	}
	if user.LearningStrategy == "" {
		user.LearningStrategy = models.DefaultLearningStrategy
	}

	_, err := r.db.ExecContext(ctx, `
INSERT INTO profiles (id, name, surname, email, role, daily_new_limit, daily_review_limit, learning_strategy)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO NOTHING
`, user.ID, user.Name, user.Surname, user.Email, user.Role, user.DailyNewLimit, user.DailyReviewLimit, user.LearningStrategy)
	if err != nil {
		log.Error("failed to ensure user: %v", err)
		return nil, err
	}
	return r.Get(ctx, user.ID)
}

func (r *userRepository) UpdateSettings(ctx context.Context, id string, dailyNew, dailyReview int, strategy string) error {
	log := logger.FromContext(ctx).WithPrefix("user_repo")
	log.Debug("updating settings: id=%s, daily_new=%d, daily_review=%d, strategy=%s", id, dailyNew, dailyReview, strategy)

	res, err := r.db.ExecContext(ctx, `
UPDATE profiles SET daily_new_limit = ?, daily_review_limit = ?, learning_strategy = ?
WHERE id = ?
`, dailyNew, dailyReview, strategy, id)
	if err != nil {
		log.Error("failed to update settings: %v", err)
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
