package repository

import (
	"context"

	"github.com/mwrona/vocaflash/internal/models"
)

// UserRepository handles user settings data access. Accounts are owned by the
// external identity provider; rows here mirror them.
type UserRepository interface {
	Get(ctx context.Context, id string) (*models.User, error)
	// Ensure inserts the user row if it does not exist yet and returns it.
	Ensure(ctx context.Context, user models.User) (*models.User, error)
	UpdateSettings(ctx context.Context, id string, dailyNew, dailyReview int, strategy string) error
}
