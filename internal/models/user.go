package models

import "time"

// User settings defaults.
const (
	DefaultDailyNewLimit    = 10
	DefaultDailyReviewLimit = 50
	DefaultLearningStrategy = "random"
)

// User mirrors the account row owned by the external identity provider.
// Only the learning settings are mutable here.
type User struct {
	ID               string    `json:"id"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Email            string    `json:"email"`
	Role             string    `json:"role"`
	DailyNewLimit    int       `json:"daily_new_limit"`
	DailyReviewLimit int       `json:"daily_review_limit"`
	LearningStrategy string    `json:"learning_strategy"`
	CreatedAt        time.Time `json:"created_at"`
}

// UserLimits is the subset of settings the flashcard engine consumes.
type UserLimits struct {
	DailyReview int
	DailyNew    int
}
