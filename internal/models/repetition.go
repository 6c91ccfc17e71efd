package models

import "time"

// SM-2 defaults for a freshly created repetition.
const (
	DefaultEasinessFactor = 2.5
	// MasteredEasinessFactor is the EF at or above which a word counts as
	// mastered in the per-level statistics.
	MasteredEasinessFactor = 2.8
)

// Repetition tracks one user's SM-2 state for one word. There is at most one
// per (user, word) pair; it outlives the flashcard items that reference it.
type Repetition struct {
	ID             string     `json:"id"`
	UserID         string     `json:"id_users"`
	WordID         string     `json:"id_words"`
	EasinessFactor float64    `json:"easiness_factor"`
	Repetitions    int        `json:"repetitions"` // consecutive passes
	NextInterval   int        `json:"next_interval"` // days
	DateNextRep    time.Time  `json:"date_next_rep"`
	DateLastRep    *time.Time `json:"date_last_rep"`
	Word           *Word      `json:"word,omitempty"`
}

// LevelStats summarizes a user's progress within one CEFR level.
type LevelStats struct {
	Level    string `json:"level"`
	Total    int    `json:"total"`     // words in the catalog at this level
	TotalUser int   `json:"total_user"` // words the user has started learning
	Learning int    `json:"learning"`
	Mastered int    `json:"mastered"`
}
