package models

import "time"

// Flashcard item status (how the word entered the session).
const (
	ItemStatusNew    = "new"
	ItemStatusReview = "review"
)

// Flashcard item stage (progress within the session).
const (
	ItemStageReview   = "review"
	ItemStageLearning = "learning"
	ItemStagePassed   = "passed"
)

// Session status shared by flashcard and quiz sessions.
const (
	SessionStatusActive    = "active"
	SessionStatusCompleted = "completed"
)

type FlashcardItem struct {
	ID           string      `json:"id"`
	SessionID    string      `json:"id_sessions"`
	RepetitionID string      `json:"id_repetitions"`
	Status       string      `json:"status"` // "new" or "review"
	Stage        string      `json:"stage"`  // "review", "learning" or "passed"
	Repetition   *Repetition `json:"repetition,omitempty"`
}

type FlashcardSession struct {
	ID        string          `json:"id"`
	UserID    string          `json:"id_users"`
	Type      string          `json:"type"` // strategy tag, e.g. "random" or "level_b1_b2"
	Status    string          `json:"status"`
	StartedAt time.Time       `json:"date_started"`
	EndedAt   *time.Time      `json:"date_ended"`
	Items     []FlashcardItem `json:"items,omitempty"`
}

// SessionStats is derived from item status/stage at read time, never stored.
type SessionStats struct {
	NewCards      int `json:"new_cards"`
	ReviewCards   int `json:"review_cards"`
	RepeatCards   int `json:"repeat_cards"`
	MasteredCards int `json:"mastered_cards"`
	TotalCards    int `json:"total_cards"`
}

type FlashcardSessionWithStats struct {
	FlashcardSession
	Stats SessionStats `json:"stats"`
}
