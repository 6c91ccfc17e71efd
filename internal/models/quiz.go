package models

import "time"

// Quiz question types the generator may produce. Spellings follow the
// upstream generator contract.
const (
	QuizTypeMatching         = "matching"
	QuizTypeSynonymOrAntonym = "synonimOrAntonym"
	QuizTypeCloze            = "clouze"
)

type QuizItem struct {
	ID            string    `json:"id"`
	PackageID     string    `json:"id_quizzes_packages"`
	WordID        string    `json:"id_words"`
	Type          string    `json:"type"`
	Question      string    `json:"question"`
	CorrectAnswer string    `json:"correct_answer"` // "A", "B" or "C"
	AnswerA       string    `json:"answer_a"`
	AnswerB       string    `json:"answer_b"`
	AnswerC       string    `json:"answer_c"`
	UserAnswer    *string   `json:"user_answer"`
	CreatedAt     time.Time `json:"created_at"`
}

type QuizPackage struct {
	ID        string     `json:"id"`
	SessionID string     `json:"id_quizzes_sessions"`
	Seq       int        `json:"seq"`     // 1-based generation order
	Name      string     `json:"package"` // ordinal name "package-N"
	Level     string     `json:"level"`   // CEFR pair, e.g. "B1-B2"
	CreatedAt time.Time  `json:"created_at"`
	Items     []QuizItem `json:"items,omitempty"`
}

type QuizSession struct {
	ID        string        `json:"id"`
	UserID    string        `json:"id_users"`
	Type      string        `json:"type"`
	Status    string        `json:"status"`
	StartedAt time.Time     `json:"date_started"`
	EndedAt   *time.Time    `json:"date_ended"`
	Packages  []QuizPackage `json:"packages,omitempty"`
}

// PackageResult is the score summary returned after submitting answers.
type PackageResult struct {
	PackageID       string  `json:"package_id"`
	CorrectCount    int     `json:"correct_count"`
	Total           int     `json:"total"`
	ScorePercentage float64 `json:"score_percentage"`
}
