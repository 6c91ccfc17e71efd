// Package ai generates multiple-choice quiz questions for vocabulary words
// through the xAI chat completions API.
package ai

import (
	"context"

	"github.com/mwrona/vocaflash/internal/models"
)

// GeneratedQuestion is a single multiple-choice question produced by the
// model. CorrectAnswer holds the letter ("A", "B" or "C") of the correct
// option, not its text.
type GeneratedQuestion struct {
	WordID        string `json:"wordId"`
	Type          string `json:"type"`
	Question      string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
	AnswerA       string `json:"answerA"`
	AnswerB       string `json:"answerB"`
	AnswerC       string `json:"answerC"`
}

// Generator produces quiz questions for a set of words at a target
// proficiency level such as "B1-B2".
type Generator interface {
	GenerateQuizQuestions(ctx context.Context, words []models.Word, level string) ([]GeneratedQuestion, error)
}
