package models

import "time"

// CEFR proficiency levels, from easiest to hardest.
var CEFRLevels = []string{"A1", "A2", "B1", "B2", "C1", "C2"}

type Word struct {
	ID            string    `json:"id"`
	Level         string    `json:"level"` // CEFR code: A1..C2
	PartOfSpeech  []string  `json:"part_of_speech"`
	Word          string    `json:"word"`
	Pronunciation string    `json:"pronunciation"`
	CreatedAt     time.Time `json:"created_at"`
	Meanings      []Meaning `json:"meanings,omitempty"`
}

type Meaning struct {
	ID      string `json:"id"`
	WordID  string `json:"-"`
	Meaning string `json:"meaning"`
}

// WordFilter narrows word listing.
type WordFilter struct {
	Level  string
	Search string
	Limit  int
	Offset int
}
