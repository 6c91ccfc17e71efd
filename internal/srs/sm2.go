// Package srs implements the SuperMemo-2 spaced repetition algorithm.
package srs

import (
	"math"
	"time"

	"github.com/mwrona/vocaflash/internal/models"
)

// SM-2 constants.
const (
	// MinEasinessFactor keeps EF above the schema constraint.
	MinEasinessFactor = 1.31
	// PassingScore is the recall quality threshold for a successful review.
	PassingScore = 3
	// FirstInterval is the interval after the first successful recall (days).
	FirstInterval = 1
	// SecondInterval is the interval after the second consecutive recall (days).
	SecondInterval = 6
)

// State is the per-word input to the calculation.
type State struct {
	EasinessFactor float64
	Repetitions    int // consecutive successful recalls
	NextInterval   int // days
}

// Result is the new state plus review dates and the suggested item stage.
type Result struct {
	State
	DateLastRep time.Time
	DateNextRep time.Time
	Stage       string // models.ItemStagePassed or models.ItemStageLearning
}

// Calculate computes the next repetition state from the current state and a
// recall quality score.
//
//	score >= 3: recalled, interval grows (1 day, then 6, then interval*EF)
//	score <  3: forgotten, repetitions and interval reset to 0
//
// The easiness factor update applies either way and never drops below
// MinEasinessFactor. Total function, no side effects; callers must clamp
// score to [0,5] and keep EF >= MinEasinessFactor, behavior outside that
// domain is unspecified.
func Calculate(current State, score int) Result {
	ef := current.EasinessFactor
	repetitions := current.Repetitions
	interval := current.NextInterval

	if score >= PassingScore {
		interval = nextInterval(repetitions, interval, ef)
		repetitions++
	} else {
		repetitions = 0
		interval = 0
	}

	ef = nextEasinessFactor(ef, score)

	now := time.Now()
	return Result{
		State: State{
			EasinessFactor: ef,
			Repetitions:    repetitions,
			NextInterval:   interval,
		},
		DateLastRep: now,
		DateNextRep: now.AddDate(0, 0, interval),
		Stage:       stageFor(interval),
	}
}

func nextInterval(repetitions, currentInterval int, ef float64) int {
	switch repetitions {
	case 0:
		return FirstInterval
	case 1:
		return SecondInterval
	default:
		return int(math.Round(float64(currentInterval) * ef))
	}
}

// nextEasinessFactor applies EF' = EF + (0.1 - (5-q)*(0.08 + (5-q)*0.02)).
func nextEasinessFactor(ef float64, score int) float64 {
	q := float64(score)
	next := ef + (0.1 - (5-q)*(0.08+(5-q)*0.02))
	if next < MinEasinessFactor {
		return MinEasinessFactor
	}
	return next
}

func stageFor(interval int) string {
	if interval >= 1 {
		return models.ItemStagePassed
	}
	return models.ItemStageLearning
}
