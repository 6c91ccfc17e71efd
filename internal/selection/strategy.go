// Package selection picks unlearned words for new flashcard sessions.
package selection

import (
	"context"
	"strings"

	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

const (
	// TypeRandom selects from the whole unlearned pool.
	TypeRandom = "random"
	// LevelPrefix marks level-filtered session types, e.g. "level_a1_a2".
	LevelPrefix = "level_"
)

var validLevels = map[string]bool{
	"a1": true, "a2": true, "b1": true, "b2": true, "c1": true, "c2": true,
}

// Strategy selects new (unlearned) words for a user, in random order.
type Strategy interface {
	SelectNew(ctx context.Context, userID string, limit int, sessionType string) ([]models.Word, error)
}

type randomStrategy struct {
	words repository.WordRepository
}

func (s *randomStrategy) SelectNew(ctx context.Context, userID string, limit int, sessionType string) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("selection")
	log.Debug("selecting %d random new words: user_id=%s", limit, userID)

	return s.words.UnlearnedByUser(ctx, userID, nil, limit)
}

type levelStrategy struct {
	words repository.WordRepository
}

func (s *levelStrategy) SelectNew(ctx context.Context, userID string, limit int, sessionType string) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("selection")

	levels := ParseLevels(sessionType)
	if len(levels) == 0 {
		// Caller falls back to its defaults on an empty result.
		log.Warn("no valid levels in session type %q", sessionType)
		return nil, nil
	}

	log.Debug("selecting %d new words for levels %v: user_id=%s", limit, levels, userID)
	return s.words.UnlearnedByUser(ctx, userID, levels, limit)
}

// ParseLevels extracts CEFR level codes from a session type of the form
// "level_<code>[_<code>...]". Unknown codes are dropped; anything without the
// prefix yields nil.
func ParseLevels(sessionType string) []string {
	t := strings.ToLower(strings.TrimSpace(sessionType))
	if !strings.HasPrefix(t, LevelPrefix) {
		return nil
	}

	var levels []string
	for _, part := range strings.Split(strings.TrimPrefix(t, LevelPrefix), "_") {
		part = strings.TrimSpace(part)
		if validLevels[part] {
			levels = append(levels, part)
		}
	}
	return levels
}

// Factory resolves a session type string to a strategy. Never fails: empty or
// unknown types fall back to the random strategy with a diagnostic.
type Factory struct {
	random Strategy
	level  Strategy
}

// NewFactory creates a Factory backed by the given word repository.
func NewFactory(words repository.WordRepository) *Factory {
	return &Factory{
		random: &randomStrategy{words: words},
		level:  &levelStrategy{words: words},
	}
}

// Strategy returns the strategy for the given session type.
func (f *Factory) Strategy(ctx context.Context, sessionType string) Strategy {
	log := logger.FromContext(ctx).WithPrefix("selection")

	normalized := strings.ToLower(strings.TrimSpace(sessionType))
	switch {
	case normalized == "":
		log.Debug("no strategy type provided, using random")
		return f.random
	case normalized == TypeRandom:
		return f.random
	case strings.HasPrefix(normalized, LevelPrefix):
		return f.level
	default:
		log.Warn("unknown strategy type %q, falling back to random", sessionType)
		return f.random
	}
}
