package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

type wordRepository struct {
	db *sql.DB
}

// NewWordRepository creates a new WordRepository implementation
func NewWordRepository(db *sql.DB) repository.WordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) Get(ctx context.Context, id string) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("getting word: id=%s", id)

	var w models.Word
	var pos sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT id, level, part_of_speech, word, pronunciation, created_at
FROM words
WHERE id = ?
`, id).Scan(&w.ID, &w.Level, &pos, &w.Word, &w.Pronunciation, &w.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("word not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, err
	}
	if w.PartOfSpeech, err = decodeStrings(pos); err != nil {
		log.Error("failed to decode part_of_speech: %v", err)
		return nil, err
	}

	if err := loadMeanings(ctx, r.db, map[string]*models.Word{w.ID: &w}); err != nil {
		return nil, err
	}
	log.Debug("word found: word=%s, level=%s", w.Word, w.Level)
	return &w, nil
}

func (r *wordRepository) List(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("listing words with filter: level=%s, search=%s, limit=%d, offset=%d",
		filter.Level, filter.Search, filter.Limit, filter.Offset)

	query := sqlBuilder.Select("id", "level", "part_of_speech", "word", "pronunciation", "created_at").
		From("words").
		OrderBy("word ASC")

	// Dynamic WHERE clauses
	if filter.Level != "" {
		query = query.Where(squirrel.Eq{"level": filter.Level})
	}
	if filter.Search != "" {
		query = query.Where(squirrel.Like{"word": "%" + filter.Search + "%"})
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 200
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	query = query.Limit(uint64(limit)).Offset(uint64(offset))

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	words, err := r.queryWords(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d words", len(words))
	return words, nil
}

func (r *wordRepository) Count(ctx context.Context, filter models.WordFilter) (int, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	query := sqlBuilder.Select("COUNT(*)").From("words")

	// Same WHERE logic as List()
	if filter.Level != "" {
		query = query.Where(squirrel.Eq{"level": filter.Level})
	}
	if filter.Search != "" {
		query = query.Where(squirrel.Like{"word": "%" + filter.Search + "%"})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return 0, err
	}

	var count int
	if err := r.db.QueryRowContext(ctx, sqlStr, args...).Scan(&count); err != nil {
		log.Error("failed to count words: %v", err)
		return 0, err
	}
	log.Debug("counted %d words", count)
	return count, nil
}

func (r *wordRepository) Insert(ctx context.Context, word models.Word) (*models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("inserting word: word=%s, level=%s", word.Word, word.Level)

	word.ID = uuid.NewString()
	pos, err := encodeStrings(word.PartOfSpeech)
	if err != nil {
		return nil, err
	}

	err = tx(ctx, r.db, func(t *sql.Tx) error {
		if _, err := t.ExecContext(ctx, `
INSERT INTO words (id, level, part_of_speech, word, pronunciation)
VALUES (?, ?, ?, ?, ?)
`, word.ID, word.Level, pos, word.Word, word.Pronunciation); err != nil {
			return err
		}
		for i := range word.Meanings {
			word.Meanings[i].ID = uuid.NewString()
			word.Meanings[i].WordID = word.ID
			if _, err := t.ExecContext(ctx, `
INSERT INTO meanings (id, id_words, meaning) VALUES (?, ?, ?)
`, word.Meanings[i].ID, word.ID, word.Meanings[i].Meaning); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert word: %v", err)
		return nil, err
	}

	log.Debug("word inserted: id=%s", word.ID)
	return r.Get(ctx, word.ID)
}

func (r *wordRepository) Update(ctx context.Context, word models.Word) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("updating word: id=%s", word.ID)

	pos, err := encodeStrings(word.PartOfSpeech)
	if err != nil {
		return err
	}

	err = tx(ctx, r.db, func(t *sql.Tx) error {
		res, err := t.ExecContext(ctx, `
UPDATE words SET level = ?, part_of_speech = ?, word = ?, pronunciation = ?
WHERE id = ?
`, word.Level, pos, word.Word, word.Pronunciation, word.ID)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}

		// Meanings are replaced wholesale.
		if _, err := t.ExecContext(ctx, `DELETE FROM meanings WHERE id_words = ?`, word.ID); err != nil {
			return err
		}
		for i := range word.Meanings {
			id := word.Meanings[i].ID
			if id == "" {
				id = uuid.NewString()
			}
			if _, err := t.ExecContext(ctx, `
INSERT INTO meanings (id, id_words, meaning) VALUES (?, ?, ?)
`, id, word.ID, word.Meanings[i].Meaning); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		log.Error("failed to update word: %v", err)
	}
	return err
}

func (r *wordRepository) Delete(ctx context.Context, id string) error {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("deleting word: id=%s", id)

	res, err := r.db.ExecContext(ctx, `DELETE FROM words WHERE id = ?`, id)
	if err != nil {
		log.Error("failed to delete word: %v", err)
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

func (r *wordRepository) UnlearnedByUser(ctx context.Context, userID string, levels []string, limit int) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("fetching unlearned words: user_id=%s, levels=%v, limit=%d", userID, levels, limit)

	query := sqlBuilder.Select("w.id", "w.level", "w.part_of_speech", "w.word", "w.pronunciation", "w.created_at").
		From("words w").
		Where("w.id NOT IN (SELECT id_words FROM repetitions WHERE id_users = ?)", userID).
		OrderBy("RANDOM()").
		Limit(uint64(limit))

	if len(levels) > 0 {
		query = query.Where(squirrel.Eq{"LOWER(w.level)": lowered(levels)})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	words, err := r.queryWords(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d unlearned words", len(words))
	return words, nil
}

func (r *wordRepository) RandomByLevels(ctx context.Context, levels []string, limit int) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")
	log.Debug("fetching random words: levels=%v, limit=%d", levels, limit)

	query := sqlBuilder.Select("id", "level", "part_of_speech", "word", "pronunciation", "created_at").
		From("words").
		OrderBy("RANDOM()").
		Limit(uint64(limit))
	if len(levels) > 0 {
		query = query.Where(squirrel.Eq{"LOWER(level)": lowered(levels)})
	}

	sqlStr, args, err := query.ToSql()
	if err != nil {
		log.Error("failed to build query: %v", err)
		return nil, err
	}

	words, err := r.queryWords(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	log.Debug("found %d random words", len(words))
	return words, nil
}

func (r *wordRepository) queryWords(ctx context.Context, sqlStr string, args ...any) ([]models.Word, error) {
	log := logger.FromContext(ctx).WithPrefix("word_repo")

	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query words: %v", err)
		return nil, err
	}
	defer rows.Close()

	var words []models.Word
	byID := make(map[string]*models.Word)
	for rows.Next() {
		var w models.Word
		var pos sql.NullString
		if err := rows.Scan(&w.ID, &w.Level, &pos, &w.Word, &w.Pronunciation, &w.CreatedAt); err != nil {
			log.Error("failed to scan word row: %v", err)
			return nil, err
		}
		if w.PartOfSpeech, err = decodeStrings(pos); err != nil {
			log.Error("failed to decode part_of_speech: %v", err)
			return nil, err
		}
		words = append(words, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range words {
		byID[words[i].ID] = &words[i]
	}
	if err := loadMeanings(ctx, r.db, byID); err != nil {
		return nil, err
	}
	return words, nil
}

func lowered(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
