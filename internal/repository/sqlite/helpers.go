package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/Masterminds/squirrel"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
)

// Helper functions shared across repository implementations

var sqlBuilder = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Question)

func tx(ctx context.Context, db *sql.DB, fn func(*sql.Tx) error) error {
	log := logger.FromContext(ctx).WithPrefix("repo")
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		log.Error("failed to begin transaction: %v", err)
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		log.Debug("transaction rolled back due to error: %v", err)
		return err
	}
	if err := tx.Commit(); err != nil {
		log.Error("failed to commit transaction: %v", err)
		return err
	}
	log.Debug("transaction committed")
	return nil
}

// loadMeanings attaches meanings to the given words in one query.
func loadMeanings(ctx context.Context, db *sql.DB, words map[string]*models.Word) error {
	if len(words) == 0 {
		return nil
	}
	log := logger.FromContext(ctx).WithPrefix("repo")

	ids := make([]string, 0, len(words))
	for id := range words {
		ids = append(ids, id)
	}

	sqlStr, args, err := sqlBuilder.Select("id", "id_words", "meaning").
		From("meanings").
		Where(squirrel.Eq{"id_words": ids}).
		OrderBy("id ASC").
		ToSql()
	if err != nil {
		return err
	}

	rows, err := db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		log.Error("failed to query meanings: %v", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var m models.Meaning
		if err := rows.Scan(&m.ID, &m.WordID, &m.Meaning); err != nil {
			log.Error("failed to scan meaning row: %v", err)
			return err
		}
		if w, ok := words[m.WordID]; ok {
			w.Meanings = append(w.Meanings, m)
		}
	}
	return rows.Err()
}

// part_of_speech is stored as a JSON array in a TEXT column.

func encodeStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeStrings(raw sql.NullString) ([]string, error) {
	if !raw.Valid || raw.String == "" {
		return nil, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw.String), &values); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, nil
	}
	return values, nil
}
