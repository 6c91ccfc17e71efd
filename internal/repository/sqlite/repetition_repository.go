package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/mwrona/vocaflash/internal/logger"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
)

type repetitionRepository struct {
	db *sql.DB
}

// NewRepetitionRepository creates a new RepetitionRepository implementation
func NewRepetitionRepository(db *sql.DB) repository.RepetitionRepository {
	return &repetitionRepository{db: db}
}

const repetitionColumns = `
r.id, r.id_users, r.id_words, r.easiness_factor, r.repetitions, r.next_interval, r.date_next_rep, r.date_last_rep,
w.id, w.level, w.part_of_speech, w.word, w.pronunciation, w.created_at`

func scanRepetition(scanner interface{ Scan(...any) error }) (models.Repetition, error) {
	var rep models.Repetition
	var w models.Word
	var pos sql.NullString
	var lastRep sql.NullTime
	err := scanner.Scan(
		&rep.ID, &rep.UserID, &rep.WordID, &rep.EasinessFactor, &rep.Repetitions, &rep.NextInterval, &rep.DateNextRep, &lastRep,
		&w.ID, &w.Level, &pos, &w.Word, &w.Pronunciation, &w.CreatedAt,
	)
	if err != nil {
		return rep, err
	}
	if lastRep.Valid {
		t := lastRep.Time
		rep.DateLastRep = &t
	}
	if w.PartOfSpeech, err = decodeStrings(pos); err != nil {
		return rep, err
	}
	rep.Word = &w
	return rep, nil
}

func (r *repetitionRepository) Get(ctx context.Context, id string, userID string) (*models.Repetition, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("getting repetition: id=%s, user_id=%s", id, userID)

	row := r.db.QueryRowContext(ctx, `
SELECT `+repetitionColumns+`
FROM repetitions r
JOIN words w ON w.id = r.id_words
WHERE r.id = ? AND r.id_users = ?
`, id, userID)
	rep, err := scanRepetition(row)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("repetition not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get repetition: %v", err)
		return nil, err
	}
	return &rep, nil
}

func (r *repetitionRepository) ListByUser(ctx context.Context, userID string, wordID string) ([]models.Repetition, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("listing repetitions: user_id=%s, word_id=%s", userID, wordID)

	query := `
SELECT ` + repetitionColumns + `
FROM repetitions r
JOIN words w ON w.id = r.id_words
WHERE r.id_users = ?`
	args := []any{userID}
	if wordID != "" {
		query += ` AND r.id_words = ?`
		args = append(args, wordID)
	}
	query += ` ORDER BY r.date_next_rep ASC, r.id ASC`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to list repetitions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reps []models.Repetition
	for rows.Next() {
		rep, err := scanRepetition(rows)
		if err != nil {
			log.Error("failed to scan repetition row: %v", err)
			return nil, err
		}
		reps = append(reps, rep)
	}
	log.Debug("found %d repetitions", len(reps))
	return reps, rows.Err()
}

func (r *repetitionRepository) Update(ctx context.Context, rep models.Repetition) error {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("updating repetition: id=%s, ef=%.2f, interval=%d", rep.ID, rep.EasinessFactor, rep.NextInterval)

	res, err := r.db.ExecContext(ctx, `
UPDATE repetitions
SET easiness_factor = ?, repetitions = ?, next_interval = ?, date_next_rep = ?, date_last_rep = ?
WHERE id = ?
`, rep.EasinessFactor, rep.Repetitions, rep.NextInterval, rep.DateNextRep, rep.DateLastRep, rep.ID)
	if err != nil {
		log.Error("failed to update repetition: %v", err)
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

func (r *repetitionRepository) Delete(ctx context.Context, id string, userID string) error {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("deleting repetition: id=%s, user_id=%s", id, userID)

	res, err := r.db.ExecContext(ctx, `DELETE FROM repetitions WHERE id = ? AND id_users = ?`, id, userID)
	if err != nil {
		log.Error("failed to delete repetition: %v", err)
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

func (r *repetitionRepository) DueByUser(ctx context.Context, userID string, limit int) ([]models.Repetition, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("fetching due repetitions: user_id=%s, limit=%d", userID, limit)

	rows, err := r.db.QueryContext(ctx, `
SELECT `+repetitionColumns+`
FROM repetitions r
JOIN words w ON w.id = r.id_words
WHERE r.id_users = ? AND r.date_next_rep <= CURRENT_TIMESTAMP
ORDER BY r.date_next_rep ASC, r.id ASC
LIMIT ?
`, userID, limit)
	if err != nil {
		log.Error("failed to query due repetitions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var reps []models.Repetition
	for rows.Next() {
		rep, err := scanRepetition(rows)
		if err != nil {
			log.Error("failed to scan repetition row: %v", err)
			return nil, err
		}
		reps = append(reps, rep)
	}
	log.Debug("found %d due repetitions", len(reps))
	return reps, rows.Err()
}

func (r *repetitionRepository) CreateForWords(ctx context.Context, userID string, words []models.Word) ([]models.Repetition, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("creating repetitions: user_id=%s, words=%d", userID, len(words))

	now := time.Now().UTC()
	dueToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	reps := make([]models.Repetition, 0, len(words))
	err := tx(ctx, r.db, func(t *sql.Tx) error {
		for i := range words {
			w := words[i]
			rep := models.Repetition{
				ID:             uuid.NewString(),
				UserID:         userID,
				WordID:         w.ID,
				EasinessFactor: models.DefaultEasinessFactor,
				Repetitions:    0,
				NextInterval:   0,
				DateNextRep:    dueToday,
				Word:           &w,
			}
			if _, err := t.ExecContext(ctx, `
INSERT INTO repetitions (id, id_users, id_words, easiness_factor, repetitions, next_interval, date_next_rep)
VALUES (?, ?, ?, ?, ?, ?, ?)
`, rep.ID, rep.UserID, rep.WordID, rep.EasinessFactor, rep.Repetitions, rep.NextInterval, rep.DateNextRep); err != nil {
				return err
			}
			reps = append(reps, rep)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to create repetitions: %v", err)
		return nil, err
	}
	log.Debug("created %d repetitions", len(reps))
	return reps, nil
}

func (r *repetitionRepository) StatsByLevel(ctx context.Context, userID string) ([]models.LevelStats, error) {
	log := logger.FromContext(ctx).WithPrefix("repetition_repo")
	log.Debug("aggregating level stats: user_id=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT w.level,
       COUNT(*) AS total,
       COUNT(r.id) AS total_user,
       COALESCE(SUM(CASE WHEN r.id IS NOT NULL AND r.easiness_factor < ? THEN 1 ELSE 0 END), 0) AS learning,
       COALESCE(SUM(CASE WHEN r.easiness_factor >= ? THEN 1 ELSE 0 END), 0) AS mastered
FROM words w
LEFT JOIN repetitions r ON r.id_words = w.id AND r.id_users = ?
GROUP BY w.level
ORDER BY w.level ASC
`, models.MasteredEasinessFactor, models.MasteredEasinessFactor, userID)
	if err != nil {
		log.Error("failed to query level stats: %v", err)
		return nil, err
	}
	defer rows.Close()

	var stats []models.LevelStats
	for rows.Next() {
		var s models.LevelStats
		if err := rows.Scan(&s.Level, &s.Total, &s.TotalUser, &s.Learning, &s.Mastered); err != nil {
			log.Error("failed to scan stats row: %v", err)
			return nil, err
		}
		stats = append(stats, s)
	}
	log.Debug("aggregated stats for %d levels", len(stats))
	return stats, rows.Err()
}
