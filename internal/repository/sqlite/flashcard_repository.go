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

type flashcardRepository struct {
	db *sql.DB
}

// NewFlashcardRepository creates a new FlashcardRepository implementation
func NewFlashcardRepository(db *sql.DB) repository.FlashcardRepository {
	return &flashcardRepository{db: db}
}

func (r *flashcardRepository) InsertSession(ctx context.Context, session models.FlashcardSession) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting session: user_id=%s, type=%s", session.UserID, session.Type)

	session.ID = uuid.NewString()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO flashcards_sessions (id, id_users, type, status, date_started)
VALUES (?, ?, ?, ?, ?)
`, session.ID, session.UserID, session.Type, session.Status, session.StartedAt)
	if err != nil {
		log.Error("failed to insert session: %v", err)
		return nil, err
	}
	log.Debug("session inserted: id=%s", session.ID)
	return &session, nil
}

func (r *flashcardRepository) SessionByID(ctx context.Context, id string, userID string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting session: id=%s, user_id=%s", id, userID)

	session, err := r.scanSession(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM flashcards_sessions
WHERE id = ? AND id_users = ?
`, id, userID)
	if err != nil || session == nil {
		return session, err
	}
	if err := r.loadItems(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *flashcardRepository) LatestSessionByUser(ctx context.Context, userID string) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting latest session: user_id=%s", userID)

	session, err := r.scanSession(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM flashcards_sessions
WHERE id_users = ?
ORDER BY date_started DESC, id DESC
LIMIT 1
`, userID)
	if err != nil || session == nil {
		return session, err
	}
	if err := r.loadItems(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *flashcardRepository) SessionsByUser(ctx context.Context, userID string) ([]models.FlashcardSession, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("listing sessions: user_id=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM flashcards_sessions
WHERE id_users = ?
ORDER BY date_started DESC, id DESC
`, userID)
	if err != nil {
		log.Error("failed to list sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.FlashcardSession
	for rows.Next() {
		var s models.FlashcardSession
		var sessionType sql.NullString
		var endedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &sessionType, &s.Status, &s.StartedAt, &endedAt); err != nil {
			log.Error("failed to scan session row: %v", err)
			return nil, err
		}
		s.Type = sessionType.String
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d sessions", len(sessions))
	return sessions, rows.Err()
}

func (r *flashcardRepository) UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating session status: id=%s, status=%s", id, status)

	res, err := r.db.ExecContext(ctx, `
UPDATE flashcards_sessions SET status = ?, date_ended = ? WHERE id = ?
`, status, endedAt, id)
	if err != nil {
		log.Error("failed to update session status: %v", err)
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

func (r *flashcardRepository) InsertItems(ctx context.Context, items []models.FlashcardItem) ([]models.FlashcardItem, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("inserting %d items", len(items))

	err := tx(ctx, r.db, func(t *sql.Tx) error {
		for i := range items {
			items[i].ID = uuid.NewString()
			if _, err := t.ExecContext(ctx, `
INSERT INTO flashcards_items (id, id_sessions, id_repetitions, status, stage)
VALUES (?, ?, ?, ?, ?)
`, items[i].ID, items[i].SessionID, items[i].RepetitionID, items[i].Status, items[i].Stage); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		log.Error("failed to insert items: %v", err)
		return nil, err
	}
	return items, nil
}

func (r *flashcardRepository) ItemByID(ctx context.Context, id string) (*models.FlashcardItem, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("getting item: id=%s", id)

	row := r.db.QueryRowContext(ctx, `
SELECT i.id, i.id_sessions, i.id_repetitions, i.status, i.stage, `+repetitionColumns+`
FROM flashcards_items i
JOIN repetitions r ON r.id = i.id_repetitions
JOIN words w ON w.id = r.id_words
WHERE i.id = ?
`, id)

	var item models.FlashcardItem
	var rep models.Repetition
	var word models.Word
	var pos sql.NullString
	var lastRep sql.NullTime
	err := row.Scan(
		&item.ID, &item.SessionID, &item.RepetitionID, &item.Status, &item.Stage,
		&rep.ID, &rep.UserID, &rep.WordID, &rep.EasinessFactor, &rep.Repetitions, &rep.NextInterval, &rep.DateNextRep, &lastRep,
		&word.ID, &word.Level, &pos, &word.Word, &word.Pronunciation, &word.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("item not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get item: %v", err)
		return nil, err
	}
	if lastRep.Valid {
		t := lastRep.Time
		rep.DateLastRep = &t
	}
	if word.PartOfSpeech, err = decodeStrings(pos); err != nil {
		log.Error("failed to decode part_of_speech: %v", err)
		return nil, err
	}
	rep.Word = &word
	item.Repetition = &rep
	if err := loadMeanings(ctx, r.db, map[string]*models.Word{word.ID: &word}); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *flashcardRepository) UpdateItemStage(ctx context.Context, id string, stage string) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")
	log.Debug("updating item stage: id=%s, stage=%s", id, stage)

	res, err := r.db.ExecContext(ctx, `UPDATE flashcards_items SET stage = ? WHERE id = ?`, stage, id)
	if err != nil {
		log.Error("failed to update item stage: %v", err)
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

func (r *flashcardRepository) scanSession(ctx context.Context, query string, args ...any) (*models.FlashcardSession, error) {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	var s models.FlashcardSession
	var sessionType sql.NullString
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.UserID, &sessionType, &s.Status, &s.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("session not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get session: %v", err)
		return nil, err
	}
	s.Type = sessionType.String
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}

func (r *flashcardRepository) loadItems(ctx context.Context, session *models.FlashcardSession) error {
	log := logger.FromContext(ctx).WithPrefix("flashcard_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT i.id, i.id_sessions, i.id_repetitions, i.status, i.stage, `+repetitionColumns+`
FROM flashcards_items i
JOIN repetitions r ON r.id = i.id_repetitions
JOIN words w ON w.id = r.id_words
WHERE i.id_sessions = ?
ORDER BY i.id ASC
`, session.ID)
	if err != nil {
		log.Error("failed to query session items: %v", err)
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var item models.FlashcardItem
		var rep models.Repetition
		var word models.Word
		var pos sql.NullString
		var lastRep sql.NullTime
		if err := rows.Scan(
			&item.ID, &item.SessionID, &item.RepetitionID, &item.Status, &item.Stage,
			&rep.ID, &rep.UserID, &rep.WordID, &rep.EasinessFactor, &rep.Repetitions, &rep.NextInterval, &rep.DateNextRep, &lastRep,
			&word.ID, &word.Level, &pos, &word.Word, &word.Pronunciation, &word.CreatedAt,
		); err != nil {
			log.Error("failed to scan item row: %v", err)
			return err
		}
		if lastRep.Valid {
			t := lastRep.Time
			rep.DateLastRep = &t
		}
		if word.PartOfSpeech, err = decodeStrings(pos); err != nil {
			log.Error("failed to decode part_of_speech: %v", err)
			return err
		}
		rep.Word = &word
		item.Repetition = &rep
		session.Items = append(session.Items, item)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	byID := make(map[string]*models.Word, len(session.Items))
	for i := range session.Items {
		w := session.Items[i].Repetition.Word
		byID[w.ID] = w
	}
	return loadMeanings(ctx, r.db, byID)
}
