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

type quizRepository struct {
	db *sql.DB
}

// NewQuizRepository creates a new QuizRepository implementation
func NewQuizRepository(db *sql.DB) repository.QuizRepository {
	return &quizRepository{db: db}
}

// quizTx implements repository.QuizTx on top of a single *sql.Tx. Savepoint
// names come from the caller and scope a single generation attempt.
type quizTx struct {
	tx *sql.Tx
}

func (t *quizTx) InsertSession(ctx context.Context, session models.QuizSession) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	session.ID = uuid.NewString()
	if session.StartedAt.IsZero() {
		session.StartedAt = time.Now().UTC()
	}
	if session.Status == "" {
		session.Status = models.SessionStatusActive
	}
	log.Debug("inserting quiz session: user_id=%s, type=%s", session.UserID, session.Type)

	_, err := t.tx.ExecContext(ctx, `
INSERT INTO quizzes_sessions (id, id_users, type, status, date_started)
VALUES (?, ?, ?, ?, ?)
`, session.ID, session.UserID, session.Type, session.Status, session.StartedAt)
	if err != nil {
		log.Error("failed to insert quiz session: %v", err)
		return nil, err
	}
	return &session, nil
}

func (t *quizTx) InsertPackage(ctx context.Context, pkg models.QuizPackage) (*models.QuizPackage, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	pkg.ID = uuid.NewString()
	if pkg.CreatedAt.IsZero() {
		pkg.CreatedAt = time.Now().UTC()
	}
	log.Debug("inserting quiz package: session_id=%s, seq=%d, level=%s", pkg.SessionID, pkg.Seq, pkg.Level)

	_, err := t.tx.ExecContext(ctx, `
INSERT INTO quizzes_packages (id, id_quizzes_sessions, seq, package, level, created_at)
VALUES (?, ?, ?, ?, ?, ?)
`, pkg.ID, pkg.SessionID, pkg.Seq, pkg.Name, pkg.Level, pkg.CreatedAt)
	if err != nil {
		log.Error("failed to insert quiz package: %v", err)
		return nil, err
	}
	return &pkg, nil
}

func (t *quizTx) InsertItems(ctx context.Context, items []models.QuizItem) ([]models.QuizItem, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("inserting %d quiz items", len(items))

	for i := range items {
		items[i].ID = uuid.NewString()
		if items[i].CreatedAt.IsZero() {
			items[i].CreatedAt = time.Now().UTC()
		}
		if _, err := t.tx.ExecContext(ctx, `
INSERT INTO quizzes_items (id, id_quizzes_packages, id_words, type, question, correct_answer, answer_a, answer_b, answer_c, user_answer, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`, items[i].ID, items[i].PackageID, items[i].WordID, items[i].Type, items[i].Question,
			items[i].CorrectAnswer, items[i].AnswerA, items[i].AnswerB, items[i].AnswerC, items[i].UserAnswer, items[i].CreatedAt); err != nil {
			log.Error("failed to insert quiz item: %v", err)
			return nil, err
		}
	}
	return items, nil
}

func (t *quizTx) Savepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "SAVEPOINT "+name)
	return err
}

func (t *quizTx) ReleaseSavepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "RELEASE SAVEPOINT "+name)
	return err
}

func (t *quizTx) RollbackToSavepoint(ctx context.Context, name string) error {
	_, err := t.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT "+name)
	return err
}

func (r *quizRepository) Transact(ctx context.Context, fn func(tx repository.QuizTx) error) error {
	return tx(ctx, r.db, func(t *sql.Tx) error {
		return fn(&quizTx{tx: t})
	})
}

func (r *quizRepository) SessionByID(ctx context.Context, id string, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("getting quiz session: id=%s, user_id=%s", id, userID)

	session, err := r.scanSession(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM quizzes_sessions
WHERE id = ? AND id_users = ?
`, id, userID)
	if err != nil || session == nil {
		return session, err
	}
	if session.Packages, err = r.PackagesBySession(ctx, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *quizRepository) LatestSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("getting latest quiz session: user_id=%s", userID)

	session, err := r.scanSession(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM quizzes_sessions
WHERE id_users = ?
ORDER BY date_started DESC, id DESC
LIMIT 1
`, userID)
	if err != nil || session == nil {
		return session, err
	}
	if session.Packages, err = r.PackagesBySession(ctx, session.ID); err != nil {
		return nil, err
	}
	return session, nil
}

func (r *quizRepository) ActiveSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("getting active quiz session: user_id=%s", userID)

	return r.scanSession(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM quizzes_sessions
WHERE id_users = ? AND status = ?
ORDER BY date_started DESC, id DESC
LIMIT 1
`, userID, models.SessionStatusActive)
}

func (r *quizRepository) SessionsByUser(ctx context.Context, userID string) ([]models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("listing quiz sessions: user_id=%s", userID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, id_users, type, status, date_started, date_ended
FROM quizzes_sessions
WHERE id_users = ?
ORDER BY date_started DESC, id DESC
`, userID)
	if err != nil {
		log.Error("failed to list quiz sessions: %v", err)
		return nil, err
	}
	defer rows.Close()

	var sessions []models.QuizSession
	for rows.Next() {
		var s models.QuizSession
		var sessionType sql.NullString
		var endedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.UserID, &sessionType, &s.Status, &s.StartedAt, &endedAt); err != nil {
			log.Error("failed to scan quiz session row: %v", err)
			return nil, err
		}
		s.Type = sessionType.String
		if endedAt.Valid {
			t := endedAt.Time
			s.EndedAt = &t
		}
		sessions = append(sessions, s)
	}
	log.Debug("found %d quiz sessions", len(sessions))
	return sessions, rows.Err()
}

func (r *quizRepository) UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("updating quiz session status: id=%s, status=%s", id, status)

	res, err := r.db.ExecContext(ctx, `
UPDATE quizzes_sessions SET status = ?, date_ended = ? WHERE id = ?
`, status, endedAt, id)
	if err != nil {
		log.Error("failed to update quiz session status: %v", err)
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

func (r *quizRepository) PackagesBySession(ctx context.Context, sessionID string) ([]models.QuizPackage, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("listing packages: session_id=%s", sessionID)

	rows, err := r.db.QueryContext(ctx, `
SELECT id, id_quizzes_sessions, seq, package, level, created_at
FROM quizzes_packages
WHERE id_quizzes_sessions = ?
ORDER BY seq ASC
`, sessionID)
	if err != nil {
		log.Error("failed to list packages: %v", err)
		return nil, err
	}
	defer rows.Close()

	var packages []models.QuizPackage
	for rows.Next() {
		var p models.QuizPackage
		var level sql.NullString
		if err := rows.Scan(&p.ID, &p.SessionID, &p.Seq, &p.Name, &level, &p.CreatedAt); err != nil {
			log.Error("failed to scan package row: %v", err)
			return nil, err
		}
		p.Level = level.String
		packages = append(packages, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range packages {
		if packages[i].Items, err = r.itemsByPackage(ctx, packages[i].ID); err != nil {
			return nil, err
		}
	}
	log.Debug("found %d packages", len(packages))
	return packages, nil
}

func (r *quizRepository) PackageByID(ctx context.Context, id string) (*models.QuizPackage, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("getting package: id=%s", id)

	var p models.QuizPackage
	var level sql.NullString
	err := r.db.QueryRowContext(ctx, `
SELECT id, id_quizzes_sessions, seq, package, level, created_at
FROM quizzes_packages
WHERE id = ?
`, id).Scan(&p.ID, &p.SessionID, &p.Seq, &p.Name, &level, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("package not found: id=%s", id)
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get package: %v", err)
		return nil, err
	}
	p.Level = level.String
	if p.Items, err = r.itemsByPackage(ctx, p.ID); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *quizRepository) SessionOwner(ctx context.Context, sessionID string) (string, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	var userID string
	err := r.db.QueryRowContext(ctx, `SELECT id_users FROM quizzes_sessions WHERE id = ?`, sessionID).Scan(&userID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		log.Error("failed to get session owner: %v", err)
		return "", err
	}
	return userID, nil
}

func (r *quizRepository) UpdateItemAnswer(ctx context.Context, itemID string, answer string) error {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")
	log.Debug("updating item answer: id=%s", itemID)

	res, err := r.db.ExecContext(ctx, `UPDATE quizzes_items SET user_answer = ? WHERE id = ?`, answer, itemID)
	if err != nil {
		log.Error("failed to update item answer: %v", err)
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

func (r *quizRepository) itemsByPackage(ctx context.Context, packageID string) ([]models.QuizItem, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	rows, err := r.db.QueryContext(ctx, `
SELECT id, id_quizzes_packages, id_words, type, question, correct_answer, answer_a, answer_b, answer_c, user_answer, created_at
FROM quizzes_items
WHERE id_quizzes_packages = ?
ORDER BY id ASC
`, packageID)
	if err != nil {
		log.Error("failed to query quiz items: %v", err)
		return nil, err
	}
	defer rows.Close()

	var items []models.QuizItem
	for rows.Next() {
		var item models.QuizItem
		var answer sql.NullString
		if err := rows.Scan(&item.ID, &item.PackageID, &item.WordID, &item.Type, &item.Question,
			&item.CorrectAnswer, &item.AnswerA, &item.AnswerB, &item.AnswerC, &answer, &item.CreatedAt); err != nil {
			log.Error("failed to scan quiz item row: %v", err)
			return nil, err
		}
		if answer.Valid {
			a := answer.String
			item.UserAnswer = &a
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (r *quizRepository) scanSession(ctx context.Context, query string, args ...any) (*models.QuizSession, error) {
	log := logger.FromContext(ctx).WithPrefix("quiz_repo")

	var s models.QuizSession
	var sessionType sql.NullString
	var endedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&s.ID, &s.UserID, &sessionType, &s.Status, &s.StartedAt, &endedAt)
	if errors.Is(err, sql.ErrNoRows) {
		log.Debug("quiz session not found")
		return nil, nil
	}
	if err != nil {
		log.Error("failed to get quiz session: %v", err)
		return nil, err
	}
	s.Type = sessionType.String
	if endedAt.Valid {
		t := endedAt.Time
		s.EndedAt = &t
	}
	return &s, nil
}
