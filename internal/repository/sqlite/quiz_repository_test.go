package sqlite_test

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository"
	"github.com/mwrona/vocaflash/internal/repository/sqlite"
	"github.com/mwrona/vocaflash/internal/testutil"
)

func quizItemFor(packageID, wordID string, n int) models.QuizItem {
	return models.QuizItem{
		PackageID:     packageID,
		WordID:        wordID,
		Type:          models.QuizTypeMatching,
		Question:      fmt.Sprintf("question %d", n),
		CorrectAnswer: "A",
		AnswerA:       "a",
		AnswerB:       "b",
		AnswerC:       "c",
	}
}

func TestQuizRepository_TransactCreatesSessionWithPackage(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")
	word := seedWord(t, db, "apple", "A1", "a fruit")

	var sessionID string
	err := repo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID, Type: "default"})
		if err != nil {
			return err
		}
		sessionID = session.ID

		pkg, err := tx.InsertPackage(ctx, models.QuizPackage{
			SessionID: session.ID,
			Seq:       1,
			Name:      "package-1",
			Level:     "B1-B2",
		})
		if err != nil {
			return err
		}
		_, err = tx.InsertItems(ctx, []models.QuizItem{quizItemFor(pkg.ID, word.ID, 1)})
		return err
	})
	require.NoError(t, err)

	got, err := repo.SessionByID(ctx, sessionID, user.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.SessionStatusActive, got.Status)
	require.Len(t, got.Packages, 1)
	assert.Equal(t, "package-1", got.Packages[0].Name)
	assert.Equal(t, "B1-B2", got.Packages[0].Level)
	require.Len(t, got.Packages[0].Items, 1)
	assert.Nil(t, got.Packages[0].Items[0].UserAnswer)
}

func TestQuizRepository_TransactRollbackDiscardsEverything(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")

	err := repo.Transact(ctx, func(tx repository.QuizTx) error {
		if _, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID}); err != nil {
			return err
		}
		return fmt.Errorf("generation failed")
	})
	require.Error(t, err)

	latest, err := repo.LatestSessionByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestQuizRepository_SavepointRollbackKeepsPackage(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")
	word := seedWord(t, db, "apple", "A1", "a fruit")

	var pkgID string
	err := repo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID})
		if err != nil {
			return err
		}
		pkg, err := tx.InsertPackage(ctx, models.QuizPackage{SessionID: session.ID, Seq: 1, Name: "package-1", Level: "B1-B2"})
		if err != nil {
			return err
		}
		pkgID = pkg.ID

		// First attempt is rolled back to its savepoint, second succeeds.
		if err := tx.Savepoint(ctx, "save_items_1"); err != nil {
			return err
		}
		if _, err := tx.InsertItems(ctx, []models.QuizItem{quizItemFor(pkg.ID, word.ID, 1)}); err != nil {
			return err
		}
		if err := tx.RollbackToSavepoint(ctx, "save_items_1"); err != nil {
			return err
		}

		if err := tx.Savepoint(ctx, "save_items_2"); err != nil {
			return err
		}
		if _, err := tx.InsertItems(ctx, []models.QuizItem{quizItemFor(pkg.ID, word.ID, 2)}); err != nil {
			return err
		}
		return tx.ReleaseSavepoint(ctx, "save_items_2")
	})
	require.NoError(t, err)

	pkg, err := repo.PackageByID(ctx, pkgID)
	require.NoError(t, err)
	require.NotNil(t, pkg)
	require.Len(t, pkg.Items, 1)
	assert.Equal(t, "question 2", pkg.Items[0].Question)
}

func TestQuizRepository_PackagesBySessionOrderedBySeq(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")

	var sessionID string
	err := repo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID})
		if err != nil {
			return err
		}
		sessionID = session.ID
		// Inserted out of order on purpose.
		for _, seq := range []int{2, 1, 3} {
			if _, err := tx.InsertPackage(ctx, models.QuizPackage{
				SessionID: session.ID,
				Seq:       seq,
				Name:      fmt.Sprintf("package-%d", seq),
				Level:     "B1-B2",
			}); err != nil {
				return err
			}
		}
		return nil
	})
	require.NoError(t, err)

	packages, err := repo.PackagesBySession(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, packages, 3)
	for i, pkg := range packages {
		assert.Equal(t, i+1, pkg.Seq)
		assert.Equal(t, fmt.Sprintf("package-%d", i+1), pkg.Name)
	}
}

func TestQuizRepository_UpdateItemAnswerAndOwner(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")
	word := seedWord(t, db, "apple", "A1", "a fruit")

	var sessionID, itemID string
	err := repo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID})
		if err != nil {
			return err
		}
		sessionID = session.ID
		pkg, err := tx.InsertPackage(ctx, models.QuizPackage{SessionID: session.ID, Seq: 1, Name: "package-1", Level: "B1-B2"})
		if err != nil {
			return err
		}
		items, err := tx.InsertItems(ctx, []models.QuizItem{quizItemFor(pkg.ID, word.ID, 1)})
		if err != nil {
			return err
		}
		itemID = items[0].ID
		return nil
	})
	require.NoError(t, err)

	owner, err := repo.SessionOwner(ctx, sessionID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, owner)

	owner, err = repo.SessionOwner(ctx, "no-such-id")
	require.NoError(t, err)
	assert.Empty(t, owner)

	require.NoError(t, repo.UpdateItemAnswer(ctx, itemID, "B"))
	// Re-submission overwrites.
	require.NoError(t, repo.UpdateItemAnswer(ctx, itemID, "A"))
	assert.ErrorIs(t, repo.UpdateItemAnswer(ctx, "no-such-id", "A"), sql.ErrNoRows)

	session, err := repo.SessionByID(ctx, sessionID, user.ID)
	require.NoError(t, err)
	require.Len(t, session.Packages, 1)
	require.Len(t, session.Packages[0].Items, 1)
	require.NotNil(t, session.Packages[0].Items[0].UserAnswer)
	assert.Equal(t, "A", *session.Packages[0].Items[0].UserAnswer)
}

func TestQuizRepository_ActiveSessionByUser(t *testing.T) {
	db := testutil.NewTestDB(t)
	defer testutil.MustClose(t, db)
	repo := sqlite.NewQuizRepository(db)
	ctx := context.Background()

	user := seedUser(t, db, "user-1", "u1@example.com")

	none, err := repo.ActiveSessionByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	var sessionID string
	err = repo.Transact(ctx, func(tx repository.QuizTx) error {
		session, err := tx.InsertSession(ctx, models.QuizSession{UserID: user.ID})
		if err != nil {
			return err
		}
		sessionID = session.ID
		return nil
	})
	require.NoError(t, err)

	active, err := repo.ActiveSessionByUser(ctx, user.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, sessionID, active.ID)

	now := time.Now().UTC()
	require.NoError(t, repo.UpdateSessionStatus(ctx, sessionID, models.SessionStatusCompleted, &now))

	none, err = repo.ActiveSessionByUser(ctx, user.ID)
	require.NoError(t, err)
	assert.Nil(t, none)
}
