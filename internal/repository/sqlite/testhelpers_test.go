package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/repository/sqlite"
)

func seedUser(t *testing.T, db *sql.DB, id, email string) *models.User {
	t.Helper()
	user, err := sqlite.NewUserRepository(db).Ensure(context.Background(), models.User{ID: id, Email: email})
	require.NoError(t, err)
	return user
}

func seedWord(t *testing.T, db *sql.DB, word, level string, meanings ...string) *models.Word {
	t.Helper()
	w := models.Word{Word: word, Level: level, PartOfSpeech: []string{"noun"}}
	for _, m := range meanings {
		w.Meanings = append(w.Meanings, models.Meaning{Meaning: m})
	}
	created, err := sqlite.NewWordRepository(db).Insert(context.Background(), w)
	require.NoError(t, err)
	return created
}
