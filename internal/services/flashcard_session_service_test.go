package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/selection"
	"github.com/mwrona/vocaflash/internal/services"
	"github.com/mwrona/vocaflash/internal/testutil/mocks"
)

type flashcardFixture struct {
	sessions    *mocks.MockFlashcardRepository
	repetitions *mocks.MockRepetitionRepository
	users       *mocks.MockUserRepository
	words       *mocks.MockWordRepository
	service     services.FlashcardSessionService
}

func newFlashcardFixture() *flashcardFixture {
	f := &flashcardFixture{
		sessions:    new(mocks.MockFlashcardRepository),
		repetitions: new(mocks.MockRepetitionRepository),
		users:       new(mocks.MockUserRepository),
		words:       new(mocks.MockWordRepository),
	}
	f.service = services.NewFlashcardSessionService(
		f.sessions,
		f.repetitions,
		services.NewUserService(f.users),
		selection.NewFactory(f.words),
	)
	return f
}

func (f *flashcardFixture) assertExpectations(t *testing.T) {
	f.sessions.AssertExpectations(t)
	f.repetitions.AssertExpectations(t)
	f.users.AssertExpectations(t)
	f.words.AssertExpectations(t)
}

func userWithDefaults(id string) *models.User {
	return &models.User{
		ID:               id,
		DailyNewLimit:    models.DefaultDailyNewLimit,
		DailyReviewLimit: models.DefaultDailyReviewLimit,
		LearningStrategy: models.DefaultLearningStrategy,
	}
}

func TestStartSession_ResumesTodaysSession(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	today := &models.FlashcardSession{
		ID:        "s1",
		UserID:    "user-1",
		Status:    models.SessionStatusActive,
		StartedAt: time.Now(),
	}
	f.users.On("Get", ctx, "user-1").Return(userWithDefaults("user-1"), nil)
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(today, nil)

	got, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)

	// Same-day start keeps returning the same session.
	got, err = f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	f.assertExpectations(t)
}

func TestStartSession_ResumesCompletedTodaySession(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	// A session completed earlier today still blocks a new one until tomorrow.
	today := &models.FlashcardSession{
		ID:        "s1",
		UserID:    "user-1",
		Status:    models.SessionStatusCompleted,
		StartedAt: time.Now().Add(-2 * time.Hour),
	}
	f.users.On("Get", ctx, "user-1").Return(userWithDefaults("user-1"), nil)
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(today, nil)

	got, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	f.assertExpectations(t)
}

func TestStartSession_ClosesStaleAndCreatesNew(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	stale := &models.FlashcardSession{
		ID:        "old",
		UserID:    "user-1",
		Status:    models.SessionStatusActive,
		StartedAt: time.Now().AddDate(0, 0, -1),
	}
	created := &models.FlashcardSession{ID: "new", UserID: "user-1", Status: models.SessionStatusActive, StartedAt: time.Now()}

	f.users.On("Get", ctx, "user-1").Return(userWithDefaults("user-1"), nil)
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(stale, nil)
	f.sessions.On("UpdateSessionStatus", ctx, "old", models.SessionStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)
	f.sessions.On("InsertSession", ctx, mock.MatchedBy(func(s models.FlashcardSession) bool {
		return s.UserID == "user-1" && s.Status == models.SessionStatusActive && s.Type == "random"
	})).Return(created, nil)
	f.repetitions.On("DueByUser", ctx, "user-1", 50).Return([]models.Repetition{}, nil)
	f.words.On("UnlearnedByUser", ctx, "user-1", []string(nil), 10).Return([]models.Word{}, nil)
	f.sessions.On("SessionByID", ctx, "new", "user-1").Return(created, nil)

	got, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "new", got.ID)
	f.assertExpectations(t)
}

func TestStartSession_PopulatesNewItemsOnly(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	// User with no repetitions, dailyNew=5, 20 unlearned words available:
	// the session holds exactly 5 new-status items and no review items.
	user := userWithDefaults("user-1")
	user.DailyNewLimit = 5

	words := make([]models.Word, 5)
	reps := make([]models.Repetition, 5)
	for i := range words {
		words[i] = models.Word{ID: string(rune('a' + i)), Level: "A1"}
		reps[i] = models.Repetition{ID: "rep-" + words[i].ID, UserID: "user-1", WordID: words[i].ID}
	}

	created := &models.FlashcardSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive, StartedAt: time.Now()}

	f.users.On("Get", ctx, "user-1").Return(user, nil)
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.sessions.On("InsertSession", ctx, mock.Anything).Return(created, nil)
	f.repetitions.On("DueByUser", ctx, "user-1", 50).Return([]models.Repetition{}, nil)
	f.words.On("UnlearnedByUser", ctx, "user-1", []string(nil), 5).Return(words, nil)
	f.repetitions.On("CreateForWords", ctx, "user-1", words).Return(reps, nil)
	f.sessions.On("InsertItems", ctx, mock.MatchedBy(func(items []models.FlashcardItem) bool {
		if len(items) != 5 {
			return false
		}
		for _, item := range items {
			if item.Status != models.ItemStatusNew || item.Stage != models.ItemStageReview {
				return false
			}
		}
		return true
	})).Return([]models.FlashcardItem{}, nil)
	f.sessions.On("SessionByID", ctx, "s1", "user-1").Return(created, nil)

	_, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestStartSession_ReviewsFillCapacityBeforeNewWords(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	// Review limit 3 with 2 due leaves capacity 1 for new words even though
	// the new limit is higher.
	user := userWithDefaults("user-1")
	user.DailyReviewLimit = 3
	user.DailyNewLimit = 10

	due := []models.Repetition{{ID: "rep-1"}, {ID: "rep-2"}}
	words := []models.Word{{ID: "w1", Level: "B1"}}
	reps := []models.Repetition{{ID: "rep-3", WordID: "w1"}}
	created := &models.FlashcardSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}

	f.users.On("Get", ctx, "user-1").Return(user, nil)
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.sessions.On("InsertSession", ctx, mock.Anything).Return(created, nil)
	f.repetitions.On("DueByUser", ctx, "user-1", 3).Return(due, nil)
	f.words.On("UnlearnedByUser", ctx, "user-1", []string(nil), 1).Return(words, nil)
	f.repetitions.On("CreateForWords", ctx, "user-1", words).Return(reps, nil)
	f.sessions.On("InsertItems", ctx, mock.MatchedBy(func(items []models.FlashcardItem) bool {
		return len(items) == 3 &&
			items[0].Status == models.ItemStatusReview &&
			items[1].Status == models.ItemStatusReview &&
			items[2].Status == models.ItemStatusNew
	})).Return([]models.FlashcardItem{}, nil)
	f.sessions.On("SessionByID", ctx, "s1", "user-1").Return(created, nil)

	_, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestFinishSession_RequiresAllItemsPassed(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	session := &models.FlashcardSession{
		ID:     "s1",
		UserID: "user-1",
		Status: models.SessionStatusActive,
		Items: []models.FlashcardItem{
			{ID: "i1", Stage: models.ItemStagePassed},
			{ID: "i2", Stage: models.ItemStageLearning},
		},
	}
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(session, nil)

	_, err := f.service.FinishSession(ctx, "user-1")
	assertAppError(t, err, "VALIDATION_ERROR")
	f.assertExpectations(t)
}

func TestFinishSession_CompletesAndIsIdempotent(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	session := &models.FlashcardSession{
		ID:     "s1",
		UserID: "user-1",
		Status: models.SessionStatusActive,
		Items: []models.FlashcardItem{
			{ID: "i1", Stage: models.ItemStagePassed},
		},
	}
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(session, nil).Once()
	f.sessions.On("UpdateSessionStatus", ctx, "s1", models.SessionStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil).Once()

	got, err := f.service.FinishSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)

	// Second finish returns the completed session without another update.
	completed := *session
	completed.Status = models.SessionStatusCompleted
	f.sessions.On("LatestSessionByUser", ctx, "user-1").Return(&completed, nil).Once()

	got, err = f.service.FinishSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, got.Status)
	f.assertExpectations(t)
}

func TestSendScore_PassAdvancesRepetition(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	item := &models.FlashcardItem{
		ID:           "i1",
		RepetitionID: "rep-1",
		Status:       models.ItemStatusNew,
		Stage:        models.ItemStageReview,
		Repetition: &models.Repetition{
			ID:             "rep-1",
			UserID:         "user-1",
			EasinessFactor: 2.5,
		},
	}
	f.sessions.On("ItemByID", ctx, "i1").Return(item, nil)
	f.repetitions.On("Update", ctx, mock.MatchedBy(func(rep models.Repetition) bool {
		return rep.ID == "rep-1" && rep.Repetitions == 1 && rep.NextInterval == 1 && rep.DateLastRep != nil
	})).Return(nil)
	f.sessions.On("UpdateItemStage", ctx, "i1", models.ItemStagePassed).Return(nil)

	got, err := f.service.SendScore(ctx, "i1", "user-1", 4)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStagePassed, got.Stage)
	assert.Equal(t, 1, got.Repetition.NextInterval)
	f.assertExpectations(t)
}

func TestSendScore_FailResetsToLearning(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	item := &models.FlashcardItem{
		ID:           "i1",
		RepetitionID: "rep-1",
		Stage:        models.ItemStagePassed,
		Repetition: &models.Repetition{
			ID:             "rep-1",
			UserID:         "user-1",
			EasinessFactor: 2.5,
			Repetitions:    3,
			NextInterval:   15,
		},
	}
	f.sessions.On("ItemByID", ctx, "i1").Return(item, nil)
	f.repetitions.On("Update", ctx, mock.MatchedBy(func(rep models.Repetition) bool {
		return rep.Repetitions == 0 && rep.NextInterval == 0
	})).Return(nil)
	f.sessions.On("UpdateItemStage", ctx, "i1", models.ItemStageLearning).Return(nil)

	got, err := f.service.SendScore(ctx, "i1", "user-1", 2)
	require.NoError(t, err)
	assert.Equal(t, models.ItemStageLearning, got.Stage)
	f.assertExpectations(t)
}

func TestSendScore_Validation(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	_, err := f.service.SendScore(ctx, "i1", "user-1", 6)
	assertAppError(t, err, "VALIDATION_ERROR")

	_, err = f.service.SendScore(ctx, "i1", "user-1", -1)
	assertAppError(t, err, "VALIDATION_ERROR")

	f.sessions.On("ItemByID", ctx, "missing").Return(nil, nil)
	_, err = f.service.SendScore(ctx, "missing", "user-1", 3)
	assertAppError(t, err, "NOT_FOUND")

	other := &models.FlashcardItem{
		ID:         "i2",
		Repetition: &models.Repetition{ID: "rep-2", UserID: "someone-else", EasinessFactor: 2.5},
	}
	f.sessions.On("ItemByID", ctx, "i2").Return(other, nil)
	_, err = f.service.SendScore(ctx, "i2", "user-1", 3)
	assertAppError(t, err, "UNAUTHORIZED")
	f.assertExpectations(t)
}

func TestListSessions_ComputesStats(t *testing.T) {
	f := newFlashcardFixture()
	ctx := context.Background()

	sessions := []models.FlashcardSession{{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}}
	full := &models.FlashcardSession{
		ID:     "s1",
		UserID: "user-1",
		Items: []models.FlashcardItem{
			{Status: models.ItemStatusNew, Stage: models.ItemStagePassed},
			{Status: models.ItemStatusNew, Stage: models.ItemStageLearning},
			{Status: models.ItemStatusReview, Stage: models.ItemStageReview},
		},
	}
	f.sessions.On("SessionsByUser", ctx, "user-1").Return(sessions, nil)
	f.sessions.On("SessionByID", ctx, "s1", "user-1").Return(full, nil)

	got, err := f.service.ListSessions(ctx, "user-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, models.SessionStats{
		NewCards:      2,
		ReviewCards:   1,
		RepeatCards:   1,
		MasteredCards: 1,
		TotalCards:    3,
	}, got[0].Stats)
	assert.Nil(t, got[0].Items)
	f.assertExpectations(t)
}
