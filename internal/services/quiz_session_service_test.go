package services_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/mwrona/vocaflash/internal/ai"
	"github.com/mwrona/vocaflash/internal/models"
	"github.com/mwrona/vocaflash/internal/services"
	"github.com/mwrona/vocaflash/internal/testutil/mocks"
)

type quizFixture struct {
	quizzes   *mocks.MockQuizRepository
	words     *mocks.MockWordRepository
	generator *mocks.MockGenerator
	service   services.QuizSessionService
}

func newQuizFixture() *quizFixture {
	f := &quizFixture{
		quizzes:   &mocks.MockQuizRepository{Tx: new(mocks.MockQuizTx)},
		words:     new(mocks.MockWordRepository),
		generator: new(mocks.MockGenerator),
	}
	f.service = services.NewQuizSessionService(f.quizzes, f.words, f.generator, services.DefaultQuizConfig())
	return f
}

func (f *quizFixture) assertExpectations(t *testing.T) {
	f.quizzes.AssertExpectations(t)
	f.quizzes.Tx.AssertExpectations(t)
	f.words.AssertExpectations(t)
	f.generator.AssertExpectations(t)
}

func quizWords(n int) []models.Word {
	words := make([]models.Word, n)
	for i := range words {
		words[i] = models.Word{ID: fmt.Sprintf("w%d", i), Word: fmt.Sprintf("word-%d", i), Level: "B1"}
	}
	return words
}

func quizQuestions(n int) []ai.GeneratedQuestion {
	questions := make([]ai.GeneratedQuestion, n)
	for i := range questions {
		questions[i] = ai.GeneratedQuestion{
			WordID:        fmt.Sprintf("w%d", i),
			Type:          models.QuizTypeMatching,
			Question:      fmt.Sprintf("question %d", i),
			CorrectAnswer: "A",
			AnswerA:       "a",
			AnswerB:       "b",
			AnswerC:       "c",
		}
	}
	return questions
}

func answeredPackage(id string, level string, correct, total int) models.QuizPackage {
	pkg := models.QuizPackage{ID: id, SessionID: "s1", Level: level}
	for i := 0; i < total; i++ {
		answer := "B"
		if i < correct {
			answer = "A"
		}
		pkg.Items = append(pkg.Items, models.QuizItem{
			ID:            fmt.Sprintf("%s-i%d", id, i),
			CorrectAnswer: "A",
			UserAnswer:    &answer,
		})
	}
	return pkg
}

func TestQuizStartSession_ResumesActiveTodaySession(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	today := &models.QuizSession{
		ID:        "s1",
		UserID:    "user-1",
		Status:    models.SessionStatusActive,
		StartedAt: time.Now(),
	}
	f.quizzes.On("LatestSessionByUser", ctx, "user-1").Return(today, nil)

	got, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	f.assertExpectations(t)
}

func TestQuizStartSession_CreatesFirstPackage(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	words := quizWords(12)
	created := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive, StartedAt: time.Now()}
	pkg := &models.QuizPackage{ID: "p1", SessionID: "s1", Seq: 1, Name: "package-1", Level: "B1-B2"}

	f.quizzes.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.words.On("RandomByLevels", ctx, []string{"B1", "B2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertSession", ctx, mock.MatchedBy(func(s models.QuizSession) bool {
		return s.UserID == "user-1" && s.Status == models.SessionStatusActive
	})).Return(created, nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.MatchedBy(func(p models.QuizPackage) bool {
		return p.SessionID == "s1" && p.Seq == 1 && p.Name == "package-1" && p.Level == "B1-B2"
	})).Return(pkg, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "B1-B2").Return(quizQuestions(12), nil)
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.Tx.On("InsertItems", ctx, mock.MatchedBy(func(items []models.QuizItem) bool {
		return len(items) == 12 && items[0].PackageID == "p1"
	})).Return([]models.QuizItem{}, nil)
	f.quizzes.Tx.On("ReleaseSavepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.On("SessionByID", ctx, "s1", "user-1").Return(created, nil)

	got, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "s1", got.ID)
	f.assertExpectations(t)
}

func TestQuizStartSession_FailsWhenNoWords(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	f.quizzes.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.words.On("RandomByLevels", ctx, []string{"B1", "B2"}, 12).Return([]models.Word{}, nil)

	_, err := f.service.StartSession(ctx, "user-1")
	assertAppError(t, err, "INSUFFICIENT_DATA")
	f.assertExpectations(t)
}

func TestQuizStartSession_RetriesItemsUnderSavepoint(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	words := quizWords(12)
	created := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	pkg := &models.QuizPackage{ID: "p1", SessionID: "s1", Seq: 1}

	f.quizzes.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.words.On("RandomByLevels", ctx, []string{"B1", "B2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertSession", ctx, mock.Anything).Return(created, nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.Anything).Return(pkg, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "B1-B2").Return(quizQuestions(12), nil).Twice()

	// First attempt fails at persistence and rolls back to its savepoint,
	// second attempt succeeds under a fresh savepoint name.
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_1").Return(nil).Once()
	f.quizzes.Tx.On("InsertItems", ctx, mock.Anything).Return(nil, errors.New("constraint violated")).Once()
	f.quizzes.Tx.On("RollbackToSavepoint", ctx, "save_items_1").Return(nil).Once()
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_2").Return(nil).Once()
	f.quizzes.Tx.On("InsertItems", ctx, mock.Anything).Return([]models.QuizItem{}, nil).Once()
	f.quizzes.Tx.On("ReleaseSavepoint", ctx, "save_items_2").Return(nil).Once()
	f.quizzes.On("SessionByID", ctx, "s1", "user-1").Return(created, nil)

	_, err := f.service.StartSession(ctx, "user-1")
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestQuizStartSession_GenerationExhaustedIsUpstreamError(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	words := quizWords(12)
	created := &models.QuizSession{ID: "s1", UserID: "user-1"}
	pkg := &models.QuizPackage{ID: "p1", SessionID: "s1"}

	f.quizzes.On("LatestSessionByUser", ctx, "user-1").Return(nil, nil)
	f.words.On("RandomByLevels", ctx, []string{"B1", "B2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertSession", ctx, mock.Anything).Return(created, nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.Anything).Return(pkg, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "B1-B2").Return(nil, errors.New("model unavailable")).Twice()

	_, err := f.service.StartSession(ctx, "user-1")
	assertAppError(t, err, "UPSTREAM_ERROR")
	f.assertExpectations(t)
}

func TestGenerateNextPackage_AdaptsLevelUp(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	// 10/12 correct is above the 75% threshold, B1-B2 moves up to C1-C2.
	previous := answeredPackage("p1", "B1-B2", 10, 12)
	previous.Seq = 1
	words := quizWords(12)
	next := &models.QuizPackage{ID: "p2", SessionID: "s1", Seq: 2, Name: "package-2", Level: "C1-C2"}

	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{previous}, nil)
	f.words.On("RandomByLevels", ctx, []string{"C1", "C2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.MatchedBy(func(p models.QuizPackage) bool {
		return p.Seq == 2 && p.Name == "package-2" && p.Level == "C1-C2"
	})).Return(next, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "C1-C2").Return(quizQuestions(12), nil)
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.Tx.On("InsertItems", ctx, mock.Anything).Return([]models.QuizItem{}, nil)
	f.quizzes.Tx.On("ReleaseSavepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.On("PackageByID", ctx, "p2").Return(next, nil)

	got, err := f.service.GenerateNextPackage(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, "C1-C2", got.Level)
	f.assertExpectations(t)
}

func TestGenerateNextPackage_LevelClampsAtTop(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	// Perfect score at the top level stays at the top level.
	previous := answeredPackage("p1", "C1-C2", 12, 12)
	words := quizWords(12)
	next := &models.QuizPackage{ID: "p2", SessionID: "s1", Seq: 2, Level: "C1-C2"}

	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{previous}, nil)
	f.words.On("RandomByLevels", ctx, []string{"C1", "C2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.MatchedBy(func(p models.QuizPackage) bool {
		return p.Level == "C1-C2"
	})).Return(next, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "C1-C2").Return(quizQuestions(12), nil)
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.Tx.On("InsertItems", ctx, mock.Anything).Return([]models.QuizItem{}, nil)
	f.quizzes.Tx.On("ReleaseSavepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.On("PackageByID", ctx, "p2").Return(next, nil)

	_, err := f.service.GenerateNextPackage(ctx, "user-1")
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestGenerateNextPackage_AdaptsLevelDown(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	// 4/12 correct is below the 50% threshold, B1-B2 drops to A1-A2.
	previous := answeredPackage("p1", "B1-B2", 4, 12)
	words := quizWords(12)
	next := &models.QuizPackage{ID: "p2", SessionID: "s1", Seq: 2, Level: "A1-A2"}

	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{previous}, nil)
	f.words.On("RandomByLevels", ctx, []string{"A1", "A2"}, 12).Return(words, nil)
	f.quizzes.On("Transact", ctx).Return(nil)
	f.quizzes.Tx.On("InsertPackage", ctx, mock.MatchedBy(func(p models.QuizPackage) bool {
		return p.Level == "A1-A2"
	})).Return(next, nil)
	f.generator.On("GenerateQuizQuestions", ctx, words, "A1-A2").Return(quizQuestions(12), nil)
	f.quizzes.Tx.On("Savepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.Tx.On("InsertItems", ctx, mock.Anything).Return([]models.QuizItem{}, nil)
	f.quizzes.Tx.On("ReleaseSavepoint", ctx, "save_items_1").Return(nil)
	f.quizzes.On("PackageByID", ctx, "p2").Return(next, nil)

	_, err := f.service.GenerateNextPackage(ctx, "user-1")
	require.NoError(t, err)
	f.assertExpectations(t)
}

func TestGenerateNextPackage_RejectsWhenSessionFull(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	packages := []models.QuizPackage{
		answeredPackage("p1", "B1-B2", 8, 12),
		answeredPackage("p2", "B1-B2", 8, 12),
		answeredPackage("p3", "B1-B2", 8, 12),
	}
	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return(packages, nil)

	_, err := f.service.GenerateNextPackage(ctx, "user-1")
	assertAppError(t, err, "VALIDATION_ERROR")
	f.assertExpectations(t)
}

func TestGenerateNextPackage_RejectsUnansweredPrevious(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	previous := answeredPackage("p1", "B1-B2", 6, 12)
	previous.Items[11].UserAnswer = nil

	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{previous}, nil)

	_, err := f.service.GenerateNextPackage(ctx, "user-1")
	assertAppError(t, err, "VALIDATION_ERROR")
	f.assertExpectations(t)
}

func TestGenerateNextPackage_NoActiveSession(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(nil, nil)

	_, err := f.service.GenerateNextPackage(ctx, "user-1")
	assertAppError(t, err, "NOT_FOUND")
	f.assertExpectations(t)
}

func TestSubmitPackage_ScoresAnswers(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	pkg := &models.QuizPackage{ID: "p1", SessionID: "s1"}
	for i := 0; i < 12; i++ {
		pkg.Items = append(pkg.Items, models.QuizItem{ID: fmt.Sprintf("i%d", i), CorrectAnswer: "A"})
	}

	answers := make([]services.Answer, 12)
	for i := range answers {
		answer := "A"
		if i >= 9 {
			answer = "B"
		}
		answers[i] = services.Answer{ItemID: fmt.Sprintf("i%d", i), Answer: answer}
	}

	f.quizzes.On("PackageByID", ctx, "p1").Return(pkg, nil)
	f.quizzes.On("SessionOwner", ctx, "s1").Return("user-1", nil)
	for _, a := range answers {
		f.quizzes.On("UpdateItemAnswer", ctx, a.ItemID, a.Answer).Return(nil).Once()
	}

	got, err := f.service.SubmitPackage(ctx, "user-1", "p1", answers)
	require.NoError(t, err)
	assert.Equal(t, 9, got.CorrectCount)
	assert.Equal(t, 12, got.Total)
	assert.InDelta(t, 75.0, got.ScorePercentage, 0.001)
	f.assertExpectations(t)
}

func TestSubmitPackage_IgnoresUnknownItems(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	pkg := &models.QuizPackage{
		ID:        "p1",
		SessionID: "s1",
		Items:     []models.QuizItem{{ID: "i1", CorrectAnswer: "A"}},
	}
	f.quizzes.On("PackageByID", ctx, "p1").Return(pkg, nil)
	f.quizzes.On("SessionOwner", ctx, "s1").Return("user-1", nil)
	f.quizzes.On("UpdateItemAnswer", ctx, "i1", "A").Return(nil)

	got, err := f.service.SubmitPackage(ctx, "user-1", "p1", []services.Answer{
		{ItemID: "i1", Answer: "A"},
		{ItemID: "ghost", Answer: "C"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, got.CorrectCount)
	assert.Equal(t, 1, got.Total)
	f.assertExpectations(t)
}

func TestSubmitPackage_RejectsForeignPackage(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	pkg := &models.QuizPackage{ID: "p1", SessionID: "s1"}
	f.quizzes.On("PackageByID", ctx, "p1").Return(pkg, nil)
	f.quizzes.On("SessionOwner", ctx, "s1").Return("someone-else", nil)

	_, err := f.service.SubmitPackage(ctx, "user-1", "p1", nil)
	assertAppError(t, err, "UNAUTHORIZED")
	f.assertExpectations(t)
}

func TestQuizFinishSession_RequiresAllPackages(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{
		answeredPackage("p1", "B1-B2", 8, 12),
		answeredPackage("p2", "B1-B2", 8, 12),
	}, nil)

	_, err := f.service.FinishSession(ctx, "user-1")
	assertAppError(t, err, "VALIDATION_ERROR")
	f.assertExpectations(t)
}

func TestQuizFinishSession_RequiresLastPackageAnswered(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	last := answeredPackage("p3", "B1-B2", 6, 12)
	last.Items[0].UserAnswer = nil

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{
		answeredPackage("p1", "B1-B2", 8, 12),
		answeredPackage("p2", "B1-B2", 8, 12),
		last,
	}, nil)

	_, err := f.service.FinishSession(ctx, "user-1")
	assertAppError(t, err, "VALIDATION_ERROR")
	f.assertExpectations(t)
}

func TestQuizFinishSession_Completes(t *testing.T) {
	f := newQuizFixture()
	ctx := context.Background()

	session := &models.QuizSession{ID: "s1", UserID: "user-1", Status: models.SessionStatusActive}
	f.quizzes.On("ActiveSessionByUser", ctx, "user-1").Return(session, nil)
	f.quizzes.On("PackagesBySession", ctx, "s1").Return([]models.QuizPackage{
		answeredPackage("p1", "B1-B2", 8, 12),
		answeredPackage("p2", "B1-B2", 8, 12),
		answeredPackage("p3", "B1-B2", 8, 12),
	}, nil)
	f.quizzes.On("UpdateSessionStatus", ctx, "s1", models.SessionStatusCompleted, mock.AnythingOfType("*time.Time")).Return(nil)

	got, err := f.service.FinishSession(ctx, "user-1")
	require.NoError(t, err)
	assert.Equal(t, models.SessionStatusCompleted, got.Status)
	require.NotNil(t, got.EndedAt)
	assert.Len(t, got.Packages, 3)
	f.assertExpectations(t)
}
