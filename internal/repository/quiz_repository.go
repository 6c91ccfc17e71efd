package repository

import (
	"context"
	"time"

	"github.com/mwrona/vocaflash/internal/models"
)

// QuizTx is the scoped transaction handle passed into package generation.
// All writes issued through it commit or roll back together; savepoints
// isolate a failed generation attempt without abandoning the transaction.
type QuizTx interface {
	InsertSession(ctx context.Context, session models.QuizSession) (*models.QuizSession, error)
	InsertPackage(ctx context.Context, pkg models.QuizPackage) (*models.QuizPackage, error)
	InsertItems(ctx context.Context, items []models.QuizItem) ([]models.QuizItem, error)

	Savepoint(ctx context.Context, name string) error
	ReleaseSavepoint(ctx context.Context, name string) error
	RollbackToSavepoint(ctx context.Context, name string) error
}

// QuizRepository handles quiz session, package and item data access
type QuizRepository interface {
	// Transact runs fn inside a single transaction, committing on nil error
	// and rolling back everything otherwise.
	Transact(ctx context.Context, fn func(tx QuizTx) error) error

	// SessionByID loads a session with its packages (items preloaded),
	// packages in generation order. Returns nil when not found.
	SessionByID(ctx context.Context, id string, userID string) (*models.QuizSession, error)
	LatestSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error)
	// ActiveSessionByUser returns the most recent session with status
	// "active", without relations, or nil.
	ActiveSessionByUser(ctx context.Context, userID string) (*models.QuizSession, error)
	SessionsByUser(ctx context.Context, userID string) ([]models.QuizSession, error)
	UpdateSessionStatus(ctx context.Context, id string, status string, endedAt *time.Time) error

	// PackagesBySession returns a session's packages with items, ordered by
	// generation sequence.
	PackagesBySession(ctx context.Context, sessionID string) ([]models.QuizPackage, error)
	// PackageByID loads a package with its items. Returns nil when not found.
	PackageByID(ctx context.Context, id string) (*models.QuizPackage, error)
	// SessionOwner returns the user id owning the session.
	SessionOwner(ctx context.Context, sessionID string) (string, error)
	UpdateItemAnswer(ctx context.Context, itemID string, answer string) error
}
