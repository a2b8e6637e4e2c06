package app

import (
	"context"

	"millionaire-service/internal/domain"
)

// UserRepository stores accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	Get(ctx context.Context, id int64) (domain.User, error)
	GetByEmail(ctx context.Context, email string) (domain.User, error)
	// Leaderboard returns users ordered by balance, richest first.
	Leaderboard(ctx context.Context, limit int) ([]domain.User, error)
}

// GameRepository stores games with their 15 game questions.
type GameRepository interface {
	// Create persists a new game and its questions, failing with
	// domain.ErrGameInProgress when the user already has an unfinished game.
	Create(ctx context.Context, game *domain.Game) error
	Get(ctx context.Context, id int64) (*domain.Game, error)
	InProgressForUser(ctx context.Context, userID int64) (*domain.Game, error)
	ListForUser(ctx context.Context, userID int64) ([]*domain.Game, error)
	// Save writes the game state and lifeline results and, in the same
	// transaction, credits payout to the owner's balance.
	Save(ctx context.Context, game *domain.Game, payout int64) error
}

// QuestionStore persists trivia content.
type QuestionStore interface {
	Create(ctx context.Context, q *domain.Question) error
}

// QuestionPool serves the questions of one level, usually through a cache.
type QuestionPool interface {
	Level(ctx context.Context, level int) ([]domain.Question, error)
	Invalidate(ctx context.Context, level int) error
}

// SessionRepository abstracts where web sessions live (in-memory, Redis).
type SessionRepository interface {
	Create(ctx context.Context, userID int64) (domain.WebSession, error)
	Get(ctx context.Context, id string) (domain.WebSession, error)
	Save(ctx context.Context, session domain.WebSession) error
	Delete(ctx context.Context, id string) error
}
