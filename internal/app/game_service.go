package app

import (
	"context"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"millionaire-service/internal/domain"
)

const lockStripes = 64

// GameService contains the game use cases behind the HTTP and websocket handlers.
type GameService struct {
	games     GameRepository
	questions *QuestionService
	helps     *domain.HelpGenerator
	hub       *GameHub
	now       func() time.Time

	rndMu sync.Mutex
	rnd   *rand.Rand

	userLocks [lockStripes]sync.Mutex
	gameLocks [lockStripes]sync.Mutex
}

func NewGameService(games GameRepository, questions *QuestionService, hub *GameHub) *GameService {
	return NewGameServiceWithClock(games, questions, hub, domain.NewHelpGenerator(), time.Now)
}

// NewGameServiceWithClock is test-only for deterministic timestamps and lifelines.
func NewGameServiceWithClock(games GameRepository, questions *QuestionService, hub *GameHub, helps *domain.HelpGenerator, now func() time.Time) *GameService {
	return &GameService{
		games:     games,
		questions: questions,
		helps:     helps,
		hub:       hub,
		now:       now,
		rnd:       rand.New(rand.NewSource(now().UnixNano())),
	}
}

// CreateGame starts a new game for a user. When the user still has an
// unfinished game it is returned together with domain.ErrGameInProgress.
func (s *GameService) CreateGame(ctx context.Context, userID int64) (*domain.Game, error) {
	lock := &s.userLocks[stripe(userID)]
	lock.Lock()
	defer lock.Unlock()

	existing, err := s.games.InProgressForUser(ctx, userID)
	if err == nil {
		return existing, domain.ErrGameInProgress
	}
	if !errors.Is(err, domain.ErrGameNotFound) {
		return nil, err
	}

	questions, err := s.questions.PickGameQuestions(ctx)
	if err != nil {
		return nil, err
	}

	s.rndMu.Lock()
	game, err := domain.NewGame(userID, questions, s.rnd, s.now())
	s.rndMu.Unlock()
	if err != nil {
		return nil, err
	}

	if err := s.games.Create(ctx, game); err != nil {
		if errors.Is(err, domain.ErrGameInProgress) {
			if existing, lookupErr := s.games.InProgressForUser(ctx, userID); lookupErr == nil {
				return existing, domain.ErrGameInProgress
			}
		}
		return nil, err
	}
	log.Printf("game %d created for user %d", game.ID, userID)
	return game, nil
}

// Game loads a game owned by userID.
func (s *GameService) Game(ctx context.Context, userID, gameID int64) (*domain.Game, error) {
	game, err := s.games.Get(ctx, gameID)
	if err != nil {
		return nil, err
	}
	if game.UserID != userID {
		return nil, domain.ErrNotYourGame
	}
	return game, nil
}

// GamesForUser lists a user's games, newest first.
func (s *GameService) GamesForUser(ctx context.Context, userID int64) ([]*domain.Game, error) {
	return s.games.ListForUser(ctx, userID)
}

// Answer answers the current question and reports whether the answer was correct.
func (s *GameService) Answer(ctx context.Context, userID, gameID int64, letter string) (bool, *domain.Game, error) {
	var correct bool
	game, err := s.mutate(ctx, userID, gameID, func(g *domain.Game, now time.Time) bool {
		wasFinished := g.Finished()
		correct = g.AnswerCurrentQuestion(letter, now)
		return !wasFinished
	})
	return correct, game, err
}

// TakeMoney ends the game and credits the prize reached so far.
func (s *GameService) TakeMoney(ctx context.Context, userID, gameID int64) (*domain.Game, error) {
	return s.mutate(ctx, userID, gameID, func(g *domain.Game, now time.Time) bool {
		wasFinished := g.Finished()
		g.TakeMoney(now)
		return !wasFinished
	})
}

// UseHelp spends a lifeline on the current question and reports whether it was applied.
func (s *GameService) UseHelp(ctx context.Context, userID, gameID int64, kind domain.HelpType) (bool, *domain.Game, error) {
	var used bool
	game, err := s.mutate(ctx, userID, gameID, func(g *domain.Game, now time.Time) bool {
		used = g.UseHelp(kind, s.helps)
		if used {
			g.UpdatedAt = now
		}
		return used
	})
	return used, game, err
}

// Subscribe returns a channel of live views for a game owned by userID.
func (s *GameService) Subscribe(ctx context.Context, userID, gameID int64) (<-chan domain.GameView, func(), error) {
	game, err := s.Game(ctx, userID, gameID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(gameID, game.View())
	return ch, cancel, nil
}

// mutate serializes changes to one game, persists them and publishes the new view.
// apply reports whether it changed anything worth saving.
func (s *GameService) mutate(ctx context.Context, userID, gameID int64, apply func(g *domain.Game, now time.Time) bool) (*domain.Game, error) {
	lock := &s.gameLocks[stripe(gameID)]
	lock.Lock()
	defer lock.Unlock()

	game, err := s.Game(ctx, userID, gameID)
	if err != nil {
		return nil, err
	}

	wasFinished := game.Finished()
	if !apply(game, s.now()) {
		return game, nil
	}

	justFinished := !wasFinished && game.Finished()
	var payout int64
	if justFinished {
		payout = game.Prize
	}
	if err := s.games.Save(ctx, game, payout); err != nil {
		return nil, err
	}
	if justFinished {
		log.Printf("game %d finished for user %d: status=%s prize=%d", game.ID, userID, game.Status(), game.Prize)
	}
	s.hub.Publish(game.View())
	return game, nil
}

func stripe(id int64) uint64 {
	return uint64(id) % lockStripes
}
