package memory

import (
	"context"
	"sort"
	"sync"

	"millionaire-service/internal/domain"
)

// GameStore is an in-memory implementation of app.GameRepository.
// Games are copied in and out so callers never share state with the store.
type GameStore struct {
	users *UserStore

	mu     sync.RWMutex
	nextID int64
	nextGQ int64
	games  map[int64]*domain.Game
}

func NewGameStore(users *UserStore) *GameStore {
	return &GameStore{
		users: users,
		games: make(map[int64]*domain.Game),
	}
}

func (s *GameStore) Create(_ context.Context, game *domain.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, g := range s.games {
		if g.UserID == game.UserID && !g.Finished() {
			return domain.ErrGameInProgress
		}
	}
	s.nextID++
	game.ID = s.nextID
	for i := range game.Questions {
		s.nextGQ++
		game.Questions[i].ID = s.nextGQ
		game.Questions[i].GameID = game.ID
	}
	s.games[game.ID] = cloneGame(game)
	return nil
}

func (s *GameStore) Get(_ context.Context, id int64) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.games[id]
	if !ok {
		return nil, domain.ErrGameNotFound
	}
	return cloneGame(game), nil
}

func (s *GameStore) InProgressForUser(_ context.Context, userID int64) (*domain.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, g := range s.games {
		if g.UserID == userID && !g.Finished() {
			return cloneGame(g), nil
		}
	}
	return nil, domain.ErrGameNotFound
}

func (s *GameStore) ListForUser(_ context.Context, userID int64) ([]*domain.Game, error) {
	s.mu.RLock()
	out := make([]*domain.Game, 0)
	for _, g := range s.games {
		if g.UserID == userID {
			out = append(out, cloneGame(g))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *GameStore) Save(_ context.Context, game *domain.Game, payout int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.games[game.ID]; !ok {
		return domain.ErrGameNotFound
	}
	if payout > 0 {
		if err := s.users.credit(game.UserID, payout); err != nil {
			return err
		}
	}
	s.games[game.ID] = cloneGame(game)
	return nil
}

func cloneGame(g *domain.Game) *domain.Game {
	out := *g
	if g.FinishedAt != nil {
		finishedAt := *g.FinishedAt
		out.FinishedAt = &finishedAt
	}
	out.Questions = make([]domain.GameQuestion, len(g.Questions))
	for i, q := range g.Questions {
		out.Questions[i] = q
		out.Questions[i].Help = cloneHelp(q.Help)
	}
	return &out
}

func cloneHelp(h domain.HelpHash) domain.HelpHash {
	out := domain.HelpHash{FriendCall: h.FriendCall}
	if h.AudienceHelp != nil {
		out.AudienceHelp = make(map[string]int, len(h.AudienceHelp))
		for k, v := range h.AudienceHelp {
			out.AudienceHelp[k] = v
		}
	}
	if h.FiftyFifty != nil {
		out.FiftyFifty = append([]string(nil), h.FiftyFifty...)
	}
	return out
}
