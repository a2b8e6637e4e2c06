package app

import (
	"sync"

	"millionaire-service/internal/domain"
)

// GameHub fans game updates out to live subscribers (websocket clients).
type GameHub struct {
	mu          sync.RWMutex
	subscribers map[int64]map[chan domain.GameView]struct{}
}

func NewGameHub() *GameHub {
	return &GameHub{
		subscribers: make(map[int64]map[chan domain.GameView]struct{}),
	}
}

// Subscribe registers a channel for updates of one game and primes it with initial.
// The caller must invoke the returned cancel function to avoid leaks.
func (h *GameHub) Subscribe(gameID int64, initial domain.GameView) (<-chan domain.GameView, func()) {
	ch := make(chan domain.GameView, 8)
	ch <- initial

	h.mu.Lock()
	subs, ok := h.subscribers[gameID]
	if !ok {
		subs = make(map[chan domain.GameView]struct{})
		h.subscribers[gameID] = subs
	}
	subs[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		subs := h.subscribers[gameID]
		if _, ok := subs[ch]; !ok {
			return
		}
		delete(subs, ch)
		close(ch)
		if len(subs) == 0 {
			delete(h.subscribers, gameID)
		}
	}
	return ch, cancel
}

// Publish sends the latest view of a game to all its subscribers.
func (h *GameHub) Publish(view domain.GameView) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subscribers[view.ID] {
		select {
		case ch <- view:
		default:
			// slow subscriber: drop the stale view so the newest always lands
			select {
			case <-ch:
			default:
			}
			ch <- view
		}
	}
}

// Subscribers reports how many live subscribers a game has.
func (h *GameHub) Subscribers(gameID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[gameID])
}
