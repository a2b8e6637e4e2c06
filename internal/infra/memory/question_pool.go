package memory

import (
	"context"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"millionaire-service/internal/domain"
)

// QuestionLoader fetches the questions of one level from a backing store.
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionPool caches per-level question lists with TTL to avoid repeated DB hits.
type QuestionPool struct {
	loader QuestionLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[int]cachedLevel

	// generation is bumped by Invalidate; loads started under an older one are not cached.
	generation map[int]uint64
}

type cachedLevel struct {
	questions []domain.Question
	expiresAt time.Time
}

func NewQuestionPool(loader QuestionLoader, ttl time.Duration) *QuestionPool {
	return &QuestionPool{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[int]cachedLevel),

		generation: make(map[int]uint64),
	}
}

func (p *QuestionPool) Level(ctx context.Context, level int) ([]domain.Question, error) {
	if questions, ok := p.cached(level); ok {
		return questions, nil
	}

	gen := p.currentGeneration(level)
	result, err, _ := p.sf.Do(levelKey(level)+":"+strconv.FormatUint(gen, 10), func() (interface{}, error) {
		if questions, ok := p.cached(level); ok {
			return questions, nil
		}

		questions, err := p.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		// empty levels are not cached so freshly imported questions show up at once
		if len(questions) > 0 {
			p.mu.Lock()
			if p.generation[level] == gen {
				p.cache[level] = cachedLevel{
					questions: questions,
					expiresAt: p.clock().Add(p.ttlWithJitter()),
				}
			}
			p.mu.Unlock()
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

func (p *QuestionPool) Invalidate(_ context.Context, level int) error {
	p.mu.Lock()
	delete(p.cache, level)
	p.generation[level]++
	p.mu.Unlock()
	return nil
}

func (p *QuestionPool) currentGeneration(level int) uint64 {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.generation[level]
}

func (p *QuestionPool) cached(level int) ([]domain.Question, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	entry, ok := p.cache[level]
	if !ok || !entry.expiresAt.After(p.clock()) {
		return nil, false
	}
	return entry.questions, true
}

func (p *QuestionPool) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(p.ttl) / 10
	p.rndMu.Lock()
	defer p.rndMu.Unlock()
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}

func levelKey(level int) string {
	return "level:" + strconv.Itoa(level)
}
