package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"millionaire-service/internal/domain"
)

// QuestionLoader fetches the questions of one level from a backing store.
type QuestionLoader interface {
	LoadLevel(ctx context.Context, level int) ([]domain.Question, error)
}

// QuestionPool caches per-level question lists in Redis and falls back to a loader on cache miss.
// Each level is stored as: SET questions:level:{level} <json array> EX ttl
// Invalidate bumps questions:level:{level}:gen; a load only writes the cache
// when that generation is unchanged since the load started.
type QuestionPool struct {
	client *redis.Client
	loader QuestionLoader
	ttl    time.Duration
	sf     singleflight.Group
	rndMu  sync.Mutex
	rnd    *rand.Rand
}

func NewQuestionPool(client *redis.Client, loader QuestionLoader, ttl time.Duration) *QuestionPool {
	return &QuestionPool{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (p *QuestionPool) Level(ctx context.Context, level int) ([]domain.Question, error) {
	key := p.levelKey(level)
	if questions, ok := p.cached(ctx, key); ok {
		return questions, nil
	}

	genKey := p.generationKey(level)
	gen, err := p.client.Get(ctx, genKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		log.Printf("read question cache generation %s: %v", genKey, err)
	}

	result, err, _ := p.sf.Do(key+":"+strconv.FormatInt(gen, 10), func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if questions, ok := p.cached(ctx, key); ok {
			return questions, nil
		}

		questions, err := p.loader.LoadLevel(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			return questions, nil
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, fmt.Errorf("marshal level %d: %w", level, err)
		}
		if err := p.store(ctx, key, genKey, gen, raw); err != nil && !errors.Is(err, errStaleLoad) {
			log.Printf("cache question level %d: %v", level, err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Question), nil
}

var errStaleLoad = errors.New("question level invalidated during load")

// store writes raw under key unless genKey moved past gen.
func (p *QuestionPool) store(ctx context.Context, key, genKey string, gen int64, raw []byte) error {
	return p.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if current != gen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, raw, p.ttlWithJitter())
			return nil
		})
		return err
	}, genKey)
}

func (p *QuestionPool) Invalidate(ctx context.Context, level int) error {
	_, err := p.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, p.generationKey(level))
		pipe.Del(ctx, p.levelKey(level))
		return nil
	})
	return err
}

func (p *QuestionPool) cached(ctx context.Context, key string) ([]domain.Question, bool) {
	raw, err := p.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read question cache %s: %v", key, err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		return nil, false
	}
	return questions, true
}

func (p *QuestionPool) levelKey(level int) string {
	return "questions:level:" + strconv.Itoa(level)
}

func (p *QuestionPool) generationKey(level int) string {
	return p.levelKey(level) + ":gen"
}

func (p *QuestionPool) ttlWithJitter() time.Duration {
	if p.ttl <= 0 {
		return 0
	}
	jitterMax := int64(p.ttl) / 10
	p.rndMu.Lock()
	defer p.rndMu.Unlock()
	return p.ttl + time.Duration(p.rnd.Int63n(jitterMax+1))
}
