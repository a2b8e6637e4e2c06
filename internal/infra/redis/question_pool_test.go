package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
)

func TestQuestionPoolCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := newClient(mr)
	loader := &countingLoader{QuestionLoader: sampleStore(t)}
	pool := NewQuestionPool(client, loader, time.Minute)

	questions, err := pool.Level(context.Background(), 0)
	if err != nil {
		t.Fatalf("level: %v", err)
	}
	if len(questions) != 1 || questions[0].Text != "What is 2 + 2?" {
		t.Fatalf("unexpected questions %+v", questions)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists("questions:level:0") {
		t.Fatalf("expected level cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	cached, _ := pool.Level(context.Background(), 0)
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(cached) != 1 || cached[0].Answer1 != "4" {
		t.Fatalf("expected cached question to round-trip, got %+v", cached)
	}

	if err := pool.Invalidate(context.Background(), 0); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if mr.Exists("questions:level:0") {
		t.Fatalf("expected cache entry removed")
	}
}

func TestQuestionPoolExpiresWithTTL(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{QuestionLoader: sampleStore(t)}
	pool := NewQuestionPool(newClient(mr), loader, time.Minute)

	_, _ = pool.Level(context.Background(), 0)
	mr.FastForward(2 * time.Minute)
	_, _ = pool.Level(context.Background(), 0)
	if loader.calls != 2 {
		t.Fatalf("expected reload after ttl, loader calls=%d", loader.calls)
	}
}

func TestQuestionPoolSkipsWriteAfterInvalidate(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	ctx := context.Background()
	store := sampleStore(t)
	loader := &countingLoader{QuestionLoader: store}
	pool := NewQuestionPool(newClient(mr), loader, time.Minute)
	// an import lands while the first load is in flight
	loader.afterFirst = func() {
		_ = store.Create(ctx, &domain.Question{Level: 0, Text: "What is 3 + 3?", Answer1: "6", Answer2: "5", Answer3: "9", Answer4: "33"})
		if err := pool.Invalidate(ctx, 0); err != nil {
			t.Errorf("invalidate: %v", err)
		}
	}

	stale, err := pool.Level(ctx, 0)
	if err != nil || len(stale) != 1 {
		t.Fatalf("first load: %d questions, err %v", len(stale), err)
	}
	if mr.Exists("questions:level:0") {
		t.Fatalf("expected the stale load to stay out of the cache")
	}

	fresh, _ := pool.Level(ctx, 0)
	if len(fresh) != 2 || loader.calls != 2 {
		t.Fatalf("expected a reload with 2 questions, got %d after %d loads", len(fresh), loader.calls)
	}
	if !mr.Exists("questions:level:0") {
		t.Fatalf("expected the fresh load cached")
	}
}

type countingLoader struct {
	memory.QuestionLoader
	calls      int
	afterFirst func()
}

func (l *countingLoader) LoadLevel(ctx context.Context, level int) ([]domain.Question, error) {
	l.calls++
	questions, err := l.QuestionLoader.LoadLevel(ctx, level)
	if l.calls == 1 && l.afterFirst != nil {
		l.afterFirst()
	}
	return questions, err
}

func sampleStore(t *testing.T) *memory.QuestionStore {
	t.Helper()
	store := memory.NewQuestionStore()
	q := domain.Question{Level: 0, Text: "What is 2 + 2?", Answer1: "4", Answer2: "3", Answer3: "5", Answer4: "22"}
	if err := store.Create(context.Background(), &q); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
