package memory

import (
	"context"
	"sort"
	"sync"

	"millionaire-service/internal/domain"
)

// QuestionStore keeps questions in memory. It doubles as a QuestionLoader.
type QuestionStore struct {
	mu        sync.RWMutex
	nextID    int64
	questions map[int64]domain.Question
	texts     map[string]int64
}

func NewQuestionStore() *QuestionStore {
	return &QuestionStore{
		questions: make(map[int64]domain.Question),
		texts:     make(map[string]int64),
	}
}

func (s *QuestionStore) Create(_ context.Context, q *domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.texts[q.Text]; ok {
		return domain.ErrDuplicateQuestion
	}
	s.nextID++
	q.ID = s.nextID
	s.questions[q.ID] = *q
	s.texts[q.Text] = q.ID
	return nil
}

func (s *QuestionStore) LoadLevel(_ context.Context, level int) ([]domain.Question, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Question, 0)
	for _, q := range s.questions {
		if q.Level == level {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Count reports how many questions are stored.
func (s *QuestionStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}
