package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"math/rand"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
	"millionaire-service/internal/domain"
)

// QuestionService manages trivia content and draws questions for new games.
type QuestionService struct {
	store QuestionStore
	pool  QuestionPool

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionService(store QuestionStore, pool QuestionPool) *QuestionService {
	return NewQuestionServiceWithSeed(store, pool, time.Now().UnixNano())
}

// NewQuestionServiceWithSeed is test-only for reproducible draws.
func NewQuestionServiceWithSeed(store QuestionStore, pool QuestionPool, seed int64) *QuestionService {
	return &QuestionService{store: store, pool: pool, rnd: rand.New(rand.NewSource(seed))}
}

// ImportReport summarizes a question import.
type ImportReport struct {
	Created    int      `json:"created"`
	Duplicates int      `json:"duplicates"`
	Invalid    []string `json:"invalid,omitempty"`
}

// DecodeQuestions reads a YAML list of questions.
func DecodeQuestions(r io.Reader) ([]domain.QuestionInput, error) {
	var inputs []domain.QuestionInput
	if err := yaml.NewDecoder(r).Decode(&inputs); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode questions: %w", err)
	}
	return inputs, nil
}

// Import validates and stores questions. Invalid entries are reported and
// duplicate texts skipped; only storage failures abort the import.
func (s *QuestionService) Import(ctx context.Context, inputs []domain.QuestionInput) (ImportReport, error) {
	report := ImportReport{}
	touched := map[int]struct{}{}
	for i, in := range inputs {
		q, err := in.Build()
		if err != nil {
			report.Invalid = append(report.Invalid, fmt.Sprintf("#%d: %v", i+1, err))
			continue
		}
		if err := s.store.Create(ctx, &q); err != nil {
			if errors.Is(err, domain.ErrDuplicateQuestion) {
				report.Duplicates++
				continue
			}
			return report, err
		}
		report.Created++
		touched[q.Level] = struct{}{}
	}
	for level := range touched {
		if err := s.pool.Invalidate(ctx, level); err != nil {
			log.Printf("invalidate question pool level %d: %v", level, err)
		}
	}
	return report, nil
}

// PickGameQuestions draws one random question for every level.
func (s *QuestionService) PickGameQuestions(ctx context.Context) ([]domain.Question, error) {
	picked := make([]domain.Question, 0, domain.Levels)
	for level := 0; level < domain.Levels; level++ {
		candidates, err := s.pool.Level(ctx, level)
		if err != nil {
			return nil, err
		}
		if len(candidates) == 0 {
			return nil, fmt.Errorf("level %d: %w", level, domain.ErrNotEnoughQuestions)
		}
		s.mu.Lock()
		q := candidates[s.rnd.Intn(len(candidates))]
		s.mu.Unlock()
		picked = append(picked, q)
	}
	return picked, nil
}
