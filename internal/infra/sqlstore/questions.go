package sqlstore

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
	"millionaire-service/internal/domain"
)

// QuestionStore implements app.QuestionStore and serves as a question loader.
type QuestionStore struct {
	db *bun.DB
}

func NewQuestionStore(db *bun.DB) *QuestionStore {
	return &QuestionStore{db: db}
}

func (s *QuestionStore) Create(ctx context.Context, q *domain.Question) error {
	if err := q.Validate(); err != nil {
		return err
	}
	row := questionToRow(*q)
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateQuestion
		}
		return fmt.Errorf("insert question: %w", err)
	}
	q.ID = row.ID
	return nil
}

func (s *QuestionStore) LoadLevel(ctx context.Context, level int) ([]domain.Question, error) {
	var rows []questionRow
	if err := s.db.NewSelect().Model(&rows).Where("q.level = ?", level).Order("q.id").Scan(ctx); err != nil {
		return nil, fmt.Errorf("load level %d: %w", level, err)
	}
	out := make([]domain.Question, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.toDomain())
	}
	return out, nil
}

// Count reports how many questions are stored.
func (s *QuestionStore) Count(ctx context.Context) (int, error) {
	return s.db.NewSelect().Model((*questionRow)(nil)).Count(ctx)
}

func loadQuestions(ctx context.Context, db bun.IDB, ids []int64) (map[int64]domain.Question, error) {
	out := make(map[int64]domain.Question, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []questionRow
	if err := db.NewSelect().Model(&rows).Where("q.id IN (?)", bun.In(ids)).Scan(ctx); err != nil {
		return nil, fmt.Errorf("load game questions: %w", err)
	}
	for _, r := range rows {
		out[r.ID] = r.toDomain()
	}
	return out, nil
}
