package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"millionaire-service/internal/domain"
)

// QuestionLoader reads the questions of a level straight from Postgres.
type QuestionLoader struct {
	pool *pgxpool.Pool
}

func NewQuestionLoader(pool *pgxpool.Pool) *QuestionLoader {
	return &QuestionLoader{pool: pool}
}

func (l *QuestionLoader) LoadLevel(ctx context.Context, level int) ([]domain.Question, error) {
	rows, err := l.pool.Query(ctx,
		`SELECT id, level, text, answer1, answer2, answer3, answer4 FROM questions WHERE level=$1 ORDER BY id`, level)
	if err != nil {
		return nil, fmt.Errorf("load level %d: %w", level, err)
	}
	defer rows.Close()

	var questions []domain.Question
	for rows.Next() {
		var q domain.Question
		if err := rows.Scan(&q.ID, &q.Level, &q.Text, &q.Answer1, &q.Answer2, &q.Answer3, &q.Answer4); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load level %d: %w", level, err)
	}
	return questions, nil
}
