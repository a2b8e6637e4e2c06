package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/uptrace/bun"
	"millionaire-service/internal/domain"
)

// GameStore implements app.GameRepository.
type GameStore struct {
	db *bun.DB
}

func NewGameStore(db *bun.DB) *GameStore {
	return &GameStore{db: db}
}

func (s *GameStore) Create(ctx context.Context, game *domain.Game) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := gameToRow(game)
		if _, err := tx.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
			if isUniqueViolation(err) {
				return domain.ErrGameInProgress
			}
			return fmt.Errorf("insert game: %w", err)
		}

		rows := make([]gameQuestionRow, 0, len(game.Questions))
		for i := range game.Questions {
			game.Questions[i].GameID = row.ID
			gq, err := gameQuestionToRow(game.Questions[i])
			if err != nil {
				return fmt.Errorf("encode game question: %w", err)
			}
			rows = append(rows, gq)
		}
		if _, err := tx.NewInsert().Model(&rows).Returning("id").Exec(ctx); err != nil {
			return fmt.Errorf("insert game questions: %w", err)
		}

		game.ID = row.ID
		for i := range rows {
			game.Questions[i].ID = rows[i].ID
		}
		return nil
	})
}

func (s *GameStore) Get(ctx context.Context, id int64) (*domain.Game, error) {
	return s.first(ctx, "g.id = ?", id)
}

func (s *GameStore) InProgressForUser(ctx context.Context, userID int64) (*domain.Game, error) {
	return s.first(ctx, "g.user_id = ? AND g.finished_at IS NULL", userID)
}

func (s *GameStore) ListForUser(ctx context.Context, userID int64) ([]*domain.Game, error) {
	var rows []*gameRow
	err := s.db.NewSelect().Model(&rows).
		Relation("Questions").
		Where("g.user_id = ?", userID).
		OrderExpr("g.id DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}
	return s.toDomain(ctx, s.db, rows)
}

func (s *GameStore) Save(ctx context.Context, game *domain.Game, payout int64) error {
	return s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		row := gameToRow(game)
		res, err := tx.NewUpdate().Model(&row).
			Column("current_level", "prize", "is_failed", "finished_at",
				"audience_help_used", "fifty_fifty_used", "friend_call_used", "updated_at").
			WherePK().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("update game: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.ErrGameNotFound
		}

		for _, q := range game.Questions {
			gq, err := gameQuestionToRow(q)
			if err != nil {
				return fmt.Errorf("encode game question: %w", err)
			}
			if _, err := tx.NewUpdate().Model(&gq).Column("help_hash").WherePK().Exec(ctx); err != nil {
				return fmt.Errorf("update game question: %w", err)
			}
		}

		if payout > 0 {
			_, err := tx.NewUpdate().Model((*userRow)(nil)).
				Set("balance = balance + ?", payout).
				Where("id = ?", game.UserID).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("credit balance: %w", err)
			}
		}
		return nil
	})
}

func (s *GameStore) first(ctx context.Context, where string, arg interface{}) (*domain.Game, error) {
	row := new(gameRow)
	err := s.db.NewSelect().Model(row).
		Relation("Questions").
		Where(where, arg).
		OrderExpr("g.id DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrGameNotFound
		}
		return nil, fmt.Errorf("select game: %w", err)
	}
	games, err := s.toDomain(ctx, s.db, []*gameRow{row})
	if err != nil {
		return nil, err
	}
	return games[0], nil
}

func (s *GameStore) toDomain(ctx context.Context, db bun.IDB, rows []*gameRow) ([]*domain.Game, error) {
	var ids []int64
	for _, r := range rows {
		sort.Slice(r.Questions, func(i, j int) bool { return r.Questions[i].Level < r.Questions[j].Level })
		for _, gq := range r.Questions {
			ids = append(ids, gq.QuestionID)
		}
	}
	questions, err := loadQuestions(ctx, db, ids)
	if err != nil {
		return nil, err
	}
	games := make([]*domain.Game, 0, len(rows))
	for _, r := range rows {
		game, err := r.toDomain(questions)
		if err != nil {
			return nil, fmt.Errorf("decode game %d: %w", r.ID, err)
		}
		games = append(games, game)
	}
	return games, nil
}
