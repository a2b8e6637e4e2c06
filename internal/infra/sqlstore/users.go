package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/uptrace/bun"
	"millionaire-service/internal/domain"
)

// UserStore implements app.UserRepository.
type UserStore struct {
	db *bun.DB
}

func NewUserStore(db *bun.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	row := userToRow(*user)
	if _, err := s.db.NewInsert().Model(&row).Returning("id").Exec(ctx); err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	user.ID = row.ID
	return nil
}

func (s *UserStore) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.first(ctx, "u.id = ?", id)
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	return s.first(ctx, "u.email = ?", email)
}

func (s *UserStore) Leaderboard(ctx context.Context, limit int) ([]domain.User, error) {
	var rows []userRow
	q := s.db.NewSelect().Model(&rows).OrderExpr("u.balance DESC, u.id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(ctx); err != nil {
		return nil, fmt.Errorf("select leaderboard: %w", err)
	}
	users := make([]domain.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.toDomain())
	}
	return users, nil
}

// SetAdmin flips the admin flag of a user.
func (s *UserStore) SetAdmin(ctx context.Context, id int64, admin bool) error {
	res, err := s.db.NewUpdate().Model((*userRow)(nil)).
		Set("is_admin = ?", admin).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("update admin flag: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (s *UserStore) first(ctx context.Context, where string, arg interface{}) (domain.User, error) {
	var row userRow
	if err := s.db.NewSelect().Model(&row).Where(where, arg).Limit(1).Scan(ctx); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.User{}, domain.ErrUserNotFound
		}
		return domain.User{}, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}
