package app

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"millionaire-service/internal/auth"
	"millionaire-service/internal/domain"
)

const minPasswordLength = 6

// UserService covers registration, sign-in and the balance leaderboard.
type UserService struct {
	users  UserRepository
	tokens *auth.TokenIssuer
	now    func() time.Time
}

func NewUserService(users UserRepository, tokens *auth.TokenIssuer) *UserService {
	return &UserService{users: users, tokens: tokens, now: time.Now}
}

// Register creates an account.
func (s *UserService) Register(ctx context.Context, name, email, password string) (domain.User, error) {
	name = strings.TrimSpace(name)
	email = normalizeEmail(email)

	fields := map[string]string{}
	if name == "" {
		fields["name"] = "can't be blank"
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		fields["email"] = "is invalid"
	}
	if len(password) < minPasswordLength {
		fields["password"] = "is too short (minimum is 6 characters)"
	}
	if len(fields) > 0 {
		return domain.User{}, &domain.ValidationError{Record: "user", Fields: fields}
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, err
	}
	user := domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now(),
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Authenticate checks credentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (domain.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrInvalidCredentials
		}
		return domain.User{}, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return domain.User{}, domain.ErrInvalidCredentials
	}
	return user, nil
}

// IssueToken authenticates and returns a bearer token for API clients.
func (s *UserService) IssueToken(ctx context.Context, email, password string) (string, error) {
	user, err := s.Authenticate(ctx, email, password)
	if err != nil {
		return "", err
	}
	return s.tokens.Issue(user.ID)
}

// UserFromToken resolves a bearer token to its user.
func (s *UserService) UserFromToken(ctx context.Context, token string) (domain.User, error) {
	userID, err := s.tokens.Parse(token)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.Get(ctx, userID)
}

func (s *UserService) Get(ctx context.Context, id int64) (domain.User, error) {
	return s.users.Get(ctx, id)
}

// Leaderboard lists the richest players.
func (s *UserService) Leaderboard(ctx context.Context, limit int) ([]domain.LeaderboardEntry, error) {
	users, err := s.users.Leaderboard(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]domain.LeaderboardEntry, 0, len(users))
	for _, u := range users {
		entries = append(entries, domain.LeaderboardEntry{UserID: u.ID, Name: u.Name, Balance: u.Balance})
	}
	return entries, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
