package sqlstore

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
	"millionaire-service/internal/domain"
)

type userRow struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int64     `bun:"id,pk,autoincrement"`
	Name         string    `bun:"name,notnull"`
	Email        string    `bun:"email,notnull,unique"`
	PasswordHash string    `bun:"password_hash,notnull"`
	IsAdmin      bool      `bun:"is_admin,notnull,default:false"`
	Balance      int64     `bun:"balance,notnull,default:0"`
	CreatedAt    time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions,alias:q"`

	ID        int64     `bun:"id,pk,autoincrement"`
	Level     int       `bun:"level,notnull"`
	Text      string    `bun:"text,notnull,unique"`
	Answer1   string    `bun:"answer1,notnull"`
	Answer2   string    `bun:"answer2,notnull"`
	Answer3   string    `bun:"answer3,notnull"`
	Answer4   string    `bun:"answer4,notnull"`
	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
}

type gameRow struct {
	bun.BaseModel `bun:"table:games,alias:g"`

	ID               int64      `bun:"id,pk,autoincrement"`
	UserID           int64      `bun:"user_id,notnull"`
	CurrentLevel     int        `bun:"current_level,notnull,default:0"`
	Prize            int64      `bun:"prize,notnull,default:0"`
	IsFailed         bool       `bun:"is_failed,notnull,default:false"`
	FinishedAt       *time.Time `bun:"finished_at,nullzero"`
	AudienceHelpUsed bool       `bun:"audience_help_used,notnull,default:false"`
	FiftyFiftyUsed   bool       `bun:"fifty_fifty_used,notnull,default:false"`
	FriendCallUsed   bool       `bun:"friend_call_used,notnull,default:false"`
	CreatedAt        time.Time  `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt        time.Time  `bun:"updated_at,notnull,default:current_timestamp"`

	Questions []*gameQuestionRow `bun:"rel:has-many,join:id=game_id"`
}

// gameQuestionRow keeps the letter permutation in columns a..d: each holds
// the 1-based number of the question answer shown under that letter.
type gameQuestionRow struct {
	bun.BaseModel `bun:"table:game_questions,alias:gq"`

	ID         int64  `bun:"id,pk,autoincrement"`
	GameID     int64  `bun:"game_id,notnull"`
	QuestionID int64  `bun:"question_id,notnull"`
	Level      int    `bun:"level,notnull"`
	A          int    `bun:"a,notnull"`
	B          int    `bun:"b,notnull"`
	C          int    `bun:"c,notnull"`
	D          int    `bun:"d,notnull"`
	HelpHash   string `bun:"help_hash,notnull,default:'{}'"`
}

func userToRow(u domain.User) userRow {
	return userRow{
		ID:           u.ID,
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
		Balance:      u.Balance,
		CreatedAt:    u.CreatedAt,
	}
}

func (r userRow) toDomain() domain.User {
	return domain.User{
		ID:           r.ID,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		IsAdmin:      r.IsAdmin,
		Balance:      r.Balance,
		CreatedAt:    r.CreatedAt,
	}
}

func questionToRow(q domain.Question) questionRow {
	return questionRow{
		ID:        q.ID,
		Level:     q.Level,
		Text:      q.Text,
		Answer1:   q.Answer1,
		Answer2:   q.Answer2,
		Answer3:   q.Answer3,
		Answer4:   q.Answer4,
		CreatedAt: time.Now().UTC(),
	}
}

func (r questionRow) toDomain() domain.Question {
	return domain.Question{
		ID:      r.ID,
		Level:   r.Level,
		Text:    r.Text,
		Answer1: r.Answer1,
		Answer2: r.Answer2,
		Answer3: r.Answer3,
		Answer4: r.Answer4,
	}
}

func gameToRow(g *domain.Game) gameRow {
	return gameRow{
		ID:               g.ID,
		UserID:           g.UserID,
		CurrentLevel:     g.CurrentLevel,
		Prize:            g.Prize,
		IsFailed:         g.IsFailed,
		FinishedAt:       g.FinishedAt,
		AudienceHelpUsed: g.AudienceHelpUsed,
		FiftyFiftyUsed:   g.FiftyFiftyUsed,
		FriendCallUsed:   g.FriendCallUsed,
		CreatedAt:        g.CreatedAt,
		UpdatedAt:        g.UpdatedAt,
	}
}

func gameQuestionToRow(gq domain.GameQuestion) (gameQuestionRow, error) {
	help, err := json.Marshal(gq.Help)
	if err != nil {
		return gameQuestionRow{}, err
	}
	return gameQuestionRow{
		ID:         gq.ID,
		GameID:     gq.GameID,
		QuestionID: gq.Question.ID,
		Level:      gq.Level,
		A:          gq.Order[0] + 1,
		B:          gq.Order[1] + 1,
		C:          gq.Order[2] + 1,
		D:          gq.Order[3] + 1,
		HelpHash:   string(help),
	}, nil
}

func (r *gameRow) toDomain(questions map[int64]domain.Question) (*domain.Game, error) {
	game := &domain.Game{
		ID:               r.ID,
		UserID:           r.UserID,
		CurrentLevel:     r.CurrentLevel,
		Prize:            r.Prize,
		IsFailed:         r.IsFailed,
		FinishedAt:       r.FinishedAt,
		CreatedAt:        r.CreatedAt,
		UpdatedAt:        r.UpdatedAt,
		AudienceHelpUsed: r.AudienceHelpUsed,
		FiftyFiftyUsed:   r.FiftyFiftyUsed,
		FriendCallUsed:   r.FriendCallUsed,
		Questions:        make([]domain.GameQuestion, 0, len(r.Questions)),
	}
	for _, gq := range r.Questions {
		var help domain.HelpHash
		if gq.HelpHash != "" {
			if err := json.Unmarshal([]byte(gq.HelpHash), &help); err != nil {
				return nil, err
			}
		}
		game.Questions = append(game.Questions, domain.GameQuestion{
			ID:       gq.ID,
			GameID:   gq.GameID,
			Level:    gq.Level,
			Question: questions[gq.QuestionID],
			Order:    [4]int{gq.A - 1, gq.B - 1, gq.C - 1, gq.D - 1},
			Help:     help,
		})
	}
	return game, nil
}
