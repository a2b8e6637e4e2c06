package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
)

type fixture struct {
	users     *memory.UserStore
	games     *memory.GameStore
	questions *memory.QuestionStore
	service   *app.GameService
	now       time.Time
}

func newFixture(t *testing.T, perLevel int) *fixture {
	t.Helper()
	f := &fixture{
		users:     memory.NewUserStore(),
		questions: memory.NewQuestionStore(),
		now:       time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC),
	}
	f.games = memory.NewGameStore(f.users)
	for level := 0; level < domain.Levels; level++ {
		for i := 0; i < perLevel; i++ {
			q := domain.Question{
				Level:   level,
				Text:    fmt.Sprintf("When was space odyssey %d-%d?", level, i),
				Answer1: "2001", Answer2: "1999", Answer3: "2010", Answer4: "1968",
			}
			if err := f.questions.Create(context.Background(), &q); err != nil {
				t.Fatalf("seed question: %v", err)
			}
		}
	}
	pool := memory.NewQuestionPool(f.questions, time.Minute)
	questionService := app.NewQuestionServiceWithSeed(f.questions, pool, 1)
	f.service = app.NewGameServiceWithClock(f.games, questionService, app.NewGameHub(),
		domain.NewHelpGeneratorWithSeed(1), func() time.Time { return f.now })
	return f
}

func (f *fixture) user(t *testing.T, name string) domain.User {
	t.Helper()
	u := domain.User{Name: name, Email: name + "@example.com"}
	if err := f.users.Create(context.Background(), &u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func TestCreateGameForUser(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 4)
	user := f.user(t, "vadik")

	game, err := f.service.CreateGame(ctx, user.ID)
	if err != nil {
		t.Fatalf("create game: %v", err)
	}
	if game.UserID != user.ID || game.Status() != domain.StatusInProgress {
		t.Fatalf("unexpected game %+v", game)
	}
	if len(game.Questions) != domain.Levels {
		t.Fatalf("expected %d game questions, got %d", domain.Levels, len(game.Questions))
	}
	for i, q := range game.Questions {
		if q.Level != i {
			t.Fatalf("expected level %d, got %d", i, q.Level)
		}
	}
	if f.questions.Count() != 4*domain.Levels {
		t.Fatalf("questions must not change, got %d", f.questions.Count())
	}
}

func TestCreateSecondGameReturnsExisting(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")

	first, _ := f.service.CreateGame(ctx, user.ID)
	second, err := f.service.CreateGame(ctx, user.ID)
	if !errors.Is(err, domain.ErrGameInProgress) {
		t.Fatalf("expected ErrGameInProgress, got %v", err)
	}
	if second == nil || second.ID != first.ID {
		t.Fatalf("expected existing game %d back, got %+v", first.ID, second)
	}
	games, _ := f.service.GamesForUser(ctx, user.ID)
	if len(games) != 1 {
		t.Fatalf("expected exactly one game, got %d", len(games))
	}
}

func TestCreateGameWithoutQuestions(t *testing.T) {
	f := newFixture(t, 0)
	user := f.user(t, "vadik")
	if _, err := f.service.CreateGame(context.Background(), user.ID); !errors.Is(err, domain.ErrNotEnoughQuestions) {
		t.Fatalf("expected ErrNotEnoughQuestions, got %v", err)
	}
}

func TestAnswerCorrectContinues(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)

	correct, updated, err := f.service.Answer(ctx, user.ID, game.ID, game.CurrentGameQuestion().CorrectAnswerKey())
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if !correct || updated.CurrentLevel != 1 || updated.Finished() {
		t.Fatalf("expected level 1 in progress, got correct=%v %+v", correct, updated)
	}
	stored, _ := f.service.Game(ctx, user.ID, game.ID)
	if stored.CurrentLevel != 1 {
		t.Fatalf("expected level persisted, got %d", stored.CurrentLevel)
	}
}

func TestAnswerWrongCreditsFireproofPrize(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)

	for i := 0; i < 6; i++ {
		g, _ := f.service.Game(ctx, user.ID, game.ID)
		if _, _, err := f.service.Answer(ctx, user.ID, game.ID, g.CurrentGameQuestion().CorrectAnswerKey()); err != nil {
			t.Fatalf("answer %d: %v", i, err)
		}
	}
	g, _ := f.service.Game(ctx, user.ID, game.ID)
	wrong := "a"
	if g.CurrentGameQuestion().CorrectAnswerKey() == "a" {
		wrong = "b"
	}
	correct, finished, err := f.service.Answer(ctx, user.ID, game.ID, wrong)
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if correct || finished.Status() != domain.StatusFail || finished.Prize != 1_000 {
		t.Fatalf("expected fail with 1000, got %s %d", finished.Status(), finished.Prize)
	}
	u, _ := f.users.Get(ctx, user.ID)
	if u.Balance != 1_000 {
		t.Fatalf("expected balance 1000, got %d", u.Balance)
	}

	// a finished game neither changes nor pays twice
	if _, _, err := f.service.Answer(ctx, user.ID, game.ID, "a"); err != nil {
		t.Fatalf("answer finished: %v", err)
	}
	u, _ = f.users.Get(ctx, user.ID)
	if u.Balance != 1_000 {
		t.Fatalf("expected balance to stay 1000, got %d", u.Balance)
	}
}

func TestTakeMoneyCreditsBalance(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)
	for i := 0; i < 2; i++ {
		g, _ := f.service.Game(ctx, user.ID, game.ID)
		_, _, _ = f.service.Answer(ctx, user.ID, game.ID, g.CurrentGameQuestion().CorrectAnswerKey())
	}

	finished, err := f.service.TakeMoney(ctx, user.ID, game.ID)
	if err != nil {
		t.Fatalf("take money: %v", err)
	}
	if !finished.Finished() || finished.Prize != 200 || finished.Status() != domain.StatusMoney {
		t.Fatalf("expected money status with 200, got %s %d", finished.Status(), finished.Prize)
	}
	u, _ := f.users.Get(ctx, user.ID)
	if u.Balance != 200 {
		t.Fatalf("expected balance 200, got %d", u.Balance)
	}
	if _, err := f.service.TakeMoney(ctx, user.ID, game.ID); err != nil {
		t.Fatalf("second take money: %v", err)
	}
	u, _ = f.users.Get(ctx, user.ID)
	if u.Balance != 200 {
		t.Fatalf("expected no double payout, got %d", u.Balance)
	}
}

func TestAnswerAfterTimeLimit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)

	f.now = f.now.Add(time.Hour)
	correct, g, err := f.service.Answer(ctx, user.ID, game.ID, game.CurrentGameQuestion().CorrectAnswerKey())
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if correct || g.Status() != domain.StatusTimeout {
		t.Fatalf("expected timeout, got correct=%v status=%s", correct, g.Status())
	}
}

func TestUseHelpOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)

	used, g, err := f.service.UseHelp(ctx, user.ID, game.ID, domain.AudienceHelp)
	if err != nil || !used {
		t.Fatalf("expected audience help applied, got %v %v", used, err)
	}
	if !g.AudienceHelpUsed || len(g.CurrentGameQuestion().Help.AudienceHelp) != 4 {
		t.Fatalf("expected audience help recorded, got %+v", g.CurrentGameQuestion().Help)
	}
	stored, _ := f.service.Game(ctx, user.ID, game.ID)
	if !stored.AudienceHelpUsed || stored.CurrentGameQuestion().Help.AudienceHelp == nil {
		t.Fatalf("expected help persisted")
	}
	used, _, _ = f.service.UseHelp(ctx, user.ID, game.ID, domain.AudienceHelp)
	if used {
		t.Fatalf("expected second audience help to be refused")
	}
	if stored.Finished() {
		t.Fatalf("help must not finish the game")
	}
}

func TestForeignGameIsRejected(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	owner := f.user(t, "owner")
	stranger := f.user(t, "stranger")
	game, _ := f.service.CreateGame(ctx, owner.ID)

	if _, err := f.service.Game(ctx, stranger.ID, game.ID); !errors.Is(err, domain.ErrNotYourGame) {
		t.Fatalf("expected ErrNotYourGame, got %v", err)
	}
	if _, err := f.service.TakeMoney(ctx, stranger.ID, game.ID); !errors.Is(err, domain.ErrNotYourGame) {
		t.Fatalf("expected ErrNotYourGame on take money, got %v", err)
	}
	if _, err := f.service.Game(ctx, owner.ID, 999); !errors.Is(err, domain.ErrGameNotFound) {
		t.Fatalf("expected ErrGameNotFound, got %v", err)
	}
}

func TestSubscribeReceivesUpdates(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1)
	user := f.user(t, "vadik")
	game, _ := f.service.CreateGame(ctx, user.ID)

	ch, cancel, err := f.service.Subscribe(ctx, user.ID, game.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()

	initial := <-ch
	if initial.CurrentLevel != 0 || initial.Question == nil {
		t.Fatalf("unexpected initial view %+v", initial)
	}

	if _, _, err := f.service.Answer(ctx, user.ID, game.ID, game.CurrentGameQuestion().CorrectAnswerKey()); err != nil {
		t.Fatalf("answer: %v", err)
	}
	update := <-ch
	if update.CurrentLevel != 1 {
		t.Fatalf("expected level 1 update, got %+v", update)
	}
}
