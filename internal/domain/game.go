package domain

import (
	"math/rand"
	"strings"
	"time"
)

// Prizes is the prize ladder: Prizes[level] is won by answering the question at that level.
var Prizes = [Levels]int64{
	100, 200, 300, 500, 1_000,
	2_000, 4_000, 8_000, 16_000, 32_000,
	64_000, 125_000, 250_000, 500_000, 1_000_000,
}

// FireproofLevels are the levels whose prize is kept even after a wrong answer.
var FireproofLevels = []int{4, 9, 14}

// TimeLimit is how long a game may run before it times out.
const TimeLimit = 35 * time.Minute

// Letters are the answer keys shown to players, in display order.
var Letters = [4]string{"a", "b", "c", "d"}

// GameQuestion is one level of a game. Order[i] is the index into the
// question's answers shown under Letters[i]; index 0 is the correct answer.
type GameQuestion struct {
	ID       int64
	GameID   int64
	Level    int
	Question Question
	Order    [4]int
	Help     HelpHash
}

// Variants maps each letter to the answer text shown under it.
func (gq *GameQuestion) Variants() map[string]string {
	answers := gq.Question.Answers()
	out := make(map[string]string, len(Letters))
	for i, letter := range Letters {
		out[letter] = answers[gq.Order[i]]
	}
	return out
}

// CorrectAnswerKey is the letter the correct answer ended up under.
func (gq *GameQuestion) CorrectAnswerKey() string {
	for i, idx := range gq.Order {
		if idx == 0 {
			return Letters[i]
		}
	}
	return ""
}

// CorrectAnswer is the text of the correct answer.
func (gq *GameQuestion) CorrectAnswer() string {
	return gq.Question.Answer1
}

// AnswerCorrect reports whether letter picks the correct answer.
func (gq *GameQuestion) AnswerCorrect(letter string) bool {
	return strings.ToLower(strings.TrimSpace(letter)) == gq.CorrectAnswerKey()
}

// keysForHelp are the letters still in play: all four, or the two left by fifty-fifty.
func (gq *GameQuestion) keysForHelp() []string {
	if len(gq.Help.FiftyFifty) > 0 {
		return append([]string(nil), gq.Help.FiftyFifty...)
	}
	return Letters[:]
}

// NewGameQuestion shuffles the answers of q with rnd.
func NewGameQuestion(q Question, rnd *rand.Rand) GameQuestion {
	perm := rnd.Perm(4)
	var order [4]int
	copy(order[:], perm)
	return GameQuestion{Level: q.Level, Question: q, Order: order}
}

// Game is a single run up the prize ladder.
type Game struct {
	ID               int64
	UserID           int64
	Questions        []GameQuestion
	CurrentLevel     int
	Prize            int64
	IsFailed         bool
	FinishedAt       *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
	AudienceHelpUsed bool
	FiftyFiftyUsed   bool
	FriendCallUsed   bool
}

// NewGame builds an unsaved game for a user from one question per level.
func NewGame(userID int64, questions []Question, rnd *rand.Rand, now time.Time) (*Game, error) {
	if len(questions) != Levels {
		return nil, ErrNotEnoughQuestions
	}
	game := &Game{
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
		Questions: make([]GameQuestion, Levels),
	}
	for level := 0; level < Levels; level++ {
		q := questions[level]
		if q.Level != level {
			return nil, ErrNotEnoughQuestions
		}
		game.Questions[level] = NewGameQuestion(q, rnd)
	}
	return game, nil
}

// Finished reports whether the game has ended, for any reason.
func (g *Game) Finished() bool {
	return g.FinishedAt != nil
}

// Status derives the game state from the persisted fields.
func (g *Game) Status() Status {
	if !g.Finished() {
		return StatusInProgress
	}
	if g.IsFailed {
		if g.FinishedAt.Sub(g.CreatedAt) > TimeLimit {
			return StatusTimeout
		}
		return StatusFail
	}
	if g.CurrentLevel > MaxLevel {
		return StatusWon
	}
	return StatusMoney
}

// CurrentGameQuestion is the unanswered question at CurrentLevel, nil once all are answered.
func (g *Game) CurrentGameQuestion() *GameQuestion {
	if g.CurrentLevel < 0 || g.CurrentLevel >= len(g.Questions) {
		return nil
	}
	return &g.Questions[g.CurrentLevel]
}

// PreviousLevel is the last answered level, -1 before the first answer.
func (g *Game) PreviousLevel() int {
	return g.CurrentLevel - 1
}

// TimeOut finishes an overdue game with the fireproof prize and reports whether it did.
func (g *Game) TimeOut(now time.Time) bool {
	if g.Finished() {
		return false
	}
	if now.Sub(g.CreatedAt) <= TimeLimit {
		return false
	}
	g.finish(FireproofPrize(g.PreviousLevel()), true, now)
	return true
}

// AnswerCurrentQuestion applies an answer and reports whether it was correct.
// Answers to finished or overdue games are rejected with false.
func (g *Game) AnswerCurrentQuestion(letter string, now time.Time) bool {
	if g.TimeOut(now) || g.Finished() {
		return false
	}
	q := g.CurrentGameQuestion()
	if q == nil {
		return false
	}
	if !q.AnswerCorrect(letter) {
		g.finish(FireproofPrize(g.PreviousLevel()), true, now)
		return false
	}
	g.CurrentLevel++
	g.UpdatedAt = now
	if g.CurrentLevel == Levels {
		g.finish(Prizes[MaxLevel], false, now)
	}
	return true
}

// TakeMoney ends the game with the prize of the last answered level.
func (g *Game) TakeMoney(now time.Time) {
	if g.TimeOut(now) || g.Finished() {
		return
	}
	var amount int64
	if prev := g.PreviousLevel(); prev > -1 {
		amount = Prizes[prev]
	}
	g.finish(amount, false, now)
}

// UseHelp spends a lifeline on the current question. It reports false when the
// lifeline was already used, the game is over, or the type is unknown.
func (g *Game) UseHelp(kind HelpType, gen *HelpGenerator) bool {
	if g.Finished() {
		return false
	}
	q := g.CurrentGameQuestion()
	if q == nil {
		return false
	}
	switch kind {
	case AudienceHelp:
		if g.AudienceHelpUsed {
			return false
		}
		g.AudienceHelpUsed = true
		q.Help.AudienceHelp = gen.AudienceDistribution(q.keysForHelp(), q.CorrectAnswerKey())
	case FiftyFifty:
		if g.FiftyFiftyUsed {
			return false
		}
		g.FiftyFiftyUsed = true
		q.Help.FiftyFifty = gen.FiftyFifty(q.CorrectAnswerKey())
	case FriendCall:
		if g.FriendCallUsed {
			return false
		}
		g.FriendCallUsed = true
		q.Help.FriendCall = gen.FriendCall(q.keysForHelp(), q.CorrectAnswerKey())
	default:
		return false
	}
	return true
}

func (g *Game) finish(amount int64, failed bool, now time.Time) {
	finishedAt := now
	g.Prize = amount
	g.FinishedAt = &finishedAt
	g.IsFailed = failed
	g.UpdatedAt = now
}

// FireproofPrize is the guaranteed prize after answering up to answeredLevel.
func FireproofPrize(answeredLevel int) int64 {
	level := -1
	for _, l := range FireproofLevels {
		if l <= answeredLevel {
			level = l
		}
	}
	if level < 0 {
		return 0
	}
	return Prizes[level]
}
