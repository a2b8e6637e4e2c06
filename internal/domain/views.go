package domain

import "time"

// QuestionView is what a player sees of the current question.
type QuestionView struct {
	Level    int               `json:"level"`
	Text     string            `json:"text"`
	Variants map[string]string `json:"variants"`
	Help     HelpHash          `json:"help"`
}

// GameView is the JSON and websocket projection of a game. The correct
// answer is only revealed once the game is over.
type GameView struct {
	ID               int64         `json:"id"`
	Status           Status        `json:"status"`
	CurrentLevel     int           `json:"currentLevel"`
	Prize            int64         `json:"prize"`
	NextPrize        int64         `json:"nextPrize,omitempty"`
	Finished         bool          `json:"finished"`
	CreatedAt        time.Time     `json:"createdAt"`
	FinishedAt       *time.Time    `json:"finishedAt,omitempty"`
	AudienceHelpUsed bool          `json:"audienceHelpUsed"`
	FiftyFiftyUsed   bool          `json:"fiftyFiftyUsed"`
	FriendCallUsed   bool          `json:"friendCallUsed"`
	Question         *QuestionView `json:"question,omitempty"`
	CorrectAnswer    string        `json:"correctAnswer,omitempty"`
}

// View projects the game for clients.
func (g *Game) View() GameView {
	v := GameView{
		ID:               g.ID,
		Status:           g.Status(),
		CurrentLevel:     g.CurrentLevel,
		Prize:            g.Prize,
		Finished:         g.Finished(),
		CreatedAt:        g.CreatedAt,
		FinishedAt:       g.FinishedAt,
		AudienceHelpUsed: g.AudienceHelpUsed,
		FiftyFiftyUsed:   g.FiftyFiftyUsed,
		FriendCallUsed:   g.FriendCallUsed,
	}
	q := g.CurrentGameQuestion()
	if q == nil {
		return v
	}
	if g.Finished() {
		v.CorrectAnswer = q.CorrectAnswer()
		return v
	}
	v.NextPrize = Prizes[g.CurrentLevel]
	v.Question = &QuestionView{
		Level:    q.Level,
		Text:     q.Question.Text,
		Variants: q.Variants(),
		Help:     q.Help,
	}
	return v
}
