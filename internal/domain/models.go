package domain

import (
	"strings"
	"time"
)

// User is an account that plays games and collects winnings.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
	Balance      int64
	CreatedAt    time.Time
}

// LeaderboardEntry is the public view of a user on the main page.
type LeaderboardEntry struct {
	UserID  int64  `json:"userId"`
	Name    string `json:"name"`
	Balance int64  `json:"balance"`
}

// Question is a piece of trivia content. Answer1 is always the correct one.
type Question struct {
	ID      int64  `json:"id"`
	Level   int    `json:"level"`
	Text    string `json:"text"`
	Answer1 string `json:"answer1"`
	Answer2 string `json:"answer2"`
	Answer3 string `json:"answer3"`
	Answer4 string `json:"answer4"`
}

// Answers returns the four answers, correct one first.
func (q Question) Answers() [4]string {
	return [4]string{q.Answer1, q.Answer2, q.Answer3, q.Answer4}
}

// HelpType names a lifeline.
type HelpType string

const (
	AudienceHelp HelpType = "audience_help"
	FiftyFifty   HelpType = "fifty_fifty"
	FriendCall   HelpType = "friend_call"
)

// ParseHelpType maps a request parameter to a HelpType.
func ParseHelpType(raw string) (HelpType, error) {
	switch HelpType(strings.TrimSpace(raw)) {
	case AudienceHelp:
		return AudienceHelp, nil
	case FiftyFifty:
		return FiftyFifty, nil
	case FriendCall:
		return FriendCall, nil
	}
	return "", ErrUnknownHelp
}

// Status is derived from the persisted game fields, never stored.
type Status string

const (
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusFail       Status = "fail"
	StatusTimeout    Status = "timeout"
	StatusMoney      Status = "money"
)

// HelpHash holds the lifeline results revealed for one game question.
type HelpHash struct {
	AudienceHelp map[string]int `json:"audience_help,omitempty"`
	FiftyFifty   []string       `json:"fifty_fifty,omitempty"`
	FriendCall   string         `json:"friend_call,omitempty"`
}

// WebSession is a browser session: who is signed in plus pending flash messages.
type WebSession struct {
	ID     string            `json:"id"`
	UserID int64             `json:"userId"`
	Flash  map[string]string `json:"flash,omitempty"`
}

// AnonymousSessionTTL caps the lifetime of sessions that only carry a flash.
const AnonymousSessionTTL = 30 * time.Minute

// Lifetime returns how long the session lives after a save, given the configured TTL.
func (s WebSession) Lifetime(ttl time.Duration) time.Duration {
	if s.UserID == 0 && (ttl <= 0 || ttl > AnonymousSessionTTL) {
		return AnonymousSessionTTL
	}
	return ttl
}
