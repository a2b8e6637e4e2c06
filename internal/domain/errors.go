package domain

import "errors"

var (
	// ErrUserNotFound is returned when a user lookup misses.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken is returned when registering with an email that already exists.
	ErrEmailTaken = errors.New("email already taken")
	// ErrInvalidCredentials covers both unknown emails and wrong passwords.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrGameNotFound is returned when a game does not exist.
	ErrGameNotFound = errors.New("game not found")
	// ErrNotYourGame is returned when a user touches someone else's game.
	ErrNotYourGame = errors.New("game belongs to another user")
	// ErrGameInProgress is returned when a user with an unfinished game asks for another one.
	ErrGameInProgress = errors.New("user already has a game in progress")
	// ErrNotEnoughQuestions is returned when some level has no question to draw from.
	ErrNotEnoughQuestions = errors.New("not enough questions to build a game")
	// ErrDuplicateQuestion is returned when a question text already exists.
	ErrDuplicateQuestion = errors.New("question text already exists")
	// ErrUnknownHelp is returned for help types outside audience_help, fifty_fifty and friend_call.
	ErrUnknownHelp = errors.New("unknown help type")
	// ErrSessionNotFound is returned when a web session is missing or expired.
	ErrSessionNotFound = errors.New("session not found")
)
