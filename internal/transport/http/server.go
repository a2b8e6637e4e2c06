package http

import (
	"net/http"
	"time"

	"millionaire-service/internal/app"
)

// Options tune the browser session cookie.
type Options struct {
	CookieName   string
	SecureCookie bool
	SessionTTL   time.Duration
}

// Server exposes the game over HTML pages, JSON and websockets.
type Server struct {
	games     *app.GameService
	users     *app.UserService
	questions *app.QuestionService
	sessions  app.SessionRepository
	ws        *WSHandler
	opts      Options
}

func NewServer(games *app.GameService, users *app.UserService, questions *app.QuestionService, sessions app.SessionRepository, opts Options) *Server {
	if opts.CookieName == "" {
		opts.CookieName = "millionaire_session"
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = 14 * 24 * time.Hour
	}
	return &Server{
		games:     games,
		users:     users,
		questions: questions,
		sessions:  sessions,
		ws:        NewWSHandler(games),
		opts:      opts,
	}
}

// Routes builds the request multiplexer.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("GET /{$}", s.home)
	mux.HandleFunc("GET /users/sign_up", s.signUpForm)
	mux.HandleFunc("POST /users", s.signUp)
	mux.HandleFunc("GET /users/sign_in", s.signInForm)
	mux.HandleFunc("POST /users/sign_in", s.signIn)
	mux.HandleFunc("POST /users/sign_out", s.signOut)
	mux.HandleFunc("GET /users/{id}", s.requireUser(s.showUser))
	mux.HandleFunc("POST /api/tokens", s.issueToken)

	mux.HandleFunc("POST /games", s.requireUser(s.createGame))
	mux.HandleFunc("GET /games/{id}", s.requireUser(s.showGame))
	mux.HandleFunc("GET /games/{id}/ws", s.requireUser(s.serveGameWS))
	for _, method := range []string{http.MethodPut, http.MethodPost} {
		mux.HandleFunc(method+" /games/{id}/answer", s.requireUser(s.answer))
		mux.HandleFunc(method+" /games/{id}/take_money", s.requireUser(s.takeMoney))
		mux.HandleFunc(method+" /games/{id}/help", s.requireUser(s.help))
	}

	mux.HandleFunc("POST /questions/import", s.requireUser(s.importQuestions))
	return s.withSession(s.withSameOrigin(mux))
}
