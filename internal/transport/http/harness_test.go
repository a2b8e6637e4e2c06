package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"millionaire-service/internal/app"
	"millionaire-service/internal/auth"
	"millionaire-service/internal/domain"
	"millionaire-service/internal/infra/memory"
)

const testPassword = "secret123"

type harness struct {
	t         *testing.T
	server    *httptest.Server
	client    *http.Client
	sessions  *memory.SessionStore
	users     *memory.UserStore
	games     *memory.GameStore
	questions *memory.QuestionStore
	userSvc   *app.UserService
	gameSvc   *app.GameService

	clockMu sync.Mutex
	now     time.Time
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:         t,
		users:     memory.NewUserStore(),
		questions: memory.NewQuestionStore(),
		now:       time.Now(),
	}
	h.sessions = memory.NewSessionStoreWithClock(time.Hour, h.clock)
	h.games = memory.NewGameStore(h.users)
	seedLevels(t, h.questions)

	pool := memory.NewQuestionPool(h.questions, time.Minute)
	questionSvc := app.NewQuestionServiceWithSeed(h.questions, pool, 1)
	h.gameSvc = app.NewGameServiceWithClock(h.games, questionSvc, app.NewGameHub(),
		domain.NewHelpGeneratorWithSeed(1), time.Now)
	h.userSvc = app.NewUserService(h.users, auth.NewTokenIssuer("test-secret", time.Hour))

	server := NewServer(h.gameSvc, h.userSvc, questionSvc, h.sessions, Options{CookieName: "test_session"})
	h.server = httptest.NewServer(server.Routes())
	t.Cleanup(h.server.Close)
	h.client = newClient(t, false)
	return h
}

func (h *harness) clock() time.Time {
	h.clockMu.Lock()
	defer h.clockMu.Unlock()
	return h.now
}

// advance moves the session clock forward.
func (h *harness) advance(d time.Duration) {
	h.clockMu.Lock()
	defer h.clockMu.Unlock()
	h.now = h.now.Add(d)
}

func newClient(t *testing.T, follow bool) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	client := &http.Client{Jar: jar, Timeout: 5 * time.Second}
	if !follow {
		client.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}
	return client
}

func seedLevels(t *testing.T, store *memory.QuestionStore) {
	t.Helper()
	for level := 0; level < domain.Levels; level++ {
		q := domain.Question{
			Level:   level,
			Text:    fmt.Sprintf("Level %d question about space odyssey", level),
			Answer1: fmt.Sprintf("Right %d", level),
			Answer2: fmt.Sprintf("Wrong %d-1", level),
			Answer3: fmt.Sprintf("Wrong %d-2", level),
			Answer4: fmt.Sprintf("Wrong %d-3", level),
		}
		if err := store.Create(context.Background(), &q); err != nil {
			t.Fatalf("seed question: %v", err)
		}
	}
}

// register creates an account directly through the service.
func (h *harness) register(name string) domain.User {
	h.t.Helper()
	user, err := h.userSvc.Register(context.Background(), name, name+"@example.com", testPassword)
	if err != nil {
		h.t.Fatalf("register %s: %v", name, err)
	}
	return user
}

// signIn registers a user and signs the harness client in as them.
func (h *harness) signIn(name string) domain.User {
	h.t.Helper()
	user := h.register(name)
	h.signInAs(h.client, user)
	return user
}

func (h *harness) signInAs(client *http.Client, user domain.User) {
	h.t.Helper()
	resp := h.send(client, http.MethodPost, "/users/sign_in", url.Values{"email": {user.Email}, "password": {testPassword}}, nil)
	if resp.StatusCode != http.StatusFound {
		h.t.Fatalf("sign in: expected 302, got %d", resp.StatusCode)
	}
	// land on the home page like a browser would, consuming the welcome flash
	if resp := h.send(client, http.MethodGet, "/", nil, nil); resp.StatusCode != http.StatusOK {
		h.t.Fatalf("home after sign in: expected 200, got %d", resp.StatusCode)
	}
}

func (h *harness) do(method, path string, form url.Values) *http.Response {
	h.t.Helper()
	return h.send(h.client, method, path, form, nil)
}

func (h *harness) send(client *http.Client, method, path string, form url.Values, header http.Header) *http.Response {
	h.t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequest(method, h.server.URL+path, body)
	if err != nil {
		h.t.Fatalf("new request: %v", err)
	}
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for k, v := range header {
		req.Header[k] = v
	}
	resp, err := client.Do(req)
	if err != nil {
		h.t.Fatalf("%s %s: %v", method, path, err)
	}
	h.t.Cleanup(func() { resp.Body.Close() })
	return resp
}

// flash peeks at the pending flash of the harness client without consuming it.
func (h *harness) flash() map[string]string {
	h.t.Helper()
	u, _ := url.Parse(h.server.URL)
	for _, c := range h.client.Jar.Cookies(u) {
		if c.Name != "test_session" {
			continue
		}
		session, err := h.sessions.Get(context.Background(), c.Value)
		if err != nil {
			h.t.Fatalf("load session: %v", err)
		}
		return session.Flash
	}
	return nil
}

func (h *harness) newGame(userID int64) *domain.Game {
	h.t.Helper()
	game, err := h.gameSvc.CreateGame(context.Background(), userID)
	if err != nil {
		h.t.Fatalf("create game: %v", err)
	}
	return game
}

func (h *harness) setLevel(gameID int64, level int) {
	h.t.Helper()
	game, err := h.games.Get(context.Background(), gameID)
	if err != nil {
		h.t.Fatalf("load game: %v", err)
	}
	game.CurrentLevel = level
	if err := h.games.Save(context.Background(), game, 0); err != nil {
		h.t.Fatalf("save game: %v", err)
	}
}

func (h *harness) game(gameID int64) *domain.Game {
	h.t.Helper()
	game, err := h.games.Get(context.Background(), gameID)
	if err != nil {
		h.t.Fatalf("load game: %v", err)
	}
	return game
}

func expectRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	if resp.StatusCode != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Location"); got != location {
		t.Fatalf("expected redirect to %s, got %s", location, got)
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(data)
}
