package http

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestUserCreatesGame(t *testing.T) {
	h := newHarness(t)
	browser := newClient(t, true)
	user := h.register("vadik")
	h.signInAs(browser, user)

	home := readBody(t, h.send(browser, http.MethodGet, "/", nil, nil))
	if !strings.Contains(home, "New game") {
		t.Fatalf("expected a New game button on the home page")
	}

	resp := h.send(browser, http.MethodPost, "/games", nil, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected the game page, got %d", resp.StatusCode)
	}
	if !strings.HasPrefix(resp.Request.URL.Path, "/games/") {
		t.Fatalf("expected to land on the game, got %s", resp.Request.URL.Path)
	}
	page := readBody(t, resp)
	for _, want := range []string{
		"Level 0 question about space odyssey",
		"Right 0", "Wrong 0-1", "Wrong 0-2", "Wrong 0-3",
		"the clock is ticking",
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q on the game page", want)
		}
	}
}

func TestSignUpFlow(t *testing.T) {
	h := newHarness(t)
	browser := newClient(t, true)

	resp := h.send(browser, http.MethodPost, "/users", map[string][]string{
		"name": {"Vadik"}, "email": {"new@example.com"}, "password": {"123"},
	}, nil)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a short password, got %d", resp.StatusCode)
	}
	if body := readBody(t, resp); !strings.Contains(body, "password") {
		t.Fatalf("expected the password error on the form")
	}

	resp = h.send(browser, http.MethodPost, "/users", map[string][]string{
		"name": {"Vadik"}, "email": {"new@example.com"}, "password": {testPassword},
	}, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected home page after sign up, got %d", resp.StatusCode)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "signed up successfully") || !strings.Contains(body, "New game") {
		t.Fatalf("expected a signed-in home page")
	}

	resp = h.send(browser, http.MethodPost, "/users/sign_out", nil, nil)
	if body := readBody(t, resp); strings.Contains(body, "New game") {
		t.Fatalf("expected to be signed out")
	}
}

func TestProfileHidesRunningGamesFromVisitors(t *testing.T) {
	h := newHarness(t)
	owner := h.register("owner")
	running := h.newGame(owner.ID)
	h.signIn("visitor")

	body := readBody(t, h.do(http.MethodGet, userPath(owner.ID), nil))
	if strings.Contains(body, fmt.Sprintf(`href="/games/%d"`, running.ID)) {
		t.Fatalf("visitors must not see a running game")
	}
	if !strings.Contains(body, "No games yet") {
		t.Fatalf("expected an empty game list for visitors")
	}
}

func TestImportQuestionsRequiresAdmin(t *testing.T) {
	h := newHarness(t)
	user := h.signIn("editor")
	doc := "- level: 3\n  text: \"Imported question\"\n  answers: [\"1\", \"2\", \"3\", \"4\"]\n"

	req, _ := http.NewRequest(http.MethodPost, h.server.URL+"/questions/import", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/x-yaml")
	req.Header.Set("Accept", "application/json")
	resp, err := h.client.Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admins, got %d", resp.StatusCode)
	}

	if err := h.users.SetAdmin(req.Context(), user.ID, true); err != nil {
		t.Fatalf("set admin: %v", err)
	}
	req, _ = http.NewRequest(http.MethodPost, h.server.URL+"/questions/import", strings.NewReader(doc))
	req.Header.Set("Content-Type", "application/x-yaml")
	req.Header.Set("Accept", "application/json")
	resp, err = h.client.Do(req)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for admins, got %d", resp.StatusCode)
	}
	if h.questions.Count() != 16 {
		t.Fatalf("expected the imported question stored, got %d", h.questions.Count())
	}
}
