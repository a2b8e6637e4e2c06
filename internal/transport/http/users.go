package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"millionaire-service/internal/domain"
)

const leaderboardSize = 50

func (s *Server) home(w http.ResponseWriter, r *http.Request) {
	board, err := s.users.Leaderboard(r.Context(), leaderboardSize)
	if err != nil {
		log.Printf("leaderboard: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, board)
		return
	}
	s.render(w, r, http.StatusOK, "home.html", page{Title: "Who Wants To Be A Millionaire", Leaderboard: board})
}

// showUser renders a profile. Owners see every game, visitors only finished ones.
func (s *Server) showUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		s.redirectWithFlash(w, r, "/", flashAlert, "User not found")
		return
	}
	profile, err := s.users.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, domain.ErrUserNotFound) {
			log.Printf("load user %d: %v", id, err)
		}
		s.redirectWithFlash(w, r, "/", flashAlert, "User not found")
		return
	}
	games, err := s.games.GamesForUser(r.Context(), id)
	if err != nil {
		log.Printf("games for user %d: %v", id, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	own := currentUser(r).ID == profile.ID
	views := make([]domain.GameView, 0, len(games))
	for _, g := range games {
		if own || g.Finished() {
			views = append(views, g.View())
		}
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, map[string]any{
			"user":  domain.LeaderboardEntry{UserID: profile.ID, Name: profile.Name, Balance: profile.Balance},
			"games": views,
		})
		return
	}
	s.render(w, r, http.StatusOK, "user.html", page{Title: profile.Name, Profile: &profile, Games: views})
}

func (s *Server) signUpForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "sign_up.html", page{Title: "Sign up"})
}

func (s *Server) signUp(w http.ResponseWriter, r *http.Request) {
	form := map[string]string{"name": r.FormValue("name"), "email": r.FormValue("email")}
	user, err := s.users.Register(r.Context(), form["name"], form["email"], r.FormValue("password"))
	if err != nil {
		var verr *domain.ValidationError
		switch {
		case errors.As(err, &verr):
			s.render(w, r, http.StatusUnprocessableEntity, "sign_up.html", page{Title: "Sign up", Form: form, Errors: verr.Fields})
		case errors.Is(err, domain.ErrEmailTaken):
			s.render(w, r, http.StatusUnprocessableEntity, "sign_up.html", page{
				Title: "Sign up", Form: form, Errors: map[string]string{"email": "has already been taken"},
			})
		default:
			log.Printf("register: %v", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}
	if err := s.startSession(w, r, user); err != nil {
		log.Printf("start session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.redirectWithFlash(w, r, "/", flashNotice, "Welcome! You have signed up successfully.")
}

func (s *Server) signInForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, r, http.StatusOK, "sign_in.html", page{Title: "Sign in"})
}

func (s *Server) signIn(w http.ResponseWriter, r *http.Request) {
	email := r.FormValue("email")
	user, err := s.users.Authenticate(r.Context(), email, r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			log.Printf("authenticate: %v", err)
		}
		s.setFlash(w, r, flashAlert, "Invalid email or password.")
		s.render(w, r, http.StatusUnauthorized, "sign_in.html", page{Title: "Sign in", Form: map[string]string{"email": email}})
		return
	}
	if err := s.startSession(w, r, user); err != nil {
		log.Printf("start session: %v", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	s.redirectWithFlash(w, r, "/", flashNotice, "Signed in successfully.")
}

func (s *Server) signOut(w http.ResponseWriter, r *http.Request) {
	s.endSession(w, r)
	s.redirectWithFlash(w, r, "/", flashNotice, "Signed out successfully.")
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResponse struct {
	Token string `json:"token"`
}

func (s *Server) issueToken(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	token, err := s.users.IssueToken(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			writeError(w, http.StatusUnauthorized, err.Error())
			return
		}
		log.Printf("issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusCreated, tokenResponse{Token: token})
}
