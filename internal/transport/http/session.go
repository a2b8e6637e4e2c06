package http

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strings"

	"millionaire-service/internal/domain"
)

const (
	flashNotice  = "notice"
	flashAlert   = "alert"
	flashWarning = "warning"
	flashInfo    = "info"
)

const msgSignInRequired = "You need to sign in or sign up before continuing."

type ctxKey int

const stateKey ctxKey = iota

// requestState carries the browser session and the signed-in user through a request.
type requestState struct {
	session *domain.WebSession
	user    *domain.User
}

func state(r *http.Request) *requestState {
	if st, ok := r.Context().Value(stateKey).(*requestState); ok {
		return st
	}
	return &requestState{}
}

func currentUser(r *http.Request) *domain.User {
	return state(r).user
}

// withSession resolves the session cookie or a bearer token before routing.
func (s *Server) withSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		st := &requestState{}
		ctx := r.Context()

		if cookie, err := r.Cookie(s.opts.CookieName); err == nil && cookie.Value != "" {
			session, err := s.sessions.Get(ctx, cookie.Value)
			switch {
			case err == nil:
				st.session = &session
			case !errors.Is(err, domain.ErrSessionNotFound):
				log.Printf("load session: %v", err)
			}
		}
		if st.session != nil && st.session.UserID > 0 {
			if user, err := s.users.Get(ctx, st.session.UserID); err == nil {
				st.user = &user
			}
		}
		if st.user == nil {
			if token, ok := bearerToken(r); ok {
				if user, err := s.users.UserFromToken(ctx, token); err == nil {
					st.user = &user
				}
			}
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, stateKey, st)))
	})
}

// requireUser lets signed-in users through and kicks everyone else to the sign-in page.
func (s *Server) requireUser(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if currentUser(r) == nil {
			if wantsJSON(r) {
				writeError(w, http.StatusUnauthorized, msgSignInRequired)
				return
			}
			s.redirectWithFlash(w, r, "/users/sign_in", flashAlert, msgSignInRequired)
			return
		}
		next(w, r)
	}
}

// setFlash stores a message for the next rendered page, creating an
// anonymous session when the client has none yet.
func (s *Server) setFlash(w http.ResponseWriter, r *http.Request, kind, message string) {
	st := state(r)
	ctx := r.Context()
	if st.session == nil {
		session, err := s.sessions.Create(ctx, 0)
		if err != nil {
			log.Printf("create session: %v", err)
			return
		}
		st.session = &session
		s.setSessionCookie(w, session.ID)
	}
	if st.session.Flash == nil {
		st.session.Flash = make(map[string]string)
	}
	st.session.Flash[kind] = message
	if err := s.sessions.Save(ctx, *st.session); err != nil {
		log.Printf("save session: %v", err)
	}
}

// popFlash returns and clears the pending flash messages.
func (s *Server) popFlash(r *http.Request) map[string]string {
	st := state(r)
	if st.session == nil || len(st.session.Flash) == 0 {
		return nil
	}
	flash := st.session.Flash
	st.session.Flash = nil
	if err := s.sessions.Save(r.Context(), *st.session); err != nil {
		log.Printf("save session: %v", err)
	}
	return flash
}

// startSession signs a user in on a fresh session, carrying over pending flash.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user domain.User) error {
	st := state(r)
	ctx := r.Context()
	session, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return err
	}
	if st.session != nil {
		session.Flash = st.session.Flash
		if err := s.sessions.Delete(ctx, st.session.ID); err != nil {
			log.Printf("delete session: %v", err)
		}
	}
	st.session = &session
	st.user = &user
	s.setSessionCookie(w, session.ID)
	return nil
}

func (s *Server) endSession(w http.ResponseWriter, r *http.Request) {
	st := state(r)
	if st.session != nil {
		if err := s.sessions.Delete(r.Context(), st.session.ID); err != nil {
			log.Printf("delete session: %v", err)
		}
	}
	st.session = nil
	st.user = nil
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func (s *Server) setSessionCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     s.opts.CookieName,
		Value:    id,
		Path:     "/",
		MaxAge:   int(s.opts.SessionTTL.Seconds()),
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
}

func (s *Server) redirectWithFlash(w http.ResponseWriter, r *http.Request, location, kind, message string) {
	s.setFlash(w, r, kind, message)
	http.Redirect(w, r, location, http.StatusFound)
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || strings.TrimSpace(token) == "" {
		return "", false
	}
	return strings.TrimSpace(token), true
}
