package http

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"millionaire-service/internal/domain"
)

type answerResponse struct {
	AnswerIsCorrect bool            `json:"answer_is_correct"`
	GameStatus      domain.Status   `json:"game_status"`
	NewPrize        int64           `json:"new_prize"`
	Finished        bool            `json:"finished"`
	Game            domain.GameView `json:"game"`
}

type helpResponse struct {
	Used bool            `json:"used"`
	Game domain.GameView `json:"game"`
}

type gameConflict struct {
	Error string          `json:"error"`
	Game  domain.GameView `json:"game"`
}

func (s *Server) createGame(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	game, err := s.games.CreateGame(r.Context(), user.ID)
	switch {
	case errors.Is(err, domain.ErrGameInProgress) && game != nil:
		const msg = "You have not finished your previous game"
		if wantsJSON(r) {
			writeJSON(w, http.StatusConflict, gameConflict{Error: msg, Game: game.View()})
			return
		}
		s.redirectWithFlash(w, r, gamePath(game.ID), flashAlert, msg)
	case err != nil:
		if !errors.Is(err, domain.ErrNotEnoughQuestions) {
			log.Printf("create game for user %d: %v", user.ID, err)
		}
		msg := fmt.Sprintf("Could not start a new game: %v", err)
		if wantsJSON(r) {
			writeError(w, http.StatusUnprocessableEntity, msg)
			return
		}
		s.redirectWithFlash(w, r, "/", flashAlert, msg)
	default:
		if wantsJSON(r) {
			writeJSON(w, http.StatusCreated, game.View())
			return
		}
		msg := fmt.Sprintf("Game started at %s, the clock is ticking! You have %d minutes.",
			game.CreatedAt.Format("15:04:05"), int(domain.TimeLimit.Minutes()))
		s.redirectWithFlash(w, r, gamePath(game.ID), flashNotice, msg)
	}
}

func (s *Server) showGame(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	game, ok := s.loadGame(w, r)
	if !ok {
		return
	}
	view := game.View()
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, view)
		return
	}
	if game.Finished() {
		s.redirectWithFlash(w, r, userPath(user.ID), flashAlert,
			fmt.Sprintf("This game is over (%s), your prize is %s", view.Status, money(game.Prize)))
		return
	}
	s.render(w, r, http.StatusOK, "game.html", page{
		Title:   fmt.Sprintf("Question %d", game.CurrentLevel+1),
		Game:    &view,
		Answers: answerOptions(&view),
		Ladder:  prizeLadder(game.CurrentLevel),
	})
}

func (s *Server) answer(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, ok := s.gameID(w, r)
	if !ok {
		return
	}
	correct, game, err := s.games.Answer(r.Context(), user.ID, id, r.FormValue("letter"))
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, answerResponse{
			AnswerIsCorrect: correct,
			GameStatus:      game.Status(),
			NewPrize:        game.Prize,
			Finished:        game.Finished(),
			Game:            game.View(),
		})
		return
	}
	if !game.Finished() {
		http.Redirect(w, r, gamePath(game.ID), http.StatusFound)
		return
	}
	if game.Status() == domain.StatusWon {
		s.redirectWithFlash(w, r, userPath(user.ID), flashNotice,
			fmt.Sprintf("Congratulations! You won %s", money(game.Prize)))
		return
	}
	s.redirectWithFlash(w, r, userPath(user.ID), flashAlert, gameOverMessage(game))
}

func (s *Server) takeMoney(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, ok := s.gameID(w, r)
	if !ok {
		return
	}
	game, err := s.games.TakeMoney(r.Context(), user.ID, id)
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, game.View())
		return
	}
	s.redirectWithFlash(w, r, userPath(user.ID), flashWarning,
		fmt.Sprintf("Game over, you took %s", money(game.Prize)))
}

func (s *Server) help(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	id, ok := s.gameID(w, r)
	if !ok {
		return
	}
	kind, err := domain.ParseHelpType(r.FormValue("help_type"))
	if err != nil {
		if wantsJSON(r) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.redirectWithFlash(w, r, gamePath(id), flashAlert, "Unknown lifeline")
		return
	}
	used, game, err := s.games.UseHelp(r.Context(), user.ID, id, kind)
	if err != nil {
		s.gameError(w, r, err)
		return
	}
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, helpResponse{Used: used, Game: game.View()})
		return
	}
	if !used {
		s.redirectWithFlash(w, r, gamePath(game.ID), flashAlert, "This lifeline is not available")
		return
	}
	s.redirectWithFlash(w, r, gamePath(game.ID), flashInfo, helpMessage(kind))
}

func (s *Server) serveGameWS(w http.ResponseWriter, r *http.Request) {
	id, ok := s.gameID(w, r)
	if !ok {
		return
	}
	if _, err := s.games.Game(r.Context(), currentUser(r).ID, id); err != nil {
		s.gameError(w, r, err)
		return
	}
	s.ws.ServeGame(w, r, currentUser(r).ID, id)
}

// loadGame fetches the requested game for the current user or answers with an error.
func (s *Server) loadGame(w http.ResponseWriter, r *http.Request) (*domain.Game, bool) {
	id, ok := s.gameID(w, r)
	if !ok {
		return nil, false
	}
	game, err := s.games.Game(r.Context(), currentUser(r).ID, id)
	if err != nil {
		s.gameError(w, r, err)
		return nil, false
	}
	return game, true
}

func (s *Server) gameID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		s.gameError(w, r, domain.ErrGameNotFound)
		return 0, false
	}
	return id, true
}

func (s *Server) gameError(w http.ResponseWriter, r *http.Request, err error) {
	status, msg := http.StatusInternalServerError, "Something went wrong"
	switch {
	case errors.Is(err, domain.ErrNotYourGame):
		status, msg = http.StatusForbidden, "This is not your game"
	case errors.Is(err, domain.ErrGameNotFound):
		status, msg = http.StatusNotFound, "Game not found"
	default:
		log.Printf("game request %s %s: %v", r.Method, r.URL.Path, err)
	}
	if wantsJSON(r) {
		writeError(w, status, msg)
		return
	}
	s.redirectWithFlash(w, r, "/", flashAlert, msg)
}

func gameOverMessage(game *domain.Game) string {
	prefix := "Wrong answer."
	if game.Status() == domain.StatusTimeout {
		prefix = "Time is up."
	}
	if q := game.CurrentGameQuestion(); q != nil {
		return fmt.Sprintf("%s The correct answer was %s. Game over, your prize is %s",
			prefix, q.CorrectAnswer(), money(game.Prize))
	}
	return fmt.Sprintf("%s Game over, your prize is %s", prefix, money(game.Prize))
}

func helpMessage(kind domain.HelpType) string {
	switch kind {
	case domain.AudienceHelp:
		return "The audience has voted"
	case domain.FiftyFifty:
		return "Two wrong answers are gone"
	default:
		return "Your friend picked up the phone"
	}
}

func gamePath(id int64) string {
	return "/games/" + strconv.FormatInt(id, 10)
}

func userPath(id int64) string {
	return "/users/" + strconv.FormatInt(id, 10)
}
