package http

import (
	"bytes"
	"embed"
	"encoding/json"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"millionaire-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.New("").Funcs(template.FuncMap{
	"money": money,
	"ago":   func(t time.Time) string { return humanize.Time(t) },
	"upper": strings.ToUpper,
	"inc":   func(n int) int { return n + 1 },
}).ParseFS(templateFS, "templates/*.html"))

// page is the data handed to every HTML template.
type page struct {
	Title       string
	CurrentUser *domain.User
	Flash       map[string]string

	Leaderboard []domain.LeaderboardEntry
	Profile     *domain.User
	Games       []domain.GameView

	Game    *domain.GameView
	Answers []answerOption
	Ladder  []ladderStep

	Form   map[string]string
	Errors map[string]string
}

type answerOption struct {
	Letter string
	Text   string
}

type ladderStep struct {
	Number    int
	Prize     int64
	Fireproof bool
	Current   bool
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, p page) {
	p.CurrentUser = currentUser(r)
	p.Flash = s.popFlash(r)

	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, p); err != nil {
		log.Printf("render %s: %v", name, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func wantsJSON(r *http.Request) bool {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write json: %v", err)
	}
}

type errorBody struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}

// money formats a prize the way pages and flash messages show it.
func money(amount int64) string {
	return "$" + humanize.Comma(amount)
}

func prizeLadder(currentLevel int) []ladderStep {
	steps := make([]ladderStep, 0, domain.Levels)
	for level := domain.MaxLevel; level >= 0; level-- {
		steps = append(steps, ladderStep{
			Number:    level + 1,
			Prize:     domain.Prizes[level],
			Fireproof: isFireproof(level),
			Current:   level == currentLevel,
		})
	}
	return steps
}

func isFireproof(level int) bool {
	for _, l := range domain.FireproofLevels {
		if l == level {
			return true
		}
	}
	return false
}

// answerOptions lists the visible variants, hiding the two removed by fifty-fifty.
func answerOptions(view *domain.GameView) []answerOption {
	if view == nil || view.Question == nil {
		return nil
	}
	visible := map[string]bool{}
	for _, key := range view.Question.Help.FiftyFifty {
		visible[key] = true
	}
	options := make([]answerOption, 0, len(domain.Letters))
	for _, letter := range domain.Letters {
		if len(visible) > 0 && !visible[letter] {
			continue
		}
		options = append(options, answerOption{Letter: letter, Text: view.Question.Variants[letter]})
	}
	return options
}
