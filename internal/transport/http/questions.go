package http

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"millionaire-service/internal/app"
)

const maxImportSize = 4 << 20

// importQuestions loads a YAML question list, sent either as the request body
// or as the "file" field of a multipart form.
func (s *Server) importQuestions(w http.ResponseWriter, r *http.Request) {
	if !currentUser(r).IsAdmin {
		if wantsJSON(r) {
			writeError(w, http.StatusForbidden, "admins only")
			return
		}
		s.redirectWithFlash(w, r, "/", flashAlert, "Only admins can import questions")
		return
	}

	body := io.Reader(http.MaxBytesReader(w, r.Body, maxImportSize))
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		file, _, err := r.FormFile("file")
		if err != nil {
			s.importFailed(w, r, fmt.Errorf("read upload: %w", err))
			return
		}
		defer file.Close()
		body = file
	}

	inputs, err := app.DecodeQuestions(body)
	if err != nil {
		s.importFailed(w, r, err)
		return
	}
	report, err := s.questions.Import(r.Context(), inputs)
	if err != nil {
		log.Printf("import questions: %v", err)
		if wantsJSON(r) {
			writeError(w, http.StatusInternalServerError, "import failed")
			return
		}
		s.redirectWithFlash(w, r, "/", flashAlert, "Import failed")
		return
	}
	log.Printf("questions imported by user %d: created=%d duplicates=%d invalid=%d",
		currentUser(r).ID, report.Created, report.Duplicates, len(report.Invalid))
	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, report)
		return
	}
	s.redirectWithFlash(w, r, "/", flashNotice, fmt.Sprintf("Imported %d questions, %d duplicates skipped, %d invalid",
		report.Created, report.Duplicates, len(report.Invalid)))
}

func (s *Server) importFailed(w http.ResponseWriter, r *http.Request, err error) {
	if wantsJSON(r) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.redirectWithFlash(w, r, "/", flashAlert, err.Error())
}
