package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/rbac"
)

var checker = rbac.NewChecker(nil)

func UploadExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var e exam.Exam
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if err := store.PutExam(r.Context(), e); err != nil {
			writeError(w, r, err)
			return
		}
		log.Ctx(r.Context()).Info().Str("exam_id", e.ID).Int("questions", len(e.Questions)).Msg("exam stored")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "id": e.ID})
	}
}

// GetExamHandler serves the student-safe exam unless the caller may see
// answer keys.
func GetExamHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "examID")
		get := store.GetExam
		if checker.Has(rbac.RoleFromContext(r.Context()), "exam:view-answers") {
			get = store.GetExamAdmin
		}
		e, err := get(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, e)
	}
}
