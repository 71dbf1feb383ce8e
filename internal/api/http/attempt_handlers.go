package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	auth "github.com/mind-engage/quizboard/internal/auth/middleware"
	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/rbac"
)

// loadAttempt fetches the attempt named in the route. The owner always
// passes; anyone else needs perm. An empty perm admits only the owner.
func loadAttempt(w http.ResponseWriter, r *http.Request, store exam.Store, perm string) (exam.Attempt, bool) {
	a, err := store.GetAttempt(r.Context(), chi.URLParam(r, "attemptID"))
	if err != nil {
		writeError(w, r, err)
		return exam.Attempt{}, false
	}
	if a.UserID == auth.SubjectFromContext(r.Context()) {
		return a, true
	}
	if perm != "" && checker.Has(roleOf(r), perm) {
		return a, true
	}
	http.Error(w, "forbidden", http.StatusForbidden)
	return exam.Attempt{}, false
}

// POST /attempts {"exam_id": "..."}; the attempt belongs to the caller.
func CreateAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ExamID string `json:"exam_id"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		if req.ExamID == "" {
			http.Error(w, "exam_id required", http.StatusBadRequest)
			return
		}
		a, err := store.NewAttempt(r.Context(), req.ExamID, auth.SubjectFromContext(r.Context()))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, a)
	}
}

func GetAttemptHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := loadAttempt(w, r, store, "attempt:view-all")
		if !ok {
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func SubmitAttemptHandler(store exam.Store, locks *AttemptLocks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		a, ok := loadAttempt(w, r, store, "")
		if !ok {
			return
		}
		unlock := locks.lock(a.ID)
		defer unlock()
		a, err := store.Submit(r.Context(), a.ID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, a)
	}
}

func roleOf(r *http.Request) string { return rbac.RoleFromContext(r.Context()) }
