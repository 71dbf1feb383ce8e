package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/matching"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, exam.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, exam.ErrAttemptSubmitted):
		return http.StatusConflict
	case errors.Is(err, exam.ErrNotMatching),
		errors.Is(err, exam.ErrInvalidExam),
		errors.Is(err, matching.ErrInvalidInput),
		errors.Is(err, matching.ErrInvalidIdentifier),
		errors.Is(err, matching.ErrPreconditionFailed):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError maps a store or engine error onto a status code. Internal
// errors are logged and never echoed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := statusFor(err)
	if code == http.StatusInternalServerError {
		log.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		http.Error(w, "internal error", code)
		return
	}
	http.Error(w, err.Error(), code)
}
