package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/matching"
	"github.com/mind-engage/quizboard/internal/review"
)

func questionParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "questionID"))
	if err != nil || id <= 0 {
		http.Error(w, "bad question id", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// GET /attempts/{attemptID}/questions/{questionID}/board
func BoardHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := questionParam(w, r)
		if !ok {
			return
		}
		a, ok := loadAttempt(w, r, store, "attempt:view-all")
		if !ok {
			return
		}
		q, st, err := exam.LoadSession(r.Context(), store, a.ID, qid, false)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, buildBoard(q, st, a.Status == exam.StatusSubmitted))
	}
}

type dragRequest struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

type dragResponse struct {
	Transition matching.Transition `json:"transition"`
	Changes    []matching.Pair     `json:"changes"`
	Board      Board               `json:"board"`
}

// AttemptLocks serializes writes per attempt: each drag loads the state the
// previous one persisted, and a submit never lands inside a drag. The zero
// value is ready to use.
type AttemptLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (l *AttemptLocks) lock(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = map[string]*sync.Mutex{}
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()
	m.Lock()
	return m.Unlock
}

// POST /attempts/{attemptID}/questions/{questionID}/drag {source, destination}
//
// One drag runs through a fresh controller built from the stored draft. Its
// change notifications are persisted together, in emission order, or not at all.
func DragHandler(store exam.Store, locks *AttemptLocks) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := questionParam(w, r)
		if !ok {
			return
		}
		var req dragRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "bad json", http.StatusBadRequest)
			return
		}
		a, ok := loadAttempt(w, r, store, "attempt:drag-any")
		if !ok {
			return
		}
		if a.Status == exam.StatusSubmitted {
			writeError(w, r, exam.ErrAttemptSubmitted)
			return
		}

		unlock := locks.lock(a.ID)
		defer unlock()

		q, st, err := exam.LoadSession(r.Context(), store, a.ID, qid, false)
		if err != nil {
			writeError(w, r, err)
			return
		}
		p := &exam.Persister{Store: store, AttemptID: a.ID}
		l := log.Ctx(r.Context()).With().Str("attempt_id", a.ID).Logger()
		ctrl := matching.NewController(qid, st, matching.WithNotifier(p), matching.WithLogger(l))

		res, err := ctrl.Drag(req.Source, req.Destination)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if err := p.Flush(r.Context()); err != nil {
			l.Warn().Err(err).Str("transition", string(res.Transition)).Msg("drag not persisted")
			writeError(w, r, err)
			return
		}
		changes := res.Changes
		if changes == nil {
			changes = []matching.Pair{}
		}
		writeJSON(w, http.StatusOK, dragResponse{
			Transition: res.Transition,
			Changes:    changes,
			Board:      buildBoard(q, ctrl.State(), false),
		})
	}
}

// GET /attempts/{attemptID}/questions/{questionID}/review
//
// Owners see the review once the attempt is submitted; reviewers any time.
func ReviewHandler(store exam.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		qid, ok := questionParam(w, r)
		if !ok {
			return
		}
		a, ok := loadAttempt(w, r, store, "attempt:review")
		if !ok {
			return
		}
		if a.Status != exam.StatusSubmitted && !checker.Has(roleOf(r), "attempt:review") {
			http.Error(w, "attempt not submitted", http.StatusConflict)
			return
		}
		e, err := store.GetExamAdmin(r.Context(), a.ExamID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		q, found := e.Question(qid)
		if !found {
			writeError(w, r, exam.ErrNotFound)
			return
		}
		if q.Type != exam.TypeMatching {
			writeError(w, r, exam.ErrNotMatching)
			return
		}
		pairs, err := store.ListAssignments(r.Context(), a.ID, qid)
		if err != nil {
			writeError(w, r, err)
			return
		}
		res, err := review.Build(q.Options, q.Categories, pairs)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
