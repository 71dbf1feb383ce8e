package exam

import (
	"context"
	"errors"
	"fmt"

	"github.com/mind-engage/quizboard/internal/matching"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrAttemptSubmitted = errors.New("attempt already submitted")
	ErrNotMatching      = errors.New("question is not a matching question")
	ErrInvalidExam      = errors.New("invalid exam")
)

func errValidation(msg string) error { return fmt.Errorf("%w: %s", ErrInvalidExam, msg) }

type Store interface {
	PutExam(ctx context.Context, e Exam) error
	GetExam(ctx context.Context, id string) (Exam, error)      // student-safe (no authoritative categories)
	GetExamAdmin(ctx context.Context, id string) (Exam, error) // full exam, for teachers and review
	NewAttempt(ctx context.Context, examID, userID string) (Attempt, error)
	GetAttempt(ctx context.Context, id string) (Attempt, error)
	Submit(ctx context.Context, attemptID string) (Attempt, error)

	// ApplyAssignments records the changes of one drag atomically, in order.
	// A pair with matching.Unassigned sends the option to the end of the saved
	// pool order. Submitted attempts reject the whole batch.
	ApplyAssignments(ctx context.Context, attemptID string, questionID int, changes []matching.Pair) error
	ListAssignments(ctx context.Context, attemptID string, questionID int) ([]matching.Pair, error)
	// ListPoolOrder returns options returned to the pool, oldest return first.
	ListPoolOrder(ctx context.Context, attemptID string, questionID int) ([]int, error)
}

// LoadSession rebuilds the engine state of one matching question for an
// attempt, from the exam definition and the stored draft.
func LoadSession(ctx context.Context, s Store, attemptID string, questionID int, admin bool) (Question, matching.State, error) {
	a, err := s.GetAttempt(ctx, attemptID)
	if err != nil {
		return Question{}, matching.State{}, err
	}
	get := s.GetExam
	if admin {
		get = s.GetExamAdmin
	}
	e, err := get(ctx, a.ExamID)
	if err != nil {
		return Question{}, matching.State{}, err
	}
	q, ok := e.Question(questionID)
	if !ok {
		return Question{}, matching.State{}, fmt.Errorf("question %d: %w", questionID, ErrNotFound)
	}
	if q.Type != TypeMatching {
		return Question{}, matching.State{}, ErrNotMatching
	}
	pairs, err := s.ListAssignments(ctx, attemptID, questionID)
	if err != nil {
		return Question{}, matching.State{}, err
	}
	pool, err := s.ListPoolOrder(ctx, attemptID, questionID)
	if err != nil {
		return Question{}, matching.State{}, err
	}
	st, err := matching.New(q.Options, q.Categories, pairs, matching.WithPoolOrder(pool))
	if err != nil {
		return Question{}, matching.State{}, err
	}
	return q, st, nil
}

// Persister collects the notifications of one drag so they can be written
// as a single batch with Flush.
type Persister struct {
	Store     Store
	AttemptID string

	questionID int
	pending    []matching.Pair
}

func (p *Persister) OnAssignmentChange(questionID, optionID, categoryID int) {
	p.questionID = questionID
	p.pending = append(p.pending, matching.Pair{OptionID: optionID, CategoryID: categoryID})
}

// Pending returns the changes not yet flushed.
func (p *Persister) Pending() []matching.Pair { return append([]matching.Pair(nil), p.pending...) }

// Flush writes every pending change in one call. Nothing pending is a no-op.
func (p *Persister) Flush(ctx context.Context) error {
	if len(p.pending) == 0 {
		return nil
	}
	err := p.Store.ApplyAssignments(ctx, p.AttemptID, p.questionID, p.pending)
	p.pending = nil
	return err
}
