package exam

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/quizboard/internal/matching"
)

type assignmentKey struct {
	attemptID  string
	questionID int
}

type memoryStore struct {
	mu       sync.RWMutex
	exams    map[string]Exam
	attempts map[string]Attempt
	// per attempt+question: option id -> category id
	assignments map[assignmentKey]map[int]int
	// option insertion order, so listings are stable
	order map[assignmentKey][]int
	// options returned to the pool, oldest first
	pool map[assignmentKey][]int
}

func NewInMemoryStore() Store {
	return &memoryStore{
		exams:       map[string]Exam{},
		attempts:    map[string]Attempt{},
		assignments: map[assignmentKey]map[int]int{},
		order:       map[assignmentKey][]int{},
		pool:        map[assignmentKey][]int{},
	}
}

func (m *memoryStore) PutExam(_ context.Context, e Exam) error {
	if err := e.Validate(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if e.CreatedAt == 0 {
		e.CreatedAt = time.Now().Unix()
	}
	m.exams[e.ID] = e
	return nil
}

func (m *memoryStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := m.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return studentSafe(e)
}

func (m *memoryStore) GetExamAdmin(_ context.Context, id string) (Exam, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.exams[id]
	if !ok {
		return Exam{}, ErrNotFound
	}
	return e, nil
}

func (m *memoryStore) NewAttempt(_ context.Context, examID, userID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.exams[examID]; !ok {
		return Attempt{}, ErrNotFound
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		StartedAt: time.Now().Unix(),
	}
	m.attempts[a.ID] = a
	return a, nil
}

func (m *memoryStore) GetAttempt(_ context.Context, id string) (Attempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.attempts[id]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	return a, nil
}

func (m *memoryStore) Submit(_ context.Context, attemptID string) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return Attempt{}, ErrNotFound
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	m.attempts[attemptID] = a
	return a, nil
}

func (m *memoryStore) ApplyAssignments(_ context.Context, attemptID string, questionID int, changes []matching.Pair) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.attempts[attemptID]
	if !ok {
		return ErrNotFound
	}
	if a.Status == StatusSubmitted {
		return ErrAttemptSubmitted
	}
	k := assignmentKey{attemptID, questionID}
	byOption := m.assignments[k]
	if byOption == nil {
		byOption = map[int]int{}
		m.assignments[k] = byOption
	}
	for _, ch := range changes {
		m.pool[k] = slices.DeleteFunc(m.pool[k], func(id int) bool { return id == ch.OptionID })
		if ch.CategoryID == matching.Unassigned {
			delete(byOption, ch.OptionID)
			m.order[k] = slices.DeleteFunc(m.order[k], func(id int) bool { return id == ch.OptionID })
			m.pool[k] = append(m.pool[k], ch.OptionID)
			continue
		}
		if _, seen := byOption[ch.OptionID]; !seen {
			m.order[k] = append(m.order[k], ch.OptionID)
		}
		byOption[ch.OptionID] = ch.CategoryID
	}
	return nil
}

func (m *memoryStore) ListPoolOrder(_ context.Context, attemptID string, questionID int) ([]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.attempts[attemptID]; !ok {
		return nil, ErrNotFound
	}
	return slices.Clone(m.pool[assignmentKey{attemptID, questionID}]), nil
}

func (m *memoryStore) ListAssignments(_ context.Context, attemptID string, questionID int) ([]matching.Pair, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if _, ok := m.attempts[attemptID]; !ok {
		return nil, ErrNotFound
	}
	k := assignmentKey{attemptID, questionID}
	byOption := m.assignments[k]
	out := make([]matching.Pair, 0, len(byOption))
	for _, opt := range m.order[k] {
		if cat, ok := byOption[opt]; ok {
			out = append(out, matching.Pair{OptionID: opt, CategoryID: cat})
		}
	}
	return out, nil
}
