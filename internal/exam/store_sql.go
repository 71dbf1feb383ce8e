package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mind-engage/quizboard/internal/matching"
	syncx "github.com/mind-engage/quizboard/internal/sync"
)

type SQLStore struct {
	db     *sql.DB
	driver string // "sqlite" or "postgres"
	events *syncx.EventRepo
}

func NewSQLStore(db *sql.DB, driver string, events *syncx.EventRepo) *SQLStore {
	if events == nil {
		events = syncx.NewEventRepo(db, "")
	}
	return &SQLStore{db: db, driver: driver, events: events}
}

func (s *SQLStore) PutExam(ctx context.Context, e Exam) error {
	if err := e.Validate(); err != nil {
		return err
	}
	qj, err := json.Marshal(e.Questions)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `INSERT INTO exams (id,title,time_limit_sec,questions_json,created_at)
		VALUES ($1,$2,$3,$4,$5)
		ON CONFLICT (id) DO UPDATE SET title=EXCLUDED.title, time_limit_sec=EXCLUDED.time_limit_sec, questions_json=EXCLUDED.questions_json`,
		e.ID, e.Title, e.TimeLimitSec, string(qj), time.Now().Unix())
	return err
}

func (s *SQLStore) GetExam(ctx context.Context, id string) (Exam, error) {
	e, err := s.GetExamAdmin(ctx, id)
	if err != nil {
		return Exam{}, err
	}
	return studentSafe(e)
}

func (s *SQLStore) GetExamAdmin(ctx context.Context, id string) (Exam, error) {
	row := s.db.QueryRowContext(ctx, `SELECT id,title,time_limit_sec,questions_json,created_at FROM exams WHERE id=$1`, id)
	var e Exam
	var qjson string
	if err := row.Scan(&e.ID, &e.Title, &e.TimeLimitSec, &qjson, &e.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Exam{}, ErrNotFound
		}
		return Exam{}, err
	}
	if err := json.Unmarshal([]byte(qjson), &e.Questions); err != nil {
		return Exam{}, err
	}
	return e, nil
}

func (s *SQLStore) NewAttempt(ctx context.Context, examID, userID string) (Attempt, error) {
	var exist int
	if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM exams WHERE id=$1`, examID).Scan(&exist); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	a := Attempt{
		ID:        uuid.NewString(),
		ExamID:    examID,
		UserID:    userID,
		Status:    StatusInProgress,
		StartedAt: time.Now().Unix(),
	}
	_, err := s.db.ExecContext(ctx, `INSERT INTO attempts (id,exam_id,user_id,status,started_at)
		VALUES ($1,$2,$3,$4,$5)`,
		a.ID, a.ExamID, a.UserID, a.Status, a.StartedAt)
	if err != nil {
		return Attempt{}, err
	}
	return a, nil
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getAttempt(ctx context.Context, q queryRower, id string) (Attempt, error) {
	row := q.QueryRowContext(ctx, `SELECT id,exam_id,user_id,status,started_at,submitted_at FROM attempts WHERE id=$1`, id)
	var a Attempt
	var submitted sql.NullInt64
	if err := row.Scan(&a.ID, &a.ExamID, &a.UserID, &a.Status, &a.StartedAt, &submitted); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Attempt{}, ErrNotFound
		}
		return Attempt{}, err
	}
	a.SubmittedAt = submitted.Int64
	return a, nil
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	return getAttempt(ctx, s.db, id)
}

func (s *SQLStore) Submit(ctx context.Context, attemptID string) (Attempt, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Attempt{}, err
	}
	defer tx.Rollback()

	a, err := getAttempt(ctx, tx, attemptID)
	if err != nil {
		return Attempt{}, err
	}
	if a.Status == StatusSubmitted {
		return a, nil
	}
	a.Status = StatusSubmitted
	a.SubmittedAt = time.Now().Unix()
	if _, err := tx.ExecContext(ctx, `UPDATE attempts SET status=$1, submitted_at=$2 WHERE id=$3`,
		a.Status, a.SubmittedAt, attemptID); err != nil {
		return Attempt{}, err
	}
	if err := s.events.AppendJSON(ctx, tx, syncx.EventAttemptSubmitted, attemptID, a); err != nil {
		return Attempt{}, err
	}
	if err := tx.Commit(); err != nil {
		return Attempt{}, err
	}
	return a, nil
}

func (s *SQLStore) ApplyAssignments(ctx context.Context, attemptID string, questionID int, changes []matching.Pair) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	a, err := getAttempt(ctx, tx, attemptID)
	if err != nil {
		return err
	}
	if a.Status == StatusSubmitted {
		return ErrAttemptSubmitted
	}

	now := time.Now().Unix()
	key := attemptID + ":" + strconv.Itoa(questionID)
	for _, ch := range changes {
		// seq keeps first-placement order for placed rows; a row going back to
		// the pool (category 0) takes a fresh seq so pool order is return order
		if _, err := tx.ExecContext(ctx, `INSERT INTO matching_assignments
			(attempt_id,question_id,option_id,category_id,seq,updated_at)
			VALUES ($1,$2,$3,$4,
			  (SELECT COALESCE(MAX(seq),0)+1 FROM matching_assignments WHERE attempt_id=$1 AND question_id=$2),
			  $5)
			ON CONFLICT (attempt_id,question_id,option_id)
			DO UPDATE SET category_id=EXCLUDED.category_id, updated_at=EXCLUDED.updated_at,
			  seq=CASE WHEN EXCLUDED.category_id=0 THEN EXCLUDED.seq ELSE matching_assignments.seq END`,
			attemptID, questionID, ch.OptionID, ch.CategoryID, now); err != nil {
			return err
		}
		payload := map[string]int{"question_id": questionID, "option_id": ch.OptionID, "category_id": ch.CategoryID}
		if err := s.events.AppendJSON(ctx, tx, syncx.EventAssignmentChanged, key, payload); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLStore) ListAssignments(ctx context.Context, attemptID string, questionID int) ([]matching.Pair, error) {
	if _, err := s.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT option_id, category_id FROM matching_assignments
		WHERE attempt_id=$1 AND question_id=$2 AND category_id<>0 ORDER BY seq`, attemptID, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []matching.Pair{}
	for rows.Next() {
		var p matching.Pair
		if err := rows.Scan(&p.OptionID, &p.CategoryID); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *SQLStore) ListPoolOrder(ctx context.Context, attemptID string, questionID int) ([]int, error) {
	if _, err := s.GetAttempt(ctx, attemptID); err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, `SELECT option_id FROM matching_assignments
		WHERE attempt_id=$1 AND question_id=$2 AND category_id=0 ORDER BY seq`, attemptID, questionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}
