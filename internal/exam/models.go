package exam

import (
	"fmt"

	"github.com/jinzhu/copier"

	"github.com/mind-engage/quizboard/internal/matching"
)

const (
	TypeMatching = "matching"

	StatusInProgress = "in_progress"
	StatusSubmitted  = "submitted"
)

type Question struct {
	ID         int     `json:"id"`
	Type       string  `json:"type"` // matching; other types are carried but not driven here
	PromptHTML string  `json:"prompt_html,omitempty"`
	Points     float64 `json:"points"`

	Categories []matching.Category `json:"categories,omitempty"`
	Options    []matching.Option   `json:"options,omitempty"`
}

type Attempt struct {
	ID          string `json:"id"`
	ExamID      string `json:"exam_id"`
	UserID      string `json:"user_id"`
	Status      string `json:"status"` // in_progress|submitted
	StartedAt   int64  `json:"started_at"`
	SubmittedAt int64  `json:"submitted_at,omitempty"`
}

type Exam struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	TimeLimitSec int        `json:"time_limit_sec"`
	Questions    []Question `json:"questions"`

	CreatedAt int64 `json:"created_at,omitempty"`
}

// Question returns the question with the given id.
func (e Exam) Question(id int) (Question, bool) {
	for _, q := range e.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// studentSafe deep-copies e and strips authoritative categories, so the
// stored exam is never aliased by what a student receives.
func studentSafe(e Exam) (Exam, error) {
	var out Exam
	if err := copier.CopyWithOption(&out, &e, copier.Option{DeepCopy: true}); err != nil {
		return Exam{}, fmt.Errorf("copy exam %s: %w", e.ID, err)
	}
	for i := range out.Questions {
		for j := range out.Questions[i].Options {
			out.Questions[i].Options[j].AuthoritativeCategoryID = nil
		}
	}
	return out, nil
}

// Validate checks what the engine needs to build a session from the exam.
func (e Exam) Validate() error {
	if e.ID == "" {
		return errValidation("id required")
	}
	seen := map[int]bool{}
	for _, q := range e.Questions {
		if seen[q.ID] {
			return errValidation("duplicate question id")
		}
		seen[q.ID] = true
		if q.Type != TypeMatching {
			continue
		}
		if _, err := matching.New(q.Options, q.Categories, nil); err != nil {
			return errValidation(err.Error())
		}
	}
	return nil
}
