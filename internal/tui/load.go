package tui

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mind-engage/quizboard/internal/exam"
	"github.com/mind-engage/quizboard/internal/matching"
)

// ReadQuestion decodes a single matching question.
func ReadQuestion(r io.Reader) (exam.Question, error) {
	var q exam.Question
	if err := json.NewDecoder(r).Decode(&q); err != nil {
		return exam.Question{}, fmt.Errorf("decode question: %w", err)
	}
	if q.Type == "" {
		q.Type = exam.TypeMatching
	}
	if q.Type != exam.TypeMatching {
		return exam.Question{}, exam.ErrNotMatching
	}
	return q, nil
}

func ReadAssignments(r io.Reader) ([]matching.Pair, error) {
	var pairs []matching.Pair
	if err := json.NewDecoder(r).Decode(&pairs); err != nil {
		return nil, fmt.Errorf("decode assignments: %w", err)
	}
	return pairs, nil
}

func WriteAssignments(w io.Writer, pairs []matching.Pair) error {
	if pairs == nil {
		pairs = []matching.Pair{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(pairs)
}
