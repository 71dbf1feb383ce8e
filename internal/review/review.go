// Package review builds the read-only answer review of a submitted matching
// question. It never changes an assignment; correctness comes from each
// option's authoritative category.
package review

import (
	"slices"

	"github.com/mind-engage/quizboard/internal/matching"
)

// OptionView is an option as shown in the review, without its answer key.
type OptionView struct {
	ID    int    `json:"id"`
	Label string `json:"label"`
}

// CategoryResult is one row of the review.
type CategoryResult struct {
	CategoryID int          `json:"category_id"`
	Label      string       `json:"label"`
	Submitted  *OptionView  `json:"submitted,omitempty"`
	Expected   []OptionView `json:"expected"`
	Correct    bool         `json:"correct"`
}

// Result is the whole review for one question.
type Result struct {
	Categories []CategoryResult `json:"categories"`
	// Unused are options the user never placed.
	Unused []OptionView `json:"unused"`
	// UnusedExpected are unplaced options that did belong somewhere.
	UnusedExpected []OptionView `json:"unused_expected"`
	CorrectCount   int          `json:"correct_count"`
	Misplaced      int          `json:"misplaced"`
}

// Build lays the submitted pairs over the categories. Submitted pairs go
// through the same construction rules as a live session, so a malformed
// submission cannot show one option in two rows.
func Build(options []matching.Option, categories []matching.Category, submitted []matching.Pair) (Result, error) {
	st, err := matching.New(options, categories, submitted)
	if err != nil {
		return Result{}, err
	}

	expected := map[int][]OptionView{}
	for _, o := range st.Options() {
		if o.AuthoritativeCategoryID != nil {
			expected[*o.AuthoritativeCategoryID] = append(expected[*o.AuthoritativeCategoryID], view(o))
		}
	}

	var res Result
	for _, c := range st.Categories() {
		row := CategoryResult{
			CategoryID: c.ID,
			Label:      c.Label,
			Expected:   slices.Clone(expected[c.ID]),
		}
		if row.Expected == nil {
			row.Expected = []OptionView{}
		}
		if o, ok := st.Occupant(c.ID); ok {
			v := view(o)
			row.Submitted = &v
			row.Correct = o.AuthoritativeCategoryID != nil && *o.AuthoritativeCategoryID == c.ID
			if row.Correct {
				res.CorrectCount++
			} else {
				res.Misplaced++
			}
		}
		res.Categories = append(res.Categories, row)
	}

	res.Unused = []OptionView{}
	res.UnusedExpected = []OptionView{}
	for _, o := range st.Unassigned() {
		res.Unused = append(res.Unused, view(o))
		if o.AuthoritativeCategoryID != nil {
			res.UnusedExpected = append(res.UnusedExpected, view(o))
		}
	}
	return res, nil
}

func view(o matching.Option) OptionView { return OptionView{ID: o.ID, Label: o.Label} }
