package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/quizboard/internal/matching"
)

func intp(v int) *int { return &v }

func TestBuildMarksRows(t *testing.T) {
	cats := []matching.Category{
		{ID: 1, Label: "Mammals", DisplayOrder: 1},
		{ID: 2, Label: "Birds", DisplayOrder: 2},
		{ID: 3, Label: "Fish", DisplayOrder: 3},
	}
	opts := []matching.Option{
		{ID: 10, Label: "Whale", AuthoritativeCategoryID: intp(1)},
		{ID: 11, Label: "Penguin", AuthoritativeCategoryID: intp(2)},
		{ID: 12, Label: "Salmon", AuthoritativeCategoryID: intp(3)},
		{ID: 13, Label: "Rock"},
	}
	res, err := Build(opts, cats, []matching.Pair{
		{OptionID: 10, CategoryID: 1},
		{OptionID: 12, CategoryID: 2},
	})
	require.NoError(t, err)
	require.Len(t, res.Categories, 3)

	assert.True(t, res.Categories[0].Correct)
	assert.Equal(t, "Whale", res.Categories[0].Submitted.Label)

	assert.False(t, res.Categories[1].Correct)
	assert.Equal(t, 12, res.Categories[1].Submitted.ID)
	assert.Equal(t, []OptionView{{ID: 11, Label: "Penguin"}}, res.Categories[1].Expected)

	assert.Nil(t, res.Categories[2].Submitted)
	assert.False(t, res.Categories[2].Correct)

	assert.Equal(t, []OptionView{{ID: 11, Label: "Penguin"}, {ID: 13, Label: "Rock"}}, res.Unused)
	assert.Equal(t, []OptionView{{ID: 11, Label: "Penguin"}}, res.UnusedExpected)
	assert.Equal(t, 1, res.CorrectCount)
	assert.Equal(t, 1, res.Misplaced)
}

func TestBuildIgnoresConflictingSubmission(t *testing.T) {
	cats := []matching.Category{{ID: 1, Label: "A"}, {ID: 2, Label: "B"}}
	opts := []matching.Option{{ID: 5, Label: "x", AuthoritativeCategoryID: intp(2)}}
	res, err := Build(opts, cats, []matching.Pair{
		{OptionID: 5, CategoryID: 2},
		{OptionID: 5, CategoryID: 1},
	})
	require.NoError(t, err)
	assert.Nil(t, res.Categories[0].Submitted)
	assert.True(t, res.Categories[1].Correct)
	assert.Empty(t, res.Unused)
}
