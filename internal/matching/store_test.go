package matching

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureCategories() []Category {
	return []Category{
		{ID: 1, Label: "Mammals", DisplayOrder: 1},
		{ID: 2, Label: "Birds", DisplayOrder: 2},
		{ID: 3, Label: "Fish", DisplayOrder: 3},
	}
}

func fixtureOptions() []Option {
	return []Option{
		{ID: 10, Label: "Whale"},
		{ID: 11, Label: "Penguin"},
		{ID: 12, Label: "Salmon"},
	}
}

func newFixture(t *testing.T, existing ...Pair) State {
	t.Helper()
	s, err := New(fixtureOptions(), fixtureCategories(), existing)
	require.NoError(t, err)
	require.NoError(t, s.Validate())
	return s
}

func poolIDs(s State) []int {
	var out []int
	for _, o := range s.Unassigned() {
		out = append(out, o.ID)
	}
	return out
}

func occupantID(s State, cat int) int {
	if o, ok := s.Occupant(cat); ok {
		return o.ID
	}
	return 0
}

func TestNewPartitionsExistingAssignments(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 11, CategoryID: 3})
	assert.Equal(t, []int{10, 12}, poolIDs(s))
	assert.Equal(t, 11, occupantID(s, 3))
	assert.Empty(t, s.Rejected())
}

func TestNewSkipsConflictingPairs(t *testing.T) {
	s := newFixture(t,
		Pair{OptionID: 10, CategoryID: 1},
		Pair{OptionID: 10, CategoryID: 2}, // option already placed
		Pair{OptionID: 11, CategoryID: 1}, // slot already filled
		Pair{OptionID: 99, CategoryID: 3}, // unknown option
		Pair{OptionID: 12, CategoryID: 42},
		Pair{OptionID: 12, CategoryID: Unassigned},
	)
	assert.Equal(t, 10, occupantID(s, 1))
	assert.Equal(t, []int{11, 12}, poolIDs(s))
	assert.Len(t, s.Rejected(), 5)
}

func TestNewWithPoolOrder(t *testing.T) {
	// 12 and 10 were returned in that order; 11 never moved
	s, err := New(fixtureOptions(), fixtureCategories(), nil, WithPoolOrder([]int{12, 10}))
	require.NoError(t, err)
	assert.Equal(t, []int{11, 12, 10}, poolIDs(s))

	// placed and unknown ids in the saved order are ignored
	s, err = New(fixtureOptions(), fixtureCategories(), []Pair{{OptionID: 12, CategoryID: 1}}, WithPoolOrder([]int{12, 99, 10, 10}))
	require.NoError(t, err)
	assert.Equal(t, []int{11, 10}, poolIDs(s))
	require.NoError(t, s.Validate())
}

func TestNewPoolOrderMatchesLiveReturns(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1}, Pair{OptionID: 11, CategoryID: 2}, Pair{OptionID: 12, CategoryID: 3})
	s, _, err := s.ReturnToPool(12, 3)
	require.NoError(t, err)
	s, _, err = s.ReturnToPool(10, 1)
	require.NoError(t, err)

	rebuilt, err := New(fixtureOptions(), fixtureCategories(), s.Assignments(), WithPoolOrder(poolIDs(s)))
	require.NoError(t, err)
	assert.Equal(t, poolIDs(s), poolIDs(rebuilt))
}

func TestCategoriesSortExtremeDisplayOrder(t *testing.T) {
	cats := []Category{
		{ID: 1, DisplayOrder: math.MaxInt},
		{ID: 2, DisplayOrder: math.MinInt},
		{ID: 3, DisplayOrder: 0},
	}
	s, err := New(nil, cats, nil)
	require.NoError(t, err)
	var ids []int
	for _, c := range s.Categories() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{2, 3, 1}, ids)
}

func TestNewRejectsBadInput(t *testing.T) {
	_, err := New(fixtureOptions(), []Category{{ID: 0, Label: "zero"}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = New(fixtureOptions(), []Category{{ID: 1}, {ID: 1}}, nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = New([]Option{{ID: 1}, {ID: 1}}, fixtureCategories(), nil)
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestCategoriesSortedByDisplayOrderStable(t *testing.T) {
	cats := []Category{
		{ID: 5, DisplayOrder: 2},
		{ID: 6, DisplayOrder: 1},
		{ID: 7, DisplayOrder: 2},
		{ID: 8, DisplayOrder: 0},
	}
	s, err := New(nil, cats, nil)
	require.NoError(t, err)
	var ids []int
	for _, c := range s.Categories() {
		ids = append(ids, c.ID)
	}
	assert.Equal(t, []int{8, 6, 5, 7}, ids)
}

func TestScenarios(t *testing.T) {
	s := newFixture(t)

	// 1. pool 10 -> category 2
	s, ch, err := s.PlaceFromPool(10, 2)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{10, 2}}, ch)
	assert.Equal(t, []int{0, 10, 0}, []int{occupantID(s, 1), occupantID(s, 2), occupantID(s, 3)})
	assert.Equal(t, []int{11, 12}, poolIDs(s))

	// 2. pool 11 -> category 2 displaces 10
	s, ch, err = s.PlaceFromPool(11, 2)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{10, Unassigned}, {11, 2}}, ch)
	assert.Equal(t, 11, occupantID(s, 2))
	assert.Equal(t, []int{12, 10}, poolIDs(s))

	// 3. slot 2 -> empty category 3
	s, ch, err = s.MoveBetweenSlots(11, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{11, 3}}, ch)
	assert.Equal(t, []int{0, 0, 11}, []int{occupantID(s, 1), occupantID(s, 2), occupantID(s, 3)})

	// 4. pool 12 -> occupied category 3 is a displacement
	s, ch, err = s.PlaceFromPool(12, 3)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{11, Unassigned}, {12, 3}}, ch)
	assert.Equal(t, 12, occupantID(s, 3))
	assert.Equal(t, []int{10, 11}, poolIDs(s))
	require.NoError(t, s.Validate())
}

func TestPlaceFromPoolDisplacementTouchesOnlyTwoOptions(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1}, Pair{OptionID: 11, CategoryID: 2})
	next, ch, err := s.PlaceFromPool(12, 1)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{10, Unassigned}, {12, 1}}, ch)
	assert.Equal(t, 12, occupantID(next, 1))
	assert.Equal(t, 11, occupantID(next, 2))
	assert.Equal(t, []int{10}, poolIDs(next))

	// receiver untouched
	assert.Equal(t, 10, occupantID(s, 1))
	assert.Equal(t, []int{12}, poolIDs(s))
}

func TestPlaceFromPoolPreconditions(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1})
	_, _, err := s.PlaceFromPool(10, 2)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
	_, _, err = s.PlaceFromPool(11, 99)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
	_, _, err = s.PlaceFromPool(77, 1)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
}

func TestMoveBetweenSlotsSwapAndRoundTrip(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1}, Pair{OptionID: 11, CategoryID: 2})

	swapped, ch, err := s.MoveBetweenSlots(10, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{10, 2}, {11, 1}}, ch)
	assert.Equal(t, 11, occupantID(swapped, 1))
	assert.Equal(t, 10, occupantID(swapped, 2))
	assert.Equal(t, poolIDs(s), poolIDs(swapped))

	inB := occupantID(swapped, 2)
	back, _, err := swapped.MoveBetweenSlots(inB, 2, 1)
	require.NoError(t, err)
	assert.Equal(t, s, back)
}

func TestMoveBetweenSlotsSameCategoryIsNoOp(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1})
	next, ch, err := s.MoveBetweenSlots(10, 1, 1)
	require.NoError(t, err)
	assert.Empty(t, ch)
	assert.Equal(t, s, next)
}

func TestMoveBetweenSlotsPreconditions(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1})
	_, _, err := s.MoveBetweenSlots(10, 2, 3)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
	_, _, err = s.MoveBetweenSlots(11, 1, 2)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
	_, _, err = s.MoveBetweenSlots(10, 1, 99)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
}

func TestReturnToPoolAppends(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 10, CategoryID: 1})
	next, ch, err := s.ReturnToPool(10, 1)
	require.NoError(t, err)
	assert.Equal(t, []Pair{{10, Unassigned}}, ch)
	assert.Equal(t, []int{11, 12, 10}, poolIDs(next))
	_, occupied := next.Occupant(1)
	assert.False(t, occupied)

	_, _, err = next.ReturnToPool(10, 1)
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
}

func TestCategoryOf(t *testing.T) {
	s := newFixture(t, Pair{OptionID: 12, CategoryID: 3})
	cat, ok := s.CategoryOf(12)
	assert.True(t, ok)
	assert.Equal(t, 3, cat)
	cat, ok = s.CategoryOf(10)
	assert.True(t, ok)
	assert.Equal(t, Unassigned, cat)
	_, ok = s.CategoryOf(99)
	assert.False(t, ok)
}

func TestInvariantsHoldOverRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	cats := []int{1, 2, 3}
	opts := []int{10, 11, 12}
	s := newFixture(t)

	for i := 0; i < 2000; i++ {
		o := opts[rng.Intn(len(opts))]
		a := cats[rng.Intn(len(cats))]
		b := cats[rng.Intn(len(cats))]

		var next State
		var err error
		switch rng.Intn(4) {
		case 0:
			next, _, err = s.PlaceFromPool(o, a)
		case 1:
			next, _, err = s.MoveBetweenSlots(o, a, b)
		case 2:
			next, _, err = s.ReturnToPool(o, a)
		default:
			next, _, err = s.NoOp()
		}
		if err != nil {
			require.True(t, errors.Is(err, ErrPreconditionFailed), err)
			assert.Equal(t, s, next)
			continue
		}
		require.NoError(t, next.Validate(), "step %d", i)
		s = next
	}
}

func TestChangesReplayToSameAssignments(t *testing.T) {
	// A consumer applying each change as an upsert ends with the store's view.
	s := newFixture(t)
	consumer := map[int]int{}
	apply := func(ch []Pair) {
		for _, c := range ch {
			consumer[c.OptionID] = c.CategoryID
		}
	}
	var ch []Pair
	s, ch, _ = s.PlaceFromPool(10, 1)
	apply(ch)
	s, ch, _ = s.PlaceFromPool(11, 2)
	apply(ch)
	s, ch, _ = s.MoveBetweenSlots(10, 1, 2)
	apply(ch)
	s, ch, _ = s.PlaceFromPool(12, 1)
	apply(ch)
	s, ch, _ = s.ReturnToPool(10, 2)
	apply(ch)

	for _, o := range s.Options() {
		cat, _ := s.CategoryOf(o.ID)
		assert.Equal(t, cat, consumer[o.ID], "option %d", o.ID)
	}
}
