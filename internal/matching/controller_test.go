package matching

import (
	"bytes"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	question, option, category int
}

type recorder struct{ calls []recorded }

func (r *recorder) OnAssignmentChange(questionID, optionID, categoryID int) {
	r.calls = append(r.calls, recorded{questionID, optionID, categoryID})
}

func newController(t *testing.T, existing ...Pair) (*Controller, *recorder) {
	t.Helper()
	rec := &recorder{}
	return NewController(7, newFixture(t, existing...), WithNotifier(rec)), rec
}

func TestControllerPhases(t *testing.T) {
	c, _ := newController(t)
	assert.Equal(t, Idle, c.Phase())
	require.NoError(t, c.DragStart("pool:10"))
	assert.Equal(t, Dragging, c.Phase())
	dragged, ok := c.Dragged()
	require.True(t, ok)
	assert.Equal(t, "Whale", dragged.Label)

	c.DragEnd("")
	assert.Equal(t, Idle, c.Phase())
	_, ok = c.Dragged()
	assert.False(t, ok)
}

func TestControllerPlaceFromPoolNotifies(t *testing.T) {
	c, rec := newController(t)
	res, err := c.Drag("pool:10", "target:2")
	require.NoError(t, err)
	assert.Equal(t, TransitionPlace, res.Transition)
	assert.Equal(t, []recorded{{7, 10, 2}}, rec.calls)
	assert.Equal(t, 10, occupantID(c.State(), 2))
}

func TestControllerDisplacementNotifiesVacateFirst(t *testing.T) {
	c, rec := newController(t, Pair{OptionID: 10, CategoryID: 2})
	res, err := c.Drag("pool:11", "target:2")
	require.NoError(t, err)
	assert.Equal(t, TransitionPlace, res.Transition)
	assert.Equal(t, []recorded{{7, 10, Unassigned}, {7, 11, 2}}, rec.calls)
	assert.Equal(t, []int{12, 10}, poolIDs(c.State()))
}

func TestControllerSwapNotifiesExactlyTwo(t *testing.T) {
	c, rec := newController(t, Pair{OptionID: 10, CategoryID: 1}, Pair{OptionID: 11, CategoryID: 2})
	res, err := c.Drag("slot:10:1", "target:2")
	require.NoError(t, err)
	assert.Equal(t, TransitionMove, res.Transition)
	assert.Equal(t, []recorded{{7, 10, 2}, {7, 11, 1}}, rec.calls)
}

func TestControllerReturnToPool(t *testing.T) {
	c, rec := newController(t, Pair{OptionID: 12, CategoryID: 3})
	res, err := c.Drag("slot:12:3", PoolContainerID)
	require.NoError(t, err)
	assert.Equal(t, TransitionReturn, res.Transition)
	assert.Equal(t, []recorded{{7, 12, Unassigned}}, rec.calls)
	assert.Equal(t, []int{10, 11, 12}, poolIDs(c.State()))
}

func TestControllerNoOps(t *testing.T) {
	cases := []struct {
		name        string
		source, dst string
	}{
		{"released outside", "pool:10", ""},
		{"own slot", "slot:10:1", "target:1"},
		{"pool item onto pool", "pool:11", PoolContainerID},
		{"onto an item", "pool:11", "slot:10:1"},
		{"garbage destination", "pool:11", "nowhere"},
		{"stale slot source", "slot:11:2", "target:3"},
		{"stale pool source", "pool:10", "target:2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, rec := newController(t, Pair{OptionID: 10, CategoryID: 1})
			before := c.State()
			res, err := c.Drag(tc.source, tc.dst)
			require.NoError(t, err)
			assert.Equal(t, TransitionNone, res.Transition)
			assert.Empty(t, res.Changes)
			assert.Empty(t, rec.calls)
			assert.Equal(t, before, c.State())
			assert.Equal(t, Idle, c.Phase())
		})
	}
}

func TestControllerDragStartRejectsTargetsAndGarbage(t *testing.T) {
	var buf bytes.Buffer
	c := NewController(1, newFixture(t), WithLogger(zerolog.New(&buf)))

	err := c.DragStart("target:1")
	assert.True(t, errors.Is(err, ErrPreconditionFailed))
	assert.Equal(t, Idle, c.Phase())

	err = c.DragStart("pool:99")
	assert.True(t, errors.Is(err, ErrPreconditionFailed))

	err = c.DragStart("???")
	assert.True(t, errors.Is(err, ErrInvalidIdentifier))
	assert.Contains(t, buf.String(), "undecodable source")
}

func TestControllerDragEndWhileIdle(t *testing.T) {
	c, rec := newController(t)
	res := c.DragEnd("target:1")
	assert.Equal(t, TransitionNone, res.Transition)
	assert.Empty(t, rec.calls)
}

func TestControllerCancel(t *testing.T) {
	c, rec := newController(t)
	require.NoError(t, c.DragStart("pool:10"))
	c.Cancel()
	res := c.DragEnd("target:1")
	assert.Equal(t, TransitionNone, res.Transition)
	assert.Empty(t, rec.calls)
}

func TestControllerSequentialScenario(t *testing.T) {
	c, rec := newController(t)
	steps := [][2]string{
		{"pool:10", "target:2"},
		{"pool:11", "target:2"},
		{"slot:11:2", "target:3"},
		{"pool:12", "target:3"},
		{"pool:10", ""},
	}
	for _, st := range steps {
		_, err := c.Drag(st[0], st[1])
		require.NoError(t, err)
		require.NoError(t, c.State().Validate())
	}
	assert.Equal(t, []recorded{
		{7, 10, 2},
		{7, 10, Unassigned}, {7, 11, 2},
		{7, 11, 3},
		{7, 11, Unassigned}, {7, 12, 3},
	}, rec.calls)
	assert.Equal(t, []int{10, 11}, poolIDs(c.State()))
}

func TestNotifierFunc(t *testing.T) {
	var got []int
	c := NewController(3, newFixture(t), WithNotifier(NotifierFunc(func(q, o, cat int) {
		got = append(got, q, o, cat)
	})))
	_, err := c.Drag("pool:12", "target:1")
	require.NoError(t, err)
	assert.Equal(t, []int{3, 12, 1}, got)
}
