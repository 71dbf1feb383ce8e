package matching

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentifierRoundTrip(t *testing.T) {
	ids := []Identifier{
		PoolItem(10),
		PoolItem(0),
		SlotItem(11, 2),
		SlotItem(-4, 7),
		SlotTarget(3),
		PoolTarget(),
	}
	for _, id := range ids {
		enc := Encode(id)
		got, err := Decode(enc)
		require.NoError(t, err, enc)
		assert.Equal(t, id, got)
		assert.Equal(t, enc, Encode(got))
	}
}

func TestEncodeForms(t *testing.T) {
	assert.Equal(t, "pool:10", Encode(PoolItem(10)))
	assert.Equal(t, "slot:11:2", Encode(SlotItem(11, 2)))
	assert.Equal(t, "target:3", Encode(SlotTarget(3)))
	assert.Equal(t, "pool-container", Encode(PoolTarget()))
}

func TestDecodeRejectsMalformed(t *testing.T) {
	bad := []string{
		"",
		"pool",
		"pool:",
		"pool:abc",
		"pool:+1",
		"pool:007",
		"pool:1:2",
		"slot:1",
		"slot:1:",
		"slot::2",
		"slot:1:2:3",
		"target:",
		"target:x",
		"pool-container ",
		"POOL:1",
		"box:1",
	}
	for _, s := range bad {
		_, err := Decode(s)
		require.Error(t, err, s)
		assert.True(t, errors.Is(err, ErrInvalidIdentifier), s)
	}
}

func TestDraggable(t *testing.T) {
	assert.True(t, PoolItem(1).Draggable())
	assert.True(t, SlotItem(1, 2).Draggable())
	assert.False(t, SlotTarget(2).Draggable())
	assert.False(t, PoolTarget().Draggable())
}
