package version_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

func Test_Default_Starts_Empty_When_Zero(t *testing.T) {
	t.Parallel()

	var v version.Default

	assert.False(t, v.IsFull(), "zero version must be empty")
	assert.False(t, v.IsExhausted(), "zero version must not be exhausted")
	assert.Equal(t, uint64(0), v.Generation())
}

func Test_Default_Advances_By_Two_When_Cycled(t *testing.T) {
	t.Parallel()

	var v version.Default

	full := v.MarkFull()
	require.True(t, full.IsFull(), "MarkFull must set the occupied bit")

	empty, ok := full.MarkEmpty()
	require.True(t, ok, "first cycle must not exhaust")
	require.False(t, empty.IsFull())

	again := empty.MarkFull()
	assert.Equal(t, full.Generation()+2, again.Generation(), "a full cycle advances the counter by two")
	assert.False(t, again.EqualsSaved(full), "a saved version from a previous cycle must not match")
	assert.True(t, again.EqualsSaved(again))
}

func Test_Tiny_Exhausts_When_Cycled_127_Times(t *testing.T) {
	t.Parallel()

	var v version.Tiny

	cycles := 0

	for {
		v = v.MarkFull()
		cycles++

		next, ok := v.MarkEmpty()
		v = next

		if !ok {
			break
		}
	}

	assert.Equal(t, 127, cycles, "tiny versions allow 127 insert/remove cycles")
	assert.True(t, v.IsExhausted(), "slot must be exhausted after the last cycle")
	assert.False(t, v.IsFull(), "exhausted slot must be vacant")
}

func Test_Unversioned_Matches_Any_Saved_When_Full(t *testing.T) {
	t.Parallel()

	var v version.Unversioned

	assert.False(t, v.EqualsSaved(true), "empty slot never matches")

	full := v.MarkFull()
	assert.True(t, full.EqualsSaved(true))
	assert.True(t, full.EqualsSaved(false), "unversioned comparison degrades to occupancy")

	empty, ok := full.MarkEmpty()
	assert.True(t, ok, "unversioned slots never exhaust")
	assert.False(t, empty.IsExhausted())
}
