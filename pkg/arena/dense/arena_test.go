package dense_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/pkg/arena/dense"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

func Test_Remove_Moves_Last_Value_Into_Hole_When_Not_Last(t *testing.T) {
	t.Parallel()

	a := dense.New[string, version.Default]()
	ka := a.Insert("a")
	kb := a.Insert("b")
	kc := a.Insert("c")

	got := a.Remove(ka)
	require.Equal(t, "a", got)

	assert.Equal(t, []string{"c", "b"}, a.Slice(), "last value fills the hole")

	gotC, ok := a.Get(kc)
	require.True(t, ok, "moved value must stay reachable through its key")
	assert.Equal(t, "c", gotC)

	gotB, ok := a.Get(kb)
	require.True(t, ok)
	assert.Equal(t, "b", gotB)
	require.NoError(t, a.Validate())
}

func Test_Remove_Skips_Patch_When_Removing_Last_Value(t *testing.T) {
	t.Parallel()

	a := dense.New[int, version.Default]()
	k0 := a.Insert(0)
	k1 := a.Insert(1)

	assert.Equal(t, 1, a.Remove(k1))
	assert.Equal(t, []int{0}, a.Slice())
	assert.Equal(t, 0, a.MustGet(k0))
	require.NoError(t, a.Validate())

	assert.Equal(t, 0, a.Remove(k0))
	assert.True(t, a.IsEmpty())
	require.NoError(t, a.Validate())
}

func Test_Indirection_Holds_When_Many_Removals_Interleave(t *testing.T) {
	t.Parallel()

	a := dense.New[int, version.Default]()
	live := make(map[key.Key[version.Default]]int)

	for round := range 5 {
		for i := range 40 {
			v := round*100 + i
			live[a.Insert(v)] = v
		}

		n := 0
		for k := range live {
			if n%3 == 0 {
				require.Equal(t, live[k], a.Remove(k))
				delete(live, k)
			}
			n++
		}

		require.NoError(t, a.Validate(), "round %d", round)
	}

	require.Equal(t, len(live), a.Len())

	for k, v := range live {
		got, ok := a.Get(k)
		require.True(t, ok)
		require.Equal(t, v, got)
	}
}

func Test_Retain_Visits_Every_Value_Once_When_Removing(t *testing.T) {
	t.Parallel()

	a := dense.New[int, version.Default]()
	for i := range 20 {
		a.Insert(i)
	}

	visits := make(map[int]int)
	a.Retain(func(v *int) bool {
		visits[*v]++

		return *v%4 == 0
	})

	assert.Len(t, visits, 20)

	for v, n := range visits {
		assert.Equal(t, 1, n, "value %d visited %d times", v, n)
	}

	assert.Equal(t, 5, a.Len())
	require.NoError(t, a.Validate())
}

func Test_Reserve_Grows_Values_And_Positions_In_Lockstep(t *testing.T) {
	t.Parallel()

	a := dense.New[int, version.Default]()
	a.Reserve(64)

	assert.GreaterOrEqual(t, a.Capacity(), 64)
}

func Test_Keys_Follow_Storage_Order_When_Iterated(t *testing.T) {
	t.Parallel()

	a := dense.New[int, version.Default]()
	k0 := a.Insert(0)
	a.Insert(1)
	k2 := a.Insert(2)

	a.Remove(k0)

	var keys []key.Key[version.Default]
	for k := range a.Keys() {
		keys = append(keys, k)
	}

	require.Len(t, keys, 2)
	assert.Equal(t, k2, keys[0], "last key moved to the front")

	it := a.Iter()
	k, v, ok := it.NextBack()
	require.True(t, ok)
	assert.Equal(t, 1, *v)
	assert.Equal(t, k, keys[1])
	assert.Equal(t, 1, it.Len())
}
