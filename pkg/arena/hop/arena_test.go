package hop_test

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/pkg/arena/hop"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/model"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

func collectBlocks[T any, V version.Version[V]](a *hop.Arena[T, V]) []model.Run {
	var runs []model.Run
	for lo, hi := range a.FreeBlocks() {
		runs = append(runs, model.Run{Lo: lo, Hi: hi})
	}

	slices.SortFunc(runs, func(x, y model.Run) int { return x.Lo - y.Lo })

	return runs
}

func Test_Iteration_Skips_Vacant_Runs_When_Compared_To_Model(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()
	m := model.New[int]()

	keys := make([]key.Key[version.Default], 0, 1000)

	for i := range 1000 {
		k := a.Insert(i)
		keys = append(keys, k)
		require.NoError(t, m.Insert(k.Index(), k.Version().Generation(), i))
	}

	for i, k := range keys {
		if i%2 == 0 || i%11 == 0 {
			a.Remove(k)
			_, ok := m.Remove(k.Index(), k.Version().Generation())
			require.True(t, ok)
		}
	}

	require.NoError(t, a.Validate())
	require.Equal(t, m.Len(), a.Len())

	var forward []int
	for k, v := range a.All() {
		forward = append(forward, k.Index())

		expected, ok := m.Lookup(k.Index(), k.Version().Generation())
		require.True(t, ok, "iterated key %v must be live in the model", k)
		require.Equal(t, expected, *v)
	}

	assert.Empty(t, cmp.Diff(m.Indexes(), forward), "forward iteration mismatch")

	var backward []int
	for k := range a.Backward() {
		backward = append(backward, k.Index())
	}

	slices.Reverse(backward)
	assert.Empty(t, cmp.Diff(m.Indexes(), backward), "backward iteration mismatch")

	slotLen := a.Stats().Slots + 1
	assert.Empty(t, cmp.Diff(m.FreeRuns(1, slotLen), collectBlocks(a)), "free block structure mismatch")
}

func Test_Remove_Joins_Blocks_When_Both_Neighbors_Vacant(t *testing.T) {
	t.Parallel()

	a := hop.New[string, version.Default]()

	keys := make([]key.Key[version.Default], 0, 5)
	for _, v := range []string{"a", "b", "c", "d", "e"} {
		keys = append(keys, a.Insert(v))
	}

	require.Equal(t, 1, keys[0].Index(), "index 0 is the sentinel")

	a.Remove(keys[1])
	a.Remove(keys[3])
	assert.Equal(t, 2, a.Stats().FreeBlocks)

	a.Remove(keys[2])
	require.NoError(t, a.Validate())
	assert.Empty(t, cmp.Diff([]model.Run{{Lo: 2, Hi: 4}}, collectBlocks(a)))

	k := a.Insert("x")
	assert.Equal(t, 2, k.Index(), "insert takes the low end of the first block")
	assert.Empty(t, cmp.Diff([]model.Run{{Lo: 3, Hi: 4}}, collectBlocks(a)))
	require.NoError(t, a.Validate())
}

func Test_Remove_Extends_Sentinel_Block_When_Freeing_Index_One(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()
	k1 := a.Insert(1)
	k2 := a.Insert(2)
	a.Insert(3)

	a.Remove(k2)
	a.Remove(k1)

	require.NoError(t, a.Validate())
	assert.Empty(t, cmp.Diff([]model.Run{{Lo: 1, Hi: 2}}, collectBlocks(a)))

	again := a.Insert(4)
	assert.Equal(t, 2, again.Index(), "sentinel block is consumed from its high end")
	require.NoError(t, a.Validate())
}

func Test_Slot_Is_Retired_When_Tiny_Version_Exhausted(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Tiny]()
	left := a.Insert(0)
	k := a.Insert(0)
	right := a.Insert(0)

	require.Equal(t, 2, k.Index())

	for cycle := 1; cycle <= 127; cycle++ {
		a.Remove(k)

		if cycle < 127 {
			k = a.Insert(cycle)
			require.Equal(t, 2, k.Index(), "cycle %d must reuse the slot", cycle)
		}
	}

	assert.Equal(t, 1, a.Stats().Retired)
	assert.False(t, a.Contains(k), "key of an exhausted slot must be stale")

	fresh := a.Insert(99)
	assert.Equal(t, 4, fresh.Index(), "retired slot must not be reused")

	a.Remove(left)
	a.Remove(right)
	require.NoError(t, a.Validate())

	expected := []model.Run{{Lo: 1, Hi: 1}, {Lo: 3, Hi: 3}}
	assert.Empty(t, cmp.Diff(expected, collectBlocks(a)), "retired slot must separate runs")
}

func Test_Iter_Yields_Each_Entry_Once_When_Alternating_Ends(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()
	keys := make([]key.Key[version.Default], 0, 50)

	for i := range 50 {
		keys = append(keys, a.Insert(i))
	}

	for i, k := range keys {
		if i%3 != 0 {
			a.Remove(k)
		}
	}

	it := a.Iter()
	total := it.Len()
	seen := make(map[int]bool)

	for step := 0; ; step++ {
		var (
			v  *int
			ok bool
		)

		if step%2 == 0 {
			_, v, ok = it.Next()
		} else {
			_, v, ok = it.NextBack()
		}

		if !ok {
			break
		}

		require.False(t, seen[*v], "value %d yielded twice", *v)
		seen[*v] = true
		require.Equal(t, total-len(seen), it.Len())
	}

	assert.Len(t, seen, a.Len())
}

func Test_Retain_Keeps_Structure_Valid_When_Removing_Runs(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()
	for i := range 100 {
		a.Insert(i)
	}

	a.Retain(func(v *int) bool { return (*v/7)%2 == 0 })

	require.NoError(t, a.Validate())

	count := 0
	for v := range a.Values() {
		require.Zero(t, (*v/7)%2)
		count++
	}

	assert.Equal(t, a.Len(), count)
}

func Test_DrainFilter_Skips_Coalesced_Runs_When_Removing(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()
	for i := range 30 {
		a.Insert(i)
	}

	var drained []int
	for v := range a.DrainFilter(func(v *int) bool { return *v%2 == 1 }) {
		drained = append(drained, v)
	}

	require.Len(t, drained, 15)
	assert.True(t, slices.IsSorted(drained), "drain filter yields in index order")
	require.NoError(t, a.Validate())
	assert.Equal(t, 15, a.Len())
}

func Test_Stats_Counts_Run_Adjoining_Sentinel_When_First_Slot_Vacant(t *testing.T) {
	t.Parallel()

	a := hop.New[int, version.Default]()

	keys := make([]key.Key[version.Default], 0, 4)
	for i := range 4 {
		keys = append(keys, a.Insert(i))
	}

	a.Remove(keys[0])
	a.Remove(keys[2])

	blocks := collectBlocks(a)
	assert.Empty(t, cmp.Diff([]model.Run{{Lo: 1, Hi: 1}, {Lo: 3, Hi: 3}}, blocks))
	assert.Equal(t, len(blocks), a.Stats().FreeBlocks)
	require.NoError(t, a.Validate())
}
