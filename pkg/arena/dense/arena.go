// Package dense implements an arena engine that keeps values contiguous.
//
// Values live in a packed slice. A sparse arena of positions maps each key to
// the value's current position, and a parallel slice maps each position back
// to its key slot. Removal moves the last value into the hole, so iteration is
// a plain walk over len values regardless of how many slots were ever used.
//
// Iteration order is storage order, which changes whenever a removal swaps
// the last value into a hole.
package dense

import (
	"fmt"
	"iter"
	"slices"

	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/sparse"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Arena is a dense generational arena.
//
// Invariant: positions.Get(key.Index(keys[i])) == i for every position i.
type Arena[T any, V version.Version[V]] struct {
	positions *sparse.Arena[int, V]
	values    []T
	keys      []int
}

// New returns an empty, unbranded arena.
func New[T any, V version.Version[V]]() *Arena[T, V] {
	return WithIdentity[T, V](identity.Anonymous{})
}

// WithIdentity returns an empty arena whose keys are stamped with id.
func WithIdentity[T any, V version.Version[V]](id identity.Identity) *Arena[T, V] {
	return &Arena[T, V]{positions: sparse.WithIdentity[int, V](id)}
}

func (a *Arena[T, V]) Identity() identity.Identity { return a.positions.Identity() }
func (a *Arena[T, V]) Len() int                    { return len(a.values) }
func (a *Arena[T, V]) IsEmpty() bool               { return len(a.values) == 0 }

// Capacity is the number of values the arena can hold without growing.
func (a *Arena[T, V]) Capacity() int {
	return min(cap(a.values), cap(a.keys), a.positions.Capacity())
}

// Reserve makes room for at least additional more values in the packed
// slices and in the position table.
func (a *Arena[T, V]) Reserve(additional int) {
	a.values = slices.Grow(a.values, additional)
	a.keys = slices.Grow(a.keys, additional)
	a.positions.Reserve(additional)
}

// Clear drops every value and slot, versions included.
func (a *Arena[T, V]) Clear() {
	clear(a.values)
	a.values = a.values[:0]
	a.keys = a.keys[:0]
	a.positions.Clear()
}

// Slice returns the packed values in storage order. The slice aliases the
// arena and is invalidated by any insert or removal.
func (a *Arena[T, V]) Slice() []T {
	return a.values
}

// VacantEntry is a reserved slot that has not been filled yet.
type VacantEntry[T any, V version.Version[V]] struct {
	arena *Arena[T, V]
	entry sparse.VacantEntry[int, V]
}

// VacantEntry reserves the slot the next Insert would use.
func (a *Arena[T, V]) VacantEntry() VacantEntry[T, V] {
	return VacantEntry[T, V]{arena: a, entry: a.positions.VacantEntry()}
}

func (e VacantEntry[T, V]) Key() key.Key[V] { return e.entry.Key() }

// Insert appends value to the packed slice and commits the reserved slot.
func (e VacantEntry[T, V]) Insert(value T) key.Key[V] {
	a := e.arena

	k := e.entry.Insert(len(a.values))
	a.values = append(a.values, value)
	a.keys = append(a.keys, k.Index())

	return k
}

// Insert stores value and returns its key.
func (a *Arena[T, V]) Insert(value T) key.Key[V] {
	return a.VacantEntry().Insert(value)
}

func (a *Arena[T, V]) Contains(k key.Access[V]) bool {
	return a.positions.Contains(k)
}

// Get returns a copy of the value at k.
func (a *Arena[T, V]) Get(k key.Access[V]) (T, bool) {
	pos, ok := a.positions.Get(k)
	if !ok {
		var zero T

		return zero, false
	}

	return a.values[pos], true
}

// GetMut returns a pointer to the value at k, or nil. The pointer is
// invalidated by any insert or removal.
func (a *Arena[T, V]) GetMut(k key.Access[V]) *T {
	pos, ok := a.positions.Get(k)
	if !ok {
		return nil
	}

	return &a.values[pos]
}

// MustGet is like Get but panics if k is stale.
func (a *Arena[T, V]) MustGet(k key.Access[V]) T {
	pos, ok := a.positions.Get(k)
	if !ok {
		panic(fmt.Errorf("dense: get at index %d: %w", k.Index(), key.ErrStaleKey))
	}

	return a.values[pos]
}

// TryRemove removes and returns the value at k.
func (a *Arena[T, V]) TryRemove(k key.Access[V]) (T, bool) {
	pos, ok := a.positions.TryRemove(k)
	if !ok {
		var zero T

		return zero, false
	}

	return a.compact(pos), true
}

// Remove is like TryRemove but panics if k is stale.
func (a *Arena[T, V]) Remove(k key.Access[V]) T {
	value, ok := a.TryRemove(k)
	if !ok {
		panic(fmt.Errorf("dense: remove at index %d: %w", k.Index(), key.ErrStaleKey))
	}

	return value
}

// Delete removes the value at k and reports whether there was one.
func (a *Arena[T, V]) Delete(k key.Access[V]) bool {
	_, ok := a.TryRemove(k)

	return ok
}

// removePos empties the slot owning position pos and compacts.
func (a *Arena[T, V]) removePos(pos int) T {
	a.positions.Delete(key.Index[V](a.keys[pos]))

	return a.compact(pos)
}

// compact fills the hole at pos with the last value. The slot owning pos
// must already be removed from the position table.
func (a *Arena[T, V]) compact(pos int) T {
	last := len(a.values) - 1
	value := a.values[pos]

	if pos != last {
		a.values[pos] = a.values[last]
		a.keys[pos] = a.keys[last]
		*a.positions.GetMut(key.Index[V](a.keys[pos])) = pos
	}

	var zero T
	a.values[last] = zero
	a.values = a.values[:last]
	a.keys = a.keys[:last]

	return value
}

// DeleteAll removes every value but keeps slot versions, so existing keys
// become stale.
func (a *Arena[T, V]) DeleteAll() {
	for len(a.values) > 0 {
		a.removePos(len(a.values) - 1)
	}
}

// Retain removes every value for which keep returns false. Values are
// visited from the back of the packed slice.
func (a *Arena[T, V]) Retain(keep func(*T) bool) {
	for pos := len(a.values) - 1; pos >= 0; pos-- {
		if !keep(&a.values[pos]) {
			a.removePos(pos)
		}
	}
}

// ParseKey returns the key of the value in slot index, if it is occupied.
func (a *Arena[T, V]) ParseKey(index int) (key.Key[V], bool) {
	return a.positions.ParseKey(index)
}

// Drain removes values from the back of the packed slice and yields them.
// The arena is empty once the loop ends, including when it stops early.
func (a *Arena[T, V]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer a.DeleteAll()

		for len(a.values) > 0 {
			if !yield(a.removePos(len(a.values) - 1)) {
				return
			}
		}
	}
}

// DrainFilter removes the values for which remove returns true and yields
// them, walking the packed slice from the back. If the loop stops early the
// remaining matches are removed without being yielded. If remove panics, no
// further values are examined or removed.
func (a *Arena[T, V]) DrainFilter(remove func(*T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		pos := len(a.values) - 1
		inPredicate := false

		defer func() {
			if inPredicate {
				return
			}

			for ; pos >= 0; pos-- {
				if remove(&a.values[pos]) {
					a.removePos(pos)
				}
			}
		}()

		for ; pos >= 0; pos-- {
			inPredicate = true
			matched := remove(&a.values[pos])
			inPredicate = false

			if !matched {
				continue
			}

			if !yield(a.removePos(pos)) {
				pos--

				return
			}
		}
	}
}

// Stats summarizes the position table.
func (a *Arena[T, V]) Stats() arena.Stats {
	stats := a.positions.Stats()
	stats.Len = len(a.values)

	return stats
}

// Validate checks the position table and the key/position mapping in both
// directions.
func (a *Arena[T, V]) Validate() error {
	err := a.positions.Validate()
	if err != nil {
		return fmt.Errorf("dense: positions: %w", err)
	}

	if len(a.keys) != len(a.values) || a.positions.Len() != len(a.values) {
		return fmt.Errorf("%w: dense: %d values, %d keys, %d slots", arena.ErrCorrupt,
			len(a.values), len(a.keys), a.positions.Len())
	}

	for pos, slotIdx := range a.keys {
		got, ok := a.positions.Get(key.Index[V](slotIdx))
		if !ok || got != pos {
			return fmt.Errorf("%w: dense: position %d owned by slot %d which maps to %d", arena.ErrCorrupt, pos, slotIdx, got)
		}
	}

	for k, pos := range a.positions.All() {
		if *pos < 0 || *pos >= len(a.keys) || a.keys[*pos] != k.Index() {
			return fmt.Errorf("%w: dense: slot %d maps to position %d which is not its own", arena.ErrCorrupt, k.Index(), *pos)
		}
	}

	return nil
}
