// Package hop implements an arena engine whose vacant slots are kept as
// maximal runs in a doubly-linked list.
//
// Compared to the sparse engine, every removal coalesces the freed slot with
// its vacant neighbors, and iteration jumps over a whole run in one step.
// Iterating an arena that once held a million values but now holds ten costs
// roughly ten steps plus one per run, not a million.
//
// Slot 0 is a sentinel. It never holds a value and its free record is the
// root of the block list, so keys minted by this engine never have index 0.
//
// Slots whose version is exhausted are retired: they stay vacant forever,
// are not linked into any block and act as a wall between neighboring runs.
package hop

import (
	"fmt"
	"iter"
	"slices"

	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

type slot[T any, V version.Version[V]] struct {
	version V
	free    freeRecord
	value   T
}

// Arena is a hop generational arena.
//
// The zero value is not usable; construct with [New] or [WithIdentity].
type Arena[T any, V version.Version[V]] struct {
	slots   []slot[T, V]
	length  int
	retired int
	ident   identity.Identity
}

// New returns an empty, unbranded arena.
func New[T any, V version.Version[V]]() *Arena[T, V] {
	return WithIdentity[T, V](identity.Anonymous{})
}

// WithIdentity returns an empty arena whose keys are stamped with id.
func WithIdentity[T any, V version.Version[V]](id identity.Identity) *Arena[T, V] {
	if id == nil {
		id = identity.Anonymous{}
	}

	return &Arena[T, V]{slots: make([]slot[T, V], 1), ident: id}
}

func (a *Arena[T, V]) Identity() identity.Identity { return a.ident }
func (a *Arena[T, V]) Len() int                    { return a.length }
func (a *Arena[T, V]) IsEmpty() bool               { return a.length == 0 }

// Capacity is the number of values the arena can hold without growing.
func (a *Arena[T, V]) Capacity() int {
	return cap(a.slots) - 1 - a.retired
}

// Reserve makes room for at least additional more values.
func (a *Arena[T, V]) Reserve(additional int) {
	reusable := len(a.slots) - 1 - a.length - a.retired
	if grow := additional - reusable; grow > 0 {
		a.slots = slices.Grow(a.slots, grow)
	}
}

// Clear drops every slot, versions included. Keys issued before Clear must
// not be used afterwards.
func (a *Arena[T, V]) Clear() {
	clear(a.slots)
	a.slots = a.slots[:1]
	a.length = 0
	a.retired = 0
}

// VacantEntry is a reserved slot that has not been filled yet.
//
// The entry must be committed with Insert before the arena is modified
// again, and at most once.
type VacantEntry[T any, V version.Version[V]] struct {
	arena   *Arena[T, V]
	index   int
	prior   V
	version V
}

// VacantEntry reserves the slot the next Insert would use.
func (a *Arena[T, V]) VacantEntry() VacantEntry[T, V] {
	idx := a.vacantIndex()
	current := a.vacantVersion(idx)

	return VacantEntry[T, V]{arena: a, index: idx, prior: current, version: current.MarkFull()}
}

func (a *Arena[T, V]) vacantVersion(i int) V {
	var current V
	if i < len(a.slots) {
		current = a.slots[i].version
	}

	return current
}

// Key returns the key the committed value will have.
func (e VacantEntry[T, V]) Key() key.Key[V] {
	return key.New(e.index, e.version, e.arena.ident.Token())
}

// Insert stores value in the reserved slot.
func (e VacantEntry[T, V]) Insert(value T) key.Key[V] {
	a := e.arena
	if e.index != a.vacantIndex() || a.vacantVersion(e.index) != e.prior {
		panic("hop: vacant entry committed after the arena was modified")
	}

	if e.index == len(a.slots) {
		a.slots = append(a.slots, slot[T, V]{version: e.version, value: value})
	} else {
		a.unlinkFree(e.index)
		s := &a.slots[e.index]
		s.version = e.version
		s.value = value
	}

	a.length++

	return e.Key()
}

// Insert stores value and returns its key.
func (a *Arena[T, V]) Insert(value T) key.Key[V] {
	return a.VacantEntry().Insert(value)
}

func (a *Arena[T, V]) find(k key.Access[V]) (int, bool) {
	idx := k.Index()

	switch k.Validate(a.ident) {
	case key.Rejected:
		return 0, false
	case key.Checked:
		if idx < 0 || idx >= len(a.slots) {
			return 0, false
		}
	case key.Unchecked:
	}

	current := a.slots[idx].version
	if saved, ok := k.Saved(); ok {
		return idx, current.EqualsSaved(saved)
	}

	return idx, current.IsFull()
}

func (a *Arena[T, V]) Contains(k key.Access[V]) bool {
	_, ok := a.find(k)

	return ok
}

// Get returns a copy of the value at k.
func (a *Arena[T, V]) Get(k key.Access[V]) (T, bool) {
	idx, ok := a.find(k)
	if !ok {
		var zero T

		return zero, false
	}

	return a.slots[idx].value, true
}

// GetMut returns a pointer to the value at k, or nil. The pointer is
// invalidated by any operation that inserts into the arena.
func (a *Arena[T, V]) GetMut(k key.Access[V]) *T {
	idx, ok := a.find(k)
	if !ok {
		return nil
	}

	return &a.slots[idx].value
}

// MustGet is like Get but panics if k is stale.
func (a *Arena[T, V]) MustGet(k key.Access[V]) T {
	idx, ok := a.find(k)
	if !ok {
		panic(fmt.Errorf("hop: get at index %d: %w", k.Index(), key.ErrStaleKey))
	}

	return a.slots[idx].value
}

// TryRemove removes and returns the value at k.
func (a *Arena[T, V]) TryRemove(k key.Access[V]) (T, bool) {
	idx, ok := a.find(k)
	if !ok {
		var zero T

		return zero, false
	}

	return a.removeAt(idx), true
}

// Remove is like TryRemove but panics if k is stale.
func (a *Arena[T, V]) Remove(k key.Access[V]) T {
	idx, ok := a.find(k)
	if !ok {
		panic(fmt.Errorf("hop: remove at index %d: %w", k.Index(), key.ErrStaleKey))
	}

	return a.removeAt(idx)
}

// Delete removes the value at k and reports whether there was one.
func (a *Arena[T, V]) Delete(k key.Access[V]) bool {
	idx, ok := a.find(k)
	if ok {
		a.removeAt(idx)
	}

	return ok
}

func (a *Arena[T, V]) removeAt(idx int) T {
	s := &a.slots[idx]

	value := s.value

	var zero T
	s.value = zero

	next, reusable := s.version.MarkEmpty()
	s.version = next
	a.length--

	if !reusable {
		s.free = freeRecord{otherEnd: idx}
		a.retired++

		return value
	}

	a.linkFree(idx)

	return value
}

// DeleteAll removes every value but keeps the slots and their versions.
func (a *Arena[T, V]) DeleteAll() {
	for i := a.nextOccupied(0); i < len(a.slots); {
		next := a.nextOccupied(i + 1)
		a.removeAt(i)
		i = next
	}
}

// Retain removes every value for which keep returns false.
func (a *Arena[T, V]) Retain(keep func(*T) bool) {
	for i := a.nextOccupied(0); i < len(a.slots); {
		next := a.nextOccupied(i + 1)
		if !keep(&a.slots[i].value) {
			a.removeAt(i)
		}

		i = next
	}
}

// ParseKey returns the key of the value at index, if the slot is occupied.
func (a *Arena[T, V]) ParseKey(index int) (key.Key[V], bool) {
	if index <= 0 || index >= len(a.slots) || !a.slots[index].version.IsFull() {
		return key.Key[V]{}, false
	}

	return key.New(index, a.slots[index].version, a.ident.Token()), true
}

// Drain removes values in index order and yields them. The arena is empty
// once the loop ends, including when it stops early.
func (a *Arena[T, V]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer a.DeleteAll()

		for i := a.nextOccupied(0); i < len(a.slots); {
			next := a.nextOccupied(i + 1)
			value := a.removeAt(i)
			i = next

			if !yield(value) {
				return
			}
		}
	}
}

// DrainFilter removes the values for which remove returns true and yields
// them in index order. If the loop stops early the remaining matches are
// removed without being yielded. If remove panics, no further values are
// examined or removed.
func (a *Arena[T, V]) DrainFilter(remove func(*T) bool) iter.Seq[T] {
	return func(yield func(T) bool) {
		i := a.nextOccupied(0)
		inPredicate := false

		defer func() {
			if inPredicate {
				return
			}

			for i < len(a.slots) {
				next := a.nextOccupied(i + 1)
				if remove(&a.slots[i].value) {
					a.removeAt(i)
				}

				i = next
			}
		}()

		for i < len(a.slots) {
			inPredicate = true
			matched := remove(&a.slots[i].value)
			inPredicate = false

			next := a.nextOccupied(i + 1)
			if !matched {
				i = next

				continue
			}

			value := a.removeAt(i)
			i = next

			if !yield(value) {
				return
			}
		}
	}
}

// Stats summarizes the slot table. The sentinel is not counted.
func (a *Arena[T, V]) Stats() arena.Stats {
	blocks := 0
	if a.slots[0].free.otherEnd != 0 {
		blocks++
	}

	for n := a.slots[0].free.next; n != 0; n = a.slots[n].free.next {
		blocks++
	}

	return arena.Stats{
		Len:        a.length,
		Slots:      len(a.slots) - 1,
		Vacant:     len(a.slots) - 1 - a.length - a.retired,
		Retired:    a.retired,
		FreeBlocks: blocks,
	}
}

// FreeBlocks yields the bounds of every vacant run, sentinel excluded: first
// the run adjoining the sentinel, if any, then the linked runs in list order.
func (a *Arena[T, V]) FreeBlocks() iter.Seq2[int, int] {
	return func(yield func(lo, hi int) bool) {
		if hi := a.slots[0].free.otherEnd; hi != 0 && !yield(1, hi) {
			return
		}

		for n := a.slots[0].free.next; n != 0; n = a.slots[n].free.next {
			if !yield(n, a.slots[n].free.otherEnd) {
				return
			}
		}
	}
}
