// Package sparse implements the simplest arena engine: a slice of slots with
// a singly-linked free list threaded through the vacant ones.
//
// Insertion reuses the most recently freed slot first and only grows the
// slice when the free list is empty. Iteration scans every slot, so its cost
// is proportional to the highest index ever used, not to Len.
package sparse

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
	// next links vacant slots. len(slots) terminates the list.
	next  int
	value T
}

// Arena is a sparse generational arena.
//
// The zero value is not usable; construct with [New] or [WithIdentity].
type Arena[T any, V version.Version[V]] struct {
	slots   []slot[T, V]
	next    int
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

	return &Arena[T, V]{ident: id}
}

func (a *Arena[T, V]) Identity() identity.Identity { return a.ident }
func (a *Arena[T, V]) Len() int                    { return a.length }
func (a *Arena[T, V]) IsEmpty() bool               { return a.length == 0 }

// Capacity is the number of values the arena can hold without growing.
func (a *Arena[T, V]) Capacity() int {
	return cap(a.slots) - a.retired
}

// Reserve makes room for at least additional more values. Vacant slots count
// towards the reservation.
func (a *Arena[T, V]) Reserve(additional int) {
	reusable := len(a.slots) - a.length - a.retired
	if grow := additional - reusable; grow > 0 {
		a.slots = slices.Grow(a.slots, grow)
	}
}

// Clear drops every slot, versions included. Keys issued before Clear must
// not be used afterwards: they may resolve to new values.
func (a *Arena[T, V]) Clear() {
	clear(a.slots)
	a.slots = a.slots[:0]
	a.next = 0
	a.length = 0
	a.retired = 0
}

// VacantEntry is a reserved slot that has not been filled yet. Its key is
// known before the value is stored, so values can embed their own key.
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
	current := a.vacantVersion(a.next)

	return VacantEntry[T, V]{arena: a, index: a.next, prior: current, version: current.MarkFull()}
}

// vacantVersion is the version of vacant slot i, or EMPTY for the slot one
// past the end.
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
	// An insert and removal in between hands back the same index with a
	// newer version.
	if e.index != a.next || a.vacantVersion(e.index) != e.prior {
		panic("sparse: vacant entry committed after the arena was modified")
	}

	if e.index == len(a.slots) {
		a.slots = append(a.slots, slot[T, V]{version: e.version, value: value})
		a.next = len(a.slots)
	} else {
		s := &a.slots[e.index]
		a.next = s.next
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

// find resolves k to a live slot index.
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
		panic(fmt.Errorf("sparse: get at index %d: %w", k.Index(), key.ErrStaleKey))
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
		panic(fmt.Errorf("sparse: remove at index %d: %w", k.Index(), key.ErrStaleKey))
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

// RemoveAt empties the occupied slot idx. The caller must have checked
// occupancy.
func (a *Arena[T, V]) removeAt(idx int) T {
	s := &a.slots[idx]

	value := s.value

	var zero T
	s.value = zero

	next, reusable := s.version.MarkEmpty()
	s.version = next
	a.length--

	if reusable {
		s.next = a.next
		a.next = idx
	} else {
		a.retired++
	}

	return value
}

// DeleteAll removes every value but keeps the slots and their versions, so
// existing keys become stale rather than ambiguous.
func (a *Arena[T, V]) DeleteAll() {
	for i := range a.slots {
		if a.length == 0 {
			return
		}

		if a.slots[i].version.IsFull() {
			a.removeAt(i)
		}
	}
}

// Retain removes every value for which keep returns false.
func (a *Arena[T, V]) Retain(keep func(*T) bool) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.version.IsFull() && !keep(&s.value) {
			a.removeAt(i)
		}
	}
}

// ParseKey returns the key of the value at index, if the slot is occupied.
func (a *Arena[T, V]) ParseKey(index int) (key.Key[V], bool) {
	if index < 0 || index >= len(a.slots) || !a.slots[index].version.IsFull() {
		return key.Key[V]{}, false
	}

	return key.New(index, a.slots[index].version, a.ident.Token()), true
}

// Drain removes values in index order and yields them. The arena is empty
// once the loop ends, including when it stops early.
func (a *Arena[T, V]) Drain() iter.Seq[T] {
	return func(yield func(T) bool) {
		defer a.DeleteAll()

		for i := range a.slots {
			if !a.slots[i].version.IsFull() {
				continue
			}

			if !yield(a.removeAt(i)) {
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
		i := 0
		inPredicate := false

		defer func() {
			if inPredicate {
				return
			}

			for ; i < len(a.slots); i++ {
				s := &a.slots[i]
				if s.version.IsFull() && remove(&s.value) {
					a.removeAt(i)
				}
			}
		}()

		for ; i < len(a.slots); i++ {
			s := &a.slots[i]
			if !s.version.IsFull() {
				continue
			}

			inPredicate = true
			matched := remove(&s.value)
			inPredicate = false

			if !matched {
				continue
			}

			if !yield(a.removeAt(i)) {
				i++

				return
			}
		}
	}
}

// Stats summarizes the slot table.
func (a *Arena[T, V]) Stats() arena.Stats {
	return arena.Stats{
		Len:     a.length,
		Slots:   len(a.slots),
		Vacant:  len(a.slots) - a.length - a.retired,
		Retired: a.retired,
	}
}

// Validate walks the free list and recounts occupancy.
func (a *Arena[T, V]) Validate() error {
	full, exhausted := 0, 0

	for i := range a.slots {
		switch v := a.slots[i].version; {
		case v.IsFull():
			full++
		case v.IsExhausted():
			exhausted++
		}
	}

	if full != a.length {
		return fmt.Errorf("%w: sparse: len is %d but %d slots are full", arena.ErrCorrupt, a.length, full)
	}

	if exhausted != a.retired {
		return fmt.Errorf("%w: sparse: %d retired but %d slots exhausted", arena.ErrCorrupt, a.retired, exhausted)
	}

	visited := make([]bool, len(a.slots))
	linked := 0

	for n := a.next; n != len(a.slots); n = a.slots[n].next {
		if n < 0 || n > len(a.slots) {
			return fmt.Errorf("%w: sparse: free list points out of range at %d", arena.ErrCorrupt, n)
		}

		if visited[n] {
			return fmt.Errorf("%w: sparse: free list cycles at %d", arena.ErrCorrupt, n)
		}

		v := a.slots[n].version
		if v.IsFull() || v.IsExhausted() {
			return fmt.Errorf("%w: sparse: free list visits unusable slot %d", arena.ErrCorrupt, n)
		}

		visited[n] = true
		linked++
	}

	if vacant := len(a.slots) - full - exhausted; linked != vacant {
		return fmt.Errorf("%w: sparse: free list links %d of %d vacant slots", arena.ErrCorrupt, linked, vacant)
	}

	return nil
}
