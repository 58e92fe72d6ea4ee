// Package model provides a deliberately simple, in-memory state model of an
// arena's publicly observable behavior.
//
// The model does not choose slots: the engine under test does, and the model
// records the choice and checks it was legal (the slot was not occupied or
// retired). Occupancy and retirement are kept in roaring bitmaps so the
// expected vacant runs of any slot range can be derived with set algebra,
// independently of an engine's own free-list bookkeeping.
package model

import (
	"errors"
	"fmt"
	"iter"

	"github.com/RoaringBitmap/roaring/v2"
)

var (
	// ErrSlotOccupied is returned when an engine hands out a live slot.
	ErrSlotOccupied = errors.New("model: slot already occupied")

	// ErrSlotRetired is returned when an engine hands out a retired slot.
	ErrSlotRetired = errors.New("model: slot retired")
)

// Entry is a live value together with the generation of its key.
type Entry[T any] struct {
	Generation uint64
	Value      T
}

// Model tracks live entries by slot index.
type Model[T any] struct {
	live     map[int]Entry[T]
	occupied *roaring.Bitmap
	retired  *roaring.Bitmap
}

// New returns an empty model.
func New[T any]() *Model[T] {
	return &Model[T]{
		live:     make(map[int]Entry[T]),
		occupied: roaring.New(),
		retired:  roaring.New(),
	}
}

// Len returns the number of live entries.
func (m *Model[T]) Len() int {
	return int(m.occupied.GetCardinality())
}

// Insert records that the engine stored value at index under generation.
func (m *Model[T]) Insert(index int, generation uint64, value T) error {
	if m.occupied.Contains(uint32(index)) {
		return fmt.Errorf("%w: index %d", ErrSlotOccupied, index)
	}

	if m.retired.Contains(uint32(index)) {
		return fmt.Errorf("%w: index %d", ErrSlotRetired, index)
	}

	m.live[index] = Entry[T]{Generation: generation, Value: value}
	m.occupied.Add(uint32(index))

	return nil
}

// Lookup returns the value for a versioned key.
func (m *Model[T]) Lookup(index int, generation uint64) (T, bool) {
	entry, ok := m.live[index]
	if !ok || entry.Generation != generation {
		var zero T

		return zero, false
	}

	return entry.Value, true
}

// LookupRaw returns the value at index regardless of generation.
func (m *Model[T]) LookupRaw(index int) (T, bool) {
	entry, ok := m.live[index]

	return entry.Value, ok
}

// Remove deletes the entry for a versioned key.
func (m *Model[T]) Remove(index int, generation uint64) (T, bool) {
	value, ok := m.Lookup(index, generation)
	if ok {
		delete(m.live, index)
		m.occupied.Remove(uint32(index))
	}

	return value, ok
}

// Retire marks index as permanently unusable. Call it after Remove when the
// slot's version was exhausted.
func (m *Model[T]) Retire(index int) {
	m.retired.Add(uint32(index))
}

// Retired returns the number of retired slots.
func (m *Model[T]) Retired() int {
	return int(m.retired.GetCardinality())
}

// IsRetired reports whether index was retired.
func (m *Model[T]) IsRetired(index int) bool {
	return m.retired.Contains(uint32(index))
}

// Clear forgets every entry and retired slot, as an engine's Clear does.
func (m *Model[T]) Clear() {
	clear(m.live)
	m.occupied.Clear()
	m.retired.Clear()
}

// Entries yields live entries in ascending index order.
func (m *Model[T]) Entries() iter.Seq2[int, Entry[T]] {
	return func(yield func(int, Entry[T]) bool) {
		it := m.occupied.Iterator()
		for it.HasNext() {
			index := int(it.Next())
			if !yield(index, m.live[index]) {
				return
			}
		}
	}
}

// Indexes returns the live indexes in ascending order.
func (m *Model[T]) Indexes() []int {
	raw := m.occupied.ToArray()

	out := make([]int, len(raw))
	for i, v := range raw {
		out[i] = int(v)
	}

	return out
}

// Run is an inclusive range of vacant slot indexes.
type Run struct {
	Lo int
	Hi int
}

// FreeRuns returns the maximal runs of reusable vacant slots in [first, end),
// in ascending order.
func (m *Model[T]) FreeRuns(first, end int) []Run {
	if first >= end {
		return nil
	}

	free := roaring.New()
	free.AddRange(uint64(first), uint64(end))
	free.AndNot(m.occupied)
	free.AndNot(m.retired)

	var runs []Run

	it := free.Iterator()
	for it.HasNext() {
		v := int(it.Next())
		if n := len(runs); n > 0 && runs[n-1].Hi == v-1 {
			runs[n-1].Hi = v

			continue
		}

		runs = append(runs, Run{Lo: v, Hi: v})
	}

	return runs
}
