package sparse

import (
	"iter"

	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Iter is a double-ended cursor over the occupied slots of an arena.
//
// The arena must not be modified while a cursor is in use, except through
// the pointers it yields.
type Iter[T any, V version.Version[V]] struct {
	arena     *Arena[T, V]
	front     int
	back      int
	remaining int
}

// Iter returns a cursor positioned before the first and after the last slot.
func (a *Arena[T, V]) Iter() *Iter[T, V] {
	return &Iter[T, V]{arena: a, back: len(a.slots), remaining: a.length}
}

// Len is the exact number of entries not yet yielded from either end.
func (it *Iter[T, V]) Len() int { return it.remaining }

// Next yields the lowest-indexed remaining entry.
func (it *Iter[T, V]) Next() (key.Key[V], *T, bool) {
	for it.remaining > 0 {
		idx := it.front
		it.front++

		if s := &it.arena.slots[idx]; s.version.IsFull() {
			it.remaining--

			return key.New(idx, s.version, it.arena.ident.Token()), &s.value, true
		}
	}

	return key.Key[V]{}, nil, false
}

// NextBack yields the highest-indexed remaining entry.
func (it *Iter[T, V]) NextBack() (key.Key[V], *T, bool) {
	for it.remaining > 0 {
		it.back--
		idx := it.back

		if s := &it.arena.slots[idx]; s.version.IsFull() {
			it.remaining--

			return key.New(idx, s.version, it.arena.ident.Token()), &s.value, true
		}
	}

	return key.Key[V]{}, nil, false
}

// All yields entries in ascending index order.
func (a *Arena[T, V]) All() iter.Seq2[key.Key[V], *T] {
	return func(yield func(key.Key[V], *T) bool) {
		it := a.Iter()
		for k, v, ok := it.Next(); ok; k, v, ok = it.Next() {
			if !yield(k, v) {
				return
			}
		}
	}
}

// Backward yields entries in descending index order.
func (a *Arena[T, V]) Backward() iter.Seq2[key.Key[V], *T] {
	return func(yield func(key.Key[V], *T) bool) {
		it := a.Iter()
		for k, v, ok := it.NextBack(); ok; k, v, ok = it.NextBack() {
			if !yield(k, v) {
				return
			}
		}
	}
}

func (a *Arena[T, V]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for _, v := range a.All() {
			if !yield(v) {
				return
			}
		}
	}
}

func (a *Arena[T, V]) Keys() iter.Seq[key.Key[V]] {
	return func(yield func(key.Key[V]) bool) {
		for k := range a.All() {
			if !yield(k) {
				return
			}
		}
	}
}
