package hop

import (
	"iter"

	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Iter is a double-ended cursor over the occupied slots of an arena. Each
// step skips a whole vacant run at once.
//
// The arena must not be modified while a cursor is in use, except through
// the pointers it yields.
type Iter[T any, V version.Version[V]] struct {
	arena     *Arena[T, V]
	front     int
	back      int
	remaining int
}

func (a *Arena[T, V]) Iter() *Iter[T, V] {
	return &Iter[T, V]{arena: a, back: len(a.slots), remaining: a.length}
}

// Len is the exact number of entries not yet yielded from either end.
func (it *Iter[T, V]) Len() int { return it.remaining }

func (it *Iter[T, V]) Next() (key.Key[V], *T, bool) {
	if it.remaining == 0 {
		return key.Key[V]{}, nil, false
	}

	idx := it.arena.nextOccupied(it.front)
	it.front = idx + 1
	it.remaining--

	return it.arena.entry(idx)
}

func (it *Iter[T, V]) NextBack() (key.Key[V], *T, bool) {
	if it.remaining == 0 {
		return key.Key[V]{}, nil, false
	}

	idx := it.arena.prevOccupied(it.back)
	it.back = idx
	it.remaining--

	return it.arena.entry(idx)
}

func (a *Arena[T, V]) entry(idx int) (key.Key[V], *T, bool) {
	s := &a.slots[idx]

	return key.New(idx, s.version, a.ident.Token()), &s.value, true
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
