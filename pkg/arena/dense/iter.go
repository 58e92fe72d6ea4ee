package dense

import (
	"iter"

	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Iter is a double-ended cursor over the packed values, in storage order.
type Iter[T any, V version.Version[V]] struct {
	arena *Arena[T, V]
	front int
	back  int
}

func (a *Arena[T, V]) Iter() *Iter[T, V] {
	return &Iter[T, V]{arena: a, back: len(a.values)}
}

func (it *Iter[T, V]) Len() int { return it.back - it.front }

func (it *Iter[T, V]) Next() (key.Key[V], *T, bool) {
	if it.front >= it.back {
		return key.Key[V]{}, nil, false
	}

	pos := it.front
	it.front++

	return it.arena.entry(pos)
}

func (it *Iter[T, V]) NextBack() (key.Key[V], *T, bool) {
	if it.front >= it.back {
		return key.Key[V]{}, nil, false
	}

	it.back--

	return it.arena.entry(it.back)
}

func (a *Arena[T, V]) entry(pos int) (key.Key[V], *T, bool) {
	return a.entryKey(pos), &a.values[pos], true
}

// All yields entries in storage order.
func (a *Arena[T, V]) All() iter.Seq2[key.Key[V], *T] {
	return func(yield func(key.Key[V], *T) bool) {
		for pos := range a.values {
			if !yield(a.entryKey(pos), &a.values[pos]) {
				return
			}
		}
	}
}

// Backward yields entries in reverse storage order.
func (a *Arena[T, V]) Backward() iter.Seq2[key.Key[V], *T] {
	return func(yield func(key.Key[V], *T) bool) {
		for pos := len(a.values) - 1; pos >= 0; pos-- {
			if !yield(a.entryKey(pos), &a.values[pos]) {
				return
			}
		}
	}
}

func (a *Arena[T, V]) Values() iter.Seq[*T] {
	return func(yield func(*T) bool) {
		for pos := range a.values {
			if !yield(&a.values[pos]) {
				return
			}
		}
	}
}

func (a *Arena[T, V]) Keys() iter.Seq[key.Key[V]] {
	return func(yield func(key.Key[V]) bool) {
		for pos := range a.keys {
			if !yield(a.entryKey(pos)) {
				return
			}
		}
	}
}

func (a *Arena[T, V]) entryKey(pos int) key.Key[V] {
	k, _ := a.positions.ParseKey(a.keys[pos])

	return k
}
