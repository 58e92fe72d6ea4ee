// Package slab provides unversioned arenas addressed by plain int keys.
//
// A slab does not detect stale keys: once a value is removed its key may be
// handed out again, and the old key then resolves to the new value. Use it
// where keys are owned by a single place that forgets them on removal.
package slab

import (
	"iter"

	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/dense"
	"github.com/calvinalkan/slotarena/pkg/arena/hop"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/sparse"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

type index = key.Index[version.Unversioned]

// Slab is an arena keyed by int.
type Slab[T any] struct {
	inner  arena.Engine[T, version.Unversioned]
	vacant func() VacantEntry[T]
}

// NewSparse returns a slab backed by the sparse engine.
func NewSparse[T any]() *Slab[T] {
	a := sparse.New[T, version.Unversioned]()

	return &Slab[T]{inner: a, vacant: func() VacantEntry[T] { return reserve[T](a.VacantEntry()) }}
}

// NewHop returns a slab backed by the hop engine. Keys start at 1.
func NewHop[T any]() *Slab[T] {
	a := hop.New[T, version.Unversioned]()

	return &Slab[T]{inner: a, vacant: func() VacantEntry[T] { return reserve[T](a.VacantEntry()) }}
}

// NewDense returns a slab backed by the dense engine.
func NewDense[T any]() *Slab[T] {
	a := dense.New[T, version.Unversioned]()

	return &Slab[T]{inner: a, vacant: func() VacantEntry[T] { return reserve[T](a.VacantEntry()) }}
}

// VacantEntry is a reserved slot that has not been filled yet. It must be
// committed before the slab is modified again.
type VacantEntry[T any] struct {
	key    int
	insert func(T) int
}

func (e VacantEntry[T]) Key() int { return e.key }

// Insert stores value in the reserved slot and returns its key.
func (e VacantEntry[T]) Insert(value T) int { return e.insert(value) }

type engineEntry[T any] interface {
	Key() key.Key[version.Unversioned]
	Insert(value T) key.Key[version.Unversioned]
}

func reserve[T any, E engineEntry[T]](e E) VacantEntry[T] {
	return VacantEntry[T]{
		key:    e.Key().Index(),
		insert: func(value T) int { return e.Insert(value).Index() },
	}
}

// VacantEntry reserves the key the next Insert would return.
func (s *Slab[T]) VacantEntry() VacantEntry[T] { return s.vacant() }

func (s *Slab[T]) Len() int               { return s.inner.Len() }
func (s *Slab[T]) IsEmpty() bool          { return s.inner.IsEmpty() }
func (s *Slab[T]) Capacity() int          { return s.inner.Capacity() }
func (s *Slab[T]) Reserve(additional int) { s.inner.Reserve(additional) }
func (s *Slab[T]) Clear()                 { s.inner.Clear() }
func (s *Slab[T]) Stats() arena.Stats     { return s.inner.Stats() }

// Insert stores value and returns its key.
func (s *Slab[T]) Insert(value T) int {
	return s.inner.Insert(value).Index()
}

func (s *Slab[T]) Contains(k int) bool        { return s.inner.Contains(index(k)) }
func (s *Slab[T]) Get(k int) (T, bool)        { return s.inner.Get(index(k)) }
func (s *Slab[T]) GetMut(k int) *T            { return s.inner.GetMut(index(k)) }
func (s *Slab[T]) MustGet(k int) T            { return s.inner.MustGet(index(k)) }
func (s *Slab[T]) TryRemove(k int) (T, bool)  { return s.inner.TryRemove(index(k)) }
func (s *Slab[T]) Remove(k int) T             { return s.inner.Remove(index(k)) }
func (s *Slab[T]) Delete(k int) bool          { return s.inner.Delete(index(k)) }
func (s *Slab[T]) Retain(keep func(*T) bool)  { s.inner.Retain(keep) }
func (s *Slab[T]) Drain() iter.Seq[T]         { return s.inner.Drain() }
func (s *Slab[T]) Values() iter.Seq[*T]       { return s.inner.Values() }
func (s *Slab[T]) DeleteAll()                 { s.inner.DeleteAll() }
func (s *Slab[T]) Validate() error            { return s.inner.Validate() }

func (s *Slab[T]) DrainFilter(remove func(*T) bool) iter.Seq[T] {
	return s.inner.DrainFilter(remove)
}

// All yields keys and values in the backing engine's iteration order.
func (s *Slab[T]) All() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for k, v := range s.inner.All() {
			if !yield(k.Index(), v) {
				return
			}
		}
	}
}

// Backward yields keys and values in reverse iteration order.
func (s *Slab[T]) Backward() iter.Seq2[int, *T] {
	return func(yield func(int, *T) bool) {
		for k, v := range s.inner.Backward() {
			if !yield(k.Index(), v) {
				return
			}
		}
	}
}

// ParseKey reports whether index currently holds a value.
func (s *Slab[T]) ParseKey(index int) (int, bool) {
	k, ok := s.inner.ParseKey(index)

	return k.Index(), ok
}

func (s *Slab[T]) Keys() iter.Seq[int] {
	return func(yield func(int) bool) {
		for k := range s.inner.Keys() {
			if !yield(k.Index()) {
				return
			}
		}
	}
}
