package arena

import (
	"errors"
	"iter"

	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// ErrCorrupt is returned by an engine's Validate when its internal bookkeeping
// is inconsistent. It always indicates a bug in the engine.
var ErrCorrupt = errors.New("arena: corrupt")

// Engine is the method set shared by the sparse, hop and dense arenas.
type Engine[T any, V version.Version[V]] interface {
	Len() int
	IsEmpty() bool
	Capacity() int
	Reserve(additional int)
	Clear()

	Insert(value T) key.Key[V]
	Contains(k key.Access[V]) bool
	Get(k key.Access[V]) (T, bool)
	GetMut(k key.Access[V]) *T
	MustGet(k key.Access[V]) T
	TryRemove(k key.Access[V]) (T, bool)
	Remove(k key.Access[V]) T
	Delete(k key.Access[V]) bool
	DeleteAll()
	ParseKey(index int) (key.Key[V], bool)

	Retain(keep func(*T) bool)
	Drain() iter.Seq[T]
	DrainFilter(remove func(*T) bool) iter.Seq[T]

	All() iter.Seq2[key.Key[V], *T]
	Backward() iter.Seq2[key.Key[V], *T]
	Values() iter.Seq[*T]
	Keys() iter.Seq[key.Key[V]]

	Stats() Stats
	Validate() error
}

// Stats is a point-in-time summary of an engine's storage.
type Stats struct {
	// Len is the number of live values.
	Len int
	// Slots is the number of slots in the backing store.
	Slots int
	// Vacant is the number of reusable empty slots.
	Vacant int
	// Retired is the number of slots whose version is exhausted.
	Retired int
	// FreeBlocks is the number of maximal vacant runs, including an unlinked
	// run that starts right after the sentinel (hop only).
	FreeBlocks int
}
