// Package key defines the handles used to address arena slots.
//
// Three forms implement [Access]:
//
//   - [Key] is what arenas return from Insert: index, saved version and the
//     token of the minting identity. Lookups through a stale Key fail.
//   - [Index] is a bare slot index. It has no saved version, so a lookup
//     succeeds whenever the slot is occupied, whoever occupies it.
//   - [Trusted] is a bare index the caller vouches for. Bounds and identity
//     checks are skipped; occupancy is still checked.
package key

import (
	"errors"
	"fmt"

	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// ErrStaleKey is wrapped by the panic value of asserting operations
// (Remove, MustGet) when the key does not refer to a live value.
var ErrStaleKey = errors.New("arena: stale key")

// Validity is the outcome of validating a handle against an arena identity.
type Validity uint8

const (
	// Checked handles must be bounds-checked by the arena.
	Checked Validity = iota
	// Unchecked handles skip the bounds check.
	Unchecked
	// Rejected handles belong to another arena and never resolve.
	Rejected
)

// Access is the handle contract shared by all arena engines.
type Access[V version.Version[V]] interface {
	// Index is the slot index the handle points at.
	Index() int

	// Saved returns the version recorded when the handle was minted.
	// ok is false for handles that carry no version.
	Saved() (saved V, ok bool)

	// Validate checks the handle against the arena's identity.
	Validate(id identity.Identity) Validity
}

// Key is a versioned handle to an arena slot.
type Key[V version.Version[V]] struct {
	index   int
	version V
	owner   identity.Token
}

// New builds a key. Arenas call this; user code normally receives keys from
// Insert or ParseKey.
func New[V version.Version[V]](index int, v V, owner identity.Token) Key[V] {
	return Key[V]{index: index, version: v, owner: owner}
}

func (k Key[V]) Index() int              { return k.index }
func (k Key[V]) Version() V              { return k.version }
func (k Key[V]) Owner() identity.Token   { return k.owner }
func (k Key[V]) Saved() (V, bool)        { return k.version, true }
func (k Key[V]) String() string          { return fmt.Sprintf("%dv%d", k.index, k.version.Generation()) }
func (k Key[V]) Raw() Index[V]           { return Index[V](k.index) }
func (k Key[V]) Equal(other Key[V]) bool { return k == other }

// Validate rejects keys stamped by a different identity. Unstamped keys are
// accepted by any arena and bounds-checked.
func (k Key[V]) Validate(id identity.Identity) Validity {
	if k.owner == 0 || id.Owns(k.owner) {
		return Checked
	}

	return Rejected
}

// Index is an unversioned slot index.
type Index[V version.Version[V]] int

func (i Index[V]) Index() int { return int(i) }

func (Index[V]) Saved() (V, bool) {
	var zero V

	return zero, false
}

func (Index[V]) Validate(identity.Identity) Validity { return Checked }

// Trusted is a slot index the caller guarantees to be in bounds. An out of
// range Trusted index panics with a runtime bounds error.
type Trusted[V version.Version[V]] int

func (i Trusted[V]) Index() int { return int(i) }

func (Trusted[V]) Saved() (V, bool) {
	var zero V

	return zero, false
}

func (Trusted[V]) Validate(identity.Identity) Validity { return Unchecked }
