// Package version defines the per-slot version state machines used by the
// arena engines.
//
// A version records whether a slot is occupied and, for versioned kinds, how
// many times it has been reused. Keys carry the version observed at insertion
// so that lookups through a key whose slot has since been emptied and refilled
// fail instead of returning the new occupant.
//
// # Encoding
//
// The zero value of every kind is EMPTY. [Default] and [Tiny] use the low bit
// as the occupied flag: odd values are full, even values are empty, and each
// insert/remove cycle advances the counter by two. The largest even value a
// kind can represent is reserved as EXHAUSTED: a slot that reaches it is
// vacant and is never handed out again.
package version

import "math"

// Version is the contract an arena engine relies on for slot versions.
//
// V is the implementing type itself, so engines can be written as
// Arena[T any, V Version[V]].
type Version[V any] interface {
	comparable

	// IsFull reports whether the slot holds a value.
	IsFull() bool

	// IsExhausted reports whether the slot can never be reused.
	IsExhausted() bool

	// MarkFull returns the version for a slot that just received a value.
	// Must only be called on an empty, non-exhausted version.
	MarkFull() V

	// MarkEmpty returns the version for a slot whose value was just removed.
	// ok is false when the returned version is exhausted; the engine must then
	// retire the slot.
	MarkEmpty() (next V, ok bool)

	// EqualsSaved reports whether a key holding saved still refers to the
	// current occupant.
	EqualsSaved(saved V) bool

	// Generation returns the raw counter, for display and diagnostics.
	Generation() uint64
}

const (
	defaultExhausted = math.MaxUint32 - 1
	tinyExhausted    = math.MaxUint8 - 1
)

// Default is a 32-bit generational version.
type Default uint32

func (v Default) IsFull() bool      { return v&1 == 1 }
func (v Default) IsExhausted() bool { return v == defaultExhausted }
func (v Default) MarkFull() Default { return v + 1 }

func (v Default) MarkEmpty() (Default, bool) {
	next := v + 1

	return next, next != defaultExhausted
}

func (v Default) EqualsSaved(saved Default) bool { return v == saved }
func (v Default) Generation() uint64             { return uint64(v) }

// Tiny is an 8-bit generational version. A slot survives 127 insert/remove
// cycles before it is retired.
type Tiny uint8

func (v Tiny) IsFull() bool      { return v&1 == 1 }
func (v Tiny) IsExhausted() bool { return v == tinyExhausted }
func (v Tiny) MarkFull() Tiny    { return v + 1 }

func (v Tiny) MarkEmpty() (Tiny, bool) {
	next := v + 1

	return next, next != tinyExhausted
}

func (v Tiny) EqualsSaved(saved Tiny) bool { return v == saved }
func (v Tiny) Generation() uint64          { return uint64(v) }

// Unversioned only tracks occupancy. Keys cannot detect reuse: a key into a
// refilled slot resolves to the new occupant.
type Unversioned bool

func (v Unversioned) IsFull() bool                 { return bool(v) }
func (Unversioned) IsExhausted() bool              { return false }
func (Unversioned) MarkFull() Unversioned          { return true }
func (Unversioned) MarkEmpty() (Unversioned, bool) { return false, true }
func (v Unversioned) EqualsSaved(Unversioned) bool { return bool(v) }

func (v Unversioned) Generation() uint64 {
	if v {
		return 1
	}

	return 0
}
