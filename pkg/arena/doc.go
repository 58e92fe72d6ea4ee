// Package arena is the common surface of the generational-index arenas in
// this module.
//
// An arena stores values in slots and hands out keys. A key stays valid until
// its value is removed; after that, lookups through it fail even if the slot
// has been reused, because every slot carries a version that the key saved at
// insertion time.
//
// # Engines
//
// Three storage engines implement [Engine]:
//
//   - sparse: slots with an embedded singly-linked free list. Simple and
//     compact; iteration scans every slot.
//   - hop: like sparse, but vacant slots are grouped into maximal runs kept in
//     a doubly-linked list. Iteration jumps over whole runs, so it costs
//     O(occupied + runs) instead of O(slots).
//   - dense: values live in a packed array and a sparse arena of positions
//     maps keys to them. Iteration is a plain slice walk; removal swaps the
//     last value into the hole.
//
// # Versions
//
// The version kind is a type parameter (see package version): Default
// (32-bit), Tiny (8-bit, for memory-tight arenas) and Unversioned (no stale
// key detection, used by the slab specializations).
//
// # Keys
//
// Lookups accept any [key.Access]: a [key.Key] returned by Insert, a raw
// [key.Index], or a [key.Trusted] index. Checked lookups return a boolean;
// asserting operations (Remove, MustGet) panic with an error wrapping
// [key.ErrStaleKey].
//
// # Concurrency
//
// Arenas are not safe for concurrent use. Callers must synchronize.
package arena
