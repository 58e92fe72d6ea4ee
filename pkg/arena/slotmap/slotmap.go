// Package slotmap names the versioned arena specializations: every engine
// with 32-bit versions, so stale keys are always detected.
package slotmap

import (
	"github.com/calvinalkan/slotarena/pkg/arena/dense"
	"github.com/calvinalkan/slotarena/pkg/arena/hop"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/sparse"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Key is a slot map key.
type Key = key.Key[version.Default]

type (
	Sparse[T any] = sparse.Arena[T, version.Default]
	Hop[T any]    = hop.Arena[T, version.Default]
	Dense[T any]  = dense.Arena[T, version.Default]
)

func NewSparse[T any]() *Sparse[T] { return sparse.New[T, version.Default]() }
func NewHop[T any]() *Hop[T]       { return hop.New[T, version.Default]() }
func NewDense[T any]() *Dense[T]   { return dense.New[T, version.Default]() }

// NewSparseWithIdentity returns a sparse slot map whose keys are rejected by
// every other arena.
func NewSparseWithIdentity[T any](id identity.Identity) *Sparse[T] {
	return sparse.WithIdentity[T, version.Default](id)
}

func NewHopWithIdentity[T any](id identity.Identity) *Hop[T] {
	return hop.WithIdentity[T, version.Default](id)
}

func NewDenseWithIdentity[T any](id identity.Identity) *Dense[T] {
	return dense.WithIdentity[T, version.Default](id)
}
