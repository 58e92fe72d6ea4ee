// Package catalog maps engine and version names used in configuration and
// on the command line to arena constructors.
package catalog

import (
	"errors"
	"fmt"
	"slices"

	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/dense"
	"github.com/calvinalkan/slotarena/pkg/arena/hop"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/sparse"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

var (
	ErrUnknownEngine  = errors.New("unknown engine")
	ErrUnknownVersion = errors.New("unknown version")
)

// Engine names.
const (
	Sparse = "sparse"
	Hop    = "hop"
	Dense  = "dense"
)

// Version names.
const (
	Default     = "default"
	Tiny        = "tiny"
	Unversioned = "unversioned"
)

// Engines lists the engine names in display order.
func Engines() []string { return []string{Sparse, Hop, Dense} }

// Versions lists the version names in display order.
func Versions() []string { return []string{Default, Tiny, Unversioned} }

// ValidateEngine returns ErrUnknownEngine for names not in [Engines].
func ValidateEngine(name string) error {
	if !slices.Contains(Engines(), name) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnknownEngine, name, Engines())
	}

	return nil
}

// ValidateVersion returns ErrUnknownVersion for names not in [Versions].
func ValidateVersion(name string) error {
	if !slices.Contains(Versions(), name) {
		return fmt.Errorf("%w: %q (want one of %v)", ErrUnknownVersion, name, Versions())
	}

	return nil
}

// New builds the named engine. A nil id builds an unbranded arena.
func New[T any, V version.Version[V]](engine string, id identity.Identity) (arena.Engine[T, V], error) {
	if id == nil {
		id = identity.Anonymous{}
	}

	switch engine {
	case Sparse:
		return sparse.WithIdentity[T, V](id), nil
	case Hop:
		return hop.WithIdentity[T, V](id), nil
	case Dense:
		return dense.WithIdentity[T, V](id), nil
	default:
		return nil, ValidateEngine(engine)
	}
}
