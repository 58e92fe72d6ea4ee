package verify

import (
	"context"
	"fmt"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

// Target is an engine/version combination to verify.
type Target struct {
	Engine  string
	Version string
}

func (t Target) String() string { return t.Engine + "/" + t.Version }

// Targets returns every engine/version combination.
func Targets() []Target {
	var out []Target

	for _, e := range catalog.Engines() {
		for _, v := range catalog.Versions() {
			out = append(out, Target{Engine: e, Version: v})
		}
	}

	return out
}

// RunTarget builds a branded engine for t and runs the ops derived from data
// against it.
func RunTarget(ctx context.Context, t Target, data []byte, genCfg OpGenConfig, cfg RunConfig) (Report, error) {
	gen := NewOpGenerator(data, genCfg)

	switch t.Version {
	case catalog.Default:
		return runNamed[version.Default](ctx, t.Engine, gen, cfg)
	case catalog.Tiny:
		return runNamed[version.Tiny](ctx, t.Engine, gen, cfg)
	case catalog.Unversioned:
		return runNamed[version.Unversioned](ctx, t.Engine, gen, cfg)
	default:
		return Report{}, catalog.ValidateVersion(t.Version)
	}
}

func runNamed[V version.Version[V]](ctx context.Context, engine string, gen *OpGenerator, cfg RunConfig) (Report, error) {
	a, err := catalog.New[int, V](engine, identity.New())
	if err != nil {
		return Report{}, err
	}

	report, err := Run(ctx, a, gen, cfg)
	if err != nil {
		return report, fmt.Errorf("%s: %w", engine, err)
	}

	return report, nil
}
