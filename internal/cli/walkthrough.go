package cli

import (
	"context"
	"errors"
	"fmt"
	"slices"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/internal/config"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

var ErrWalkthroughMismatch = errors.New("walkthrough: unexpected values")

var walkthroughWant = []int{10, 20, 40, 50, 70, 80, 600, 700, 800, 900}

// WalkthroughCmd returns the walkthrough command.
func WalkthroughCmd(cfg *config.Config) *Command {
	return &Command{
		Flags: flag.NewFlagSet("walkthrough", flag.ContinueOnError),
		Usage: "walkthrough",
		Short: "Run the insert/remove/reinsert walkthrough",
		Long: `Insert 0,10,...,90, remove the values inserted 10th, 7th, 4th and 1st,
insert 600,700,800,900, and print every step. Fails if the surviving values,
walked forward or backward, differ from 10 20 40 50 70 80 600 700 800 900.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			switch cfg.Version {
			case catalog.Default:
				return walkthrough[version.Default](o, cfg.Engine)
			case catalog.Tiny:
				return walkthrough[version.Tiny](o, cfg.Engine)
			case catalog.Unversioned:
				return walkthrough[version.Unversioned](o, cfg.Engine)
			default:
				return catalog.ValidateVersion(cfg.Version)
			}
		},
	}
}

func walkthrough[V version.Version[V]](o *IO, engine string) error {
	a, err := catalog.New[int, V](engine, identity.New())
	if err != nil {
		return err
	}

	keys := make([]key.Key[V], 0, 10)

	for i := range 10 {
		k := a.Insert(i * 10)
		keys = append(keys, k)
		o.Printf("insert %3d -> %s\n", i*10, k)
	}

	for _, pos := range []int{9, 6, 3, 0} {
		o.Printf("remove %s -> %d\n", keys[pos], a.Remove(keys[pos]))
	}

	for i := 6; i <= 9; i++ {
		k := a.Insert(i * 100)
		o.Printf("insert %3d -> %s\n", i*100, k)
	}

	var forward, backward []int

	for _, v := range a.All() {
		forward = append(forward, *v)
	}

	for _, v := range a.Backward() {
		backward = append(backward, *v)
	}

	o.Println("forward: ", forward)
	o.Println("backward:", backward)

	slices.Reverse(backward)

	if !slices.Equal(forward, backward) {
		return fmt.Errorf("%w: backward walk is not the reverse of forward", ErrWalkthroughMismatch)
	}

	sorted := slices.Sorted(slices.Values(forward))
	if !slices.Equal(sorted, walkthroughWant) {
		return fmt.Errorf("%w: got %v, want %v", ErrWalkthroughMismatch, sorted, walkthroughWant)
	}

	err = a.Validate()
	if err != nil {
		return err
	}

	o.Println("ok")

	return nil
}
