package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/slotarena/internal/catalog"
	"github.com/calvinalkan/slotarena/internal/config"
	"github.com/calvinalkan/slotarena/internal/sysstat"
	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/identity"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

var ErrBenchCount = errors.New("count must be positive")

// benchPhase is one timed step of a benchmark run.
type benchPhase struct {
	Name    string
	Ops     int
	Elapsed time.Duration
}

func (p benchPhase) nsPerOp() float64 {
	if p.Ops == 0 {
		return 0
	}

	return float64(p.Elapsed.Nanoseconds()) / float64(p.Ops)
}

// BenchCmd returns the bench command.
func BenchCmd(cfg *config.Config, logger *slog.Logger) *Command {
	flags := flag.NewFlagSet("bench", flag.ContinueOnError)
	count := flags.IntP("count", "n", 0, "Values per phase (default: bench_count from config)")
	all := flags.Bool("all", false, "Benchmark every engine, not just the configured one")

	return &Command{
		Flags: flags,
		Usage: "bench [-n count] [--all]",
		Short: "Time insert, lookup, iteration and removal",
		Long: `Time the basic operations of an engine using int values: insert, lookup,
iteration, removing every other value, refilling the holes, and draining.
Process CPU time and peak RSS are reported where the platform provides them.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			n := cfg.BenchCount
			if flags.Changed("count") {
				n = *count
			}

			if n <= 0 {
				return fmt.Errorf("%w: %d", ErrBenchCount, n)
			}

			engines := []string{cfg.Engine}
			if *all {
				engines = catalog.Engines()
			}

			for _, engine := range engines {
				if ctx.Err() != nil {
					return ctx.Err()
				}

				err := benchOne(o, engine, cfg.Version, n, logger)
				if err != nil {
					return err
				}
			}

			return nil
		},
	}
}

func benchOne(o *IO, engine, versionName string, n int, logger *slog.Logger) error {
	before, usageErr := sysstat.Snapshot()

	var (
		phases []benchPhase
		err    error
	)

	switch versionName {
	case catalog.Default:
		phases, err = benchNamed[version.Default](engine, n)
	case catalog.Tiny:
		phases, err = benchNamed[version.Tiny](engine, n)
	case catalog.Unversioned:
		phases, err = benchNamed[version.Unversioned](engine, n)
	default:
		err = catalog.ValidateVersion(versionName)
	}

	if err != nil {
		return err
	}

	o.Printf("%s/%s  n=%d\n", engine, versionName, n)

	var total time.Duration

	for _, p := range phases {
		total += p.Elapsed
		o.Printf("  %-10s %12s %10.1f ns/op\n", p.Name, p.Elapsed.Round(time.Microsecond), p.nsPerOp())
		logger.Debug("bench phase", "engine", engine, "phase", p.Name, "ops", p.Ops, "elapsed", p.Elapsed)
	}

	o.Printf("  %-10s %12s\n", "total", total.Round(time.Microsecond))

	if usageErr == nil {
		after, err := sysstat.Snapshot()
		if err == nil {
			d := after.Sub(before)
			o.Printf("  cpu user=%s sys=%s maxrss=%dKiB\n",
				d.User.Round(time.Millisecond), d.System.Round(time.Millisecond), d.MaxRSS/1024)
		}
	} else {
		logger.Debug("resource usage unavailable", "err", usageErr)
	}

	return nil
}

func benchNamed[V version.Version[V]](engine string, n int) ([]benchPhase, error) {
	a, err := catalog.New[int, V](engine, identity.New())
	if err != nil {
		return nil, err
	}

	return runBench(a, n), nil
}

// runBench drives a through its phases. a must be empty.
func runBench[V version.Version[V]](a arena.Engine[int, V], n int) []benchPhase {
	keys := make([]key.Key[V], 0, n)

	var phases []benchPhase

	timed := func(name string, ops int, fn func()) {
		start := time.Now()

		fn()
		phases = append(phases, benchPhase{Name: name, Ops: ops, Elapsed: time.Since(start)})
	}

	timed("insert", n, func() {
		for i := range n {
			keys = append(keys, a.Insert(i))
		}
	})

	sum := 0

	timed("get", n, func() {
		for _, k := range keys {
			v, _ := a.Get(k)
			sum += v
		}
	})

	timed("iterate", n, func() {
		for v := range a.Values() {
			sum += *v
		}
	})

	half := 0

	timed("remove", (n+1)/2, func() {
		for i := 0; i < len(keys); i += 2 {
			a.Delete(keys[i])
			half++
		}
	})

	timed("refill", half, func() {
		for i := range half {
			a.Insert(i)
		}
	})

	drained := a.Len()

	timed("drain", drained, func() {
		for v := range a.Drain() {
			sum += v
		}
	})

	_ = sum

	return phases
}
