package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"sync"
	"time"

	flag "github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/calvinalkan/slotarena/internal/config"
	"github.com/calvinalkan/slotarena/internal/verify"
)

var ErrCheckFlags = errors.New("ops and runs must be positive")

// bytesPerOp is enough input for the widest operation the generator decodes.
const bytesPerOp = 6

type checkResult struct {
	target verify.Target
	runs   int
	ops    int
	maxLen int
	slots  int
	retire int
}

// CheckCmd returns the check command.
func CheckCmd(cfg *config.Config, logger *slog.Logger) *Command {
	flags := flag.NewFlagSet("check", flag.ContinueOnError)
	ops := flags.Int("ops", 0, "Operations per run (default: check_ops from config)")
	seed := flags.Uint64("seed", 0, "First seed (default: seed from config)")
	runs := flags.Int("runs", 8, "Seeds to run per engine/version pair")
	jobs := flags.IntP("jobs", "j", runtime.GOMAXPROCS(0), "Runs executed in parallel")

	return &Command{
		Flags: flags,
		Usage: "check [flags]",
		Short: "Verify every engine against a reference model",
		Long: `Run seeded random operation sequences against every engine and version
and compare each observable result with a reference model. Internal invariants
are validated after every operation. The first divergence stops the check and
prints the operations leading up to it.`,
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			maxOps := cfg.CheckOps
			if flags.Changed("ops") {
				maxOps = *ops
			}

			first := cfg.Seed
			if flags.Changed("seed") {
				first = *seed
			}

			if maxOps <= 0 || *runs <= 0 {
				return ErrCheckFlags
			}

			results, err := runChecks(ctx, first, maxOps, *runs, max(*jobs, 1), logger)
			if err != nil {
				return err
			}

			for _, r := range results {
				o.Printf("ok  %-20s runs=%d ops=%d max_len=%d slots=%d retired=%d\n",
					r.target, r.runs, r.ops, r.maxLen, r.slots, r.retire)
			}

			return nil
		},
	}
}

func runChecks(ctx context.Context, first uint64, maxOps, runs, jobs int, logger *slog.Logger) ([]checkResult, error) {
	targets := verify.Targets()
	results := make([]checkResult, len(targets))

	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	runCfg := verify.DefaultRunConfig()
	runCfg.MaxOps = maxOps

	for i, target := range targets {
		results[i].target = target

		for run := range runs {
			seed := first + uint64(run)

			g.Go(func() error {
				start := time.Now()
				data := verify.SeededBytes(seed, maxOps*bytesPerOp)

				report, err := verify.RunTarget(ctx, target, data, verify.DefaultOpGenConfig(), runCfg)
				if err != nil {
					return fmt.Errorf("%s seed=%d: %w", target, seed, err)
				}

				logger.Debug("check run", "target", target.String(), "seed", seed,
					"ops", report.Ops, "elapsed", time.Since(start))

				mu.Lock()
				defer mu.Unlock()

				r := &results[i]
				r.runs++
				r.ops += report.Ops
				r.maxLen = max(r.maxLen, report.MaxLen)
				r.slots = max(r.slots, report.Slots)
				r.retire += report.Retired

				return nil
			})
		}
	}

	err := g.Wait()
	if err != nil {
		return nil, err
	}

	return results, nil
}
