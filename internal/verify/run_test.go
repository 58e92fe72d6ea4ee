package verify_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/internal/verify"
	"github.com/calvinalkan/slotarena/pkg/arena"
	"github.com/calvinalkan/slotarena/pkg/arena/key"
	"github.com/calvinalkan/slotarena/pkg/arena/sparse"
	"github.com/calvinalkan/slotarena/pkg/arena/version"
)

func Test_RunTarget_Passes_When_Engine_Matches_Model(t *testing.T) {
	t.Parallel()

	for _, target := range verify.Targets() {
		t.Run(target.String(), func(t *testing.T) {
			t.Parallel()

			for seed := range uint64(4) {
				report, err := verify.RunTarget(context.Background(), target, verify.SeededBytes(seed, 6000),
					verify.DefaultOpGenConfig(), verify.DefaultRunConfig())
				require.NoError(t, err, "seed %d", seed)
				assert.Positive(t, report.Ops)
			}
		})
	}
}

// Insert churn concentrated on one slot drives Tiny versions to exhaustion.
func Test_RunTarget_Retires_Slots_When_Tiny_Versions_Churn(t *testing.T) {
	t.Parallel()

	cfg := verify.OpGenConfig{InsertRate: 50, RemoveRate: 50}

	var data []byte
	for range 400 {
		data = append(data, 0, 60, 0, 0)
	}

	for _, engine := range []string{"sparse", "hop", "dense"} {
		report, err := verify.RunTarget(context.Background(), verify.Target{Engine: engine, Version: "tiny"}, data,
			cfg, verify.DefaultRunConfig())
		require.NoError(t, err, engine)
		assert.Positive(t, report.Retired, "%s: churn on one slot must exhaust it", engine)
	}
}

type lyingEngine struct {
	arena.Engine[int, version.Default]
}

func (lyingEngine) Get(key.Access[version.Default]) (int, bool) { return 0, false }

func Test_Run_Returns_ErrDivergence_When_Engine_Misbehaves(t *testing.T) {
	t.Parallel()

	engine := lyingEngine{Engine: sparse.New[int, version.Default]()}

	// insert(1), then get(pick=4) which resolves to the only live key.
	gen := verify.NewOpGenerator([]byte{0, 61, 4, 0}, verify.DefaultOpGenConfig())

	_, err := verify.Run(context.Background(), engine, gen, verify.DefaultRunConfig())
	require.ErrorIs(t, err, verify.ErrDivergence)
	assert.Contains(t, err.Error(), "get(pick=4)")
}

func Test_Run_Stops_When_Context_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	gen := verify.NewOpGenerator(verify.SeededBytes(1, 100), verify.DefaultOpGenConfig())

	_, err := verify.Run(ctx, sparse.New[int, version.Default](), gen, verify.DefaultRunConfig())
	require.ErrorIs(t, err, context.Canceled)
}

func FuzzEngines_ModelVsReal(f *testing.F) {
	f.Add([]byte{})
	f.Add([]byte{0, 0, 0, 0, 0, 40, 1, 0, 40, 2, 0, 95})
	f.Add(verify.SeededBytes(7, 256))
	f.Add(verify.SeededBytes(8, 1024))

	f.Fuzz(func(t *testing.T, data []byte) {
		for _, target := range verify.Targets() {
			_, err := verify.RunTarget(context.Background(), target, data,
				verify.DefaultOpGenConfig(), verify.DefaultRunConfig())
			if err != nil {
				t.Fatalf("%s: %v", target, err)
			}
		}
	})
}
