package sysstat_test

import (
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/slotarena/internal/sysstat"
)

func Test_Snapshot_Reports_Monotonic_CPU_Time_When_Work_Done(t *testing.T) {
	if runtime.GOOS == "windows" || runtime.GOOS == "js" || runtime.GOOS == "wasip1" {
		t.Skip("no getrusage")
	}

	before, err := sysstat.Snapshot()
	require.NoError(t, err)

	sink := 0
	for i := range 5_000_000 {
		sink += i % 7
	}

	after, err := sysstat.Snapshot()
	require.NoError(t, err)

	delta := after.Sub(before)
	assert.GreaterOrEqual(t, delta.User+delta.System, time.Duration(0))
	assert.Positive(t, after.MaxRSS)
	assert.NotZero(t, sink)
}

func Test_Sub_Keeps_Latest_MaxRSS(t *testing.T) {
	t.Parallel()

	prev := sysstat.Usage{User: time.Second, System: 2 * time.Second, MaxRSS: 10}
	cur := sysstat.Usage{User: 3 * time.Second, System: 2 * time.Second, MaxRSS: 40}

	assert.Equal(t, sysstat.Usage{User: 2 * time.Second, MaxRSS: 40}, cur.Sub(prev))
}
