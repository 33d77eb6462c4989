package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/calderonlabs/lexprobe/internal/probe"
)

// fakeStrategy returns a canned outcome and records invocations.
type fakeStrategy struct {
	name    string
	outcome probe.AttemptOutcome
	calls   int
}

func (f *fakeStrategy) Name() string { return f.name }

func (f *fakeStrategy) Attempt(_ context.Context, _ string) probe.AttemptOutcome {
	f.calls++
	out := f.outcome
	out.Strategy = f.name
	return out
}

func TestProbeFirstStrategyWins(t *testing.T) {
	t.Parallel()

	target := probe.NewTarget("X", "https://x.test", "gov")
	relay := &fakeStrategy{
		name:    "relay",
		outcome: probe.AttemptOutcome{Succeeded: true, ContentSize: 1000, LatencyMs: 120},
	}
	direct := &fakeStrategy{
		name:    "direct",
		outcome: probe.AttemptOutcome{Succeeded: true, ContentSize: 900, LatencyMs: 80},
	}

	f := New(zap.NewNop())
	result := f.Probe(context.Background(), target, []probe.Strategy{relay, direct}, time.Second)

	require.True(t, result.Succeeded)
	require.NotNil(t, result.MethodUsed)
	require.Equal(t, "relay", *result.MethodUsed)
	require.NotNil(t, result.ContentSize)
	require.Equal(t, 1000, *result.ContentSize)
	require.Len(t, result.Attempts, 1)
	require.Equal(t, 1, relay.calls)
	require.Equal(t, 0, direct.calls, "later strategies must not run after a success")
}

func TestProbeFallsBackAfterFailure(t *testing.T) {
	t.Parallel()

	target := probe.NewTarget("X", "https://x.test", "gov")
	relay := &fakeStrategy{
		name:    "relay",
		outcome: probe.AttemptOutcome{ErrorKind: probe.ErrTimeout, LatencyMs: 500},
	}
	direct := &fakeStrategy{
		name:    "direct",
		outcome: probe.AttemptOutcome{Succeeded: true, ContentSize: 450, LatencyMs: 200},
	}

	f := New(zap.NewNop())
	result := f.Probe(context.Background(), target, []probe.Strategy{relay, direct}, time.Second)

	require.True(t, result.Succeeded)
	require.Equal(t, "direct", *result.MethodUsed)
	require.Len(t, result.Attempts, 2)
	require.InDelta(t, 700.0, result.TotalLatencyMs, 0.001, "total latency is the sum of attempt latencies")
}

func TestProbeAllStrategiesExhausted(t *testing.T) {
	t.Parallel()

	target := probe.NewTarget("X", "https://x.test", "gov")
	relay := &fakeStrategy{
		name:    "relay",
		outcome: probe.AttemptOutcome{ErrorKind: probe.ErrTimeout, LatencyMs: 500},
	}
	direct := &fakeStrategy{
		name:    "direct",
		outcome: probe.AttemptOutcome{ErrorKind: probe.ErrContentTooShort, ContentSize: 50, LatencyMs: 90},
	}

	f := New(zap.NewNop())
	result := f.Probe(context.Background(), target, []probe.Strategy{relay, direct}, time.Second)

	require.False(t, result.Succeeded)
	require.Nil(t, result.MethodUsed)
	require.Nil(t, result.ContentSize)
	require.Len(t, result.Attempts, 2)
	require.Equal(t, probe.ErrTimeout, result.Attempts[0].ErrorKind)
	require.Equal(t, probe.ErrContentTooShort, result.Attempts[1].ErrorKind)
}

func TestProbeAppliesPerAttemptTimeout(t *testing.T) {
	t.Parallel()

	deadlineSeen := make(chan bool, 1)
	checker := &deadlineStrategy{seen: deadlineSeen}

	f := New(nil)
	f.Probe(context.Background(), probe.NewTarget("X", "https://x.test", ""), []probe.Strategy{checker}, 100*time.Millisecond)

	require.True(t, <-deadlineSeen, "attempt context must carry a deadline")
}

type deadlineStrategy struct {
	seen chan bool
}

func (deadlineStrategy) Name() string { return "deadline" }

func (d deadlineStrategy) Attempt(ctx context.Context, _ string) probe.AttemptOutcome {
	_, ok := ctx.Deadline()
	d.seen <- ok
	return probe.AttemptOutcome{Succeeded: true, ContentSize: 400}
}
