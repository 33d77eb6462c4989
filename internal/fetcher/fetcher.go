// Package fetcher orchestrates an ordered list of strategies against one
// target, short-circuiting on the first success.
package fetcher

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/calderonlabs/lexprobe/internal/metrics"
	"github.com/calderonlabs/lexprobe/internal/probe"
)

const defaultPerAttemptTimeout = 10 * time.Second

// Fetcher probes targets. Safe for concurrent use; it holds no per-target
// state.
type Fetcher struct {
	logger *zap.Logger
}

// New constructs a Fetcher.
func New(logger *zap.Logger) *Fetcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Fetcher{logger: logger}
}

// Probe runs the strategies in the caller-supplied order under a per-attempt
// timeout. Every attempt is recorded; the first success wins and later
// strategies are skipped. Exhausting the list is the only failure, surfaced
// as Succeeded=false with a nil MethodUsed, never as an error.
func (f *Fetcher) Probe(
	ctx context.Context,
	target probe.Target,
	strategies []probe.Strategy,
	perAttemptTimeout time.Duration,
) probe.FetchResult {
	if perAttemptTimeout <= 0 {
		perAttemptTimeout = defaultPerAttemptTimeout
	}

	result := probe.FetchResult{
		Target:   target,
		Attempts: make([]probe.AttemptOutcome, 0, len(strategies)),
	}

	for _, strategy := range strategies {
		outcome := f.attempt(ctx, strategy, target.URL, perAttemptTimeout)
		result.Attempts = append(result.Attempts, outcome)
		result.TotalLatencyMs += outcome.LatencyMs
		metrics.ObserveAttempt(strategy.Name(), outcome)

		if outcome.Succeeded {
			name := strategy.Name()
			size := outcome.ContentSize
			result.Succeeded = true
			result.MethodUsed = &name
			result.ContentSize = &size
			break
		}
		f.logger.Debug("strategy attempt failed",
			zap.String("target", target.Name),
			zap.String("strategy", strategy.Name()),
			zap.String("error_kind", string(outcome.ErrorKind)),
		)
	}

	return result
}

func (f *Fetcher) attempt(
	ctx context.Context,
	strategy probe.Strategy,
	url string,
	timeout time.Duration,
) probe.AttemptOutcome {
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return strategy.Attempt(attemptCtx, url)
}
