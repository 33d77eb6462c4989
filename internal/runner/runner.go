// Package runner executes a batch of targets over a bounded pool of probe
// lanes with per-lane pacing.
package runner

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/calderonlabs/lexprobe/internal/fetcher"
	"github.com/calderonlabs/lexprobe/internal/metrics"
	"github.com/calderonlabs/lexprobe/internal/probe"
)

// Defaults applied when Options fields are zero. The conservative width of
// one lane and nonzero spacing keep the probes under upstream rate limits.
const (
	defaultConcurrency       = 1
	defaultInterRequestDelay = 1 * time.Second
	defaultPerAttemptTimeout = 10 * time.Second
)

// NoDelay disables inter-request pacing when set as
// Options.InterRequestDelay. The zero value means "use the default", so
// opting out of spacing has to be explicit.
const NoDelay = time.Duration(-1)

// Options controls batch execution.
type Options struct {
	// Concurrency is the maximum number of targets probed simultaneously.
	Concurrency int
	// InterRequestDelay is the minimum spacing between the start of
	// consecutive probes within one lane. Zero selects the default;
	// NoDelay disables spacing.
	InterRequestDelay time.Duration
	// PerAttemptTimeout bounds each individual strategy attempt.
	PerAttemptTimeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.Concurrency <= 0 {
		o.Concurrency = defaultConcurrency
	}
	if o.InterRequestDelay == 0 {
		o.InterRequestDelay = defaultInterRequestDelay
	}
	if o.PerAttemptTimeout <= 0 {
		o.PerAttemptTimeout = defaultPerAttemptTimeout
	}
	return o
}

// Runner fans a batch of targets out to probe lanes.
type Runner struct {
	fetcher    *fetcher.Fetcher
	strategies []probe.Strategy
	logger     *zap.Logger
}

// New constructs a Runner. The strategy order is the fallback order every
// probe will follow.
func New(f *fetcher.Fetcher, strategies []probe.Strategy, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		fetcher:    f,
		strategies: strategies,
		logger:     logger,
	}
}

// Run probes every target and returns one FetchResult per target. Result
// order relative to input order is not guaranteed when more than one lane
// runs; callers that need input order must re-sort by target name. The only
// errors surfaced here are configuration errors and context cancellation;
// per-target failures live inside the results.
func (r *Runner) Run(ctx context.Context, targets []probe.Target, opts Options) ([]probe.FetchResult, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no targets configured")
	}
	if len(r.strategies) == 0 {
		return nil, fmt.Errorf("no strategies configured")
	}
	opts = opts.withDefaults()

	jobs := make(chan probe.Target)
	results := make(chan probe.FetchResult, len(targets))

	var wg sync.WaitGroup
	for lane := 0; lane < opts.Concurrency; lane++ {
		wg.Add(1)
		go func(lane int) {
			defer wg.Done()
			r.runLane(ctx, lane, jobs, results, opts)
		}(lane)
	}

	go func() {
		defer close(jobs)
		for _, t := range targets {
			select {
			case jobs <- t:
			case <-ctx.Done():
				return
			}
		}
	}()

	wg.Wait()
	close(results)

	collected := make([]probe.FetchResult, 0, len(targets))
	for res := range results {
		collected = append(collected, res)
	}
	if err := ctx.Err(); err != nil {
		return collected, fmt.Errorf("run interrupted: %w", err)
	}
	return collected, nil
}

// runLane processes its share of targets strictly in hand-off order,
// honoring the inter-request delay between successive probes.
func (r *Runner) runLane(
	ctx context.Context,
	lane int,
	jobs <-chan probe.Target,
	results chan<- probe.FetchResult,
	opts Options,
) {
	limiter := newPacer(opts.InterRequestDelay)
	for {
		select {
		case <-ctx.Done():
			return
		case target, ok := <-jobs:
			if !ok {
				return
			}
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
			}
			start := time.Now()
			result := r.fetcher.Probe(ctx, target, r.strategies, opts.PerAttemptTimeout)
			metrics.ObserveProbe(result.Succeeded, time.Since(start))
			r.logger.Info("target probed",
				zap.Int("lane", lane),
				zap.String("target", target.Name),
				zap.String("category", target.Category),
				zap.Bool("succeeded", result.Succeeded),
				zap.Int("attempts", len(result.Attempts)),
				zap.Float64("latency_ms", result.TotalLatencyMs),
			)
			results <- result
		}
	}
}

func newPacer(delay time.Duration) *rate.Limiter {
	if delay <= 0 {
		return nil
	}
	// Burst of one: the first probe starts immediately, every later probe
	// in the lane waits out the configured spacing.
	return rate.NewLimiter(rate.Every(delay), 1)
}
