// Package aggregate reduces a batch of fetch results into the summary
// report consumed by downstream tooling.
package aggregate

import (
	"github.com/calderonlabs/lexprobe/internal/probe"
)

// Aggregator builds reports. The injected clock keeps timestamps testable.
type Aggregator struct {
	clock probe.Clock
}

// New constructs an Aggregator.
func New(clock probe.Clock) *Aggregator {
	return &Aggregator{clock: clock}
}

// Aggregate is a pure reduction over results: overall and per-category
// success counts, goal evaluation, and the verbatim result list. An empty
// batch yields a 0% rate rather than a division fault. Calling it twice on
// the same input produces identical reports apart from the clock reading.
func (a *Aggregator) Aggregate(results []probe.FetchResult, targetGoalPercent float64) probe.Report {
	report := probe.Report{
		Timestamp:         a.clock.Now(),
		TotalTargets:      len(results),
		TargetGoalPercent: targetGoalPercent,
		ByCategory:        make(map[string]probe.CategoryStats, 4),
		Results:           results,
	}

	for _, res := range results {
		category := res.Target.Category
		if category == "" {
			category = probe.DefaultCategory
		}
		stats := report.ByCategory[category]
		stats.Total++
		if res.Succeeded {
			stats.Successful++
			report.SuccessfulTargets++
		}
		report.ByCategory[category] = stats
	}

	if report.TotalTargets > 0 {
		report.SuccessRatePercent = 100 * float64(report.SuccessfulTargets) / float64(report.TotalTargets)
	}
	report.GoalAchieved = report.SuccessRatePercent >= targetGoalPercent

	return report
}
