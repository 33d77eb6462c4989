// Package probe defines the core types shared across the reachability
// engine: targets, per-attempt outcomes, per-target results, and the
// aggregated report consumed by downstream tooling.
package probe
