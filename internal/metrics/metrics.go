// Package metrics exposes Prometheus collectors for the reachability prober.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/calderonlabs/lexprobe/internal/probe"
)

var (
	probeAttemptsTotal          *prometheus.CounterVec
	probeAttemptDurationSeconds *prometheus.HistogramVec
	probeTargetsTotal           *prometheus.CounterVec
	probeDurationSeconds        prometheus.Histogram
	batchSuccessRatePercent     prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus metrics collectors.
// It is safe to call this function multiple times.
func Init() {
	once.Do(func() {
		probeAttemptsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexprobe_attempts_total",
				Help: "Total strategy attempts, labeled by strategy and outcome.",
			},
			[]string{"strategy", "outcome"},
		)

		probeAttemptDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "lexprobe_attempt_duration_seconds",
				Help:    "Histogram of single-attempt latencies, labeled by strategy.",
				Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
			},
			[]string{"strategy"},
		)

		probeTargetsTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "lexprobe_targets_total",
				Help: "Total targets probed, labeled by result.",
			},
			[]string{"result"},
		)

		probeDurationSeconds = promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "lexprobe_probe_duration_seconds",
				Help:    "Histogram of full per-target probe latencies.",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
			},
		)

		batchSuccessRatePercent = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "lexprobe_batch_success_rate_percent",
				Help: "Success rate of the most recent batch run.",
			},
		)
	})
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAttempt records one strategy attempt.
func ObserveAttempt(strategy string, outcome probe.AttemptOutcome) {
	Init()
	label := "success"
	if !outcome.Succeeded {
		label = string(outcome.ErrorKind)
		if label == "" {
			label = "failure"
		}
	}
	probeAttemptsTotal.WithLabelValues(strategy, label).Inc()
	probeAttemptDurationSeconds.WithLabelValues(strategy).Observe(outcome.LatencyMs / 1000.0)
}

// ObserveProbe records a completed per-target probe.
func ObserveProbe(succeeded bool, duration time.Duration) {
	Init()
	result := "failed"
	if succeeded {
		result = "succeeded"
	}
	probeTargetsTotal.WithLabelValues(result).Inc()
	probeDurationSeconds.Observe(duration.Seconds())
}

// SetBatchSuccessRate publishes the latest batch success rate.
func SetBatchSuccessRate(percent float64) {
	Init()
	batchSuccessRatePercent.Set(percent)
}
