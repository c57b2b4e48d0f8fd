// Package metrics exposes Prometheus counters and gauges for test runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/conductor-ci/conductor/types"
)

const (
	MetricsNamespace = "conductor"
)

var (
	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of pipeline errors",
	}, []string{
		"error",
	})

	testsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "tests_total",
		Help:      "Count of executed tests by status",
	}, []string{
		"suite",
		"run_id",
		"status",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of test runs",
	}, []string{
		"suite",
		"run_id",
		"result",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Duration of test runs in seconds",
	}, []string{
		"suite",
		"run_id",
	})
)

// RecordError counts a pipeline-level error by label.
func RecordError(label string) {
	errorsTotal.WithLabelValues(label).Inc()
}

// RecordTest counts one finished test by terminal status.
func RecordTest(suiteName, runID string, status types.TestStatus) {
	testsTotal.WithLabelValues(suiteName, runID, string(status)).Inc()
}

// RecordRun records the aggregate outcome of a completed run.
func RecordRun(suiteName, runID string, result types.TestStatus, duration time.Duration) {
	runResults.WithLabelValues(suiteName, runID, string(result)).Set(1)
	runDuration.WithLabelValues(suiteName, runID).Set(duration.Seconds())
}

// RecordSuite records per-status test counts for a completed suite.
func RecordSuite(suite *types.SuiteResult) {
	for _, r := range suite.Results {
		RecordTest(suite.SuiteName, suite.RunID, r.Status)
	}
	RecordRun(suite.SuiteName, suite.RunID, suite.Status(), suite.Duration)
}
