// Package metrics records run statistics as Prometheus metrics.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "suiterun"

// Invocation kinds.
const (
	KindBundle     = "bundle"
	KindIndividual = "individual"
	KindRetry      = "retry"
)

// Retry outcomes.
const (
	OutcomeResolved   = "resolved"
	OutcomeUnresolved = "unresolved"
)

// Recorder holds the metrics of a single run. A nil *Recorder is valid and
// records nothing.
type Recorder struct {
	registry *prometheus.Registry

	invocations   *prometheus.CounterVec
	launchErrors  *prometheus.CounterVec
	retryAttempts *prometheus.CounterVec
	retries       *prometheus.CounterVec
	tests         *prometheus.GaugeVec
	failed        *prometheus.GaugeVec
	crashes       *prometheus.GaugeVec
	duration      *prometheus.GaugeVec
}

// New creates a Recorder with its own registry. Every metric carries the
// constant label run_id.
func New(runID string) *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	constLabels := prometheus.Labels{"run_id": runID}

	return &Recorder{
		registry: reg,
		invocations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "invocations_total",
			Help:        "Test executable invocations by kind.",
			ConstLabels: constLabels,
		}, []string{"suite", "kind"}),
		launchErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "launch_errors_total",
			Help:        "Invocations whose process could not be started.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
		retryAttempts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "retry_attempts_total",
			Help:        "Individual retry attempts of failing tests.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
		retries: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "retries_total",
			Help:        "Failing tests subjected to recovery, by outcome.",
			ConstLabels: constLabels,
		}, []string{"suite", "outcome"}),
		tests: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "tests_total",
			Help:        "Tests reported by a suite.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
		failed: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "tests_failed",
			Help:        "Tests of a suite still failing after retries.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
		crashes: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "crashed_invocations",
			Help:        "Invocations of a suite that exited non-zero without reporting results.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
		duration: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "suite_duration_seconds",
			Help:        "Wall-clock time spent on a suite, including retries.",
			ConstLabels: constLabels,
		}, []string{"suite"}),
	}
}

// Invocation counts one process launch attempt.
func (r *Recorder) Invocation(suite, kind string, launched bool) {
	if r == nil {
		return
	}
	r.invocations.WithLabelValues(suite, kind).Inc()
	if !launched {
		r.launchErrors.WithLabelValues(suite).Inc()
	}
}

// RetryAttempt counts one retry attempt.
func (r *Recorder) RetryAttempt(suite string) {
	if r == nil {
		return
	}
	r.retryAttempts.WithLabelValues(suite).Inc()
}

// Retry records the outcome of recovering one failing test.
func (r *Recorder) Retry(suite string, resolved bool) {
	if r == nil {
		return
	}
	outcome := OutcomeUnresolved
	if resolved {
		outcome = OutcomeResolved
	}
	r.retries.WithLabelValues(suite, outcome).Inc()
}

// Suite records the final numbers of a suite.
func (r *Recorder) Suite(suite string, total, failed, crashes int, seconds float64) {
	if r == nil {
		return
	}
	r.tests.WithLabelValues(suite).Set(float64(total))
	r.failed.WithLabelValues(suite).Set(float64(failed))
	r.crashes.WithLabelValues(suite).Set(float64(crashes))
	r.duration.WithLabelValues(suite).Set(seconds)
}

// Gatherer exposes the underlying registry.
func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node exporter textfile collector.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.registry); err != nil {
		return fmt.Errorf("write metrics to %s: %w", path, err)
	}
	return nil
}
