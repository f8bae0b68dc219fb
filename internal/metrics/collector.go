// Package metrics provides internal prometheus metrics collection.
// This package is internal and should not be imported by external projects.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/BaSui01/shaperunner/runner"
)

// Collector aggregates run and HTTP metrics. It implements runner.Observer
// so attempt outcomes flow straight into prometheus without touching the
// orchestrator's control flow.
type Collector struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	runsTotal     *prometheus.CounterVec
	runAttempts   *prometheus.HistogramVec
	attemptsTotal *prometheus.CounterVec
}

// NewCollector creates a collector and registers its metrics.
func NewCollector(namespace string, reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "runs_total",
				Help:      "Total shape runs by terminal outcome",
			},
			[]string{"shape", "outcome"},
		),
		runAttempts: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "run_attempts",
				Help:      "Model attempts spent per run",
				Buckets:   []float64{1, 2, 3},
			},
			[]string{"shape"},
		),
		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "attempts_failed_total",
				Help:      "Failed model attempts by rejection reason",
			},
			[]string{"shape", "reason"},
		),
	}

	reg.MustRegister(
		c.httpRequestsTotal,
		c.httpRequestDuration,
		c.runsTotal,
		c.runAttempts,
		c.attemptsTotal,
	)
	return c
}

// ObserveHTTPRequest records one served HTTP request.
func (c *Collector) ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	c.httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.httpRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// AttemptStarted implements runner.Observer.
func (c *Collector) AttemptStarted(string, int, int) {}

// AttemptFailed implements runner.Observer.
func (c *Collector) AttemptFailed(shape string, _ int, reason runner.FailureReason, _ string) {
	c.attemptsTotal.WithLabelValues(shape, string(reason)).Inc()
}

// RunSucceeded implements runner.Observer.
func (c *Collector) RunSucceeded(shape string, attempts int) {
	c.runsTotal.WithLabelValues(shape, "success").Inc()
	c.runAttempts.WithLabelValues(shape).Observe(float64(attempts))
}

// RunExhausted implements runner.Observer.
func (c *Collector) RunExhausted(shape string, attempts int, reason runner.FailureReason) {
	c.runsTotal.WithLabelValues(shape, "exhausted_"+string(reason)).Inc()
	c.runAttempts.WithLabelValues(shape).Observe(float64(attempts))
}
