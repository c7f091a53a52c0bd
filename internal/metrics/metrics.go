// Package metrics registers all Prometheus metrics for docsbot and exposes
// them as a single struct handed to the components that record them.
// A fresh instance is created in the run command and wired through
// constructors so that tests can inject their own prometheus.Registry
// without polluting the default one.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome label values for upstream request metrics.
const (
	// OutcomeOK marks a 2xx upstream response.
	OutcomeOK = "ok"
	// OutcomeRateLimited marks a 429 upstream response.
	OutcomeRateLimited = "rate_limited"
	// OutcomeError marks a non-429 failure (network error or HTTP ≥400).
	OutcomeError = "error"
)

// Metrics holds all Prometheus metrics owned by docsbot.
type Metrics struct {
	// UpstreamRequests counts every upstream request attempt, partitioned
	// by endpoint path and outcome.
	UpstreamRequests *prometheus.CounterVec

	// UpstreamSeconds observes per-attempt upstream request latency,
	// partitioned by endpoint path.
	UpstreamSeconds *prometheus.HistogramVec

	// RenderFields observes how many fields each rendered embed carried.
	RenderFields prometheus.Histogram

	// Questions counts /ask invocations, partitioned by the source label
	// the user selected. Incremented whether or not the fetch found
	// anything.
	Questions *prometheus.CounterVec
}

// New registers all docsbot metrics with reg and returns the handle struct.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsbot_context7_requests_total",
			Help: "Upstream Context7 request attempts by path and outcome.",
		}, []string{"path", "outcome"}),

		UpstreamSeconds: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docsbot_context7_request_seconds",
			Help:    "Upstream Context7 per-attempt request latency in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),

		RenderFields: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "docsbot_render_fields",
			Help:    "Number of snippet fields per rendered embed.",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 6, 7, 8},
		}),

		Questions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "docsbot_questions_total",
			Help: "Questions asked via /ask, by selected documentation source.",
		}, []string{"source"}),
	}
}

// ObserveRequest records one upstream request attempt. It is safe to call on
// a nil receiver so components can run without metrics wired (tests).
func (m *Metrics) ObserveRequest(path, outcome string, seconds float64) {
	if m == nil {
		return
	}
	m.UpstreamRequests.WithLabelValues(path, outcome).Inc()
	m.UpstreamSeconds.WithLabelValues(path).Observe(seconds)
}

// ObserveRender records the field count of one rendered embed. Nil-safe.
func (m *Metrics) ObserveRender(fields int) {
	if m == nil {
		return
	}
	m.RenderFields.Observe(float64(fields))
}

// CountQuestion records one /ask invocation. Nil-safe.
func (m *Metrics) CountQuestion(source string) {
	if m == nil {
		return
	}
	m.Questions.WithLabelValues(source).Inc()
}
