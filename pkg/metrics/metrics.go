// Package metrics defines the Prometheus metric collectors used across the
// FAQ engine and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Query outcomes recorded by QueriesTotal.
const (
	OutcomeAnswered   = "answered"
	OutcomeFallback   = "fallback"
	OutcomeEmptyQuery = "empty_query"
)

// Metrics holds all Prometheus collectors for the engine. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	QueriesTotal       *prometheus.CounterVec
	MatchScore         *prometheus.HistogramVec
	QueryLatency       *prometheus.HistogramVec
	CacheHitsTotal     prometheus.Counter
	CacheMissesTotal   prometheus.Counter
	IndexedPatterns    *prometheus.GaugeVec
	TrainingDuration   *prometheus.HistogramVec
	EvalAccuracy       *prometheus.GaugeVec
	EvalFallbackRate   *prometheus.GaugeVec
	EventsDroppedTotal prometheus.Counter
	BackendState       *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates all collectors and registers them with reg. Passing
// prometheus.DefaultRegisterer exposes them through the default handler.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		QueriesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "faq_queries_total",
				Help: "Total FAQ queries by method and outcome (answered, fallback, empty_query).",
			},
			[]string{"method", "outcome"},
		),
		MatchScore: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faq_match_score",
				Help:    "Best match score per query.",
				Buckets: []float64{0, 0.1, 0.2, 0.25, 0.3, 0.4, 0.5, 0.6, 0.8, 1, 2, 5, 10},
			},
			[]string{"method"},
		),
		QueryLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faq_query_latency_seconds",
				Help:    "Time to answer one query in seconds.",
				Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
			},
			[]string{"method"},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "faq_cache_hits_total",
				Help: "Total number of match cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "faq_cache_misses_total",
				Help: "Total number of match cache misses.",
			},
		),
		IndexedPatterns: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faq_indexed_patterns",
				Help: "Number of patterns in the loaded or trained index.",
			},
			[]string{"method"},
		),
		TrainingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "faq_training_duration_seconds",
				Help:    "Time to build and save one index in seconds.",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
			},
			[]string{"method"},
		),
		EvalAccuracy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faq_eval_accuracy",
				Help: "Leave-one-out accuracy of the last evaluation.",
			},
			[]string{"method"},
		),
		EvalFallbackRate: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faq_eval_fallback_rate",
				Help: "Leave-one-out fallback rate of the last evaluation.",
			},
			[]string{"method"},
		),
		EventsDroppedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "faq_analytics_events_dropped_total",
				Help: "Chat analytics events dropped because the buffer was full.",
			},
		),
		BackendState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "faq_backend_state",
				Help: "Guard state of an optional backend (0=healthy, 1=skipped, 2=trial).",
			},
			[]string{"backend"},
		),
	}

	reg.MustRegister(
		m.QueriesTotal,
		m.MatchScore,
		m.QueryLatency,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.IndexedPatterns,
		m.TrainingDuration,
		m.EvalAccuracy,
		m.EvalFallbackRate,
		m.EventsDroppedTotal,
		m.BackendState,
	)
	if g, ok := reg.(prometheus.Gatherer); ok {
		m.gatherer = g
	}
	return m
}

// ObserveQuery records the outcome, best score and latency of one query.
func (m *Metrics) ObserveQuery(method, outcome string, score float64, latency time.Duration) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(method, outcome).Inc()
	if outcome != OutcomeEmptyQuery {
		m.MatchScore.WithLabelValues(method).Observe(score)
	}
	m.QueryLatency.WithLabelValues(method).Observe(latency.Seconds())
}

// CacheResult records a match cache hit or miss.
func (m *Metrics) CacheResult(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.CacheHitsTotal.Inc()
		return
	}
	m.CacheMissesTotal.Inc()
}

// SetIndexed records the pattern count of an index.
func (m *Metrics) SetIndexed(method string, patterns int) {
	if m == nil {
		return
	}
	m.IndexedPatterns.WithLabelValues(method).Set(float64(patterns))
}

// ObserveTraining records how long building an index took.
func (m *Metrics) ObserveTraining(method string, d time.Duration) {
	if m == nil {
		return
	}
	m.TrainingDuration.WithLabelValues(method).Observe(d.Seconds())
}

// SetEvaluation records the rates of an evaluation run.
func (m *Metrics) SetEvaluation(method string, accuracy, fallbackRate float64) {
	if m == nil {
		return
	}
	m.EvalAccuracy.WithLabelValues(method).Set(accuracy)
	m.EvalFallbackRate.WithLabelValues(method).Set(fallbackRate)
}

// AnalyticsDropped counts one dropped analytics event.
func (m *Metrics) AnalyticsDropped() {
	if m == nil {
		return
	}
	m.EventsDroppedTotal.Inc()
}

// SetBackendState records the guard state of an optional backend.
func (m *Metrics) SetBackendState(backend string, state int) {
	if m == nil {
		return
	}
	m.BackendState.WithLabelValues(backend).Set(float64(state))
}

// Handler returns the Prometheus scrape HTTP handler for the registry the
// metrics were registered with.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.gatherer == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
