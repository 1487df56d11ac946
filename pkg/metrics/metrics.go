// Package metrics exposes Prometheus counters and histograms for the dashboard.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
	OutcomeEmpty   = "empty"
)

// DriverUnknown labels queries whose driver matches no registered adapter.
const DriverUnknown = "unknown"

const namespace = "vizboard"

// Collector holds the dashboard's metric vectors.
// All methods are safe on a nil *Collector so callers can skip metrics in tests.
type Collector struct {
	registry *prometheus.Registry

	queries          *prometheus.CounterVec
	queryDuration    *prometheus.HistogramVec
	generations      *prometheus.CounterVec
	generationTokens *prometheus.CounterVec
	charts           *prometheus.CounterVec
	actions          *prometheus.CounterVec
}

// NewCollector creates a collector on its own registry, with Go and process collectors attached.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	c := &Collector{
		registry: reg,
		queries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_executions_total",
			Help:      "Statements executed, by driver and outcome.",
		}, []string{"driver", "source", "outcome"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Wall time of one connect-execute-close cycle.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"driver"}),
		generations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_generations_total",
			Help:      "Natural-language to SQL generations, by provider and outcome.",
		}, []string{"provider", "outcome"}),
		generationTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "llm_tokens_total",
			Help:      "Tokens reported by the LLM provider.",
		}, []string{"provider", "kind"}),
		charts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "chart_renders_total",
			Help:      "Chart render attempts, by kind and outcome.",
		}, []string{"kind", "outcome"}),
		actions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dashboard_actions_total",
			Help:      "Dashboard form actions handled.",
		}, []string{"action"}),
	}

	reg.MustRegister(c.queries, c.queryDuration, c.generations, c.generationTokens, c.charts, c.actions)
	return c
}

// ObserveQuery records one statement execution.
func (c *Collector) ObserveQuery(driver, source, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.queries.WithLabelValues(driver, source, outcome).Inc()
	c.queryDuration.WithLabelValues(driver).Observe(elapsed.Seconds())
}

// ObserveGeneration records one LLM call and its token usage.
func (c *Collector) ObserveGeneration(provider, outcome string, promptTokens, completionTokens int) {
	if c == nil {
		return
	}
	c.generations.WithLabelValues(provider, outcome).Inc()
	if promptTokens > 0 {
		c.generationTokens.WithLabelValues(provider, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		c.generationTokens.WithLabelValues(provider, "completion").Add(float64(completionTokens))
	}
}

// ObserveChart records one render attempt.
func (c *Collector) ObserveChart(kind, outcome string) {
	if c == nil {
		return
	}
	c.charts.WithLabelValues(kind, outcome).Inc()
}

// ObserveAction records one dashboard action.
func (c *Collector) ObserveAction(action string) {
	if c == nil {
		return
	}
	c.actions.WithLabelValues(action).Inc()
}

// Gatherer exposes the underlying registry for tests.
func (c *Collector) Gatherer() prometheus.Gatherer {
	return c.registry
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
