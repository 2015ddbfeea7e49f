// Package metrics records fetch outcomes of the pagination controller as
// Prometheus metrics.
package metrics

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Fetch outcomes, used as the "outcome" label value.
const (
	OutcomeApplied    = "applied"
	OutcomeSuperseded = "superseded"
	OutcomeFailed     = "failed"
)

// Collector owns a private registry so several collectors can coexist in
// one process (and in tests).
type Collector struct {
	registry *prometheus.Registry
	fetches  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		fetches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pagetable",
			Name:      "fetches_total",
			Help:      "Page fetches by outcome.",
		}, []string{"outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "pagetable",
			Name:      "fetch_duration_seconds",
			Help:      "Time from issuing a page fetch to its result.",
			Buckets:   []float64{.01, .05, .1, .2, .3, .5, 1, 2, 5},
		}, []string{"outcome"}),
	}

	c.registry.MustRegister(c.fetches, c.latency)
	for _, outcome := range []string{OutcomeApplied, OutcomeSuperseded, OutcomeFailed} {
		c.fetches.WithLabelValues(outcome)
	}
	return c
}

// FetchApplied records a fetch whose result became the displayed page.
func (c *Collector) FetchApplied(d time.Duration) {
	c.observe(OutcomeApplied, d)
}

// FetchSuperseded records a fetch that resolved after a newer one was issued.
func (c *Collector) FetchSuperseded(d time.Duration) {
	c.observe(OutcomeSuperseded, d)
}

// FetchFailed records the latest fetch failing.
func (c *Collector) FetchFailed(d time.Duration) {
	c.observe(OutcomeFailed, d)
}

func (c *Collector) observe(outcome string, d time.Duration) {
	c.fetches.WithLabelValues(outcome).Inc()
	c.latency.WithLabelValues(outcome).Observe(d.Seconds())
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collector's metrics in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Counts returns the fetch counters keyed by outcome.
func (c *Collector) Counts() (map[string]float64, error) {
	families, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	counts := make(map[string]float64)
	for _, mf := range families {
		if mf.GetName() != "pagetable_fetches_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			counts[outcomeLabel(m)] = m.GetCounter().GetValue()
		}
	}
	return counts, nil
}

func outcomeLabel(m *dto.Metric) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == "outcome" {
			return lp.GetValue()
		}
	}
	return ""
}
