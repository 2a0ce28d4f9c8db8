// Package metrics exposes analysis counters as Prometheus collectors.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/ppiankov/revstat/internal/model"
)

// Metrics groups the collectors of one registry
type Metrics struct {
	RowsParsed     prometheus.Counter
	ReviewsCleaned prometheus.Counter
	Rejected       *prometheus.CounterVec
	CacheEvents    *prometheus.CounterVec
	Duration       prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RowsParsed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "revstat", Name: "rows_parsed_total", Help: "Rows read from input files.",
		}),
		ReviewsCleaned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "revstat", Name: "reviews_cleaned_total", Help: "Rows that became reviews.",
		}),
		Rejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "revstat", Name: "reviews_rejected_total", Help: "Rows dropped by the cleaner."},
			[]string{"reason"},
		),
		CacheEvents: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: "revstat", Name: "cache_events_total", Help: "Report cache hits/misses/sets."},
			[]string{"layer", "event"},
		),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "revstat", Name: "analysis_duration_seconds",
			Help:    "Wall time of one file analysis.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(m.RowsParsed, m.ReviewsCleaned, m.Rejected, m.CacheEvents, m.Duration)
	return m
}

// NewRegistry returns a fresh registry with revstat collectors registered
func NewRegistry() (*prometheus.Registry, *Metrics) {
	reg := prometheus.NewRegistry()
	return reg, New(reg)
}

// ObserveInput records the row accounting of one analysis
func (m *Metrics) ObserveInput(in model.InputMeta) {
	m.RowsParsed.Add(float64(in.Rows))
	m.ReviewsCleaned.Add(float64(in.Cleaned))
	for reason, n := range in.RejectReasons {
		m.Rejected.WithLabelValues(string(reason)).Add(float64(n))
	}
}

// ObserveCache records a cache event; the signature matches cache.EventFunc
func (m *Metrics) ObserveCache(layer, event string) {
	m.CacheEvents.WithLabelValues(layer, event).Inc()
}

// ObserveDuration records how long an analysis took
func (m *Metrics) ObserveDuration(d time.Duration) {
	m.Duration.Observe(d.Seconds())
}

// WriteTextfile writes reg in the node-exporter textfile format
func WriteTextfile(reg prometheus.Gatherer, path string) error {
	if err := prometheus.WriteToTextfile(path, reg); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
