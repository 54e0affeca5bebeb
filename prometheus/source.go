// Package prometheus exposes crawl metrics using the Prometheus client.
package prometheus

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Ensure MetricsSource implements mediacat.DocumentSource.
var _ mediacat.DocumentSource = (*MetricsSource)(nil)

// Load outcomes used as the "outcome" label.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeTimeout  = "timeout"
	OutcomeNotFound = "not_found"
)

// Metrics holds the collectors registered for a crawl run.
type Metrics struct {
	registry *prometheus.Registry

	LoadsTotal   *prometheus.CounterVec
	LoadDuration prometheus.Histogram
	ItemsTotal   *prometheus.CounterVec
}

// NewMetrics registers crawl collectors with a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)
	return &Metrics{
		registry: reg,
		LoadsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediacat_page_loads_total",
			Help: "The total number of listing page loads by outcome",
		}, []string{"outcome"}),
		LoadDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "mediacat_page_load_duration_seconds",
			Help:    "Time taken to fetch and parse a listing page",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10),
		}),
		ItemsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "mediacat_items_total",
			Help: "The total number of items extracted by category",
		}, []string{"category"}),
	}
}

// Handler serves the registered metrics in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCatalog adds the item count of every category in catalog.
func (m *Metrics) ObserveCatalog(catalog *mediacat.Catalog) {
	for _, cat := range catalog.Categories {
		m.ItemsTotal.WithLabelValues(cat.Name).Add(float64(cat.Len()))
	}
}

// MetricsSource wraps a DocumentSource, counting loads by outcome and
// observing load latency.
type MetricsSource struct {
	next    mediacat.DocumentSource
	metrics *Metrics
}

// NewMetricsSource creates a new MetricsSource.
func NewMetricsSource(next mediacat.DocumentSource, metrics *Metrics) *MetricsSource {
	return &MetricsSource{next: next, metrics: metrics}
}

// Load delegates to the wrapped source and records the outcome.
func (s *MetricsSource) Load(ctx context.Context, url string) (doc *mediacat.Document, err error) {
	defer func(begin time.Time) {
		s.metrics.LoadDuration.Observe(time.Since(begin).Seconds())
		s.metrics.LoadsTotal.WithLabelValues(outcome(err)).Inc()
	}(time.Now())
	return s.next.Load(ctx, url)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case mediacat.ErrorCode(err) == mediacat.ENOTFOUND:
		return OutcomeNotFound
	default:
		return OutcomeError
	}
}
