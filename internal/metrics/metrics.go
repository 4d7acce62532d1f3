package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the timeline collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	FetchTotal    *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	FetchRejected *prometheus.CounterVec
	MergedItems   *prometheus.CounterVec
	FeedItems     prometheus.Gauge
	ReplaceTotal  *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		FetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedview_fetch_total",
			Help: "Timeline fetches by direction and outcome",
		}, []string{"direction", "outcome"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "feedview_fetch_duration_seconds",
			Help:    "Timeline fetch latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"direction"}),
		FetchRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedview_fetch_rejected_total",
			Help: "Fetch requests dropped because another fetch was in flight",
		}, []string{"direction"}),
		MergedItems: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedview_merged_items_total",
			Help: "Posts merged into the feed by merge kind",
		}, []string{"kind"}),
		FeedItems: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "feedview_feed_items",
			Help: "Posts currently held in the feed",
		}),
		ReplaceTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "feedview_replace_total",
			Help: "In-place post updates by result",
		}, []string{"result"}),
	}
	m.registry.MustRegister(
		m.FetchTotal,
		m.FetchDuration,
		m.FetchRejected,
		m.MergedItems,
		m.FeedItems,
		m.ReplaceTotal,
	)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveFetch(direction, outcome string, d time.Duration) {
	m.FetchTotal.WithLabelValues(direction, outcome).Inc()
	m.FetchDuration.WithLabelValues(direction).Observe(d.Seconds())
}

func (m *Metrics) ObserveMerge(kind string, count, feedSize int) {
	if count > 0 {
		m.MergedItems.WithLabelValues(kind).Add(float64(count))
	}
	m.FeedItems.Set(float64(feedSize))
}

func (m *Metrics) ObserveReplace(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.ReplaceTotal.WithLabelValues(result).Inc()
}
