// Package observability holds the Prometheus collectors and the OpenTelemetry
// tracer setup used by the server.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "communityfeed"

// Metrics groups the server's collectors. All of them are registered on the
// registry passed to NewMetrics, so tests can use a private one.
type Metrics struct {
	registry *prometheus.Registry

	// HTTPRequests counts finished requests.
	// Labels: method, route (gin route template), status
	HTTPRequests *prometheus.CounterVec

	// HTTPDuration measures request latency in seconds.
	// Labels: method, route
	HTTPDuration *prometheus.HistogramVec

	HTTPInFlight prometheus.Gauge

	// LikesToggled counts successful toggles.
	// Labels: result (liked, unliked)
	LikesToggled *prometheus.CounterVec

	PostsCreated    prometheus.Counter
	CommentsCreated prometheus.Counter
	Uploads         prometheus.Counter

	// DBUp is 1 while the last health probe reached the database.
	DBUp prometheus.Gauge
}

func NewMetrics(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		HTTPRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		HTTPDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"method", "route"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "HTTP requests currently being served.",
		}),
		LikesToggled: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "likes_toggled_total",
			Help:      "Like toggles by resulting state.",
		}, []string{"result"}),
		PostsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "posts_created_total",
			Help:      "Posts created.",
		}),
		CommentsCreated: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "comments_created_total",
			Help:      "Comments created.",
		}),
		Uploads: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uploads_total",
			Help:      "Images stored through the upload endpoint.",
		}),
		DBUp: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "database_up",
			Help:      "Whether the last database probe succeeded.",
		}),
	}
}

// NewRegistry returns a registry preloaded with the Go runtime and process
// collectors.
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// RecordLike counts one toggle outcome.
func (m *Metrics) RecordLike(liked bool) {
	result := "unliked"
	if liked {
		result = "liked"
	}
	m.LikesToggled.WithLabelValues(result).Inc()
}

func (m *Metrics) SetDBUp(up bool) {
	if up {
		m.DBUp.Set(1)
		return
	}
	m.DBUp.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
