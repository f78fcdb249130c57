// Package metrics exposes Prometheus instruments for HTTP traffic and stock
// reconciliation.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	appinv "github.com/hazchem/backend/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

const namespace = "hazchem"

// HTTPDurationBuckets are the latency buckets, in seconds
var HTTPDurationBuckets = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10}

// Registry owns a private Prometheus registry and every instrument the
// service reports.
//
// Safe for concurrent use.
type Registry struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	inFlight        prometheus.Gauge

	movements      *prometheus.CounterVec
	movementAmount *prometheus.CounterVec
	rejected       prometheus.Counter
	gaps           prometheus.Counter
}

// New creates a Registry with Go runtime and process collectors attached
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		}, []string{"method", "route", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency in seconds.",
			Buckets:   HTTPDurationBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Number of HTTP requests being served.",
		}),
		movements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "adjustments_total",
			Help:      "Applied stock adjustments by direction.",
		}, []string{"direction"}),
		movementAmount: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "adjusted_amount_total",
			Help:      "Quantity moved in or out of stock.",
		}, []string{"direction"}),
		rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "rejected_total",
			Help:      "Decreases rejected for insufficient stock.",
		}),
		gaps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "stock",
			Name:      "reconciliation_gaps_total",
			Help:      "Record writes whose inventory adjustment failed and were rolled back.",
		}),
	}

	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.requestsTotal,
		r.requestDuration,
		r.inFlight,
		r.movements,
		r.movementAmount,
		r.rejected,
		r.gaps,
	)
	return r
}

// Handler serves the registry in the Prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Gatherer exposes the registry for tests and custom exporters
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// RequestStarted marks a request as in flight
func (r *Registry) RequestStarted() {
	r.inFlight.Inc()
}

// RequestFinished records a served request. route is the matched route
// pattern, never the raw path, to keep label cardinality bounded.
func (r *Registry) RequestFinished(method, route string, status int, elapsed time.Duration) {
	r.inFlight.Dec()
	r.requestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// StockIncreased implements inventory.Metrics
func (r *Registry) StockIncreased(amount decimal.Decimal) {
	r.movements.WithLabelValues("in").Inc()
	r.movementAmount.WithLabelValues("in").Add(amount.InexactFloat64())
}

// StockDecreased implements inventory.Metrics
func (r *Registry) StockDecreased(amount decimal.Decimal) {
	r.movements.WithLabelValues("out").Inc()
	r.movementAmount.WithLabelValues("out").Add(amount.InexactFloat64())
}

// StockRejected implements inventory.Metrics
func (r *Registry) StockRejected() {
	r.rejected.Inc()
}

// ReconciliationGap implements inventory.Metrics
func (r *Registry) ReconciliationGap() {
	r.gaps.Inc()
}

var _ appinv.Metrics = (*Registry)(nil)
