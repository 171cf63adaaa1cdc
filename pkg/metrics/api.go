package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// APIMetrics records request-level and order-level counters for the HTTP service.
type APIMetrics struct {
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	ordersPlaced    prometheus.Counter
	ordersRejected  *prometheus.CounterVec
}

// NewAPIMetrics registers the API metrics on the provided registerer.
func NewAPIMetrics(reg prometheus.Registerer) *APIMetrics {
	if reg == nil {
		return &APIMetrics{}
	}
	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})
	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total HTTP requests by route, method, and status class.",
	}, []string{"route", "method", "status"})
	ordersPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "orders_placed_total",
		Help: "Successfully placed orders.",
	})
	ordersRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_rejected_total",
		Help: "Rejected order placements by reason.",
	}, []string{"reason"})
	reg.MustRegister(requestDuration, requestTotal, ordersPlaced, ordersRejected)
	return &APIMetrics{
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		ordersPlaced:    ordersPlaced,
		ordersRejected:  ordersRejected,
	}
}

// ObserveRequest records one completed HTTP request.
func (m *APIMetrics) ObserveRequest(route, method, status string, duration time.Duration) {
	if m == nil || m.requestDuration == nil {
		return
	}
	route = normalizeLabel(route)
	m.requestDuration.WithLabelValues(route, method).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(route, method, status).Inc()
}

// IncOrderPlaced increments the placed-order counter.
func (m *APIMetrics) IncOrderPlaced() {
	if m == nil || m.ordersPlaced == nil {
		return
	}
	m.ordersPlaced.Inc()
}

// IncOrderRejected increments the rejected-order counter for the named reason.
func (m *APIMetrics) IncOrderRejected(reason string) {
	if m == nil || m.ordersRejected == nil {
		return
	}
	m.ordersRejected.WithLabelValues(normalizeLabel(reason)).Inc()
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
