package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all Prometheus metrics.
// A nil *Registry is valid and records nothing.
type Registry struct {
	*prometheus.Registry

	// HTTP metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight prometheus.Gauge

	// Business metrics
	routeDecisions  *prometheus.CounterVec
	vendorRequests  *prometheus.CounterVec
	vendorDuration  *prometheus.HistogramVec
	fallbacks       *prometheus.CounterVec
	tickWaits       *prometheus.CounterVec
	vendorSessionUp prometheus.Gauge
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),

		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		httpRequestsInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "http_requests_in_flight",
				Help: "Number of HTTP requests currently in flight",
			},
		),
	}

	reg.MustRegister(r.httpRequestsTotal)
	reg.MustRegister(r.httpRequestDuration)
	reg.MustRegister(r.httpRequestsInFlight)

	// Business metrics
	r.routeDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegate_route_decisions_total",
			Help: "Total number of routing decisions by endpoint and source",
		},
		[]string{"endpoint", "source"},
	)
	r.vendorRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegate_vendor_requests_total",
			Help: "Total number of vendor calls by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)
	r.vendorDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotegate_vendor_request_duration_seconds",
			Help:    "Vendor call duration in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
		},
		[]string{"endpoint"},
	)
	r.fallbacks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegate_fallbacks_total",
			Help: "Total number of responses served from a fallback value",
		},
		[]string{"endpoint", "reason"},
	)
	r.tickWaits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotegate_tick_waits_total",
			Help: "Total number of bounded waits for a first tick",
		},
		[]string{"outcome"},
	)
	r.vendorSessionUp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "quotegate_vendor_session_up",
			Help: "1 when the vendor live session is connected",
		},
	)

	reg.MustRegister(r.routeDecisions)
	reg.MustRegister(r.vendorRequests)
	reg.MustRegister(r.vendorDuration)
	reg.MustRegister(r.fallbacks)
	reg.MustRegister(r.tickWaits)
	reg.MustRegister(r.vendorSessionUp)

	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.Registry, promhttp.HandlerOpts{})
}

// RecordRequest records metrics for an HTTP request.
func (r *Registry) RecordRequest(method, path string, status int, duration float64) {
	if r == nil {
		return
	}
	statusStr := statusToString(status)
	r.httpRequestsTotal.WithLabelValues(method, path, statusStr).Inc()
	r.httpRequestDuration.WithLabelValues(method, path).Observe(duration)
}

// InFlightInc increments in-flight requests.
func (r *Registry) InFlightInc() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Inc()
}

// InFlightDec decrements in-flight requests.
func (r *Registry) InFlightDec() {
	if r == nil {
		return
	}
	r.httpRequestsInFlight.Dec()
}

// RecordRoute records which source served an endpoint call.
func (r *Registry) RecordRoute(endpoint, source string) {
	if r == nil {
		return
	}
	r.routeDecisions.WithLabelValues(endpoint, source).Inc()
}

// RecordVendorCall records the outcome and latency of one vendor call.
func (r *Registry) RecordVendorCall(endpoint, outcome string, duration float64) {
	if r == nil {
		return
	}
	r.vendorRequests.WithLabelValues(endpoint, outcome).Inc()
	r.vendorDuration.WithLabelValues(endpoint).Observe(duration)
}

// RecordFallback records a response served from a fallback value.
func (r *Registry) RecordFallback(endpoint, reason string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(endpoint, reason).Inc()
}

// RecordTickWait records whether a bounded tick wait found a tick.
func (r *Registry) RecordTickWait(outcome string) {
	if r == nil {
		return
	}
	r.tickWaits.WithLabelValues(outcome).Inc()
}

// SetSessionUp sets the vendor session gauge.
func (r *Registry) SetSessionUp(up bool) {
	if r == nil {
		return
	}
	if up {
		r.vendorSessionUp.Set(1)
	} else {
		r.vendorSessionUp.Set(0)
	}
}

func statusToString(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	case status >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
