// Package metrics exposes Prometheus instruments for both ledger binaries.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels shared by the background pipeline counters
const (
	ResultPublished    = "published"
	ResultRetried      = "retried"
	ResultFailed       = "failed"
	ResultProjected    = "projected"
	ResultDeadLettered = "dead_lettered"
)

// Metrics owns a private registry. A nil *Metrics records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	vouchersPosted  prometheus.Counter
	outboxMessages  *prometheus.CounterVec
	projections     *prometheus.CounterVec
}

func New() *Metrics {
	registry := prometheus.NewRegistry()

	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gl_http_requests_total",
		Help: "HTTP requests by method, route and status code.",
	}, []string{"method", "route", "code"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gl_http_request_duration_seconds",
		Help:    "HTTP request latency by method and route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
	posted := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "gl_vouchers_posted_total",
		Help: "Vouchers committed to the ledger.",
	})
	outbox := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gl_outbox_messages_total",
		Help: "Outbox relay outcomes.",
	}, []string{"result"})
	projections := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "gl_journal_projections_total",
		Help: "Voucher events handled by the journal projector.",
	}, []string{"result"})

	registry.MustRegister(
		requests, duration, posted, outbox, projections,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return &Metrics{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestsTotal:   requests,
		requestDuration: duration,
		vouchersPosted:  posted,
		outboxMessages:  outbox,
		projections:     projections,
	}
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// GinMiddleware records request count and latency per matched route
func (m *Metrics) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}

		start := time.Now()
		c.Next()

		// Unmatched paths share one label so scanners cannot blow up cardinality
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.requestsTotal.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.requestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}
}

func (m *Metrics) VoucherPosted() {
	if m == nil {
		return
	}
	m.vouchersPosted.Inc()
}

func (m *Metrics) OutboxMessage(result string) {
	if m == nil {
		return
	}
	m.outboxMessages.WithLabelValues(result).Inc()
}

func (m *Metrics) Projection(result string) {
	if m == nil {
		return
	}
	m.projections.WithLabelValues(result).Inc()
}
