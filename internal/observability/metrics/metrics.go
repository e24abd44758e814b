// Package metrics exposes prometheus instruments for the metering engine.
package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes application-level instruments.
type Metrics struct {
	creditGrants    *prometheus.CounterVec
	creditDenials   *prometheus.CounterVec
	storageDenials  *prometheus.CounterVec
	webhookOutcomes *prometheus.CounterVec
	httpRequests    *prometheus.CounterVec
	httpDuration    *prometheus.HistogramVec
}

// New registers all instruments against the provided registerer.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		creditGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recv_credit_grants_total",
			Help: "Credit grants by tier and action.",
		}, []string{"tier", "action"}),
		creditDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recv_credit_denials_total",
			Help: "Credit denials by tier.",
		}, []string{"tier"}),
		storageDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recv_storage_denials_total",
			Help: "Resource creation denials by tier and resource type.",
		}, []string{"tier", "resource_type"}),
		webhookOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recv_payment_webhook_outcomes_total",
			Help: "Payment notification outcomes.",
		}, []string{"outcome"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recv_http_requests_total",
			Help: "HTTP requests by route, method and status.",
		}, []string{"route", "method", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "recv_http_request_duration_seconds",
			Help:    "HTTP request latency by route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}

	reg.MustRegister(
		m.creditGrants,
		m.creditDenials,
		m.storageDenials,
		m.webhookOutcomes,
		m.httpRequests,
		m.httpDuration,
	)

	return m
}

func (m *Metrics) CreditGranted(tier, action string) {
	if m == nil {
		return
	}
	m.creditGrants.WithLabelValues(tier, action).Inc()
}

func (m *Metrics) CreditDenied(tier string) {
	if m == nil {
		return
	}
	m.creditDenials.WithLabelValues(tier).Inc()
}

func (m *Metrics) StorageDenied(tier, resourceType string) {
	if m == nil {
		return
	}
	m.storageDenials.WithLabelValues(tier, resourceType).Inc()
}

func (m *Metrics) WebhookOutcome(outcome string) {
	if m == nil {
		return
	}
	m.webhookOutcomes.WithLabelValues(outcome).Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if m == nil {
			return
		}
		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.httpRequests.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
	}
}
