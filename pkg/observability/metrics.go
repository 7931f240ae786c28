package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const metricsNamespace = "masterscheduler"

// Result label values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultHit     = "hit"
	ResultMiss    = "miss"
)

// Metrics holds the Prometheus collectors of the service. A nil *Metrics
// records nothing, so components can be built without one in tests.
//
// Metrics:
//   - masterscheduler_http_requests_total{method,route,status}
//   - masterscheduler_http_request_duration_seconds{method,route}
//   - masterscheduler_upstream_requests_total{route,result}
//   - masterscheduler_upstream_request_duration_seconds{route}
//   - masterscheduler_upstream_cache_lookups_total{result}
//   - masterscheduler_circuit_breaker_state{breaker}
//   - masterscheduler_sync_runs_total{result}
//   - masterscheduler_sync_duration_seconds
//   - masterscheduler_sync_projects_total{result}
//   - masterscheduler_outbox_messages_total{result}
//   - masterscheduler_outbox_pending
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	UpstreamRequestsTotal   *prometheus.CounterVec
	UpstreamRequestDuration *prometheus.HistogramVec
	UpstreamCacheLookups    *prometheus.CounterVec
	BreakerState            *prometheus.GaugeVec

	SyncRunsTotal     *prometheus.CounterVec
	SyncDuration      prometheus.Histogram
	SyncProjectsTotal *prometheus.CounterVec

	OutboxMessagesTotal *prometheus.CounterVec
	OutboxPending       prometheus.Gauge
}

// NewMetrics creates the collectors on a fresh registry that also carries
// the Go runtime and process collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,

		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests served",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "http_request_duration_seconds",
				Help:      "Duration of HTTP requests in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),

		UpstreamRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_requests_total",
				Help:      "Total number of upstream record API requests",
			},
			[]string{"route", "result"},
		),
		UpstreamRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_request_duration_seconds",
				Help:      "Duration of upstream record API requests in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.01, 2, 10),
			},
			[]string{"route"},
		),
		UpstreamCacheLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "upstream_cache_lookups_total",
				Help:      "Upstream response cache lookups by result",
			},
			[]string{"result"},
		),
		BreakerState: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "circuit_breaker_state",
				Help:      "Circuit breaker state (0 closed, 1 half-open, 2 open)",
			},
			[]string{"breaker"},
		),

		SyncRunsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "sync_runs_total",
				Help:      "Total number of record sync runs",
			},
			[]string{"result"},
		),
		SyncDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: metricsNamespace,
				Name:      "sync_duration_seconds",
				Help:      "Duration of record sync runs in seconds",
				Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
			},
		),
		SyncProjectsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "sync_projects_total",
				Help:      "Projects mirrored by sync runs",
			},
			[]string{"result"},
		),

		OutboxMessagesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: metricsNamespace,
				Name:      "outbox_messages_total",
				Help:      "Outbox messages processed by result",
			},
			[]string{"result"},
		),
		OutboxPending: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: metricsNamespace,
				Name:      "outbox_pending",
				Help:      "Outbox messages waiting to be published",
			},
		),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one served request.
func (m *Metrics) ObserveHTTPRequest(method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// ObserveUpstreamRequest records one upstream call.
func (m *Metrics) ObserveUpstreamRequest(route string, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.UpstreamRequestsTotal.WithLabelValues(route, resultOf(err)).Inc()
	m.UpstreamRequestDuration.WithLabelValues(route).Observe(duration.Seconds())
}

// RecordCacheLookup records an upstream cache hit or miss.
func (m *Metrics) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	result := ResultMiss
	if hit {
		result = ResultHit
	}
	m.UpstreamCacheLookups.WithLabelValues(result).Inc()
}

// SetBreakerState records a breaker's state by name: "closed",
// "half-open" or "open".
func (m *Metrics) SetBreakerState(name, state string) {
	if m == nil {
		return
	}
	var value float64
	switch state {
	case "half-open":
		value = 1
	case "open":
		value = 2
	}
	m.BreakerState.WithLabelValues(name).Set(value)
}

// ObserveSync records a finished sync run.
func (m *Metrics) ObserveSync(synced, failed int, err error, duration time.Duration) {
	if m == nil {
		return
	}
	m.SyncRunsTotal.WithLabelValues(resultOf(err)).Inc()
	m.SyncDuration.Observe(duration.Seconds())
	m.SyncProjectsTotal.WithLabelValues(ResultSuccess).Add(float64(synced))
	m.SyncProjectsTotal.WithLabelValues(ResultError).Add(float64(failed))
}

// RecordOutboxMessage records a published ("success"), failed ("error") or
// dead-lettered ("dead") outbox message.
func (m *Metrics) RecordOutboxMessage(result string) {
	if m == nil {
		return
	}
	m.OutboxMessagesTotal.WithLabelValues(result).Inc()
}

// SetOutboxPending records the outbox backlog.
func (m *Metrics) SetOutboxPending(n int64) {
	if m == nil {
		return
	}
	m.OutboxPending.Set(float64(n))
}

func resultOf(err error) string {
	if err != nil {
		return ResultError
	}
	return ResultSuccess
}
