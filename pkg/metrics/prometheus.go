// Package metrics provides Prometheus metrics for the Summit Buddy service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcomes recorded by ChatRequest.
const (
	OutcomeOK            = "ok"
	OutcomeRateLimited   = "rate_limited"
	OutcomeUpstreamBusy  = "upstream_busy"
	OutcomeTooLong       = "too_long"
	OutcomeMisconfigured = "misconfigured"
	OutcomeError         = "error"
	OutcomeStreamError   = "stream_error"
	OutcomeCancelled     = "cancelled"
)

// Rejection sources recorded by RateLimitRejected.
const (
	SourceLocal    = "local"
	SourceUpstream = "upstream"
)

// Manager owns every metric of the service. A nil *Manager is valid and
// records nothing.
type Manager struct {
	namespace        string
	histogramBuckets []float64
	registry         *prometheus.Registry

	chatRequests        *prometheus.CounterVec
	rateLimitRejections *prometheus.CounterVec
	chatTokens          *prometheus.CounterVec
	streamDuration      prometheus.Histogram
	entityMatches       *prometheus.CounterVec
	datasetEntities     *prometheus.GaugeVec

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// NewManager creates a manager on its own registry, so /metrics only exposes
// what the service registers plus the Go runtime collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "summit_buddy",
		histogramBuckets: []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
	}

	for _, opt := range opts {
		opt(m)
	}
	if m.registry == nil {
		m.registry = prometheus.NewRegistry()
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.chatRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "chat_requests_total",
		Help:      "Chat requests by outcome",
	}, []string{"outcome"})

	m.rateLimitRejections = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "rate_limit_rejections_total",
		Help:      "Requests rejected by the local limiter or the upstream provider",
	}, []string{"source"})

	m.chatTokens = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "chat_tokens_total",
		Help:      "Model tokens consumed, by direction",
	}, []string{"direction"})

	m.streamDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "chat_stream_duration_seconds",
		Help:      "Time from request admission to the end of the reply stream",
		Buckets:   m.histogramBuckets,
	})

	m.entityMatches = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "entity_matches_total",
		Help:      "Entities recognised in assistant replies, by type",
	}, []string{"type"})

	m.datasetEntities = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Name:      "dataset_entities",
		Help:      "Entities loaded into the index, by type",
	}, []string{"type"})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Name:      "http_requests_total",
		Help:      "HTTP requests by route, method and status",
	}, []string{"path", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency by route",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path", "method"})
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus text format.
func (m *Manager) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Manager) ChatRequest(outcome string) {
	if m == nil {
		return
	}
	m.chatRequests.WithLabelValues(outcome).Inc()
}

func (m *Manager) RateLimitRejected(source string) {
	if m == nil {
		return
	}
	m.rateLimitRejections.WithLabelValues(source).Inc()
}

func (m *Manager) Tokens(input, output int) {
	if m == nil {
		return
	}
	m.chatTokens.WithLabelValues("input").Add(float64(input))
	m.chatTokens.WithLabelValues("output").Add(float64(output))
}

func (m *Manager) StreamDuration(d time.Duration) {
	if m == nil {
		return
	}
	m.streamDuration.Observe(d.Seconds())
}

func (m *Manager) EntityMatches(kind string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.entityMatches.WithLabelValues(kind).Add(float64(n))
}

func (m *Manager) DatasetSize(kind string, n int) {
	if m == nil {
		return
	}
	m.datasetEntities.WithLabelValues(kind).Set(float64(n))
}

func (m *Manager) HTTPRequest(path, method string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(path, method).Observe(d.Seconds())
}
