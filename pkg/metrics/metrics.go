package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all production ledger metrics
type Metrics struct {
	serviceName string
	registry    *prometheus.Registry

	// HTTP metrics
	HTTPRequestsTotal    *prometheus.CounterVec
	HTTPRequestDuration  *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Kafka metrics
	KafkaEventsPublished *prometheus.CounterVec
	KafkaPublishDuration *prometheus.HistogramVec

	// Business metrics
	LedgerEntriesWritten *prometheus.CounterVec
	LotsClosed           *prometheus.CounterVec
	PiecesPacked         *prometheus.CounterVec
	PiecesDispatched     *prometheus.CounterVec
	IssuesCreated        *prometheus.CounterVec
	ReturnsProcessed     *prometheus.CounterVec
}

// Config holds metrics configuration
type Config struct {
	ServiceName string
	Namespace   string
}

// DefaultConfig returns default metrics configuration
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName: serviceName,
		Namespace:   "production",
	}
}

// New creates a new Metrics instance
func New(config *Config) *Metrics {
	registry := prometheus.NewRegistry()

	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	m := &Metrics{
		serviceName: config.ServiceName,
		registry:    registry,
	}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"service", "method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"service", "method", "path"},
	)

	m.HTTPRequestsInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Name:        "http_requests_in_flight",
			Help:        "Number of HTTP requests currently being processed",
			ConstLabels: prometheus.Labels{"service": config.ServiceName},
		},
	)

	m.KafkaEventsPublished = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "kafka_events_published_total",
			Help:      "Total number of Kafka events published",
		},
		[]string{"service", "topic", "event_type", "status"},
	)

	m.KafkaPublishDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: config.Namespace,
			Name:      "kafka_publish_duration_seconds",
			Help:      "Kafka publish duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"service", "topic"},
	)

	m.LedgerEntriesWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "ledger_entries_written_total",
			Help:      "Total number of ledger entries written",
		},
		[]string{"service", "ledger", "action"},
	)

	m.LotsClosed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "lots_closed_total",
			Help:      "Total number of WIP lots auto-closed",
		},
		[]string{"service"},
	)

	m.PiecesPacked = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "pieces_packed_total",
			Help:      "Total pieces packed into finished goods",
		},
		[]string{"service", "warehouse"},
	)

	m.PiecesDispatched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "pieces_dispatched_total",
			Help:      "Total pieces dispatched",
		},
		[]string{"service", "warehouse"},
	)

	m.IssuesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "issues_created_total",
			Help:      "Total number of issue-to-production documents created",
		},
		[]string{"service", "process"},
	)

	m.ReturnsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: config.Namespace,
			Name:      "returns_processed_total",
			Help:      "Total number of dispatch returns processed",
		},
		[]string{"service", "route"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.HTTPRequestsInFlight,
		m.KafkaEventsPublished,
		m.KafkaPublishDuration,
		m.LedgerEntriesWritten,
		m.LotsClosed,
		m.PiecesPacked,
		m.PiecesDispatched,
		m.IssuesCreated,
		m.ReturnsProcessed,
	)

	return m
}

// Handler returns an HTTP handler for metrics endpoint
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
}

// Registry returns the prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	statusStr := strconv.Itoa(status)
	m.HTTPRequestsTotal.WithLabelValues(m.serviceName, method, path, statusStr).Inc()
	m.HTTPRequestDuration.WithLabelValues(m.serviceName, method, path).Observe(duration.Seconds())
}

// RecordKafkaPublish records a Kafka publish event
func (m *Metrics) RecordKafkaPublish(topic, eventType string, success bool, duration time.Duration) {
	status := "success"
	if !success {
		status = "error"
	}
	m.KafkaEventsPublished.WithLabelValues(m.serviceName, topic, eventType, status).Inc()
	m.KafkaPublishDuration.WithLabelValues(m.serviceName, topic).Observe(duration.Seconds())
}

// RecordLedgerEntry records a ledger entry write
func (m *Metrics) RecordLedgerEntry(ledger, action string) {
	m.LedgerEntriesWritten.WithLabelValues(m.serviceName, ledger, action).Inc()
}

// RecordLotClosed records a lot auto-close
func (m *Metrics) RecordLotClosed() {
	m.LotsClosed.WithLabelValues(m.serviceName).Inc()
}

// RecordPiecesPacked records packed pieces
func (m *Metrics) RecordPiecesPacked(warehouse string, count int) {
	m.PiecesPacked.WithLabelValues(m.serviceName, warehouse).Add(float64(count))
}

// RecordPiecesDispatched records dispatched pieces
func (m *Metrics) RecordPiecesDispatched(warehouse string, count int) {
	m.PiecesDispatched.WithLabelValues(m.serviceName, warehouse).Add(float64(count))
}

// RecordIssueCreated records an issue creation
func (m *Metrics) RecordIssueCreated(process string) {
	m.IssuesCreated.WithLabelValues(m.serviceName, process).Inc()
}

// RecordReturnProcessed records a processed return
func (m *Metrics) RecordReturnProcessed(route string) {
	m.ReturnsProcessed.WithLabelValues(m.serviceName, route).Inc()
}

// IncrementHTTPRequestsInFlight increments in-flight requests
func (m *Metrics) IncrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Inc()
}

// DecrementHTTPRequestsInFlight decrements in-flight requests
func (m *Metrics) DecrementHTTPRequestsInFlight() {
	m.HTTPRequestsInFlight.Dec()
}
