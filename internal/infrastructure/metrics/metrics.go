package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Loveslices API Metrics
var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Request duration histogram
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"method", "endpoint"},
	)

	// Conversation transition counter
	TransitionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "conversation_transitions_total",
			Help:      "Total conversation lifecycle transitions",
		},
		[]string{"transition", "status"},
	)

	// Pairing counter
	PairingsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "pairings_total",
			Help:      "Total response submissions by pairing outcome",
		},
		[]string{"outcome"},
	)

	// Connected realtime channels gauge
	ChannelConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "channel_connections",
			Help:      "Currently connected realtime channels",
		},
	)

	// Realtime push events counter
	ChannelEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "channel_events_total",
			Help:      "Realtime push events by type and delivery result",
		},
		[]string{"type", "result"},
	)

	// DB query duration
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "loveslices",
			Subsystem: "api",
			Name:      "db_query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"query_type"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordTransition records a conversation lifecycle transition attempt
func RecordTransition(transition, status string) {
	TransitionsTotal.WithLabelValues(transition, status).Inc()
}

// RecordPairing records a response submission outcome
func RecordPairing(outcome string) {
	PairingsTotal.WithLabelValues(outcome).Inc()
}

// RecordChannelEvent records a realtime push attempt
func RecordChannelEvent(eventType, result string) {
	ChannelEventsTotal.WithLabelValues(eventType, result).Inc()
}

// SetChannelConnections updates the connected channels gauge
func SetChannelConnections(n int) {
	ChannelConnections.Set(float64(n))
}

// RecordDBQuery records a database query
func RecordDBQuery(queryType string, durationSec float64) {
	DBQueryDuration.WithLabelValues(queryType).Observe(durationSec)
}
