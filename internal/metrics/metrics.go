// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package metrics provides Prometheus instrumentation for the ingestion
// pipeline, the retention window, WebSocket fan-out, the HTTP API and the
// upstream circuit breaker. All collectors register on the default registry
// and are served on /metrics.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Ingestion Pipeline Metrics
	IngestOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ingest_submissions_total",
			Help: "Total number of alert submissions by outcome",
		},
		[]string{"outcome"}, // "accepted", "duplicate", "rejected"
	)

	IngestDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "ingest_duration_seconds",
			Help:    "Duration of the full ingestion pipeline per accepted alert",
			Buckets: []float64{0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05},
		},
	)

	// Dedup Index Metrics
	DedupIndexSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "dedup_index_fingerprints",
			Help: "Current number of tracked fingerprints",
		},
	)

	DedupEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "dedup_index_evictions_total",
			Help: "Total number of fingerprints evicted from the dedup index",
		},
	)

	// Retention Window Metrics
	RetentionSize = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "retention_window_alerts",
			Help: "Current number of alerts in the retention window",
		},
	)

	RetentionEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "retention_window_evictions_total",
			Help: "Total number of alerts dropped from the retention window",
		},
	)

	ClassifiedAlerts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "classified_alerts_total",
			Help: "Total number of accepted alerts per classification tag",
		},
		[]string{"tag"},
	)

	// WebSocket Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "websocket_connections",
			Help: "Current number of active WebSocket connections",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_messages_sent_total",
			Help: "Total number of WebSocket messages sent",
		},
	)

	WSClientsDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "websocket_clients_dropped_total",
			Help: "Total number of clients disconnected for full send queues",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_errors_total",
			Help: "Total number of WebSocket errors",
		},
		[]string{"error_type"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Circuit Breaker Metrics (upstream Wazuh API)
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)
)

// RecordIngest records one submission outcome.
func RecordIngest(outcome string) {
	IngestOutcomes.WithLabelValues(outcome).Inc()
}

// ObserveIngestDuration records the pipeline latency of an accepted alert.
func ObserveIngestDuration(duration time.Duration) {
	IngestDuration.Observe(duration.Seconds())
}

// SetDedupIndexSize updates the tracked-fingerprint gauge.
func SetDedupIndexSize(n int) {
	DedupIndexSize.Set(float64(n))
}

// RecordDedupEviction records fingerprints trimmed from the dedup index.
func RecordDedupEviction(n int) {
	DedupEvictions.Add(float64(n))
}

// SetRetentionSize updates the retention window gauge.
func SetRetentionSize(n int) {
	RetentionSize.Set(float64(n))
}

// RecordRetentionEviction records alerts dropped from the retention window.
func RecordRetentionEviction(n int) {
	RetentionEvictions.Add(float64(n))
}

// RecordClassification records the tags attached to an accepted alert.
func RecordClassification(tags []string) {
	for _, tag := range tags {
		ClassifiedAlerts.WithLabelValues(tag).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// RecordWSMessageSent records one message delivered to one subscriber.
func RecordWSMessageSent() {
	WSMessagesSent.Inc()
}

// RecordWSClientDropped records a subscriber disconnected for a full queue.
func RecordWSClientDropped() {
	WSClientsDropped.Inc()
}

// RecordWSError records a WebSocket error by type.
func RecordWSError(errorType string) {
	WSErrors.WithLabelValues(errorType).Inc()
}

// SetWSConnections updates the active-connection gauge.
func SetWSConnections(n int) {
	WSConnections.Set(float64(n))
}
