// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordIngest(t *testing.T) {
	before := testutil.ToFloat64(IngestOutcomes.WithLabelValues("accepted"))

	RecordIngest("accepted")
	RecordIngest("accepted")
	RecordIngest("duplicate")
	RecordIngest("rejected")

	after := testutil.ToFloat64(IngestOutcomes.WithLabelValues("accepted"))
	if after-before != 2 {
		t.Errorf("expected accepted counter to rise by 2, got %f", after-before)
	}
}

func TestObserveIngestDuration(t *testing.T) {
	// Histogram observation should not panic across the bucket range
	ObserveIngestDuration(50 * time.Microsecond)
	ObserveIngestDuration(time.Millisecond)
	ObserveIngestDuration(100 * time.Millisecond)
}

func TestDedupGauges(t *testing.T) {
	SetDedupIndexSize(742)
	if got := testutil.ToFloat64(DedupIndexSize); got != 742 {
		t.Errorf("expected dedup index gauge 742, got %f", got)
	}

	before := testutil.ToFloat64(DedupEvictions)
	RecordDedupEviction(500)
	if got := testutil.ToFloat64(DedupEvictions) - before; got != 500 {
		t.Errorf("expected eviction counter to rise by 500, got %f", got)
	}
}

func TestRetentionGauges(t *testing.T) {
	SetRetentionSize(100)
	if got := testutil.ToFloat64(RetentionSize); got != 100 {
		t.Errorf("expected retention gauge 100, got %f", got)
	}

	before := testutil.ToFloat64(RetentionEvictions)
	RecordRetentionEviction(1)
	RecordRetentionEviction(1)
	if got := testutil.ToFloat64(RetentionEvictions) - before; got != 2 {
		t.Errorf("expected retention evictions to rise by 2, got %f", got)
	}
}

func TestRecordClassification(t *testing.T) {
	before := testutil.ToFloat64(ClassifiedAlerts.WithLabelValues("brute_force"))

	RecordClassification([]string{"brute_force", "high_severity"})
	RecordClassification([]string{"brute_force"})
	RecordClassification(nil)

	after := testutil.ToFloat64(ClassifiedAlerts.WithLabelValues("brute_force"))
	if after-before != 2 {
		t.Errorf("expected brute_force counter to rise by 2, got %f", after-before)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		endpoint   string
		statusCode string
		duration   time.Duration
	}{
		{"successful GET", "GET", "/api/v1/alerts", "200", 5 * time.Millisecond},
		{"webhook POST", "POST", "/webhook/wazuh", "200", 2 * time.Millisecond},
		{"client error", "GET", "/api/v1/alerts", "400", time.Millisecond},
		{"not found", "GET", "/api/v1/unknown", "404", time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			RecordAPIRequest(tt.method, tt.endpoint, tt.statusCode, tt.duration)
			after := testutil.ToFloat64(APIRequestsTotal.WithLabelValues(tt.method, tt.endpoint, tt.statusCode))
			if after-before != 1 {
				t.Errorf("expected counter to rise by 1, got %f", after-before)
			}
		})
	}
}

func TestTrackActiveRequest(t *testing.T) {
	base := testutil.ToFloat64(APIActiveRequests)

	TrackActiveRequest(true)
	TrackActiveRequest(true)
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 2 {
		t.Errorf("expected 2 active requests, got %f", got)
	}

	TrackActiveRequest(false)
	TrackActiveRequest(false)
	if got := testutil.ToFloat64(APIActiveRequests) - base; got != 0 {
		t.Errorf("expected 0 active requests, got %f", got)
	}
}

func TestWebSocketMetrics(t *testing.T) {
	SetWSConnections(3)
	if got := testutil.ToFloat64(WSConnections); got != 3 {
		t.Errorf("expected 3 connections, got %f", got)
	}

	sentBefore := testutil.ToFloat64(WSMessagesSent)
	RecordWSMessageSent()
	if got := testutil.ToFloat64(WSMessagesSent) - sentBefore; got != 1 {
		t.Errorf("expected messages sent to rise by 1, got %f", got)
	}

	droppedBefore := testutil.ToFloat64(WSClientsDropped)
	RecordWSClientDropped()
	if got := testutil.ToFloat64(WSClientsDropped) - droppedBefore; got != 1 {
		t.Errorf("expected dropped clients to rise by 1, got %f", got)
	}

	RecordWSError("write_failed")
	if got := testutil.ToFloat64(WSErrors.WithLabelValues("write_failed")); got < 1 {
		t.Errorf("expected write_failed error recorded, got %f", got)
	}
}

func TestCircuitBreakerMetrics(t *testing.T) {
	CircuitBreakerState.WithLabelValues("wazuh-manager-api").Set(2)
	if got := testutil.ToFloat64(CircuitBreakerState.WithLabelValues("wazuh-manager-api")); got != 2 {
		t.Errorf("expected breaker state 2, got %f", got)
	}

	before := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("wazuh-manager-api", "failure"))
	CircuitBreakerRequests.WithLabelValues("wazuh-manager-api", "failure").Inc()
	if got := testutil.ToFloat64(CircuitBreakerRequests.WithLabelValues("wazuh-manager-api", "failure")) - before; got != 1 {
		t.Errorf("expected failure counter to rise by 1, got %f", got)
	}

	CircuitBreakerTransitions.WithLabelValues("wazuh-manager-api", "closed", "open").Inc()
	if got := testutil.ToFloat64(CircuitBreakerTransitions.WithLabelValues("wazuh-manager-api", "closed", "open")); got < 1 {
		t.Errorf("expected transition recorded, got %f", got)
	}
}

func TestConcurrentMetricRecording(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				RecordIngest("accepted")
				RecordClassification([]string{"high_severity"})
				RecordWSMessageSent()
				TrackActiveRequest(true)
				TrackActiveRequest(false)
			}
		}()
	}
	wg.Wait()
}

func TestMetricsRegistration(t *testing.T) {
	// Test that all metrics can be collected without panic
	metrics := []prometheus.Collector{
		IngestOutcomes,
		IngestDuration,
		DedupIndexSize,
		DedupEvictions,
		RetentionSize,
		RetentionEvictions,
		ClassifiedAlerts,
		WSConnections,
		WSMessagesSent,
		WSClientsDropped,
		WSErrors,
		APIRequestsTotal,
		APIRequestDuration,
		APIActiveRequests,
		CircuitBreakerState,
		CircuitBreakerRequests,
		CircuitBreakerTransitions,
	}

	// Verify each metric can be described
	for _, m := range metrics {
		ch := make(chan *prometheus.Desc, 10)
		m.Describe(ch)
		close(ch)

		count := 0
		for range ch {
			count++
		}
		if count == 0 {
			t.Errorf("Metric has no descriptors")
		}
	}
}

// TestMetricGathering tests that metrics can be gathered using testutil
func TestMetricGathering(t *testing.T) {
	RecordIngest("accepted")
	RecordAPIRequest("GET", "/test", "200", time.Millisecond)

	// Verify we can lint the metrics (checks for consistency issues)
	problems, err := testutil.GatherAndLint(prometheus.DefaultGatherer)
	if err != nil {
		t.Logf("Lint errors (may be expected): %v", err)
	}
	for _, p := range problems {
		t.Logf("Metric lint problem: %s", p.Text)
	}
}

func BenchmarkRecordIngest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordIngest("accepted")
	}
}

func BenchmarkRecordAPIRequest(b *testing.B) {
	for i := 0; i < b.N; i++ {
		RecordAPIRequest("GET", "/api/v1/alerts", "200", 25*time.Millisecond)
	}
}
