// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package models

import (
	"time"
)

// HealthStatus is the health boundary payload.
//
// Status is "healthy" when all components are operational and "degraded" when
// the optional upstream Wazuh API is configured but unreachable. The pipeline
// itself keeps ingesting while degraded.
type HealthStatus struct {
	Status              string          `json:"status"`
	Version             string          `json:"version"`
	UptimeSeconds       int64           `json:"uptime_seconds"`
	AlertsStored        int             `json:"alerts_stored"`
	FingerprintsTracked int             `json:"fingerprints_tracked"`
	ConnectedClients    int             `json:"connected_clients"`
	Upstream            *UpstreamHealth `json:"upstream,omitempty"`
	Timestamp           time.Time       `json:"timestamp"`
}

// UpstreamHealth reports connectivity to the external Wazuh manager API.
type UpstreamHealth struct {
	Connected bool `json:"connected"`

	// BreakerState is the circuit breaker state: closed, half-open or open.
	BreakerState string `json:"breaker_state"`

	LastChecked time.Time `json:"last_checked"`

	Error string `json:"error,omitempty"`
}
