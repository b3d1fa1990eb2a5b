// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package api

import (
	"net/http"
	"time"

	"github.com/sentryline/sentryline/internal/models"
)

// Health reports overall service health, including upstream Wazuh manager
// connectivity when one is configured. The pipeline keeps ingesting even
// while degraded, so a degraded status still returns 200.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status := "healthy"

	var upstream *models.UpstreamHealth
	if h.upstream != nil {
		upstream = h.upstream.Health()
		if !upstream.Connected {
			status = "degraded"
		}
	}

	clients := 0
	if h.wsHub != nil {
		clients = h.wsHub.GetClientCount()
	}

	health := models.HealthStatus{
		Status:              status,
		Version:             Version,
		UptimeSeconds:       int64(time.Since(h.startTime).Seconds()),
		AlertsStored:        h.store.Len(),
		FingerprintsTracked: h.index.Len(),
		ConnectedClients:    clients,
		Upstream:            upstream,
		Timestamp:           time.Now(),
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   health,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive is the liveness probe: 200 whenever the process is up,
// regardless of dependencies.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady is the readiness probe. The store and index are in-process,
// so the service is ready as soon as it is serving; the optional upstream
// does not gate readiness because ingestion works without it.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "ready",
		Data: map[string]interface{}{
			"ready_to_serve": true,
			"alerts_stored":  h.store.Len(),
			"uptime":         time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
