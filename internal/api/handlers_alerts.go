// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package api

import (
	"io"
	"net/http"
	"time"

	"github.com/sentryline/sentryline/internal/ingest"
	"github.com/sentryline/sentryline/internal/logging"
	"github.com/sentryline/sentryline/internal/models"
	"github.com/sentryline/sentryline/internal/store"
	"github.com/sentryline/sentryline/internal/validation"
)

// maxWebhookBody caps webhook payload size. Wazuh alerts are a few KB;
// anything near this limit is malformed or hostile.
const maxWebhookBody = 1 << 20

// Webhook receives an alert submission from the Wazuh manager.
//
// Accepted alerts return the derived alert ID. Duplicates are acknowledged
// with 200 so the manager does not retry them; only undecodable payloads
// get a 400.
func (h *Handler) Webhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBody+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read request body", err)
		return
	}
	if len(payload) > maxWebhookBody {
		respondError(w, http.StatusRequestEntityTooLarge, "INVALID_REQUEST", "Payload too large", nil)
		return
	}

	outcome, alert, err := h.pipeline.Ingest(r.Context(), payload)
	if err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_REQUEST", "Payload is not a non-empty JSON object", err)
		return
	}

	ack := models.IngestAck{Outcome: string(outcome)}
	if outcome == ingest.OutcomeAccepted && alert != nil {
		ack.AlertID = alert.ID
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   ack,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// Alerts returns the retained alerts, most recent last, filtered by the
// optional limit, level and agent query parameters.
func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	query := validation.AlertQuery{
		Limit:    getIntParam(r, "limit", store.DefaultQueryLimit),
		MinLevel: getIntParam(r, "level", -1),
		Agent:    r.URL.Query().Get("agent"),
	}
	if apiErr := validateRequest(&query); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	list := h.store.Query(store.QueryFilter{
		Limit:    query.Limit,
		MinLevel: query.MinLevel,
		Agent:    query.Agent,
	})

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   list,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(startTime).Milliseconds(),
		},
	})
}

// AlertStats returns aggregate counts over the current retention window.
func (h *Handler) AlertStats(w http.ResponseWriter, r *http.Request) {
	startTime := time.Now()

	stats := h.store.Stats()

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   stats,
		Metadata: models.Metadata{
			Timestamp:   time.Now(),
			QueryTimeMS: time.Since(startTime).Milliseconds(),
		},
	})
}

// AlertsClear resets the retention window and the dedup index.
// Connected WebSocket clients stay connected; they simply see an empty
// window until new alerts arrive.
func (h *Handler) AlertsClear(w http.ResponseWriter, r *http.Request) {
	result := models.ClearResult{
		AlertsCleared:       h.store.Clear(),
		FingerprintsCleared: h.index.Clear(),
	}

	logging.Info().
		Int("alerts_cleared", result.AlertsCleared).
		Int("fingerprints_cleared", result.FingerprintsCleared).
		Msg("Alert state cleared")

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   result,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
