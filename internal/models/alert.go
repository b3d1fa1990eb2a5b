// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package models defines the canonical domain types shared across Sentryline:
// the normalized Alert record, aggregate statistics, health reporting, and the
// standardized API response envelope.
package models

import (
	"time"

	json "github.com/goccy/go-json"
)

// FieldUnknown is the sentinel substituted for any alert field absent from a
// submission. It participates in fingerprinting, so two submissions missing
// the same fields dedup against each other.
const FieldUnknown = "N/A"

// LevelUnknown is the sentinel rule level for submissions whose level is
// absent or not a valid integer. It never matches a severity threshold.
const LevelUnknown = -1

// Classification tags attached by the classifier. Tags are stable identifiers
// consumed by dashboards and downstream filters; treat them as a wire format.
const (
	TagHighSeverity  = "high-severity"
	TagBruteForce    = "brute-force"
	TagFileIntegrity = "file-integrity"
	TagAuthFailure   = "auth-failure"
)

// Alert is the canonical normalized alert record retained in the window,
// returned by queries, and broadcast to WebSocket subscribers.
//
// Timestamp is the submitter's claimed event time and is treated as an opaque
// string; ReceivedAt is the authoritative ingestion time assigned by this
// service and is monotonically non-decreasing in retention order.
type Alert struct {
	// ID uniquely identifies the alert within the retention window.
	// Submission-provided when present, otherwise derived from the
	// fingerprint.
	ID string `json:"id"`

	// Timestamp is the claimed event time from the submission, verbatim.
	Timestamp string `json:"timestamp"`

	RuleID          string `json:"rule_id"`
	RuleLevel       int    `json:"rule_level"`
	RuleDescription string `json:"rule_description"`

	AgentName string `json:"agent_name"`
	AgentIP   string `json:"agent_ip"`

	// Location identifies the log source that produced the event.
	Location string `json:"location"`

	// FullLog is the raw log line that triggered the rule, when provided.
	FullLog string `json:"full_log"`

	// Tags holds classification tags in rule-table order. Empty slice when
	// no rule matched.
	Tags []string `json:"tags"`

	// ReceivedAt is the ingestion time assigned by this service.
	ReceivedAt time.Time `json:"received_at"`

	// Raw preserves the original submission payload verbatim.
	Raw json.RawMessage `json:"raw,omitempty"`
}

// HasTag reports whether the alert carries the given classification tag.
func (a *Alert) HasTag(tag string) bool {
	for _, t := range a.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// AlertList is the query boundary payload: the filtered window slice plus the
// total number of matching alerts before limit truncation.
type AlertList struct {
	// Total counts alerts matching the filters, before the limit is applied.
	Total int `json:"total"`

	// Count is the number of alerts returned.
	Count int `json:"count"`

	// Alerts is ordered oldest to newest.
	Alerts []Alert `json:"alerts"`
}

// AlertStats is the statistics boundary payload.
type AlertStats struct {
	TotalAlerts int `json:"total_alerts"`

	// AlertsByLevel counts retained alerts per rule level. Keys are decimal
	// level strings; LevelUnknown appears as "-1".
	AlertsByLevel map[string]int `json:"alerts_by_level"`

	// AlertsByAgent counts retained alerts per agent name.
	AlertsByAgent map[string]int `json:"alerts_by_agent"`

	// LatestAlert is the most recently ingested alert, nil when the window
	// is empty.
	LatestAlert *Alert `json:"latest_alert,omitempty"`
}

// IngestAck acknowledges a webhook submission.
type IngestAck struct {
	// Outcome is "accepted" or "duplicate".
	Outcome string `json:"outcome"`

	// AlertID is set when the outcome is "accepted".
	AlertID string `json:"alert_id,omitempty"`
}

// ClearResult reports the effect of an administrative reset.
type ClearResult struct {
	AlertsCleared       int `json:"alerts_cleared"`
	FingerprintsCleared int `json:"fingerprints_cleared"`
}
