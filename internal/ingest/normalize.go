// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package ingest

import (
	"math"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/sentryline/sentryline/internal/models"
)

// Normalize maps a decoded submission onto the canonical Alert. Every absent
// or malformed field gets a sentinel rather than failing the submission: the
// pipeline accepts anything that decodes to a non-empty JSON object.
//
// The id is the submission's own when present, otherwise derived from the
// fingerprint. ReceivedAt is left zero; the pipeline assigns it at commit so
// a single clock ordering covers the whole window.
func Normalize(payload map[string]interface{}, raw []byte, fingerprint string) models.Alert {
	rule := objectField(payload, "rule")
	agent := objectField(payload, "agent")

	id := stringField(payload, "id")
	if id == models.FieldUnknown || id == "" {
		id = DeriveAlertID(fingerprint)
	}

	rawCopy := make([]byte, len(raw))
	copy(rawCopy, raw)

	return models.Alert{
		ID:              id,
		Timestamp:       stringField(payload, "timestamp"),
		RuleID:          stringField(rule, "id"),
		RuleLevel:       coerceLevel(rule),
		RuleDescription: stringField(rule, "description"),
		AgentName:       stringField(agent, "name"),
		AgentIP:         stringField(agent, "ip"),
		Location:        stringField(payload, "location"),
		FullLog:         stringField(payload, "full_log"),
		Tags:            []string{},
		Raw:             json.RawMessage(rawCopy),
	}
}

// coerceLevel extracts the rule level as an integer. JSON numbers must be
// integral and numeric strings must parse exactly; anything else yields
// models.LevelUnknown so it never matches a severity threshold.
func coerceLevel(rule map[string]interface{}) int {
	if rule == nil {
		return models.LevelUnknown
	}
	v, ok := rule["level"]
	if !ok || v == nil {
		return models.LevelUnknown
	}

	switch n := v.(type) {
	case float64:
		if n != math.Trunc(n) {
			return models.LevelUnknown
		}
		return int(n)
	case string:
		level, err := strconv.Atoi(n)
		if err != nil {
			return models.LevelUnknown
		}
		return level
	default:
		return models.LevelUnknown
	}
}

// coerceString renders a scalar JSON value as a string. Integral numbers
// render without a fractional part so "5710" and 5710 are interchangeable.
func coerceString(v interface{}) string {
	switch s := v.(type) {
	case string:
		if s == "" {
			return models.FieldUnknown
		}
		return s
	case float64:
		if s == math.Trunc(s) {
			return strconv.FormatInt(int64(s), 10)
		}
		return strconv.FormatFloat(s, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(s)
	default:
		return models.FieldUnknown
	}
}
