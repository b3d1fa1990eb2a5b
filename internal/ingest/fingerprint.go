// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package ingest

import (
	"encoding/base64"
	"strings"

	"github.com/sentryline/sentryline/internal/models"
)

// Fingerprint derives the deduplication identity of a submission from its
// claimed timestamp, rule id, agent name and rule description. Absent fields
// are substituted with models.FieldUnknown so that two submissions missing
// the same fields still dedup against each other.
//
// The function is deterministic: equal submissions always produce equal
// fingerprints, regardless of ingestion time.
func Fingerprint(payload map[string]interface{}) string {
	timestamp := stringField(payload, "timestamp")
	rule := objectField(payload, "rule")
	agent := objectField(payload, "agent")

	parts := []string{
		timestamp,
		stringField(rule, "id"),
		stringField(agent, "name"),
		stringField(rule, "description"),
	}
	return strings.Join(parts, "-")
}

// DeriveAlertID produces a stable alert id from a fingerprint: the first 12
// characters of its base64 encoding. Used when a submission carries no id of
// its own.
func DeriveAlertID(fingerprint string) string {
	encoded := base64.StdEncoding.EncodeToString([]byte(fingerprint))
	if len(encoded) > 12 {
		return encoded[:12]
	}
	return encoded
}

// stringField extracts a string representation of a top-level field,
// returning models.FieldUnknown when the field is absent or not
// representable. Integral JSON numbers render without a fractional part so
// numeric rule ids fingerprint identically to their string form.
func stringField(obj map[string]interface{}, key string) string {
	if obj == nil {
		return models.FieldUnknown
	}
	v, ok := obj[key]
	if !ok || v == nil {
		return models.FieldUnknown
	}
	return coerceString(v)
}

// objectField extracts a nested JSON object, returning nil when the field is
// absent or not an object.
func objectField(obj map[string]interface{}, key string) map[string]interface{} {
	if obj == nil {
		return nil
	}
	if nested, ok := obj[key].(map[string]interface{}); ok {
		return nested
	}
	return nil
}
