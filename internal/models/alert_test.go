// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package models

import (
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
)

func TestAlertHasTag(t *testing.T) {
	t.Parallel()

	alert := Alert{Tags: []string{TagHighSeverity, TagAuthFailure}}

	if !alert.HasTag(TagHighSeverity) {
		t.Error("expected high-severity tag")
	}
	if !alert.HasTag(TagAuthFailure) {
		t.Error("expected auth-failure tag")
	}
	if alert.HasTag(TagBruteForce) {
		t.Error("did not expect brute-force tag")
	}

	empty := Alert{}
	if empty.HasTag(TagHighSeverity) {
		t.Error("empty alert should carry no tags")
	}
}

func TestAlertJSONFieldNames(t *testing.T) {
	t.Parallel()

	alert := Alert{
		ID:              "abc123def456",
		Timestamp:       "2026-08-31T10:00:00.000+0000",
		RuleID:          "5710",
		RuleLevel:       5,
		RuleDescription: "sshd: Attempt to login using a non-existent user",
		AgentName:       "web01",
		AgentIP:         "10.0.0.4",
		Location:        "/var/log/auth.log",
		Tags:            []string{TagBruteForce},
		ReceivedAt:      time.Date(2026, 8, 31, 10, 0, 1, 0, time.UTC),
	}

	data, err := json.Marshal(alert)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	out := string(data)
	for _, field := range []string{
		`"id"`, `"timestamp"`, `"rule_id"`, `"rule_level"`,
		`"rule_description"`, `"agent_name"`, `"agent_ip"`,
		`"location"`, `"full_log"`, `"tags"`, `"received_at"`,
	} {
		if !strings.Contains(out, field) {
			t.Errorf("expected field %s in output: %s", field, out)
		}
	}
	if strings.Contains(out, `"raw"`) {
		t.Errorf("empty raw payload should be omitted: %s", out)
	}
}

func TestSentinelConstants(t *testing.T) {
	t.Parallel()

	if FieldUnknown != "N/A" {
		t.Errorf("unexpected field sentinel: %q", FieldUnknown)
	}
	if LevelUnknown != -1 {
		t.Errorf("unexpected level sentinel: %d", LevelUnknown)
	}
}
