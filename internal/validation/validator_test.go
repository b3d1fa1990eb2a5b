// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package validation

import (
	"strings"
	"testing"
)

func TestValidateAlertQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		query     AlertQuery
		wantValid bool
		wantField string
	}{
		{
			name:      "zero value is valid",
			query:     AlertQuery{},
			wantValid: true,
		},
		{
			name:      "typical query",
			query:     AlertQuery{Limit: 50, MinLevel: 10, Agent: "web-server-01"},
			wantValid: true,
		},
		{
			name:      "no level filter",
			query:     AlertQuery{Limit: 50, MinLevel: -1},
			wantValid: true,
		},
		{
			name:      "limit at upper bound",
			query:     AlertQuery{Limit: 1000},
			wantValid: true,
		},
		{
			name:      "limit above upper bound",
			query:     AlertQuery{Limit: 1001},
			wantValid: false,
			wantField: "Limit",
		},
		{
			name:      "negative limit",
			query:     AlertQuery{Limit: -5},
			wantValid: false,
			wantField: "Limit",
		},
		{
			name:      "level below sentinel",
			query:     AlertQuery{MinLevel: -2},
			wantValid: false,
			wantField: "MinLevel",
		},
		{
			name:      "agent too long",
			query:     AlertQuery{Agent: strings.Repeat("a", 257)},
			wantValid: false,
			wantField: "Agent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateStruct(&tt.query)
			if tt.wantValid {
				if err != nil {
					t.Fatalf("ValidateStruct() = %v, want nil", err)
				}
				return
			}

			if err == nil {
				t.Fatal("ValidateStruct() = nil, want error")
			}
			if len(err.Errors()) == 0 {
				t.Fatal("Errors() is empty")
			}
			if got := err.Errors()[0].Field(); got != tt.wantField {
				t.Errorf("failed field = %q, want %q", got, tt.wantField)
			}
		})
	}
}

func TestToAPIErrorSingleFailure(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&AlertQuery{Limit: -1})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("Code = %q, want VALIDATION_ERROR", apiErr.Code)
	}
	if apiErr.Message == "" {
		t.Error("Message is empty")
	}
	if apiErr.Details["field"] != "Limit" {
		t.Errorf("Details.field = %v, want Limit", apiErr.Details["field"])
	}
}

func TestToAPIErrorMultipleFailures(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&AlertQuery{Limit: -1, MinLevel: -5})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Fatalf("Errors() = %d entries, want 2", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok {
		t.Fatalf("Details.fields has type %T", apiErr.Details["fields"])
	}
	if len(fields) != 2 {
		t.Errorf("Details.fields = %d entries, want 2", len(fields))
	}
	if !strings.Contains(apiErr.Message, ";") {
		t.Errorf("Message %q should join messages with ;", apiErr.Message)
	}
}

func TestGetValidatorReturnsSameInstance(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("GetValidator() returned distinct instances")
	}
}
