// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package wazuh

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sentryline/sentryline/internal/config"
	"github.com/sentryline/sentryline/internal/logging"
)

func init() {
	logging.Init(logging.Config{Level: "disabled", Output: io.Discard})
}

func testConfig(url string) *config.WazuhConfig {
	return &config.WazuhConfig{
		Enabled:   true,
		URL:       url,
		Username:  "sentryline",
		Password:  "hunter2",
		VerifyTLS: true,
		Timeout:   5 * time.Second,
	}
}

// newManagerStub serves the authentication endpoint plus whatever extra
// handler the test provides for API calls.
func newManagerStub(t *testing.T, token string, api http.HandlerFunc) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc(authEndpoint, func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if !ok || user != "sentryline" || pass != "hunter2" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"token":"` + token + `"}}`))
	})
	if api != nil {
		mux.HandleFunc("/", api)
	}

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestClientAuthenticatesAndCachesToken(t *testing.T) {
	t.Parallel()

	var authCalls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(authEndpoint, func(w http.ResponseWriter, r *http.Request) {
		authCalls.Add(1)
		_, _ = w.Write([]byte(`{"data":{"token":"jwt-token-1"}}`))
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer jwt-token-1" {
			t.Errorf("Authorization = %q, want Bearer jwt-token-1", got)
		}
		_, _ = w.Write([]byte(`{"data":{"title":"Wazuh API","api_version":"4.9.0"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(testConfig(srv.URL))

	for i := 0; i < 3; i++ {
		info, err := client.GetServerInfo(context.Background())
		if err != nil {
			t.Fatalf("GetServerInfo() error: %v", err)
		}
		if info.Title != "Wazuh API" {
			t.Errorf("Title = %q, want Wazuh API", info.Title)
		}
	}

	if got := authCalls.Load(); got != 1 {
		t.Errorf("auth endpoint hit %d times, want 1 (token should be cached)", got)
	}
}

func TestClientRejectsBadCredentials(t *testing.T) {
	t.Parallel()

	srv := newManagerStub(t, "unused", nil)

	cfg := testConfig(srv.URL)
	cfg.Password = "wrong"
	client := NewClient(cfg)

	if err := client.Ping(context.Background()); err == nil {
		t.Fatal("Ping() = nil, want authentication error")
	}
}

func TestClientRetriesOnceOnExpiredToken(t *testing.T) {
	t.Parallel()

	var tokens atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc(authEndpoint, func(w http.ResponseWriter, r *http.Request) {
		n := tokens.Add(1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"data":{"token":"stale"}}`))
		} else {
			_, _ = w.Write([]byte(`{"data":{"token":"fresh"}}`))
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		// The manager was restarted: the first token is no longer valid.
		if r.Header.Get("Authorization") == "Bearer stale" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"title":"Wazuh API"}}`))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	client := NewClient(testConfig(srv.URL))

	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}
	if got := tokens.Load(); got != 2 {
		t.Errorf("auth endpoint hit %d times, want 2", got)
	}
}

func TestGetAgentSummary(t *testing.T) {
	t.Parallel()

	srv := newManagerStub(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents/summary/status" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(`{"data":{"connection":{"active":12,"disconnected":3,"never_connected":1,"pending":0,"total":16}}}`))
	})

	client := NewClient(testConfig(srv.URL))

	summary, err := client.GetAgentSummary(context.Background())
	if err != nil {
		t.Fatalf("GetAgentSummary() error: %v", err)
	}
	if summary.Active != 12 {
		t.Errorf("Active = %d, want 12", summary.Active)
	}
	if summary.Total != 16 {
		t.Errorf("Total = %d, want 16", summary.Total)
	}
}

func TestGetAgentsQueryParameters(t *testing.T) {
	t.Parallel()

	srv := newManagerStub(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/agents" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("status") != "active" {
			t.Errorf("status param = %q, want active", q.Get("status"))
		}
		if q.Get("limit") != "25" {
			t.Errorf("limit param = %q, want 25", q.Get("limit"))
		}
		if q.Get("offset") != "50" {
			t.Errorf("offset param = %q, want 50", q.Get("offset"))
		}
		_, _ = w.Write([]byte(`{"data":{"affected_items":[{"id":"001","name":"web-server-01","ip":"10.0.0.5","status":"active"}],"total_affected_items":1}}`))
	})

	client := NewClient(testConfig(srv.URL))

	list, err := client.GetAgents(context.Background(), AgentsQuery{
		Status: "active",
		Offset: 50,
		Limit:  25,
	})
	if err != nil {
		t.Fatalf("GetAgents() error: %v", err)
	}
	if list.TotalItems != 1 {
		t.Errorf("TotalItems = %d, want 1", list.TotalItems)
	}
	if len(list.Agents) != 1 || list.Agents[0].Name != "web-server-01" {
		t.Errorf("Agents = %+v, want one agent named web-server-01", list.Agents)
	}
}

func TestCircuitBreakerHealthReflectsLastAttempt(t *testing.T) {
	t.Parallel()

	srv := newManagerStub(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data":{"title":"Wazuh API"}}`))
	})

	cbc := NewCircuitBreakerClient(testConfig(srv.URL))

	health := cbc.Health()
	if health.Connected {
		t.Error("Connected = true before any attempt")
	}
	if health.BreakerState != "closed" {
		t.Errorf("BreakerState = %q, want closed", health.BreakerState)
	}

	if err := cbc.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error: %v", err)
	}

	health = cbc.Health()
	if !health.Connected {
		t.Error("Connected = false after successful ping")
	}
	if health.LastChecked.IsZero() {
		t.Error("LastChecked not recorded")
	}
	if health.Error != "" {
		t.Errorf("Error = %q, want empty", health.Error)
	}
}

func TestCircuitBreakerHealthRecordsFailure(t *testing.T) {
	t.Parallel()

	srv := newManagerStub(t, "tok", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	})

	cbc := NewCircuitBreakerClient(testConfig(srv.URL))

	if err := cbc.Ping(context.Background()); err == nil {
		t.Fatal("Ping() = nil, want error")
	}

	health := cbc.Health()
	if health.Connected {
		t.Error("Connected = true after failed ping")
	}
	if health.Error == "" {
		t.Error("Error not recorded")
	}
}
