// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package wazuh

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/sentryline/sentryline/internal/config"
	"github.com/sentryline/sentryline/internal/logging"
	"github.com/sentryline/sentryline/internal/metrics"
	"github.com/sentryline/sentryline/internal/models"
)

// CircuitBreakerClient wraps Client with the circuit breaker pattern so a
// dead or slow manager doesn't tie up the health endpoint.
//
// The breaker uses real time (via sony/gobreaker) for its interval and
// timeout calculations. The timing determines failure recovery, not data
// integrity; unit tests should exercise the wrapped client directly.
type CircuitBreakerClient struct {
	client *Client
	cb     *gobreaker.CircuitBreaker[interface{}]
	name   string

	mu          sync.Mutex
	lastChecked time.Time
	lastError   string
	connected   bool
}

// NewCircuitBreakerClient creates a manager API client with circuit breaker.
// Breaker configuration:
//   - Max 3 concurrent requests in half-open state
//   - 1 minute measurement window
//   - 2 minute timeout before attempting recovery
//   - Opens after 60% failure rate with minimum 10 requests
func NewCircuitBreakerClient(cfg *config.WazuhConfig) *CircuitBreakerClient {
	client := NewClient(cfg)
	cbName := "wazuh-manager-api"

	metrics.CircuitBreakerState.WithLabelValues(cbName).Set(0) // 0 = closed

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        cbName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     2 * time.Minute,

		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}

			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			shouldTrip := failureRatio >= 0.6

			if shouldTrip {
				logging.Warn().Uint32("failures", counts.TotalFailures).Float64("failure_rate", failureRatio*100).Msg("[CIRCUIT BREAKER] Opening circuit")
			}

			return shouldTrip
		},

		OnStateChange: func(name string, from, to gobreaker.State) {
			fromStr := stateToString(from)
			toStr := stateToString(to)

			logging.Info().Str("from", fromStr).Str("to", toStr).Msg("[CIRCUIT BREAKER] State transition")

			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, fromStr, toStr).Inc()
		},
	})

	return &CircuitBreakerClient{
		client: client,
		cb:     cb,
		name:   cbName,
	}
}

// execute wraps a manager API call with circuit breaker protection.
func (cbc *CircuitBreakerClient) execute(fn func() (interface{}, error)) (interface{}, error) {
	result, err := cbc.cb.Execute(fn)

	cbc.mu.Lock()
	cbc.lastChecked = time.Now()
	cbc.connected = err == nil
	if err != nil {
		cbc.lastError = err.Error()
	} else {
		cbc.lastError = ""
	}
	cbc.mu.Unlock()

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "rejected").Inc()
			logging.Warn().Err(err).Msg("[CIRCUIT BREAKER] Request rejected")
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "failure").Inc()
		}
		return nil, err
	}

	metrics.CircuitBreakerRequests.WithLabelValues(cbc.name, "success").Inc()
	return result, nil
}

// castResult safely type-casts the circuit breaker result.
func castResult[T any](result interface{}, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	typed, ok := result.(*T)
	if !ok {
		return nil, fmt.Errorf("circuit breaker: unexpected result type %T", result)
	}
	return typed, nil
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

// Ping verifies manager connectivity with circuit breaker protection.
func (cbc *CircuitBreakerClient) Ping(ctx context.Context) error {
	_, err := cbc.execute(func() (interface{}, error) {
		return nil, cbc.client.Ping(ctx)
	})
	return err
}

// GetServerInfo fetches the manager banner with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	return castResult[ServerInfo](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetServerInfo(ctx)
	}))
}

// GetAgentSummary fetches agent status counts with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetAgentSummary(ctx context.Context) (*AgentSummary, error) {
	return castResult[AgentSummary](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAgentSummary(ctx)
	}))
}

// GetAgents lists enrolled agents with circuit breaker protection.
func (cbc *CircuitBreakerClient) GetAgents(ctx context.Context, q AgentsQuery) (*AgentList, error) {
	return castResult[AgentList](cbc.execute(func() (interface{}, error) {
		return cbc.client.GetAgents(ctx, q)
	}))
}

// Health reports the upstream connection state for the health endpoint.
// It never performs a network call; it reflects the most recent attempt.
func (cbc *CircuitBreakerClient) Health() *models.UpstreamHealth {
	cbc.mu.Lock()
	defer cbc.mu.Unlock()

	return &models.UpstreamHealth{
		Connected:    cbc.connected,
		BreakerState: stateToString(cbc.cb.State()),
		LastChecked:  cbc.lastChecked.UTC(),
		Error:        cbc.lastError,
	}
}
