// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package wazuh provides an authenticated client for the Wazuh manager API.
// The manager issues short-lived JWT bearer tokens against basic-auth
// credentials; the client renews them transparently and a circuit breaker
// wrapper stops hammering an unavailable manager.
package wazuh

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sentryline/sentryline/internal/config"
	"github.com/sentryline/sentryline/internal/logging"
)

const (
	// tokenTTL matches the manager's default token lifetime.
	tokenTTL = 15 * time.Minute

	// tokenRenewMargin renews tokens before they actually expire so an
	// in-flight request never carries a token that dies mid-request.
	tokenRenewMargin = time.Minute

	authEndpoint = "/security/user/authenticate"
)

// Client talks to the Wazuh manager REST API.
type Client struct {
	baseURL    string
	username   string
	password   string
	httpClient *http.Client

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

// NewClient creates a manager API client from config. The config is
// validated at load time, so URL and credentials are present.
func NewClient(cfg *config.WazuhConfig) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if !cfg.VerifyTLS {
		transport.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} // #nosec G402 -- operator opt-in for self-signed manager certs
	}

	return &Client{
		baseURL:  strings.TrimRight(cfg.URL, "/"),
		username: cfg.Username,
		password: cfg.Password,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: transport,
		},
	}
}

// authResponse is the manager's token issue response.
type authResponse struct {
	Data struct {
		Token string `json:"token"`
	} `json:"data"`
}

// ServerInfo is the manager's API banner.
type ServerInfo struct {
	Title      string `json:"title"`
	APIVersion string `json:"api_version"`
	Revision   string `json:"revision"`
	Hostname   string `json:"hostname"`
	Timestamp  string `json:"timestamp"`
}

// AgentSummary counts agents by connection status.
type AgentSummary struct {
	Active         int `json:"active"`
	Disconnected   int `json:"disconnected"`
	NeverConnected int `json:"never_connected"`
	Pending        int `json:"pending"`
	Total          int `json:"total"`
}

// Agent is a single enrolled agent as the manager reports it.
type Agent struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	IP      string `json:"ip"`
	Status  string `json:"status"`
	Version string `json:"version"`
	OS      struct {
		Name     string `json:"name"`
		Platform string `json:"platform"`
		Version  string `json:"version"`
	} `json:"os"`
	LastKeepAlive string `json:"lastKeepAlive"`
}

// AgentList is a page of agents plus the total count.
type AgentList struct {
	Agents     []Agent
	TotalItems int
}

// AgentsQuery filters and pages the agent listing.
type AgentsQuery struct {
	// Status filters by connection status: active, disconnected,
	// never_connected, pending. Empty means all.
	Status string
	Offset int
	Limit  int
	Sort   string
}

// authenticate fetches a fresh bearer token using basic auth.
// Caller must hold c.mu.
func (c *Client) authenticateLocked(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+authEndpoint, nil)
	if err != nil {
		return fmt.Errorf("build auth request: %w", err)
	}
	req.SetBasicAuth(c.username, c.password)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("authenticate: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("read auth response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("authentication failed: %d - %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var auth authResponse
	if err := json.Unmarshal(body, &auth); err != nil {
		return fmt.Errorf("decode auth response: %w", err)
	}
	if auth.Data.Token == "" {
		return fmt.Errorf("authentication response contained no token")
	}

	c.token = auth.Data.Token
	c.tokenExpiry = time.Now().Add(tokenTTL)

	logging.Debug().Time("expires", c.tokenExpiry).Msg("Renewed manager API token")
	return nil
}

// bearerToken returns a valid token, renewing it when expired or close to.
func (c *Client) bearerToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && time.Until(c.tokenExpiry) > tokenRenewMargin {
		return c.token, nil
	}
	if err := c.authenticateLocked(ctx); err != nil {
		return "", err
	}
	return c.token, nil
}

// invalidateToken drops the cached token so the next call re-authenticates.
func (c *Client) invalidateToken() {
	c.mu.Lock()
	c.token = ""
	c.tokenExpiry = time.Time{}
	c.mu.Unlock()
}

// request performs an authenticated API call and returns the raw body.
// A 401 retries once with a fresh token, covering manager restarts that
// invalidate tokens before their nominal expiry.
func (c *Client) request(ctx context.Context, method, endpoint string, params url.Values) ([]byte, error) {
	for attempt := 0; ; attempt++ {
		token, err := c.bearerToken(ctx)
		if err != nil {
			return nil, err
		}

		u := c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
		if len(params) > 0 {
			u += "?" + params.Encode()
		}

		req, err := http.NewRequestWithContext(ctx, method, u, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("manager API request: %w", err)
		}

		body, readErr := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("read response: %w", readErr)
		}

		if resp.StatusCode == http.StatusUnauthorized && attempt == 0 {
			c.invalidateToken()
			continue
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("manager API request failed: %d - %s",
				resp.StatusCode, strings.TrimSpace(string(body)))
		}

		return body, nil
	}
}

// Ping verifies connectivity and valid credentials.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.GetServerInfo(ctx)
	return err
}

// GetServerInfo fetches the manager's API banner.
func (c *Client) GetServerInfo(ctx context.Context) (*ServerInfo, error) {
	body, err := c.request(ctx, http.MethodGet, "/", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data ServerInfo `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode server info: %w", err)
	}
	return &envelope.Data, nil
}

// GetAgentSummary fetches agent counts grouped by connection status.
func (c *Client) GetAgentSummary(ctx context.Context) (*AgentSummary, error) {
	body, err := c.request(ctx, http.MethodGet, "/agents/summary/status", nil)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			Connection AgentSummary `json:"connection"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode agent summary: %w", err)
	}
	return &envelope.Data.Connection, nil
}

// GetAgents lists enrolled agents.
func (c *Client) GetAgents(ctx context.Context, q AgentsQuery) (*AgentList, error) {
	params := url.Values{}
	params.Set("offset", fmt.Sprintf("%d", q.Offset))
	limit := q.Limit
	if limit <= 0 {
		limit = 500
	}
	params.Set("limit", fmt.Sprintf("%d", limit))
	if q.Status != "" {
		params.Set("status", q.Status)
	}
	if q.Sort != "" {
		params.Set("sort", q.Sort)
	}

	body, err := c.request(ctx, http.MethodGet, "/agents", params)
	if err != nil {
		return nil, err
	}

	var envelope struct {
		Data struct {
			AffectedItems []Agent `json:"affected_items"`
			TotalItems    int     `json:"total_affected_items"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode agents: %w", err)
	}
	return &AgentList{
		Agents:     envelope.Data.AffectedItems,
		TotalItems: envelope.Data.TotalItems,
	}, nil
}
