// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package config defines Sentryline's configuration and its layered loading:
// built-in defaults, an optional YAML file, then environment variables.
package config

import (
	"time"
)

// Config is the root configuration for the service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Ingest   IngestConfig   `koanf:"ingest"`
	Classify ClassifyConfig `koanf:"classify"`
	Security SecurityConfig `koanf:"security"`
	Wazuh    WazuhConfig    `koanf:"wazuh"` // Optional: upstream Wazuh manager API
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig holds the HTTP listener settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// IngestConfig sizes the ingestion pipeline's bounded state.
type IngestConfig struct {
	// DedupCapacity is the fingerprint count that triggers index eviction.
	DedupCapacity int `koanf:"dedup_capacity"`

	// DedupRetain is the fingerprint count kept after an eviction.
	DedupRetain int `koanf:"dedup_retain"`

	// RetentionCapacity is the alert retention window size.
	RetentionCapacity int `koanf:"retention_capacity"`

	// CatchUpCount is the number of recent alerts pushed to a new
	// WebSocket subscriber.
	CatchUpCount int `koanf:"catchup_count"`

	// ClientQueueSize is the per-subscriber send queue capacity.
	ClientQueueSize int `koanf:"client_queue_size"`
}

// ClassifyConfig tunes the classification rule table.
type ClassifyConfig struct {
	HighSeverityThreshold int      `koanf:"high_severity_threshold"`
	BruteForceRuleIDs     []string `koanf:"brute_force_rule_ids"`
	FileIntegrityMarker   string   `koanf:"file_integrity_marker"`
	AuthFailureMarkers    []string `koanf:"auth_failure_markers"`
}

// SecurityConfig holds the HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// WazuhConfig holds the optional upstream Wazuh manager API connection.
// When disabled the health endpoint simply omits upstream connectivity.
type WazuhConfig struct {
	Enabled   bool          `koanf:"enabled"`
	URL       string        `koanf:"url"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	VerifyTLS bool          `koanf:"verify_tls"`
	Timeout   time.Duration `koanf:"timeout"`
}

// LoggingConfig holds the logging settings.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// defaultConfig returns a Config with all default values. Defaults are
// applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            5000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Ingest: IngestConfig{
			DedupCapacity:     1000,
			DedupRetain:       500,
			RetentionCapacity: 100,
			CatchUpCount:      10,
			ClientQueueSize:   256,
		},
		Classify: ClassifyConfig{
			HighSeverityThreshold: 12,
			BruteForceRuleIDs:     []string{"5710", "5712"},
			FileIntegrityMarker:   "syscheck",
			AuthFailureMarkers:    []string{"authentication failed", "authentication_failed"},
		},
		Security: SecurityConfig{
			CORSOrigins:       []string{"*"},
			RateLimitReqs:     100,
			RateLimitWindow:   1 * time.Minute,
			RateLimitDisabled: false,
		},
		Wazuh: WazuhConfig{
			Enabled:   false,
			URL:       "",
			Username:  "",
			Password:  "",
			VerifyTLS: true,
			Timeout:   10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}
