// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package config

import (
	"fmt"
	"net/url"
	"strconv"
)

// Validate checks the full configuration, section by section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}
	if err := c.Ingest.Validate(); err != nil {
		return fmt.Errorf("ingest config: %w", err)
	}
	if err := c.Classify.Validate(); err != nil {
		return fmt.Errorf("classify config: %w", err)
	}
	if err := c.Security.Validate(); err != nil {
		return fmt.Errorf("security config: %w", err)
	}
	if err := c.Wazuh.Validate(); err != nil {
		return fmt.Errorf("wazuh config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}
	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Host == "" {
		return fmt.Errorf("host must not be empty")
	}
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("port must be between 1 and 65535, got %d", s.Port)
	}
	if s.ReadTimeout <= 0 {
		return fmt.Errorf("read_timeout must be positive, got %s", s.ReadTimeout)
	}
	if s.WriteTimeout <= 0 {
		return fmt.Errorf("write_timeout must be positive, got %s", s.WriteTimeout)
	}
	if s.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", s.ShutdownTimeout)
	}
	return nil
}

func (i *IngestConfig) Validate() error {
	if i.DedupCapacity < 1 {
		return fmt.Errorf("dedup_capacity must be at least 1, got %d", i.DedupCapacity)
	}
	if i.DedupRetain < 1 {
		return fmt.Errorf("dedup_retain must be at least 1, got %d", i.DedupRetain)
	}
	if i.DedupRetain > i.DedupCapacity {
		return fmt.Errorf("dedup_retain (%d) must not exceed dedup_capacity (%d)",
			i.DedupRetain, i.DedupCapacity)
	}
	if i.RetentionCapacity < 1 {
		return fmt.Errorf("retention_capacity must be at least 1, got %d", i.RetentionCapacity)
	}
	if i.CatchUpCount < 0 {
		return fmt.Errorf("catchup_count must not be negative, got %d", i.CatchUpCount)
	}
	if i.ClientQueueSize < 1 {
		return fmt.Errorf("client_queue_size must be at least 1, got %d", i.ClientQueueSize)
	}
	return nil
}

func (c *ClassifyConfig) Validate() error {
	if c.HighSeverityThreshold < 0 {
		return fmt.Errorf("high_severity_threshold must not be negative, got %d",
			c.HighSeverityThreshold)
	}
	for _, id := range c.BruteForceRuleIDs {
		if _, err := strconv.Atoi(id); err != nil {
			return fmt.Errorf("brute_force_rule_ids entry %q is not numeric", id)
		}
	}
	if c.FileIntegrityMarker == "" {
		return fmt.Errorf("file_integrity_marker must not be empty")
	}
	for _, m := range c.AuthFailureMarkers {
		if m == "" {
			return fmt.Errorf("auth_failure_markers must not contain empty entries")
		}
	}
	return nil
}

func (s *SecurityConfig) Validate() error {
	if len(s.CORSOrigins) == 0 {
		return fmt.Errorf("cors_origins must not be empty")
	}
	if !s.RateLimitDisabled {
		if s.RateLimitReqs < 1 {
			return fmt.Errorf("rate_limit_reqs must be at least 1, got %d", s.RateLimitReqs)
		}
		if s.RateLimitWindow <= 0 {
			return fmt.Errorf("rate_limit_window must be positive, got %s", s.RateLimitWindow)
		}
	}
	return nil
}

func (w *WazuhConfig) Validate() error {
	if !w.Enabled {
		return nil
	}
	if w.URL == "" {
		return fmt.Errorf("url is required when the upstream client is enabled")
	}
	parsed, err := url.Parse(w.URL)
	if err != nil {
		return fmt.Errorf("url is not valid: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsed.Scheme)
	}
	if w.Username == "" {
		return fmt.Errorf("username is required when the upstream client is enabled")
	}
	if w.Password == "" {
		return fmt.Errorf("password is required when the upstream client is enabled")
	}
	if w.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", w.Timeout)
	}
	return nil
}

func (l *LoggingConfig) Validate() error {
	switch l.Level {
	case "trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("level must be one of trace, debug, info, warn, error, fatal, panic, disabled; got %q", l.Level)
	}
	switch l.Format {
	case "json", "console":
	default:
		return fmt.Errorf("format must be json or console, got %q", l.Format)
	}
	return nil
}
