// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package ingest

import (
	"strings"

	"github.com/sentryline/sentryline/internal/models"
)

// Classifier defaults, matching the standard Wazuh SSH brute-force rules and
// the conventional high-severity cutoff.
const (
	DefaultHighSeverityThreshold = 12
	DefaultFileIntegrityMarker   = "syscheck"
)

// DefaultBruteForceRuleIDs returns the rule ids classified as brute-force
// attempts.
func DefaultBruteForceRuleIDs() []string {
	return []string{"5710", "5712"}
}

// DefaultAuthFailureMarkers returns the description phrases classified as
// authentication failures. Rule sets are inconsistent about the separator,
// so both spellings are matched.
func DefaultAuthFailureMarkers() []string {
	return []string{"authentication failed", "authentication_failed"}
}

// ClassifierConfig tunes the classification rule table.
type ClassifierConfig struct {
	HighSeverityThreshold int
	BruteForceRuleIDs     []string
	FileIntegrityMarker   string
	AuthFailureMarkers    []string
}

// DefaultClassifierConfig returns the default rule table.
func DefaultClassifierConfig() ClassifierConfig {
	return ClassifierConfig{
		HighSeverityThreshold: DefaultHighSeverityThreshold,
		BruteForceRuleIDs:     DefaultBruteForceRuleIDs(),
		FileIntegrityMarker:   DefaultFileIntegrityMarker,
		AuthFailureMarkers:    DefaultAuthFailureMarkers(),
	}
}

// Classifier evaluates the fixed rule table against normalized alerts.
// It is stateless and safe for concurrent use.
type Classifier struct {
	threshold     int
	bruteForceIDs map[string]struct{}
	fimMarker     string
	authMarkers   []string
}

// NewClassifier creates a Classifier from the given rule table. Zero values
// fall back to the defaults.
func NewClassifier(cfg ClassifierConfig) *Classifier {
	if cfg.HighSeverityThreshold <= 0 {
		cfg.HighSeverityThreshold = DefaultHighSeverityThreshold
	}
	if len(cfg.BruteForceRuleIDs) == 0 {
		cfg.BruteForceRuleIDs = DefaultBruteForceRuleIDs()
	}
	if cfg.FileIntegrityMarker == "" {
		cfg.FileIntegrityMarker = DefaultFileIntegrityMarker
	}
	if len(cfg.AuthFailureMarkers) == 0 {
		cfg.AuthFailureMarkers = DefaultAuthFailureMarkers()
	}

	ids := make(map[string]struct{}, len(cfg.BruteForceRuleIDs))
	for _, id := range cfg.BruteForceRuleIDs {
		ids[id] = struct{}{}
	}

	markers := make([]string, len(cfg.AuthFailureMarkers))
	for i, m := range cfg.AuthFailureMarkers {
		markers[i] = strings.ToLower(m)
	}

	return &Classifier{
		threshold:     cfg.HighSeverityThreshold,
		bruteForceIDs: ids,
		fimMarker:     cfg.FileIntegrityMarker,
		authMarkers:   markers,
	}
}

// Classify evaluates every rule independently and returns the matching tags
// in rule-table order. An alert can match any combination of rules; no rule
// short-circuits another.
//
// The location match is case-sensitive; the description match is
// case-insensitive. Both follow the conventions of the upstream rule set.
func (c *Classifier) Classify(alert *models.Alert) []string {
	tags := make([]string, 0, 4)

	if alert.RuleLevel != models.LevelUnknown && alert.RuleLevel >= c.threshold {
		tags = append(tags, models.TagHighSeverity)
	}
	if _, ok := c.bruteForceIDs[alert.RuleID]; ok {
		tags = append(tags, models.TagBruteForce)
	}
	if strings.Contains(alert.Location, c.fimMarker) {
		tags = append(tags, models.TagFileIntegrity)
	}
	description := strings.ToLower(alert.RuleDescription)
	for _, marker := range c.authMarkers {
		if strings.Contains(description, marker) {
			tags = append(tags, models.TagAuthFailure)
			break
		}
	}

	return tags
}
