// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package store implements the bounded in-memory retention window for
// accepted alerts. The window is the only queryable alert state; when it
// fills, the oldest alerts are dropped so memory stays bounded regardless of
// ingest volume.
package store

import (
	"strconv"
	"strings"
	"sync"

	"github.com/sentryline/sentryline/internal/metrics"
	"github.com/sentryline/sentryline/internal/models"
)

// DefaultCapacity is the default retention window size.
const DefaultCapacity = 100

// DefaultQueryLimit is applied when a query supplies no limit.
const DefaultQueryLimit = 50

// Store is an insertion-ordered bounded window of alerts. All methods are
// safe for concurrent use.
type Store struct {
	mu       sync.RWMutex
	alerts   []models.Alert
	capacity int
}

// New creates a Store with the given capacity. Non-positive capacity falls
// back to DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		alerts:   make([]models.Alert, 0, capacity),
		capacity: capacity,
	}
}

// Append adds an alert to the window, dropping the oldest alerts when the
// capacity is exceeded. Relative order of survivors is preserved.
func (s *Store) Append(alert models.Alert) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.alerts = append(s.alerts, alert)
	if len(s.alerts) > s.capacity {
		drop := len(s.alerts) - s.capacity
		remaining := make([]models.Alert, s.capacity, s.capacity+1)
		copy(remaining, s.alerts[drop:])
		s.alerts = remaining

		metrics.RecordRetentionEviction(drop)
	}

	metrics.SetRetentionSize(len(s.alerts))
}

// QueryFilter narrows a window query. Zero values mean "no constraint".
type QueryFilter struct {
	// Limit caps the number of returned alerts, keeping the most recent
	// matches. Zero applies DefaultQueryLimit.
	Limit int

	// MinLevel keeps alerts whose rule level is at least this value.
	// Alerts with an unknown level never match a positive MinLevel.
	MinLevel int

	// Agent keeps alerts whose agent name contains this substring,
	// case-insensitive.
	Agent string
}

// Query returns the window slice matching the filter, oldest first. Filters
// apply to the whole window before the limit truncates, so Total reflects
// every match even when fewer alerts are returned.
func (s *Store) Query(filter QueryFilter) models.AlertList {
	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultQueryLimit
	}
	agentNeedle := strings.ToLower(filter.Agent)

	s.mu.RLock()
	defer s.mu.RUnlock()

	matched := make([]models.Alert, 0, len(s.alerts))
	for _, a := range s.alerts {
		if filter.MinLevel > 0 && a.RuleLevel < filter.MinLevel {
			continue
		}
		if agentNeedle != "" && !strings.Contains(strings.ToLower(a.AgentName), agentNeedle) {
			continue
		}
		matched = append(matched, a)
	}

	total := len(matched)
	if len(matched) > limit {
		matched = matched[len(matched)-limit:]
	}

	// Copy so callers never alias the window backing array.
	out := make([]models.Alert, len(matched))
	copy(out, matched)

	return models.AlertList{
		Total:  total,
		Count:  len(out),
		Alerts: out,
	}
}

// Stats aggregates the current window. LatestAlert is nil when the window is
// empty.
func (s *Store) Stats() models.AlertStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := models.AlertStats{
		TotalAlerts:   len(s.alerts),
		AlertsByLevel: make(map[string]int),
		AlertsByAgent: make(map[string]int),
	}

	for i := range s.alerts {
		stats.AlertsByLevel[strconv.Itoa(s.alerts[i].RuleLevel)]++
		stats.AlertsByAgent[s.alerts[i].AgentName]++
	}

	if n := len(s.alerts); n > 0 {
		latest := s.alerts[n-1]
		stats.LatestAlert = &latest
	}

	return stats
}

// Recent returns the last k alerts in insertion order. Returns fewer when
// the window holds fewer, and an empty slice when it is empty.
func (s *Store) Recent(k int) []models.Alert {
	if k <= 0 {
		return []models.Alert{}
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.alerts) - k
	if start < 0 {
		start = 0
	}
	out := make([]models.Alert, len(s.alerts)-start)
	copy(out, s.alerts[start:])
	return out
}

// Len returns the number of retained alerts.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// Clear empties the window and returns how many alerts were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := len(s.alerts)
	s.alerts = s.alerts[:0]

	metrics.SetRetentionSize(0)
	return n
}
