// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package ingest

import (
	"sync"

	"github.com/sentryline/sentryline/internal/metrics"
)

// Default dedup index sizing. When the index grows past the capacity it is
// trimmed to the retain count, dropping the oldest-inserted fingerprints.
const (
	DefaultDedupCapacity = 1000
	DefaultDedupRetain   = 500
)

// DedupIndex is a bounded set of alert fingerprints with insertion-order
// eviction. All operations are safe for concurrent use.
//
// Eviction is triggered by capacity only, never by age. A fingerprint that
// was evicted and is seen again is treated as new; re-admission after
// eviction is accepted as the cost of bounded memory.
type DedupIndex struct {
	mu       sync.Mutex
	set      map[string]struct{}
	order    []string
	capacity int
	retain   int
}

// NewDedupIndex creates a DedupIndex with the given capacity and retain
// count. Non-positive or inconsistent values fall back to the defaults.
func NewDedupIndex(capacity, retain int) *DedupIndex {
	if capacity <= 0 {
		capacity = DefaultDedupCapacity
	}
	if retain <= 0 || retain > capacity {
		retain = capacity / 2
	}
	return &DedupIndex{
		set:      make(map[string]struct{}, capacity),
		order:    make([]string, 0, capacity),
		capacity: capacity,
		retain:   retain,
	}
}

// Observe atomically checks for the fingerprint and inserts it when absent.
// Returns true when the fingerprint was already present. The check and the
// insert happen in a single critical section, so two concurrent submissions
// of the same fingerprint resolve to exactly one accepted and one duplicate.
func (d *DedupIndex) Observe(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, seen := d.set[fingerprint]; seen {
		return true
	}

	d.set[fingerprint] = struct{}{}
	d.order = append(d.order, fingerprint)

	if len(d.set) > d.capacity {
		d.evictLocked()
	}

	metrics.SetDedupIndexSize(len(d.set))
	return false
}

// evictLocked trims the index to the retain count, removing the
// oldest-inserted fingerprints first. Caller must hold mu.
func (d *DedupIndex) evictLocked() {
	drop := len(d.order) - d.retain
	for _, fp := range d.order[:drop] {
		delete(d.set, fp)
	}
	remaining := make([]string, d.retain, d.capacity)
	copy(remaining, d.order[drop:])
	d.order = remaining

	metrics.RecordDedupEviction(drop)
}

// Contains reports whether the fingerprint is currently tracked, without
// modifying the index.
func (d *DedupIndex) Contains(fingerprint string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, seen := d.set[fingerprint]
	return seen
}

// Len returns the number of tracked fingerprints.
func (d *DedupIndex) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.set)
}

// Clear removes all tracked fingerprints and returns how many were removed.
func (d *DedupIndex) Clear() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := len(d.set)
	d.set = make(map[string]struct{}, d.capacity)
	d.order = d.order[:0]

	metrics.SetDedupIndexSize(0)
	return n
}
