// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/sentryline/sentryline/internal/logging"
	"github.com/sentryline/sentryline/internal/metrics"
	"github.com/sentryline/sentryline/internal/models"
)

// ErrInvalidPayload marks a submission that is not a non-empty JSON object.
// It is the only client-attributable failure the pipeline produces.
var ErrInvalidPayload = errors.New("payload is not a non-empty JSON object")

// Outcome is the terminal result of one submission.
type Outcome string

const (
	// OutcomeAccepted means the alert passed dedup and was stored and
	// broadcast.
	OutcomeAccepted Outcome = "accepted"

	// OutcomeDuplicate means the fingerprint was already tracked; the
	// submission was discarded without touching the store or the hub.
	OutcomeDuplicate Outcome = "duplicate"

	// OutcomeRejected means the payload could not be interpreted.
	OutcomeRejected Outcome = "rejected"
)

// AlertStore is the retention window write interface consumed by the
// pipeline.
type AlertStore interface {
	Append(alert models.Alert)
}

// Broadcaster fans an accepted alert out to live subscribers.
type Broadcaster interface {
	BroadcastNewAlert(alert models.Alert)
}

// Pipeline wires the ingestion stages together. One Pipeline serves the
// whole process; it is safe for concurrent use.
type Pipeline struct {
	index      *DedupIndex
	classifier *Classifier
	store      AlertStore
	hub        Broadcaster

	// now is replaceable in tests.
	now func() time.Time

	// commitMu serializes ReceivedAt assignment with the store append and
	// hub enqueue, keeping ReceivedAt non-decreasing in retention order and
	// the broadcast order identical to the stored order.
	commitMu     sync.Mutex
	lastReceived time.Time
}

// NewPipeline creates a Pipeline over the given stages.
func NewPipeline(index *DedupIndex, classifier *Classifier, store AlertStore, hub Broadcaster) *Pipeline {
	return &Pipeline{
		index:      index,
		classifier: classifier,
		store:      store,
		hub:        hub,
		now:        time.Now,
	}
}

// Ingest runs one submission through the pipeline and returns its outcome.
// The returned alert is non-nil only for OutcomeAccepted. The error is
// non-nil only for OutcomeRejected and wraps ErrInvalidPayload.
func (p *Pipeline) Ingest(ctx context.Context, payload []byte) (Outcome, *models.Alert, error) {
	start := p.now()

	var decoded map[string]interface{}
	if err := json.Unmarshal(payload, &decoded); err != nil || len(decoded) == 0 {
		metrics.RecordIngest(string(OutcomeRejected))
		if err == nil {
			err = ErrInvalidPayload
		} else {
			err = fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		logging.Ctx(ctx).Warn().Err(err).Int("payload_bytes", len(payload)).
			Msg("Rejected undecodable alert submission")
		return OutcomeRejected, nil, err
	}

	fingerprint := Fingerprint(decoded)

	if p.index.Observe(fingerprint) {
		metrics.RecordIngest(string(OutcomeDuplicate))
		logging.Ctx(ctx).Info().Str("fingerprint", fingerprint).
			Msg("Duplicate alert ignored")
		return OutcomeDuplicate, nil, nil
	}

	alert := Normalize(decoded, payload, fingerprint)
	alert.Tags = p.classifier.Classify(&alert)

	p.commit(&alert)

	metrics.RecordIngest(string(OutcomeAccepted))
	metrics.RecordClassification(alert.Tags)
	metrics.ObserveIngestDuration(p.now().Sub(start))

	p.logAccepted(ctx, &alert)
	return OutcomeAccepted, &alert, nil
}

// commit assigns ReceivedAt and hands the alert to the store and the hub in
// one critical section.
func (p *Pipeline) commit(alert *models.Alert) {
	p.commitMu.Lock()
	defer p.commitMu.Unlock()

	t := p.now()
	if t.Before(p.lastReceived) {
		t = p.lastReceived
	}
	p.lastReceived = t
	alert.ReceivedAt = t

	p.store.Append(*alert)
	p.hub.BroadcastNewAlert(*alert)
}

// logAccepted emits the acceptance log plus the elevated-attention logs for
// classified alerts.
func (p *Pipeline) logAccepted(ctx context.Context, alert *models.Alert) {
	logging.Ctx(ctx).Info().
		Str("alert_id", alert.ID).
		Str("rule_id", alert.RuleID).
		Int("rule_level", alert.RuleLevel).
		Str("agent", alert.AgentName).
		Msg("Alert accepted")

	if alert.HasTag(models.TagHighSeverity) {
		logging.Ctx(ctx).Warn().
			Str("alert_id", alert.ID).
			Int("rule_level", alert.RuleLevel).
			Str("description", alert.RuleDescription).
			Msg("High severity alert")
	}
	if alert.HasTag(models.TagBruteForce) {
		logging.Ctx(ctx).Warn().
			Str("alert_id", alert.ID).
			Str("agent_ip", alert.AgentIP).
			Msg("SSH brute force detected")
	}
	if alert.HasTag(models.TagAuthFailure) {
		logging.Ctx(ctx).Warn().
			Str("alert_id", alert.ID).
			Str("agent", alert.AgentName).
			Msg("Authentication failure")
	}
}
