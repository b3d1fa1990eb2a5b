// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

// Package ingest implements the alert ingestion pipeline: fingerprinting,
// deduplication, normalization, classification and dispatch to the retention
// store and broadcast hub.
//
// The pipeline is the only write path into the retention window. Stages run
// in a fixed order for every submission:
//
//	decode -> fingerprint -> dedup -> normalize -> classify -> store -> broadcast
//
// A duplicate fingerprint terminates the pipeline before normalization; a
// rejected payload terminates it before fingerprinting. Accepted alerts reach
// the store and the hub together, so subscribers never observe an alert that
// queries cannot see.
package ingest
