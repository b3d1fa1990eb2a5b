// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

/*
Package services provides suture.Service wrappers for Sentryline components.

Each wrapper adapts an application component to suture v4's supervision
model, translating its lifecycle pattern into suture's context-aware
Serve pattern:

	type Service interface {
	    Serve(ctx context.Context) error
	}

Available services:

HTTP Server (HTTPServerService):
  - Wraps *http.Server with graceful shutdown
  - Converts ListenAndServe pattern to Serve
  - Configurable shutdown timeout for draining connections

WebSocket Hub (WebSocketHubService):
  - Wraps the alert fan-out hub with context support
  - The hub drains clients itself on shutdown, so the wrapper delegates

Return values determine supervisor behavior:

	nil       -> Service stopped cleanly, will not restart
	error     -> Service crashed, supervisor will restart
	ctx.Err() -> Shutdown requested, normal termination

All services implement fmt.Stringer; suture uses it to identify the
service in log messages.
*/
package services
