// Sentryline - Security Alert Ingestion and Real-Time Monitoring
// Copyright 2026 Sentryline Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/sentryline/sentryline

/*
Package supervisor provides process supervision for Sentryline using suture v4.

This package implements a hierarchical supervisor tree that manages the lifecycle
of all long-running services in the application. It provides Erlang/OTP-style
supervision with automatic restart, failure isolation, and graceful shutdown.

# Overview

The supervisor tree organizes services into two layers for failure isolation:

	RootSupervisor ("sentryline")
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocketHubService
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

This hierarchy ensures that:
  - A crash in the hub's broadcast loop doesn't take down webhook ingestion
  - An HTTP server failure doesn't drop the hub's client bookkeeping
  - Each layer can restart independently with its own backoff

# Key Features

Automatic Restart:
  - Crashed services are automatically restarted
  - Exponential backoff prevents restart storms
  - Configurable failure thresholds and decay rates

Structured Logging:
  - Supervisor events are reported through sutureslog into slog
  - Service identity comes from each service's fmt.Stringer

Graceful Shutdown:
  - Context cancellation propagates down the tree
  - UnstoppedServiceReport identifies services that failed to stop

# Usage

	logger := logging.NewSlogLogger()
	tree, err := supervisor.NewSupervisorTree(logger, supervisor.DefaultTreeConfig())
	if err != nil {
		return err
	}

	tree.AddMessagingService(services.NewWebSocketHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(srv, 10*time.Second))

	return tree.Serve(ctx)

# See Also

  - internal/supervisor/services: suture.Service wrappers for app components
  - github.com/thejerf/suture/v4: Underlying supervision library
*/
package supervisor
