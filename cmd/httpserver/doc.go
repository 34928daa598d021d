// Package main (cmd/httpserver) implements the swag store backend server.
//
// The server provides HTTP endpoints for provisioning promotional
// Datadog instances, retrieving per-instance MCP configuration with a
// bearer token, and recording storefront swag orders. A token-gated
// admin API exposes the recorded orders and the instance registry.
//
// Instances expire seven days after creation. Expired records are
// hidden immediately and removed by a periodic cleanup sweep. When a
// deployment script is configured, each new instance triggers it in the
// background; the instance becomes active or failed depending on the
// script's exit status.
//
// Orders are kept in an append-only in-memory log. Every accepted order
// is snapshotted to a JSON file and, when configured, forwarded to a
// webhook. Both side effects are best effort and never fail the
// submitting request.
//
// Configuration is handled through command-line flags with environment
// variable fallbacks; a .env file in the working directory is loaded at
// startup.
//
// The server implements graceful shutdown on receiving termination
// signals (SIGINT/SIGTERM) and supports health checks, metrics
// collection, and optional profiling endpoints.
//
// Example usage:
//
//	store-server --listen-addr=0.0.0.0:3001 \
//	    --admin-token=secret \
//	    --deploy-script=./deploy-instance.sh \
//	    --webhook-url=https://hooks.example.com/orders \
//	    --orders-file=/var/lib/swag-store/orders.json
package main
