// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Command server runs the FriendRec job engine behind its HTTP API.
//
// Startup order:
//
//  1. Configuration: defaults, then config.yaml (or CONFIG_PATH), then
//     environment variables (koanf v2)
//  2. Logging: zerolog, JSON or console
//  3. Artifact store: memory, or badger at STORAGE_PATH, behind a circuit breaker
//  4. Event bus: in-process watermill pub/sub for job state changes
//  5. Job engine, retention janitor and event auditor
//  6. Websocket hub and the forwarder feeding it from the bus
//  7. HTTP server: chi router under /api/v1, Prometheus at /metrics
//
// Everything long-lived runs under a suture supervisor tree and stops on
// SIGINT or SIGTERM.
//
// Example:
//
//	ENGINE_WORKERS=4 STORAGE_BACKEND=badger STORAGE_PATH=/data/artifacts ./friendrec
//	curl -F base_file=@edges.txt -F N=5 http://localhost:8080/api/v1/jobs
package main
