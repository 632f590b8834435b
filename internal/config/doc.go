// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

/*
Package config loads FriendRec configuration with koanf.

Sources, lowest priority first:
  - built-in defaults
  - a YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml or /etc/friendrec/config.yaml
  - environment variables

# Environment Variables

Server:
  - HTTP_HOST, HTTP_PORT (default 0.0.0.0:8080)
  - HTTP_READ_TIMEOUT, HTTP_WRITE_TIMEOUT, HTTP_IDLE_TIMEOUT, HTTP_SHUTDOWN_TIMEOUT
  - MAX_UPLOAD_BYTES: multipart submission limit (default 64MiB)
  - CORS_ORIGINS: comma-separated (default *)
  - RATE_LIMIT_REQUESTS, RATE_LIMIT_WINDOW, DISABLE_RATE_LIMIT

Logging:
  - LOG_LEVEL, LOG_FORMAT (json|console), LOG_CALLER

Engine:
  - ENGINE_WORKERS, ENGINE_QUEUE_SIZE, ENGINE_JOB_TIMEOUT, ENGINE_MAX_N
  - ENGINE_SHARD_SIZE, ENGINE_SHARD_WORKERS
  - ENGINE_WEIGHTING (linear|probability), ENGINE_DEMOGRAPHIC_WEIGHT
  - ENGINE_DEMOGRAPHIC_FALLBACK
  - ENGINE_MAX_USERS, ENGINE_MAX_LINE_BYTES, ENGINE_ATTRIBUTES

Storage and retention:
  - STORAGE_BACKEND (memory|badger), STORAGE_PATH
  - STORAGE_BREAKER_FAILURES (0 disables), STORAGE_BREAKER_TIMEOUT
  - RETENTION_TTL, RETENTION_INTERVAL

Events and supervision:
  - EVENTS_BUFFER_SIZE, EVENTS_AUDIT_CAPACITY
  - SUPERVISOR_FAILURE_THRESHOLD, SUPERVISOR_FAILURE_DECAY,
    SUPERVISOR_FAILURE_BACKOFF, SUPERVISOR_SHUTDOWN_TIMEOUT

# Example YAML

	server:
	  port: 9000
	engine:
	  workers: 4
	  weighting: probability
	  demographic_fallback: true
	storage:
	  backend: badger
	  path: /var/lib/friendrec
*/
package config
