// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

/*
Package metrics provides Prometheus metrics for the recommendation service.

All collectors are registered on the default registry through promauto and
exposed at /metrics by the HTTP server:

	curl http://localhost:8080/metrics

# Available Metrics

HTTP:
  - friendrec_http_requests_total{method, endpoint, status_code}
  - friendrec_http_request_duration_seconds{method, endpoint}
  - friendrec_http_in_flight_requests
  - friendrec_http_rate_limited_total{endpoint}

Jobs:
  - friendrec_job_submissions_total{outcome}
  - friendrec_job_transitions_total{from, to}
  - friendrec_jobs{state}
  - friendrec_job_failures_total{kind}
  - friendrec_job_duration_seconds{state}
  - friendrec_job_queue_depth
  - friendrec_job_workers_busy

Scoring:
  - friendrec_shard_duration_seconds
  - friendrec_users_scored_total
  - friendrec_recommendations_total
  - friendrec_graph_size{dimension}

Storage and events:
  - friendrec_artifact_operations_total{backend, operation, result}
  - friendrec_artifact_bytes_written_total{backend}
  - friendrec_retention_evictions_total
  - friendrec_breaker_state{name}
  - friendrec_breaker_requests_total{name, result}
  - friendrec_breaker_transitions_total{name, from, to}
  - friendrec_events_published_total{state}
  - friendrec_events_consumed_total{consumer}

Event stream:
  - friendrec_event_stream_clients
  - friendrec_event_stream_messages_total
  - friendrec_event_stream_errors_total{error_type}

# Example Queries

Job failure ratio over five minutes:

	sum(rate(friendrec_job_failures_total[5m]))
	  / sum(rate(friendrec_job_transitions_total{to="running"}[5m]))

p95 job latency:

	histogram_quantile(0.95, rate(friendrec_job_duration_seconds_bucket[5m]))
*/
package metrics
