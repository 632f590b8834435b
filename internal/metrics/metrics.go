// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_http_requests_total",
			Help: "HTTP requests served, by route pattern and status",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendrec_http_request_duration_seconds",
			Help:    "HTTP handler latency, including multipart upload parsing",
			Buckets: []float64{0.005, 0.025, 0.1, 0.25, 0.5, 1, 2.5, 5, 15, 30},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "friendrec_http_in_flight_requests",
			Help: "HTTP requests currently being handled",
		},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_http_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"endpoint"},
	)

	// Job Metrics
	JobSubmissions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_job_submissions_total",
			Help: "Total number of job submissions by outcome",
		},
		[]string{"outcome"}, // "accepted", "invalid", "queue_full", "error"
	)

	JobTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_job_transitions_total",
			Help: "Total number of job state transitions",
		},
		[]string{"from", "to"},
	)

	JobsByState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "friendrec_jobs",
			Help: "Current number of tracked jobs by state",
		},
		[]string{"state"},
	)

	JobFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_job_failures_total",
			Help: "Total number of failed jobs by error kind",
		},
		[]string{"kind"}, // "parse", "graph", "timeout", "execution"
	)

	JobDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendrec_job_duration_seconds",
			Help:    "Wall-clock time from Running to a terminal state",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300, 900},
		},
		[]string{"state"},
	)

	JobQueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "friendrec_job_queue_depth",
			Help: "Number of jobs waiting for a worker",
		},
	)

	JobWorkersBusy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "friendrec_job_workers_busy",
			Help: "Number of workers currently executing a job",
		},
	)

	// Scoring Metrics
	ShardDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "friendrec_shard_duration_seconds",
			Help:    "Time to score one shard of users",
			Buckets: prometheus.DefBuckets,
		},
	)

	UsersScored = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "friendrec_users_scored_total",
			Help: "Total number of users scored across all jobs",
		},
	)

	RecommendationsProduced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "friendrec_recommendations_total",
			Help: "Total number of recommendations produced",
		},
	)

	GraphSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "friendrec_graph_size",
			Help:    "Size of ingested graphs",
			Buckets: prometheus.ExponentialBuckets(10, 10, 7), // 10 .. 10M
		},
		[]string{"dimension"}, // "users", "edges"
	)

	// Artifact Store Metrics
	ArtifactOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_artifact_operations_total",
			Help: "Total number of artifact store operations",
		},
		[]string{"backend", "operation", "result"},
	)

	ArtifactBytesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_artifact_bytes_written_total",
			Help: "Total bytes written to the artifact store",
		},
		[]string{"backend"},
	)

	// Retention Metrics
	// Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "friendrec_breaker_state",
			Help: "Artifact store breaker state: 0 closed, 1 half-open, 2 open",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_breaker_requests_total",
			Help: "Requests through a circuit breaker by result",
		},
		[]string{"name", "result"}, // result: success, failure, rejected
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_breaker_transitions_total",
			Help: "Circuit breaker state transitions",
		},
		[]string{"name", "from", "to"},
	)

	RetentionEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "friendrec_retention_evictions_total",
			Help: "Total number of jobs evicted by retention",
		},
	)

	// Event Bus Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_events_published_total",
			Help: "Total number of job lifecycle events published",
		},
		[]string{"state"},
	)

	EventsConsumed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_events_consumed_total",
			Help: "Total number of job lifecycle events consumed",
		},
		[]string{"consumer"},
	)

	// Event Stream Metrics
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "friendrec_event_stream_clients",
			Help: "Connected job event stream clients",
		},
	)

	WSMessagesSent = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "friendrec_event_stream_messages_total",
			Help: "Job events written to stream clients",
		},
	)

	WSErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "friendrec_event_stream_errors_total",
			Help: "Event stream failures by stage",
		},
		[]string{"error_type"},
	)

	// Process Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "friendrec_build_info",
			Help: "Constant 1, labeled with the running build",
		},
		[]string{"version", "go_version"},
	)

	AppUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "friendrec_uptime_seconds",
			Help: "Seconds since the process started",
		},
	)
)

// RecordAPIRequest counts one finished request. endpoint is the chi route
// pattern, never the raw path, so job IDs do not become label values.
func RecordAPIRequest(method, endpoint, statusCode string, took time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(took.Seconds())
}

// TrackActiveRequest moves the in-flight gauge up on entry and down on exit.
func TrackActiveRequest(entering bool) {
	delta := -1.0
	if entering {
		delta = 1
	}
	APIActiveRequests.Add(delta)
}

// RecordJobSubmission records the outcome of a Submit call.
func RecordJobSubmission(outcome string) {
	JobSubmissions.WithLabelValues(outcome).Inc()
}

// RecordJobTransition moves one job between state gauges.
// An empty from means the job was just created.
func RecordJobTransition(from, to string) {
	if from != "" {
		JobsByState.WithLabelValues(from).Dec()
	}
	JobsByState.WithLabelValues(to).Inc()
	JobTransitions.WithLabelValues(from, to).Inc()
}

// RecordJobFinished records a terminal job. kind is empty for completed jobs.
func RecordJobFinished(state, kind string, duration time.Duration) {
	JobDuration.WithLabelValues(state).Observe(duration.Seconds())
	if kind != "" {
		JobFailures.WithLabelValues(kind).Inc()
	}
}

// RecordJobEvicted removes an evicted job from its state gauge.
func RecordJobEvicted(state string) {
	JobsByState.WithLabelValues(state).Dec()
	RetentionEvictions.Inc()
}

// RecordShard records one scored shard.
func RecordShard(users int, duration time.Duration) {
	ShardDuration.Observe(duration.Seconds())
	UsersScored.Add(float64(users))
}

// RecordGraph records the size of an ingested graph.
func RecordGraph(users, edges int) {
	GraphSize.WithLabelValues("users").Observe(float64(users))
	GraphSize.WithLabelValues("edges").Observe(float64(edges))
}

// RecordArtifactOp records an artifact store operation.
func RecordArtifactOp(backend, operation string, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	ArtifactOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordArtifactWrite records a successful artifact write.
func RecordArtifactWrite(backend string, size int) {
	RecordArtifactOp(backend, "put", nil)
	ArtifactBytesWritten.WithLabelValues(backend).Add(float64(size))
}
