// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package models

import "time"

// Response status values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// APIResponse is the envelope for every JSON endpoint.
type APIResponse struct {
	Status   string      `json:"status"`
	Data     interface{} `json:"data"`
	Metadata Metadata    `json:"metadata"`
	Error    *APIError   `json:"error,omitempty"`
}

// Metadata accompanies every response.
type Metadata struct {
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// APIError is a machine-readable error with optional details.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Error codes.
const (
	CodeValidation   = "VALIDATION_ERROR"
	CodeNotFound     = "NOT_FOUND"
	CodeNotReady     = "NOT_READY"
	CodeQueueFull    = "QUEUE_FULL"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeInternal     = "INTERNAL_ERROR"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeBadMultipart = "INVALID_MULTIPART"
	CodeBadQuery     = "INVALID_QUERY_PARAMETER"
	CodeRateLimited  = "TOO_MANY_REQUESTS"
)

// SubmitResponse is returned by POST /api/v1/jobs.
type SubmitResponse struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}

// JobError describes why a job failed.
type JobError struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// JobStats summarizes a completed run.
type JobStats struct {
	Users           int    `json:"users"`
	Edges           int    `json:"edges"`
	Shards          int    `json:"shards"`
	Recommendations int    `json:"recommendations"`
	Weighting       string `json:"weighting"`
	DurationMS      int64  `json:"duration_ms"`
}

// JobStatus is the public view of a job.
type JobStatus struct {
	JobID        string     `json:"job_id"`
	State        string     `json:"state"`
	N            int        `json:"n"`
	UseSecondary bool       `json:"use_secondary_file"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	FinishedAt   *time.Time `json:"finished_at,omitempty"`
	Error        *JobError  `json:"error,omitempty"`
	Stats        *JobStats  `json:"stats,omitempty"`
	ResultURL    string     `json:"result_url,omitempty"`
	DownloadURL  string     `json:"download_url,omitempty"`
}

// JobList is returned by GET /api/v1/jobs.
type JobList struct {
	Jobs    []JobStatus    `json:"jobs"`
	Count   int            `json:"count"`
	ByState map[string]int `json:"by_state"`
}

// Health is returned by the health endpoints.
type Health struct {
	Status         string `json:"status"`
	Version        string `json:"version,omitempty"`
	Uptime         string `json:"uptime,omitempty"`
	QueueDepth     int    `json:"queue_depth"`
	WorkersRunning bool   `json:"workers_running"`
}
