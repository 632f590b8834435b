// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package api

import (
	"context"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/events"
	"github.com/tomtom215/friendrec/internal/jobs"
	wshub "github.com/tomtom215/friendrec/internal/websocket"
)

// JobService is the part of *jobs.Engine the handlers use.
type JobService interface {
	Submit(ctx context.Context, req jobs.SubmitRequest) (string, error)
	Status(id string) (jobs.Snapshot, error)
	List() []jobs.Snapshot
	Watch(id string) (<-chan jobs.Snapshot, func(), error)
	Result(ctx context.Context, id string) (*jobs.Artifact, error)
	Ready() bool
	QueueLen() int
}

// EventSource returns retained lifecycle events. Satisfied by
// *events.Auditor.
type EventSource interface {
	Recent(jobID string, limit int) []events.JobEvent
}

// EventHub accepts websocket clients for the live event feed. Satisfied
// by *wshub.Hub.
type EventHub interface {
	Attach(conn *websocket.Conn) (*wshub.Client, error)
}

// HandlerConfig holds handler settings.
type HandlerConfig struct {
	// MaxUploadBytes bounds a multipart submission. Default: 64 MiB.
	MaxUploadBytes int64

	// AllowedOrigins are accepted for websocket upgrades; "*" accepts any.
	AllowedOrigins []string

	Version string
}

const defaultMaxUploadBytes = 64 << 20

// Handler serves the HTTP endpoints.
type Handler struct {
	jobs      JobService
	events    EventSource
	hub       EventHub
	config    HandlerConfig
	logger    zerolog.Logger
	startTime time.Time
}

// HandlerOption configures optional Handler dependencies.
type HandlerOption func(*Handler)

// WithEventHub enables GET /api/v1/events/ws.
func WithEventHub(hub EventHub) HandlerOption {
	return func(h *Handler) {
		h.hub = hub
	}
}

// NewHandler creates a Handler. events may be nil, in which case the
// events endpoint returns an empty list.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHandler(svc JobService, src EventSource, cfg HandlerConfig, logger zerolog.Logger, opts ...HandlerOption) *Handler {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = defaultMaxUploadBytes
	}
	h := &Handler{
		jobs:      svc,
		events:    src,
		config:    cfg,
		logger:    logger.With().Str("component", "api").Logger(),
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}
