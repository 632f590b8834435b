// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package events

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/message/router/middleware"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/metrics"
)

const auditorHandler = "job-auditor"

// AuditorConfig configures the Auditor.
type AuditorConfig struct {
	// Capacity is the number of events retained. Default: 1000.
	Capacity int

	// CloseTimeout bounds handler drain on shutdown. Default: 10s.
	CloseTimeout time.Duration
}

// Auditor consumes job events and keeps a bounded, in-memory audit trail.
// It implements suture.Service; each Serve call builds a fresh router so
// the supervisor can restart it.
type Auditor struct {
	subscriber message.Subscriber
	config     AuditorConfig
	logger     zerolog.Logger

	mu    sync.RWMutex
	trail []JobEvent
	next  int
	full  bool

	running     chan struct{}
	runningOnce sync.Once
}

// NewAuditor creates an Auditor reading from subscriber.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewAuditor(subscriber message.Subscriber, cfg AuditorConfig, logger zerolog.Logger) *Auditor {
	if cfg.Capacity <= 0 {
		cfg.Capacity = 1000
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}
	return &Auditor{
		subscriber: subscriber,
		config:     cfg,
		logger:     logger.With().Str("component", "auditor").Logger(),
		trail:      make([]JobEvent, cfg.Capacity),
		running:    make(chan struct{}),
	}
}

// Serve runs the consumer until ctx is done.
func (a *Auditor) Serve(ctx context.Context) error {
	router, err := message.NewRouter(message.RouterConfig{
		CloseTimeout: a.config.CloseTimeout,
	}, NewLoggerAdapter(a.logger))
	if err != nil {
		return fmt.Errorf("create watermill router: %w", err)
	}
	router.AddMiddleware(middleware.Recoverer)
	router.AddConsumerHandler(auditorHandler, TopicJobs, a.subscriber, a.handle)

	go func() {
		select {
		case <-router.Running():
			a.runningOnce.Do(func() { close(a.running) })
		case <-ctx.Done():
		}
	}()

	if err := router.Run(ctx); err != nil {
		return fmt.Errorf("run auditor router: %w", err)
	}
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (a *Auditor) String() string {
	return "event-auditor"
}

// Running is closed once the first router is consuming.
func (a *Auditor) Running() <-chan struct{} {
	return a.running
}

// handle records one event. Undecodable messages are logged and acked.
func (a *Auditor) handle(msg *message.Message) error {
	ev, err := UnmarshalEvent(msg.Payload)
	if err != nil {
		a.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed job event")
		return nil
	}

	a.mu.Lock()
	a.trail[a.next] = *ev
	a.next = (a.next + 1) % len(a.trail)
	if a.next == 0 {
		a.full = true
	}
	a.mu.Unlock()

	metrics.EventsConsumed.WithLabelValues(auditorHandler).Inc()

	e := a.logger.Info().
		Str("job_id", ev.JobID).
		Str("state", string(ev.State))
	if ev.ErrorKind != "" {
		e = e.Str("error_kind", ev.ErrorKind)
	}
	e.Msg("job state changed")
	return nil
}

// Recent returns up to limit events, oldest first. A non-positive limit
// returns everything retained. A non-empty jobID filters by job.
func (a *Auditor) Recent(jobID string, limit int) []JobEvent {
	a.mu.RLock()
	defer a.mu.RUnlock()

	var ordered []JobEvent
	if a.full {
		ordered = append(ordered, a.trail[a.next:]...)
	}
	ordered = append(ordered, a.trail[:a.next]...)

	out := make([]JobEvent, 0, len(ordered))
	for _, ev := range ordered {
		if jobID == "" || ev.JobID == jobID {
			out = append(out, ev)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
