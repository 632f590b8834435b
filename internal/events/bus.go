// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package events

import (
	"context"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/metrics"
)

// Metadata keys set on every job message.
const (
	MetadataJobID = "job_id"
	MetadataState = "state"
)

// BusConfig configures the in-process event bus.
type BusConfig struct {
	// BufferSize is the per-subscriber channel buffer. Default: 256.
	BufferSize int64
}

// Bus is an in-process watermill pub/sub carrying job lifecycle events.
// It implements jobs.Publisher.
type Bus struct {
	pubsub *gochannel.GoChannel
	now    func() time.Time
	logger zerolog.Logger
}

var _ jobs.Publisher = (*Bus)(nil)

// NewBus creates a Bus. Publishing never waits for subscribers to ack.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBus(cfg BusConfig, logger zerolog.Logger) *Bus {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 256
	}
	component := logger.With().Str("component", "events").Logger()
	return &Bus{
		pubsub: gochannel.NewGoChannel(gochannel.Config{
			OutputChannelBuffer:            cfg.BufferSize,
			BlockPublishUntilSubscriberAck: false,
		}, NewLoggerAdapter(component)),
		now:    time.Now,
		logger: component,
	}
}

// Publish emits the event for a job snapshot on TopicJobs.
func (b *Bus) Publish(ctx context.Context, s jobs.Snapshot) error {
	ev := NewJobEvent(s, b.now())
	data, err := MarshalEvent(ev)
	if err != nil {
		return err
	}

	msg := message.NewMessage(ev.EventID, data)
	msg.Metadata.Set(MetadataJobID, ev.JobID)
	msg.Metadata.Set(MetadataState, string(ev.State))
	msg.SetContext(ctx)

	if err := b.pubsub.Publish(TopicJobs, msg); err != nil {
		return fmt.Errorf("publish job event: %w", err)
	}
	metrics.EventsPublished.WithLabelValues(string(ev.State)).Inc()
	return nil
}

// Subscriber returns the subscriber side of the bus.
func (b *Bus) Subscriber() message.Subscriber {
	return b.pubsub
}

// Close closes the bus and all subscriptions.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}
