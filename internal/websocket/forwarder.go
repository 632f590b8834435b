// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package websocket

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/events"
	"github.com/tomtom215/friendrec/internal/metrics"
)

const forwarderConsumer = "websocket-forwarder"

// Broadcaster is satisfied by *Hub.
type Broadcaster interface {
	Broadcast(msgType string, data interface{}) bool
}

// Forwarder relays job events from the event bus to websocket clients.
// It implements suture.Service.
type Forwarder struct {
	subscriber message.Subscriber
	hub        Broadcaster
	logger     zerolog.Logger

	subscribed chan struct{}
	once       sync.Once
}

// NewForwarder creates a Forwarder reading events.TopicJobs.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewForwarder(subscriber message.Subscriber, hub Broadcaster, logger zerolog.Logger) *Forwarder {
	return &Forwarder{
		subscriber: subscriber,
		hub:        hub,
		logger:     logger.With().Str("component", forwarderConsumer).Logger(),
		subscribed: make(chan struct{}),
	}
}

// Serve subscribes and forwards until ctx is done.
func (f *Forwarder) Serve(ctx context.Context) error {
	msgs, err := f.subscriber.Subscribe(ctx, events.TopicJobs)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", events.TopicJobs, err)
	}
	f.logger.Info().Str("topic", events.TopicJobs).Msg("forwarding job events to websocket clients")
	f.once.Do(func() { close(f.subscribed) })

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("job event subscription closed")
			}
			f.forward(msg)
			msg.Ack()
		}
	}
}

// Subscribed is closed once the first subscription is active.
func (f *Forwarder) Subscribed() <-chan struct{} {
	return f.subscribed
}

// String implements fmt.Stringer for suture logs.
func (f *Forwarder) String() string {
	return forwarderConsumer
}

func (f *Forwarder) forward(msg *message.Message) {
	ev, err := events.UnmarshalEvent(msg.Payload)
	if err != nil {
		f.logger.Warn().Err(err).Str("message_uuid", msg.UUID).Msg("dropping malformed job event")
		return
	}
	metrics.EventsConsumed.WithLabelValues(forwarderConsumer).Inc()
	f.hub.Broadcast(MessageTypeJobEvent, ev)
}
