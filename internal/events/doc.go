// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package events publishes job lifecycle events on an in-process
// Watermill bus and keeps an audit trail of them.
//
// Bus implements jobs.Publisher: the engine hands it a snapshot after
// every state change and Bus emits a JobEvent on TopicJobs. Publishing
// does not wait for consumers.
//
// Auditor is a supervised consumer. It records the most recent events in
// a fixed-size ring, served by the API at /api/v1/events.
//
// Usage:
//
//	bus := events.NewBus(events.BusConfig{}, logger)
//	engine, _ := jobs.NewEngine(cfg, store, logger, jobs.WithPublisher(bus))
//	auditor := events.NewAuditor(bus.Subscriber(), events.AuditorConfig{}, logger)
//	supervisor.AddMessagingService(auditor)
package events
