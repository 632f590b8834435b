// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

/*
Package websocket broadcasts job lifecycle events to websocket clients.

A Forwarder subscribes to the event bus and hands every events.JobEvent
to the Hub, which writes it to each connected client as

	{"type": "job_event", "data": {"job_id": "...", "state": "running", ...}}

Clients may send {"type": "ping"} and receive {"type": "pong"}. A client
that cannot keep up with its send buffer is disconnected.

Both Hub and Forwarder run under the supervisor. Per-job status streams
are served separately by package api.
*/
package websocket
