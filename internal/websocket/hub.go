// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package websocket

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/metrics"
)

// Message types.
const (
	MessageTypeJobEvent = "job_event"
	MessageTypePing     = "ping"
	MessageTypePong     = "pong"
)

// Message is the frame exchanged with clients.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// ErrHubUnavailable is returned by Attach when the hub loop is not
// accepting clients.
var ErrHubUnavailable = errors.New("websocket hub unavailable")

// registerTimeout bounds how long Attach waits for the hub loop.
const registerTimeout = 2 * time.Second

// Hub fans messages out to every connected client. It implements
// suture.Service; Serve owns the client set.
type Hub struct {
	clients    map[*Client]struct{}
	broadcast  chan Message
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
	logger     zerolog.Logger
}

// NewHub creates a Hub. Call Serve to start delivering messages.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewHub(logger zerolog.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.With().Str("component", "websocket-hub").Logger(),
	}
}

// Serve runs the hub loop until ctx is done, then closes every client.
// Lifecycle events are handled before broadcasts so a message is never
// sent to a client that has already left.
func (h *Hub) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case c := <-h.register:
			h.add(c)
			continue
		case c := <-h.unregister:
			h.remove(c)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.shutdown(ctx)
			return ctx.Err()
		case c := <-h.register:
			h.add(c)
		case c := <-h.unregister:
			h.remove(c)
		case msg := <-h.broadcast:
			h.deliver(msg)
		}
	}
}

// String implements fmt.Stringer for suture logs.
func (h *Hub) String() string {
	return "websocket-hub"
}

// Attach registers conn as a client and starts its pumps. The connection
// is closed if the hub does not accept it in time.
func (h *Hub) Attach(conn *websocket.Conn) (*Client, error) {
	c := newClient(h, conn)
	select {
	case h.register <- c:
		c.start()
		return c, nil
	case <-time.After(registerTimeout):
		_ = conn.Close()
		return nil, ErrHubUnavailable
	}
}

// Broadcast queues a message for all clients. It reports false when the
// queue is full and the message was dropped.
func (h *Hub) Broadcast(msgType string, data interface{}) bool {
	select {
	case h.broadcast <- Message{Type: msgType, Data: data}:
		return true
	default:
		metrics.WSErrors.WithLabelValues("broadcast_dropped").Inc()
		h.logger.Warn().Str("type", msgType).Msg("broadcast queue full, message dropped")
		return false
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	n := len(h.clients)
	h.mu.Unlock()
	metrics.WSConnections.Inc()
	h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client connected")
}

func (h *Hub) remove(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		metrics.WSConnections.Dec()
		h.logger.Debug().Uint64("client_id", c.id).Int("total_clients", n).Msg("websocket client disconnected")
	}
}

// sorted returns clients in connection order. Lock must be held.
func (h *Hub) sorted() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// deliver sends msg to every client in connection order. Clients whose
// send buffer is full are dropped.
func (h *Hub) deliver(msg Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, c := range h.sorted() {
		select {
		case c.send <- msg:
		default:
			close(c.send)
			delete(h.clients, c)
			metrics.WSConnections.Dec()
			metrics.WSErrors.WithLabelValues("slow_client").Inc()
		}
	}
}

func (h *Hub) shutdown(ctx context.Context) {
	h.mu.Lock()
	clients := h.sorted()
	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
		metrics.WSConnections.Dec()
	}
	h.mu.Unlock()

	reason := "context_canceled"
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		reason = "context_deadline"
	}
	h.logger.Info().Str("reason", reason).Int("clients_closed", len(clients)).Msg("websocket hub stopped")
}
