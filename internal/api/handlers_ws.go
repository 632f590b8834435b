// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/logging"
	"github.com/tomtom215/friendrec/internal/metrics"
	"github.com/tomtom215/friendrec/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
)

// Websocket message types.
const (
	MessageTypeStatus = "job_status"
)

// WatchMessage is sent for every state change of the watched job.
type WatchMessage struct {
	Type string           `json:"type"`
	Data models.JobStatus `json:"data"`
}

func (h *Handler) upgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
		CheckOrigin:      h.checkWebSocketOrigin,
		HandshakeTimeout: 10 * time.Second,
	}
}

// checkWebSocketOrigin accepts clients without an Origin header,
// configured origins, and same-host pages.
func (h *Handler) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Host != r.Host {
		h.logger.Warn().Str("origin", sanitizeLogValue(origin)).Msg("websocket origin rejected")
		return false
	}
	return true
}

// WatchJob handles GET /api/v1/jobs/{id}/ws. It sends the current status
// and every later change, then closes normally once the job is terminal.
func (h *Handler) WatchJob(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	updates, stop, err := h.jobs.Watch(id)
	if err != nil {
		h.respondJobError(w, r, err)
		return
	}
	defer stop()

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		return
	}
	defer func() { _ = conn.Close() }()

	metrics.WSConnections.Inc()
	defer metrics.WSConnections.Dec()

	logger := logging.Ctx(logging.ContextWithJobID(r.Context(), id))
	logger.Debug().Msg("websocket watcher connected")

	closed := make(chan struct{})
	go readUntilClosed(conn, closed)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case snap, ok := <-updates:
			if !ok {
				_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, "job finished"))
				return
			}
			if err := writeStatus(conn, snap); err != nil {
				metrics.WSErrors.WithLabelValues("write").Inc()
				logger.Debug().Err(err).Msg("websocket write failed")
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				metrics.WSErrors.WithLabelValues("ping").Inc()
				return
			}
		case <-closed:
			logger.Debug().Msg("websocket watcher disconnected")
			return
		case <-r.Context().Done():
			return
		}
	}
}

func writeStatus(conn *websocket.Conn, snap jobs.Snapshot) error {
	if err := conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	if err := conn.WriteJSON(WatchMessage{Type: MessageTypeStatus, Data: toJobStatus(snap)}); err != nil {
		return err
	}
	metrics.WSMessagesSent.Inc()
	return nil
}

// readUntilClosed drains client frames so control frames are processed,
// and closes done when the connection fails.
func readUntilClosed(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.NextReader(); err != nil {
			return
		}
	}
}

// StreamEvents handles GET /api/v1/events/ws. Every job lifecycle event
// is pushed to the client by the event hub.
func (h *Handler) StreamEvents(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondError(w, r, http.StatusServiceUnavailable, models.CodeUnavailable, "Event stream is not enabled", nil)
		return
	}

	up := h.upgrader()
	conn, err := up.Upgrade(w, r, nil)
	if err != nil {
		metrics.WSErrors.WithLabelValues("upgrade").Inc()
		return
	}
	if _, err := h.hub.Attach(conn); err != nil {
		metrics.WSErrors.WithLabelValues("attach").Inc()
		h.logger.Warn().Err(err).Msg("event stream client rejected")
	}
}
