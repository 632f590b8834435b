// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/friendrec/internal/metrics"
	"github.com/tomtom215/friendrec/internal/models"
)

// HealthLive handles GET /api/v1/health/live. It answers 200 while the
// process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	uptime := time.Since(h.startTime)
	metrics.AppUptime.Set(uptime.Seconds())
	respondOK(w, r, http.StatusOK, models.Health{
		Status:         "alive",
		Version:        h.config.Version,
		Uptime:         uptime.Round(time.Second).String(),
		QueueDepth:     h.jobs.QueueLen(),
		WorkersRunning: h.jobs.Ready(),
	})
}

// HealthReady handles GET /api/v1/health/ready. It answers 503 until the
// worker pool is running.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status:         "ready",
		Version:        h.config.Version,
		QueueDepth:     h.jobs.QueueLen(),
		WorkersRunning: h.jobs.Ready(),
	}
	if !health.WorkersRunning {
		health.Status = "not_ready"
		respondJSON(w, r, http.StatusServiceUnavailable, &models.APIResponse{
			Status: models.StatusError,
			Data:   health,
			Error: &models.APIError{
				Code:    models.CodeUnavailable,
				Message: "Job workers are not running",
			},
		})
		return
	}
	respondOK(w, r, http.StatusOK, health)
}
