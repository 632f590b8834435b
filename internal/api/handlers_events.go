// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package api

import (
	"net/http"
	"strconv"

	"github.com/tomtom215/friendrec/internal/events"
	"github.com/tomtom215/friendrec/internal/models"
)

const (
	defaultEventLimit = 100
	maxEventLimit     = 1000
)

// ListEvents handles GET /api/v1/events?job_id=&limit=. Events are
// returned oldest first.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := defaultEventLimit
	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxEventLimit {
			respondError(w, r, http.StatusBadRequest, models.CodeBadQuery,
				"limit must be an integer between 1 and "+strconv.Itoa(maxEventLimit), nil)
			return
		}
		limit = n
	}

	recent := []events.JobEvent{}
	if h.events != nil {
		recent = h.events.Recent(q.Get("job_id"), limit)
	}
	respondOK(w, r, http.StatusOK, recent)
}
