// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package middleware provides HTTP middleware for the FriendRec API.
//
// All middleware use the func(http.Handler) http.Handler signature and
// compose with chi:
//
//	r.Use(middleware.RequestID)
//	r.Use(middleware.AccessLog(logger, time.Second))
//	r.Use(middleware.PrometheusMetrics)
//
// RequestID must run first so AccessLog entries carry request_id.
package middleware
