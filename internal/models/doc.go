// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package models defines the JSON shapes of the HTTP API.
//
// Every JSON endpoint answers with an APIResponse envelope:
//
//	{
//	  "status": "success",
//	  "data": {"job_id": "...", "status_url": "/api/v1/jobs/..."},
//	  "metadata": {"timestamp": "2026-01-01T00:00:00Z", "request_id": "..."}
//	}
//
// Failures set status to "error" and fill Error with a code from the
// Code* constants.
package models
