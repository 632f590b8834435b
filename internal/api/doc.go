// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

/*
Package api exposes the job engine over HTTP.

Routes are served by a chi router under /api/v1:

	POST /api/v1/jobs                 submit a multipart job (202)
	GET  /api/v1/jobs                 list tracked jobs
	GET  /api/v1/jobs/{id}            job status
	GET  /api/v1/jobs/{id}/result     JSON result (409 until completed)
	GET  /api/v1/jobs/{id}/download   text result as an attachment
	GET  /api/v1/jobs/{id}/ws         websocket stream of status changes
	GET  /api/v1/events               recent lifecycle events
	GET  /api/v1/events/ws            websocket feed of lifecycle events
	GET  /api/v1/health/live          liveness
	GET  /api/v1/health/ready         readiness
	GET  /metrics                     Prometheus exposition

A submission carries the fields base_file, secondary_file,
use_secondary_file and N:

	curl -F base_file=@edges.txt -F N=3 http://localhost:8080/api/v1/jobs

JSON endpoints answer with the models.APIResponse envelope. Error codes
are listed in package models.
*/
package api
