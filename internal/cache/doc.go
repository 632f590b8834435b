// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package cache provides a generic in-memory LRU cache with TTL.
//
// The job engine keeps recently decoded result artifacts here, so polling
// clients do not decode the same stored artifact on every request.
package cache
