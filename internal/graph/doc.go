// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package graph provides the in-memory friendship graph used by a single
// recommendation job.
//
// # Model
//
// Users are identified by opaque strings and may carry a map of
// demographic attributes. Friendships are undirected edges stored in
// both endpoints' adjacency sets, so Neighbors and HasEdge are O(1)
// expected per lookup.
//
// Invariants:
//
//   - No self-loops (ErrInvalidEdge)
//   - No duplicate edges (re-adding is a no-op)
//   - Edges only between known users (ErrUnknownUser)
//   - Adjacency is always symmetric
//
// # Thread Safety
//
// Construction is single-threaded. After Freeze the graph is immutable
// and safe for concurrent readers, which is how the scoring shards use it.
package graph
