// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

// Package jobs runs friend recommendation computations as asynchronous,
// trackable jobs.
//
// # Lifecycle
//
//	pending -> running -> completed
//	                   -> failed
//
// Submit validates parameters synchronously; an invalid request never
// receives a job ID. Accepted jobs are stored in the Registry as Pending
// and queued. A worker claims a job with a compare-and-set from Pending
// to Running, so no job is ever executed twice. The worker ingests the
// inputs, scores every user through recommend.Runner, writes the
// Artifact to the ArtifactStore, and only then marks the job Completed.
// Any error or panic marks it Failed with a kind of parse, graph,
// timeout or execution.
//
// # Reading State
//
// Status, List and Watch return Snapshot values. Transitions are
// monotonic: a reader never observes a job move backwards.
//
// # Storage
//
// Inputs and outputs live in an ArtifactStore: MemoryStore by default,
// or BadgerStore for outputs too large to hold in memory. Inputs are
// deleted once a job is terminal; the Janitor evicts terminal jobs and
// their results after the retention TTL.
package jobs
