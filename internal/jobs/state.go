// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"time"

	"github.com/tomtom215/friendrec/internal/recommend"
)

// State is a job lifecycle state.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// IsTerminal reports whether no transition can leave s.
func (s State) IsTerminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	switch s {
	case StatePending, StateRunning, StateCompleted, StateFailed:
		return true
	}
	return false
}

// CanTransition reports whether s -> to is allowed:
//
//	pending -> running
//	running -> completed | failed
func (s State) CanTransition(to State) bool {
	switch s {
	case StatePending:
		return to == StateRunning
	case StateRunning:
		return to == StateCompleted || to == StateFailed
	default:
		return false
	}
}

// ErrorKind classifies a job failure.
type ErrorKind string

const (
	KindParse     ErrorKind = "parse"
	KindGraph     ErrorKind = "graph"
	KindTimeout   ErrorKind = "timeout"
	KindExecution ErrorKind = "execution"
)

// JobError is the failure recorded on a Failed job.
type JobError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// Error implements error.
func (e *JobError) Error() string {
	return string(e.Kind) + ": " + e.Message
}

// Unwrap maps timeout and execution kinds to their sentinels.
func (e *JobError) Unwrap() error {
	switch e.Kind {
	case KindTimeout:
		return ErrTimeout
	case KindExecution:
		return ErrExecution
	}
	return nil
}

// Inputs references the stored input artifacts of a job.
type Inputs struct {
	Edges        string `json:"-"`
	Demographics string `json:"-"`
}

// Snapshot is a point-in-time copy of a job record. Snapshots are values;
// changing one never affects the registry.
type Snapshot struct {
	ID           string              `json:"id"`
	State        State               `json:"state"`
	N            int                 `json:"n"`
	UseSecondary bool                `json:"use_secondary_file"`
	Inputs       Inputs              `json:"-"`
	ResultRef    string              `json:"result_ref,omitempty"`
	Error        *JobError           `json:"error,omitempty"`
	Stats        *recommend.RunStats `json:"stats,omitempty"`
	CreatedAt    time.Time           `json:"created_at"`
	StartedAt    *time.Time          `json:"started_at,omitempty"`
	FinishedAt   *time.Time          `json:"finished_at,omitempty"`
}

// Err returns the recorded failure as an error, or nil.
func (s Snapshot) Err() error {
	if s.Error == nil {
		return nil
	}
	return s.Error
}

// Duration returns the running time of a started job, measured to now
// for jobs that have not finished.
func (s Snapshot) Duration(now time.Time) time.Duration {
	if s.StartedAt == nil {
		return 0
	}
	end := now
	if s.FinishedAt != nil {
		end = *s.FinishedAt
	}
	return end.Sub(*s.StartedAt)
}
