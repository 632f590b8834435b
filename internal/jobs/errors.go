// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/friendrec/internal/graph"
	"github.com/tomtom215/friendrec/internal/ingest"
	"github.com/tomtom215/friendrec/internal/validation"
)

var (
	// ErrInvalidParameter is returned by Submit for rejected parameters.
	// No job is created.
	ErrInvalidParameter = errors.New("invalid parameter")

	// ErrNotFound is returned for an unknown job ID.
	ErrNotFound = errors.New("job not found")

	// ErrNotReady is returned by Result for a job that is not Completed.
	ErrNotReady = errors.New("job result not ready")

	// ErrTimeout marks a job that exceeded its wall-clock ceiling.
	ErrTimeout = errors.New("job timed out")

	// ErrExecution marks an unexpected failure during a job.
	ErrExecution = errors.New("job execution failed")

	// ErrQueueFull is returned by Submit when no queue slot is free.
	// No job is created.
	ErrQueueFull = errors.New("job queue is full")

	// ErrArtifactNotFound is returned by an ArtifactStore for a missing key.
	ErrArtifactNotFound = errors.New("artifact not found")

	// ErrStoreUnavailable is returned while the store circuit breaker is
	// open.
	ErrStoreUnavailable = errors.New("artifact store unavailable")

	errInvalidTransition = errors.New("invalid state transition")
)

// ParameterError wraps the validation failure behind ErrInvalidParameter.
type ParameterError struct {
	Validation *validation.RequestValidationError
}

// Error implements error.
func (e *ParameterError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidParameter, e.Validation.Error())
}

// Unwrap exposes both ErrInvalidParameter and the validation details.
func (e *ParameterError) Unwrap() []error {
	return []error{ErrInvalidParameter, e.Validation}
}

// panicError carries a recovered panic value.
type panicError struct {
	value any
}

func (e *panicError) Error() string {
	return fmt.Sprintf("panic: %v", e.value)
}

// classify maps a run error onto the recorded failure.
func classify(err error, timeout bool) *JobError {
	var (
		pe *ingest.ParseError
		pp *panicError
	)
	switch {
	case timeout || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, ErrTimeout):
		return &JobError{Kind: KindTimeout, Message: err.Error()}
	case errors.Is(err, graph.ErrInvalidEdge),
		errors.Is(err, graph.ErrUnknownUser),
		errors.Is(err, graph.ErrInvalidUser):
		return &JobError{Kind: KindGraph, Message: err.Error()}
	case errors.As(err, &pe):
		return &JobError{Kind: KindParse, Message: pe.Error()}
	case errors.As(err, &pp):
		return &JobError{Kind: KindExecution, Message: pp.Error()}
	default:
		return &JobError{Kind: KindExecution, Message: err.Error()}
	}
}
