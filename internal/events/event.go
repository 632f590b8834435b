// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package events

import (
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/friendrec/internal/jobs"
)

// TopicJobs carries every job state change.
const TopicJobs = "friendrec.jobs"

// JobEvent is the message payload published for a job state change.
type JobEvent struct {
	EventID         string     `json:"event_id"`
	JobID           string     `json:"job_id"`
	State           jobs.State `json:"state"`
	N               int        `json:"n"`
	UseSecondary    bool       `json:"use_secondary_file"`
	ErrorKind       string     `json:"error_kind,omitempty"`
	ErrorMessage    string     `json:"error_message,omitempty"`
	Users           int        `json:"users,omitempty"`
	Recommendations int        `json:"recommendations,omitempty"`
	DurationMS      int64      `json:"duration_ms,omitempty"`
	OccurredAt      time.Time  `json:"occurred_at"`
}

// NewJobEvent builds the event for a snapshot.
func NewJobEvent(s jobs.Snapshot, now time.Time) *JobEvent {
	ev := &JobEvent{
		EventID:      uuid.New().String(),
		JobID:        s.ID,
		State:        s.State,
		N:            s.N,
		UseSecondary: s.UseSecondary,
		OccurredAt:   now.UTC(),
	}
	if s.Error != nil {
		ev.ErrorKind = string(s.Error.Kind)
		ev.ErrorMessage = s.Error.Message
	}
	if s.Stats != nil {
		ev.Users = s.Stats.Users
		ev.Recommendations = s.Stats.Recommendations
	}
	if s.State.IsTerminal() {
		ev.DurationMS = s.Duration(now).Milliseconds()
	}
	return ev
}

// Validate checks required fields.
func (e *JobEvent) Validate() error {
	if e.EventID == "" {
		return errors.New("event_id is required")
	}
	if e.JobID == "" {
		return errors.New("job_id is required")
	}
	if !e.State.Valid() {
		return fmt.Errorf("invalid state %q", e.State)
	}
	return nil
}

// MarshalEvent validates and encodes an event.
func MarshalEvent(e *JobEvent) ([]byte, error) {
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("marshal event: %w", err)
	}
	return data, nil
}

// UnmarshalEvent decodes and validates an event.
func UnmarshalEvent(data []byte) (*JobEvent, error) {
	var e JobEvent
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, fmt.Errorf("unmarshal event: %w", err)
	}
	if err := e.Validate(); err != nil {
		return nil, fmt.Errorf("validate event: %w", err)
	}
	return &e, nil
}
