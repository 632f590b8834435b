// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/tomtom215/friendrec/internal/recommend"
)

// watchBuffer covers the initial snapshot plus every later transition,
// so notifying a watcher never blocks the registry.
const watchBuffer = 4

// Registry maps job IDs to job records. Every mutation goes through a
// validated state transition under one lock; readers receive Snapshots.
// It is safe for concurrent use.
type Registry struct {
	mu   sync.RWMutex
	jobs map[string]*entry
}

type entry struct {
	snap     Snapshot
	watchers map[chan Snapshot]struct{}
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{jobs: make(map[string]*entry)}
}

// Create adds a new Pending job.
func (r *Registry) Create(s Snapshot) error {
	if s.State != StatePending {
		return fmt.Errorf("create job %s in state %s: %w", s.ID, s.State, errInvalidTransition)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[s.ID]; exists {
		return fmt.Errorf("job %s already exists", s.ID)
	}
	r.jobs[s.ID] = &entry{snap: s}
	return nil
}

// Get returns a snapshot of the job.
func (r *Registry) Get(id string) (Snapshot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	return e.snap, nil
}

// List returns snapshots of all jobs, oldest first.
func (r *Registry) List() []Snapshot {
	r.mu.RLock()
	out := make([]Snapshot, 0, len(r.jobs))
	for _, e := range r.jobs {
		out = append(out, e.snap)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of tracked jobs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.jobs)
}

// Claim moves a Pending job to Running. It returns false, without error,
// if the job is no longer Pending, so at most one caller ever owns a job.
func (r *Registry) Claim(id string, now time.Time) (Snapshot, bool, error) {
	s, err := r.transition(id, StateRunning, func(s *Snapshot) {
		s.StartedAt = &now
	})
	if errors.Is(err, errInvalidTransition) {
		return s, false, nil
	}
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

// Complete moves a Running job to Completed.
func (r *Registry) Complete(id, resultRef string, stats recommend.RunStats, now time.Time) (Snapshot, error) {
	return r.transition(id, StateCompleted, func(s *Snapshot) {
		s.ResultRef = resultRef
		s.Stats = &stats
		s.FinishedAt = &now
	})
}

// Fail moves a Running job to Failed.
func (r *Registry) Fail(id string, jobErr *JobError, now time.Time) (Snapshot, error) {
	return r.transition(id, StateFailed, func(s *Snapshot) {
		s.Error = jobErr
		s.FinishedAt = &now
	})
}

// transition applies a validated state change and notifies watchers.
// On a rejected transition it returns the current snapshot and
// errInvalidTransition unwrapped.
func (r *Registry) transition(id string, to State, mutate func(*Snapshot)) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	if !e.snap.State.CanTransition(to) {
		return e.snap, errInvalidTransition
	}

	e.snap.State = to
	mutate(&e.snap)

	for ch := range e.watchers {
		select {
		case ch <- e.snap:
		default:
		}
		if to.IsTerminal() {
			close(ch)
			delete(e.watchers, ch)
		}
	}
	return e.snap, nil
}

// Watch returns a channel that receives the current snapshot and every
// later one until the job is terminal, then closes. The returned stop
// function releases the watcher early and is safe to call more than once.
func (r *Registry) Watch(id string) (<-chan Snapshot, func(), error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return nil, nil, ErrNotFound
	}

	ch := make(chan Snapshot, watchBuffer)
	ch <- e.snap
	if e.snap.State.IsTerminal() {
		close(ch)
		return ch, func() {}, nil
	}

	if e.watchers == nil {
		e.watchers = make(map[chan Snapshot]struct{})
	}
	e.watchers[ch] = struct{}{}

	stop := func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if cur, ok := r.jobs[id]; ok {
			if _, watching := cur.watchers[ch]; watching {
				delete(cur.watchers, ch)
				close(ch)
			}
		}
	}
	return ch, stop, nil
}

// Expired returns terminal jobs that finished before cutoff.
func (r *Registry) Expired(cutoff time.Time) []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Snapshot
	for _, e := range r.jobs {
		if e.snap.State.IsTerminal() && e.snap.FinishedAt != nil && e.snap.FinishedAt.Before(cutoff) {
			out = append(out, e.snap)
		}
	}
	return out
}

// Remove deletes a job record and closes its watchers.
func (r *Registry) Remove(id string) (Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.jobs[id]
	if !ok {
		return Snapshot{}, ErrNotFound
	}
	for ch := range e.watchers {
		close(ch)
	}
	delete(r.jobs, id)
	return e.snap, nil
}

// Counts returns the number of jobs in each state.
func (r *Registry) Counts() map[State]int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make(map[State]int, 4)
	for _, e := range r.jobs {
		out[e.snap.State]++
	}
	return out
}
