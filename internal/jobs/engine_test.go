// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/validation"
)

const squareEdges = "A B\nA D\nB C\n"

type testEngine struct {
	*Engine
	store *MemoryStore
}

func newTestEngine(t *testing.T, mutate func(*Config), opts ...Option) *testEngine {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	store := NewMemoryStore()
	e, err := NewEngine(cfg, store, zerolog.Nop(), opts...)
	if err != nil {
		t.Fatalf("NewEngine() error = %v", err)
	}
	return &testEngine{Engine: e, store: store}
}

// start runs the worker pool until the test ends.
func (te *testEngine) start(t *testing.T) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = te.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
}

// wait blocks until the job is terminal and returns its final snapshot.
func (te *testEngine) wait(t *testing.T, id string) Snapshot {
	t.Helper()
	ch, stop, err := te.Watch(id)
	if err != nil {
		t.Fatalf("Watch(%s) error = %v", id, err)
	}
	defer stop()

	timeout := time.After(5 * time.Second)
	var last Snapshot
	for {
		select {
		case s, ok := <-ch:
			if !ok {
				return last
			}
			last = s
		case <-timeout:
			t.Fatalf("job %s did not finish, last state %s", id, last.State)
		}
	}
}

func submit(t *testing.T, e *testEngine, req SubmitRequest) string {
	t.Helper()
	id, err := e.Submit(context.Background(), req)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	return id
}

func TestEngine_CompletesJob(t *testing.T) {
	e := newTestEngine(t, nil)
	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 5})

	if s, _ := e.Status(id); s.State != StatePending {
		t.Errorf("state before workers start = %s, want pending", s.State)
	}
	ch, stop, err := e.Watch(id)
	if err != nil {
		t.Fatal(err)
	}
	defer stop()

	e.start(t)

	var states []State
	for s := range ch {
		states = append(states, s.State)
	}
	want := []State{StatePending, StateRunning, StateCompleted}
	if len(states) != len(want) || states[0] != want[0] || states[1] != want[1] || states[2] != want[2] {
		t.Fatalf("observed states = %v, want %v", states, want)
	}

	final, _ := e.Status(id)
	if final.Stats == nil || final.Stats.Users != 4 || final.Stats.Edges != 3 {
		t.Errorf("Stats = %+v, want 4 users and 3 edges", final.Stats)
	}
	if final.StartedAt == nil || final.FinishedAt == nil || final.Error != nil {
		t.Errorf("final snapshot = %+v", final)
	}

	a, err := e.Result(context.Background(), id)
	if err != nil {
		t.Fatalf("Result() error = %v", err)
	}
	var buf bytes.Buffer
	if err := a.WriteText(&buf); err != nil {
		t.Fatal(err)
	}
	if got, want := buf.String(), "A C, 1\nB D, 1\nC A, 1\nD B, 1\n"; got != want {
		t.Errorf("text result = %q, want %q", got, want)
	}

	if e.store.Len() != 1 {
		t.Errorf("store holds %d artifacts after completion, want only the result", e.store.Len())
	}
}

func TestEngine_ArtifactBytesAreDeterministic(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Workers = 2 })
	e.start(t)

	req := SubmitRequest{
		Edges:        []byte(squareEdges + "C E\nD E\n"),
		Demographics: []byte("A m, 30, X, 1\nB f, 30, Y, 0\nC m, 30, X, 1\nD m, 41, X, 0\nE f, 30, Y, 1\n"),
		UseSecondary: true,
		N:            5,
	}
	first := submit(t, e, req)
	second := submit(t, e, req)
	for _, id := range []string{first, second} {
		if s := e.wait(t, id); s.State != StateCompleted {
			t.Fatalf("job %s state = %s, want completed", id, s.State)
		}
	}

	a, err := e.ResultData(context.Background(), first)
	if err != nil {
		t.Fatal(err)
	}
	b, err := e.ResultData(context.Background(), second)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("artifacts differ for identical inputs:\n%s\n%s", a, b)
	}
	if bytes.Contains(a, []byte(first)) {
		t.Errorf("artifact should not embed the job ID: %s", a)
	}
}

func TestEngine_DemographicJob(t *testing.T) {
	e := newTestEngine(t, nil)
	e.start(t)

	id := submit(t, e, SubmitRequest{
		Edges:        []byte("A B\nB C\n"),
		Demographics: []byte("A m, 30, X, 1\nB f, 40, Y, 0\nC f, 50, X, 0\n"),
		UseSecondary: true,
		N:            3,
	})
	if s := e.wait(t, id); s.State != StateCompleted {
		t.Fatalf("state = %s (%v), want completed", s.State, s.Error)
	}

	a, err := e.Result(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	recs := a.Recommendations["A"]
	if len(recs) != 1 || recs[0].Candidate != "C" || recs[0].Score != 2 || recs[0].Matched != 1 {
		t.Errorf("recommendations for A = %+v, want C with score 2", recs)
	}
}

func TestEngine_InvalidParameters(t *testing.T) {
	tests := []struct {
		name  string
		req   SubmitRequest
		field string
	}{
		{"N is zero", SubmitRequest{Edges: []byte(squareEdges), N: 0}, "N"},
		{"N is negative", SubmitRequest{Edges: []byte(squareEdges), N: -3}, "N"},
		{"N above maximum", SubmitRequest{Edges: []byte(squareEdges), N: 1001}, "N"},
		{"missing edges", SubmitRequest{N: 1}, "base_file"},
		{"secondary flagged without file", SubmitRequest{Edges: []byte(squareEdges), UseSecondary: true, N: 1}, "secondary_file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			id, err := e.Submit(context.Background(), tt.req)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("Submit() error = %v, want ErrInvalidParameter", err)
			}
			if id != "" {
				t.Errorf("Submit() returned job ID %q for an invalid request", id)
			}
			var verr *validation.RequestValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Submit() error = %v, want *validation.RequestValidationError", err)
			}
			if errs := verr.Errors(); len(errs) != 1 || errs[0].Field() != tt.field {
				t.Errorf("validation errors = %v, want one for field %s", verr, tt.field)
			}
			if n := len(e.List()); n != 0 {
				t.Errorf("List() has %d jobs, want 0", n)
			}
			if e.store.Len() != 0 {
				t.Errorf("store holds %d artifacts, want 0", e.store.Len())
			}
		})
	}
}

func TestEngine_QueueFull(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.QueueSize = 1 })

	submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	_, err := e.Submit(context.Background(), SubmitRequest{Edges: []byte(squareEdges), N: 1})
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("Submit() error = %v, want ErrQueueFull", err)
	}
	if n := len(e.List()); n != 1 {
		t.Errorf("List() has %d jobs, want 1", n)
	}
	if e.QueueLen() != 1 {
		t.Errorf("QueueLen() = %d, want 1", e.QueueLen())
	}
}

func TestEngine_ResultNotReady(t *testing.T) {
	e := newTestEngine(t, nil)
	started := make(chan struct{})
	release := make(chan struct{})
	e.beforeRun = func(context.Context, Snapshot) {
		close(started)
		<-release
	}

	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 2})

	if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotReady) {
		t.Errorf("Result() while pending error = %v, want ErrNotReady", err)
	}

	e.start(t)
	<-started

	if s, _ := e.Status(id); s.State != StateRunning {
		t.Errorf("state = %s, want running", s.State)
	}
	if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotReady) {
		t.Errorf("Result() while running error = %v, want ErrNotReady", err)
	}

	close(release)
	if s := e.wait(t, id); s.State != StateCompleted {
		t.Fatalf("state = %s, want completed", s.State)
	}
	if _, err := e.Result(context.Background(), id); err != nil {
		t.Errorf("Result() after completion error = %v", err)
	}

	if _, err := e.Result(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Result(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestEngine_FailureKinds(t *testing.T) {
	tests := []struct {
		name  string
		req   SubmitRequest
		setup func(e *testEngine)
		kind  ErrorKind
		is    error
	}{
		{
			name: "malformed edge line",
			req:  SubmitRequest{Edges: []byte("A B\nA\n"), N: 1},
			kind: KindParse,
		},
		{
			name: "self friendship",
			req:  SubmitRequest{Edges: []byte("A A\n"), N: 1},
			kind: KindGraph,
		},
		{
			name: "malformed demographic record",
			req: SubmitRequest{
				Edges:        []byte(squareEdges),
				Demographics: []byte("A m, 30\n"),
				UseSecondary: true,
				N:            1,
			},
			kind: KindParse,
		},
		{
			name: "timeout",
			req:  SubmitRequest{Edges: []byte(squareEdges), N: 1},
			setup: func(e *testEngine) {
				e.config.JobTimeout = 20 * time.Millisecond
				e.beforeRun = func(ctx context.Context, _ Snapshot) { <-ctx.Done() }
			},
			kind: KindTimeout,
			is:   ErrTimeout,
		},
		{
			name: "panic",
			req:  SubmitRequest{Edges: []byte(squareEdges), N: 1},
			setup: func(e *testEngine) {
				e.beforeRun = func(context.Context, Snapshot) { panic("boom") }
			},
			kind: KindExecution,
			is:   ErrExecution,
		},
		{
			name: "panic inside a scoring shard",
			req:  SubmitRequest{Edges: []byte(squareEdges), N: 1},
			setup: func(e *testEngine) {
				e.runner.SetShardObserver(func(int, int, time.Duration) { panic("shard boom") })
			},
			kind: KindExecution,
			is:   ErrExecution,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			if tt.setup != nil {
				tt.setup(e)
			}
			e.start(t)

			id := submit(t, e, tt.req)
			s := e.wait(t, id)
			if s.State != StateFailed {
				t.Fatalf("state = %s, want failed", s.State)
			}
			if s.Error == nil || s.Error.Kind != tt.kind {
				t.Fatalf("Error = %+v, want kind %s", s.Error, tt.kind)
			}
			if s.Error.Message == "" {
				t.Error("Error.Message is empty")
			}
			if tt.is != nil && !errors.Is(s.Err(), tt.is) {
				t.Errorf("Err() = %v, want %v", s.Err(), tt.is)
			}
			if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotReady) {
				t.Errorf("Result() of failed job error = %v, want ErrNotReady", err)
			}
			if e.store.Len() != 0 {
				t.Errorf("store holds %d artifacts after failure, want 0", e.store.Len())
			}
		})
	}
}

func TestEngine_WorkerSurvivesPanic(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Workers = 1 })
	var once sync.Once
	e.beforeRun = func(context.Context, Snapshot) {
		once.Do(func() { panic("first job only") })
	}
	e.start(t)

	first := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	if s := e.wait(t, first); s.State != StateFailed {
		t.Fatalf("first job state = %s, want failed", s.State)
	}
	second := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	if s := e.wait(t, second); s.State != StateCompleted {
		t.Fatalf("second job state = %s, want completed", s.State)
	}
}

func TestEngine_ConcurrentJobs(t *testing.T) {
	e := newTestEngine(t, func(c *Config) { c.Workers = 4 })
	e.start(t)

	ids := make([]string, 16)
	for i := range ids {
		ids[i] = submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1 + i%3})
	}
	for _, id := range ids {
		if s := e.wait(t, id); s.State != StateCompleted {
			t.Errorf("job %s state = %s, want completed", id, s.State)
		}
	}
	if got := len(e.List()); got != len(ids) {
		t.Errorf("List() has %d jobs, want %d", got, len(ids))
	}
}

type recordingPublisher struct {
	mu     sync.Mutex
	states []State
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, s Snapshot) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.states = append(p.states, s.State)
	return p.err
}

func TestEngine_PublishesTransitions(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	e := newTestEngine(t, nil, WithPublisher(pub))
	e.start(t)

	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	if s := e.wait(t, id); s.State != StateCompleted {
		t.Fatalf("state = %s, want completed despite publish errors", s.State)
	}

	// The terminal event is published after the watcher is notified.
	deadline := time.Now().Add(2 * time.Second)
	for {
		pub.mu.Lock()
		n := len(pub.states)
		pub.mu.Unlock()
		if n == 3 || time.Now().After(deadline) {
			break
		}
		time.Sleep(5 * time.Millisecond)
	}

	pub.mu.Lock()
	defer pub.mu.Unlock()
	want := []State{StatePending, StateRunning, StateCompleted}
	if len(pub.states) != len(want) {
		t.Fatalf("published %v, want %v", pub.states, want)
	}
	for i := range want {
		if pub.states[i] != want[i] {
			t.Errorf("published %v, want %v", pub.states, want)
			break
		}
	}
}

func TestEngine_Evict(t *testing.T) {
	e := newTestEngine(t, nil)
	e.start(t)

	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	e.wait(t, id)

	first, err := e.Result(context.Background(), id)
	if err != nil {
		t.Fatal(err)
	}
	if again, _ := e.Result(context.Background(), id); again != first {
		t.Error("second Result() should be served from the result cache")
	}

	if n := e.Evict(context.Background(), time.Now().Add(-time.Hour)); n != 0 {
		t.Errorf("Evict(past cutoff) = %d, want 0", n)
	}
	if n := e.Evict(context.Background(), time.Now().Add(time.Hour)); n != 1 {
		t.Fatalf("Evict(future cutoff) = %d, want 1", n)
	}
	if _, err := e.Status(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Status() after eviction error = %v, want ErrNotFound", err)
	}
	if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotFound) {
		t.Errorf("Result() after eviction error = %v, want ErrNotFound", err)
	}
	if e.store.Len() != 0 {
		t.Errorf("store holds %d artifacts after eviction, want 0", e.store.Len())
	}
}

// evictingStore runs afterGet once the stored value has been read.
type evictingStore struct {
	*MemoryStore
	afterGet func(key string)
}

func (s *evictingStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.MemoryStore.Get(ctx, key)
	if s.afterGet != nil {
		s.afterGet(key)
	}
	return data, err
}

func TestEngine_ResultDuringEviction(t *testing.T) {
	store := &evictingStore{MemoryStore: NewMemoryStore()}
	eng, err := NewEngine(DefaultConfig(), store, zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	e := &testEngine{Engine: eng, store: store.MemoryStore}
	e.start(t)

	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	e.wait(t, id)

	t.Run("evicted between load and cache fill", func(t *testing.T) {
		var once sync.Once
		store.afterGet = func(string) {
			once.Do(func() { e.Evict(context.Background(), time.Now().Add(time.Hour)) })
		}
		if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Result() racing Evict error = %v, want ErrNotFound", err)
		}
		store.afterGet = nil
		if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Result() after Evict error = %v, want ErrNotFound", err)
		}
	})

	t.Run("stale cache entry", func(t *testing.T) {
		e.results.Add(id, &Artifact{N: 1})
		if _, err := e.Result(context.Background(), id); !errors.Is(err, ErrNotFound) {
			t.Errorf("Result() with stale cache entry error = %v, want ErrNotFound", err)
		}
	})
}

func TestEngine_Ready(t *testing.T) {
	e := newTestEngine(t, nil)
	if e.Ready() {
		t.Error("Ready() before Serve = true")
	}
	e.start(t)

	deadline := time.Now().Add(2 * time.Second)
	for !e.Ready() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !e.Ready() {
		t.Error("Ready() after Serve = false")
	}
	if e.String() != "jobs-engine" {
		t.Errorf("String() = %q", e.String())
	}
}

func TestNewEngine_Errors(t *testing.T) {
	if _, err := NewEngine(DefaultConfig(), nil, zerolog.Nop()); err == nil {
		t.Error("NewEngine() without store should fail")
	}
	cfg := DefaultConfig()
	cfg.JobTimeout = -time.Second
	if _, err := NewEngine(cfg, NewMemoryStore(), zerolog.Nop()); err == nil {
		t.Error("NewEngine() with negative timeout should fail")
	}
}

func TestJanitor_Sweep(t *testing.T) {
	e := newTestEngine(t, nil)
	e.start(t)
	id := submit(t, e, SubmitRequest{Edges: []byte(squareEdges), N: 1})
	e.wait(t, id)

	j := NewJanitor(e, time.Hour, 0, zerolog.Nop())
	if j.interval != time.Minute {
		t.Errorf("default interval = %v, want 1m", j.interval)
	}
	if n := j.Sweep(context.Background()); n != 0 {
		t.Errorf("Sweep() within TTL = %d, want 0", n)
	}

	j.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	if n := j.Sweep(context.Background()); n != 1 {
		t.Errorf("Sweep() past TTL = %d, want 1", n)
	}
	if len(e.List()) != 0 {
		t.Error("job still listed after sweep")
	}
}
