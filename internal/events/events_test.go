// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package events

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/metrics"
	"github.com/tomtom215/friendrec/internal/recommend"
)

func failedSnapshot() jobs.Snapshot {
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	finished := created.Add(1500 * time.Millisecond)
	return jobs.Snapshot{
		ID:         "job-1",
		State:      jobs.StateFailed,
		N:          3,
		Error:      &jobs.JobError{Kind: jobs.KindParse, Message: "edges:2: bad record"},
		CreatedAt:  created,
		StartedAt:  &created,
		FinishedAt: &finished,
	}
}

func TestNewJobEvent(t *testing.T) {
	s := failedSnapshot()
	ev := NewJobEvent(s, s.FinishedAt.Add(time.Hour))

	if ev.EventID == "" || ev.JobID != "job-1" || ev.State != jobs.StateFailed {
		t.Errorf("NewJobEvent() = %+v", ev)
	}
	if ev.ErrorKind != "parse" || ev.ErrorMessage != "edges:2: bad record" {
		t.Errorf("error fields = %q, %q", ev.ErrorKind, ev.ErrorMessage)
	}
	if ev.DurationMS != 1500 {
		t.Errorf("DurationMS = %d, want 1500", ev.DurationMS)
	}

	completed := jobs.Snapshot{
		ID:    "job-2",
		State: jobs.StateCompleted,
		Stats: &recommend.RunStats{Users: 4, Recommendations: 4},
	}
	if ev := NewJobEvent(completed, time.Now()); ev.Users != 4 || ev.Recommendations != 4 {
		t.Errorf("stats fields = %d, %d, want 4, 4", ev.Users, ev.Recommendations)
	}
}

func TestEventEncoding(t *testing.T) {
	ev := NewJobEvent(failedSnapshot(), time.Now())
	data, err := MarshalEvent(ev)
	if err != nil {
		t.Fatalf("MarshalEvent() error = %v", err)
	}
	got, err := UnmarshalEvent(data)
	if err != nil {
		t.Fatalf("UnmarshalEvent() error = %v", err)
	}
	if got.EventID != ev.EventID || got.ErrorKind != "parse" {
		t.Errorf("UnmarshalEvent() = %+v", got)
	}

	tests := []struct {
		name string
		ev   JobEvent
		want string
	}{
		{"missing event id", JobEvent{JobID: "j", State: jobs.StatePending}, "event_id"},
		{"missing job id", JobEvent{EventID: "e", State: jobs.StatePending}, "job_id"},
		{"unknown state", JobEvent{EventID: "e", JobID: "j", State: "paused"}, "invalid state"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := MarshalEvent(&tt.ev)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("MarshalEvent() error = %v, want mention of %q", err, tt.want)
			}
		})
	}

	if _, err := UnmarshalEvent([]byte("not json")); err == nil {
		t.Error("UnmarshalEvent() should fail on garbage")
	}
}

func TestBus_Publish(t *testing.T) {
	bus := NewBus(BusConfig{}, zerolog.Nop())
	defer bus.Close()

	msgs, err := bus.Subscriber().Subscribe(context.Background(), TopicJobs)
	if err != nil {
		t.Fatal(err)
	}

	before := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("pending"))
	if err := bus.Publish(context.Background(), jobs.Snapshot{ID: "j", State: jobs.StatePending, N: 1}); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if msg.Metadata.Get(MetadataJobID) != "j" || msg.Metadata.Get(MetadataState) != "pending" {
			t.Errorf("metadata = %v", msg.Metadata)
		}
		ev, err := UnmarshalEvent(msg.Payload)
		if err != nil {
			t.Fatal(err)
		}
		if ev.EventID != msg.UUID {
			t.Errorf("message UUID %q != event ID %q", msg.UUID, ev.EventID)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no message received")
	}

	if got := testutil.ToFloat64(metrics.EventsPublished.WithLabelValues("pending")); got != before+1 {
		t.Errorf("EventsPublished = %v, want %v", got, before+1)
	}

	if err := bus.Publish(context.Background(), jobs.Snapshot{State: jobs.StatePending}); err == nil {
		t.Error("Publish() without job ID should fail")
	}
}

func TestBus_PublishWithoutSubscribers(t *testing.T) {
	bus := NewBus(BusConfig{BufferSize: 1}, zerolog.Nop())
	defer bus.Close()

	done := make(chan error, 1)
	go func() {
		for i := 0; i < 10; i++ {
			if err := bus.Publish(context.Background(), jobs.Snapshot{ID: "j", State: jobs.StatePending}); err != nil {
				done <- err
				return
			}
		}
		done <- nil
	}()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Publish() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Publish() blocked without subscribers")
	}
}

func startAuditor(t *testing.T, bus *Bus, cfg AuditorConfig) *Auditor {
	t.Helper()
	a := NewAuditor(bus.Subscriber(), cfg, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = a.Serve(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	select {
	case <-a.Running():
	case <-time.After(5 * time.Second):
		t.Fatal("auditor did not start")
	}
	return a
}

func waitForEvents(t *testing.T, a *Auditor, jobID string, n int) []JobEvent {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if got := a.Recent(jobID, 0); len(got) >= n {
			return got
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("auditor recorded %d events for %q, want %d", len(a.Recent(jobID, 0)), jobID, n)
	return nil
}

func TestAuditor_RecordsLifecycle(t *testing.T) {
	bus := NewBus(BusConfig{}, zerolog.Nop())
	defer bus.Close()
	a := startAuditor(t, bus, AuditorConfig{})

	before := testutil.ToFloat64(metrics.EventsConsumed.WithLabelValues(auditorHandler))

	ctx := context.Background()
	for _, st := range []jobs.State{jobs.StatePending, jobs.StateRunning, jobs.StateCompleted} {
		if err := bus.Publish(ctx, jobs.Snapshot{ID: "a", State: st}); err != nil {
			t.Fatal(err)
		}
	}
	if err := bus.Publish(ctx, jobs.Snapshot{ID: "b", State: jobs.StatePending}); err != nil {
		t.Fatal(err)
	}

	got := waitForEvents(t, a, "a", 3)
	want := []jobs.State{jobs.StatePending, jobs.StateRunning, jobs.StateCompleted}
	for i, ev := range got {
		if ev.State != want[i] {
			t.Errorf("event %d state = %s, want %s", i, ev.State, want[i])
		}
	}
	waitForEvents(t, a, "", 4)

	if got := testutil.ToFloat64(metrics.EventsConsumed.WithLabelValues(auditorHandler)); got < before+4 {
		t.Errorf("EventsConsumed = %v, want at least %v", got, before+4)
	}
	if got := a.Recent("", 2); len(got) != 2 || got[1].JobID != "b" {
		t.Errorf("Recent(limit 2) = %+v", got)
	}
}

func TestAuditor_RingCapacity(t *testing.T) {
	a := NewAuditor(nil, AuditorConfig{Capacity: 3}, zerolog.Nop())

	for i, id := range []string{"1", "2", "3", "4", "5"} {
		ev := NewJobEvent(jobs.Snapshot{ID: id, State: jobs.StatePending}, time.Unix(int64(i), 0))
		data, err := MarshalEvent(ev)
		if err != nil {
			t.Fatal(err)
		}
		if err := a.handle(message.NewMessage(ev.EventID, data)); err != nil {
			t.Fatal(err)
		}
	}

	got := a.Recent("", 0)
	if len(got) != 3 || got[0].JobID != "3" || got[2].JobID != "5" {
		t.Errorf("Recent() = %+v, want jobs 3, 4, 5", got)
	}

	if err := a.handle(message.NewMessage("x", []byte("{"))); err != nil {
		t.Errorf("handle(malformed) error = %v, want nil", err)
	}
	if len(a.Recent("", 0)) != 3 {
		t.Error("malformed message should not be recorded")
	}
	if a.String() != "event-auditor" {
		t.Errorf("String() = %q", a.String())
	}
}
