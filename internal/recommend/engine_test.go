// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/graph"
)

func TestPartition(t *testing.T) {
	users := []string{"1", "2", "3", "4", "5"}
	tests := []struct {
		name string
		size int
		want [][]string
	}{
		{"even split", 5, [][]string{{"1", "2", "3", "4", "5"}}},
		{"remainder", 2, [][]string{{"1", "2"}, {"3", "4"}, {"5"}}},
		{"size one", 1, [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}},
		{"invalid size treated as one", 0, [][]string{{"1"}, {"2"}, {"3"}, {"4"}, {"5"}}},
		{"larger than input", 10, [][]string{{"1", "2", "3", "4", "5"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Partition(users, tt.size); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Partition(%d) = %v, want %v", tt.size, got, tt.want)
			}
		})
	}

	if got := Partition(nil, 3); len(got) != 0 {
		t.Errorf("Partition(nil) = %v, want empty", got)
	}
}

// ringGraph builds a ring of n users with chords every third node.
func ringGraph(t *testing.T, n int) *graph.Graph {
	t.Helper()
	var edges [][2]string
	for i := 0; i < n; i++ {
		edges = append(edges, [2]string{fmt.Sprint(i), fmt.Sprint((i + 1) % n)})
		if i%3 == 0 {
			edges = append(edges, [2]string{fmt.Sprint(i), fmt.Sprint((i + 5) % n)})
		}
	}
	attrs := make(map[string]map[string]string)
	for i := 0; i < n; i += 2 {
		attrs[fmt.Sprint(i)] = map[string]string{"city": fmt.Sprint(i % 4)}
	}
	return buildGraph(t, edges, attrs)
}

func newTestRunner(t *testing.T, shardSize, workers int) *Runner {
	t.Helper()
	cfg := DefaultConfig()
	cfg.ShardSize = shardSize
	cfg.Workers = workers
	r, err := NewRunner(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewRunner() error = %v", err)
	}
	return r
}

func TestRunner_ShardingDoesNotChangeOutput(t *testing.T) {
	g := ringGraph(t, 60)

	baseline, err := newTestRunner(t, 1000, 1).Run(context.Background(), g, 3)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	for _, cfg := range []struct{ shard, workers int }{{1, 4}, {7, 3}, {16, 8}} {
		t.Run(fmt.Sprintf("shard=%d workers=%d", cfg.shard, cfg.workers), func(t *testing.T) {
			got, err := newTestRunner(t, cfg.shard, cfg.workers).Run(context.Background(), g, 3)
			if err != nil {
				t.Fatalf("Run() error = %v", err)
			}
			if !reflect.DeepEqual(got.Order, baseline.Order) {
				t.Error("Order differs from single-shard run")
			}
			if !reflect.DeepEqual(got.ByUser, baseline.ByUser) {
				t.Error("ByUser differs from single-shard run")
			}
		})
	}
}

func TestRunner_Properties(t *testing.T) {
	g := ringGraph(t, 40)
	const n = 2

	res, err := newTestRunner(t, 5, 4).Run(context.Background(), g, n)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	if !reflect.DeepEqual(res.Order, g.Users()) {
		t.Error("Order should list every user in natural order")
	}
	if len(res.ByUser) != g.NumUsers() {
		t.Errorf("len(ByUser) = %d, want %d", len(res.ByUser), g.NumUsers())
	}
	for u, recs := range res.ByUser {
		if recs == nil {
			t.Errorf("ByUser[%s] is nil, want empty slice", u)
		}
		if len(recs) > n {
			t.Errorf("ByUser[%s] has %d recommendations, want <= %d", u, len(recs), n)
		}
		for _, r := range recs {
			if r.Candidate == u || g.HasEdge(u, r.Candidate) {
				t.Errorf("invalid recommendation %s -> %s", u, r.Candidate)
			}
		}
	}
	if res.Stats.Shards != 8 || res.Stats.Users != 40 {
		t.Errorf("Stats = %+v, want 8 shards over 40 users", res.Stats)
	}
	if res.Stats.Recommendations != res.Len() {
		t.Errorf("Stats.Recommendations = %d, want %d", res.Stats.Recommendations, res.Len())
	}
}

func TestRunner_IsolatedUserGetsEmptyList(t *testing.T) {
	g := graph.New()
	for _, u := range []string{"A", "B", "C", "E"} {
		if err := g.AddUser(u, nil); err != nil {
			t.Fatal(err)
		}
	}
	for _, e := range [][2]string{{"A", "B"}, {"B", "C"}} {
		if err := g.AddEdge(e[0], e[1]); err != nil {
			t.Fatal(err)
		}
	}
	g.Freeze()

	res, err := newTestRunner(t, 2, 2).Run(context.Background(), g, 5)
	if err != nil {
		t.Fatal(err)
	}
	recs, ok := res.ByUser["E"]
	if !ok || recs == nil || len(recs) != 0 {
		t.Errorf("ByUser[E] = %#v (present=%v), want empty list", recs, ok)
	}
}

func TestRunner_Errors(t *testing.T) {
	r := newTestRunner(t, 2, 2)

	t.Run("unfrozen graph", func(t *testing.T) {
		if _, err := r.Run(context.Background(), graph.New(), 1); !errors.Is(err, ErrGraphNotFrozen) {
			t.Errorf("Run() error = %v, want ErrGraphNotFrozen", err)
		}
	})

	t.Run("non-positive n", func(t *testing.T) {
		if _, err := r.Run(context.Background(), ringGraph(t, 6), 0); err == nil {
			t.Error("Run(n=0) should fail")
		}
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := r.Run(ctx, ringGraph(t, 20), 3)
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

type panickingWeighting struct{}

func (panickingWeighting) Name() string { return "panicking" }

func (panickingWeighting) Demographic(map[string]string, map[string]string) (float64, int) {
	panic("weighting failed")
}

func TestRunner_ShardPanicBecomesError(t *testing.T) {
	r := newTestRunner(t, 3, 2)
	r.scorer.weighting = panickingWeighting{}

	res, err := r.Run(context.Background(), ringGraph(t, 12), 2)
	if !errors.Is(err, ErrShardPanic) {
		t.Fatalf("Run() error = %v, want ErrShardPanic", err)
	}
	if res != nil {
		t.Errorf("Run() result = %+v, want nil on panic", res)
	}

	r.scorer.weighting = LinearWeighting{Weight: 1}
	if _, err := r.Run(context.Background(), ringGraph(t, 12), 2); err != nil {
		t.Errorf("Run() after recovered panic error = %v", err)
	}
}

func TestRunner_ShardObserver(t *testing.T) {
	r := newTestRunner(t, 4, 2)
	var shards, users atomic.Int64
	r.SetShardObserver(func(_ int, n int, _ time.Duration) {
		shards.Add(1)
		users.Add(int64(n))
	})

	if _, err := r.Run(context.Background(), ringGraph(t, 10), 1); err != nil {
		t.Fatal(err)
	}
	if shards.Load() != 3 || users.Load() != 10 {
		t.Errorf("observer saw %d shards / %d users, want 3 / 10", shards.Load(), users.Load())
	}
}
