// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/friendrec/internal/graph"
)

// ErrGraphNotFrozen is returned when Run is given a graph that can still
// be mutated.
var ErrGraphNotFrozen = errors.New("graph is not frozen")

// ErrShardPanic wraps a panic recovered while scoring a shard.
var ErrShardPanic = errors.New("panic while scoring")

// ShardObserver is called after each shard completes. It may be called
// from several goroutines at once.
type ShardObserver func(shard, users int, elapsed time.Duration)

// Runner applies the Scorer to every user of a graph in parallel shards.
// It is safe for concurrent use.
type Runner struct {
	config   *Config
	scorer   *Scorer
	logger   zerolog.Logger
	observer ShardObserver
}

// NewRunner creates a Runner. A nil config uses DefaultConfig.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewRunner(cfg *Config, logger zerolog.Logger) (*Runner, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	scorer, err := NewScorer(cfg)
	if err != nil {
		return nil, err
	}
	return &Runner{
		config: cfg.Clone(),
		scorer: scorer,
		logger: logger.With().Str("component", "recommend").Logger(),
	}, nil
}

// SetShardObserver registers a callback invoked after every shard.
// Must be called before Run.
func (r *Runner) SetShardObserver(fn ShardObserver) {
	r.observer = fn
}

// Config returns a copy of the runner's configuration.
func (r *Runner) Config() *Config {
	return r.config.Clone()
}

// Partition splits users into contiguous shards of at most size users,
// preserving order. The same input always yields the same shards.
func Partition(users []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	shards := make([][]string, 0, (len(users)+size-1)/size)
	for start := 0; start < len(users); start += size {
		end := min(start+size, len(users))
		shards = append(shards, users[start:end])
	}
	return shards
}

// Run scores every user of g and merges the shards into a Result.
// Cancellation is observed at shard boundaries.
func (r *Runner) Run(ctx context.Context, g *graph.Graph, n int) (*Result, error) {
	if !g.Frozen() {
		return nil, ErrGraphNotFrozen
	}
	if n <= 0 {
		return nil, fmt.Errorf("n must be positive, got %d", n)
	}

	start := time.Now()
	users := g.Users()
	shards := Partition(users, r.config.ShardSize)
	slots := make([][][]Recommendation, len(shards))

	logger := r.logger.With().
		Int("users", len(users)).
		Int("shards", len(shards)).
		Int("n", n).
		Logger()
	logger.Debug().Msg("scoring started")

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(r.config.Workers)

	for i, shard := range shards {
		if egCtx.Err() != nil {
			break
		}
		eg.Go(func() (err error) {
			defer func() {
				if p := recover(); p != nil {
					logger.Error().
						Int("shard", i).
						Interface("panic", p).
						Str("stack", string(debug.Stack())).
						Msg("panic while scoring shard")
					err = fmt.Errorf("shard %d: %w: %v", i, ErrShardPanic, p)
				}
			}()
			if err := egCtx.Err(); err != nil {
				return err
			}
			shardStart := time.Now()
			out := make([][]Recommendation, len(shard))
			for j, u := range shard {
				out[j] = r.scorer.Score(g, u, n)
			}
			slots[i] = out
			if r.observer != nil {
				r.observer(i, len(shard), time.Since(shardStart))
			}
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, fmt.Errorf("score shards: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("score shards: %w", err)
	}

	result := merge(shards, slots)
	result.Stats = RunStats{
		Users:           g.NumUsers(),
		Edges:           g.NumEdges(),
		Shards:          len(shards),
		Recommendations: result.Len(),
		Weighting:       r.scorer.Weighting().Name(),
		Duration:        time.Since(start),
	}

	logger.Debug().
		Int("recommendations", result.Stats.Recommendations).
		Dur("duration", result.Stats.Duration).
		Msg("scoring complete")

	return result, nil
}

// merge concatenates shard outputs in shard order.
func merge(shards [][]string, slots [][][]Recommendation) *Result {
	total := 0
	for _, s := range shards {
		total += len(s)
	}
	res := &Result{
		Order:  make([]string, 0, total),
		ByUser: make(map[string][]Recommendation, total),
	}
	for i, shard := range shards {
		for j, u := range shard {
			res.Order = append(res.Order, u)
			res.ByUser[u] = slots[i][j]
		}
	}
	return res
}
