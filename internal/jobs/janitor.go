// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Evictor removes terminal jobs that finished before a cutoff.
type Evictor interface {
	Evict(ctx context.Context, cutoff time.Time) int
}

// Janitor periodically evicts terminal jobs older than TTL together with
// their artifacts. It implements suture.Service.
type Janitor struct {
	evictor  Evictor
	ttl      time.Duration
	interval time.Duration
	now      func() time.Time
	logger   zerolog.Logger
}

// NewJanitor creates a Janitor. A non-positive interval defaults to one
// minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewJanitor(evictor Evictor, ttl, interval time.Duration, logger zerolog.Logger) *Janitor {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Janitor{
		evictor:  evictor,
		ttl:      ttl,
		interval: interval,
		now:      time.Now,
		logger:   logger.With().Str("component", "janitor").Logger(),
	}
}

// Serve runs until ctx is done.
func (j *Janitor) Serve(ctx context.Context) error {
	j.logger.Info().
		Dur("ttl", j.ttl).
		Dur("interval", j.interval).
		Msg("retention janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.Sweep(ctx)
		}
	}
}

// Sweep runs one eviction pass and returns the number of jobs removed.
func (j *Janitor) Sweep(ctx context.Context) int {
	n := j.evictor.Evict(ctx, j.now().Add(-j.ttl))
	if n > 0 {
		j.logger.Info().Int("evicted", n).Msg("evicted expired jobs")
	}
	return n
}

// String implements fmt.Stringer for suture logging.
func (j *Janitor) String() string {
	return "retention-janitor"
}
