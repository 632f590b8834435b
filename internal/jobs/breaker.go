// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/friendrec/internal/metrics"
)

// BreakerConfig configures a BreakerStore.
type BreakerConfig struct {
	// Failures is the consecutive failure count that opens the breaker.
	Failures uint32

	// Timeout is how long the breaker stays open before letting a probe
	// request through.
	Timeout time.Duration

	// HalfOpenRequests is the number of probes allowed while half-open.
	// Default: 1.
	HalfOpenRequests uint32
}

// BreakerStore guards an ArtifactStore with a circuit breaker. Once the
// backend fails Failures times in a row, calls fail fast with
// ErrStoreUnavailable until Timeout elapses. ErrArtifactNotFound and
// context cancellation do not count as failures.
type BreakerStore struct {
	inner ArtifactStore
	cb    *gobreaker.CircuitBreaker[[]byte]
	name  string
}

// NewBreakerStore wraps inner. Failures of zero returns inner unchanged.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewBreakerStore(inner ArtifactStore, cfg BreakerConfig, logger zerolog.Logger) ArtifactStore {
	if cfg.Failures == 0 {
		return inner
	}
	if cfg.HalfOpenRequests == 0 {
		cfg.HalfOpenRequests = 1
	}

	name := "artifact-store-" + inner.Backend()
	log := logger.With().Str("component", "store-breaker").Str("breaker", name).Logger()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.HalfOpenRequests,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.Failures
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrArtifactNotFound) ||
				errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("from", from.String()).Str("to", to.String()).Msg("artifact store breaker state changed")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
		},
	})

	return &BreakerStore{inner: inner, cb: cb, name: name}
}

func (s *BreakerStore) execute(fn func() ([]byte, error)) ([]byte, error) {
	data, err := s.cb.Execute(fn)
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "rejected").Inc()
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	case err != nil:
		metrics.CircuitBreakerRequests.WithLabelValues(s.name, "failure").Inc()
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(s.name, "success").Inc()
	return data, nil
}

// Put implements ArtifactStore.
func (s *BreakerStore) Put(ctx context.Context, key string, data []byte) error {
	_, err := s.execute(func() ([]byte, error) {
		return nil, s.inner.Put(ctx, key, data)
	})
	return err
}

// Get implements ArtifactStore.
func (s *BreakerStore) Get(ctx context.Context, key string) ([]byte, error) {
	return s.execute(func() ([]byte, error) {
		return s.inner.Get(ctx, key)
	})
}

// Delete implements ArtifactStore.
func (s *BreakerStore) Delete(ctx context.Context, key string) error {
	_, err := s.execute(func() ([]byte, error) {
		return nil, s.inner.Delete(ctx, key)
	})
	return err
}

// Backend implements ArtifactStore.
func (s *BreakerStore) Backend() string {
	return s.inner.Backend()
}

// Close implements ArtifactStore. It is not guarded by the breaker.
func (s *BreakerStore) Close() error {
	return s.inner.Close()
}

// State reports the breaker state: closed, half-open or open.
func (s *BreakerStore) State() string {
	return s.cb.State().String()
}

func breakerStateValue(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}
