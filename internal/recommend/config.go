// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package recommend

import (
	"fmt"
	"runtime"
)

// Weighting names accepted by Config.Weighting.
const (
	WeightingLinear      = "linear"
	WeightingProbability = "probability"
)

// Config contains all configuration for scoring and sharding.
type Config struct {
	// DemographicWeight scales the demographic term of the score.
	// Default: 1.0.
	DemographicWeight float64 `json:"demographic_weight"`

	// Weighting selects the demographic weighting: "linear" or "probability".
	// Default: "linear".
	Weighting string `json:"weighting"`

	// DemographicFallback enables demographic-only candidates for users
	// with an empty 2-hop neighborhood. Default: false.
	DemographicFallback bool `json:"demographic_fallback"`

	// ShardSize is the number of users per shard. Default: 256.
	ShardSize int `json:"shard_size"`

	// Workers bounds concurrently running shards. Default: GOMAXPROCS.
	Workers int `json:"workers"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	return &Config{
		DemographicWeight:   1.0,
		Weighting:           WeightingLinear,
		DemographicFallback: false,
		ShardSize:           256,
		Workers:             runtime.GOMAXPROCS(0),
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.DemographicWeight < 0 {
		return fmt.Errorf("demographic_weight must be non-negative, got %f", c.DemographicWeight)
	}
	switch c.Weighting {
	case WeightingLinear, WeightingProbability:
	default:
		return fmt.Errorf("weighting must be %q or %q, got %q", WeightingLinear, WeightingProbability, c.Weighting)
	}
	if c.ShardSize < 1 {
		return fmt.Errorf("shard_size must be positive, got %d", c.ShardSize)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	cp := *c
	return &cp
}

// NewWeighting builds the Weighting named by the configuration.
func (c *Config) NewWeighting() (Weighting, error) {
	switch c.Weighting {
	case WeightingLinear, "":
		return LinearWeighting{Weight: c.DemographicWeight}, nil
	case WeightingProbability:
		return ProbabilityWeighting{Weight: c.DemographicWeight}, nil
	default:
		return nil, fmt.Errorf("unknown weighting %q", c.Weighting)
	}
}
