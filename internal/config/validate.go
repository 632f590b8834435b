// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package config

import (
	"errors"
	"fmt"

	"github.com/tomtom215/friendrec/internal/jobs"
	"github.com/tomtom215/friendrec/internal/logging"
	"github.com/tomtom215/friendrec/internal/recommend"
)

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	if err := c.validateEngine(); err != nil {
		return err
	}
	if err := c.validateStorage(); err != nil {
		return err
	}
	return c.validateRetention()
}

func (c *Config) validateServer() error {
	s := c.Server
	if s.Port < 1 || s.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", s.Port)
	}
	if s.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got %d", s.MaxUploadBytes)
	}
	if !s.RateLimitDisabled && (s.RateLimitReqs < 1 || s.RateLimitWindow <= 0) {
		return errors.New("RATE_LIMIT_REQUESTS and RATE_LIMIT_WINDOW must be positive unless DISABLE_RATE_LIMIT=true")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("LOG_LEVEL: %w", err)
	}
	switch c.Logging.Format {
	case logging.FormatJSON, logging.FormatConsole:
		return nil
	default:
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.Logging.Format)
	}
}

func (c *Config) validateEngine() error {
	e := c.Engine
	switch {
	case e.Workers < 1:
		return fmt.Errorf("ENGINE_WORKERS must be positive, got %d", e.Workers)
	case e.QueueSize < 1:
		return fmt.Errorf("ENGINE_QUEUE_SIZE must be positive, got %d", e.QueueSize)
	case e.JobTimeout < 0:
		return fmt.Errorf("ENGINE_JOB_TIMEOUT must not be negative, got %v", e.JobTimeout)
	case e.MaxN < 1:
		return fmt.Errorf("ENGINE_MAX_N must be positive, got %d", e.MaxN)
	case e.MaxUsers < 0:
		return fmt.Errorf("ENGINE_MAX_USERS must not be negative, got %d", e.MaxUsers)
	case len(e.Attributes) == 0:
		return errors.New("ENGINE_ATTRIBUTES must name at least one attribute")
	}
	if err := c.RecommendConfig().Validate(); err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	return nil
}

func (c *Config) validateStorage() error {
	if c.Storage.BreakerFailures > 0 && c.Storage.BreakerTimeout <= 0 {
		return fmt.Errorf("STORAGE_BREAKER_TIMEOUT must be positive, got %v", c.Storage.BreakerTimeout)
	}
	switch jobs.StoreType(c.Storage.Backend) {
	case jobs.StoreMemory:
		return nil
	case jobs.StoreBadger:
		if c.Storage.Path == "" {
			return errors.New("STORAGE_PATH is required when STORAGE_BACKEND=badger")
		}
		return nil
	default:
		return fmt.Errorf("STORAGE_BACKEND must be memory or badger, got %q", c.Storage.Backend)
	}
}

func (c *Config) validateRetention() error {
	if c.Retention.TTL <= 0 {
		return fmt.Errorf("RETENTION_TTL must be positive, got %v", c.Retention.TTL)
	}
	if c.Retention.Interval <= 0 {
		return fmt.Errorf("RETENTION_INTERVAL must be positive, got %v", c.Retention.Interval)
	}
	return nil
}

// RecommendConfig returns the scoring configuration.
func (c *Config) RecommendConfig() *recommend.Config {
	return &recommend.Config{
		DemographicWeight:   c.Engine.DemographicWeight,
		Weighting:           c.Engine.Weighting,
		DemographicFallback: c.Engine.DemographicFallback,
		ShardSize:           c.Engine.ShardSize,
		Workers:             c.Engine.ShardWorkers,
	}
}

// JobsConfig returns the job engine configuration.
func (c *Config) JobsConfig() jobs.Config {
	cfg := jobs.DefaultConfig()
	cfg.Workers = c.Engine.Workers
	cfg.QueueSize = c.Engine.QueueSize
	cfg.JobTimeout = c.Engine.JobTimeout
	cfg.MaxN = c.Engine.MaxN
	cfg.Ingest.MaxUsers = c.Engine.MaxUsers
	cfg.Ingest.MaxLineBytes = c.Engine.MaxLineBytes
	cfg.Ingest.AttributeNames = append([]string(nil), c.Engine.Attributes...)
	cfg.Recommend = c.RecommendConfig()
	cfg.ResultCacheSize = c.Engine.ResultCacheSize
	return cfg
}

// LoggerConfig returns the logger configuration.
func (c *Config) LoggerConfig() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Logging.Level
	cfg.Format = c.Logging.Format
	cfg.Caller = c.Logging.Caller
	return cfg
}
