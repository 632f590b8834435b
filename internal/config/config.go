// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete service configuration.
type Config struct {
	Server     ServerConfig     `koanf:"server"`
	Logging    LoggingConfig    `koanf:"logging"`
	Engine     EngineConfig     `koanf:"engine"`
	Storage    StorageConfig    `koanf:"storage"`
	Retention  RetentionConfig  `koanf:"retention"`
	Events     EventsConfig     `koanf:"events"`
	Supervisor SupervisorConfig `koanf:"supervisor"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`

	// MaxUploadBytes bounds a whole multipart submission.
	MaxUploadBytes int64 `koanf:"max_upload_bytes"`

	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level: trace, debug, info, warn, error. Default: info
	Level string `koanf:"level"`

	// Format: json or console. Default: json
	Format string `koanf:"format"`

	Caller bool `koanf:"caller"`
}

// EngineConfig holds job execution and scoring settings.
type EngineConfig struct {
	// Workers is the number of jobs run concurrently.
	Workers int `koanf:"workers"`

	// QueueSize bounds jobs waiting for a worker.
	QueueSize int `koanf:"queue_size"`

	// JobTimeout is the per-job wall-clock ceiling. Zero disables it.
	JobTimeout time.Duration `koanf:"job_timeout"`

	// MaxN is the largest accepted N.
	MaxN int `koanf:"max_n"`

	// ShardSize is the number of users scored per shard.
	ShardSize int `koanf:"shard_size"`

	// ShardWorkers bounds shards scored concurrently within one job.
	// Zero uses GOMAXPROCS.
	ShardWorkers int `koanf:"shard_workers"`

	// Weighting is "linear" or "probability".
	Weighting string `koanf:"weighting"`

	// DemographicWeight scales the demographic component of a score.
	DemographicWeight float64 `koanf:"demographic_weight"`

	// DemographicFallback recommends demographically similar non-friends
	// to users with no friends-of-friends.
	DemographicFallback bool `koanf:"demographic_fallback"`

	// MaxUsers bounds distinct users per job. Zero means unlimited.
	MaxUsers int `koanf:"max_users"`

	// MaxLineBytes bounds a single input record.
	MaxLineBytes int `koanf:"max_line_bytes"`

	// Attributes is the demographic record schema, in column order.
	Attributes []string `koanf:"attributes"`

	// ResultCacheSize is the number of decoded results kept in memory.
	ResultCacheSize int `koanf:"result_cache_size"`
}

// StorageConfig selects the artifact store.
type StorageConfig struct {
	// Backend is "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the badger directory.
	Path string `koanf:"path"`

	// BreakerFailures is the consecutive failure count that opens the
	// store circuit breaker. Zero disables the breaker.
	BreakerFailures uint32 `koanf:"breaker_failures"`

	// BreakerTimeout is how long the breaker stays open before probing.
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

// RetentionConfig controls eviction of finished jobs.
type RetentionConfig struct {
	TTL      time.Duration `koanf:"ttl"`
	Interval time.Duration `koanf:"interval"`
}

// EventsConfig controls the job event bus.
type EventsConfig struct {
	BufferSize    int64 `koanf:"buffer_size"`
	AuditCapacity int   `koanf:"audit_capacity"`
}

// SupervisorConfig mirrors supervisor.TreeConfig.
type SupervisorConfig struct {
	FailureThreshold float64       `koanf:"failure_threshold"`
	FailureDecay     float64       `koanf:"failure_decay"`
	FailureBackoff   time.Duration `koanf:"failure_backoff"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
