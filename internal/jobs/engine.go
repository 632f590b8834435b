// FriendRec - Friend Recommendation Job Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/friendrec

package jobs

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"runtime/debug"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/friendrec/internal/cache"
	"github.com/tomtom215/friendrec/internal/ingest"
	"github.com/tomtom215/friendrec/internal/metrics"
	"github.com/tomtom215/friendrec/internal/recommend"
	"github.com/tomtom215/friendrec/internal/validation"
)

// Input artifact names.
const (
	inputEdges        = "edges"
	inputDemographics = "demographics"
)

// Config holds job engine settings.
type Config struct {
	// Workers is the number of jobs executed concurrently. Default: 2.
	Workers int

	// QueueSize bounds jobs waiting for a worker. Default: 64.
	QueueSize int

	// JobTimeout is the wall-clock ceiling per job. Zero disables it.
	JobTimeout time.Duration

	// MaxN is the largest accepted N. Default: 1000.
	MaxN int

	// Ingest configures input parsing limits.
	Ingest ingest.Options

	// Recommend configures scoring and sharding. Nil uses defaults.
	Recommend *recommend.Config

	// ResultCacheSize is the number of decoded results kept in memory.
	// Default: 32.
	ResultCacheSize int
}

// DefaultConfig returns the default engine configuration.
func DefaultConfig() Config {
	return Config{
		Workers:         2,
		QueueSize:       64,
		MaxN:            1000,
		Recommend:       recommend.DefaultConfig(),
		ResultCacheSize: 32,
	}
}

// SubmitRequest is the input of Submit.
type SubmitRequest struct {
	// Edges is the friendship edge list. Required.
	Edges []byte `form:"base_file" validate:"required,min=1"`

	// Demographics holds demographic records. Required when UseSecondary.
	Demographics []byte `form:"secondary_file" validate:"required_if=UseSecondary true"`

	// UseSecondary enables demographic scoring.
	UseSecondary bool `form:"use_secondary_file"`

	// N is the maximum number of recommendations per user.
	N int `form:"N" validate:"gt=0"`
}

// Publisher receives a snapshot after every state change.
type Publisher interface {
	Publish(ctx context.Context, s Snapshot) error
}

// Engine runs recommendation jobs on a fixed worker pool.
// It is safe for concurrent use.
type Engine struct {
	config    Config
	registry  *Registry
	store     ArtifactStore
	runner    *recommend.Runner
	publisher Publisher
	results   *cache.LRU[string, *Artifact]
	logger    zerolog.Logger
	now       func() time.Time

	// slots bounds queued jobs; a slot is taken before a job is created
	// and released when a worker dequeues it.
	slots chan struct{}
	queue chan string

	busy    atomic.Int64
	serving atomic.Bool

	// beforeRun, if set, is called by a worker right after it claims a job.
	beforeRun func(ctx context.Context, s Snapshot)
}

// Option configures an Engine.
type Option func(*Engine)

// WithPublisher registers a lifecycle event publisher.
func WithPublisher(p Publisher) Option {
	return func(e *Engine) { e.publisher = p }
}

// NewEngine creates an Engine. Workers start when Serve is called.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, store ArtifactStore, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("artifact store is required")
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 64
	}
	if cfg.MaxN <= 0 {
		cfg.MaxN = 1000
	}
	if cfg.ResultCacheSize <= 0 {
		cfg.ResultCacheSize = 32
	}
	if cfg.JobTimeout < 0 {
		return nil, fmt.Errorf("job timeout must be non-negative, got %v", cfg.JobTimeout)
	}

	component := logger.With().Str("component", "jobs").Logger()

	runner, err := recommend.NewRunner(cfg.Recommend, logger)
	if err != nil {
		return nil, fmt.Errorf("create runner: %w", err)
	}
	runner.SetShardObserver(func(_ int, users int, elapsed time.Duration) {
		metrics.RecordShard(users, elapsed)
	})

	e := &Engine{
		config:   cfg,
		registry: NewRegistry(),
		store:    instrumentedStore{store},
		runner:   runner,
		results:  cache.NewLRU[string, *Artifact](cfg.ResultCacheSize, 10*time.Minute),
		logger:   component,
		now:      time.Now,
		slots:    make(chan struct{}, cfg.QueueSize),
		queue:    make(chan string, cfg.QueueSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e, nil
}

// Submit validates the request, stores its inputs and enqueues a Pending
// job. Parameter errors are returned before any job exists.
func (e *Engine) Submit(ctx context.Context, req SubmitRequest) (string, error) {
	if err := e.validate(&req); err != nil {
		metrics.RecordJobSubmission("invalid")
		return "", err
	}

	select {
	case e.slots <- struct{}{}:
	default:
		metrics.RecordJobSubmission("queue_full")
		return "", ErrQueueFull
	}

	id := uuid.New().String()
	snap := Snapshot{
		ID:           id,
		State:        StatePending,
		N:            req.N,
		UseSecondary: req.UseSecondary,
		Inputs:       Inputs{Edges: inputKey(id, inputEdges)},
		CreatedAt:    e.now(),
	}
	if req.UseSecondary {
		snap.Inputs.Demographics = inputKey(id, inputDemographics)
	}

	if err := e.storeInputs(ctx, snap, req); err != nil {
		<-e.slots
		e.deleteInputs(snap)
		metrics.RecordJobSubmission("error")
		return "", err
	}
	if err := e.registry.Create(snap); err != nil {
		<-e.slots
		e.deleteInputs(snap)
		metrics.RecordJobSubmission("error")
		return "", fmt.Errorf("register job: %w", err)
	}

	e.queue <- id
	metrics.JobQueueDepth.Set(float64(len(e.queue)))
	metrics.RecordJobSubmission("accepted")
	metrics.RecordJobTransition("", string(StatePending))
	e.publish(snap)

	e.logger.Info().
		Str("job_id", id).
		Int("n", req.N).
		Bool("use_secondary_file", req.UseSecondary).
		Int("edges_bytes", len(req.Edges)).
		Msg("job submitted")

	return id, nil
}

func (e *Engine) validate(req *SubmitRequest) error {
	if verr := validation.ValidateStruct(req); verr != nil {
		return &ParameterError{Validation: verr}
	}
	if req.N > e.config.MaxN {
		limit := strconv.Itoa(e.config.MaxN)
		return &ParameterError{Validation: validation.NewRequestValidationError(
			"N", "lte", limit, req.N, "N must be less than or equal to "+limit)}
	}
	return nil
}

func (e *Engine) storeInputs(ctx context.Context, s Snapshot, req SubmitRequest) error {
	if err := e.store.Put(ctx, s.Inputs.Edges, req.Edges); err != nil {
		return fmt.Errorf("store edge input: %w", err)
	}
	if s.Inputs.Demographics != "" {
		if err := e.store.Put(ctx, s.Inputs.Demographics, req.Demographics); err != nil {
			return fmt.Errorf("store demographic input: %w", err)
		}
	}
	return nil
}

// deleteInputs runs on a fresh context so cleanup survives cancellation.
func (e *Engine) deleteInputs(s Snapshot) {
	ctx := context.Background()
	for _, key := range []string{s.Inputs.Edges, s.Inputs.Demographics} {
		if key == "" {
			continue
		}
		if err := e.store.Delete(ctx, key); err != nil {
			e.logger.Warn().Err(err).Str("job_id", s.ID).Str("key", key).Msg("failed to delete input artifact")
		}
	}
}

// Status returns a snapshot of the job.
func (e *Engine) Status(id string) (Snapshot, error) {
	return e.registry.Get(id)
}

// List returns snapshots of all tracked jobs, oldest first.
func (e *Engine) List() []Snapshot {
	return e.registry.List()
}

// Watch streams snapshots of the job until it is terminal. Call stop to
// release the watcher early.
func (e *Engine) Watch(id string) (<-chan Snapshot, func(), error) {
	return e.registry.Watch(id)
}

// Result returns the artifact of a Completed job. The artifact may be
// shared with other callers and must not be modified.
//
// The registry is consulted on both sides of the cache so an artifact
// decoded while Evict runs is never served after the job is gone.
func (e *Engine) Result(ctx context.Context, id string) (*Artifact, error) {
	if _, err := e.registry.Get(id); err != nil {
		return nil, err
	}
	if a, ok := e.results.Get(id); ok {
		return a, nil
	}
	data, err := e.ResultData(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := DecodeArtifact(data)
	if err != nil {
		return nil, err
	}
	e.results.Add(id, a)
	if _, err := e.registry.Get(id); err != nil {
		e.results.Remove(id)
		return nil, err
	}
	return a, nil
}

// ResultData returns the encoded artifact of a Completed job.
func (e *Engine) ResultData(ctx context.Context, id string) ([]byte, error) {
	snap, err := e.registry.Get(id)
	if err != nil {
		return nil, err
	}
	if snap.State != StateCompleted {
		return nil, fmt.Errorf("%w: job is %s", ErrNotReady, snap.State)
	}
	data, err := e.store.Get(ctx, snap.ResultRef)
	if err != nil {
		return nil, fmt.Errorf("load result: %w", err)
	}
	return data, nil
}

// Ready reports whether workers are running.
func (e *Engine) Ready() bool {
	return e.serving.Load()
}

// QueueLen returns the number of jobs waiting for a worker.
func (e *Engine) QueueLen() int {
	return len(e.queue)
}

// Serve runs the worker pool until ctx is done. It implements suture.Service.
func (e *Engine) Serve(ctx context.Context) error {
	e.logger.Info().
		Int("workers", e.config.Workers).
		Int("queue_size", e.config.QueueSize).
		Dur("job_timeout", e.config.JobTimeout).
		Msg("job workers starting")

	e.serving.Store(true)
	defer e.serving.Store(false)

	var wg sync.WaitGroup
	for i := 0; i < e.config.Workers; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			e.work(ctx, worker)
		}(i)
	}
	wg.Wait()

	e.logger.Info().Msg("job workers stopped")
	return ctx.Err()
}

// String implements fmt.Stringer for suture logging.
func (e *Engine) String() string {
	return "jobs-engine"
}

func (e *Engine) work(ctx context.Context, worker int) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-e.queue:
			<-e.slots
			metrics.JobQueueDepth.Set(float64(len(e.queue)))
			e.execute(ctx, worker, id)
		}
	}
}

// execute claims and runs one job. Every failure is recorded on the job;
// nothing escapes to the worker loop.
func (e *Engine) execute(ctx context.Context, worker int, id string) {
	snap, ok, err := e.registry.Claim(id, e.now())
	if err != nil || !ok {
		e.logger.Warn().Err(err).Str("job_id", id).Msg("job not claimable, skipping")
		return
	}
	metrics.RecordJobTransition(string(StatePending), string(StateRunning))
	e.publish(snap)

	logger := e.logger.With().Str("job_id", id).Int("worker", worker).Logger()
	logger.Info().Msg("job started")

	e.busy.Add(1)
	metrics.JobWorkersBusy.Set(float64(e.busy.Load()))
	defer func() {
		e.busy.Add(-1)
		metrics.JobWorkersBusy.Set(float64(e.busy.Load()))
	}()

	runCtx := ctx
	if e.config.JobTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, e.config.JobTimeout)
		defer cancel()
	}

	ref, stats, runErr := e.run(runCtx, snap, logger)
	e.deleteInputs(snap)

	if runErr != nil {
		timedOut := errors.Is(runCtx.Err(), context.DeadlineExceeded)
		if timedOut {
			runErr = fmt.Errorf("exceeded %v: %w", e.config.JobTimeout, runErr)
		}
		jobErr := classify(runErr, timedOut)
		final, err := e.registry.Fail(id, jobErr, e.now())
		if err != nil {
			logger.Error().Err(err).Msg("failed to record job failure")
			return
		}
		metrics.RecordJobTransition(string(StateRunning), string(StateFailed))
		metrics.RecordJobFinished(string(StateFailed), string(jobErr.Kind), final.Duration(e.now()))
		e.publish(final)

		logger.Warn().
			Str("kind", string(jobErr.Kind)).
			Str("error", jobErr.Message).
			Msg("job failed")
		return
	}

	final, err := e.registry.Complete(id, ref, stats, e.now())
	if err != nil {
		logger.Error().Err(err).Msg("failed to record job completion")
		return
	}
	metrics.RecordJobTransition(string(StateRunning), string(StateCompleted))
	metrics.RecordJobFinished(string(StateCompleted), "", final.Duration(e.now()))
	metrics.RecommendationsProduced.Add(float64(stats.Recommendations))
	e.publish(final)

	logger.Info().
		Int("users", stats.Users).
		Int("edges", stats.Edges).
		Int("recommendations", stats.Recommendations).
		Dur("duration", final.Duration(e.now())).
		Msg("job completed")
}

// run ingests, scores and stores the result. The result artifact is
// fully written before run returns successfully; on error nothing is left.
func (e *Engine) run(ctx context.Context, s Snapshot, logger zerolog.Logger) (ref string, stats recommend.RunStats, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Interface("panic", r).
				Str("stack", string(debug.Stack())).
				Msg("panic during job execution")
			err = &panicError{value: r}
			ref = ""
		}
	}()

	if e.beforeRun != nil {
		e.beforeRun(ctx, s)
	}

	edges, err := e.store.Get(ctx, s.Inputs.Edges)
	if err != nil {
		return "", stats, fmt.Errorf("load edge input: %w", err)
	}
	var demographics io.Reader
	if s.Inputs.Demographics != "" {
		data, err := e.store.Get(ctx, s.Inputs.Demographics)
		if err != nil {
			return "", stats, fmt.Errorf("load demographic input: %w", err)
		}
		demographics = bytes.NewReader(data)
	}

	g, err := ingest.Build(ctx, bytes.NewReader(edges), demographics, e.config.Ingest)
	if err != nil {
		return "", stats, err
	}
	metrics.RecordGraph(g.NumUsers(), g.NumEdges())
	logger.Debug().Int("users", g.NumUsers()).Int("edges", g.NumEdges()).Msg("graph built")

	res, err := e.runner.Run(ctx, g, s.N)
	if err != nil {
		return "", stats, err
	}

	data, err := NewArtifact(s.N, res).Encode()
	if err != nil {
		return "", stats, err
	}
	if err := ctx.Err(); err != nil {
		return "", stats, err
	}

	ref = resultKey(s.ID)
	if err := e.store.Put(ctx, ref, data); err != nil {
		_ = e.store.Delete(context.Background(), ref)
		return "", stats, fmt.Errorf("store result: %w", err)
	}
	return ref, res.Stats, nil
}

// Evict removes terminal jobs that finished before cutoff, with their
// artifacts. It returns the number of jobs removed.
func (e *Engine) Evict(ctx context.Context, cutoff time.Time) int {
	removed := 0
	for _, s := range e.registry.Expired(cutoff) {
		if s.ResultRef != "" {
			if err := e.store.Delete(ctx, s.ResultRef); err != nil {
				e.logger.Warn().Err(err).Str("job_id", s.ID).Msg("failed to delete result artifact")
				continue
			}
		}
		e.results.Remove(s.ID)
		if _, err := e.registry.Remove(s.ID); err != nil {
			continue
		}
		metrics.RecordJobEvicted(string(s.State))
		removed++
	}
	return removed
}

func (e *Engine) publish(s Snapshot) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(context.Background(), s); err != nil {
		e.logger.Warn().Err(err).Str("job_id", s.ID).Str("state", string(s.State)).Msg("failed to publish job event")
	}
}
