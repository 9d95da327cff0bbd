package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/settatam/shop-sub015/internal/domain/ingestion"
	"github.com/settatam/shop-sub015/internal/domain/shared"
	"github.com/settatam/shop-sub015/internal/infrastructure/config"
)

var (
	// ErrSchedulerNotRunning indicates a submit against a stopped scheduler
	ErrSchedulerNotRunning = errors.New("jobs: scheduler is not running")
	// ErrQueueFull indicates the job queue is at capacity
	ErrQueueFull = errors.New("jobs: queue is full")
	// ErrNoExecutor indicates no executor is registered for a job type
	ErrNoExecutor = errors.New("jobs: no executor registered for job type")
)

// Job is one deferred unit of work
type Job struct {
	ID      uuid.UUID
	Type    ingestion.JobType
	Payload ingestion.ResyncPayload
	RunAt   time.Time
}

// DedupeKey identifies a job delivery for idempotency purposes. Two schedule
// calls for the same external order at the same second collapse to one run;
// a re-delivered job always collapses.
func (j *Job) DedupeKey() string {
	return fmt.Sprintf("%s:%s:%s:%d", j.Type, j.Payload.ConnectionID, j.Payload.ExternalOrderID, j.RunAt.Unix())
}

// Executor runs jobs of one type
type Executor interface {
	Execute(ctx context.Context, job *Job) error
}

// Scheduler is an in-process delayed-job facility: Schedule holds a job on a
// timer, then hands it to a bounded worker pool. Delivery is at-least-once
// from the consumer's point of view, so executions are deduped through the
// idempotency store before running.
type Scheduler struct {
	cfg         config.JobsConfig
	executors   map[ingestion.JobType]Executor
	idempotency shared.IdempotencyStore
	idemCfg     shared.IdempotencyConfig
	logger      *zap.Logger

	jobs      chan *Job
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	timersWg  sync.WaitGroup
	timers    map[uuid.UUID]*time.Timer
	mu        sync.Mutex
	isRunning bool
}

// NewScheduler creates a delayed-job scheduler
func NewScheduler(cfg config.JobsConfig, idempotency shared.IdempotencyStore, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cfg:         cfg,
		executors:   make(map[ingestion.JobType]Executor),
		idempotency: idempotency,
		idemCfg:     shared.DefaultIdempotencyConfig(),
		logger:      logger,
		jobs:        make(chan *Job, cfg.QueueSize),
		timers:      make(map[uuid.UUID]*time.Timer),
	}
}

// Register registers the executor for a job type. Must be called before Start.
func (s *Scheduler) Register(jobType ingestion.JobType, executor Executor) {
	s.executors[jobType] = executor
}

// Start starts the worker pool
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = true
	s.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel

	for i := 0; i < s.cfg.Workers; i++ {
		s.wg.Add(1)
		go s.worker(ctx, i)
	}

	s.logger.Info("Job scheduler started",
		zap.Int("workers", s.cfg.Workers),
		zap.Int("queue_size", s.cfg.QueueSize),
	)

	return nil
}

// Stop gracefully stops the scheduler: pending timers are cancelled, queued
// jobs drain, in-flight jobs finish
func (s *Scheduler) Stop(ctx context.Context) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return nil
	}
	s.isRunning = false
	for id, timer := range s.timers {
		if timer.Stop() {
			s.timersWg.Done()
		}
		delete(s.timers, id)
	}
	s.mu.Unlock()

	if s.cancel != nil {
		s.cancel()
	}

	// Only timers that already fired remain; wait for their enqueue to finish
	// before closing the channel.
	s.timersWg.Wait()
	close(s.jobs)

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Info("Job scheduler stopped gracefully")
		return nil
	case <-ctx.Done():
		s.logger.Warn("Job scheduler stop timed out")
		return ctx.Err()
	}
}

// Schedule enqueues a job to run after delay. Fire-and-forget: once accepted
// the caller gets no completion signal.
func (s *Scheduler) Schedule(_ context.Context, jobType ingestion.JobType, payload ingestion.ResyncPayload, delay time.Duration) error {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	if _, ok := s.executors[jobType]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrNoExecutor, jobType)
	}

	job := &Job{
		ID:      uuid.New(),
		Type:    jobType,
		Payload: payload,
		RunAt:   time.Now().Add(delay),
	}

	s.timersWg.Add(1)
	s.timers[job.ID] = time.AfterFunc(delay, func() {
		defer s.timersWg.Done()
		s.mu.Lock()
		delete(s.timers, job.ID)
		s.mu.Unlock()
		select {
		case s.jobs <- job:
		default:
			s.logger.Warn("Job queue full, dropping job",
				zap.String("job_id", job.ID.String()),
				zap.String("job_type", string(job.Type)))
		}
	})
	s.mu.Unlock()

	s.logger.Debug("Job scheduled",
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(jobType)),
		zap.Duration("delay", delay),
		zap.String("external_order_id", payload.ExternalOrderID),
	)

	return nil
}

// worker processes jobs from the queue
func (s *Scheduler) worker(ctx context.Context, workerID int) {
	defer s.wg.Done()

	for job := range s.jobs {
		s.processJob(ctx, job, workerID)
	}
	s.logger.Debug("Job worker stopping", zap.Int("worker_id", workerID))
}

// processJob executes a single job, deduping re-deliveries
func (s *Scheduler) processJob(ctx context.Context, job *Job, workerID int) {
	if s.idemCfg.Enabled {
		fresh, err := s.idempotency.MarkProcessed(ctx, job.DedupeKey(), s.idemCfg.TTL)
		if err != nil {
			s.logger.Error("Idempotency check failed, running job anyway",
				zap.String("job_id", job.ID.String()),
				zap.Error(err))
		} else if !fresh {
			s.logger.Debug("Skipping duplicate job",
				zap.String("job_id", job.ID.String()),
				zap.String("dedupe_key", job.DedupeKey()))
			return
		}
	}

	executor, ok := s.executors[job.Type]
	if !ok {
		s.logger.Error("No executor for job type",
			zap.String("job_type", string(job.Type)))
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, s.cfg.JobTimeout)
	defer cancel()

	if err := executor.Execute(jobCtx, job); err != nil {
		s.logger.Error("Job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID.String()),
			zap.String("job_type", string(job.Type)),
			zap.String("external_order_id", job.Payload.ExternalOrderID),
			zap.Error(err),
		)
		return
	}

	s.logger.Info("Job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID.String()),
		zap.String("job_type", string(job.Type)),
		zap.String("external_order_id", job.Payload.ExternalOrderID),
	)
}

// Ensure Scheduler implements the JobScheduler port
var _ ingestion.JobScheduler = (*Scheduler)(nil)
