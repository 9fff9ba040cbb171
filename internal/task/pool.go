package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// Common errors returned by Pool.Submit
var (
	ErrPoolClosed = errors.New("worker pool is closed")
	ErrPoolFull   = errors.New("worker pool queue is full")
)

// PoolConfig holds configuration options for the worker pool
type PoolConfig struct {
	// WorkerCount determines how many jobs run concurrently.
	// If zero or negative, defaults to 1
	WorkerCount int

	// QueueSize is the number of jobs that may wait for a free worker.
	// If negative, defaults to 0 (submit fails unless a worker is idle).
	QueueSize int
}

// DefaultPoolConfig returns a PoolConfig with reasonable defaults
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		WorkerCount: 8,
		QueueSize:   64,
	}
}

// Pool runs submitted jobs on a fixed set of worker goroutines.
// It handles graceful shutdown and recovers from panicking jobs.
type Pool struct {
	jobs        chan Job
	workerCount int

	// wg tracks active worker goroutines for clean shutdown
	wg sync.WaitGroup

	// ctx is passed to every job and cancelled on Stop
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.RWMutex
	closed  bool
	started bool

	logger *slog.Logger

	// errorHandler is called when a job fails or panics.
	// If nil, errors are only logged
	errorHandler func(job Job, err error)
}

// NewPool creates a new worker pool with the specified configuration
func NewPool(config PoolConfig, logger *slog.Logger) *Pool {
	logger = logger.With("component", "worker_pool")

	workerCount := config.WorkerCount
	if workerCount <= 0 {
		workerCount = 1
		logger.Warn("invalid worker count specified, using default",
			"specified_count", config.WorkerCount,
			"default_count", 1)
	}
	queueSize := max(config.QueueSize, 0)

	ctx, cancel := context.WithCancel(context.Background())

	return &Pool{
		jobs:        make(chan Job, queueSize),
		workerCount: workerCount,
		ctx:         ctx,
		cancel:      cancel,
		logger:      logger,
	}
}

// SetErrorHandler sets a custom handler for job failures. Call before Start.
func (p *Pool) SetErrorHandler(handler func(job Job, err error)) {
	p.errorHandler = handler
}

// Start launches the worker goroutines. Calling it more than once has no effect.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.closed {
		return
	}
	p.started = true

	for i := 0; i < p.workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
	p.logger.Info("worker pool started", "worker_count", p.workerCount, "queue_cap", cap(p.jobs))
}

// Submit queues job for execution without blocking.
// Returns ErrPoolFull when every worker is busy and the queue is at capacity.
func (p *Pool) Submit(job Job) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.jobs <- job:
		p.logger.Debug("job enqueued",
			"job_id", job.ID(),
			"queue_len", len(p.jobs),
			"queue_cap", cap(p.jobs))
		return nil
	default:
		return fmt.Errorf("%w: queue capacity %d reached", ErrPoolFull, cap(p.jobs))
	}
}

// Stop rejects new jobs, cancels the context of running jobs and waits for
// the workers to exit. Jobs still queued are drained with a cancelled context.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.cancel()
	p.wg.Wait()
	p.logger.Info("worker pool stopped")
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	p.logger.Debug("starting worker", "worker_id", id)
	for job := range p.jobs {
		p.run(job, id)
	}
	p.logger.Debug("job queue closed, stopping worker", "worker_id", id)
}

func (p *Pool) run(job Job, workerID int) {
	log := p.logger.With("job_id", job.ID(), "worker_id", workerID)

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("job panicked: %v", r)
			}
		}()
		return job.Execute(p.ctx)
	}()

	if err == nil {
		log.Debug("job completed")
		return
	}

	log.Error("job failed", "error", err)
	if p.errorHandler != nil {
		p.errorHandler(job, err)
	}
}
