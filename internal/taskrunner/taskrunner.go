// Package taskrunner renders queued documents on an in-process worker pool.
package taskrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"docwave/internal/content"
	"docwave/internal/service"
	"docwave/log"
)

const (
	defaultQueueSize   = 32
	defaultConcurrency = 1
)

var (
	ErrRunnerStopped = errors.New("task runner stopped")
	ErrQueueFull     = errors.New("task queue is full")
)

// Generator renders one document into a video. *service.Service satisfies it.
type Generator interface {
	GenerateVideo(ctx context.Context, input *content.ContentInput, musicPath string, progress service.ProgressFunc) (string, error)
}

// Config controls in-process runner behavior.
type Config struct {
	QueueSize   int
	Concurrency int
}

// DefaultConfig returns a single-worker config. Rendering is already
// parallel internally, so batch concurrency above 1 mostly contends
// for the encoder.
func DefaultConfig() Config {
	return Config{
		QueueSize:   defaultQueueSize,
		Concurrency: defaultConcurrency,
	}
}

// Job is one queued document render request.
type Job struct {
	ID        string
	Input     *content.ContentInput
	MusicPath string
	Progress  service.ProgressFunc
}

// Runner executes queued jobs with in-memory workers.
type Runner struct {
	gen    Generator
	config Config

	queue  chan Job
	ctx    context.Context
	cancel context.CancelFunc

	mu     sync.Mutex
	closed bool

	workerWg  sync.WaitGroup
	succeeded atomic.Int64
	failed    atomic.Int64
}

// New creates and starts a runner.
func New(gen Generator, cfg Config) *Runner {
	if gen == nil {
		gen = service.NewService()
	}

	cfg = normalizeConfig(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	runner := &Runner{
		gen:    gen,
		config: cfg,
		queue:  make(chan Job, cfg.QueueSize),
		ctx:    ctx,
		cancel: cancel,
	}

	for i := 0; i < cfg.Concurrency; i++ {
		runner.workerWg.Add(1)
		go runner.worker(i + 1)
	}

	return runner
}

func normalizeConfig(cfg Config) Config {
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = defaultQueueSize
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaultConcurrency
	}
	return cfg
}

// Submit queues a render job without blocking.
func (r *Runner) Submit(job Job) error {
	if job.Input == nil {
		return errors.New("job input is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRunnerStopped
	}

	select {
	case r.queue <- job:
		log.GetLogger().Info("[TaskRunner] job submitted",
			zap.String("job_id", job.ID),
			zap.String("title", job.Input.Title))
		return nil
	default:
		return ErrQueueFull
	}
}

func (r *Runner) worker(workerID int) {
	defer r.workerWg.Done()

	for {
		select {
		case <-r.ctx.Done():
			return
		case job, ok := <-r.queue:
			if !ok {
				return
			}
			r.processJob(workerID, job)
		}
	}
}

func (r *Runner) processJob(workerID int, job Job) {
	outputPath, err := r.gen.GenerateVideo(r.ctx, job.Input, job.MusicPath, job.Progress)
	if err != nil {
		r.failed.Add(1)
		log.GetLogger().Error("[TaskRunner] job failed",
			zap.Int("worker_id", workerID),
			zap.String("job_id", job.ID),
			zap.Error(err))
		return
	}

	r.succeeded.Add(1)
	log.GetLogger().Info("[TaskRunner] job completed",
		zap.Int("worker_id", workerID),
		zap.String("job_id", job.ID),
		zap.String("output", outputPath))
}

// Drain stops intake, finishes the queued jobs, and reports totals.
func (r *Runner) Drain() (succeeded, failed int64) {
	r.stop(false)
	r.workerWg.Wait()
	return r.succeeded.Load(), r.failed.Load()
}

// Close stops intake and abandons queued jobs.
func (r *Runner) Close() {
	r.stop(true)
	r.workerWg.Wait()
}

func (r *Runner) stop(abort bool) {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	if abort {
		r.cancel()
	}
}

// Pending returns the number of queued jobs waiting for workers.
func (r *Runner) Pending() int {
	return len(r.queue)
}
