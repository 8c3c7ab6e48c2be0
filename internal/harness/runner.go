package harness

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/dgallion1/layoutprobe/internal/config"
	"github.com/dgallion1/layoutprobe/internal/docintel"
	"github.com/dgallion1/layoutprobe/internal/results"
)

// Runner manages the analysis job queue and worker pool.
type Runner struct {
	jobs   *JobStore
	queue  chan *Job
	client *docintel.Client
	sink   *results.Sink
	stats  *AnalyzeStats
	log    *slog.Logger
	cfg    config.Config

	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewRunner(cfg config.Config, client *docintel.Client, sink *results.Sink, log *slog.Logger) *Runner {
	return &Runner{
		jobs:   NewJobStore(cfg.JobTTL),
		queue:  make(chan *Job, cfg.MaxQueueSize),
		client: client,
		sink:   sink,
		stats:  NewAnalyzeStats(time.Hour),
		log:    log,
		cfg:    cfg,
	}
}

// Start launches worker goroutines.
func (r *Runner) Start(ctx context.Context) {
	workerCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for range r.cfg.WorkerCount {
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			w := NewWorker(r.client, r.sink, r.stats, r.log, r.cfg)
			for {
				select {
				case <-workerCtx.Done():
					return
				case job, ok := <-r.queue:
					if !ok {
						return
					}
					w.Process(workerCtx, job)
				}
			}
		}()
	}

	// Job store cleanup.
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ticker := time.NewTicker(5 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-workerCtx.Done():
				return
			case <-ticker.C:
				r.jobs.Cleanup()
			}
		}
	}()
}

// Stop gracefully shuts down the worker pool. Submit fails once Stop has
// been called; calling Stop twice is safe.
func (r *Runner) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()
	r.wg.Wait()
}

// Submit queues a new job for processing, assigning an ID if needed.
func (r *Runner) Submit(job *Job) error {
	if job.ID == "" {
		job.ID = generateULID()
	}
	if job.RequestedFormat == "" {
		job.RequestedFormat = r.cfg.OutputFormat
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	job.UpdatedAt = now
	if job.Status == "" {
		job.Status = StatusQueued
		job.Phase = "queued"
	}

	r.jobs.Put(job)
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		job.SetStatus(StatusFailed, "queue_closed")
		return fmt.Errorf("runner is stopped")
	}
	select {
	case r.queue <- job:
		return nil
	default:
		job.SetStatus(StatusFailed, "queue_full")
		return fmt.Errorf("job queue is full (%d)", r.cfg.MaxQueueSize)
	}
}

// GetJob returns a job by ID.
func (r *Runner) GetJob(id string) *Job {
	return r.jobs.Get(id)
}

// QueueDepth returns current queue depth.
func (r *Runner) QueueDepth() int {
	return len(r.queue)
}

// Stats returns the latency tracker.
func (r *Runner) Stats() *AnalyzeStats {
	return r.stats
}
