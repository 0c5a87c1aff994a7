package notify

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"bokaap-reservations/models"
)

var (
	ErrQueueFull   = errors.New("notification queue is full")
	ErrQueueClosed = errors.New("notification queue is closed")
)

// deliveryTimeout bounds a single provider call made by a worker.
const deliveryTimeout = 10 * time.Second

// Job is one email waiting to be rendered and sent.
type Job struct {
	ID          string             `json:"id"`
	Event       string             `json:"event"`
	Reservation models.Reservation `json:"reservation"`
	EnqueuedAt  time.Time          `json:"enqueued_at"`
}

// HandlerFunc processes a dequeued job.
type HandlerFunc func(ctx context.Context, job Job) error

// Queue decouples request handling from email delivery.
type Queue interface {
	// Enqueue must not block on delivery.
	Enqueue(ctx context.Context, job Job) error

	// Start begins handing jobs to handle in the background.
	Start(ctx context.Context, handle HandlerFunc) error

	// Close stops accepting jobs and waits for in-flight ones until ctx is done.
	Close(ctx context.Context) error
}

// MemoryQueue is an in-process worker pool over a buffered channel. Jobs still
// buffered when the process dies are lost.
type MemoryQueue struct {
	jobs    chan Job
	workers int

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewMemoryQueue(size, workers int) *MemoryQueue {
	if size < 1 {
		size = 1
	}
	if workers < 1 {
		workers = 1
	}
	return &MemoryQueue{jobs: make(chan Job, size), workers: workers}
}

func (q *MemoryQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}

	select {
	case q.jobs <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

func (q *MemoryQueue) Start(ctx context.Context, handle HandlerFunc) error {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go func(worker int) {
			defer q.wg.Done()
			for job := range q.jobs {
				jobCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), deliveryTimeout)
				if err := handle(jobCtx, job); err != nil {
					slog.Debug("notification job failed", "worker", worker, "job", job.ID, "err", err)
				}
				cancel()
			}
		}(i)
	}
	slog.Info("notification workers started", "workers", q.workers, "buffer", cap(q.jobs))
	return nil
}

func (q *MemoryQueue) Close(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
