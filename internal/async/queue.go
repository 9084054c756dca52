package async

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Job is the smallest useful unit. Extend as needed later (trace, retry, etc).
type Job struct {
	ID          uuid.UUID
	ImagePath   string
	SubmittedAt time.Time
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

var ErrQueueClosed = errors.New("queue closed")

// Handler processes one job; it must honor ctx cancellation.
type Handler func(ctx context.Context, job Job)

// WorkerQueue is a bounded in-memory queue drained by a fixed pool of
// goroutines. Enqueue blocks when the buffer is full, providing natural
// backpressure for batch runs.
type WorkerQueue struct {
	jobs    chan Job
	handler Handler
	logger  *slog.Logger
	wg      sync.WaitGroup

	mu     sync.RWMutex // guards closed vs in-flight Enqueue sends
	closed bool
}

func NewWorkerQueue(ctx context.Context, workers, buffer int, handler Handler, logger *slog.Logger) *WorkerQueue {
	if logger == nil {
		logger = slog.Default()
	}
	if workers <= 0 {
		workers = 1
	}
	if buffer < 0 {
		buffer = 0
	}
	q := &WorkerQueue{
		jobs:    make(chan Job, buffer),
		handler: handler,
		logger:  logger,
	}
	q.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go q.worker(ctx, i)
	}
	return q
}

func (q *WorkerQueue) worker(ctx context.Context, id int) {
	defer q.wg.Done()
	for job := range q.jobs {
		q.logger.Debug("worker picked job", "worker", id, "job_id", job.ID, "image", job.ImagePath)
		q.handler(ctx, job)
	}
}

func (q *WorkerQueue) Enqueue(ctx context.Context, job Job) error {
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrQueueClosed
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case q.jobs <- job:
		return nil
	}
}

// Shutdown stops intake and waits for in-flight jobs, or until ctx expires.
func (q *WorkerQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.jobs)
	}
	q.mu.Unlock()

	finished := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
	case <-ctx.Done():
		q.logger.Warn("queue shutdown timed out", "error", ctx.Err())
	}
}
