package assignment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"fulfillment-be/internal/logger"
	"fulfillment-be/internal/metrics"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Runner executes detached work. Submit must never block the caller.
type Runner interface {
	Submit(ctx context.Context, name string, fn func(ctx context.Context) error) bool
}

type task struct {
	id   string
	name string
	ctx  context.Context
	fn   func(ctx context.Context) error
}

// Queue is a fixed pool of workers draining a bounded channel. A full queue
// drops the task; the sweeper picks the order up again later.
type Queue struct {
	tasks   chan task
	workers int
	timeout time.Duration
	metrics *metrics.Registry

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup
}

func NewQueue(workers, size int, reg *metrics.Registry) *Queue {
	if workers < 1 {
		workers = 1
	}
	if size < 1 {
		size = 1
	}
	return &Queue{
		tasks:   make(chan task, size),
		workers: workers,
		timeout: 30 * time.Second,
		metrics: reg,
	}
}

func (q *Queue) Start() {
	for i := 1; i <= q.workers; i++ {
		q.wg.Add(1)
		go q.worker(i)
	}
	logger.L().Info("assignment queue started", zap.Int("workers", q.workers), zap.Int("capacity", cap(q.tasks)))
}

func (q *Queue) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) bool {
	t := task{id: uuid.NewString(), name: name, ctx: logger.Detach(ctx), fn: fn}

	q.mu.RLock()
	defer q.mu.RUnlock()

	log := logger.FromCtx(ctx).With(zap.String("task", name), zap.String("task_id", t.id))
	if q.closed {
		log.Warn("queue closed, task dropped")
		q.metrics.Inc(metrics.BackgroundTasksDropped)
		return false
	}

	select {
	case q.tasks <- t:
		return true
	default:
		log.Warn("queue full, task dropped")
		q.metrics.Inc(metrics.BackgroundTasksDropped)
		return false
	}
}

func (q *Queue) worker(id int) {
	defer q.wg.Done()
	for t := range q.tasks {
		q.run(id, t)
	}
}

func (q *Queue) run(workerID int, t task) {
	log := logger.FromCtx(t.ctx).With(
		zap.Int("worker", workerID),
		zap.String("task", t.name),
		zap.String("task_id", t.id),
	)

	ctx, cancel := context.WithTimeout(t.ctx, q.timeout)
	defer cancel()

	timer := metrics.StartTimer()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("panic: %v", r)
			}
		}()
		return t.fn(ctx)
	}()
	elapsed := timer.Duration()
	q.metrics.Add(metrics.BackgroundTaskMillis, uint64(elapsed.Milliseconds()))

	if err != nil {
		q.metrics.Inc(metrics.BackgroundTasksFailed)
		log.Error("background task failed", zap.Error(err), zap.Duration("duration", elapsed))
		return
	}
	q.metrics.Inc(metrics.BackgroundTasksDone)
	log.Debug("background task done", zap.Duration("duration", elapsed))
}

// Shutdown stops accepting tasks and waits for queued ones to finish or ctx
// to expire.
func (q *Queue) Shutdown(ctx context.Context) error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		close(q.tasks)
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
