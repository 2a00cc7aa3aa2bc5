package sideeffects

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"couponmap.backend/internal/config"
	"couponmap.backend/pkg/logger"
)

// Task is a best-effort follow-up to a committed write
type Task func(ctx context.Context) error

type job struct {
	name      string
	fn        Task
	requestID string
}

// Runner executes side effects on a bounded queue drained by a fixed worker
// pool. Submit never blocks the caller: a full queue drops the task.
type Runner struct {
	queue   chan job
	workers int
	timeout time.Duration

	tasks *prometheus.CounterVec

	mu      sync.RWMutex
	started bool
	stopped bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

func NewRunner(cfg config.SideEffectsConfig, reg prometheus.Registerer) *Runner {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	size := cfg.QueueSize
	if size <= 0 {
		size = 1
	}
	r := &Runner{
		queue:   make(chan job, size),
		workers: workers,
		timeout: cfg.TaskTimeout,
		tasks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "couponmap_side_effect_tasks_total",
			Help: "Side effect tasks by name and result.",
		}, []string{"task", "result"}),
	}
	if reg != nil {
		reg.MustRegister(r.tasks)
	}
	return r
}

// Start launches the workers. Cancelling ctx aborts in-flight tasks.
func (r *Runner) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.started {
		return
	}
	r.started = true
	ctx, r.cancel = context.WithCancel(context.WithoutCancel(ctx))
	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.work(ctx)
	}
}

// Stop closes the queue and waits for queued tasks to finish
func (r *Runner) Stop() {
	r.mu.Lock()
	if r.stopped {
		r.mu.Unlock()
		return
	}
	r.stopped = true
	close(r.queue)
	started := r.started
	r.mu.Unlock()

	if started {
		r.wg.Wait()
		r.cancel()
	}
}

// Submit enqueues fn and reports whether it was accepted
func (r *Runner) Submit(ctx context.Context, name string, fn func(ctx context.Context) error) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.stopped {
		r.tasks.WithLabelValues(name, "dropped").Inc()
		logger.Warn(ctx, "Side effect dropped after shutdown", zap.String("task", name))
		return false
	}
	select {
	case r.queue <- job{name: name, fn: fn, requestID: logger.RequestID(ctx)}:
		return true
	default:
		r.tasks.WithLabelValues(name, "dropped").Inc()
		logger.Warn(ctx, "Side effect queue full, task dropped", zap.String("task", name))
		return false
	}
}

func (r *Runner) work(ctx context.Context) {
	defer r.wg.Done()
	for j := range r.queue {
		r.run(ctx, j)
	}
}

func (r *Runner) run(parent context.Context, j job) {
	ctx := parent
	if j.requestID != "" {
		ctx = logger.ContextWithRequestID(ctx, j.requestID)
	}
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	err := func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("panic: %v", p)
			}
		}()
		return j.fn(ctx)
	}()

	if err != nil {
		r.tasks.WithLabelValues(j.name, "failed").Inc()
		logger.Error(ctx, "Side effect failed", zap.String("task", j.name), zap.Error(err))
		return
	}
	r.tasks.WithLabelValues(j.name, "ok").Inc()
}
