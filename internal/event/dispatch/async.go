package dispatch

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// AsyncDispatcher executes callbacks asynchronously using a worker pool.
// Submitted tasks are never dropped: when the queue is full or the pool is
// stopped, the task runs on its own goroutine.
type AsyncDispatcher struct {
	// Configuration
	queueSize   int
	workerCount int

	// State. mu is held for reading while submitting so that Stop cannot
	// close the queue underneath a send.
	mu       sync.RWMutex
	queue    chan asyncTask
	running  atomic.Bool
	workers  sync.WaitGroup
	overflow sync.WaitGroup

	// Stats
	submitted   atomic.Uint64
	processed   atomic.Uint64
	succeeded   atomic.Uint64
	panicked    atomic.Uint64
	overflowed  atomic.Uint64
	pending     atomic.Int64
	totalTimeNs atomic.Int64

	completionPanics atomic.Uint64
}

// asyncTask represents a callback invocation to be executed asynchronously.
type asyncTask struct {
	cb   Callback
	args []any
	done CompletionFunc
}

// NewAsyncDispatcher creates a new asynchronous dispatcher.
func NewAsyncDispatcher(opts ...AsyncOption) *AsyncDispatcher {
	d := &AsyncDispatcher{
		queueSize:   1024,
		workerCount: 8,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// AsyncOption configures an AsyncDispatcher.
type AsyncOption func(*AsyncDispatcher)

// WithQueueSize sets the task queue size.
func WithQueueSize(size int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if size > 0 {
			d.queueSize = size
		}
	}
}

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) AsyncOption {
	return func(d *AsyncDispatcher) {
		if count > 0 {
			d.workerCount = count
		}
	}
}

// Start starts the worker pool.
func (d *AsyncDispatcher) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.running.Load() {
		return ErrAlreadyRunning
	}

	d.queue = make(chan asyncTask, d.queueSize)
	d.running.Store(true)

	for i := 0; i < d.workerCount; i++ {
		d.workers.Add(1)
		go d.worker(d.queue)
	}

	return nil
}

// Stop stops the worker pool gracefully.
// It waits for all queued and overflow tasks to complete or until ctx is done.
func (d *AsyncDispatcher) Stop(ctx context.Context) error {
	d.mu.Lock()
	if !d.running.Load() {
		d.mu.Unlock()
		return ErrNotRunning
	}

	d.running.Store(false)
	close(d.queue)
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.workers.Wait()
		d.overflow.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Submit schedules cb to run with args and returns without waiting for it.
// done, if non-nil, is called after the callback has returned or panicked.
func (d *AsyncDispatcher) Submit(cb Callback, args []any, done CompletionFunc) {
	task := asyncTask{cb: cb, args: args, done: done}

	d.submitted.Add(1)
	d.pending.Add(1)

	d.mu.RLock()
	if d.running.Load() {
		select {
		case d.queue <- task:
			d.mu.RUnlock()
			return
		default:
		}
		// Tracked so Stop waits for it; Add happens under the read lock
		// while running, which cannot overlap Stop's wait.
		d.overflow.Add(1)
		d.mu.RUnlock()

		d.overflowed.Add(1)
		go func() {
			defer d.overflow.Done()
			d.executeTask(NewExecutor(), task)
		}()
		return
	}
	d.mu.RUnlock()

	d.overflowed.Add(1)
	go d.executeTask(NewExecutor(), task)
}

// worker processes tasks from the queue.
func (d *AsyncDispatcher) worker(queue <-chan asyncTask) {
	defer d.workers.Done()

	executor := NewExecutor()

	for task := range queue {
		d.executeTask(executor, task)
	}
}

// executeTask executes a single task and then its completion function.
func (d *AsyncDispatcher) executeTask(executor *Executor, task asyncTask) {
	defer d.pending.Add(-1)

	d.processed.Add(1)
	result := executor.Execute(task.cb, task.args)
	d.totalTimeNs.Add(result.Duration.Nanoseconds())

	if result.Panicked {
		d.panicked.Add(1)
	} else {
		d.succeeded.Add(1)
	}

	if task.done == nil {
		return
	}

	// A panicking completion must not kill the worker.
	defer func() {
		if r := recover(); r != nil {
			d.completionPanics.Add(1)
		}
	}()
	task.done(result)
}

// QueueDepth returns the current number of tasks waiting in the queue.
// Returns 0 if the dispatcher is not running.
func (d *AsyncDispatcher) QueueDepth() int {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.running.Load() {
		return 0
	}
	return len(d.queue)
}

// Pending returns the number of submitted tasks whose completion has not yet run.
func (d *AsyncDispatcher) Pending() int64 {
	return d.pending.Load()
}

// IsRunning returns true if the dispatcher is running.
func (d *AsyncDispatcher) IsRunning() bool {
	return d.running.Load()
}

// Stats returns dispatcher statistics.
func (d *AsyncDispatcher) Stats() AsyncDispatcherStats {
	processed := d.processed.Load()
	totalNs := d.totalTimeNs.Load()

	var avgNs int64
	if processed > 0 {
		avgNs = totalNs / int64(processed)
	}

	return AsyncDispatcherStats{
		Submitted:        d.submitted.Load(),
		Processed:        processed,
		Succeeded:        d.succeeded.Load(),
		Panicked:         d.panicked.Load(),
		Overflowed:       d.overflowed.Load(),
		CompletionPanics: d.completionPanics.Load(),
		Pending:          d.pending.Load(),
		QueueDepth:       d.QueueDepth(),
		TotalDuration:    time.Duration(totalNs),
		AvgDuration:      time.Duration(avgNs),
	}
}

// AsyncDispatcherStats contains statistics for an async dispatcher.
type AsyncDispatcherStats struct {
	// Submitted is the total number of tasks handed to Submit.
	Submitted uint64

	// Processed is the number of tasks that have been executed.
	Processed uint64

	// Succeeded is the number of callbacks that returned normally.
	Succeeded uint64

	// Panicked is the number of callbacks that panicked.
	Panicked uint64

	// Overflowed is the number of tasks run on a dedicated goroutine because
	// the queue was full or the pool was not running.
	Overflowed uint64

	// CompletionPanics is the number of completion functions that panicked.
	CompletionPanics uint64

	// Pending is the number of tasks whose completion has not yet run.
	Pending int64

	// QueueDepth is the current number of tasks waiting in the queue.
	QueueDepth int

	// TotalDuration is the cumulative time spent in callbacks.
	TotalDuration time.Duration

	// AvgDuration is the average callback execution time.
	AvgDuration time.Duration
}
