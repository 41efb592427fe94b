package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"activityweather/internal/observability"
)

// ErrDispatcherClosed is returned by Submit after Shutdown.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// Dispatcher runs submitted tasks in the background, detached from the
// caller. Tasks receive a context that is never cancelled.
type Dispatcher struct {
	sem    *semaphore.Weighted
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher running at most concurrency tasks at once.
func NewDispatcher(concurrency int, logger *zap.Logger) *Dispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &Dispatcher{
		sem:    semaphore.NewWeighted(int64(concurrency)),
		logger: logger,
	}
}

// Submit queues task and returns immediately.
func (d *Dispatcher) Submit(task func(ctx context.Context)) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		return ErrDispatcherClosed
	}
	d.wg.Add(1)
	go d.run(task)
	return nil
}

func (d *Dispatcher) run(task func(ctx context.Context)) {
	defer d.wg.Done()

	ctx := context.Background()
	// Acquire on a background context cannot fail.
	_ = d.sem.Acquire(ctx, 1)
	defer d.sem.Release(1)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("task panic: %v", r)
			d.logger.Error("background task panicked", zap.Error(err))
			observability.CaptureError(err, map[string]string{"stage": "dispatch"})
		}
	}()
	task(ctx)
}

// Shutdown stops accepting tasks and waits for running ones, or until ctx is
// done.
func (d *Dispatcher) Shutdown(ctx context.Context) error {
	d.mu.Lock()
	d.closed = true
	d.mu.Unlock()

	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
