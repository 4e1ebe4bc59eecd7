// Package worker runs background session jobs on a supervised goroutine pool
package worker

import (
	"fmt"
	"runtime/debug"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"
)

// Pool is a supervised goroutine pool. A task that panics is recovered and reported
// to its own panic callback, the worker goroutine survives.
type Pool struct {
	pool   *ants.Pool
	logger *zap.Logger
}

// antsLogger routes ants' internal messages through zap
type antsLogger struct {
	sugar *zap.SugaredLogger
}

func (l antsLogger) Printf(format string, args ...interface{}) {
	l.sugar.Infof(format, args...)
}

// NewPool creates a pool of size workers. A size <= 0 means unbounded.
// A bounded pool rejects work instead of blocking the caller when every worker is busy.
func NewPool(size int, logger *zap.Logger) (*Pool, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := ants.NewPool(size,
		ants.WithNonblocking(true),
		ants.WithExpiryDuration(time.Minute),
		ants.WithLogger(antsLogger{sugar: logger.Sugar()}),
		ants.WithPanicHandler(func(recovered interface{}) {
			logger.Error("Worker panic escaped task wrapper", zap.Any("panic", recovered))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Pool{pool: p, logger: logger}, nil
}

// Submit schedules task. onPanic receives the recovered value when task panics.
func (p *Pool) Submit(name string, task func(), onPanic func(recovered interface{})) error {
	err := p.pool.Submit(func() {
		defer func() {
			if r := recover(); r != nil {
				p.logger.Error("Task panicked",
					zap.String("task", name),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		task()
	})
	if err != nil {
		return fmt.Errorf("submit %s: %w", name, err)
	}
	return nil
}

// Running returns the number of busy workers
func (p *Pool) Running() int {
	return p.pool.Running()
}

// Release waits up to timeout for running tasks and stops the pool
func (p *Pool) Release(timeout time.Duration) error {
	return p.pool.ReleaseTimeout(timeout)
}
