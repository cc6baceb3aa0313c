package navigation

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/yungbote/execudex-backend/internal/platform/logger"
)

// Dispatcher runs side effects that must never block or fail a navigation.
type Dispatcher interface {
	Go(name string, fn func(ctx context.Context) error)
	// Wait blocks until every dispatched task has returned.
	Wait()
}

type asyncDispatcher struct {
	log     *logger.Logger
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher returns a goroutine-per-task dispatcher. Each task gets a fresh
// context bounded by timeout so it outlives the request that spawned it.
func NewDispatcher(log *logger.Logger, timeout time.Duration) Dispatcher {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &asyncDispatcher{log: log.With("component", "NavigationDispatcher"), timeout: timeout}
}

func (d *asyncDispatcher) Go(name string, fn func(ctx context.Context) error) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := runGuarded(ctx, fn); err != nil {
			d.log.Warn("Background task failed", "task", name, "error", err)
		}
	}()
}

func (d *asyncDispatcher) Wait() { d.wg.Wait() }

func runGuarded(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v\n%s", r, debug.Stack())
		}
	}()
	return fn(ctx)
}

// InlineDispatcher runs tasks on the caller's goroutine. Used by the CLI.
type InlineDispatcher struct {
	Log *logger.Logger
}

func (d InlineDispatcher) Go(name string, fn func(ctx context.Context) error) {
	if err := runGuarded(context.Background(), fn); err != nil && d.Log != nil {
		d.Log.Warn("Background task failed", "task", name, "error", err)
	}
}

func (InlineDispatcher) Wait() {}
