// Package loop provides the single-threaded cooperative event loop that
// lifecycle hooks run on.
//
// Callbacks are queued with [Loop.Schedule] from any goroutine and executed in
// FIFO order on the goroutine that calls [Loop.Tick], [Loop.Drain] or
// [Loop.Run]. A tick only runs the callbacks that were queued before it began;
// anything scheduled while a tick is running waits for the next one. That is
// the "one tick" a controller waits before it is connected to a host that is
// already live.
package loop

import (
	"context"
	"log/slog"
	"sync"

	"github.com/go-drift/hostkit/pkg/errors"
)

// DefaultMaxDrainTicks bounds Drain so a callback that reschedules itself
// forever cannot hang the caller.
const DefaultMaxDrainTicks = 1024

// Scheduler defers a callback to a later turn of the loop.
type Scheduler interface {
	Schedule(callback func())
}

// Loop is a FIFO callback queue drained one tick at a time.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}

	maxDrainTicks int
	logger        *slog.Logger
}

// Option configures a Loop.
type Option func(*Loop)

// WithLogger enables debug logging of tick activity.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loop) {
		l.logger = logger
	}
}

// WithMaxDrainTicks overrides DefaultMaxDrainTicks.
func WithMaxDrainTicks(n int) Option {
	return func(l *Loop) {
		if n > 0 {
			l.maxDrainTicks = n
		}
	}
}

// New creates an empty Loop.
func New(opts ...Option) *Loop {
	l := &Loop{
		wake:          make(chan struct{}, 1),
		maxDrainTicks: DefaultMaxDrainTicks,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Schedule queues callback for the next tick. It is safe to call from any
// goroutine. Nil callbacks are ignored.
func (l *Loop) Schedule(callback func()) {
	if callback == nil {
		return
	}
	l.mu.Lock()
	l.queue = append(l.queue, callback)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Pending returns the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

func (l *Loop) take() []func() {
	l.mu.Lock()
	callbacks := l.queue
	l.queue = nil
	l.mu.Unlock()
	return callbacks
}

// Tick runs every callback queued before the call and returns how many ran.
// A panicking callback is reported and does not stop the rest of the tick.
func (l *Loop) Tick() int {
	callbacks := l.take()
	for _, callback := range callbacks {
		l.run(callback)
	}
	if l.logger != nil && len(callbacks) > 0 {
		l.logger.Debug("loop tick", "callbacks", len(callbacks), "pending", l.Pending())
	}
	return len(callbacks)
}

func (l *Loop) run(callback func()) {
	defer errors.Recover("loop.Tick")
	callback()
}

// Drain ticks until the queue is empty or the drain limit is hit, and returns
// the number of ticks that ran callbacks.
func (l *Loop) Drain() int {
	ticks := 0
	for ticks < l.maxDrainTicks {
		if l.Tick() == 0 {
			return ticks
		}
		ticks++
	}
	if l.logger != nil {
		l.logger.Warn("loop drain limit reached", "ticks", ticks, "pending", l.Pending())
	}
	return ticks
}

// Run processes callbacks as they arrive until ctx is done, then returns
// ctx.Err(). Run must not be called concurrently with Tick or Drain.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Tick()
		if l.Pending() > 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

var (
	defaultMu   sync.RWMutex
	defaultLoop = New()
)

// Default returns the process-wide loop used by hosts that were not given one.
func Default() *Loop {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLoop
}

// SetDefault replaces the process-wide loop. Pass nil to install a fresh one.
func SetDefault(l *Loop) {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if l == nil {
		l = New()
	}
	defaultLoop = l
}
