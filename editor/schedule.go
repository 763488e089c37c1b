package editor

import (
	"context"
	"sync"
	"time"
)

// Scheduler defers callbacks onto the goroutine that drives the controller.
type Scheduler interface {
	// AfterFunc runs f once d has elapsed.
	AfterFunc(d time.Duration, f func()) Timer
	// Post runs f as soon as possible. Post is safe for concurrent use.
	Post(f func())
}

// Timer is a pending AfterFunc callback.
type Timer interface {
	// Stop prevents the callback from running. It reports whether the call
	// stopped it.
	Stop() bool
}

// Loop is a Scheduler whose callbacks run when the host drains it.
//
// Timers and Post may fire from any goroutine; callbacks only run inside
// Drain.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	ready chan struct{}
}

// NewLoop returns an empty loop.
func NewLoop() *Loop {
	return &Loop{ready: make(chan struct{}, 1)}
}

// Post queues f.
func (l *Loop) Post(f func()) {
	l.mu.Lock()
	l.queue = append(l.queue, f)
	l.mu.Unlock()

	select {
	case l.ready <- struct{}{}:
	default:
	}
}

// AfterFunc queues f once d has elapsed.
func (l *Loop) AfterFunc(d time.Duration, f func()) Timer {
	t := &loopTimer{}
	t.timer = time.AfterFunc(d, func() {
		l.Post(func() {
			if t.fire() {
				f()
			}
		})
	})
	return t
}

// Ready is signalled when callbacks are queued.
func (l *Loop) Ready() <-chan struct{} { return l.ready }

// Pending reports the number of queued callbacks.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Drain runs queued callbacks, including ones queued while draining, and
// returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		q := l.queue
		l.queue = nil
		l.mu.Unlock()
		if len(q) == 0 {
			return n
		}
		for _, f := range q {
			f()
			n++
		}
	}
}

// Wait blocks until callbacks are queued or ctx is done.
func (l *Loop) Wait(ctx context.Context) error {
	if l.Pending() > 0 {
		return nil
	}
	select {
	case <-l.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type loopTimer struct {
	mu      sync.Mutex
	timer   *time.Timer
	stopped bool
	fired   bool
}

func (t *loopTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	t.timer.Stop()
	return true
}

// fire reports whether the callback may run. A timer stopped after expiry but
// before the drain does not run.
func (t *loopTimer) fire() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.stopped {
		return false
	}
	t.fired = true
	return true
}
