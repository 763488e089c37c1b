package editor

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeScheduler runs timers when the test advances its clock.
type fakeScheduler struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
	posted []func()
}

type fakeTimer struct {
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{at: s.now + d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) Post(f func()) {
	s.mu.Lock()
	s.posted = append(s.posted, f)
	s.mu.Unlock()
}

// Flush runs posted callbacks until none are left.
func (s *fakeScheduler) Flush() {
	for {
		s.mu.Lock()
		q := s.posted
		s.posted = nil
		s.mu.Unlock()
		if len(q) == 0 {
			return
		}
		for _, f := range q {
			f()
		}
	}
}

// Advance moves the clock by d, firing due timers in order, then flushes.
func (s *fakeScheduler) Advance(d time.Duration) {
	target := s.now + d
	for {
		var next *fakeTimer
		for _, t := range s.timers {
			if t.stopped || t.fired || t.at > target {
				continue
			}
			if next == nil || t.at < next.at {
				next = t
			}
		}
		if next == nil {
			break
		}
		s.now = next.at
		next.fired = true
		next.f()
	}
	s.now = target
	s.Flush()
}

func TestLoop_DrainRunsQueuedAndNested(t *testing.T) {
	l := NewLoop()
	var got []int
	l.Post(func() {
		got = append(got, 1)
		l.Post(func() { got = append(got, 3) })
	})
	l.Post(func() { got = append(got, 2) })
	if n := l.Pending(); n != 2 {
		t.Fatalf("pending: got %d, want 2", n)
	}
	if n := l.Drain(); n != 3 {
		t.Fatalf("drained: got %d, want 3", n)
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("order: got %v, want [1 2 3]", got)
	}
}

func TestLoop_AfterFunc(t *testing.T) {
	l := NewLoop()
	ran := false
	l.AfterFunc(time.Millisecond, func() { ran = true })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := l.Wait(ctx); err != nil {
		t.Fatalf("wait: %v", err)
	}
	l.Drain()
	if !ran {
		t.Fatalf("timer callback did not run")
	}
}

func TestLoop_StoppedTimerNeverRuns(t *testing.T) {
	l := NewLoop()
	ran := false
	tm := l.AfterFunc(time.Hour, func() { ran = true })
	if !tm.Stop() {
		t.Fatalf("stop: got false, want true")
	}
	if tm.Stop() {
		t.Fatalf("second stop: got true, want false")
	}
	l.Drain()
	if ran {
		t.Fatalf("stopped timer ran")
	}
}

func TestLoop_WaitHonorsContext(t *testing.T) {
	l := NewLoop()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Wait(ctx); err != context.Canceled {
		t.Fatalf("wait: got %v, want %v", err, context.Canceled)
	}
}
