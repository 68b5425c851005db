package loop

import "time"

// Scheduler is the host frame-callback facility the loop runs on. A real host
// (a display with vsync, a terminal session) schedules fn for its next frame
// opportunity and invokes it with a monotonically non-decreasing timestamp
// measured from an epoch the scheduler owns.
//
// The loop requests exactly one frame at a time: each callback requests the
// next one, so callbacks form a single logical thread of control.
type Scheduler interface {
	RequestFrame(fn func(now time.Duration)) Handle
}

// Handle represents a pending frame request and can cancel it.
type Handle interface {
	Cancel()
}

// TickScheduler approximates a display's frame pacing with plain timers, for
// hosts without a native frame callback. Each request fires after
// max(0, interval - time since the last callback), so callbacks land roughly
// every interval without drifting when the callback itself takes time.
type TickScheduler struct {
	interval time.Duration
	epoch    time.Time
	last     time.Duration
}

// NewTickScheduler creates a scheduler that paces callbacks at the given
// interval. Panics if interval is not positive.
func NewTickScheduler(interval time.Duration) *TickScheduler {
	if interval <= 0 {
		panic("loop: non-positive scheduler interval")
	}
	return &TickScheduler{
		interval: interval,
		epoch:    time.Now(),
	}
}

// RequestFrame schedules fn to run once, paced against the previous callback.
// Timestamps are durations since the scheduler's creation, carried on Go's
// monotonic clock.
//
// It must only be called from the scheduler's own callbacks or, for the first
// frame, before any callback has fired; that is the loop's single-threaded
// contract, and it is what makes the unsynchronized last field safe (each
// write happens before the timer for the next callback is armed).
func (s *TickScheduler) RequestFrame(fn func(now time.Duration)) Handle {
	delay := s.interval - (time.Since(s.epoch) - s.last)
	if delay < 0 {
		delay = 0
	}
	return timerHandle{time.AfterFunc(delay, func() {
		now := time.Since(s.epoch)
		s.last = now
		fn(now)
	})}
}

type timerHandle struct {
	t *time.Timer
}

// Cancel stops the pending callback. Cancelling after the callback has
// started is a no-op.
func (h timerHandle) Cancel() {
	h.t.Stop()
}
