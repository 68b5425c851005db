// Package loop provides a fixed-timestep main loop with the standard
// Begin → Update → Render → End cycle.
//
// Simulation updates run at a fixed, configurable step size regardless of how
// often the host delivers frames: unspent frame time is banked in an
// accumulator and drained in whole steps, so game logic stays deterministic
// across display refresh rates and transient slowdowns. Rendering happens once
// per frame and receives the fractional progress into the next step for
// visual extrapolation.
package loop

import (
	"errors"
	"time"
)

// DefaultTimeStep is the simulation step size used by new loops (60 updates
// per second).
const DefaultTimeStep = time.Second / 60

// overloadAfter is the backlog at which a drain cycle is flagged as
// panicking: once the simulation falls a full second behind, something is
// badly wrong and callers may want to react (drop quality, warn, bail).
const overloadAfter = time.Second

// ErrStarted is returned by Start when the loop is already running.
var ErrStarted = errors.New("loop: already started")

// Loop drives a fixed-timestep simulation from host frame callbacks.
//
// All hooks run on the scheduler's single logical thread, one frame cycle at
// a time, so they may read and reconfigure the loop without locking. A Loop
// must not be copied after first use.
type Loop struct {
	scheduler Scheduler
	pending   Handle

	timeStep    time.Duration
	previous    time.Duration // timestamp of the previous frame callback
	accumulated time.Duration // banked simulation time not yet consumed

	started   bool
	running   bool
	panicking bool

	fps fpsSampler

	begin  func()
	update func(dt time.Duration)
	render func(alpha float64)
	end    func()
}

// New creates an unstarted loop with the default time step and no-op hooks.
// Configure it with the Set* methods, then call Start.
func New() *Loop {
	return &Loop{
		timeStep: DefaultTimeStep,
		begin:    func() {},
		update:   func(time.Duration) {},
		render:   func(float64) {},
		end:      func() {},
	}
}

// SetBegin installs the hook called once per frame cycle, before any Update.
// Intended for non-blocking input sampling. A nil fn restores the no-op.
func (l *Loop) SetBegin(fn func()) *Loop {
	if fn == nil {
		fn = func() {}
	}
	l.begin = fn
	return l
}

// SetUpdate installs the hook called zero or more times per frame cycle, each
// call advancing the simulation by exactly one time step. A nil fn restores
// the no-op.
func (l *Loop) SetUpdate(fn func(dt time.Duration)) *Loop {
	if fn == nil {
		fn = func(time.Duration) {}
	}
	l.update = fn
	return l
}

// SetRender installs the hook called exactly once per frame cycle, after all
// updates. alpha is the fractional progress into the next simulation step,
// always in [0, 1), for extrapolating the rendered state between updates.
// A nil fn restores the no-op.
func (l *Loop) SetRender(fn func(alpha float64)) *Loop {
	if fn == nil {
		fn = func(float64) {}
	}
	l.render = fn
	return l
}

// SetEnd installs the hook called once per frame cycle, after Render. It is
// the place to inspect FPS and Panicking for diagnostics or adaptive
// behavior. A nil fn restores the no-op.
func (l *Loop) SetEnd(fn func()) *Loop {
	if fn == nil {
		fn = func() {}
	}
	l.end = fn
	return l
}

// SetTimeStep changes the fixed simulation step size. Like time.NewTicker it
// panics if d is not positive, since a non-positive step would spin the drain
// loop forever. Calling it after Start takes effect on the next frame cycle.
func (l *Loop) SetTimeStep(d time.Duration) *Loop {
	if d <= 0 {
		panic("loop: non-positive time step")
	}
	l.timeStep = d
	return l
}

// SetScheduler replaces the host frame scheduler. Useful for tests and for
// hosts with their own frame pacing (a display vsync callback, an SSH session
// ticker). Must be called before Start; nil keeps the default.
func (l *Loop) SetScheduler(s Scheduler) *Loop {
	if s != nil {
		l.scheduler = s
	}
	return l
}

// TimeStep returns the current fixed simulation step size.
func (l *Loop) TimeStep() time.Duration { return l.timeStep }

// Started reports whether Start has been called.
func (l *Loop) Started() bool { return l.started }

// FPS returns the frame rate measured over the last completed one-second
// sampling window.
func (l *Loop) FPS() int { return l.fps.fps }

// Panicking reports whether the current frame cycle found a backlog of one
// second or more. It is a per-frame transient: set during the drain,
// observable from the End hook, and cleared before the next cycle begins.
func (l *Loop) Panicking() bool { return l.panicking }

// Start runs setup (if non-nil) synchronously, then requests the first frame
// callback and begins perpetual scheduling. If no scheduler was injected, a
// TickScheduler paced at the current time step is created. Returns ErrStarted
// when called on a loop that is already started.
func (l *Loop) Start(setup func()) error {
	if l.started {
		return ErrStarted
	}
	if setup != nil {
		setup()
	}
	l.started = true
	l.running = true
	if l.scheduler == nil {
		l.scheduler = NewTickScheduler(l.timeStep)
	}
	l.pending = l.scheduler.RequestFrame(l.frame)
	return nil
}

// Stop cancels the pending frame request and halts rescheduling. Safe to call
// from within any hook; the current frame cycle still runs to completion.
// A stopped loop cannot be restarted; create a new one instead.
func (l *Loop) Stop() {
	l.running = false
	if l.pending != nil {
		l.pending.Cancel()
		l.pending = nil
	}
}

// frame is the per-callback cycle: bank elapsed time, drain it in fixed
// steps, render the remainder, then reschedule.
//
// On the very first callback previous is zero, so elapsed equals the
// scheduler's timestamp and the drain loop consumes that initial backlog in
// one go. That warm-start catch-up is deliberate; if the host's first
// timestamp is large the overload flag will report it.
func (l *Loop) frame(now time.Duration) {
	elapsed := now - l.previous
	l.previous = now
	l.accumulated += elapsed

	l.begin()

	for l.accumulated >= l.timeStep {
		if l.accumulated >= overloadAfter {
			l.panicking = true
		}
		l.update(l.timeStep)
		l.accumulated -= l.timeStep
	}

	l.render(float64(l.accumulated) / float64(l.timeStep))

	l.fps.sample(elapsed)

	l.end()

	l.panicking = false

	if l.running {
		l.pending = l.scheduler.RequestFrame(l.frame)
	}
}
