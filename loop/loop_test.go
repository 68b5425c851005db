package loop

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubScheduler hands frame callbacks to the test instead of a clock, so
// cycles run synchronously with whatever timestamps the test chooses.
type stubScheduler struct {
	queued  func(time.Duration)
	cancels int
}

type stubHandle struct{ s *stubScheduler }

func (h stubHandle) Cancel() { h.s.cancels++ }

func (s *stubScheduler) RequestFrame(fn func(now time.Duration)) Handle {
	s.queued = fn
	return stubHandle{s}
}

// fire invokes the pending frame callback with the given timestamp.
func (s *stubScheduler) fire(t *testing.T, now time.Duration) {
	t.Helper()
	fn := s.queued
	require.NotNil(t, fn, "no frame callback pending")
	s.queued = nil
	fn(now)
}

func newTestLoop(t *testing.T, step time.Duration) (*Loop, *stubScheduler) {
	t.Helper()
	sched := &stubScheduler{}
	l := New().SetTimeStep(step).SetScheduler(sched)
	return l, sched
}

func TestStartRunsSetupAndRequestsFirstFrame(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	setupRan := false
	require.NoError(t, l.Start(func() { setupRan = true }))

	assert.True(t, setupRan)
	assert.True(t, l.Started())
	assert.NotNil(t, sched.queued, "Start should request the first frame")
}

func TestStartTwiceFails(t *testing.T) {
	l, _ := newTestLoop(t, 16*time.Millisecond)

	require.NoError(t, l.Start(nil))
	assert.ErrorIs(t, l.Start(nil), ErrStarted)
}

func TestSetTimeStepRejectsNonPositive(t *testing.T) {
	assert.Panics(t, func() { New().SetTimeStep(0) })
	assert.Panics(t, func() { New().SetTimeStep(-time.Millisecond) })
}

func TestHookOrderWithinCycle(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	var order []string
	l.SetBegin(func() { order = append(order, "begin") }).
		SetUpdate(func(time.Duration) { order = append(order, "update") }).
		SetRender(func(float64) { order = append(order, "render") }).
		SetEnd(func() { order = append(order, "end") })

	require.NoError(t, l.Start(nil))
	sched.fire(t, 20*time.Millisecond)

	assert.Equal(t, []string{"begin", "update", "render", "end"}, order)
}

// Scenario from the drain contract: step 16ms, frames at 0, 50 and 66ms.
// 50ms of backlog drains as three whole steps with 2ms left over; the next
// frame adds exactly one step's worth and drains exactly once.
func TestDrainCatchUp(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	var updates int
	var dts []time.Duration
	l.SetUpdate(func(dt time.Duration) {
		updates++
		dts = append(dts, dt)
	})
	l.SetEnd(func() { assert.False(t, l.Panicking()) })

	require.NoError(t, l.Start(nil))

	sched.fire(t, 0)
	assert.Equal(t, 0, updates)

	sched.fire(t, 50*time.Millisecond)
	assert.Equal(t, 3, updates)

	sched.fire(t, 66*time.Millisecond)
	assert.Equal(t, 4, updates)

	for _, dt := range dts {
		assert.Equal(t, 16*time.Millisecond, dt, "every step must be exactly one time step")
	}
}

// Conservation of simulated time: however the frame timestamps are spaced,
// total updates equal floor(total elapsed / step) and the leftover stays
// below one step.
func TestUpdateCountConservation(t *testing.T) {
	const step = 16 * time.Millisecond

	l, sched := newTestLoop(t, step)

	var updates int
	l.SetUpdate(func(time.Duration) { updates++ })
	require.NoError(t, l.Start(nil))

	stamps := []time.Duration{
		3 * time.Millisecond,
		19 * time.Millisecond,
		40 * time.Millisecond,
		41 * time.Millisecond,
		300 * time.Millisecond,
		301 * time.Millisecond,
		500 * time.Millisecond,
	}
	for _, ts := range stamps {
		sched.fire(t, ts)
	}

	total := stamps[len(stamps)-1]
	assert.Equal(t, int(total/step), updates)
	assert.GreaterOrEqual(t, l.accumulated, time.Duration(0))
	assert.Less(t, l.accumulated, step)
}

func TestRenderAlphaInRange(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	var alphas []float64
	l.SetRender(func(alpha float64) { alphas = append(alphas, alpha) })
	require.NoError(t, l.Start(nil))

	for _, ts := range []time.Duration{
		7 * time.Millisecond,
		16 * time.Millisecond,
		47 * time.Millisecond,
		1500 * time.Millisecond,
		1516 * time.Millisecond,
	} {
		sched.fire(t, ts)
	}

	require.Len(t, alphas, 5)
	for _, a := range alphas {
		assert.GreaterOrEqual(t, a, 0.0)
		assert.Less(t, a, 1.0)
	}
}

// A single frame delivering 1200ms of backlog drains 75 steps of 16ms, flags
// the overload for the End hook, and clears it before the next cycle.
func TestOverloadFlagLifetime(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	var updates int
	sawPanicAtEnd := false
	sawPanicAtNextBegin := true

	l.SetUpdate(func(time.Duration) { updates++ }).
		SetEnd(func() { sawPanicAtEnd = l.Panicking() })
	require.NoError(t, l.Start(nil))

	sched.fire(t, 1200*time.Millisecond)
	assert.Equal(t, 75, updates)
	assert.True(t, sawPanicAtEnd, "End must observe the overload")
	assert.False(t, l.Panicking(), "flag must be cleared when the cycle returns")

	l.SetBegin(func() { sawPanicAtNextBegin = l.Panicking() })
	sched.fire(t, 1216*time.Millisecond)
	assert.False(t, sawPanicAtNextBegin, "flag must not leak into the next cycle")
	assert.Equal(t, 76, updates)
}

// The first callback measures elapsed time against a zero previous timestamp,
// so a host whose clock is already far along produces one big warm-start
// drain, flagged as an overload rather than hidden.
func TestFirstFrameWarmStart(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	var updates int
	sawPanic := false
	l.SetUpdate(func(time.Duration) { updates++ }).
		SetEnd(func() { sawPanic = l.Panicking() })
	require.NoError(t, l.Start(nil))

	sched.fire(t, 2*time.Second)
	assert.Equal(t, 125, updates)
	assert.True(t, sawPanic)
}

// Reconfiguring before Start is last-write-wins: the loop drains with the
// final step size only.
func TestSetTimeStepBeforeStart(t *testing.T) {
	sched := &stubScheduler{}
	l := New().
		SetTimeStep(20 * time.Millisecond).
		SetTimeStep(16 * time.Millisecond).
		SetScheduler(sched)

	var dts []time.Duration
	l.SetUpdate(func(dt time.Duration) { dts = append(dts, dt) })
	require.NoError(t, l.Start(nil))

	sched.fire(t, 48*time.Millisecond)
	require.Len(t, dts, 3)
	for _, dt := range dts {
		assert.Equal(t, 16*time.Millisecond, dt)
	}
}

func TestStopCancelsPendingFrame(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)
	require.NoError(t, l.Start(nil))

	l.Stop()
	assert.Equal(t, 1, sched.cancels)
}

// Stopping from a hook lets the current cycle finish but prevents the
// rescheduling that would otherwise keep the loop alive forever.
func TestStopFromHookHaltsRescheduling(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	cycles := 0
	l.SetEnd(func() {
		cycles++
		if cycles == 2 {
			l.Stop()
		}
	})
	require.NoError(t, l.Start(nil))

	sched.fire(t, 16*time.Millisecond)
	require.NotNil(t, sched.queued, "loop should reschedule while running")
	sched.fire(t, 32*time.Millisecond)

	assert.Nil(t, sched.queued, "stopped loop must not reschedule")
	assert.Equal(t, 2, cycles)
}

// Hook panics propagate to the host uncontained; the loop adds no recovery.
func TestUpdatePanicPropagates(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	l.SetUpdate(func(time.Duration) { panic("boom") })
	require.NoError(t, l.Start(nil))

	assert.PanicsWithValue(t, "boom", func() { sched.fire(t, 16*time.Millisecond) })
}

func TestNilHookRestoresNoOp(t *testing.T) {
	l, sched := newTestLoop(t, 16*time.Millisecond)

	l.SetUpdate(func(time.Duration) { t.Fatal("should be replaced") })
	l.SetUpdate(nil)
	require.NoError(t, l.Start(nil))

	sched.fire(t, 16*time.Millisecond)
}
