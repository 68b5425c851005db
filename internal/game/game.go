// Package game is a bouncing-ball demo driven by the loop package. It keeps
// the previous fixed-step position of every ball so rendering can extrapolate
// between simulation steps with the loop's alpha value.
package game

import (
	"bufio"
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/tomz197/mainloop/internal/draw"
	"github.com/tomz197/mainloop/internal/input"
	"github.com/tomz197/mainloop/loop"
)

// Logical resolution - simulation uses these dimensions, rendering scales to
// fit the terminal (height is in sub-pixels, so 40 terminal rows).
const (
	logicalWidth  = 120.0
	logicalHeight = 80.0
)

const (
	gravity       = 60.0 // logical units per second squared
	ballRadius    = 1.5
	bounceDamping = 0.98
	maxBalls      = 256
)

// Options configures a demo run.
type Options struct {
	TermSizeFunc draw.TermSizeFunc // defaults to draw.StdoutSize
	TimeStep     time.Duration     // defaults to loop.DefaultTimeStep
	Balls        int               // initial ball count, defaults to 5
}

// ball carries current and previous step positions for extrapolation.
type ball struct {
	pos  draw.Point
	prev draw.Point
	vel  draw.Point
}

// World holds the demo state and owns one Loop instance.
type World struct {
	loop   *loop.Loop
	stream *input.Stream
	out    io.Writer
	canvas *draw.Canvas
	size   draw.TermSizeFunc

	balls    []ball
	paused   bool
	quitting bool
	rng      *rand.Rand

	done chan struct{}
}

// Run drives the demo until the user quits or the input source closes.
// It wires the Begin → Update → Render → End hooks and blocks while the loop
// schedules itself.
func Run(r *bufio.Reader, w io.Writer, opts Options) error {
	sizeFn := opts.TermSizeFunc
	if sizeFn == nil {
		sizeFn = draw.StdoutSize
	}
	step := opts.TimeStep
	if step <= 0 {
		step = loop.DefaultTimeStep
	}
	count := opts.Balls
	if count <= 0 {
		count = 5
	}

	termW, termH, err := sizeFn()
	if err != nil {
		return fmt.Errorf("terminal size: %w", err)
	}

	world := &World{
		loop:   loop.New().SetTimeStep(step),
		stream: input.StartStream(r),
		out:    w,
		canvas: draw.NewCanvas(termW, termH-1, logicalWidth, logicalHeight),
		size:   sizeFn,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		done:   make(chan struct{}),
	}
	for i := 0; i < count; i++ {
		world.spawn()
	}

	world.loop.
		SetBegin(world.begin).
		SetUpdate(world.update).
		SetRender(world.render).
		SetEnd(world.end)

	draw.HideCursor(w)
	defer draw.ShowCursor(w)
	defer draw.ClearScreen(w)

	if err := world.loop.Start(func() { draw.ClearScreen(w) }); err != nil {
		return err
	}

	<-world.done
	return nil
}

// spawn adds a ball with a random position and velocity.
func (w *World) spawn() {
	if len(w.balls) >= maxBalls {
		return
	}
	b := ball{
		pos: draw.Point{
			X: ballRadius + w.rng.Float64()*(logicalWidth-2*ballRadius),
			Y: ballRadius + w.rng.Float64()*(logicalHeight/2),
		},
		vel: draw.Point{
			X: (w.rng.Float64() - 0.5) * 80,
			Y: (w.rng.Float64() - 0.5) * 40,
		},
	}
	b.prev = b.pos
	w.balls = append(w.balls, b)
}

// begin samples input. Runs once per frame cycle, before any update.
func (w *World) begin() {
	in := w.stream.Poll()
	switch {
	case in.Quit:
		w.loop.Stop()
		w.quitting = true
	case in.Pause:
		w.paused = !w.paused
	case in.More:
		w.spawn()
	case in.Fewer:
		if len(w.balls) > 0 {
			w.balls = w.balls[:len(w.balls)-1]
		}
	}
}

// update advances the simulation by exactly one fixed step.
func (w *World) update(dt time.Duration) {
	if w.paused {
		return
	}
	secs := dt.Seconds()
	for i := range w.balls {
		b := &w.balls[i]
		b.prev = b.pos

		b.vel.Y += gravity * secs
		b.pos.X += b.vel.X * secs
		b.pos.Y += b.vel.Y * secs

		if b.pos.X < ballRadius {
			b.pos.X = ballRadius
			b.vel.X = -b.vel.X * bounceDamping
		} else if b.pos.X > logicalWidth-ballRadius {
			b.pos.X = logicalWidth - ballRadius
			b.vel.X = -b.vel.X * bounceDamping
		}
		if b.pos.Y < ballRadius {
			b.pos.Y = ballRadius
			b.vel.Y = -b.vel.Y * bounceDamping
		} else if b.pos.Y > logicalHeight-ballRadius {
			b.pos.Y = logicalHeight - ballRadius
			b.vel.Y = -b.vel.Y * bounceDamping
		}
	}
}

// render draws all balls extrapolated by alpha into the next step.
func (w *World) render(alpha float64) {
	if termW, termH, err := w.size(); err == nil {
		w.canvas.Resize(termW, termH-1)
	}

	draw.ClearScreen(w.out)
	w.canvas.Clear()

	for i := range w.balls {
		b := &w.balls[i]
		center := draw.Point{
			X: b.prev.X + (b.pos.X-b.prev.X)*alpha,
			Y: b.prev.Y + (b.pos.Y-b.prev.Y)*alpha,
		}
		w.canvas.DrawCircle(center, ballRadius)
	}

	w.canvas.Render(w.out)
}

// end draws the HUD on the reserved bottom row. Runs after render, where the
// loop's FPS and overload flag are up to date for this cycle.
func (w *World) end() {
	if w.quitting {
		// Final cycle: unblock Run after all output for this frame is done.
		close(w.done)
		return
	}

	_, termH := w.canvas.Size()

	status := fmt.Sprintf("balls: %d  fps: %d  [q]uit [space]pause [+/-]balls", len(w.balls), w.loop.FPS())
	if w.paused {
		status += "  PAUSED"
	}
	if w.loop.Panicking() {
		status += "  OVERLOADED"
	}
	draw.WriteAt(w.out, 1, termH+1, "\033[K"+status)
}
