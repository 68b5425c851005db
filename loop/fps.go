package loop

import "time"

// fpsWindow is the sampling window for the frame rate estimate.
const fpsWindow = time.Second

// fpsSampler counts completed frame cycles per wall-clock second.
//
// The snapshot is taken before the boundary-crossing frame is counted, so a
// window that saw N callbacks reports N-1. The error is at most one frame
// per second; callers wanting an exact rate should time a window themselves.
type fpsSampler struct {
	frames  int           // frames seen in the current window
	elapsed time.Duration // time accumulated in the current window
	fps     int           // last completed window's frame count
}

// sample records one completed frame cycle that took elapsed wall time.
func (s *fpsSampler) sample(elapsed time.Duration) {
	s.elapsed += elapsed
	if s.elapsed >= fpsWindow {
		s.fps = s.frames
		s.frames = 0
		s.elapsed = 0
	} else {
		s.frames++
	}
}
