// Package input delivers keyboard input without blocking the frame cycle.
package input

import "bufio"

// Input is the set of demo actions pressed since the previous poll.
type Input struct {
	Quit    bool // q, Esc or Ctrl-C
	Pause   bool // space
	More    bool // + (add a ball)
	Fewer   bool // - (remove a ball)
	Stopped bool // input source closed (e.g. session ended)
}

// Stream reads bytes from a reader on its own goroutine and buffers them for
// non-blocking per-frame polling.
type Stream struct {
	ch chan byte
}

// StartStream spawns a goroutine that feeds bytes from r into the stream.
// The stream reports Stopped once r fails (EOF, closed session).
func StartStream(r *bufio.Reader) *Stream {
	s := &Stream{ch: make(chan byte, 128)}
	go func() {
		for {
			b, err := r.ReadByte()
			if err != nil {
				close(s.ch)
				return
			}
			s.ch <- b
		}
	}()
	return s
}

// Poll drains all buffered bytes and maps them to demo actions. It never
// blocks, so it is safe to call from the loop's Begin hook.
func (s *Stream) Poll() Input {
	var in Input
	for {
		select {
		case b, ok := <-s.ch:
			if !ok {
				in.Stopped = true
				in.Quit = true
				return in
			}
			switch b {
			case 'q', 'Q', '\x1b', '\x03':
				in.Quit = true
			case ' ':
				in.Pause = true
			case '+', '=':
				in.More = true
			case '-', '_':
				in.Fewer = true
			}
		default:
			return in
		}
	}
}
