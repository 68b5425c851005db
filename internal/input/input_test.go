package input

import (
	"bufio"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// waitPoll polls until the reader goroutine has delivered something or the
// deadline passes. The stream is fed asynchronously, so a bare Poll right
// after StartStream can legitimately see nothing yet.
func waitPoll(t *testing.T, s *Stream, deadline time.Duration) Input {
	t.Helper()
	var in Input
	end := time.Now().Add(deadline)
	for time.Now().Before(end) {
		in = s.Poll()
		if in != (Input{}) {
			return in
		}
		time.Sleep(time.Millisecond)
	}
	return in
}

func TestPollMapsKeys(t *testing.T) {
	cases := []struct {
		name string
		keys string
		want Input
	}{
		{"quit letter", "q", Input{Quit: true}},
		{"quit ctrl-c", "\x03", Input{Quit: true}},
		{"pause", " ", Input{Pause: true}},
		{"more", "+", Input{More: true}},
		{"fewer", "-", Input{Fewer: true}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			// Pipe keeps the reader goroutine blocked (no EOF) after the keys.
			pr, pw := io.Pipe()
			defer pw.Close()
			go pw.Write([]byte(tc.keys))

			s := StartStream(bufio.NewReader(pr))
			assert.Equal(t, tc.want, waitPoll(t, s, time.Second))
		})
	}
}

func TestPollReportsClosedSource(t *testing.T) {
	s := StartStream(bufio.NewReader(strings.NewReader("")))

	in := waitPoll(t, s, time.Second)
	assert.True(t, in.Stopped)
	assert.True(t, in.Quit, "a dead input source must quit the demo")
}

func TestPollNeverBlocks(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	s := StartStream(bufio.NewReader(pr))

	done := make(chan Input, 1)
	go func() { done <- s.Poll() }()

	select {
	case in := <-done:
		assert.Equal(t, Input{}, in)
	case <-time.After(time.Second):
		t.Fatal("Poll blocked with no input available")
	}
}
