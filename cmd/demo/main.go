package main

import (
	"bufio"
	"fmt"
	"os"

	"golang.org/x/term"

	"github.com/tomz197/mainloop/internal/config"
	"github.com/tomz197/mainloop/internal/game"
	"github.com/tomz197/mainloop/loop"
)

func main() {
	step := config.GetEnvDuration("LOOP_TIME_STEP", loop.DefaultTimeStep)
	balls := config.GetEnvInt("LOOP_BALLS", 5)

	fd := int(os.Stdin.Fd())
	oldState, err := term.MakeRaw(fd)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to enable raw mode: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = term.Restore(fd, oldState)
	}()

	reader := bufio.NewReader(os.Stdin)
	opts := game.Options{
		TimeStep: step,
		Balls:    balls,
	}
	if err := game.Run(reader, os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "demo error: %v\n", err)
		os.Exit(1)
	}
}
