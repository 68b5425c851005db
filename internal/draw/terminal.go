package draw

import (
	"fmt"
	"io"
	"os"

	"golang.org/x/term"
)

// TermSizeFunc returns terminal dimensions. Indirection lets an SSH session
// report its PTY size instead of the local terminal.
type TermSizeFunc func() (width, height int, err error)

// StdoutSize is the default TermSizeFunc, reading the size of os.Stdout.
var StdoutSize TermSizeFunc = func() (int, int, error) {
	return term.GetSize(int(os.Stdout.Fd()))
}

// ClearScreen clears the terminal and moves the cursor to the top-left.
func ClearScreen(w io.Writer) {
	fmt.Fprint(w, "\033[H\033[2J")
}

// HideCursor hides the terminal cursor.
func HideCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25l")
}

// ShowCursor shows the terminal cursor.
func ShowCursor(w io.Writer) {
	fmt.Fprint(w, "\033[?25h")
}

// WriteAt writes a string at a 1-based terminal position.
func WriteAt(w io.Writer, col, row int, s string) {
	fmt.Fprintf(w, "\033[%d;%dH%s", row, col, s)
}
