package speech

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Listener reads utterances. Microphone capture lives outside the core;
// this implementation is the keyboard fallback the original always carries.
type Listener struct {
	scanner *bufio.Scanner
	out     io.Writer
}

// NewListener reads lines from r, prompting on w.
func NewListener(r io.Reader, w io.Writer) *Listener {
	return &Listener{scanner: bufio.NewScanner(r), out: w}
}

// Next blocks for one utterance. End of input reads as an exit command so
// Ctrl-D shuts the loop down cleanly.
func (l *Listener) Next() (string, error) {
	fmt.Fprint(l.out, "you> ")
	if !l.scanner.Scan() {
		if err := l.scanner.Err(); err != nil {
			return "", fmt.Errorf("read input: %w", err)
		}
		return "exit", nil
	}
	return strings.TrimSpace(l.scanner.Text()), nil
}
