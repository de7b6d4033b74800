// Package ui provides terminal UI helpers: spinners, streamed chat output
// and tabular rendering of API resources.
package ui

import (
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"golang.org/x/term"
)

// Spinner wraps a terminal spinner for requests in flight. On a non-terminal
// stderr it stays silent and only the final status line is printed.
type Spinner struct {
	s       *spinner.Spinner
	out     io.Writer
	enabled bool
	running bool
}

// NewSpinner creates a spinner with the given message.
func NewSpinner(msg string) *Spinner {
	s := spinner.New(spinner.CharSets[14], 80*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = "  " + msg
	_ = s.Color("cyan")
	return &Spinner{
		s:       s,
		out:     os.Stderr,
		enabled: term.IsTerminal(int(os.Stderr.Fd())),
	}
}

// Start begins the spinner animation.
func (sp *Spinner) Start() {
	if !sp.enabled || sp.running {
		return
	}
	sp.s.Start()
	sp.running = true
}

// Stop halts the spinner and clears the line. Safe to call twice.
func (sp *Spinner) Stop() {
	if !sp.running {
		return
	}
	sp.s.Stop()
	sp.running = false
}

// Success stops the spinner and prints a green check.
func (sp *Spinner) Success(msg string) {
	sp.Stop()
	color.New(color.FgGreen).Fprintf(sp.out, "  ✓ %s\n", msg)
}

// Fail stops the spinner and prints a red cross.
func (sp *Spinner) Fail(msg string) {
	sp.Stop()
	color.New(color.FgRed).Fprintf(sp.out, "  ✗ %s\n", msg)
}
