package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// Display shows a spinner with a suffix message while a long-running
// operation is in flight. On non-TTY output it degrades to plain one-line
// status messages so logs stay readable.
type Display struct {
	caps    TerminalCapabilities
	symbols ProgressSymbols
	out     io.Writer
	spin    *spinner.Spinner
}

// NewDisplay creates a Display writing to out with the given capabilities.
func NewDisplay(out io.Writer, caps TerminalCapabilities) *Display {
	return &Display{
		caps:    caps,
		symbols: SelectSymbols(caps),
		out:     out,
	}
}

// Start begins displaying the spinner with the given message.
func (d *Display) Start(message string) {
	if !d.caps.IsTTY {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}

	d.spin = spinner.New(spinner.CharSets[d.symbols.SpinnerSet], 100*time.Millisecond, spinner.WithWriter(d.out))
	d.spin.Suffix = " " + message
	d.spin.Start()
}

// Update changes the message without restarting the spinner.
func (d *Display) Update(message string) {
	if d.spin == nil {
		fmt.Fprintf(d.out, "%s...\n", message)
		return
	}
	d.spin.Suffix = " " + message
}

// Succeed stops the spinner and prints a success line.
func (d *Display) Succeed(message string) {
	d.stop()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Checkmark, message)
}

// Fail stops the spinner and prints a failure line.
func (d *Display) Fail(message string) {
	d.stop()
	fmt.Fprintf(d.out, "%s %s\n", d.symbols.Failure, message)
}

// Stop halts the spinner without a completion line.
func (d *Display) Stop() {
	d.stop()
}

func (d *Display) stop() {
	if d.spin != nil {
		d.spin.Stop()
		d.spin = nil
	}
}
