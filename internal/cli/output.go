// Package cli renders capability results for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"rama/internal/research"
)

// ANSI Color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
	ColorBold   = "\033[1m"
)

// Writer prints payloads to out and status lines to status.
// Payloads are always plain JSON so they can be piped.
type Writer struct {
	out       io.Writer
	status    io.Writer
	colorMode bool
	verbose   bool
}

func NewWriter(out, status io.Writer) *Writer {
	if out == nil {
		out = os.Stdout
	}
	if status == nil {
		status = os.Stderr
	}
	return &Writer{
		out:       out,
		status:    status,
		colorMode: true,
	}
}

func (w *Writer) SetColorMode(enabled bool) {
	w.colorMode = enabled
}

func (w *Writer) SetVerbose(enabled bool) {
	w.verbose = enabled
}

// WriteColored writes colored content to the status stream if color mode is enabled
func (w *Writer) WriteColored(content, color string) {
	if w.colorMode {
		fmt.Fprintf(w.status, "%s%s%s", color, content, ColorReset)
	} else {
		fmt.Fprint(w.status, content)
	}
}

// Status writes a line to the status stream
func (w *Writer) Status(format string, args ...any) {
	fmt.Fprintf(w.status, format+"\n", args...)
}

// Error writes an error line to the status stream
func (w *Writer) Error(err error) {
	w.WriteColored("error: ", ColorRed+ColorBold)
	fmt.Fprintln(w.status, err)
}

// Banner describes where a result came from
func (w *Writer) Banner(r *research.Result) {
	if r.Live() {
		w.WriteColored("● live", ColorGreen)
	} else {
		w.WriteColored("● fallback", ColorYellow)
	}
	fmt.Fprintf(w.status, " %s", r.Capability)

	if w.verbose {
		w.WriteColored(fmt.Sprintf(" (%s, call %s)", r.Duration.Round(time.Millisecond), r.CallID), ColorGray)
	}
	if r.Reason != nil {
		w.WriteColored(fmt.Sprintf(" %v", r.Reason), ColorGray)
	}
	fmt.Fprintln(w.status)
}

// Result prints the banner and then the payload as indented JSON
func (w *Writer) Result(r *research.Result) error {
	w.Banner(r)
	return w.JSON(r.Data)
}

// JSON prints v as indented JSON on the output stream
func (w *Writer) JSON(v any) error {
	enc := json.NewEncoder(w.out)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
