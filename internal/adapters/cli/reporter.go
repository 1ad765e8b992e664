// Package cli provides thin CLI adapters that translate between CLI concerns
// and application services. Adapters handle output formatting but delegate
// business logic to services.
package cli

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"github.com/example/putzplan/internal/ports/secondary"
)

// ConsoleReporter writes progress lines with status markers.
type ConsoleReporter struct {
	out     io.Writer
	success *color.Color
	warn    *color.Color
	fail    *color.Color
}

// NewConsoleReporter creates a reporter writing to out.
func NewConsoleReporter(out io.Writer, noColor bool) *ConsoleReporter {
	r := &ConsoleReporter{
		out:     out,
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed),
	}
	if noColor {
		r.success.DisableColor()
		r.warn.DisableColor()
		r.fail.DisableColor()
	}
	return r
}

func (r *ConsoleReporter) Info(format string, args ...any) {
	fmt.Fprintf(r.out, "  %s\n", fmt.Sprintf(format, args...))
}

func (r *ConsoleReporter) Success(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.success.Sprint("✓"), fmt.Sprintf(format, args...))
}

func (r *ConsoleReporter) Warn(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.warn.Sprint("⚠"), fmt.Sprintf(format, args...))
}

func (r *ConsoleReporter) Error(format string, args ...any) {
	fmt.Fprintf(r.out, "%s %s\n", r.fail.Sprint("✗"), fmt.Sprintf(format, args...))
}

// Ensure ConsoleReporter implements the interface
var _ secondary.Reporter = (*ConsoleReporter)(nil)
