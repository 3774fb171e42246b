package report

import (
	"fmt"
	"io"

	"github.com/devup-sh/devup/pkg/logging"
)

// Collector accumulates non-fatal diagnostics during a run. Warnings
// are append-only and ordered; they never halt execution and are
// echoed together at the end of a successful run.
type Collector struct {
	out      io.Writer
	warnings []string
}

// NewCollector creates a collector writing its summary to out.
func NewCollector(out io.Writer) *Collector {
	return &Collector{out: out}
}

// Warn records a non-fatal diagnostic. The run continues.
func (c *Collector) Warn(msg string) {
	logger := logging.GetLogger("report")
	logger.Warn().Msg(msg)
	c.warnings = append(c.warnings, msg)
}

// Warnf records a formatted non-fatal diagnostic.
func (c *Collector) Warnf(format string, args ...interface{}) {
	c.Warn(fmt.Sprintf(format, args...))
}

// Warnings returns the recorded warnings in insertion order.
func (c *Collector) Warnings() []string {
	return c.warnings
}

// HasWarnings reports whether anything was recorded.
func (c *Collector) HasWarnings() bool {
	return len(c.warnings) > 0
}

// Summary prints the accumulated warnings, once, at normal completion.
// Prints nothing when the run was clean.
func (c *Collector) Summary() {
	if len(c.warnings) == 0 {
		return
	}

	fmt.Fprintln(c.out)
	fmt.Fprintln(c.out, formatBold(fmt.Sprintf("%d warning(s) during setup:", len(c.warnings))))
	for _, w := range c.warnings {
		fmt.Fprintln(c.out, styled(warningStyle, "  - "+w))
	}
}

// Success prints the completion marker followed by the warning
// summary. Call only after the completion handler has been disarmed.
func (c *Collector) Success() {
	fmt.Fprintln(c.out, styled(successStyle, "Workstation setup complete."))
	c.Summary()
}

// Fatal prints the single causing message for an aborted run.
func Fatal(w io.Writer, err error) {
	fmt.Fprintln(w, styled(fatalStyle, "setup failed: "+err.Error()))
}

// Fatal prints the causing message to the collector's writer.
func (c *Collector) Fatal(err error) {
	Fatal(c.out, err)
}
