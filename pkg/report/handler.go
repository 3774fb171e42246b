package report

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/devup-sh/devup/pkg/logging"
)

// incompleteNotice is what the operator sees whenever a run leaves the
// pipeline without reaching full completion. It reports; it never
// repairs. Re-running converges via the idempotency guard.
const incompleteNotice = "Setup did not run to completion. It is safe to re-run; completed work is skipped."

// Handler is the scoped completion handler installed at process start.
// It guarantees an "incomplete run" notice on every exit path that did
// not disarm it first, including paths the orchestrator's own error
// handling never anticipated.
type Handler struct {
	out     io.Writer
	armed   atomic.Bool
	sigs    chan os.Signal
	done    chan struct{}
	exit    func(int)
	onceFin atomic.Bool
}

// NewHandler creates a completion handler writing to out.
func NewHandler(out io.Writer) *Handler {
	return &Handler{out: out, exit: os.Exit}
}

// Arm installs the handler. From this point until disarm, any exit
// (fatal error, panic unwinding through Finish, or operator interrupt)
// surfaces the incomplete-run notice. Returns the disarm function;
// call it immediately before printing the final success message.
func (h *Handler) Arm() (disarm func()) {
	logger := logging.GetLogger("report.handler")
	h.armed.Store(true)

	h.sigs = make(chan os.Signal, 1)
	h.done = make(chan struct{})
	signal.Notify(h.sigs, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-h.sigs:
			logger.Warn().Str("signal", sig.String()).Msg("interrupted")
			h.notice()
			// Conventional exit status for signal termination.
			h.exit(130)
		case <-h.done:
		}
	}()

	return func() {
		if h.armed.CompareAndSwap(true, false) {
			signal.Stop(h.sigs)
			close(h.done)
		}
	}
}

// Finish fires the notice if the handler is still armed. Meant to run
// in a defer wrapping the whole pipeline call, so it observes every
// non-interrupt exit path.
func (h *Handler) Finish() {
	if h.armed.Load() {
		h.notice()
	}
}

// Armed reports whether the handler would still fire.
func (h *Handler) Armed() bool {
	return h.armed.Load()
}

func (h *Handler) notice() {
	// The notice prints at most once even if both the signal path and
	// the deferred path observe an armed handler.
	if h.onceFin.CompareAndSwap(false, true) {
		fmt.Fprintln(h.out)
		fmt.Fprintln(h.out, styled(warningStyle, incompleteNotice))
	}
}
