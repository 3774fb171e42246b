// Package pipeline sequences the named provisioning steps. Execution
// is strictly single-threaded: every step blocks until its external
// collaborators return. A step error halts the run immediately; step
// warnings flow to the collector and the run continues. There is no
// rollback anywhere: resumption after failure relies on re-invocation
// plus the idempotency guard converging to the same end state.
package pipeline

import (
	"time"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/logging"
)

// Step is one named unit of the provisioning sequence. After lists
// the names of steps that must have run earlier; the small fixed step
// count makes an explicit declared list sufficient, no scheduler.
type Step struct {
	Name  string
	After []string
	Skip  func(*Context) bool
	Run   func(*Context) error
}

// Validate checks that every declared predecessor exists and precedes
// its dependent. Run calls it before executing anything.
func Validate(steps []Step) error {
	seen := make(map[string]bool, len(steps))
	for _, s := range steps {
		if s.Name == "" {
			return errors.New(errors.ErrInternal, "step with empty name")
		}
		if seen[s.Name] {
			return errors.Newf(errors.ErrInternal, "duplicate step %q", s.Name)
		}
		for _, dep := range s.After {
			if !seen[dep] {
				return errors.Newf(errors.ErrInternal,
					"step %q declares predecessor %q which does not precede it", s.Name, dep)
			}
		}
		seen[s.Name] = true
	}
	return nil
}

// Run executes the steps in order. Skipped steps emit no warning. On
// error the remaining steps never run and the error propagates to the
// caller, which owns exit reporting.
func Run(ctx *Context, steps []Step) error {
	logger := logging.GetLogger("pipeline")

	if err := Validate(steps); err != nil {
		return err
	}

	start := time.Now()
	for i, step := range steps {
		if step.Skip != nil && step.Skip(ctx) {
			logger.Debug().
				Str("step", step.Name).
				Msg("step skipped by configuration")
			continue
		}

		stepStart := time.Now()
		logger.Info().
			Str("step", step.Name).
			Int("index", i+1).
			Int("total", len(steps)).
			Msg("step starting")

		if err := step.Run(ctx); err != nil {
			logger.Error().
				Str("step", step.Name).
				Err(err).
				Msg("step failed")
			return err
		}

		logger.Info().
			Str("step", step.Name).
			Dur("duration", time.Since(stepStart)).
			Msg("step completed")
	}

	logger.Info().
		Dur("duration", time.Since(start)).
		Int("warnings", len(ctx.Collector.Warnings())).
		Msg("all steps completed")
	return nil
}
