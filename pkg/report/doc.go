// Package report owns everything the operator sees at the end of a
// run: the append-only warning log printed at normal completion, the
// fatal banner, and the armed completion notice that fires on every
// exit path (normal, fatal, interrupted) unless disarmed immediately
// before the final success message.
package report
