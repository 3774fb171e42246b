package main

// Message constants
const (
	MsgRootShort = "Provision a developer workstation"
	MsgRootLong  = `devup provisions a workstation for contributing to the organization's
codebase: it installs system packages and toolchains, clones the
declared repositories with your identity injected, materializes your
dotfiles, and bootstraps auxiliary services.

Every step is idempotent: re-running devup after a failure or an
interrupt converges to the same end state and never overwrites your
own edits.`

	MsgUpShort = "Run the provisioning pipeline"
	MsgUpLong  = `Runs the full provisioning sequence: prerequisites, identity,
dotfiles, repository clones, cloud auth, dependency install, hooks,
databases and data dump.

Safe to re-run at any time. Warnings accumulate and print together at
the end; a fatal condition aborts immediately with a single message.`

	MsgUpExample = `  # Provision this machine
  devup up

  # Provision without the main project (clone, hooks, databases, dump)
  devup up --skip-main

  # Provision into a different root (mainly for testing)
  devup up --root /tmp/sandbox-home`

	MsgTopicsShort = "Show help topics"
	MsgTopicsLong  = `Show long-form documentation topics rendered in the terminal.
Run without arguments to list available topics.`
)
