// Package repos ensures the declared set of repositories exists
// locally. A plain bootstrap clone obtains the identity-injecting
// clone tool; every other repository is cloned through that tool with
// the cached operator identity, so local configuration and hooks are
// set consistently. A destination directory that already exists is
// never cloned again.
package repos

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/guard"
	"github.com/devup-sh/devup/pkg/identity"
	"github.com/devup-sh/devup/pkg/installer"
	"github.com/devup-sh/devup/pkg/logging"
	"github.com/devup-sh/devup/pkg/report"
)

// Mode selects how a repository is obtained.
type Mode string

const (
	// ModeBootstrap is a plain clone with recursive submodules, used
	// solely to obtain the identity-injecting tool before it exists.
	ModeBootstrap Mode = "bootstrap"
	// ModeInjected clones through the bootstrapped tool, embedding the
	// cached identity.
	ModeInjected Mode = "injected"
)

// Spec declares one repository.
type Spec struct {
	Name         string `koanf:"name"`
	URL          string `koanf:"url"`
	Dest         string `koanf:"dest"`
	Mode         Mode   `koanf:"mode"`
	Mandatory    bool   `koanf:"mandatory"`
	RequiresAuth bool   `koanf:"requires_auth"`
	Main         bool   `koanf:"main"`
}

// Cloner ensures declared repositories exist locally.
type Cloner struct {
	fs         filesystem.FS
	guard      *guard.Guard
	git        installer.Git
	collector  *report.Collector
	targetRoot string
	// toolBin is the identity-injecting clone tool, relative to the
	// bootstrap checkout.
	toolBin string
}

// NewCloner creates a cloner rooted at targetRoot. toolBin is the
// path of the injection tool binary inside its bootstrap checkout.
func NewCloner(fsys filesystem.FS, g *guard.Guard, git installer.Git, c *report.Collector, targetRoot, toolBin string) *Cloner {
	return &Cloner{
		fs:         fsys,
		guard:      g,
		git:        git,
		collector:  c,
		targetRoot: targetRoot,
		toolBin:    toolBin,
	}
}

// Dest resolves a spec's destination under the target root.
func (c *Cloner) Dest(spec Spec) string {
	return filepath.Join(c.targetRoot, spec.Dest)
}

// Ensure makes the repository present. An existing destination
// directory means zero network calls. The returned bool reports
// whether a clone actually happened, so follow-up work tied to a fresh
// checkout can be skipped on re-runs. Clone failure on a mandatory
// repository is fatal, distinguishing not-found from access-denied;
// failure on an optional one is recorded as a warning.
func (c *Cloner) Ensure(ctx context.Context, spec Spec, id identity.Identity) (bool, error) {
	logger := logging.GetLogger("repos")
	dest := c.Dest(spec)

	decision, err := c.guard.CheckRepoDir(dest)
	if err != nil {
		return false, err
	}
	switch decision {
	case guard.Satisfied:
		logger.Debug().Str("repo", spec.Name).Str("dest", dest).Msg("already cloned")
		return false, nil
	case guard.Conflict:
		return false, errors.Newf(errors.ErrInvalidInput,
			"%s exists but is not a directory; move it aside and re-run", dest)
	}

	if err := c.fs.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return false, errors.Wrapf(err, errors.ErrDirCreate, "failed to create parent directory for %s", dest)
	}

	logger.Info().Str("repo", spec.Name).Str("url", spec.URL).Str("mode", string(spec.Mode)).Msg("cloning")

	var cloneErr error
	switch spec.Mode {
	case ModeBootstrap:
		cloneErr = c.git.Clone(ctx, spec.URL, dest, true)
	case ModeInjected:
		cloneErr = c.git.RunTool(ctx, c.toolBin,
			"clone", spec.URL, dest, "--name", id.Name, "--email", id.Email)
	default:
		return false, errors.Newf(errors.ErrInvalidInput, "unknown clone mode %q for %s", spec.Mode, spec.Name)
	}

	if cloneErr == nil {
		return true, nil
	}

	if !spec.Mandatory {
		c.collector.Warnf("could not clone optional repository %s: %v", spec.Name, cloneErr)
		return false, nil
	}
	return false, classifyCloneError(spec, cloneErr)
}

// RepairBootstrap re-runs the injection tool against the tool's own
// already-present plain clone, resolving the self-reference cycle:
// the checkout that provides the tool was cloned before the tool
// existed, so its identity metadata is injected in place afterwards.
func (c *Cloner) RepairBootstrap(ctx context.Context, spec Spec, id identity.Identity) error {
	logger := logging.GetLogger("repos")
	dest := c.Dest(spec)

	logger.Info().Str("repo", spec.Name).Msg("repairing bootstrap clone in place")
	err := c.git.RunTool(ctx, c.toolBin,
		"repair", dest, "--name", id.Name, "--email", id.Email)
	if err != nil {
		return errors.Wrapf(err, errors.ErrStepFailed, "failed to repair bootstrap clone %s", spec.Name)
	}
	return nil
}

// classifyCloneError distinguishes a missing repository from denied
// access in a mandatory clone failure, so the operator knows whether
// to fix the URL or their credentials.
func classifyCloneError(spec Spec, err error) error {
	msg := strings.ToLower(err.Error())

	switch {
	case strings.Contains(msg, "not found") || strings.Contains(msg, "does not exist"):
		return errors.Wrapf(err, errors.ErrCloneNotFound,
			"repository not found: %s", spec.URL)
	case strings.Contains(msg, "permission denied") ||
		strings.Contains(msg, "access denied") ||
		strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "could not read username") ||
		strings.Contains(msg, "403"):
		return errors.Wrapf(err, errors.ErrCloneAuth,
			"access denied cloning %s; check your credentials and organization membership", spec.URL)
	default:
		return errors.Wrapf(err, errors.ErrStepFailed,
			"failed to clone mandatory repository %s", spec.Name)
	}
}
