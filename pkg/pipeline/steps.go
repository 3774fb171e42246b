package pipeline

import (
	"path/filepath"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/repos"
)

// skipMain masks the whole main-project sub-path: the main clone,
// hook installation, database creation and dump download. Skipped
// steps emit no warning.
func skipMain(ctx *Context) bool {
	return ctx.Config.SkipMain
}

// DefaultSteps is the fixed provisioning sequence. Predecessor
// constraints are declared on each step and validated at startup:
// identity precedes cloning (clones embed identity), dotfiles precede
// profile-dependent steps, all cloning precedes anything running
// inside a checkout, cloud/auth precedes dependency install, and
// dependency install precedes hooks, auth-tool, databases and dump.
func DefaultSteps() []Step {
	return []Step{
		{
			Name: "prerequisites",
			Run:  runPrerequisites,
		},
		{
			Name:  "identity",
			After: []string{"prerequisites"},
			Run:   runIdentity,
		},
		{
			Name:  "dotfiles",
			After: []string{"prerequisites"},
			Run:   runDotfiles,
		},
		{
			Name:  "clone-bootstrap",
			After: []string{"identity"},
			Run:   runCloneBootstrap,
		},
		{
			Name:  "clone-repos",
			After: []string{"identity", "clone-bootstrap"},
			Run:   runCloneRepos,
		},
		{
			Name:  "clone-main",
			After: []string{"identity", "clone-bootstrap"},
			Skip:  skipMain,
			Run:   runCloneMain,
		},
		{
			Name:  "cloud-auth",
			After: []string{"clone-main"},
			Run:   runCloudAuth,
		},
		{
			Name:  "install-deps",
			After: []string{"cloud-auth"},
			Run:   runInstallDeps,
		},
		{
			Name:  "install-hooks",
			After: []string{"install-deps"},
			Skip:  skipMain,
			Run:   runInstallHooks,
		},
		{
			Name:  "auth-tool",
			After: []string{"install-deps"},
			Run:   runAuthTool,
		},
		{
			Name:  "create-databases",
			After: []string{"install-deps"},
			Skip:  skipMain,
			Run:   runCreateDatabases,
		},
		{
			Name:  "fetch-dump",
			After: []string{"install-deps"},
			Skip:  skipMain,
			Run:   runFetchDump,
		},
	}
}

// runPrerequisites probes for git and installs the declared system
// packages and toolchains. Everything downstream assumes these exist.
func runPrerequisites(ctx *Context) error {
	if err := ctx.Prober.Probe(ctx, "git"); err != nil {
		return errors.Wrap(err, errors.ErrToolMissing, "git is required")
	}

	if len(ctx.Config.Packages) > 0 {
		if err := ctx.Packages.Install(ctx, ctx.Config.Packages...); err != nil {
			return errors.Wrap(err, errors.ErrStepFailed, "package installation failed")
		}
	}

	for _, tc := range ctx.Config.Toolchains {
		if err := ctx.Toolchains.EnsureToolchain(ctx, tc.Name, tc.Version); err != nil {
			return errors.Wrapf(err, errors.ErrStepFailed, "failed to install %s %s", tc.Name, tc.Version)
		}
	}
	return nil
}

func runIdentity(ctx *Context) error {
	id, err := ctx.Resolver.Resolve(ctx)
	if err != nil {
		return err
	}
	ctx.Identity = id
	return nil
}

func runDotfiles(ctx *Context) error {
	_, err := ctx.Dotfiles.Install(ctx.Config.Dotfiles)
	return err
}

func runCloneBootstrap(ctx *Context) error {
	bootstrap, ok := ctx.Config.BootstrapRepo()
	if !ok {
		return nil
	}
	cloned, err := ctx.Cloner.Ensure(ctx, bootstrap, ctx.Identity)
	if err != nil {
		return err
	}
	if !cloned {
		return nil
	}
	// The tool's own checkout was plain-cloned before the tool
	// existed; inject its identity metadata in place. A pre-existing
	// checkout was repaired by the run that cloned it.
	return ctx.Cloner.RepairBootstrap(ctx, bootstrap, ctx.Identity)
}

// runCloneRepos clones every injected repository except the main
// project, which has its own toggled step.
func runCloneRepos(ctx *Context) error {
	for _, spec := range ctx.Config.Repos {
		if spec.Mode != repos.ModeInjected || spec.Main {
			continue
		}
		if _, err := ctx.Cloner.Ensure(ctx, spec, ctx.Identity); err != nil {
			return err
		}
	}
	return nil
}

func runCloneMain(ctx *Context) error {
	main, ok := ctx.Config.MainRepo()
	if !ok {
		return nil
	}
	_, err := ctx.Cloner.Ensure(ctx, main, ctx.Identity)
	return err
}

func runCloudAuth(ctx *Context) error {
	if err := ctx.Cloud.Setup(ctx); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "cloud auth setup failed")
	}
	return nil
}

// depsDir is where dependency installation runs: the main checkout
// normally, the tool checkout when the main sub-path is toggled off.
func depsDir(ctx *Context) string {
	if !ctx.Config.SkipMain {
		if main, ok := ctx.Config.MainRepo(); ok {
			return ctx.Cloner.Dest(main)
		}
	}
	if bootstrap, ok := ctx.Config.BootstrapRepo(); ok {
		return ctx.Cloner.Dest(bootstrap)
	}
	return ctx.Config.TargetRoot
}

func runInstallDeps(ctx *Context) error {
	if err := ctx.Build.InstallDeps(ctx, depsDir(ctx)); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "dependency installation failed")
	}
	return nil
}

func runInstallHooks(ctx *Context) error {
	main, ok := ctx.Config.MainRepo()
	if !ok {
		return nil
	}
	if err := ctx.Build.InstallHooks(ctx, ctx.Cloner.Dest(main)); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "hook installation failed")
	}
	return nil
}

// runAuthTool configures the organization auth helper shipped with
// the bootstrapped tool checkout.
func runAuthTool(ctx *Context) error {
	bootstrap, ok := ctx.Config.BootstrapRepo()
	if !ok {
		return nil
	}
	toolBin := filepath.Join(ctx.Cloner.Dest(bootstrap), toolBinRelPath)
	if err := ctx.Git.RunTool(ctx, toolBin, "auth-setup"); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "auth tool setup failed")
	}
	return nil
}

func runCreateDatabases(ctx *Context) error {
	main, ok := ctx.Config.MainRepo()
	if !ok {
		return nil
	}
	if err := ctx.Build.CreateDatabases(ctx, ctx.Cloner.Dest(main)); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "database creation failed")
	}
	return nil
}

func runFetchDump(ctx *Context) error {
	main, ok := ctx.Config.MainRepo()
	if !ok {
		return nil
	}
	if err := ctx.Build.FetchDump(ctx, ctx.Cloner.Dest(main)); err != nil {
		return errors.Wrap(err, errors.ErrStepFailed, "data dump download failed")
	}
	return nil
}
