package pipeline

import (
	"context"
	"io"
	"path/filepath"

	"github.com/devup-sh/devup/pkg/config"
	"github.com/devup-sh/devup/pkg/dotfiles"
	"github.com/devup-sh/devup/pkg/filesystem"
	"github.com/devup-sh/devup/pkg/guard"
	"github.com/devup-sh/devup/pkg/identity"
	"github.com/devup-sh/devup/pkg/installer"
	"github.com/devup-sh/devup/pkg/report"
	"github.com/devup-sh/devup/pkg/repos"
)

// Deps are the external collaborators and IO the pipeline consumes.
// Production wiring uses the exec-backed implementations; tests
// substitute stubs.
type Deps struct {
	FS         filesystem.FS
	Git        installer.Git
	Prober     installer.Prober
	Packages   installer.PackageInstaller
	Toolchains installer.ToolchainInstaller
	Cloud      installer.CloudAuth
	Build      installer.BuildSystem
	Out        io.Writer

	// Prompt overrides the interactive identity prompt. Nil means the
	// terminal form.
	Prompt identity.PromptFunc
}

// Context carries the configuration, shared state, and wired
// components through every step. It is built once per run; the
// Identity field is populated by the identity step and reused by
// every later step.
type Context struct {
	context.Context

	Config    *config.Config
	Collector *report.Collector
	Identity  identity.Identity

	FS       filesystem.FS
	Guard    *guard.Guard
	Resolver *identity.Resolver
	Dotfiles *dotfiles.Installer
	Cloner   *repos.Cloner

	Prober     installer.Prober
	Packages   installer.PackageInstaller
	Toolchains installer.ToolchainInstaller
	Cloud      installer.CloudAuth
	Build      installer.BuildSystem
	Git        installer.Git
}

// toolBinRelPath is where the identity-injecting clone tool lands
// inside its bootstrap checkout.
const toolBinRelPath = "bin/devup-clone"

// NewContext wires the components for one run.
func NewContext(ctx context.Context, cfg *config.Config, deps Deps) *Context {
	g := guard.New(deps.FS)
	collector := report.NewCollector(deps.Out)

	toolBin := ""
	if bootstrap, ok := cfg.BootstrapRepo(); ok {
		toolBin = filepath.Join(cfg.TargetRoot, bootstrap.Dest, toolBinRelPath)
	}

	resolver := identity.NewResolver(deps.Git)
	if deps.Prompt != nil {
		resolver = identity.NewResolverWithPrompt(deps.Git, deps.Prompt)
	}

	return &Context{
		Context:    ctx,
		Config:     cfg,
		Collector:  collector,
		FS:         deps.FS,
		Guard:      g,
		Resolver:   resolver,
		Dotfiles:   dotfiles.NewInstaller(deps.FS, g, collector, cfg.SourceRoot, cfg.TargetRoot),
		Cloner:     repos.NewCloner(deps.FS, g, deps.Git, collector, cfg.TargetRoot, toolBin),
		Prober:     deps.Prober,
		Packages:   deps.Packages,
		Toolchains: deps.Toolchains,
		Cloud:      deps.Cloud,
		Build:      deps.Build,
		Git:        deps.Git,
	}
}
