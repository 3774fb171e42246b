package installer

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/devup-sh/devup/pkg/logging"
)

// Runner executes external commands and folds their output into the
// returned error, so callers get a failure-with-message without ever
// touching the collaborator's internals.
type Runner struct{}

// NewRunner creates a command runner.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes name with args, returning combined output. On failure
// the output is folded into the error message.
func (r *Runner) Run(ctx context.Context, name string, args ...string) (string, error) {
	logging.LogCommand(name, args)

	cmd := exec.CommandContext(ctx, name, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return string(out), fmt.Errorf("%s %s: %v: %s",
			name, strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return string(out), nil
}

// execProber probes tools by asking them for their version.
type execProber struct {
	runner *Runner
}

// NewProber creates the exec-backed tool prober.
func NewProber(runner *Runner) Prober {
	return &execProber{runner: runner}
}

func (p *execProber) Probe(ctx context.Context, tool string) error {
	if _, err := exec.LookPath(tool); err != nil {
		return fmt.Errorf("%s not found on PATH", tool)
	}
	_, err := p.runner.Run(ctx, tool, "--version")
	return err
}

// brewInstaller installs packages through Homebrew.
type brewInstaller struct {
	runner *Runner
}

// NewPackageInstaller creates the Homebrew-backed package installer.
func NewPackageInstaller(runner *Runner) PackageInstaller {
	return &brewInstaller{runner: runner}
}

func (b *brewInstaller) Install(ctx context.Context, pkgs ...string) error {
	args := append([]string{"install"}, pkgs...)
	_, err := b.runner.Run(ctx, "brew", args...)
	return err
}

// asdfInstaller installs language toolchains through asdf.
type asdfInstaller struct {
	runner *Runner
}

// NewToolchainInstaller creates the asdf-backed toolchain installer.
func NewToolchainInstaller(runner *Runner) ToolchainInstaller {
	return &asdfInstaller{runner: runner}
}

func (a *asdfInstaller) EnsureToolchain(ctx context.Context, name, version string) error {
	if _, err := a.runner.Run(ctx, "asdf", "plugin-add", name); err != nil {
		// plugin-add fails when the plugin already exists, which is fine
		if !strings.Contains(err.Error(), "already added") {
			return err
		}
	}
	_, err := a.runner.Run(ctx, "asdf", "install", name, version)
	return err
}

// scriptCloudAuth runs the organization's cloud auth setup script.
type scriptCloudAuth struct {
	runner *Runner
	script string
}

// NewCloudAuth creates a cloud auth collaborator backed by a script.
func NewCloudAuth(runner *Runner, script string) CloudAuth {
	return &scriptCloudAuth{runner: runner, script: script}
}

func (s *scriptCloudAuth) Setup(ctx context.Context) error {
	_, err := s.runner.Run(ctx, s.script)
	return err
}

// rakeBuildSystem drives the downstream build system's named targets
// inside a repository checkout.
type rakeBuildSystem struct {
	runner *Runner
}

// NewBuildSystem creates the rake-backed build system collaborator.
func NewBuildSystem(runner *Runner) BuildSystem {
	return &rakeBuildSystem{runner: runner}
}

func (r *rakeBuildSystem) target(ctx context.Context, repoDir, target string) error {
	cmd := exec.CommandContext(ctx, "rake", target)
	cmd.Dir = repoDir
	logging.LogCommand("rake", []string{target})
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("rake %s in %s: %v: %s", target, repoDir, err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (r *rakeBuildSystem) InstallDeps(ctx context.Context, repoDir string) error {
	return r.target(ctx, repoDir, "install_dependencies")
}

func (r *rakeBuildSystem) InstallHooks(ctx context.Context, repoDir string) error {
	return r.target(ctx, repoDir, "install_hooks")
}

func (r *rakeBuildSystem) CreateDatabases(ctx context.Context, repoDir string) error {
	return r.target(ctx, repoDir, "create_databases")
}

func (r *rakeBuildSystem) FetchDump(ctx context.Context, repoDir string) error {
	return r.target(ctx, repoDir, "fetch_dump")
}
