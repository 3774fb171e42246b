package installer

import "context"

// Prober checks whether a tool is present at an acceptable version.
// A nil return means the tool is usable as-is and installation is
// skipped. Version heuristics are the prober's business, not the
// pipeline's.
type Prober interface {
	Probe(ctx context.Context, tool string) error
}

// PackageInstaller installs system packages.
type PackageInstaller interface {
	Install(ctx context.Context, pkgs ...string) error
}

// ToolchainInstaller installs a language toolchain at a version.
type ToolchainInstaller interface {
	EnsureToolchain(ctx context.Context, name, version string) error
}

// CloudAuth performs cloud provider authentication setup.
type CloudAuth interface {
	Setup(ctx context.Context) error
}

// BuildSystem is the downstream build system operating inside a cloned
// repository checkout.
type BuildSystem interface {
	InstallDeps(ctx context.Context, repoDir string) error
	InstallHooks(ctx context.Context, repoDir string) error
	CreateDatabases(ctx context.Context, repoDir string) error
	FetchDump(ctx context.Context, repoDir string) error
}

// Git covers the git operations the pipeline needs: plain clones,
// global configuration, and execution of the identity-injecting clone
// tool once it is bootstrapped.
type Git interface {
	Clone(ctx context.Context, url, dest string, recurseSubmodules bool) error
	ConfigGet(ctx context.Context, key string) (string, error)
	ConfigSet(ctx context.Context, key, value string) error
	RunTool(ctx context.Context, tool string, args ...string) error
}
