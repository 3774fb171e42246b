package testutil

import (
	"context"
	"os"
)

// StubGit is an in-memory Git collaborator. Clones create the
// destination directory so a second run sees an existing checkout,
// and every network-shaped call is counted.
type StubGit struct {
	Config map[string]string

	CloneCalls []string   // URLs passed to plain clone
	ToolCalls  [][]string // tool invocations including args

	CloneErr error
	ToolErr  error
	// ToolErrOn limits ToolErr to invocations whose args contain the
	// given string. Empty means every invocation fails.
	ToolErrOn string
}

// NewStubGit creates a stub with an empty global config.
func NewStubGit() *StubGit {
	return &StubGit{Config: make(map[string]string)}
}

func (s *StubGit) Clone(ctx context.Context, url, dest string, recurse bool) error {
	s.CloneCalls = append(s.CloneCalls, url)
	if s.CloneErr != nil {
		return s.CloneErr
	}
	return os.MkdirAll(dest, 0755)
}

func (s *StubGit) ConfigGet(ctx context.Context, key string) (string, error) {
	return s.Config[key], nil
}

func (s *StubGit) ConfigSet(ctx context.Context, key, value string) error {
	s.Config[key] = value
	return nil
}

func (s *StubGit) RunTool(ctx context.Context, tool string, args ...string) error {
	call := append([]string{tool}, args...)
	s.ToolCalls = append(s.ToolCalls, call)

	if s.ToolErr != nil {
		if s.ToolErrOn == "" {
			return s.ToolErr
		}
		for _, a := range args {
			if a == s.ToolErrOn {
				return s.ToolErr
			}
		}
	}

	// The injection tool's clone subcommand produces a checkout.
	if len(args) >= 3 && args[0] == "clone" {
		return os.MkdirAll(args[2], 0755)
	}
	return nil
}

// MutatingToolCalls counts tool invocations that create state (clone
// subcommands), which is what idempotence assertions care about.
func (s *StubGit) MutatingToolCalls() int {
	n := 0
	for _, call := range s.ToolCalls {
		if len(call) > 1 && call[1] == "clone" {
			n++
		}
	}
	return n
}

// StubInstallers implements every installer collaborator with
// counters and injectable failures.
type StubInstallers struct {
	ProbeErr       error
	PackageErr     error
	ToolchainErr   error
	CloudErr       error
	DepsErr        error
	HooksErr       error
	DatabasesErr   error
	DumpErr        error
	ProbeCalls     int
	PackageCalls   int
	ToolchainCalls int
	CloudCalls     int
	DepsCalls      []string
	HooksCalls     []string
	DatabaseCalls  []string
	DumpCalls      []string
}

func (s *StubInstallers) Probe(ctx context.Context, tool string) error {
	s.ProbeCalls++
	return s.ProbeErr
}

func (s *StubInstallers) Install(ctx context.Context, pkgs ...string) error {
	s.PackageCalls++
	return s.PackageErr
}

func (s *StubInstallers) EnsureToolchain(ctx context.Context, name, version string) error {
	s.ToolchainCalls++
	return s.ToolchainErr
}

func (s *StubInstallers) Setup(ctx context.Context) error {
	s.CloudCalls++
	return s.CloudErr
}

func (s *StubInstallers) InstallDeps(ctx context.Context, repoDir string) error {
	s.DepsCalls = append(s.DepsCalls, repoDir)
	return s.DepsErr
}

func (s *StubInstallers) InstallHooks(ctx context.Context, repoDir string) error {
	s.HooksCalls = append(s.HooksCalls, repoDir)
	return s.HooksErr
}

func (s *StubInstallers) CreateDatabases(ctx context.Context, repoDir string) error {
	s.DatabaseCalls = append(s.DatabaseCalls, repoDir)
	return s.DatabasesErr
}

func (s *StubInstallers) FetchDump(ctx context.Context, repoDir string) error {
	s.DumpCalls = append(s.DumpCalls, repoDir)
	return s.DumpErr
}
