package installer

import (
	"context"
	"strings"
)

// execGit is the production Git collaborator, shelling out to the git
// binary through the shared runner.
type execGit struct {
	runner *Runner
}

// NewGit creates the exec-backed Git collaborator.
func NewGit(runner *Runner) Git {
	return &execGit{runner: runner}
}

func (g *execGit) Clone(ctx context.Context, url, dest string, recurseSubmodules bool) error {
	args := []string{"clone"}
	if recurseSubmodules {
		args = append(args, "--recurse-submodules")
	}
	args = append(args, url, dest)
	_, err := g.runner.Run(ctx, "git", args...)
	return err
}

func (g *execGit) ConfigGet(ctx context.Context, key string) (string, error) {
	out, err := g.runner.Run(ctx, "git", "config", "--global", "--get", key)
	if err != nil {
		// git exits 1 for an unset key; treat that as empty, not failure
		if strings.TrimSpace(out) == "" {
			return "", nil
		}
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (g *execGit) ConfigSet(ctx context.Context, key, value string) error {
	_, err := g.runner.Run(ctx, "git", "config", "--global", key, value)
	return err
}

func (g *execGit) RunTool(ctx context.Context, tool string, args ...string) error {
	_, err := g.runner.Run(ctx, tool, args...)
	return err
}
