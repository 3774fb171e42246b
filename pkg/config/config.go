// Package config loads the run configuration: embedded organization
// defaults, then an optional operator config file, then DEVUP_*
// environment variables. The resulting Config is populated once at
// process start and threaded explicitly through every component; no
// ambient lookups happen after load.
package config

import (
	"github.com/devup-sh/devup/pkg/dotfiles"
	"github.com/devup-sh/devup/pkg/repos"
)

// Org identifies the organization the workstation is provisioned for.
type Org struct {
	Name        string `koanf:"name"`
	GitHost     string `koanf:"git_host"`
	EmailDomain string `koanf:"email_domain"`
}

// Toolchain names a language toolchain and the version to ensure.
type Toolchain struct {
	Name    string `koanf:"name"`
	Version string `koanf:"version"`
}

// Config is the full run configuration.
type Config struct {
	// TargetRoot is the directory being provisioned. Empty means the
	// operator's home directory.
	TargetRoot string `koanf:"target_root"`

	// SourceRoot holds the managed dotfile sources. Empty means
	// <TargetRoot>/.devup/dotfiles.
	SourceRoot string `koanf:"source_root"`

	// SkipMain disables the main-project sub-path end to end: the main
	// repository clone, hook installation, database creation and dump
	// download. Skipped steps emit no warning.
	SkipMain bool `koanf:"skip_main"`

	// CloudAuthScript is the opaque cloud/auth setup collaborator.
	CloudAuthScript string `koanf:"cloud_auth_script"`

	Org        Org                `koanf:"org"`
	Packages   []string           `koanf:"packages"`
	Toolchains []Toolchain        `koanf:"toolchains"`
	Dotfiles   []dotfiles.Mapping `koanf:"dotfiles"`
	Repos      []repos.Spec       `koanf:"repos"`
}

// BootstrapRepo returns the spec cloned in bootstrap mode, the one
// providing the identity-injection tool. Second return is false when
// the configuration declares none.
func (c *Config) BootstrapRepo() (repos.Spec, bool) {
	for _, r := range c.Repos {
		if r.Mode == repos.ModeBootstrap {
			return r, true
		}
	}
	return repos.Spec{}, false
}

// MainRepo returns the main-project spec covered by the SkipMain
// toggle.
func (c *Config) MainRepo() (repos.Spec, bool) {
	for _, r := range c.Repos {
		if r.Main {
			return r, true
		}
	}
	return repos.Spec{}, false
}
