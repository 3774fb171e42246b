package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/devup-sh/devup/pkg/errors"
	"github.com/devup-sh/devup/pkg/logging"
	"github.com/devup-sh/devup/pkg/paths"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// Load builds the configuration: embedded defaults, then the operator
// config file found under configDir (empty means paths.ConfigDir),
// then DEVUP_* environment variables.
func Load(configDir string) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Embedded organization defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load embedded defaults")
	}

	// 2. Operator config file, if present
	if configDir == "" {
		configDir = paths.ConfigDir()
	}
	for _, candidate := range paths.ConfigFileCandidates {
		path := filepath.Join(configDir, candidate)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		var parser koanf.Parser = toml.Parser()
		if strings.HasSuffix(candidate, ".yaml") {
			parser = yaml.Parser()
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to parse %s", path)
		}
		logger.Debug().Str("path", path).Msg("loaded operator config")
		break
	}

	// 3. Environment variables: DEVUP_SKIP_MAIN=1 -> skip_main, etc.
	if err := k.Load(env.Provider("DEVUP_", ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, "DEVUP_"))
	}), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "failed to unmarshal configuration")
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// postProcess fills derived defaults and validates the result.
func postProcess(cfg *Config) error {
	if cfg.TargetRoot == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return errors.Wrap(err, errors.ErrConfigValid, "cannot resolve home directory")
		}
		cfg.TargetRoot = home
	}
	if cfg.SourceRoot == "" {
		cfg.SourceRoot = filepath.Join(cfg.TargetRoot, ".devup", "dotfiles")
	}

	for _, m := range cfg.Dotfiles {
		if filepath.IsAbs(m.Dest) {
			return errors.Newf(errors.ErrConfigValid,
				"dotfile dest %s must be relative to the target root", m.Dest)
		}
	}
	for _, r := range cfg.Repos {
		if r.URL == "" || r.Dest == "" {
			return errors.Newf(errors.ErrConfigValid, "repository %q needs url and dest", r.Name)
		}
	}
	return nil
}
