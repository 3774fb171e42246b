// Package paths resolves the well-known locations devup reads and
// writes: the operator config directory and the XDG state directory
// holding logs. Provisioned content lives under the configured target
// root, not here.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides where the operator config file is looked up.
	EnvConfigDir = "DEVUP_CONFIG_DIR"
)

const (
	appDirName  = "devup"
	logFileName = "devup.log"
)

// ConfigFileCandidates are the operator config filenames probed in
// order inside the config directory.
var ConfigFileCandidates = []string{".devup.toml", ".devup.yaml"}

// ConfigDir returns the directory searched for the operator config
// file: the DEVUP_CONFIG_DIR override when set, otherwise the home
// directory.
func ConfigDir() string {
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return dir
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

// StateDir returns the devup state directory under XDG_STATE_HOME
// (~/.local/state/devup by default).
func StateDir() string {
	return filepath.Join(xdg.StateHome, appDirName)
}

// LogFilePath returns the log file location inside the state directory.
func LogFilePath() string {
	return filepath.Join(StateDir(), logFileName)
}
