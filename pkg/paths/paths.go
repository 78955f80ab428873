// Package paths provides centralized path handling for mcargo.
// It follows the XDG Base Directory specification for the user config file
// and the log file, with environment overrides for both.
package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for mcargo
	EnvConfigDir = "MCARGO_CONFIG_DIR"

	// EnvStateDir overrides the XDG state directory for mcargo
	EnvStateDir = "MCARGO_STATE_DIR"

	// EnvLogFile overrides the full log file path
	EnvLogFile = "MCARGO_LOG_FILE"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for mcargo-specific files
	AppDirName = "mcargo"

	// ConfigFileName is the name of the user configuration file
	ConfigFileName = "config.toml"

	// LogFileName is the name of the log file
	LogFileName = "mcargo.log"

	// DefaultOSRelease is the OS identification file read by the installer
	DefaultOSRelease = "/etc/os-release"
)

// ProjectConfigFiles are looked up, in order, in the working directory.
var ProjectConfigFiles = []string{".mcargo.toml", "mcargo.toml"}

// Paths holds the resolved locations mcargo reads from and writes to.
type Paths struct {
	configDir string
	stateDir  string
	logFile   string
}

// New resolves all paths from the environment.
func New() *Paths {
	p := &Paths{}

	if dir := os.Getenv(EnvConfigDir); dir != "" {
		p.configDir = ExpandHome(dir)
	} else {
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	// xdg caches its values at init; read XDG_STATE_HOME directly so late
	// changes to the environment are honoured.
	switch {
	case os.Getenv(EnvStateDir) != "":
		p.stateDir = ExpandHome(os.Getenv(EnvStateDir))
	case os.Getenv("XDG_STATE_HOME") != "":
		p.stateDir = filepath.Join(os.Getenv("XDG_STATE_HOME"), AppDirName)
	default:
		p.stateDir = filepath.Join(xdg.StateHome, AppDirName)
	}

	if f := os.Getenv(EnvLogFile); f != "" {
		p.logFile = ExpandHome(f)
	} else {
		p.logFile = filepath.Join(p.stateDir, LogFileName)
	}

	return p
}

// ConfigDir returns the user configuration directory
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// StateDir returns the state directory (log file lives here)
func (p *Paths) StateDir() string {
	return p.stateDir
}

// ConfigFilePath returns the path of the user configuration file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// LogFilePath returns the path to the mcargo log file
func (p *Paths) LogFilePath() string {
	return p.logFile
}

// ProjectConfigPath returns the first project config file that exists in dir,
// or "" when there is none.
func ProjectConfigPath(dir string) string {
	for _, name := range ProjectConfigFiles {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// ExpandHome expands a leading ~ to the home directory
func ExpandHome(path string) string {
	if path == "" || path[0] != '~' {
		return path
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = os.Getenv(EnvHome)
		if homeDir == "" {
			return path
		}
	}

	if len(path) == 1 {
		return homeDir
	}

	// ~something (not the user's home) is left alone
	if path[1] == '/' || path[1] == filepath.Separator {
		return filepath.Join(homeDir, path[2:])
	}
	return path
}
