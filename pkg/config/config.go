package config

import (
	"time"
)

// On-failure policies for a terminally failed installation.
const (
	OnFailureFallback = "fallback"
	OnFailureAbort    = "abort"
)

// Config is the effective mcargo configuration.
type Config struct {
	Linker    LinkerConfig    `koanf:"linker"`
	BuildTool BuildToolConfig `koanf:"build_tool"`
	Install   InstallConfig   `koanf:"install"`
	Log       LogConfig       `koanf:"log"`

	// Sources lists the files that were loaded, lowest precedence first.
	Sources []string `koanf:"-"`
}

// LinkerConfig describes the wrapping linker
type LinkerConfig struct {
	Binary  string   `koanf:"binary"`
	Args    []string `koanf:"args"`
	Enabled bool     `koanf:"enabled"`
}

// BuildToolConfig describes the wrapped build tool
type BuildToolConfig struct {
	Binary string `koanf:"binary"`
}

// InstallConfig controls automatic installation of the linker.
type InstallConfig struct {
	Auto        bool          `koanf:"auto"`
	MaxAttempts int           `koanf:"max_attempts"`
	Delay       time.Duration `koanf:"delay"`
	UseSudo     bool          `koanf:"use_sudo"`
	Package     string        `koanf:"package"`
	OnFailure   string        `koanf:"on_failure"`
	OSRelease   string        `koanf:"os_release"`
	Platform    string        `koanf:"platform"`
}

// LogConfig controls the log file
type LogConfig struct {
	File bool `koanf:"file"`
}
