package config

import (
	"strings"

	"github.com/arthur-debert/mcargo/pkg/errors"
	toml "github.com/pelletier/go-toml/v2"
)

// ToTOML renders the effective configuration as TOML.
func ToTOML(c *Config) (string, error) {
	doc := map[string]interface{}{
		"linker": map[string]interface{}{
			"binary":  c.Linker.Binary,
			"args":    c.Linker.Args,
			"enabled": c.Linker.Enabled,
		},
		"build_tool": map[string]interface{}{
			"binary": c.BuildTool.Binary,
		},
		"install": map[string]interface{}{
			"auto":         c.Install.Auto,
			"max_attempts": c.Install.MaxAttempts,
			"delay":        c.Install.Delay.String(),
			"use_sudo":     c.Install.UseSudo,
			"package":      c.Install.Package,
			"on_failure":   c.Install.OnFailure,
			"os_release":   c.Install.OSRelease,
			"platform":     c.Install.Platform,
		},
		"log": map[string]interface{}{
			"file": c.Log.File,
		},
	}

	out, err := toml.Marshal(doc)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrInternal, "failed to render configuration")
	}
	return string(out), nil
}

// SampleConfig returns the defaults file with every value commented out,
// ready to be saved as a user config file.
func SampleConfig() string {
	return commentOutConfigValues(DefaultsContent())
}

// commentOutConfigValues takes the TOML content and comments out all non-comment, non-blank lines
// that contain configuration values (assignments)
func commentOutConfigValues(content string) string {
	lines := strings.Split(content, "\n")
	result := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		// Keep blank lines, comments and section headers as-is
		if trimmed == "" || strings.HasPrefix(trimmed, "#") ||
			(strings.HasPrefix(trimmed, "[") && strings.HasSuffix(trimmed, "]")) {
			result = append(result, line)
			continue
		}

		result = append(result, "# "+line)
	}

	return strings.Join(result, "\n")
}
