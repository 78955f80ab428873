package config

import (
	"strings"

	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/errors"
)

// Validate checks the configuration for values mcargo cannot work with.
func (c *Config) Validate() error {
	invalid := func(key, format string, args ...interface{}) error {
		return errors.Newf(errors.ErrConfigValid, "invalid configuration: "+key+" "+format, args...).
			WithDetail("key", key)
	}

	if c.Linker.Binary == "" {
		return invalid("linker.binary", "must not be empty")
	}
	if c.BuildTool.Binary == "" {
		return invalid("build_tool.binary", "must not be empty")
	}
	if c.Install.MaxAttempts < 1 {
		return invalid("install.max_attempts", "must be at least 1, got %d", c.Install.MaxAttempts)
	}
	if c.Install.Delay < 0 {
		return invalid("install.delay", "must not be negative, got %s", c.Install.Delay)
	}
	if c.Install.Package == "" {
		return invalid("install.package", "must not be empty")
	}
	switch c.Install.OnFailure {
	case OnFailureFallback, OnFailureAbort:
	default:
		return invalid("install.on_failure", "must be %q or %q, got %q",
			OnFailureFallback, OnFailureAbort, c.Install.OnFailure)
	}
	if c.Install.Platform != "" {
		if _, ok := c.PlatformOverride(); !ok {
			return invalid("install.platform", "%q is not a supported distribution ID or family (%s)",
				c.Install.Platform, strings.Join(distro.FamilyNames(), ", "))
		}
	}
	return nil
}

// PlatformOverride returns the forced platform, if any. install.platform is
// either an os-release ID or a family name.
func (c *Config) PlatformOverride() (distro.Platform, bool) {
	if c.Install.Platform == "" {
		return distro.Unknown, false
	}
	if p, ok := distro.ParseFamily(c.Install.Platform); ok {
		return p, true
	}
	return distro.ParsePlatform(c.Install.Platform)
}
