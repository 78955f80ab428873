package installer

import (
	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
)

// steps holds the fixed, non-interactive invocation per platform family.
// Each entry is run in order; the package name is appended to the last one.
var steps = map[distro.Platform][][]string{
	distro.Debian: {
		{"apt-get", "update"},
		{"apt-get", "install", "-y"},
	},
	distro.Fedora: {
		{"dnf", "install", "-y"},
	},
	distro.Arch: {
		{"pacman", "-Sy", "--noconfirm"},
	},
	distro.Suse: {
		{"zypper", "--non-interactive", "install"},
	},
}

// PackageManager returns the front end used on platform, or "" when the
// platform is not supported.
func PackageManager(platform distro.Platform) string {
	s, ok := steps[platform]
	if !ok {
		return ""
	}
	return s[len(s)-1][0]
}

// Plan returns the commands that install pkg on platform, each prefixed with
// sudo when sudo is true.
func Plan(platform distro.Platform, pkg string, sudo bool) ([]executor.Command, error) {
	s, ok := steps[platform]
	if !ok {
		return nil, errors.Newf(errors.ErrPlatformUnknown, "no package manager known for platform %s", platform)
	}

	cmds := make([]executor.Command, 0, len(s))
	for i, step := range s {
		argv := append([]string(nil), step...)
		if i == len(s)-1 {
			argv = append(argv, pkg)
		}
		if sudo {
			argv = append([]string{"sudo"}, argv...)
		}
		cmds = append(cmds, executor.NewCommand(argv[0], argv[1:]...))
	}
	return cmds, nil
}
