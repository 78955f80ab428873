// Package distro identifies the Linux distribution family of the host from
// its os-release file.
package distro

import (
	"strings"

	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/joho/godotenv"
)

// DefaultOSRelease is the standard location of the OS identification file.
const DefaultOSRelease = "/etc/os-release"

// Platform is a Linux distribution family sharing one package manager.
type Platform int

const (
	Unknown Platform = iota
	Debian
	Fedora
	Arch
	Suse
)

// String returns the family name
func (p Platform) String() string {
	switch p {
	case Debian:
		return "debian"
	case Fedora:
		return "fedora"
	case Arch:
		return "arch"
	case Suse:
		return "suse"
	default:
		return "unknown"
	}
}

// Platforms lists the supported families.
func Platforms() []Platform {
	return []Platform{Debian, Fedora, Arch, Suse}
}

// ids maps os-release ID values to their family. Matching is exact and
// case-sensitive.
var ids = map[string]Platform{
	"debian":     Debian,
	"ubuntu":     Debian,
	"linuxmint":  Debian,
	"pop":        Debian,
	"elementary": Debian,
	"raspbian":   Debian,
	"kali":       Debian,
	"zorin":      Debian,

	"fedora":    Fedora,
	"rhel":      Fedora,
	"centos":    Fedora,
	"rocky":     Fedora,
	"almalinux": Fedora,
	"ol":        Fedora,
	"amzn":      Fedora,

	"arch":        Arch,
	"manjaro":     Arch,
	"endeavouros": Arch,
	"garuda":      Arch,
	"artix":       Arch,

	"sles": Suse,
	"sled": Suse,
}

// prefixes match whole families of IDs, e.g. opensuse-leap, opensuse-tumbleweed.
var prefixes = []struct {
	prefix   string
	platform Platform
}{
	{"opensuse", Suse},
}

// ParsePlatform maps an os-release ID to its family.
func ParsePlatform(id string) (Platform, bool) {
	if id == "" {
		return Unknown, false
	}
	if p, ok := ids[id]; ok {
		return p, true
	}
	for _, entry := range prefixes {
		if strings.HasPrefix(id, entry.prefix) {
			return entry.platform, true
		}
	}
	return Unknown, false
}

// ParseFamily maps a family name as printed by String, e.g. "suse", to its
// Platform.
func ParseFamily(name string) (Platform, bool) {
	for _, p := range Platforms() {
		if p.String() == name {
			return p, true
		}
	}
	return Unknown, false
}

// FamilyNames lists the supported family names
func FamilyNames() []string {
	platforms := Platforms()
	names := make([]string, len(platforms))
	for i, p := range platforms {
		names[i] = p.String()
	}
	return names
}

// Resolver reads the OS identification file.
type Resolver struct {
	Path string
}

// NewResolver creates a resolver for path, defaulting to /etc/os-release.
func NewResolver(path string) *Resolver {
	if path == "" {
		path = DefaultOSRelease
	}
	return &Resolver{Path: path}
}

// Resolve reads the ID key and maps it to a Platform. A missing file, a
// missing ID, or an ID outside the table is an ErrPlatformUnknown error.
func (r *Resolver) Resolve() (Platform, error) {
	logger := logging.GetLogger("distro")

	values, err := godotenv.Read(r.Path)
	if err != nil {
		return Unknown, errors.Wrapf(err, errors.ErrPlatformUnknown,
			"cannot identify the Linux distribution (reading %s)", r.Path).
			WithDetail("path", r.Path)
	}

	id := values["ID"]
	p, ok := ParsePlatform(id)
	if !ok {
		if id == "" {
			return Unknown, errors.Newf(errors.ErrPlatformUnknown,
				"cannot identify the Linux distribution: %s has no ID", r.Path).
				WithDetail("path", r.Path)
		}
		return Unknown, errors.Newf(errors.ErrPlatformUnknown,
			"unsupported Linux distribution %q", id).
			WithDetail("path", r.Path).
			WithDetail("id", id)
	}

	logger.Debug().Str("id", id).Str("platform", p.String()).Msg("Resolved platform")
	return p, nil
}

// Static always resolves to a fixed platform. It backs the
// install.platform configuration override.
type Static Platform

// Resolve implements the installer's resolver.
func (s Static) Resolve() (Platform, error) {
	return Platform(s), nil
}
