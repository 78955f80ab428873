package distro

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeOSRelease(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "os-release")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    Platform
	}{
		{
			name: "ubuntu",
			content: `PRETTY_NAME="Ubuntu 22.04.3 LTS"
NAME="Ubuntu"
VERSION_ID="22.04"
VERSION="22.04.3 LTS (Jammy Jellyfish)"
ID=ubuntu
ID_LIKE=debian
`,
			want: Debian,
		},
		{
			name:    "debian",
			content: "ID=debian\nVERSION_ID=\"12\"\n",
			want:    Debian,
		},
		{
			name:    "fedora_quoted",
			content: "NAME=\"Fedora Linux\"\nID=\"fedora\"\n",
			want:    Fedora,
		},
		{
			name:    "rocky",
			content: "ID=\"rocky\"\nID_LIKE=\"rhel centos fedora\"\n",
			want:    Fedora,
		},
		{
			name:    "arch",
			content: "NAME=\"Arch Linux\"\nID=arch\n",
			want:    Arch,
		},
		{
			name:    "manjaro",
			content: "ID=manjaro\nID_LIKE=arch\n",
			want:    Arch,
		},
		{
			name:    "opensuse_tumbleweed_prefix",
			content: "ID=\"opensuse-tumbleweed\"\nID_LIKE=\"opensuse suse\"\n",
			want:    Suse,
		},
		{
			name:    "opensuse_leap_prefix",
			content: "ID=\"opensuse-leap\"\n",
			want:    Suse,
		},
		{
			name:    "sles",
			content: "ID=\"sles\"\n",
			want:    Suse,
		},
		{
			name:    "comments_ignored",
			content: "# generated\nID=pop\n",
			want:    Debian,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewResolver(writeOSRelease(t, tt.content)).Resolve()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_Unknown(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantID  string
	}{
		{"unrecognized_id", "ID=nosuchos\n", "nosuchos"},
		{"case_sensitive", "ID=Ubuntu\n", "Ubuntu"},
		{"missing_id", "NAME=\"Mystery\"\n", ""},
		{"empty_id", "ID=\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewResolver(writeOSRelease(t, tt.content)).Resolve()

			require.Error(t, err)
			assert.Equal(t, Unknown, p)
			assert.True(t, errors.IsErrorCode(err, errors.ErrPlatformUnknown))
			if tt.wantID != "" {
				assert.Equal(t, tt.wantID, errors.GetErrorDetails(err)["id"])
				assert.Contains(t, err.Error(), tt.wantID)
			}
		})
	}
}

func TestResolve_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "does-not-exist")

	p, err := NewResolver(path).Resolve()

	require.Error(t, err)
	assert.Equal(t, Unknown, p)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPlatformUnknown))
	assert.Equal(t, path, errors.GetErrorDetails(err)["path"])
}

func TestNewResolver_DefaultPath(t *testing.T) {
	assert.Equal(t, DefaultOSRelease, NewResolver("").Path)
}

func TestParsePlatform(t *testing.T) {
	p, ok := ParsePlatform("ubuntu")
	assert.True(t, ok)
	assert.Equal(t, Debian, p)

	p, ok = ParsePlatform("opensusefoo")
	assert.True(t, ok)
	assert.Equal(t, Suse, p)

	_, ok = ParsePlatform("suse")
	assert.False(t, ok, "bare suse is not an os-release ID in the table")

	_, ok = ParsePlatform("")
	assert.False(t, ok)
}

func TestPlatformString(t *testing.T) {
	assert.Equal(t, "debian", Debian.String())
	assert.Equal(t, "fedora", Fedora.String())
	assert.Equal(t, "arch", Arch.String())
	assert.Equal(t, "suse", Suse.String())
	assert.Equal(t, "unknown", Unknown.String())
	assert.Equal(t, "unknown", Platform(42).String())
}

func TestStatic(t *testing.T) {
	p, err := Static(Arch).Resolve()
	require.NoError(t, err)
	assert.Equal(t, Arch, p)
}

func TestParseFamily(t *testing.T) {
	for _, name := range []string{"debian", "fedora", "arch", "suse"} {
		p, ok := ParseFamily(name)
		assert.True(t, ok, name)
		assert.Equal(t, name, p.String())
	}

	for _, name := range []string{"", "unknown", "ubuntu", "Suse"} {
		_, ok := ParseFamily(name)
		assert.False(t, ok, name)
	}
}

func TestFamilyNames(t *testing.T) {
	assert.Equal(t, []string{"debian", "fedora", "arch", "suse"}, FamilyNames())
}
