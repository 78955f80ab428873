package testutil

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/mcargo/pkg/paths"
)

// TestEnvironment isolates a test from the user's home, config and state
// directories.
type TestEnvironment struct {
	HomeDir    string
	ConfigDir  string
	StateDir   string
	ProjectDir string

	t *testing.T
}

// NewTestEnvironment creates the directories under a temp dir and points the
// environment at them. Colors are disabled.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	root := t.TempDir()
	env := &TestEnvironment{
		HomeDir:    CreateDir(t, root, "home"),
		ConfigDir:  CreateDir(t, root, "config"),
		StateDir:   CreateDir(t, root, "state"),
		ProjectDir: CreateDir(t, root, "project"),
		t:          t,
	}

	t.Setenv(paths.EnvHome, env.HomeDir)
	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvStateDir, env.StateDir)
	t.Setenv(paths.EnvLogFile, "")
	t.Setenv("NO_COLOR", "1")

	return env
}

// UserConfig writes the user config file
func (env *TestEnvironment) UserConfig(content string) string {
	env.t.Helper()
	return CreateFile(env.t, env.ConfigDir, paths.ConfigFileName, content)
}

// ProjectConfig writes a project config file with the given name
func (env *TestEnvironment) ProjectConfig(name, content string) string {
	env.t.Helper()
	return CreateFile(env.t, env.ProjectDir, name, content)
}

// OSRelease writes an os-release file declaring id and returns its path.
func (env *TestEnvironment) OSRelease(id string) string {
	env.t.Helper()
	content := fmt.Sprintf("NAME=\"Test Linux\"\nID=%s\nPRETTY_NAME=\"Test Linux (%s)\"\n", id, id)
	return CreateFile(env.t, filepath.Join(env.HomeDir, "etc"), "os-release", content)
}
