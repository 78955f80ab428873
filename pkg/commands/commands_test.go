package commands_test

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/arthur-debert/mcargo/pkg/commands"
	"github.com/arthur-debert/mcargo/pkg/config"
	"github.com/arthur-debert/mcargo/pkg/dispatcher"
	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/testutil"
	"github.com/arthur-debert/mcargo/pkg/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *config.Config {
	return &config.Config{
		Linker:    config.LinkerConfig{Binary: "mold", Args: []string{"-run"}, Enabled: true},
		BuildTool: config.BuildToolConfig{Binary: "cargo"},
		Install: config.InstallConfig{
			Auto:        true,
			MaxAttempts: 3,
			Delay:       5 * time.Second,
			UseSudo:     true,
			Package:     "mold",
			OnFailure:   config.OnFailureFallback,
		},
	}
}

type harness struct {
	fake     *testutil.FakeCommander
	resolver *testutil.FakeResolver
	sleeper  *testutil.RecordingSleeper
	stderr   *bytes.Buffer
	stdout   *bytes.Buffer
	cfg      *config.Config
}

func newHarness() *harness {
	return &harness{
		fake:     testutil.NewFakeCommander(),
		resolver: &testutil.FakeResolver{Platform: distro.Debian},
		sleeper:  &testutil.RecordingSleeper{},
		stderr:   &bytes.Buffer{},
		stdout:   &bytes.Buffer{},
		cfg:      testConfig(),
	}
}

// installsOnSuccess puts mold on the fake PATH once the package manager's
// install step succeeds.
func (h *harness) installsOnSuccess(step string) {
	h.fake.OnRun = func(f *testutil.FakeCommander, cmd executor.Command, code int) {
		if cmd.String() == step && code == 0 {
			f.Install("mold")
		}
	}
}

func (h *harness) run(t *testing.T, sub string, args []string, mutate ...func(*commands.Options)) (int, error) {
	t.Helper()
	opts := commands.Options{
		Request:   dispatcher.NewRequest(sub, args),
		Config:    h.cfg,
		Commander: h.fake,
		Printer:   ui.NewPrinter(ui.FormatText, h.stderr),
		Stdout:    h.stdout,
		Resolver:  h.resolver,
		Sleep:     h.sleeper.Sleep,
		IsRoot:    func() bool { return true },
	}
	for _, m := range mutate {
		m(&opts)
	}
	return commands.Run(context.Background(), opts)
}

func TestRun_LinkerPresentSkipsInstaller(t *testing.T) {
	h := newHarness()
	h.fake.Install("mold")
	h.fake.Outputs["mold --version"] = "mold 2.30.0 (compatible with GNU ld)\n"

	code, err := h.run(t, "check", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"mold --version", "mold -run cargo check"}, h.fake.RunCalls())
	assert.Equal(t, 0, h.resolver.Calls)
	assert.Contains(t, h.stderr.String(), "mold found: mold 2.30.0 (compatible with GNU ld)")
}

func TestRun_InstallsMissingLinker(t *testing.T) {
	h := newHarness()
	h.installsOnSuccess("apt-get install -y mold")

	code, err := h.run(t, "build", []string{"--release"})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{
		"apt-get update",
		"apt-get install -y mold",
		"mold --version",
		"mold -run cargo build --release",
	}, h.fake.RunCalls())
	assert.Contains(t, h.stderr.String(), "mold not found in PATH")
	assert.Contains(t, h.stderr.String(), "mold installed")
}

func TestRun_InstallsWithSudoWhenNotRoot(t *testing.T) {
	h := newHarness()
	h.resolver.Platform = distro.Fedora
	h.installsOnSuccess("sudo dnf install -y mold")

	code, err := h.run(t, "test", nil, func(o *commands.Options) {
		o.IsRoot = func() bool { return false }
	})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.fake.CallCount("sudo dnf install -y mold"))
	assert.Equal(t, 1, h.fake.CallCount("mold -run cargo test"))
}

func TestRun_FallbackAfterFailedInstall(t *testing.T) {
	h := newHarness()
	h.fake.RunCodes["apt-get update"] = []int{100}

	code, err := h.run(t, "build", []string{"--release"})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 3, h.fake.CallCount("apt-get update"))
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, h.sleeper.Delays)
	assert.Equal(t, 1, h.fake.CallCount("cargo build --release"))
	assert.Equal(t, 0, h.fake.CallCount("mold -run cargo build --release"))
	assert.Contains(t, h.stderr.String(), "warning: mold installation failed after 3 attempts")
	assert.Contains(t, h.stderr.String(), "running cargo without mold")
}

func TestRun_AbortAfterFailedInstall(t *testing.T) {
	h := newHarness()
	h.cfg.Install.OnFailure = config.OnFailureAbort
	h.cfg.Install.MaxAttempts = 2
	h.fake.RunCodes["apt-get install -y mold"] = []int{1}

	code, err := h.run(t, "run", nil)

	assert.Equal(t, 1, code)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInstallExhausted))
	assert.Equal(t, 0, h.fake.CallCount("cargo run"))
	assert.Equal(t, 0, h.fake.CallCount("mold -run cargo run"))
}

func TestRun_UnknownPlatformFallsBack(t *testing.T) {
	h := newHarness()
	h.resolver.Err = errors.New(errors.ErrPlatformUnknown, `unsupported Linux distribution "gentoo"`)

	code, err := h.run(t, "bench", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.resolver.Calls)
	assert.Empty(t, h.sleeper.Delays)
	assert.Equal(t, []string{"cargo bench"}, h.fake.RunCalls())
	assert.Contains(t, h.stderr.String(), `unsupported Linux distribution "gentoo"`)
}

func TestRun_AutoInstallDisabled(t *testing.T) {
	h := newHarness()

	h.cfg.Install.Auto = false

	code, err := h.run(t, "check", nil)

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"cargo check"}, h.fake.RunCalls())
	assert.Equal(t, 0, h.resolver.Calls)
	assert.Contains(t, h.stderr.String(), "automatic installation is disabled")
}

func TestRun_AutoInstallDisabledAbort(t *testing.T) {
	h := newHarness()
	h.cfg.Install.Auto = false
	h.cfg.Install.OnFailure = config.OnFailureAbort

	code, err := h.run(t, "check", nil)

	assert.Equal(t, 1, code)
	assert.True(t, errors.IsErrorCode(err, errors.ErrLinkerMissing))
	assert.Empty(t, h.fake.RunCalls())
}

func TestRun_LinkerDisabled(t *testing.T) {
	h := newHarness()
	h.cfg.Linker.Enabled = false

	code, err := h.run(t, "test", []string{"--", "--nocapture"})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"cargo test -- --nocapture"}, h.fake.RunCalls())
	assert.Empty(t, h.stderr.String())
}

func TestRun_UsageErrorsRunNothing(t *testing.T) {
	tests := []struct {
		name string
		sub  string
		args []string
	}{
		{"unknown", "deploy", nil},
		{"empty", "", nil},
		{"case sensitive", "BUILD", nil},
		{"pass-through without args", "cargo", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness()

			code, err := h.run(t, tt.sub, tt.args)

			assert.Equal(t, 1, code)
			assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
			assert.Empty(t, h.fake.RunCalls())
			assert.Equal(t, 0, h.resolver.Calls)
			assert.Empty(t, h.stderr.String(), "no presence check before validation")
		})
	}
}

func TestRun_PassThrough(t *testing.T) {
	h := newHarness()
	h.fake.Install("mold")

	code, err := h.run(t, "cargo", []string{"clippy", "--", "-D", "warnings"})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.fake.CallCount("mold -run cargo clippy -- -D warnings"))
}

func TestRun_PropagatesExitCode(t *testing.T) {
	h := newHarness()
	h.fake.Install("mold")
	h.fake.RunCodes["mold -run cargo test"] = []int{101}

	code, err := h.run(t, "test", nil)

	assert.Equal(t, 101, code)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnderlyingProcess))
}

func TestRun_DryRun(t *testing.T) {
	h := newHarness()

	code, err := h.run(t, "build", nil, func(o *commands.Options) {
		o.DryRun = true
		o.IsRoot = func() bool { return false }
	})

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Empty(t, h.fake.RunCalls())
	assert.Equal(t,
		"+ sudo apt-get update\n+ sudo apt-get install -y mold\n+ mold -run cargo build\n",
		h.stdout.String())
}

func TestRun_PlatformOverride(t *testing.T) {
	h := newHarness()
	h.cfg.Install.Platform = "manjaro"
	h.installsOnSuccess("pacman -Sy --noconfirm mold")

	code, err := h.run(t, "build", nil, func(o *commands.Options) { o.Resolver = nil })

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, 1, h.fake.CallCount("pacman -Sy --noconfirm mold"))
}

func TestRun_RequiresConfig(t *testing.T) {
	code, err := commands.Run(context.Background(), commands.Options{
		Request:   dispatcher.NewRequest("build", nil),
		Commander: testutil.NewFakeCommander(),
	})

	assert.Equal(t, 1, code)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInternal))
}
