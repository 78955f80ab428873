package dispatcher_test

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/arthur-debert/mcargo/pkg/dispatcher"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcher(commander executor.Commander, useLinker bool) *dispatcher.Dispatcher {
	return dispatcher.New(dispatcher.Options{
		Commander: commander,
		UseLinker: useLinker,
	})
}

func TestNewRequest_CopiesArgs(t *testing.T) {
	args := []string{"--release"}
	req := dispatcher.NewRequest("build", args)
	args[0] = "--debug"

	assert.Equal(t, []string{"--release"}, req.TrailingArgs)
}

func TestCommand(t *testing.T) {
	tests := []struct {
		name      string
		sub       string
		args      []string
		useLinker bool
		want      string
	}{
		{"build with args keeps order", "build", []string{"--release", "-p", "core"}, true, "mold -run cargo build --release -p core"},
		{"check without args", "check", nil, true, "mold -run cargo check"},
		{"run forwards double dash", "run", []string{"--", "--port", "80"}, true, "mold -run cargo run -- --port 80"},
		{"pass-through drops subcommand", "cargo", []string{"clippy", "--all"}, true, "mold -run cargo clippy --all"},
		{"fallback without linker", "test", []string{"--lib"}, false, "cargo test --lib"},
		{"pass-through without linker", "cargo", []string{"fmt"}, false, "cargo fmt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := newDispatcher(testutil.NewFakeCommander(), tt.useLinker)

			cmd, err := d.Command(dispatcher.NewRequest(tt.sub, tt.args))

			require.NoError(t, err)
			assert.Equal(t, tt.want, cmd.String())
		})
	}
}

func TestCommand_CustomBinaries(t *testing.T) {
	d := dispatcher.New(dispatcher.Options{
		LinkerBinary: "sold",
		LinkerArgs:   []string{"--run"},
		BuildTool:    "cross",
		UseLinker:    true,
	})

	cmd, err := d.Command(dispatcher.NewRequest("build", []string{"--target", "x86_64-unknown-linux-gnu"}))

	require.NoError(t, err)
	assert.Equal(t, "sold", cmd.Name)
	assert.Equal(t, []string{"--run", "cross", "build", "--target", "x86_64-unknown-linux-gnu"}, cmd.Args)
}

func TestCommand_UsageErrors(t *testing.T) {
	d := newDispatcher(testutil.NewFakeCommander(), true)

	_, err := d.Command(dispatcher.NewRequest("deploy", nil))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
	assert.Contains(t, err.Error(), `unknown command "deploy"`)

	_, err = d.Command(dispatcher.NewRequest("cargo", nil))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))

	_, err = d.Command(dispatcher.NewRequest("Build", nil))
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
}

func TestDispatch_PassThroughWithoutArgsRunsNothing(t *testing.T) {
	fake := testutil.NewFakeCommander()
	d := newDispatcher(fake, true)

	code, err := d.Dispatch(context.Background(), dispatcher.NewRequest("cargo", []string{}))

	assert.Equal(t, 1, code)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUsage))
	assert.Empty(t, fake.RunCalls())
}

func TestDispatch_Success(t *testing.T) {
	fake := testutil.NewFakeCommander()
	d := newDispatcher(fake, true)

	code, err := d.Dispatch(context.Background(), dispatcher.NewRequest("build", []string{"--release"}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, []string{"mold -run cargo build --release"}, fake.RunCalls())
}

func TestDispatch_PropagatesExitCode(t *testing.T) {
	fake := testutil.NewFakeCommander()
	fake.RunCodes["mold -run cargo test"] = []int{101}
	d := newDispatcher(fake, true)

	code, err := d.Dispatch(context.Background(), dispatcher.NewRequest("test", nil))

	assert.Equal(t, 101, code)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnderlyingProcess))
	assert.Equal(t, 101, errors.ExitCodeOf(err))
}

func TestDispatch_StartFailure(t *testing.T) {
	fake := testutil.NewFakeCommander()
	fake.RunErrs["mold -run cargo bench"] = stderrors.New("exec: \"mold\": executable file not found in $PATH")
	d := newDispatcher(fake, true)

	code, err := d.Dispatch(context.Background(), dispatcher.NewRequest("bench", nil))

	assert.Equal(t, executor.ExitCodeNotRun, code)
	assert.True(t, errors.IsErrorCode(err, errors.ErrProcessStart))
	assert.Equal(t, executor.ExitCodeNotRun, errors.ExitCodeOf(err))
}

func TestDispatch_DryRun(t *testing.T) {
	fake := testutil.NewFakeCommander()
	var out bytes.Buffer
	d := dispatcher.New(dispatcher.Options{
		Commander: fake,
		UseLinker: true,
		DryRun:    true,
		Out:       &out,
	})

	code, err := d.Dispatch(context.Background(), dispatcher.NewRequest("run", []string{"--bin", "server"}))

	require.NoError(t, err)
	assert.Equal(t, 0, code)
	assert.Equal(t, "+ mold -run cargo run --bin server\n", out.String())
	assert.Empty(t, fake.RunCalls())
}
