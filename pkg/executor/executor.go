package executor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"

	apperrors "github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/rs/zerolog"
)

// ExitCodeNotRun is reported when a command could not be started at all,
// matching the shell convention for "command not found".
const ExitCodeNotRun = 127

// exitCodeSignalBase is added to the signal number of a child killed by a
// signal, as shells do.
const exitCodeSignalBase = 128

// Command is a program name plus its argument vector.
type Command struct {
	Name string
	Args []string
}

// NewCommand builds a Command, copying args.
func NewCommand(name string, args ...string) Command {
	return Command{Name: name, Args: append([]string(nil), args...)}
}

// Argv returns the full argument vector including the program name.
func (c Command) Argv() []string {
	return append([]string{c.Name}, c.Args...)
}

// String renders the command line for display and logging.
func (c Command) String() string {
	return strings.Join(c.Argv(), " ")
}

// Commander runs external programs.
type Commander interface {
	// LookPath searches the execution path for name.
	LookPath(name string) (string, error)

	// Output runs cmd and returns its captured stdout. A non-zero exit is
	// returned as an error.
	Output(ctx context.Context, cmd Command) (string, error)

	// Run executes cmd with the standard streams inherited and returns the
	// child's exit code. err is only set when the process could not be run.
	Run(ctx context.Context, cmd Command) (int, error)
}

// OSCommander is the os/exec backed Commander.
type OSCommander struct {
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Env    []string

	logger zerolog.Logger
}

// NewOSCommander creates a Commander wired to the process' own std streams.
func NewOSCommander() *OSCommander {
	return &OSCommander{
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		logger: logging.GetLogger("executor"),
	}
}

// LookPath implements Commander.
func (c *OSCommander) LookPath(name string) (string, error) {
	path, err := exec.LookPath(name)
	c.logger.Trace().Str("binary", name).Str("path", path).Err(err).Msg("Looked up binary")
	return path, err
}

// Output implements Commander.
func (c *OSCommander) Output(ctx context.Context, cmd Command) (string, error) {
	logging.LogCommand(cmd.Name, cmd.Args)

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Env = c.Env
	var stderr bytes.Buffer
	proc.Stderr = &stderr

	out, err := proc.Output()
	if err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = "command failed"
		}
		return string(out), apperrors.Wrapf(err, apperrors.ErrProcessStart, "%s: %s", cmd.Name, msg).
			WithDetail("command", cmd.String())
	}
	return string(out), nil
}

// Run implements Commander.
func (c *OSCommander) Run(ctx context.Context, cmd Command) (int, error) {
	logging.LogCommand(cmd.Name, cmd.Args)

	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Env = c.Env
	proc.Stdin = c.Stdin
	proc.Stdout = c.Stdout
	proc.Stderr = c.Stderr

	err := proc.Run()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitCode(exitErr)
		c.logger.Debug().Str("command", cmd.String()).Int("exitCode", code).Msg("Command exited non-zero")
		return code, nil
	}

	c.logger.Debug().Err(err).Str("command", cmd.String()).Msg("Command could not be started")
	return ExitCodeNotRun, apperrors.Wrapf(err, apperrors.ErrProcessStart, "cannot run %s", cmd.Name).
		WithDetail("command", cmd.String())
}

// exitCode returns the child's status, or 128+signal when it was killed.
func exitCode(exitErr *exec.ExitError) int {
	if code := exitErr.ExitCode(); code >= 0 {
		return code
	}
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return exitCodeSignalBase + int(status.Signal())
	}
	return 1
}

// Verify interface compliance
var _ Commander = (*OSCommander)(nil)
