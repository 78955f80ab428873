// Package dispatcher turns a validated subcommand into the cargo invocation,
// wrapped by the linker, and runs it.
// It is the last stage of the pipeline; everything before it decides
// whether the linker prefix is used.
package dispatcher

import (
	"context"
	"fmt"
	"io"

	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/arthur-debert/mcargo/pkg/registry"
)

// Defaults for the assembled command line.
const (
	DefaultBuildTool = "cargo"
	DefaultLinker    = "mold"
)

// DefaultLinkerArgs makes the linker wrap the build tool process.
var DefaultLinkerArgs = []string{"-run"}

// InvocationRequest is one parsed command line. Build it with NewRequest.
type InvocationRequest struct {
	Subcommand   string
	TrailingArgs []string
}

// NewRequest creates a request, copying args so later changes by the caller
// are not observed.
func NewRequest(subcommand string, args []string) InvocationRequest {
	return InvocationRequest{
		Subcommand:   subcommand,
		TrailingArgs: append([]string(nil), args...),
	}
}

// Options contains the dispatcher configuration.
type Options struct {
	Registry     *registry.Registry
	Commander    executor.Commander
	LinkerBinary string
	LinkerArgs   []string
	BuildTool    string

	// UseLinker false runs the build tool directly.
	UseLinker bool
	DryRun    bool

	// Out receives dry-run lines; may be nil.
	Out io.Writer
}

// Dispatcher assembles and runs build tool invocations.
type Dispatcher struct {
	opts Options
}

// New creates a dispatcher, filling unset options with defaults.
func New(opts Options) *Dispatcher {
	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.LinkerBinary == "" {
		opts.LinkerBinary = DefaultLinker
	}
	if opts.LinkerArgs == nil {
		opts.LinkerArgs = DefaultLinkerArgs
	}
	if opts.BuildTool == "" {
		opts.BuildTool = DefaultBuildTool
	}
	return &Dispatcher{opts: opts}
}

// Command assembles the invocation for req without running it.
//
//	pass-through: <linker> <linker args> cargo <args...>
//	otherwise:    <linker> <linker args> cargo <sub> <args...>
func (d *Dispatcher) Command(req InvocationRequest) (executor.Command, error) {
	desc, ok := d.opts.Registry.Lookup(req.Subcommand)
	if !ok {
		return executor.Command{}, errors.Newf(errors.ErrUsage, "unknown command %q", req.Subcommand).
			WithDetail("command", req.Subcommand)
	}

	var tail []string
	if desc.PassThrough {
		if len(req.TrailingArgs) == 0 {
			return executor.Command{}, errors.Newf(errors.ErrUsage,
				"%q needs at least one argument to pass to %s", desc.Name, d.opts.BuildTool).
				WithDetail("command", desc.Name)
		}
		tail = req.TrailingArgs
	} else {
		tail = append([]string{desc.Name}, req.TrailingArgs...)
	}

	if !d.opts.UseLinker {
		return executor.NewCommand(d.opts.BuildTool, tail...), nil
	}

	args := make([]string, 0, len(d.opts.LinkerArgs)+1+len(tail))
	args = append(args, d.opts.LinkerArgs...)
	args = append(args, d.opts.BuildTool)
	args = append(args, tail...)
	return executor.NewCommand(d.opts.LinkerBinary, args...), nil
}

// Dispatch runs the invocation for req and returns the child's exit code.
// A non-zero exit is returned as an ErrUnderlyingProcess error carrying that
// code; a child that could not be started is ErrProcessStart with exit code
// 127.
func (d *Dispatcher) Dispatch(ctx context.Context, req InvocationRequest) (int, error) {
	logger := logging.GetLogger("dispatcher")

	cmd, err := d.Command(req)
	if err != nil {
		return 1, err
	}

	logger.Debug().
		Str("subcommand", req.Subcommand).
		Strs("args", req.TrailingArgs).
		Bool("useLinker", d.opts.UseLinker).
		Bool("dryRun", d.opts.DryRun).
		Msg("Dispatching command")

	if d.opts.DryRun {
		if d.opts.Out != nil {
			_, _ = fmt.Fprintf(d.opts.Out, "+ %s\n", cmd.String())
		}
		return 0, nil
	}

	code, err := d.opts.Commander.Run(ctx, cmd)
	if err != nil {
		return executor.ExitCodeNotRun, errors.Wrapf(err, errors.ErrProcessStart, "could not run %s", cmd.Name).
			WithDetail("command", cmd.String()).
			WithExitCode(executor.ExitCodeNotRun)
	}
	if code != 0 {
		return code, errors.Newf(errors.ErrUnderlyingProcess, "%s exited with status %d", cmd.String(), code).
			WithDetail("command", cmd.String()).
			WithExitCode(code)
	}

	logger.Info().Str("command", cmd.String()).Msg("Command completed")
	return 0, nil
}
