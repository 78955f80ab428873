package installer

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/rs/zerolog"
)

// Defaults used when Options leaves a field unset.
const (
	DefaultMaxAttempts = 3
	DefaultPackage     = "mold"
)

// State is a node of the installation state machine.
type State int

const (
	Idle State = iota
	Attempting
	Retrying
	Success
	TerminallyFailed
)

// String returns the state name
func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Attempting:
		return "attempting"
	case Retrying:
		return "retrying"
	case Success:
		return "success"
	case TerminallyFailed:
		return "terminally-failed"
	default:
		return "unknown"
	}
}

// Transition records entering State at attempt Index.
type Transition struct {
	State State
	Index int
}

// Attempt is the retry cursor of one installation chain.
type Attempt struct {
	Index       int
	MaxAttempts int
	Delay       time.Duration
}

// Exhausted reports whether no attempts are left.
func (a Attempt) Exhausted() bool {
	return a.Index >= a.MaxAttempts
}

// Next returns the cursor for the following attempt.
func (a Attempt) Next() Attempt {
	a.Index++
	return a
}

// Resolver identifies the host platform.
type Resolver interface {
	Resolve() (distro.Platform, error)
}

// Checker reports whether the linker is discoverable.
type Checker interface {
	IsInstalled(ctx context.Context) bool
}

// SleepFunc blocks for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Options configures an installation chain.
type Options struct {
	MaxAttempts int
	Delay       time.Duration
	UseSudo     bool
	Package     string
}

// Deps are the installer's collaborators.
type Deps struct {
	Commander executor.Commander
	Resolver  Resolver
	Checker   Checker

	// Sleep defaults to ContextSleep.
	Sleep SleepFunc

	// IsRoot defaults to checking the effective uid; sudo is skipped for root.
	IsRoot func() bool

	// Out receives progress lines; may be nil.
	Out io.Writer
}

// Result describes a finished installation chain.
type Result struct {
	Platform    distro.Platform
	Attempts    int
	Transitions []Transition
	Failures    []error
}

// Final returns the terminal state of the chain.
func (r *Result) Final() State {
	if len(r.Transitions) == 0 {
		return Idle
	}
	return r.Transitions[len(r.Transitions)-1].State
}

// Installer drives the installation state machine.
type Installer struct {
	opts   Options
	deps   Deps
	logger zerolog.Logger
}

// New creates an installer, filling unset options and deps with defaults.
func New(opts Options, deps Deps) *Installer {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.Delay < 0 {
		opts.Delay = 0
	}
	if opts.Package == "" {
		opts.Package = DefaultPackage
	}
	if deps.Sleep == nil {
		deps.Sleep = ContextSleep
	}
	if deps.IsRoot == nil {
		deps.IsRoot = func() bool { return os.Geteuid() == 0 }
	}
	return &Installer{
		opts:   opts,
		deps:   deps,
		logger: logging.GetLogger("installer"),
	}
}

// Options returns the effective options
func (i *Installer) Options() Options {
	return i.opts
}

// UsesSudo reports whether package manager steps are prefixed with sudo.
func (i *Installer) UsesSudo() bool {
	return i.opts.UseSudo && !i.deps.IsRoot()
}

// Install runs the state machine to a terminal state. The returned error is
// nil only on Success.
func (i *Installer) Install(ctx context.Context) (*Result, error) {
	done := logging.LogOperationStart(i.logger, "install")
	defer done()

	res := &Result{Transitions: []Transition{{State: Idle}}}
	attempt := Attempt{MaxAttempts: i.opts.MaxAttempts, Delay: i.opts.Delay}

	for {
		if attempt.Exhausted() {
			i.enter(res, TerminallyFailed, attempt.Index)
			err := errors.Wrapf(joinFailures(res.Failures), errors.ErrInstallExhausted,
				"%s installation failed after %d attempts", i.opts.Package, attempt.MaxAttempts).
				WithDetail("attempts", attempt.MaxAttempts)
			return res, err
		}

		i.enter(res, Attempting, attempt.Index)
		res.Attempts = attempt.Index + 1

		if attempt.Index > 0 && attempt.Delay > 0 {
			i.logger.Debug().Dur("delay", attempt.Delay).Int("attempt", attempt.Index+1).Msg("Waiting before retry")
			if err := i.deps.Sleep(ctx, attempt.Delay); err != nil {
				i.enter(res, TerminallyFailed, attempt.Index)
				return res, errors.Wrap(err, errors.ErrInstallInterrupted, "installation interrupted")
			}
		}

		platform, err := i.deps.Resolver.Resolve()
		if err != nil {
			// the host itself is unsupported; retrying cannot help
			res.Failures = append(res.Failures, err)
			i.enter(res, TerminallyFailed, attempt.Index)
			return res, err
		}
		res.Platform = platform

		err = i.attempt(ctx, platform, attempt)
		if err == nil {
			i.enter(res, Success, attempt.Index)
			return res, nil
		}

		i.logger.Warn().Err(err).Int("attempt", attempt.Index+1).Int("maxAttempts", attempt.MaxAttempts).
			Msg("Installation attempt failed")
		res.Failures = append(res.Failures, fmt.Errorf("[attempt %d] %w", attempt.Index+1, err))

		if ctx.Err() != nil {
			i.enter(res, TerminallyFailed, attempt.Index)
			return res, errors.Wrap(ctx.Err(), errors.ErrInstallInterrupted, "installation interrupted")
		}

		attempt = attempt.Next()
		i.enter(res, Retrying, attempt.Index)
	}
}

// attempt runs one pass of the platform plan and verifies the result.
func (i *Installer) attempt(ctx context.Context, platform distro.Platform, attempt Attempt) error {
	cmds, err := Plan(platform, i.opts.Package, i.UsesSudo())
	if err != nil {
		return err
	}

	i.progress("Installing %s with %s (attempt %d/%d)",
		i.opts.Package, PackageManager(platform), attempt.Index+1, attempt.MaxAttempts)

	for _, cmd := range cmds {
		code, err := i.deps.Commander.Run(ctx, cmd)
		if err != nil {
			return errors.Wrapf(err, errors.ErrPackageManager, "%s could not be run", cmd.String()).
				WithDetail("command", cmd.String())
		}
		if code != 0 {
			return errors.Newf(errors.ErrPackageManager, "%s exited with status %d", cmd.String(), code).
				WithDetail("command", cmd.String()).
				WithDetail("exit_code", code)
		}
	}

	if !i.deps.Checker.IsInstalled(ctx) {
		return errors.Newf(errors.ErrPostInstallVerify,
			"%s reported success but %s is still not on PATH", PackageManager(platform), i.opts.Package)
	}
	return nil
}

func (i *Installer) enter(res *Result, state State, index int) {
	res.Transitions = append(res.Transitions, Transition{State: state, Index: index})
	i.logger.Debug().Str("state", state.String()).Int("index", index).Msg("Installer transition")
}

func (i *Installer) progress(format string, args ...interface{}) {
	if i.deps.Out == nil {
		return
	}
	_, _ = fmt.Fprintf(i.deps.Out, format+"\n", args...)
}

func joinFailures(failures []error) error {
	if len(failures) == 0 {
		return stderrors.New("no attempts were made")
	}
	return stderrors.Join(failures...)
}

// ContextSleep sleeps for d, returning early with ctx.Err() on cancellation.
func ContextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
