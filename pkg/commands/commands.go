// Package commands runs the mcargo pipeline for one invocation:
//
//	validate -> presence check -> install (when missing) -> dispatch
//
// It wires the registry, linker probe, installer and dispatcher together
// according to the loaded configuration.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/mcargo/pkg/config"
	"github.com/arthur-debert/mcargo/pkg/dispatcher"
	"github.com/arthur-debert/mcargo/pkg/distro"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/installer"
	"github.com/arthur-debert/mcargo/pkg/linker"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/arthur-debert/mcargo/pkg/registry"
	"github.com/arthur-debert/mcargo/pkg/ui"
)

// Options contains everything one invocation needs.
type Options struct {
	Request dispatcher.InvocationRequest
	Config  *config.Config

	// DryRun prints the commands instead of running them.
	DryRun bool

	Registry  *registry.Registry
	Commander executor.Commander
	Printer   *ui.Printer
	// Stdout receives dry-run command lines; nil means os.Stdout.
	Stdout io.Writer

	// Resolver overrides the platform resolution derived from Config.
	Resolver installer.Resolver
	// Sleep and IsRoot are passed to the installer; nil means the defaults.
	Sleep  installer.SleepFunc
	IsRoot func() bool
}

// Run executes the pipeline and returns the process exit code. The error is
// nil only when the exit code is 0.
func Run(ctx context.Context, opts Options) (int, error) {
	logger := logging.GetLogger("commands")
	done := logging.LogOperationStart(logger, "run")
	defer done()

	if opts.Registry == nil {
		opts.Registry = registry.Default()
	}
	if opts.Commander == nil {
		opts.Commander = executor.NewOSCommander()
	}
	if opts.Printer == nil {
		opts.Printer = ui.NewPrinter(ui.FormatAuto, os.Stderr)
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	cfg := opts.Config
	if cfg == nil {
		return 1, errors.New(errors.ErrInternal, "no configuration loaded")
	}

	req := opts.Request
	if !opts.Registry.IsValidCommand(req.Subcommand) {
		return 1, errors.Newf(errors.ErrUsage, "unknown command %q", req.Subcommand).
			WithDetail("command", req.Subcommand)
	}

	dispatchOpts := dispatcher.Options{
		Registry:     opts.Registry,
		Commander:    opts.Commander,
		LinkerBinary: cfg.Linker.Binary,
		LinkerArgs:   cfg.Linker.Args,
		BuildTool:    cfg.BuildTool.Binary,
		UseLinker:    cfg.Linker.Enabled,
		DryRun:       opts.DryRun,
		Out:          opts.Stdout,
	}

	// usage errors come before any probing or installing
	if _, err := dispatcher.New(dispatchOpts).Command(req); err != nil {
		return 1, err
	}

	if cfg.Linker.Enabled {
		useLinker, err := ensureLinker(ctx, opts)
		if err != nil {
			return errors.ExitCodeOf(err), err
		}
		dispatchOpts.UseLinker = useLinker
	}

	logging.LogCommand(req.Subcommand, req.TrailingArgs)
	return dispatcher.New(dispatchOpts).Dispatch(ctx, req)
}

// ensureLinker makes sure the linker is available and reports whether the
// dispatch should go through it.
func ensureLinker(ctx context.Context, opts Options) (bool, error) {
	logger := logging.GetLogger("commands")
	cfg := opts.Config
	out := opts.Printer.Writer()

	probe := linker.NewProbe(cfg.Linker.Binary, opts.Commander, out)
	if probe.IsInstalled(ctx) {
		return true, nil
	}

	if !cfg.Install.Auto {
		err := errors.Newf(errors.ErrLinkerMissing, "%s is not installed and automatic installation is disabled",
			cfg.Linker.Binary)
		return onFailure(opts, err)
	}

	resolver := opts.Resolver
	if resolver == nil {
		if p, ok := cfg.PlatformOverride(); ok {
			resolver = distro.Static(p)
		} else {
			resolver = distro.NewResolver(cfg.Install.OSRelease)
		}
	}

	inst := installer.New(installer.Options{
		MaxAttempts: cfg.Install.MaxAttempts,
		Delay:       cfg.Install.Delay,
		UseSudo:     cfg.Install.UseSudo,
		Package:     cfg.Install.Package,
	}, installer.Deps{
		Commander: opts.Commander,
		Resolver:  resolver,
		Checker:   linker.NewProbe(cfg.Linker.Binary, opts.Commander, nil),
		Sleep:     opts.Sleep,
		IsRoot:    opts.IsRoot,
		Out:       out,
	})

	if opts.DryRun {
		return true, printPlan(opts, inst, resolver)
	}

	res, err := inst.Install(ctx)
	if err != nil {
		logger.Warn().Err(err).Int("attempts", res.Attempts).Msg("Linker installation failed")
		return onFailure(opts, err)
	}
	opts.Printer.Success("%s installed with %s", cfg.Install.Package, installer.PackageManager(res.Platform))
	return true, nil
}

// onFailure applies install.on_failure to a linker that cannot be used.
func onFailure(opts Options, err error) (bool, error) {
	if opts.Config.Install.OnFailure == config.OnFailureAbort {
		return false, err
	}
	opts.Printer.Warn("%v; running %s without %s", err, opts.Config.BuildTool.Binary, opts.Config.Linker.Binary)
	return false, nil
}

// printPlan shows the installation commands a real run would execute.
func printPlan(opts Options, inst *installer.Installer, resolver installer.Resolver) error {
	platform, err := resolver.Resolve()
	if err != nil {
		opts.Printer.Warn("%v", err)
		return nil
	}
	cmds, err := installer.Plan(platform, inst.Options().Package, inst.UsesSudo())
	if err != nil {
		return err
	}
	opts.Printer.Status("%s would be installed with %s", inst.Options().Package, installer.PackageManager(platform))
	lines := make([]string, len(cmds))
	for i, c := range cmds {
		lines[i] = "+ " + c.String()
	}
	_, _ = fmt.Fprintln(opts.Stdout, strings.Join(lines, "\n"))
	return nil
}
