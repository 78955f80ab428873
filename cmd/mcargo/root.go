// Package mcargo implements the mcargo command line.
package mcargo

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/mcargo/internal/version"
	"github.com/arthur-debert/mcargo/pkg/commands"
	"github.com/arthur-debert/mcargo/pkg/config"
	"github.com/arthur-debert/mcargo/pkg/dispatcher"
	"github.com/arthur-debert/mcargo/pkg/errors"
	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/installer"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/arthur-debert/mcargo/pkg/paths"
	"github.com/arthur-debert/mcargo/pkg/registry"
	"github.com/arthur-debert/mcargo/pkg/ui"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Deps are the process-level collaborators of the command line. Zero values
// mean the real implementations.
type Deps struct {
	Commander executor.Commander
	Stdout    io.Writer
	Stderr    io.Writer

	// ProjectDir is searched for a project config file; "" is the working
	// directory.
	ProjectDir string

	Resolver installer.Resolver
	Sleep    installer.SleepFunc
	IsRoot   func() bool
}

func (d *Deps) defaults() {
	if d.Commander == nil {
		d.Commander = executor.NewOSCommander()
	}
	if d.Stdout == nil {
		d.Stdout = os.Stdout
	}
	if d.Stderr == nil {
		d.Stderr = os.Stderr
	}
}

// flags holds the root flag values
type flags struct {
	verbosity    int
	dryRun       bool
	noInstall    bool
	noLinker     bool
	configFile   string
	showConfig   bool
	sampleConfig bool
	color        string
}

// overrides turns flags into configuration keys
func (f *flags) overrides() map[string]interface{} {
	o := map[string]interface{}{}
	if f.noInstall {
		o["install.auto"] = false
	}
	if f.noLinker {
		o["linker.enabled"] = false
	}
	return o
}

// NewRootCmd creates and returns the root command
func NewRootCmd(deps Deps) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()
	// subcommands are listed in registry order
	cobra.EnableCommandSorting = false

	deps.defaults()
	reg := registry.Default()

	var (
		f   flags
		cfg *config.Config
	)

	rootCmd := &cobra.Command{
		Use:     "mcargo",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		Args:    cobra.ArbitraryArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logging.SetupLogger(f.verbosity, "")

			// a missing or unknown command is reported before the config is read
			if cmd == cmd.Root() && !f.showConfig && !f.sampleConfig {
				return rootArgsError(reg, args)
			}

			loaded, err := config.Load(config.LoadOptions{
				ConfigFile: f.configFile,
				ProjectDir: deps.ProjectDir,
				Overrides:  f.overrides(),
			})
			if err != nil {
				return err
			}
			cfg = loaded

			if cfg.Log.File {
				logging.SetupLogger(f.verbosity, paths.New().LogFilePath())
			}
			log.Debug().Str("command", cmd.Name()).Strs("sources", cfg.Sources).Msg("Command started")
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if done, err := printConfigAndExit(&f, cfg, deps.Stdout); done {
				return err
			}
			return rootArgsError(reg, args)
		},
		TraverseChildren:  true,
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
	}

	// Global flags, only recognised before the command
	rootCmd.Flags().CountVarP(&f.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.Flags().BoolVar(&f.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.Flags().BoolVar(&f.noInstall, "no-install", false, MsgFlagNoInstall)
	rootCmd.Flags().BoolVar(&f.noLinker, "no-linker", false, MsgFlagNoLinker)
	rootCmd.Flags().StringVar(&f.configFile, "config", "", MsgFlagConfig)
	rootCmd.Flags().BoolVar(&f.showConfig, "show-config", false, MsgFlagShowConfig)
	rootCmd.Flags().BoolVar(&f.sampleConfig, "sample-config", false, MsgFlagSampleConfig)
	rootCmd.Flags().StringVar(&f.color, "color", "auto", MsgFlagColor)

	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetVersionTemplate(fmt.Sprintf(MsgVersionFormat, version.Version, version.Commit, version.Date))
	rootCmd.SetUsageTemplate(MsgUsageTemplate)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	for _, desc := range reg.List() {
		desc := desc
		rootCmd.AddCommand(&cobra.Command{
			Use:                desc.Name,
			Short:              desc.Description,
			DisableFlagParsing: true,
			RunE: func(cmd *cobra.Command, args []string) error {
				if done, err := printConfigAndExit(&f, cfg, deps.Stdout); done {
					return err
				}
				printer, err := newPrinter(f.color, deps.Stderr)
				if err != nil {
					return err
				}

				ctx := cmd.Context()
				if ctx == nil {
					ctx = context.Background()
				}
				_, err = commands.Run(ctx, commands.Options{
					Request:   dispatcher.NewRequest(desc.Name, args),
					Config:    cfg,
					DryRun:    f.dryRun,
					Registry:  reg,
					Commander: deps.Commander,
					Printer:   printer,
					Stdout:    deps.Stdout,
					Resolver:  deps.Resolver,
					Sleep:     deps.Sleep,
					IsRoot:    deps.IsRoot,
				})
				return err
			},
		})
	}

	return rootCmd
}

// rootArgsError is the error for positional args that reached the root
// command: either none, or a first one that names no command.
func rootArgsError(reg *registry.Registry, args []string) error {
	if len(args) == 0 {
		return errNoCommand
	}
	// only reachable when "--" hid the command from cobra
	if reg.IsValidCommand(args[0]) {
		return errors.Newf(errors.ErrUsage, MsgErrMisplacedCommand, args[0]).WithDetail("command", args[0])
	}
	return unknownCommand(args[0])
}

func unknownCommand(name string) error {
	return errors.Newf(errors.ErrUsage, MsgErrUnknownCommand, name).WithDetail("command", name)
}

// flagError classifies an error cobra raised while parsing root flags. When
// the first positional argument is not a command, that is what gets reported,
// since its flags were never meant for mcargo.
func flagError(fs *pflag.FlagSet, args []string, err error) error {
	if name := firstPositional(fs, args); name != "" && !registry.Default().IsValidCommand(name) {
		return unknownCommand(name)
	}
	return errors.Wrap(err, errors.ErrUsage, "invalid arguments")
}

// firstPositional returns the first argument that is neither a root flag nor
// the value of one.
func firstPositional(fs *pflag.FlagSet, args []string) string {
	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "--":
			if i+1 < len(args) {
				return args[i+1]
			}
			return ""
		case strings.HasPrefix(arg, "--"):
			name := arg[2:]
			if strings.Contains(name, "=") {
				continue
			}
			if fl := fs.Lookup(name); fl != nil && fl.NoOptDefVal == "" {
				i++
			}
		case strings.HasPrefix(arg, "-") && len(arg) > 1:
			if len(arg) == 2 {
				if fl := fs.ShorthandLookup(arg[1:]); fl != nil && fl.NoOptDefVal == "" {
					i++
				}
			}
		default:
			return arg
		}
	}
	return ""
}

// errNoCommand is reported when mcargo is run without a command; only the
// usage is shown for it.
var errNoCommand = errors.New(errors.ErrUsage, MsgErrNoCommand)

// printConfigAndExit handles --show-config and --sample-config.
func printConfigAndExit(f *flags, cfg *config.Config, out io.Writer) (bool, error) {
	switch {
	case f.sampleConfig:
		if _, err := fmt.Fprintln(out, config.SampleConfig()); err != nil {
			return true, errors.Wrap(err, errors.ErrInternal, "writing sample config")
		}
		return true, nil
	case f.showConfig:
		text, err := config.ToTOML(cfg)
		if err != nil {
			return true, err
		}
		if _, err := fmt.Fprint(out, text); err != nil {
			return true, errors.Wrap(err, errors.ErrInternal, "writing config")
		}
		return true, nil
	}
	return false, nil
}

func newPrinter(color string, out io.Writer) (*ui.Printer, error) {
	format, err := ui.ParseFormat(color)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrUsage, MsgErrColor, color)
	}
	return ui.NewPrinter(format, out), nil
}

// errorPrinter honours --color for the final error line. An unparsable value
// falls back to plain text.
func errorPrinter(rootCmd *cobra.Command, out io.Writer) *ui.Printer {
	color, _ := rootCmd.Flags().GetString("color")
	printer, err := newPrinter(color, out)
	if err != nil {
		return ui.NewPrinter(ui.FormatText, out)
	}
	return printer
}

// Execute runs the command line with args and returns the process exit code.
// Errors are printed as a single line on stderr, followed by the usage for
// usage errors. A failing cargo has already reported its own error, so only
// its exit code is propagated.
func Execute(args []string, deps Deps) int {
	deps.defaults()
	rootCmd := NewRootCmd(deps)
	rootCmd.SetArgs(args)

	err := rootCmd.Execute()
	if err == nil {
		return 0
	}
	// mcargo's own errors all carry a code; cobra's are flag parsing errors
	if errors.GetErrorCode(err) == errors.ErrUnknown {
		err = flagError(rootCmd.Flags(), args, err)
	}

	printer := errorPrinter(rootCmd, deps.Stderr)

	switch {
	case err == errNoCommand:
		_, _ = fmt.Fprint(deps.Stderr, rootCmd.UsageString())
	case errors.IsErrorCode(err, errors.ErrUnderlyingProcess):
	case errors.IsErrorCode(err, errors.ErrUsage):
		printer.Error(err)
		_, _ = fmt.Fprint(deps.Stderr, rootCmd.UsageString())
	default:
		printer.Error(err)
	}

	return errors.ExitCodeOf(err)
}
