package mcargo

import (
	_ "embed"
	"strings"
)

// Short messages (one-liners)
const (
	MsgRootShort     = "Run cargo through the mold linker, installing mold when missing"
	MsgVersionFormat = "mcargo %s\n  commit: %s\n  built:  %s\n"

	// Flag descriptions
	MsgFlagVerbose      = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun       = "Print the commands instead of running them"
	MsgFlagNoInstall    = "Never install the linker, run cargo without it when missing"
	MsgFlagNoLinker     = "Run cargo directly, without the linker"
	MsgFlagConfig       = "Use this config file instead of $XDG_CONFIG_HOME/mcargo/config.toml"
	MsgFlagShowConfig   = "Print the effective configuration and exit"
	MsgFlagSampleConfig = "Print a commented config file and exit"
	MsgFlagColor        = "Color output: auto, always or never"

	// Error messages
	MsgErrNoCommand        = "no command specified"
	MsgErrUnknownCommand   = "unknown command %q"
	MsgErrMisplacedCommand = "command %q must come before any \"--\""
	MsgErrColor            = "invalid --color value %q"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/usage-template.txt
	msgUsageTemplateRaw string
	MsgUsageTemplate    = strings.TrimSpace(msgUsageTemplateRaw) + "\n"
)
