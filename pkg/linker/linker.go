// Package linker checks whether the fast linker is reachable on PATH.
package linker

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/arthur-debert/mcargo/pkg/executor"
	"github.com/arthur-debert/mcargo/pkg/logging"
	"github.com/rs/zerolog"
)

// DefaultBinary is the linker mcargo wraps builds with.
const DefaultBinary = "mold"

// Probe answers whether the linker binary is installed.
type Probe struct {
	binary    string
	commander executor.Commander
	out       io.Writer
	logger    zerolog.Logger
}

// NewProbe creates a probe for binary. Status lines are written to out.
func NewProbe(binary string, commander executor.Commander, out io.Writer) *Probe {
	if binary == "" {
		binary = DefaultBinary
	}
	return &Probe{
		binary:    binary,
		commander: commander,
		out:       out,
		logger:    logging.GetLogger("linker"),
	}
}

// Binary returns the name of the probed binary
func (p *Probe) Binary() string {
	return p.binary
}

// IsInstalled searches PATH for the linker and, when found, asks it for its
// version to report on the status line. A binary whose version query fails
// still counts as installed.
func (p *Probe) IsInstalled(ctx context.Context) bool {
	path, err := p.commander.LookPath(p.binary)
	if err != nil {
		p.logger.Debug().Err(err).Str("binary", p.binary).Msg("Linker not on PATH")
		p.status("%s not found in PATH", p.binary)
		return false
	}

	version, err := p.Version(ctx)
	if err != nil {
		p.logger.Debug().Err(err).Str("path", path).Msg("Linker version query failed")
		version = "version unknown"
	}

	p.logger.Info().Str("path", path).Str("version", version).Msg("Linker found")
	p.status("%s found: %s", p.binary, version)
	return true
}

// Version runs `<binary> --version` and returns the first line of output.
func (p *Probe) Version(ctx context.Context) (string, error) {
	out, err := p.commander.Output(ctx, executor.NewCommand(p.binary, "--version"))
	if err != nil {
		return "", err
	}
	line := strings.TrimSpace(strings.SplitN(strings.TrimSpace(out), "\n", 2)[0])
	if line == "" {
		return "", fmt.Errorf("%s --version printed nothing", p.binary)
	}
	return line, nil
}

func (p *Probe) status(format string, args ...interface{}) {
	if p.out == nil {
		return
	}
	_, _ = fmt.Fprintf(p.out, format+"\n", args...)
}
