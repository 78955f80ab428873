// Package ui renders mcargo's own user-facing lines (status, warnings and
// errors) on a writer, styled when the writer is a color terminal.
package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/mcargo/pkg/ui/output/styles"
)

// Printer writes single-line messages in a given format.
type Printer struct {
	out    io.Writer
	format Format
}

// NewPrinter creates a printer. FormatAuto is resolved against out when it is
// a file, and falls back to plain text otherwise.
func NewPrinter(format Format, out io.Writer) *Printer {
	if format == FormatAuto {
		format = FormatText
		if file, ok := out.(*os.File); ok {
			format = DetectFormat(file)
		}
	}
	return &Printer{out: out, format: format}
}

// Format returns the resolved output format
func (p *Printer) Format() Format {
	return p.format
}

// Writer returns the underlying writer
func (p *Printer) Writer() io.Writer {
	return p.out
}

// Status prints an informational line
func (p *Printer) Status(format string, args ...interface{}) {
	p.line("Info", "", fmt.Sprintf(format, args...))
}

// Success prints a success line
func (p *Printer) Success(format string, args ...interface{}) {
	p.line("Success", "", fmt.Sprintf(format, args...))
}

// Warn prints a warning line
func (p *Printer) Warn(format string, args ...interface{}) {
	p.line("Warning", "warning: ", fmt.Sprintf(format, args...))
}

// Error prints an error line
func (p *Printer) Error(err error) {
	p.line("Error", "error: ", err.Error())
}

func (p *Printer) line(style, prefix, msg string) {
	text := prefix + msg
	if p.format == FormatTerminal {
		text = styles.GetStyle(style).Render(text)
	}
	_, _ = fmt.Fprintln(p.out, text)
}
