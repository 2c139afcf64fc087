// Package diag prints progress, diagnostics and diffs for the command line.
package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"martianoff/assocgen/assocerr"
	"martianoff/assocgen/internal/config"
)

// Printer writes results to out and diagnostics to errOut.
type Printer struct {
	out     io.Writer
	errOut  io.Writer
	verbose bool

	errorC *color.Color
	warnC  *color.Color
	addC   *color.Color
	delC   *color.Color
	metaC  *color.Color
}

// NewPrinter creates a Printer. mode is one of the config color modes.
func NewPrinter(out, errOut io.Writer, mode string, verbose bool) *Printer {
	p := &Printer{
		out:     out,
		errOut:  errOut,
		verbose: verbose,
		errorC:  color.New(color.FgRed, color.Bold),
		warnC:   color.New(color.FgYellow),
		addC:    color.New(color.FgGreen),
		delC:    color.New(color.FgRed),
		metaC:   color.New(color.FgCyan),
	}
	enabled := UseColor(mode, errOut)
	for _, c := range []*color.Color{p.errorC, p.warnC, p.addC, p.delC, p.metaC} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

// UseColor decides whether output to w is colored.
func UseColor(mode string, w io.Writer) bool {
	switch mode {
	case config.ColorAlways:
		return true
	case config.ColorNever:
		return false
	}
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// Infof prints a progress line in verbose mode.
func (p *Printer) Infof(format string, args ...any) {
	if !p.verbose {
		return
	}
	fmt.Fprintf(p.errOut, format+"\n", args...)
}

// Printf prints a result line.
func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}

// Warnf prints a warning.
func (p *Printer) Warnf(format string, args ...any) {
	fmt.Fprintf(p.errOut, "%s %s\n", p.warnC.Sprint("Warning:"), fmt.Sprintf(format, args...))
}

// Error prints every diagnostic carried by err on its own line.
func (p *Printer) Error(err error) {
	for _, e := range assocerr.Flatten(err) {
		fmt.Fprintf(p.errOut, "%s %v\n", p.errorC.Sprint("Error:"), e)
	}
}
