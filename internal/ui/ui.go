// Package ui provides stderr-based output for shipyard commands.
package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// ANSI color codes.
const (
	reset   = "\033[0m"
	bold    = "\033[1m"
	dim     = "\033[2m"
	blue    = "\033[34m"
	yellow  = "\033[33m"
	green   = "\033[32m"
	red     = "\033[31m"
	cyan    = "\033[36m"
	magenta = "\033[35m"
)

type Printer struct {
	w io.Writer
}

func New() *Printer {
	return &Printer{w: os.Stderr}
}

// NewWithWriter returns a Printer writing to w; used by tests.
func NewWithWriter(w io.Writer) *Printer {
	return &Printer{w: w}
}

func (p *Printer) StageStart(name string) {
	fmt.Fprintf(p.w, "\n"+bold+magenta+"── %s ──"+reset+"\n", name)
}

func (p *Printer) StageDone(name string, elapsed time.Duration) {
	fmt.Fprintf(p.w, green+"✓ %s"+reset+dim+" (%.1fs)"+reset+"\n", name, elapsed.Seconds())
}

// Skip reports an idempotent no-op (already provisioned, notes already
// staged). Skips are not errors.
func (p *Printer) Skip(what, reason string) {
	fmt.Fprintf(p.w, yellow+"– %s skipped"+reset+dim+" (%s)"+reset+"\n", what, reason)
}

func (p *Printer) PackageStart(name string) {
	fmt.Fprintf(p.w, blue+bold+"▶ %s"+reset+dim+" building..."+reset+"\n", name)
}

func (p *Printer) PackageDone(name string, elapsed time.Duration) {
	fmt.Fprintf(p.w, blue+"✓ %s"+reset+dim+" done (%.1fs)"+reset+"\n", name, elapsed.Seconds())
}

func (p *Printer) CheckResult(name string, passed bool) {
	if passed {
		fmt.Fprintf(p.w, green+"✓ %s"+reset+" passed\n", name)
		return
	}
	fmt.Fprintf(p.w, red+bold+"✗ %s"+reset+" failed\n", name)
}

func (p *Printer) ReleaseStep(step string) {
	fmt.Fprintf(p.w, cyan+"◆ release"+reset+" %s\n", step)
}

func (p *Printer) Error(msg string) {
	fmt.Fprintf(p.w, red+bold+"error: "+reset+"%s\n", msg)
}

func (p *Printer) Warn(msg string) {
	fmt.Fprintf(p.w, yellow+bold+"warning: "+reset+"%s\n", msg)
}

func (p *Printer) Info(msg string) {
	fmt.Fprintf(p.w, dim+"%s"+reset+"\n", msg)
}
