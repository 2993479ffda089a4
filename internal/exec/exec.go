// Package exec wraps invocation of the external tools the pipeline drives:
// package managers, the docs builder, the changelog tool, git, and the
// signing uploader. Every invocation is blocking; the caller decides what a
// non-zero exit means.
package exec

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
)

// Command describes a single external tool invocation.
type Command struct {
	Name  string
	Args  []string
	Dir   string   // working directory; empty = inherit
	Env   []string // appended to the current environment
	Stdin string   // fed to the process; empty = no stdin
}

// Result captures the output of a completed invocation.
type Result struct {
	Stdout string
	Stderr string
}

// Runner executes external commands. The concrete implementation shells out;
// tests substitute fakes.
type Runner interface {
	// Run executes the command and blocks until it exits. A non-zero exit
	// status is returned as an error wrapping the command name and stderr.
	Run(ctx context.Context, c Command) (Result, error)
	// LookPath reports whether the named tool is on PATH.
	LookPath(name string) bool
}

// CLIRunner is the production Runner backed by os/exec.
type CLIRunner struct {
	// Verbose echoes each command line to Stderr before running it.
	Verbose bool
	// Stderr receives verbose output; defaults to os.Stderr.
	Stderr io.Writer
}

func (r *CLIRunner) Run(ctx context.Context, c Command) (Result, error) {
	if c.Name == "" {
		return Result{}, fmt.Errorf("empty command")
	}

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}
	if c.Stdin != "" {
		cmd.Stdin = strings.NewReader(c.Stdin)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if r.Verbose {
		w := r.Stderr
		if w == nil {
			w = os.Stderr
		}
		fmt.Fprintf(w, "[exec] %s %s\n", c.Name, strings.Join(c.Args, " "))
	}

	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}
	if err != nil {
		return res, fmt.Errorf("%s: %w\n%s", c.Name, err, strings.TrimSpace(stderr.String()))
	}
	return res, nil
}

func (r *CLIRunner) LookPath(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
