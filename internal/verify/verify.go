// Package verify runs the declared check command of each target package and
// aggregates the outcomes. Unlike the build stages, verification is not
// fail-fast: every target runs to completion so the operator sees all
// codebases' issues in one pass, and the overall result fails if any target
// failed. Not short-circuiting is a deliberate, preserved behavior.
package verify

import (
	"context"
	"errors"
	"fmt"

	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/manifest"
)

// Result is the outcome of one target's check.
type Result struct {
	Package string
	Err     error
	Output  string
}

// Passed reports whether the check succeeded.
func (r Result) Passed() bool { return r.Err == nil }

// Run executes the check command of every given package and returns all
// results plus an aggregate error that is non-nil if any check failed.
func Run(ctx context.Context, runner exec.Runner, pkgs []manifest.Package) ([]Result, error) {
	results := make([]Result, 0, len(pkgs))
	var failures []error

	for _, pkg := range pkgs {
		if len(pkg.Check) == 0 {
			continue
		}
		res, err := runner.Run(ctx, exec.Command{
			Name: pkg.Check[0],
			Args: pkg.Check[1:],
			Dir:  pkg.Dir,
		})
		results = append(results, Result{
			Package: pkg.Name,
			Err:     err,
			Output:  res.Stdout,
		})
		if err != nil {
			failures = append(failures, fmt.Errorf("%s: %w", pkg.Name, err))
		}
	}

	return results, errors.Join(failures...)
}
