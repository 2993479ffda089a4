// Package pkgbuild runs the declared build commands for dependency and leaf
// packages inside the provisioned sandbox. Iteration is sequential in
// declared order and fail-fast: the first failing package aborts the run and
// is named in the error.
package pkgbuild

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papapumpkin/shipyard/internal/env"
	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/manifest"
	"github.com/papapumpkin/shipyard/internal/ui"
)

// Mode selects how leaf packages are built.
type Mode string

const (
	// ModeDevelop installs a leaf package into the sandbox in editable
	// mode for local development and testing.
	ModeDevelop Mode = "develop"
	// ModePackage produces an installable unit without installing it,
	// used for distribution.
	ModePackage Mode = "package"
)

// depsStampFileName marks a successful dependency-package build in the
// sandbox. Leaf builds refuse to start without it.
const depsStampFileName = ".deps-built"

// BuildError names the package whose command failed.
type BuildError struct {
	Package string
	Err     error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("building %s: %v", e.Package, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// Builder executes package build commands.
type Builder struct {
	Runner   exec.Runner
	Manifest *manifest.Manifest
	Sandbox  string
	// DistDir, when set, is exported to package commands as SHIPYARD_DIST.
	DistDir string
	Printer *ui.Printer
}

// BuildDependencies builds every dependency package in declared order:
// install (fetch package-local sub-dependencies), then build. On success it
// writes the dependency stamp that gates leaf builds.
func (b *Builder) BuildDependencies(ctx context.Context) error {
	for _, pkg := range b.Manifest.Dependencies() {
		if err := b.buildOne(ctx, pkg, pkg.Install, pkg.Build); err != nil {
			return err
		}
	}
	return b.writeDepsStamp()
}

// BuildLeaves builds every leaf package in declared order in the given mode.
// Returns ErrDependenciesNotBuilt if dependency packages have not completed;
// invoking leaf builds first is a usage error, not a degraded build.
func (b *Builder) BuildLeaves(ctx context.Context, mode Mode) error {
	if !b.DependenciesBuilt() {
		return ErrDependenciesNotBuilt
	}

	for _, pkg := range b.Manifest.Leaves() {
		argv := pkg.Build
		if mode == ModePackage {
			argv = pkg.Package
			// A leaf with no package command must fail the run, not
			// silently produce nothing.
			if len(argv) == 0 {
				return fmt.Errorf("package %q: %w", pkg.Name, ErrNoPackageCommand)
			}
		}
		if err := b.buildOne(ctx, pkg, nil, argv); err != nil {
			return err
		}
	}
	return nil
}

// BuildOne rebuilds a single package: install + build for a dependency
// package, the mode's command for a leaf. Used by the watch command.
func (b *Builder) BuildOne(ctx context.Context, pkg manifest.Package, mode Mode) error {
	if pkg.Role == manifest.RoleDependency {
		return b.buildOne(ctx, pkg, pkg.Install, pkg.Build)
	}
	argv := pkg.Build
	if mode == ModePackage {
		argv = pkg.Package
	}
	return b.buildOne(ctx, pkg, nil, argv)
}

// DependenciesBuilt reports whether the dependency stamp is present.
func (b *Builder) DependenciesBuilt() bool {
	_, err := os.Stat(filepath.Join(b.Sandbox, depsStampFileName))
	return err == nil
}

// ClearDepsStamp removes the dependency stamp, forcing the next artifact run
// to rebuild dependency packages from scratch.
func (b *Builder) ClearDepsStamp() error {
	err := os.Remove(filepath.Join(b.Sandbox, depsStampFileName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("removing dependency stamp: %w", err)
	}
	return nil
}

func (b *Builder) buildOne(ctx context.Context, pkg manifest.Package, install, build []string) error {
	if b.Printer != nil {
		b.Printer.PackageStart(pkg.Name)
	}
	start := time.Now()

	environ := env.BuildEnv(b.Sandbox)
	if b.DistDir != "" {
		if abs, err := filepath.Abs(b.DistDir); err == nil {
			environ = append(environ, "SHIPYARD_DIST="+abs)
		}
	}

	for _, argv := range [][]string{install, build} {
		if len(argv) == 0 {
			continue
		}
		if _, err := b.Runner.Run(ctx, exec.Command{
			Name: argv[0],
			Args: argv[1:],
			Dir:  pkg.Dir,
			Env:  environ,
		}); err != nil {
			return &BuildError{Package: pkg.Name, Err: err}
		}
	}

	if b.Printer != nil {
		b.Printer.PackageDone(pkg.Name, time.Since(start))
	}
	return nil
}

func (b *Builder) writeDepsStamp() error {
	path := filepath.Join(b.Sandbox, depsStampFileName)
	if err := os.WriteFile(path, []byte(time.Now().UTC().Format(time.RFC3339)+"\n"), 0644); err != nil {
		return fmt.Errorf("writing dependency stamp: %w", err)
	}
	return nil
}
