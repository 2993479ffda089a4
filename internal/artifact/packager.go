// Package artifact produces the distributable archives for every top-level
// package. Packaging is clean-room: stale version markers and the previous
// distribution directory are purged, the environment is re-validated and
// dependency packages rebuilt, and only then is each package archived.
// A failure on any package aborts immediately; partial artifact sets are
// invalid and must not be published.
package artifact

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/papapumpkin/shipyard/internal/env"
	"github.com/papapumpkin/shipyard/internal/exec"
	"github.com/papapumpkin/shipyard/internal/manifest"
	"github.com/papapumpkin/shipyard/internal/pkgbuild"
	"github.com/papapumpkin/shipyard/internal/ui"
)

// Packager drives the clean → rebuild → archive sequence.
type Packager struct {
	Runner      exec.Runner
	Manifest    *manifest.Manifest
	Provisioner *env.Provisioner
	Builder     *pkgbuild.Builder
	DistDir     string
	Printer     *ui.Printer
}

// Package runs the full artifact sequence. Steps are strictly ordered:
// cleanup precedes provisioning, provisioning precedes dependency rebuilds,
// and rebuilds precede archiving.
func (p *Packager) Package(ctx context.Context) error {
	if err := p.clean(); err != nil {
		return err
	}

	created, err := p.Provisioner.Ensure(ctx)
	if err != nil {
		return err
	}
	if !created && p.Printer != nil {
		p.Printer.Skip("provisioning", "sandbox already present")
	}

	// Archives require fresh dependency builds, not reused ones.
	if err := p.Builder.ClearDepsStamp(); err != nil {
		return err
	}
	if err := p.Builder.BuildDependencies(ctx); err != nil {
		return err
	}

	return p.archiveAll(ctx)
}

// clean removes per-package version-marker files and the previous
// distribution directory, then recreates the directory empty.
func (p *Packager) clean() error {
	marker := p.Manifest.Project.VersionMarker
	if marker != "" {
		for _, pkg := range p.Manifest.Packages {
			path := filepath.Join(pkg.Dir, marker)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing version marker %s: %w", path, err)
			}
		}
	}

	if err := os.RemoveAll(p.DistDir); err != nil {
		return fmt.Errorf("removing %s: %w", p.DistDir, err)
	}
	if err := os.MkdirAll(p.DistDir, 0755); err != nil {
		return fmt.Errorf("creating %s: %w", p.DistDir, err)
	}
	return nil
}

// archiveAll invokes the external packaging step for each top-level package,
// writing one versioned archive into the distribution directory. Fail-fast:
// the first failing package aborts without attempting the rest.
func (p *Packager) archiveAll(ctx context.Context) error {
	distAbs, err := filepath.Abs(p.DistDir)
	if err != nil {
		return fmt.Errorf("resolving %s: %w", p.DistDir, err)
	}

	for _, pkg := range p.Manifest.Leaves() {
		argv := pkg.Archive
		if len(argv) == 0 {
			argv = pkg.Package
		}
		if len(argv) == 0 {
			return fmt.Errorf("package %q: %w", pkg.Name, ErrNoArchiveCommand)
		}

		if p.Printer != nil {
			p.Printer.PackageStart(pkg.Name)
		}
		start := time.Now()

		environ := append(env.BuildEnv(p.Builder.Sandbox), "SHIPYARD_DIST="+distAbs)
		if _, err := p.Runner.Run(ctx, exec.Command{
			Name: argv[0],
			Args: argv[1:],
			Dir:  pkg.Dir,
			Env:  environ,
		}); err != nil {
			return fmt.Errorf("archiving %s: %w", pkg.Name, err)
		}

		if p.Printer != nil {
			p.Printer.PackageDone(pkg.Name, time.Since(start))
		}
	}
	return nil
}
