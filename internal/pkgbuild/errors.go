package pkgbuild

import "errors"

// ErrDependenciesNotBuilt indicates a leaf build was requested before the
// dependency packages completed. Dependency builds strictly precede leaf
// builds.
var ErrDependenciesNotBuilt = errors.New("dependency packages not built")

// ErrNoPackageCommand indicates a leaf package declares no package command, so
// a package-mode build cannot produce anything for it.
var ErrNoPackageCommand = errors.New("no package command declared")
