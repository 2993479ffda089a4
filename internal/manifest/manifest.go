// Package manifest loads and validates shipyard.toml, the declared package
// set of the project. The order packages appear in the file is the build
// order; shipyard never infers ordering from package metadata.
package manifest

import (
	"fmt"
	"os"

	toml "github.com/pelletier/go-toml/v2"
)

// Role distinguishes packages other packages consume from top-level ones.
type Role string

const (
	// RoleDependency marks a shared package that leaf packages require at
	// build time. Dependency packages build before any leaf.
	RoleDependency Role = "dependency"
	// RoleLeaf marks a top-level installable/distributable package.
	RoleLeaf Role = "leaf"
)

// Kind classifies a package within the project for reporting and for the
// aggregated verify command.
type Kind string

const (
	KindBackend  Kind = "backend"
	KindWorker   Kind = "worker"
	KindFrontend Kind = "frontend"
)

// Package is one declared package. Argv fields are literal command lines;
// empty means the step does not apply to this package.
type Package struct {
	Name string `toml:"name"`
	Dir  string `toml:"dir"`
	Role Role   `toml:"role"`
	Kind Kind   `toml:"kind"`

	// Install fetches the package's own sub-dependencies (dependency
	// packages only).
	Install []string `toml:"install"`
	// Build builds a dependency package, or installs a leaf package in
	// editable/developer mode.
	Build []string `toml:"build"`
	// Package produces the distributable unit for a leaf package. The
	// command receives SHIPYARD_DIST in its environment pointing at the
	// distribution output directory.
	Package []string `toml:"package"`
	// Archive produces the versioned source archive for the distribution
	// directory; falls back to Package when empty. Receives SHIPYARD_DIST
	// like Package.
	Archive []string `toml:"archive"`
	// Check is the lint/type check command used by the verify command.
	Check []string `toml:"check"`
}

// Project holds project-wide settings from the [project] table.
type Project struct {
	Name string `toml:"name"`
	// VersionMarker is the per-package version stamp file removed before
	// packaging (relative to each package dir).
	VersionMarker string `toml:"version_marker"`
	// Requirements is the project dependency manifest installed into the
	// sandbox at provisioning time.
	Requirements string `toml:"requirements"`
}

// Manifest is the parsed shipyard.toml.
type Manifest struct {
	Project  Project   `toml:"project"`
	Packages []Package `toml:"packages"`
}

// Load reads and validates a manifest file.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoManifest
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var m Manifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if err := m.Validate(); err != nil {
		return nil, err
	}
	return &m, nil
}

// Validate checks structural invariants: non-empty names and dirs, known
// roles, unique names, and that every dependency package is declared before
// the first leaf (the declared order is the build order).
func (m *Manifest) Validate() error {
	seen := make(map[string]bool, len(m.Packages))
	leafSeen := false
	for _, p := range m.Packages {
		if p.Name == "" || p.Dir == "" {
			return fmt.Errorf("package %q: %w", p.Name, ErrMissingField)
		}
		if seen[p.Name] {
			return fmt.Errorf("package %q: %w", p.Name, ErrDuplicateName)
		}
		seen[p.Name] = true

		switch p.Role {
		case RoleDependency:
			if leafSeen {
				return fmt.Errorf("package %q: %w", p.Name, ErrDependencyAfterLeaf)
			}
		case RoleLeaf:
			leafSeen = true
		default:
			return fmt.Errorf("package %q: role %q: %w", p.Name, p.Role, ErrInvalidRole)
		}
	}
	return nil
}

// Dependencies returns dependency packages in declared order.
func (m *Manifest) Dependencies() []Package {
	return m.withRole(RoleDependency)
}

// Leaves returns leaf packages in declared order.
func (m *Manifest) Leaves() []Package {
	return m.withRole(RoleLeaf)
}

func (m *Manifest) withRole(r Role) []Package {
	var out []Package
	for _, p := range m.Packages {
		if p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// ByName returns the named package, or false if it is not declared.
func (m *Manifest) ByName(name string) (Package, bool) {
	for _, p := range m.Packages {
		if p.Name == name {
			return p, true
		}
	}
	return Package{}, false
}

// Checkable returns packages that declare a check command, in declared order.
func (m *Manifest) Checkable() []Package {
	var out []Package
	for _, p := range m.Packages {
		if len(p.Check) > 0 {
			out = append(out, p)
		}
	}
	return out
}
