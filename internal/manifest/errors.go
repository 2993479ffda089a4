package manifest

import "errors"

// Sentinel errors for manifest loading and validation.
var (
	// ErrNoManifest indicates no shipyard.toml was found.
	ErrNoManifest = errors.New("shipyard.toml not found")
	// ErrDuplicateName indicates two or more packages share a name.
	ErrDuplicateName = errors.New("duplicate package name")
	// ErrMissingField indicates a required field (name, dir) is empty.
	ErrMissingField = errors.New("required field missing")
	// ErrInvalidRole indicates a role other than dependency or leaf.
	ErrInvalidRole = errors.New("invalid package role")
	// ErrDependencyAfterLeaf indicates a dependency package declared after a
	// leaf; the file order is the build order, so dependencies come first.
	ErrDependencyAfterLeaf = errors.New("dependency package declared after a leaf package")
)
