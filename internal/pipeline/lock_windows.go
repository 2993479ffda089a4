//go:build windows

package pipeline

import "os"

// Windows has no flock(2); the lock degrades to the exclusive create of the
// lock file itself, which is sufficient for the single-operator workflows
// shipyard targets there.
func flock(f *os.File) error { return nil }

func funlock(f *os.File) {}
