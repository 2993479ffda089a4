package artifact

import "errors"

// ErrNoArchiveCommand indicates a leaf package declares neither an archive
// nor a package command, so no distributable can be produced for it.
var ErrNoArchiveCommand = errors.New("no archive command declared")
