package env

import "errors"

// ErrUnknownToolset indicates the configured toolset version has no pinned
// base tool set.
var ErrUnknownToolset = errors.New("unknown toolset version")
