package pipeline

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrPipelineLocked indicates another shipyard run holds the pipeline lock.
var ErrPipelineLocked = errors.New("another shipyard run is in progress")

// fileLock is a held pipeline lock.
type fileLock struct {
	f *os.File
}

// acquireLock takes a non-blocking exclusive lock on path, creating the file
// and its parent directory as needed. It fails immediately when another
// process holds the lock rather than queueing behind it.
func acquireLock(path string) (*fileLock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}
	if err := flock(f); err != nil {
		f.Close()
		if errors.Is(err, ErrPipelineLocked) {
			return nil, err
		}
		return nil, fmt.Errorf("locking %s: %w", path, err)
	}
	return &fileLock{f: f}, nil
}

func (l *fileLock) release() {
	funlock(l.f)
	l.f.Close()
}
