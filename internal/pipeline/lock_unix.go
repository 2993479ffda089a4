//go:build unix

package pipeline

import (
	"os"
	"syscall"
)

// flock acquires an exclusive advisory lock via flock(2), non-blocking.
func flock(f *os.File) error {
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err == syscall.EWOULDBLOCK {
		return ErrPipelineLocked
	}
	return err
}

func funlock(f *os.File) {
	_ = syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
