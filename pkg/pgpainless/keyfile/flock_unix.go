//go:build unix

package keyfile

import (
	"os"

	"golang.org/x/sys/unix"
)

// lockFile takes an advisory flock on a lock sidecar: exclusive for writers,
// shared for readers. Blocks until the lock is granted.
func lockFile(file *os.File, exclusive bool) error {
	lockType := unix.LOCK_SH
	if exclusive {
		lockType = unix.LOCK_EX
	}
	return unix.Flock(int(file.Fd()), lockType)
}

// unlockFile drops the advisory lock before the sidecar is closed.
func unlockFile(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}
