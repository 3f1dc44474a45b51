//go:build windows

package keyfile

import (
	"os"

	"golang.org/x/sys/windows"
)

// LOCKFILE_EXCLUSIVE_LOCK; omitting it requests a shared lock.
const lockfileExclusiveLock = 0x00000002

// lockFile takes a mandatory LockFileEx lock on a lock sidecar: exclusive
// for writers, shared for readers. The sidecar is a zero-length placeholder,
// so locking a single byte from offset zero covers it.
func lockFile(file *os.File, exclusive bool) error {
	var flags uint32
	if exclusive {
		flags = lockfileExclusiveLock
	}
	ol := new(windows.Overlapped)
	return windows.LockFileEx(
		windows.Handle(file.Fd()),
		flags,
		0,
		1,
		0,
		ol,
	)
}

// unlockFile drops the lock over the same byte range lockFile covered.
func unlockFile(file *os.File) error {
	ol := new(windows.Overlapped)
	return windows.UnlockFileEx(
		windows.Handle(file.Fd()),
		0,
		1,
		0,
		ol,
	)
}
