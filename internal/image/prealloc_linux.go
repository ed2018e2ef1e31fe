//go:build linux

package image

import (
	"errors"
	"os"

	"golang.org/x/sys/unix"
)

// preallocate asks the kernel for a zero-filled allocation of size bytes
// at offset 0. Filesystems without fallocate support get the slow
// zero-fill write loop instead.
//
// A zero size is rejected everywhere, not just where fallocate reaches
// the kernel, so the failure mode does not depend on the filesystem.
func preallocate(f *os.File, size uint64) error {
	if size == 0 {
		return unix.EINVAL
	}

	err := unix.Fallocate(int(f.Fd()), 0, 0, int64(size))
	if err == nil {
		return nil
	}
	if errors.Is(err, unix.EOPNOTSUPP) || errors.Is(err, unix.ENOSYS) {
		return zeroFill(f, size)
	}
	return err
}
