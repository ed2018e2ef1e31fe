//go:build !linux

package image

import (
	"fmt"
	"os"
)

// preallocate on platforms without an efficient allocation primitive:
// write zeroes until the requested size is reached. A zero size is
// rejected to match the fallocate-backed implementation.
func preallocate(f *os.File, size uint64) error {
	if size == 0 {
		return fmt.Errorf("invalid allocation size 0")
	}
	return zeroFill(f, size)
}
