// Package image provisions backing disk images for the conversion engine.
//
// Images are plain regular files of exactly the requested length, created
// either fully preallocated (zero-filled) or sparse. A successfully
// created image is registered with the engine as an attached drive; on
// any failure after creation the partial file is removed, so a failed
// provisioning run never leaves an orphaned image behind.
package image

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jbweber/crucible/internal/size"
)

// ErrAlreadyLaunched is returned when provisioning is attempted after the
// conversion engine has left its pre-launch configuration state.
var ErrAlreadyLaunched = errors.New("cannot allocate or add disks after launching")

// zeroFillChunk is the buffer size for the manual zero-fill write loop.
const zeroFillChunk = 32 * 1024

// engineState is the subset of engine behavior provisioning needs.
//
// In production this is satisfied by *engine.Engine. In tests it is
// satisfied by mock implementations.
type engineState interface {
	// IsConfig reports whether the engine is still pre-launch.
	IsConfig() bool

	// AddDrive registers a created image as an attached drive.
	AddDrive(path string) error
}

// Provisioner creates disk image files and registers them as drives.
type Provisioner struct {
	engine engineState
}

// NewProvisioner returns a provisioner registering drives with the given
// engine.
func NewProvisioner(engine engineState) *Provisioner {
	return &Provisioner{engine: engine}
}

// Allocate creates a fully preallocated, zero-filled image of the given
// size at path and registers it with the engine.
//
// The size specification is parsed by the size package; see size.Parse
// for the accepted forms.
func (p *Provisioner) Allocate(path, sizeSpec string) error {
	bytes, err := size.Parse(sizeSpec)
	if err != nil {
		return err
	}

	if !p.engine.IsConfig() {
		return ErrAlreadyLaunched
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", path, err)
	}

	if err := preallocate(f, bytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to allocate %s: %w", path, err)
	}

	return p.finish(f, path)
}

// AllocateSparse creates a sparse image whose reported length is exactly
// the given size, leaving the filesystem free to represent the interior
// as a hole.
//
// A zero size fails: the length is produced by writing the final byte,
// and a zero-length image has no final byte to write.
func (p *Provisioner) AllocateSparse(path, sizeSpec string) error {
	bytes, err := size.Parse(sizeSpec)
	if err != nil {
		return err
	}

	if !p.engine.IsConfig() {
		return ErrAlreadyLaunched
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o666)
	if err != nil {
		return fmt.Errorf("failed to create image %s: %w", path, err)
	}

	if err := writeTrailingByte(f, bytes); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return fmt.Errorf("failed to extend %s: %w", path, err)
	}

	return p.finish(f, path)
}

// finish closes the file and registers it as a drive. Close is a fallible
// step in its own right; either failure unlinks the image.
func (p *Provisioner) finish(f *os.File, path string) error {
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close image %s: %w", path, err)
	}

	if err := p.engine.AddDrive(path); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to register drive %s: %w", path, err)
	}

	return nil
}

// writeTrailingByte seeks to the last byte of the requested size and
// writes a single zero. A size of zero seeks to offset -1, which fails;
// that is deliberate.
func writeTrailingByte(f *os.File, size uint64) error {
	if _, err := f.Seek(int64(size)-1, io.SeekStart); err != nil {
		return err
	}
	if _, err := f.Write([]byte{0}); err != nil {
		return err
	}
	return nil
}

// zeroFill writes zero-filled chunks until size bytes have been written,
// resuming at the remaining count after short writes.
func zeroFill(f *os.File, size uint64) error {
	buf := make([]byte, zeroFillChunk)
	remaining := size
	for remaining > 0 {
		n := uint64(len(buf))
		if remaining < n {
			n = remaining
		}
		w, err := f.Write(buf[:n])
		if err != nil {
			return err
		}
		remaining -= uint64(w)
	}
	return nil
}
