package source

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoSSHAgent is returned when a transport that authenticates over SSH
// is selected but no SSH agent is configured in the environment.
var ErrNoSSHAgent = errors.New(
	"no SSH agent configured: start ssh-agent, add the key for the remote host with ssh-add, and export SSH_AUTH_SOCK")

// UnsupportedBackendError reports a storage backend that cannot read
// remote source disks.
type UnsupportedBackendError struct {
	Backend string
}

func (e *UnsupportedBackendError) Error() string {
	return fmt.Sprintf(
		"the %q storage backend cannot read remote source disks: set the backend to %q in the configuration file",
		e.Backend, "direct")
}

// errIfLibvirtBackend rejects the libvirt storage backend, which is known
// to mishandle remote source access. The queried backend name is a
// parameter so the check stays a pure predicate.
func errIfLibvirtBackend(backend string) error {
	if backend == "libvirt" || strings.HasPrefix(backend, "libvirt:") {
		return &UnsupportedBackendError{Backend: backend}
	}
	return nil
}

// errIfNoSSHAgent requires an SSH agent socket path. The value comes from
// the caller, not the process environment.
func errIfNoSSHAgent(sock string) error {
	if sock == "" {
		return ErrNoSSHAgent
	}
	return nil
}
