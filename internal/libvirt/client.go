package libvirt

import (
	"context"
	"fmt"
	"time"

	"github.com/digitalocean/go-libvirt"
	"github.com/digitalocean/go-libvirt/socket/dialers"
)

// Client wraps a go-libvirt connection and provides the guest-inspection
// operations conversion needs.
type Client struct {
	libvirt *libvirt.Libvirt
}

// domainClient defines the libvirt operations needed to dump a guest
// descriptor. This wraps operations from *libvirt.Libvirt to allow for
// testing.
type domainClient interface {
	DomainLookupByName(name string) (libvirt.Domain, error)
	DomainGetState(dom libvirt.Domain, flags uint32) (state int32, reason int32, err error)
	DomainGetXMLDesc(dom libvirt.Domain, flags libvirt.DomainXMLFlags) (string, error)
}

// Connect establishes a connection to the local libvirt daemon.
// It returns a Client that must be closed via Close() when done.
//
// If socketPath is empty, defaults to "/var/run/libvirt/libvirt-sock".
// If timeout is zero, defaults to 5 seconds.
func Connect(socketPath string, timeout time.Duration) (*Client, error) {
	if socketPath == "" {
		socketPath = "/var/run/libvirt/libvirt-sock"
	}
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	dialer := dialers.NewLocal(
		dialers.WithSocket(socketPath),
		dialers.WithLocalTimeout(timeout),
	)

	l := libvirt.NewWithDialer(dialer)
	if err := l.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to libvirt at %s: %w", socketPath, err)
	}

	return &Client{libvirt: l}, nil
}

// ConnectWithContext establishes a connection with context support for
// cancellation.
func ConnectWithContext(ctx context.Context, socketPath string, timeout time.Duration) (*Client, error) {
	type result struct {
		client *Client
		err    error
	}
	resultCh := make(chan result, 1)

	go func() {
		c, err := Connect(socketPath, timeout)
		resultCh <- result{client: c, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("connection cancelled: %w", ctx.Err())
	case res := <-resultCh:
		return res.client, res.err
	}
}

// Close closes the libvirt connection and releases resources.
// It is safe to call Close multiple times.
func (c *Client) Close() error {
	if c.libvirt == nil {
		return nil
	}

	if err := c.libvirt.Disconnect(); err != nil {
		return fmt.Errorf("failed to disconnect from libvirt: %w", err)
	}

	return nil
}

// Ping verifies the connection is still alive by calling a simple libvirt API.
func (c *Client) Ping() error {
	if c.libvirt == nil {
		return fmt.Errorf("client not connected")
	}

	_, err := c.libvirt.ConnectGetLibVersion()
	if err != nil {
		return fmt.Errorf("libvirt connection is dead: %w", err)
	}

	return nil
}

// DumpGuestXML returns the XML descriptor for the named guest.
//
// A running guest is refused: its disks are still being written and
// cannot be read consistently. This is the conversion run's only
// liveness gate, so it must stay here rather than move to callers.
func (c *Client) DumpGuestXML(_ context.Context, guest string) (string, error) {
	return dumpGuestXML(c.libvirt, guest)
}

// dumpGuestXML dumps a guest descriptor with injected dependencies.
func dumpGuestXML(lv domainClient, guest string) (string, error) {
	dom, err := lv.DomainLookupByName(guest)
	if err != nil {
		return "", fmt.Errorf("failed to look up guest %s: %w", guest, err)
	}

	state, _, err := lv.DomainGetState(dom, 0)
	if err != nil {
		return "", fmt.Errorf("failed to get state of guest %s: %w", guest, err)
	}
	if state == int32(libvirt.DomainRunning) {
		return "", fmt.Errorf("guest %s is running: shut it down before converting", guest)
	}

	xmlDesc, err := lv.DomainGetXMLDesc(dom, 0)
	if err != nil {
		return "", fmt.Errorf("failed to dump XML for guest %s: %w", guest, err)
	}

	return xmlDesc, nil
}
