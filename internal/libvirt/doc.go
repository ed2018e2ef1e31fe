// Package libvirt provides a client wrapper for interacting with libvirt.
//
// This package wraps github.com/digitalocean/go-libvirt to provide:
//   - Connection management (connect, disconnect, ping)
//   - Guest XML retrieval with a running-guest refusal
//   - Guest descriptor parsing into the normalized Source form
//
// Connection Management:
//
// The package establishes connections to the local libvirt daemon via
// Unix socket:
//
//	client, err := libvirt.Connect("", 0)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
// Guest inspection:
//
//	xml, err := client.DumpGuestXML(ctx, "myguest")
//	if err != nil {
//	    return err // also fails when the guest is running
//	}
//
//	src, err := libvirt.ParseDescriptor(xml)
//	if err != nil {
//	    return err
//	}
//
// Consumer-Side Interfaces:
//
// This package does not export interfaces. Consumers (internal/source)
// define their own narrow interfaces specifying only the operations they
// need; *Client satisfies them implicitly, enabling clean dependency
// injection.
package libvirt
