// Package source selects and runs the source adapter that extracts a
// guest's disks and metadata for conversion.
//
// There are three adapter variants: the default adapter for local (or
// unclassified) connections, a vCenter adapter that rewrites disk
// locators into HTTPS datastore URLs, and a Xen adapter that rewrites
// them into ssh:// URLs. The variant set is closed, so dispatch is a
// switch over the classified kind rather than an open hierarchy.
package source

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/jbweber/crucible/internal/uri"
)

// Disk is one guest virtual disk: where to read it from and its format.
type Disk struct {
	Locator string `yaml:"locator" json:"locator"`
	Format  string `yaml:"format" json:"format"`
}

// Source is the normalized, adapter-independent description of a guest.
// It is produced once per conversion run and not mutated afterwards.
type Source struct {
	Name      string `yaml:"name" json:"name"`
	MemoryKiB uint64 `yaml:"memory_kib" json:"memory_kib"`
	VCPUs     uint   `yaml:"vcpus" json:"vcpus"`
	Disks     []Disk `yaml:"disks" json:"disks"`
}

// GuestDumper retrieves a guest's XML descriptor from the hypervisor
// connection. The call doubles as the liveness check: it fails when the
// guest is running, since live guests cannot be converted safely.
//
// In production this is satisfied by *libvirt.Client. In tests it is
// satisfied by mock implementations.
type GuestDumper interface {
	DumpGuestXML(ctx context.Context, guest string) (string, error)
}

// DescriptorParser turns a guest XML descriptor into a Source.
type DescriptorParser func(xmlDesc string) (*Source, error)

// DiskMapper rewrites a disk's access locator and format for a specific
// remote transport.
type DiskMapper interface {
	MapPath(locator, format string) (newLocator, newFormat string)
}

// BackendReporter reports the conversion engine's active storage backend.
// Satisfied by *engine.Engine.
type BackendReporter interface {
	Backend() string
}

// Options carries the collaborators an adapter needs.
type Options struct {
	// Engine reports the active storage backend for precondition checks.
	Engine BackendReporter

	// SSHAuthSock is the SSH agent socket path from the environment,
	// empty when unset. Passed in rather than read here so the checks
	// stay deterministic under test.
	SSHAuthSock string

	// Dumper retrieves guest XML.
	Dumper GuestDumper

	// Parse turns guest XML into a Source.
	Parse DescriptorParser
}

// Adapter fetches a guest's Source using the behavior selected for the
// connection target.
type Adapter struct {
	kind   uri.Kind
	target *uri.ConnectionTarget
	guest  string
	dumper GuestDumper
	parse  DescriptorParser
	mapper DiskMapper // nil for the default adapter
}

// Select classifies connURI and constructs the matching adapter for
// guest, running the variant's precondition checks.
//
// The remote variants refuse to start on a storage backend that cannot
// read remote disks, and the Xen variant additionally requires an SSH
// agent. Both are environment misconfigurations with known fixes, so the
// errors carry remediation guidance.
func Select(connURI, guest string, opts Options) (*Adapter, error) {
	kind, target, err := uri.Classify(connURI)
	if err != nil {
		return nil, err
	}

	a := &Adapter{
		kind:   kind,
		target: target,
		guest:  guest,
		dumper: opts.Dumper,
		parse:  opts.Parse,
	}

	switch kind {
	case uri.KindVCenterHTTPS:
		if err := errIfLibvirtBackend(opts.Engine.Backend()); err != nil {
			return nil, err
		}
		a.mapper = &VCenterMapper{Server: target.Server}
	case uri.KindXenSSH:
		if err := errIfLibvirtBackend(opts.Engine.Backend()); err != nil {
			return nil, err
		}
		if err := errIfNoSSHAgent(opts.SSHAuthSock); err != nil {
			return nil, err
		}
		a.mapper = &XenMapper{Server: target.Server}
	}

	return a, nil
}

// Kind returns the adapter variant selected for the connection target.
func (a *Adapter) Kind() uri.Kind {
	return a.kind
}

// Target returns the parsed connection target, nil when no connection
// URI was given.
func (a *Adapter) Target() *uri.ConnectionTarget {
	return a.target
}

// FetchSource retrieves and parses the guest descriptor, then rewrites
// the disk list for remote transports. The sequence is strictly linear
// with no retries; any failure is terminal for the conversion run.
func (a *Adapter) FetchSource(ctx context.Context) (*Source, error) {
	xmlDesc, err := a.dumper.DumpGuestXML(ctx, a.guest)
	if err != nil {
		return nil, fmt.Errorf("failed to dump XML for guest %s: %w", a.guest, err)
	}

	src, err := a.parse(xmlDesc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse descriptor for guest %s: %w", a.guest, err)
	}

	if a.mapper != nil {
		disks := make([]Disk, len(src.Disks))
		for i, d := range src.Disks {
			locator, format := a.mapper.MapPath(d.Locator, d.Format)
			disks[i] = Disk{Locator: locator, Format: format}
		}
		src.Disks = disks

		log.WithFields(log.Fields{
			"guest":   a.guest,
			"adapter": a.kind.String(),
			"disks":   len(disks),
		}).Debug("Rewrote disk locators for remote transport")
	}

	return src, nil
}
