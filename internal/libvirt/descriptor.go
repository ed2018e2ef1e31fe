package libvirt

import (
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/jbweber/crucible/internal/source"
)

// memoryUnitBytes maps libvirt memory unit attributes to byte multipliers.
var memoryUnitBytes = map[string]uint64{
	"b":     1,
	"bytes": 1,
	"KB":    1000,
	"k":     1024,
	"KiB":   1024,
	"MB":    1000 * 1000,
	"M":     1024 * 1024,
	"MiB":   1024 * 1024,
	"GB":    1000 * 1000 * 1000,
	"G":     1024 * 1024 * 1024,
	"GiB":   1024 * 1024 * 1024,
	"TB":    1000 * 1000 * 1000 * 1000,
	"T":     1024 * 1024 * 1024 * 1024,
	"TiB":   1024 * 1024 * 1024 * 1024,
}

// ParseDescriptor parses a guest domain XML descriptor into the
// normalized Source form.
//
// One Disk is produced per <disk> element with a usable source, in
// document order. CD-ROM and floppy devices are skipped: they are
// removable media, not convertible disks. A disk with no driver type
// defaults to raw, matching libvirt's own default.
func ParseDescriptor(xmlDesc string) (*source.Source, error) {
	var dom libvirtxml.Domain
	if err := dom.Unmarshal(xmlDesc); err != nil {
		return nil, fmt.Errorf("failed to parse guest descriptor: %w", err)
	}

	memKiB, err := memoryToKiB(dom.Memory)
	if err != nil {
		return nil, err
	}

	src := &source.Source{
		Name:      dom.Name,
		MemoryKiB: memKiB,
	}
	if dom.VCPU != nil {
		src.VCPUs = uint(dom.VCPU.Value)
	}

	if dom.Devices != nil {
		for _, disk := range dom.Devices.Disks {
			if disk.Device == "cdrom" || disk.Device == "floppy" {
				continue
			}

			locator := diskLocator(&disk)
			if locator == "" {
				continue
			}

			format := "raw"
			if disk.Driver != nil && disk.Driver.Type != "" {
				format = disk.Driver.Type
			}

			src.Disks = append(src.Disks, source.Disk{
				Locator: locator,
				Format:  format,
			})
		}
	}

	return src, nil
}

// memoryToKiB normalizes the domain memory element to KiB.
func memoryToKiB(m *libvirtxml.DomainMemory) (uint64, error) {
	if m == nil {
		return 0, nil
	}

	unit := m.Unit
	if unit == "" {
		unit = "KiB"
	}

	mult, ok := memoryUnitBytes[unit]
	if !ok {
		return 0, fmt.Errorf("unknown memory unit %q in guest descriptor", unit)
	}

	return uint64(m.Value) * mult / 1024, nil
}

// diskLocator extracts the access locator from a disk source element.
// Returns "" for source forms conversion cannot read.
func diskLocator(disk *libvirtxml.DomainDisk) string {
	if disk.Source == nil {
		return ""
	}

	switch {
	case disk.Source.File != nil:
		return disk.Source.File.File
	case disk.Source.Block != nil:
		return disk.Source.Block.Dev
	case disk.Source.Network != nil:
		return networkLocator(disk.Source.Network)
	case disk.Source.Volume != nil:
		v := disk.Source.Volume
		if v.Pool == "" || v.Volume == "" {
			return ""
		}
		return v.Pool + "/" + v.Volume
	}

	return ""
}

// networkLocator renders a network disk source as a URL-style locator.
func networkLocator(n *libvirtxml.DomainDiskSourceNetwork) string {
	if n.Protocol == "" {
		return ""
	}

	host := ""
	if len(n.Hosts) > 0 {
		host = n.Hosts[0].Name
		if n.Hosts[0].Port != "" {
			host += ":" + n.Hosts[0].Port
		}
	}

	locator := n.Protocol + "://" + host
	if n.Name != "" {
		locator += "/" + n.Name
	}
	return locator
}
