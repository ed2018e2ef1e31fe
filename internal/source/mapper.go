package source

import (
	"fmt"
	"net/url"
	"strings"
)

// VCenterMapper rewrites datastore locators like
//
//	[datastore1] guests/guest/guest.vmdk
//
// into HTTPS URLs served by the vCenter/ESX(i) /folder datastore browser.
// The browser exposes the flat (raw) extent of each disk rather than the
// .vmdk descriptor, so the format is rewritten to raw. Locators that are
// not datastore paths pass through unchanged.
type VCenterMapper struct {
	Server string
}

// MapPath implements DiskMapper.
func (m *VCenterMapper) MapPath(locator, format string) (string, string) {
	datastore, path, ok := splitDatastorePath(locator)
	if !ok {
		return locator, format
	}

	flat := path
	if strings.HasSuffix(flat, ".vmdk") {
		flat = strings.TrimSuffix(flat, ".vmdk") + "-flat.vmdk"
	}

	u := url.URL{
		Scheme: "https",
		Host:   m.Server,
		Path:   "/folder/" + flat,
		RawQuery: url.Values{
			"dcPath": []string{"ha-datacenter"},
			"dsName": []string{datastore},
		}.Encode(),
	}
	return u.String(), "raw"
}

// splitDatastorePath splits "[ds] rel/path" into the datastore name and
// the path relative to it.
func splitDatastorePath(locator string) (datastore, path string, ok bool) {
	if !strings.HasPrefix(locator, "[") {
		return "", "", false
	}
	end := strings.Index(locator, "]")
	if end < 0 {
		return "", "", false
	}
	datastore = locator[1:end]
	path = strings.TrimLeft(locator[end+1:], " ")
	if datastore == "" || path == "" {
		return "", "", false
	}
	return datastore, path, true
}

// XenMapper rewrites local file and block-device paths into ssh:// URLs
// on the Xen host. The format is preserved; only the access path changes.
type XenMapper struct {
	Server string
}

// MapPath implements DiskMapper.
func (m *XenMapper) MapPath(locator, format string) (string, string) {
	if strings.Contains(locator, "://") {
		// Already remote; leave it alone.
		return locator, format
	}

	path := locator
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return fmt.Sprintf("ssh://%s%s", m.Server, path), format
}
