// Package uri parses management-connection URIs and selects the source
// adapter kind for them.
package uri

import (
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Kind identifies which source adapter handles a connection target.
type Kind int

const (
	// KindDefault reads guests through the plain local/default transport.
	KindDefault Kind = iota
	// KindVCenterHTTPS reads guest disks from a VMware vCenter or ESX(i)
	// server over HTTPS.
	KindVCenterHTTPS
	// KindXenSSH reads guest disks from a Xen host over SSH.
	KindXenSSH
)

func (k Kind) String() string {
	switch k {
	case KindVCenterHTTPS:
		return "vcenter-https"
	case KindXenSSH:
		return "xen-ssh"
	default:
		return "default"
	}
}

// ConnectionTarget is the parsed structural form of a connection URI.
// An empty Scheme or Server means the component was absent. Targets are
// immutable once parsed.
type ConnectionTarget struct {
	Raw    string
	Scheme string
	Server string
}

// InvalidURIError reports a connection URI that could not be parsed.
type InvalidURIError struct {
	Raw string
	Err error
}

func (e *InvalidURIError) Error() string {
	return fmt.Sprintf("invalid connection URI %q: %v", e.Raw, e.Err)
}

func (e *InvalidURIError) Unwrap() error {
	return e.Err
}

// vCenterSchemes are the connection schemes served by the VMware driver.
var vCenterSchemes = map[string]bool{
	"esx": true,
	"gsx": true,
	"vpx": true,
}

// Classify parses connURI and selects the source-adapter kind for it.
//
// An empty connURI selects the default adapter with no parsed target. A
// target without a server component is local and also selects the default
// adapter, as does a server with no scheme. Remote targets select an
// adapter by scheme; a remote scheme with no specialized adapter falls
// back to the default adapter with a warning, since reading the source
// disks may fail later.
//
// Classification is deterministic: identical input always yields the same
// kind and target.
func Classify(connURI string) (Kind, *ConnectionTarget, error) {
	if connURI == "" {
		return KindDefault, nil, nil
	}

	target, err := Parse(connURI)
	if err != nil {
		return KindDefault, nil, err
	}

	switch {
	case target.Server == "":
		return KindDefault, target, nil
	case target.Scheme == "":
		return KindDefault, target, nil
	case vCenterSchemes[target.Scheme]:
		return KindVCenterHTTPS, target, nil
	case target.Scheme == "xen+ssh":
		return KindXenSSH, target, nil
	default:
		log.WithFields(log.Fields{
			"uri":    connURI,
			"scheme": target.Scheme,
		}).Warn("Unsupported remote scheme; using the default adapter, conversion may fail to read the source disks")
		return KindDefault, target, nil
	}
}

// Parse parses a connection URI into its structural components.
//
// net/url accepts some strings a hypervisor URI parser rejects, so
// anything containing whitespace is refused up front; "not a uri" must
// fail rather than parse as an opaque path.
func Parse(connURI string) (*ConnectionTarget, error) {
	if strings.ContainsAny(connURI, " \t\r\n") {
		return nil, &InvalidURIError{Raw: connURI, Err: fmt.Errorf("whitespace in URI")}
	}

	u, err := url.Parse(connURI)
	if err != nil {
		return nil, &InvalidURIError{Raw: connURI, Err: err}
	}

	return &ConnectionTarget{
		Raw:    connURI,
		Scheme: u.Scheme,
		Server: u.Hostname(),
	}, nil
}
