package libvirt

import (
	"fmt"

	"github.com/digitalocean/go-libvirt"
)

// mockDomainClient is a mock implementation of domainClient for testing.
type mockDomainClient struct {
	domains map[string]*mockDomain
}

type mockDomain struct {
	state    int32
	xmlDesc  string
	stateErr error
	xmlErr   error
}

func newMockDomainClient() *mockDomainClient {
	return &mockDomainClient{domains: make(map[string]*mockDomain)}
}

func (m *mockDomainClient) DomainLookupByName(name string) (libvirt.Domain, error) {
	if _, ok := m.domains[name]; !ok {
		return libvirt.Domain{}, fmt.Errorf("domain not found: %s", name)
	}
	return libvirt.Domain{Name: name}, nil
}

func (m *mockDomainClient) DomainGetState(dom libvirt.Domain, _ uint32) (int32, int32, error) {
	d, ok := m.domains[dom.Name]
	if !ok {
		return 0, 0, fmt.Errorf("domain not found: %s", dom.Name)
	}
	if d.stateErr != nil {
		return 0, 0, d.stateErr
	}
	return d.state, 0, nil
}

func (m *mockDomainClient) DomainGetXMLDesc(dom libvirt.Domain, _ libvirt.DomainXMLFlags) (string, error) {
	d, ok := m.domains[dom.Name]
	if !ok {
		return "", fmt.Errorf("domain not found: %s", dom.Name)
	}
	if d.xmlErr != nil {
		return "", d.xmlErr
	}
	return d.xmlDesc, nil
}
