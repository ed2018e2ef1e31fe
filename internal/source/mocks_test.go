package source

import (
	"context"
	"fmt"
)

// mockDumper is a mock implementation of GuestDumper for testing.
type mockDumper struct {
	xml   string
	err   error
	calls []string
}

func (m *mockDumper) DumpGuestXML(_ context.Context, guest string) (string, error) {
	m.calls = append(m.calls, guest)
	if m.err != nil {
		return "", m.err
	}
	return m.xml, nil
}

// mockBackend is a mock implementation of BackendReporter for testing.
type mockBackend struct {
	name string
}

func (m *mockBackend) Backend() string {
	return m.name
}

// staticParse returns a parser that always yields the given source.
func staticParse(src *Source) DescriptorParser {
	return func(string) (*Source, error) {
		// Copy so adapters cannot alias the test fixture.
		cp := *src
		cp.Disks = append([]Disk(nil), src.Disks...)
		return &cp, nil
	}
}

// failingParse returns a parser that always fails.
func failingParse(msg string) DescriptorParser {
	return func(string) (*Source, error) {
		return nil, fmt.Errorf("%s", msg)
	}
}
