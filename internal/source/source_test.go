package source

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/jbweber/crucible/internal/uri"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name        string
		connURI     string
		backend     string
		sshAuthSock string
		wantKind    uri.Kind
		wantErr     error // sentinel to match with errors.Is, nil for success
		wantBackend bool  // expect *UnsupportedBackendError
		wantURIErr  bool  // expect *uri.InvalidURIError
	}{
		{
			name:     "no connection URI selects default",
			connURI:  "",
			backend:  "direct",
			wantKind: uri.KindDefault,
		},
		{
			name:     "local connection selects default",
			connURI:  "qemu:///system",
			backend:  "direct",
			wantKind: uri.KindDefault,
		},
		{
			name:        "vcenter with direct backend",
			connURI:     "esx://vc.example.com/",
			backend:     "direct",
			sshAuthSock: "",
			wantKind:    uri.KindVCenterHTTPS,
		},
		{
			name:        "vcenter with libvirt backend refused",
			connURI:     "esx://vc.example.com/",
			backend:     "libvirt",
			wantBackend: true,
		},
		{
			name:        "xen with agent",
			connURI:     "xen+ssh://xenhost",
			backend:     "direct",
			sshAuthSock: "/tmp/ssh-agent.sock",
			wantKind:    uri.KindXenSSH,
		},
		{
			name:        "xen without agent refused",
			connURI:     "xen+ssh://xenhost",
			backend:     "direct",
			sshAuthSock: "",
			wantErr:     ErrNoSSHAgent,
		},
		{
			name:        "xen with libvirt backend refused before agent check",
			connURI:     "xen+ssh://xenhost",
			backend:     "libvirt",
			sshAuthSock: "",
			wantBackend: true,
		},
		{
			name:       "malformed URI",
			connURI:    "not a uri",
			backend:    "direct",
			wantURIErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			adapter, err := Select(tt.connURI, "guest1", Options{
				Engine:      &mockBackend{name: tt.backend},
				SSHAuthSock: tt.sshAuthSock,
				Dumper:      &mockDumper{xml: "<domain/>"},
				Parse:       staticParse(&Source{Name: "guest1"}),
			})

			switch {
			case tt.wantErr != nil:
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Select() error = %v, want %v", err, tt.wantErr)
				}
				return
			case tt.wantBackend:
				var backendErr *UnsupportedBackendError
				if !errors.As(err, &backendErr) {
					t.Fatalf("Select() error = %v, want *UnsupportedBackendError", err)
				}
				if backendErr.Backend != tt.backend {
					t.Errorf("UnsupportedBackendError.Backend = %q, want %q", backendErr.Backend, tt.backend)
				}
				// The remediation hint is part of the contract.
				if !strings.Contains(err.Error(), "direct") {
					t.Errorf("error %q does not carry remediation guidance", err.Error())
				}
				return
			case tt.wantURIErr:
				var uriErr *uri.InvalidURIError
				if !errors.As(err, &uriErr) {
					t.Fatalf("Select() error = %v, want *uri.InvalidURIError", err)
				}
				return
			}

			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if adapter.Kind() != tt.wantKind {
				t.Errorf("Kind() = %v, want %v", adapter.Kind(), tt.wantKind)
			}
		})
	}
}

// The SSH agent check happens at adapter construction, before any guest
// lookup, so it fails even for nonsense guest identifiers.
func TestSelect_XenAgentCheckPrecedesGuestAccess(t *testing.T) {
	dumper := &mockDumper{xml: "<domain/>"}

	_, err := Select("xen+ssh://xenhost", "no-such-guest", Options{
		Engine: &mockBackend{name: "direct"},
		Dumper: dumper,
		Parse:  staticParse(&Source{}),
	})
	if !errors.Is(err, ErrNoSSHAgent) {
		t.Fatalf("Select() error = %v, want ErrNoSSHAgent", err)
	}
	if len(dumper.calls) != 0 {
		t.Errorf("guest XML was dumped despite missing SSH agent")
	}
}

func TestAdapter_FetchSource_Default(t *testing.T) {
	want := &Source{
		Name:      "guest1",
		MemoryKiB: 2097152,
		VCPUs:     2,
		Disks: []Disk{
			{Locator: "/var/lib/libvirt/images/guest1.qcow2", Format: "qcow2"},
		},
	}

	adapter, err := Select("", "guest1", Options{
		Engine: &mockBackend{name: "direct"},
		Dumper: &mockDumper{xml: "<domain/>"},
		Parse:  staticParse(want),
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	src, err := adapter.FetchSource(context.Background())
	if err != nil {
		t.Fatalf("FetchSource() error = %v", err)
	}

	// The default adapter performs no disk rewriting.
	if len(src.Disks) != 1 || src.Disks[0] != want.Disks[0] {
		t.Errorf("Disks = %v, want %v", src.Disks, want.Disks)
	}
	if src.Name != want.Name || src.MemoryKiB != want.MemoryKiB || src.VCPUs != want.VCPUs {
		t.Errorf("metadata = %+v, want %+v", src, want)
	}
}

func TestAdapter_FetchSource_VCenterRewrite(t *testing.T) {
	parsed := &Source{
		Name: "guest1",
		Disks: []Disk{
			{Locator: "[datastore1] guest1/guest1.vmdk", Format: "vmdk"},
			{Locator: "[datastore2] guest1/data.vmdk", Format: "vmdk"},
		},
	}

	adapter, err := Select("esx://vc.example.com/?no_verify=1", "guest1", Options{
		Engine: &mockBackend{name: "direct"},
		Dumper: &mockDumper{xml: "<domain/>"},
		Parse:  staticParse(parsed),
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	src, err := adapter.FetchSource(context.Background())
	if err != nil {
		t.Fatalf("FetchSource() error = %v", err)
	}

	if len(src.Disks) != 2 {
		t.Fatalf("got %d disks, want 2", len(src.Disks))
	}
	for i, d := range src.Disks {
		if !strings.HasPrefix(d.Locator, "https://vc.example.com/folder/") {
			t.Errorf("disk %d locator = %q, want HTTPS datastore URL", i, d.Locator)
		}
		if d.Format != "raw" {
			t.Errorf("disk %d format = %q, want raw", i, d.Format)
		}
	}

	// Name passes through untouched.
	if src.Name != "guest1" {
		t.Errorf("Name = %q, want guest1", src.Name)
	}
}

func TestAdapter_FetchSource_XenRewrite(t *testing.T) {
	parsed := &Source{
		Name: "guest1",
		Disks: []Disk{
			{Locator: "/dev/vg0/guest1-disk", Format: "raw"},
		},
	}

	adapter, err := Select("xen+ssh://xenhost", "guest1", Options{
		Engine:      &mockBackend{name: "direct"},
		SSHAuthSock: "/tmp/agent.sock",
		Dumper:      &mockDumper{xml: "<domain/>"},
		Parse:       staticParse(parsed),
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	src, err := adapter.FetchSource(context.Background())
	if err != nil {
		t.Fatalf("FetchSource() error = %v", err)
	}

	want := Disk{Locator: "ssh://xenhost/dev/vg0/guest1-disk", Format: "raw"}
	if len(src.Disks) != 1 || src.Disks[0] != want {
		t.Errorf("Disks = %v, want [%v]", src.Disks, want)
	}
}

func TestAdapter_FetchSource_DumpFailure(t *testing.T) {
	dumpErr := fmt.Errorf("guest guest1 is running")

	adapter, err := Select("", "guest1", Options{
		Engine: &mockBackend{name: "direct"},
		Dumper: &mockDumper{err: dumpErr},
		Parse:  staticParse(&Source{}),
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	_, err = adapter.FetchSource(context.Background())
	if !errors.Is(err, dumpErr) {
		t.Fatalf("FetchSource() error = %v, want wrapped dump error", err)
	}
}

func TestAdapter_FetchSource_ParseFailure(t *testing.T) {
	adapter, err := Select("", "guest1", Options{
		Engine: &mockBackend{name: "direct"},
		Dumper: &mockDumper{xml: "<bogus/>"},
		Parse:  failingParse("unexpected element"),
	})
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	_, err = adapter.FetchSource(context.Background())
	if err == nil || !strings.Contains(err.Error(), "unexpected element") {
		t.Fatalf("FetchSource() error = %v, want parse failure", err)
	}
}
