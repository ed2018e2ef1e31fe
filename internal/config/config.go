// Package config loads crucible's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// BackendDirect runs the conversion appliance directly. This is the
	// default and the only backend that can read remote source disks.
	BackendDirect = "direct"

	// BackendLibvirt runs the conversion appliance through libvirt. It is
	// known to mishandle remote source access; the remote source adapters
	// refuse to start on it.
	BackendLibvirt = "libvirt"
)

// Config is crucible's runtime configuration.
type Config struct {
	// Backend is the storage backend used by the conversion engine.
	Backend string `yaml:"backend,omitempty"`

	// LibvirtSocket is the path of the local libvirt daemon socket.
	// Empty means the system default.
	LibvirtSocket string `yaml:"libvirt_socket,omitempty"`

	// ConnectTimeoutSeconds bounds the libvirt connection attempt.
	ConnectTimeoutSeconds int `yaml:"connect_timeout_seconds,omitempty"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Backend:               BackendDirect,
		ConnectTimeoutSeconds: 5,
	}
}

// Load reads and validates a configuration file. Fields absent from the
// file keep their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendDirect, BackendLibvirt:
	default:
		return fmt.Errorf("backend must be %q or %q, got %q", BackendDirect, BackendLibvirt, c.Backend)
	}

	if c.ConnectTimeoutSeconds <= 0 {
		return fmt.Errorf("connect_timeout_seconds must be > 0, got %d", c.ConnectTimeoutSeconds)
	}

	return nil
}

// ConnectTimeout returns the connection timeout as a duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.ConnectTimeoutSeconds) * time.Second
}
