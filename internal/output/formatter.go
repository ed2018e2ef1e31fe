// Package output provides formatters for displaying conversion plans
// in various formats (table, YAML, JSON).
package output

import (
	"fmt"

	"github.com/jbweber/crucible/internal/source"
)

// Plan is what a conversion run is about to do: the guest it will read,
// the adapter selected for the connection target, and the normalized
// source description.
type Plan struct {
	Guest   string         `yaml:"guest" json:"guest"`
	Adapter string         `yaml:"adapter" json:"adapter"`
	Source  *source.Source `yaml:"source" json:"source"`
}

// Format represents an output format type.
type Format string

const (
	// FormatTable is a human-readable table format.
	FormatTable Format = "table"
	// FormatYAML is a YAML format for declarative consumption.
	FormatYAML Format = "yaml"
	// FormatJSON is a JSON format for machine consumption.
	FormatJSON Format = "json"
)

// Formatter formats conversion plans for output.
type Formatter interface {
	// FormatPlan formats a single conversion plan.
	FormatPlan(plan *Plan) (string, error)
}

// Options contains options for formatting output.
type Options struct {
	// Format specifies the output format.
	Format Format
	// NoHeaders omits headers in table format.
	NoHeaders bool
}

// NewFormatter creates a new Formatter based on the specified format.
func NewFormatter(opts Options) (Formatter, error) {
	switch opts.Format {
	case FormatTable:
		return &TableFormatter{NoHeaders: opts.NoHeaders}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (supported: table, yaml, json)", opts.Format)
	}
}

// ValidateFormat checks if a format string is valid.
func ValidateFormat(format string) error {
	f := Format(format)
	switch f {
	case FormatTable, FormatYAML, FormatJSON:
		return nil
	default:
		return fmt.Errorf("invalid format: %s (valid formats: table, yaml, json)", format)
	}
}
