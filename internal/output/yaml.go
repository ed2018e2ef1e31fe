package output

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// YAMLFormatter formats plans as YAML.
type YAMLFormatter struct{}

// FormatPlan formats a conversion plan as YAML.
func (f *YAMLFormatter) FormatPlan(plan *Plan) (string, error) {
	data, err := yaml.Marshal(plan)
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to YAML: %w", err)
	}

	return string(data), nil
}
