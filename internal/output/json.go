package output

import (
	"encoding/json"
	"fmt"
)

// JSONFormatter formats plans as JSON.
type JSONFormatter struct{}

// FormatPlan formats a conversion plan as JSON.
func (f *JSONFormatter) FormatPlan(plan *Plan) (string, error) {
	data, err := json.MarshalIndent(plan, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal plan to JSON: %w", err)
	}

	return string(data) + "\n", nil
}
