// Package size parses human-entered disk size specifications.
package size

import (
	"fmt"
	"strconv"
)

// InvalidSizeError reports a size specification that could not be parsed.
// It carries the original string so callers can render it in messages.
type InvalidSizeError struct {
	Spec string
}

func (e *InvalidSizeError) Error() string {
	return fmt.Sprintf("could not parse size specification %q", e.Spec)
}

// Parse converts a size specification into a byte count.
//
// A specification is a decimal magnitude with an optional single-letter
// suffix: k/K, m/M, g/G, t/T, p/P and e/E are powers of 1024, and a
// lowercase s means 512-byte sectors. A bare number with no suffix is
// interpreted as kilobytes, not bytes. That asymmetry is a long-standing
// convention existing callers rely on; do not "fix" it.
//
// No upper bound is enforced here. Sizes near the uint64 limit are the
// caller's problem.
func Parse(spec string) (uint64, error) {
	if spec == "" {
		return 0, &InvalidSizeError{Spec: spec}
	}

	digits := spec
	var unit byte
	if last := spec[len(spec)-1]; last < '0' || last > '9' {
		unit = last
		digits = spec[:len(spec)-1]
	}

	n, err := strconv.ParseUint(digits, 10, 64)
	if err != nil {
		return 0, &InvalidSizeError{Spec: spec}
	}

	switch unit {
	case 0:
		// Bare number: kilobytes.
		return n * 1024, nil
	case 'k', 'K':
		return n * 1024, nil
	case 'm', 'M':
		return n * 1024 * 1024, nil
	case 'g', 'G':
		return n * 1024 * 1024 * 1024, nil
	case 't', 'T':
		return n * 1024 * 1024 * 1024 * 1024, nil
	case 'p', 'P':
		return n * 1024 * 1024 * 1024 * 1024 * 1024, nil
	case 'e', 'E':
		return n * 1024 * 1024 * 1024 * 1024 * 1024 * 1024, nil
	case 's':
		return n * 512, nil
	default:
		return 0, &InvalidSizeError{Spec: spec}
	}
}
