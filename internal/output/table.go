package output

import (
	"bytes"
	"fmt"
	"text/tabwriter"
)

// TableFormatter formats plans as human-readable tables.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool
}

// FormatPlan formats a conversion plan as a summary line plus a disk table.
func (f *TableFormatter) FormatPlan(plan *Plan) (string, error) {
	var buf bytes.Buffer

	src := plan.Source
	fmt.Fprintf(&buf, "Guest:   %s\n", plan.Guest)
	fmt.Fprintf(&buf, "Adapter: %s\n", plan.Adapter)
	if src != nil {
		fmt.Fprintf(&buf, "Memory:  %d MiB\n", src.MemoryKiB/1024)
		fmt.Fprintf(&buf, "VCPUs:   %d\n", src.VCPUs)
	}
	buf.WriteString("\n")

	if src == nil || len(src.Disks) == 0 {
		buf.WriteString("No disks found\n")
		return buf.String(), nil
	}

	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "DISK\tFORMAT\tLOCATOR")
	}
	for i, d := range src.Disks {
		_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", i, d.Format, d.Locator)
	}
	_ = w.Flush()

	return buf.String(), nil
}
