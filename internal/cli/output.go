package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"gopkg.in/yaml.v3"
)

// Table renders data as a formatted table.
type Table struct {
	headers []string
	rows    [][]string
	writer  io.Writer
}

// NewTable creates a new table with the given headers.
func NewTable(w io.Writer, headers ...string) *Table {
	return &Table{
		headers: headers,
		writer:  w,
	}
}

// AddRow adds a row to the table.
func (t *Table) AddRow(cols ...string) {
	t.rows = append(t.rows, cols)
}

// Render writes the table.
func (t *Table) Render() {
	w := tabwriter.NewWriter(t.writer, 0, 0, 2, ' ', 0)

	// Header
	fmt.Fprintln(w, strings.Join(t.headers, "\t"))

	// Separator
	sep := make([]string, len(t.headers))
	for i, h := range t.headers {
		sep[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(w, strings.Join(sep, "\t"))

	// Rows
	for _, row := range t.rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}

	w.Flush()
}

// printOutput prints data in the requested format.
func printOutput(w io.Writer, data interface{}) error {
	switch getOutputFormat() {
	case "yaml":
		return printYAML(w, data)
	default:
		// Table callers render themselves; anything else falls back to JSON.
		return printJSON(w, data)
	}
}

func printJSON(w io.Writer, data interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(w io.Writer, data interface{}) error {
	// Round-trip through JSON so YAML keys follow the API's json tags.
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(generic)
}

// truncate shortens a string to maxLen, adding "..." if truncated.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}

// formatStatus returns a status string with visual indicator.
func formatStatus(status string) string {
	switch strings.ToLower(status) {
	case "ok", "ready", "active", "pro":
		return "[+] " + status
	case "unreachable", "error", "failed":
		return "[-] " + status
	default:
		return status
	}
}

func formatQuantity(q *float64, unit string) string {
	if q == nil {
		return "-"
	}
	s := strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", *q), "0"), ".")
	if unit != "" {
		s += " " + unit
	}
	return s
}
