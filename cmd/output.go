package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

var titleCaser = cases.Title(language.English)

// title renders an identifier such as "enhanced" or "delta_delta" for humans
func title(s string) string {
	return titleCaser.String(strings.ReplaceAll(s, "_", " "))
}

// writeStructured writes v as JSON or YAML. It reports false for "table"
// so the caller can render its own layout.
func writeStructured(w io.Writer, format string, v any) (bool, error) {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return true, enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return true, err
		}
		return true, enc.Close()
	case "table", "":
		return false, nil
	}
	return true, fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
}

func newTabWriter(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
}

// writeVectorRows prints values perRow at a time, prefixed by the index
// of the first value on the row
func writeVectorRows(w io.Writer, values []float64, perRow int) {
	for start := 0; start < len(values); start += perRow {
		end := min(start+perRow, len(values))
		parts := make([]string, 0, end-start)
		for _, v := range values[start:end] {
			parts = append(parts, fmt.Sprintf("%10.4f", v))
		}
		fmt.Fprintf(w, "  [%2d] %s\n", start, strings.Join(parts, " "))
	}
}
