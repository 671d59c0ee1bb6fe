// Package cli holds the rendering helpers shared by the teamctl
// subcommands: JSON output, aligned tables, and TTY-aware coloring.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"golang.org/x/term"
)

// PrintJSON writes v to w as indented JSON.
func PrintJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// IsTerminal reports whether f is attached to a terminal. Table coloring
// is enabled only then, so piped output stays machine-readable.
func IsTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

var colorCodes = map[string]string{
	"red":    "31",
	"green":  "32",
	"yellow": "33",
	"blue":   "34",
	"purple": "35",
	"cyan":   "36",
	"orange": "33",
	"pink":   "35",
	"dim":    "2",
	"bold":   "1",
}

// Colorize wraps s in the ANSI code for color when enabled; unknown color
// names and disabled output return s unchanged.
func Colorize(s, color string, enabled bool) string {
	code, ok := colorCodes[color]
	if !enabled || !ok {
		return s
	}
	return "\x1b[" + code + "m" + s + "\x1b[0m"
}

// Table writes aligned columnar output.
type Table struct {
	tw *tabwriter.Writer
}

// NewTable returns a Table writing to w.
func NewTable(w io.Writer) *Table {
	return &Table{tw: tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)}
}

// Row appends one row of columns.
func (t *Table) Row(cols ...interface{}) {
	for i, c := range cols {
		if i > 0 {
			fmt.Fprint(t.tw, "\t")
		}
		fmt.Fprint(t.tw, c)
	}
	fmt.Fprintln(t.tw)
}

// Flush writes the accumulated rows.
func (t *Table) Flush() error {
	return t.tw.Flush()
}
