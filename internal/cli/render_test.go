package cli

import (
	"bytes"
	"strings"
	"testing"
)

func TestPrintJSON(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"n": 1}); err != nil {
		t.Fatal(err)
	}
	if got := strings.TrimSpace(buf.String()); got != "{\n  \"n\": 1\n}" {
		t.Errorf("PrintJSON = %q", got)
	}
}

func TestColorize(t *testing.T) {
	t.Parallel()
	if got := Colorize("x", "blue", true); got != "\x1b[34mx\x1b[0m" {
		t.Errorf("Colorize enabled = %q", got)
	}
	if got := Colorize("x", "blue", false); got != "x" {
		t.Errorf("Colorize disabled = %q", got)
	}
	if got := Colorize("x", "mauve", true); got != "x" {
		t.Errorf("Colorize unknown color = %q", got)
	}
}

func TestTableAligns(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	tbl := NewTable(&buf)
	tbl.Row("NAME", "STATUS")
	tbl.Row("bob", "alive")
	if err := tbl.Flush(); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "NAME") || !strings.HasPrefix(lines[1], "bob") {
		t.Errorf("table = %q", buf.String())
	}
}
