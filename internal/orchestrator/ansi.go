package orchestrator

import "regexp"

// ansiRe matches CSI sequences (ESC [ ... letter), OSC strings
// (ESC ] ... BEL), and bare carriage returns — everything a vendor CLI
// leaves in a scraped pane buffer that isn't content.
var ansiRe = regexp.MustCompile(`\x1b\[[0-9;?]*[A-Za-z]|\x1b\][^\x07]*\x07|\r`)

// StripANSI removes terminal escape sequences and carriage returns from s,
// keeping all other bytes.
func StripANSI(s string) string {
	return ansiRe.ReplaceAllString(s, "")
}
