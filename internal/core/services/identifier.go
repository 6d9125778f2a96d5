package services

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

// docIdentifierRe extracts the identifier a *document itself* answers to
// from its filename, e.g. "docs/adr/ADR-013-retries.md" -> "013".
var docIdentifierRe = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,9}[-_]?(\d{2,4})\b`)

// identifierFromPath returns the raw (unpadded) numeric identifier a
// document's filename declares, if any.
func identifierFromPath(path string) (string, bool) {
	base := filepath.Base(path)
	m := docIdentifierRe.FindStringSubmatch(base)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// identifierWidth returns the zero-padding width to use for the identifier
// table: the length of the longest raw identifier observed, minimum 3
// (spec.md §4.6).
func identifierWidth(rawIdentifiers []string) int {
	width := 3
	for _, id := range rawIdentifiers {
		if len(id) > width {
			width = len(id)
		}
	}
	return width
}

// padIdentifier zero-pads a raw numeric identifier string to width digits.
// Non-numeric input is returned unchanged.
func padIdentifier(raw string, width int) string {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return raw
	}
	return fmt.Sprintf("%0*d", width, n)
}
