package analyzer

import (
	"regexp"
	"strings"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// markdownLinkRe matches both `[label](target)` and `![alt](target)`.
// The optional leading '!' distinguishes images.
var markdownLinkRe = regexp.MustCompile(`(!?)\[([^\]]*)\]\(([^)\s]+)(?:\s+"[^"]*")?\)`)

// identifierRe matches bare identifier-style references, e.g. ADR-013,
// ADR_0013, ADR 13. The identifier prefix is 2-10 characters: an uppercase
// letter followed by uppercase letters or digits.
var identifierRe = regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9})[-_ ]?(\d{2,4})\b`)

var externalSchemeRe = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9+.-]*://|^mailto:`)

// ExtractReferences scans one line of raw (unstemmed) text for outbound
// references. lineNo is 1-based.
func ExtractReferences(line string, lineNo int) []domain.Reference {
	var refs []domain.Reference

	for _, m := range markdownLinkRe.FindAllStringSubmatch(line, -1) {
		bang, label, target := m[1], m[2], m[3]

		anchor := ""
		targetPath := target
		if idx := strings.IndexByte(target, '#'); idx >= 0 {
			targetPath = target[:idx]
			anchor = target[idx+1:]
		}

		kind := domain.RefRelativePath
		switch {
		case bang == "!":
			kind = domain.RefImage
		case externalSchemeRe.MatchString(target):
			kind = domain.RefExternal
		}

		refs = append(refs, domain.Reference{
			Kind:       kind,
			RawText:    label,
			Target:     targetPath,
			Anchor:     anchor,
			SourceLine: lineNo,
		})
	}

	// Bare identifier tokens, skipping any text already inside a markdown
	// link (those already produced a relative-path or external reference).
	scrubbed := markdownLinkRe.ReplaceAllString(line, "")
	for _, m := range identifierRe.FindAllStringSubmatch(scrubbed, -1) {
		refs = append(refs, domain.Reference{
			Kind:       domain.RefIdentifier,
			RawText:    m[0],
			Target:     m[2], // raw digits; zero-padding happens at resolution time
			SourceLine: lineNo,
		})
	}

	return refs
}
