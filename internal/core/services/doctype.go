package services

import (
	"strings"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

// docTypeRules is the closed set of path-substring rules used to infer a
// document's type (spec.md §4.6), checked in order — the first match wins.
var docTypeRules = []struct {
	substr string
	typ    domain.DocType
}{
	{"adr", domain.DocTypeADR},
	{"architecture", domain.DocTypeArchitecture},
	{"runbook", domain.DocTypeRunbook},
	{"testing", domain.DocTypeTesting},
	{"archived", domain.DocTypeArchived},
	{"example", domain.DocTypeExample},
	{"report", domain.DocTypeReport},
	{"agent", domain.DocTypeAgent},
}

// InferDocType classifies a document path using closed path-substring
// rules, falling back to DocTypeUnknown.
func InferDocType(path string) domain.DocType {
	lower := strings.ToLower(path)
	for _, rule := range docTypeRules {
		if strings.Contains(lower, rule.substr) {
			return rule.typ
		}
	}
	return domain.DocTypeUnknown
}

// docTypeWeight is the canonicality base weight per doc type, in [0.1, 1.0]
// (spec.md §4.6).
var docTypeWeight = map[domain.DocType]float64{
	domain.DocTypeADR:          0.9,
	domain.DocTypeArchitecture: 0.85,
	domain.DocTypeRunbook:      0.8,
	domain.DocTypeTesting:      0.5,
	domain.DocTypeReport:       0.45,
	domain.DocTypeAgent:        0.4,
	domain.DocTypeExample:      0.3,
	domain.DocTypeArchived:     0.1,
	domain.DocTypeUnknown:      0.5,
}
