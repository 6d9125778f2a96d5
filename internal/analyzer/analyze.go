package analyzer

import (
	"regexp"
	"strings"

	"github.com/basalt-docs/docdex/internal/core/domain"
)

var headingRe = regexp.MustCompile(`^(#{1,6})\s+(.*\S)\s*$`)

// headingWeight is the multiplier applied to heading tokens when building
// term frequencies (spec: heading tokens are indexed twice).
const headingWeight = 2

// Result is everything a single-file analysis produces, before the indexer
// wraps it into a domain.Document.
type Result struct {
	Lines      []string
	Sections   []domain.Section
	TermFreq   map[string]int
	Length     int
	References []domain.Reference
	// AllTokens is every indexable (stemmed) token in the document, in
	// document order, used by the fingerprint kit to build SimHash/MinHash.
	AllTokens []string
}

// Analyze decodes raw bytes and produces sections, term frequencies, and
// references. It never returns an error for malformed content — a document
// with no headings still produces one prelude section covering every line.
func Analyze(raw []byte) Result {
	text := Decode(raw)
	// Normalize line endings so line numbers and Split agree everywhere.
	text = strings.ReplaceAll(text, "\r\n", "\n")
	lines := strings.Split(text, "\n")
	// strings.Split on a trailing "\n" produces one trailing empty element;
	// drop it so LineCount matches the file's actual line count.
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}

	sections := segmentSections(lines)

	var refs []domain.Reference
	for i, line := range lines {
		refs = append(refs, ExtractReferences(line, i+1)...)
	}

	termFreq, allTokens := TermFrequencies(lines)
	length := 0
	for _, c := range termFreq {
		length += c
	}

	// Attach body text to each section now that we have the full line list.
	for i := range sections {
		start := sections[i].StartLine - 1
		end := sections[i].EndLine - 1
		if start < 0 {
			start = 0
		}
		if end > len(lines) {
			end = len(lines)
		}
		if start > end {
			start = end
		}
		sections[i].SetBody(strings.Join(lines[start:end], "\n"))
	}

	return Result{
		Lines:      lines,
		Sections:   sections,
		TermFreq:   termFreq,
		Length:     length,
		References: refs,
		AllTokens:  allTokens,
	}
}

// TermFrequencies computes stemmed term frequencies over a set of lines,
// skipping fenced and indented code spans and doubling the weight of
// heading-line tokens. It also returns the flattened, weight-expanded token
// list used to build SimHash/MinHash signatures. Shared by full-document
// analysis and on-demand section re-analysis so both apply identical rules.
func TermFrequencies(lines []string) (map[string]int, []string) {
	freq := make(map[string]int)
	var allTokens []string

	tracker := &codeSpanTracker{}
	for _, line := range lines {
		if tracker.isCode(line) {
			continue
		}

		weight := 1
		if headingRe.MatchString(line) {
			weight = headingWeight
		}

		for _, w := range Tokenize(line) {
			stemmed := Stem(w)
			freq[stemmed] += weight
			for k := 0; k < weight; k++ {
				allTokens = append(allTokens, stemmed)
			}
		}
	}

	return freq, allTokens
}

// segmentSections scans for ATX heading lines and produces disjoint,
// ordered sections covering [1, len(lines)+1). A synthetic level-0 prelude
// covers everything before the first heading (even if empty).
func segmentSections(lines []string) []domain.Section {
	type headingHit struct {
		line  int // 1-based
		level int
		text  string
	}

	var hits []headingHit
	tracker := &codeSpanTracker{}
	for i, line := range lines {
		isCode := tracker.isCode(line)
		if isCode {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			hits = append(hits, headingHit{
				line:  i + 1,
				level: len(m[1]),
				text:  m[2],
			})
		}
	}

	total := len(lines)
	sections := make([]domain.Section, 0, len(hits)+1)

	firstHeadingLine := total + 1
	if len(hits) > 0 {
		firstHeadingLine = hits[0].line
	}
	sections = append(sections, domain.Section{
		Heading:   "",
		Level:     0,
		StartLine: 1,
		EndLine:   firstHeadingLine,
	})

	for i, h := range hits {
		end := total + 1
		if i+1 < len(hits) {
			end = hits[i+1].line
		}
		sections = append(sections, domain.Section{
			Heading:   h.text,
			Level:     h.level,
			StartLine: h.line,
			EndLine:   end,
		})
	}

	return sections
}
