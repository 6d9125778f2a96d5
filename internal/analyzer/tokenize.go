// Package analyzer turns raw document bytes into tokens, sections, and
// outbound references. It is pure: identical input always yields identical
// output, on every platform, in every run — the indexer depends on this for
// its determinism guarantee.
package analyzer

import (
	"strings"
	"unicode"

	"github.com/blevesearch/go-porterstemmer"
)

// Stem applies a deterministic, pure Porter-family stemmer. It is the same
// stemmer bleve's own analysis pipeline uses, wired in directly rather than
// hand-rolled, per this corpus's preference for a real dependency over a
// bespoke suffix table.
func Stem(word string) string {
	if word == "" {
		return word
	}
	return porterstemmer.StemString(word)
}

// Tokenize splits text on non-alphanumeric runs, lowercases, and drops
// tokens shorter than 2 characters or present in the stopword list. It does
// not stem — callers stem separately so that raw tokens remain available
// for reference/heading extraction that must not be stemmed.
func Tokenize(text string) []string {
	var tokens []string
	var cur strings.Builder

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		w := strings.ToLower(cur.String())
		cur.Reset()
		if len(w) < 2 {
			return
		}
		if isStopword(w) {
			return
		}
		tokens = append(tokens, w)
	}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			cur.WriteRune(r)
		} else {
			flush()
		}
	}
	flush()

	return tokens
}

// TokenizeAndStem tokenizes then stems each token, in one pass.
func TokenizeAndStem(text string) []string {
	raw := Tokenize(text)
	out := make([]string, len(raw))
	for i, w := range raw {
		out[i] = Stem(w)
	}
	return out
}
