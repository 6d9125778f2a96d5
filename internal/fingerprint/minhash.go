package fingerprint

// DefaultMinHashSize is H, the fixed MinHash vector length used at index
// time (spec.md §3 invariant 4).
const DefaultMinHashSize = 128

// MinHash produces an H-value signature over a set of distinct tokens.
// Slot i is the minimum, over every token, of hash(token, seed=i). Two
// documents whose signatures agree on a fraction f of slots have expected
// Jaccard similarity f.
func MinHash(tokens []string, h int) []uint64 {
	sig := make([]uint64, h)
	for i := range sig {
		sig[i] = ^uint64(0)
	}

	seen := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}

		for i := 0; i < h; i++ {
			v := seededHash(t, uint64(i))
			if v < sig[i] {
				sig[i] = v
			}
		}
	}

	return sig
}

// MinHashSimilarity estimates Jaccard similarity as the fraction of slots
// where two equal-length signatures agree.
func MinHashSimilarity(a, b []uint64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	matches := 0
	for i := range a {
		if a[i] == b[i] {
			matches++
		}
	}
	return float64(matches) / float64(len(a))
}

// Jaccard computes exact set Jaccard similarity: |A ∩ B| / |A ∪ B|.
func Jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// ToSet converts a slice of tokens to a distinct-element set.
func ToSet(tokens []string) map[string]struct{} {
	s := make(map[string]struct{}, len(tokens))
	for _, t := range tokens {
		s[t] = struct{}{}
	}
	return s
}
