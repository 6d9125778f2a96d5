package services

import (
	"path"
	"strings"
)

// resolveRelativePath resolves a reference target written in originDoc
// against originDoc's directory, normalizing "." and "..", and returns the
// canonical slash-separated path (spec.md §4.3 step 6).
func resolveRelativePath(originDoc, target string) string {
	if target == "" {
		return ""
	}
	if strings.HasPrefix(target, "/") {
		return path.Clean(strings.TrimPrefix(target, "/"))
	}
	dir := path.Dir(originDoc)
	if dir == "." {
		return path.Clean(target)
	}
	return path.Clean(path.Join(dir, target))
}

// slugify converts heading text into a slug: lowercase, non-alphanumeric
// runs collapse to a single '-', leading/trailing '-' trimmed. Used for
// anchor validation (spec.md §4.6).
func slugify(s string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash && b.Len() > 0 {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
