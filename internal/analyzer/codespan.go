package analyzer

import "strings"

// codeSpanTracker identifies lines that fall inside a fenced (```) or
// 4-space-indented code block, so the tokenizer can exclude them from term
// frequency while the section body keeps the raw text.
type codeSpanTracker struct {
	inFence bool
}

// isCode reports whether the given line is inside a code span, updating
// tracker state as fence delimiters are crossed. Must be called once per
// line, in order.
func (t *codeSpanTracker) isCode(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "```") {
		wasFenced := t.inFence
		t.inFence = !t.inFence
		// The fence delimiter line itself counts as code.
		return wasFenced || t.inFence
	}
	if t.inFence {
		return true
	}
	// 4-space (or 1-tab) indented block, outside a fence.
	return strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t")
}
