package analyzer

import "unicode/utf8"

// Decode converts raw file bytes to a UTF-8 string, replacing invalid byte
// sequences with the Unicode replacement character rather than failing.
// Line offsets in the result are preserved: replacement never removes or
// inserts newlines.
func Decode(raw []byte) string {
	if utf8.Valid(raw) {
		return string(raw)
	}

	var b []byte
	b = make([]byte, 0, len(raw))
	for i := 0; i < len(raw); {
		r, size := utf8.DecodeRune(raw[i:])
		if r == utf8.RuneError && size <= 1 {
			b = utf8.AppendRune(b, utf8.RuneError)
			i++
			continue
		}
		b = append(b, raw[i:i+size]...)
		i += size
	}
	return string(b)
}
