package callback

import (
	"strings"
	"unicode"
)

// sanitizeReason cleans the processor-supplied failure reason before it
// is written into an order note: invalid UTF-8 and control characters are
// dropped, anything between angle brackets is removed, and runs of
// whitespace collapse to a single space.
func sanitizeReason(s string) string {
	s = strings.ToValidUTF8(s, "")

	var b strings.Builder
	b.Grow(len(s))
	inTag := false
	for _, r := range s {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case inTag:
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		case unicode.IsControl(r):
		default:
			b.WriteRune(r)
		}
	}

	return strings.Join(strings.Fields(b.String()), " ")
}
