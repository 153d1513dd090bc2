package textutil

import (
	"fmt"
	"strings"
	"unicode"
)

// SanitizeTerminalText replaces control characters so text read from the
// target (mapping names, command lines) cannot inject terminal escape
// sequences when rendered. Whitespace controls become spaces, other controls
// become '?', and invisible formatting runes are shown as <U+XXXX>.
func SanitizeTerminalText(text string) string {
	for _, r := range text {
		if requiresSanitization(r) {
			return sanitize(text)
		}
	}
	return text
}

func requiresSanitization(r rune) bool {
	return r < 0x20 || r == 0x7f || isFormattingRune(r)
}

func sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		switch {
		case r == '\t', r == '\n', r == '\r':
			b.WriteByte(' ')
		case r < 0x20 || r == 0x7f:
			b.WriteByte('?')
		case isFormattingRune(r):
			fmt.Fprintf(&b, "<U+%04X>", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// isFormattingRune matches bidi controls, zero-width joiners and the other
// Cf runes that change how neighbouring text is displayed.
func isFormattingRune(r rune) bool {
	if r == 0x2028 || r == 0x2029 {
		return true
	}
	return unicode.Is(unicode.Cf, r)
}
