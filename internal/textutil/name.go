package textutil

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/unicode/norm"
)

const ellipsis = "…"

// NormalizeName prepares a mapping name for display: NFC composition, then
// sanitization. The kernel reports file names as raw bytes, so decomposed
// names from some filesystems would otherwise render as separate marks.
func NormalizeName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return SanitizeTerminalText(norm.NFC.String(name))
}

// DisplayWidth reports the number of terminal columns text occupies.
func DisplayWidth(text string) int {
	return runewidth.StringWidth(text)
}

// TruncateLeft keeps the tail of text within width columns, prefixing an
// ellipsis when something was dropped. Paths keep their most specific part.
func TruncateLeft(text string, width int) string {
	if width <= 0 {
		return ""
	}
	if runewidth.StringWidth(text) <= width {
		return text
	}
	if width <= 1 {
		return ellipsis
	}
	runes := []rune(text)
	used := 1
	start := len(runes)
	for start > 0 {
		w := runewidth.RuneWidth(runes[start-1])
		if used+w > width {
			break
		}
		used += w
		start--
	}
	return ellipsis + string(runes[start:])
}
