package render

import (
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

const ellipsis = "…"

func runeWidth(ru rune) int {
	w := runewidth.RuneWidth(ru)
	if w < 0 {
		return 0
	}
	return w
}

func measureTextWidth(text string) int {
	width := 0
	for _, ru := range text {
		width += runeWidth(ru)
	}
	return width
}

func truncateTextToWidth(text string, maxWidth int) string {
	if maxWidth <= 0 || text == "" {
		return ""
	}
	if measureTextWidth(text) <= maxWidth {
		return text
	}
	if maxWidth <= 1 {
		return ellipsis
	}

	available := maxWidth - 1
	var builder strings.Builder
	currentWidth := 0
	for _, ru := range text {
		w := runeWidth(ru)
		if currentWidth+w > available {
			break
		}
		builder.WriteRune(ru)
		currentWidth += w
	}
	builder.WriteString(ellipsis)
	return builder.String()
}

// drawTextLine draws text from startX, clipped to maxWidth columns, and
// returns the column after the last drawn rune. Zero-width runes are attached
// to the preceding cell as combining characters.
func (r *Renderer) drawTextLine(startX, y, maxWidth int, text string, style tcell.Style) int {
	x := startX
	runes := []rune(text)
	for i := 0; i < len(runes); {
		mainc := runes[i]
		w := runeWidth(mainc)
		if x-startX+w > maxWidth {
			break
		}
		i++

		var combc []rune
		for i < len(runes) && runeWidth(runes[i]) == 0 {
			combc = append(combc, runes[i])
			i++
		}
		r.screen.SetContent(x, y, mainc, combc, style)
		x += w
	}
	return x
}

func (r *Renderer) fillLine(startX, y, endX int, style tcell.Style) {
	for x := startX; x < endX; x++ {
		r.screen.SetContent(x, y, ' ', nil, style)
	}
}
