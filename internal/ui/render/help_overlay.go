package render

import (
	"fmt"
	"strings"

	"github.com/gdamore/tcell/v2"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

type helpOverlayEntry struct {
	keys string
	desc string
}

type helpOverlaySection struct {
	title   string
	entries []helpOverlayEntry
}

func buildHelpOverlayLines(state *statepkg.AppState) []string {
	autoDesc := "Enable auto zoom"
	if state != nil && state.AutoZoom {
		autoDesc = "Disable auto zoom"
	}

	sections := []helpOverlaySection{
		{
			title: "Navigation",
			entries: []helpOverlayEntry{
				{keys: "←↑↓→ / hjkl", desc: "Move cursor"},
				{keys: "PgUp/PgDn", desc: "Scroll one screen"},
				{keys: "Home/End", desc: "First / last page"},
				{keys: "↵ or Tab", desc: "Toggle page / memory view"},
			},
		},
		{
			title: "Page view",
			entries: []helpOverlayEntry{
				{keys: "+ / -", desc: "Zoom in / out"},
				{keys: "z", desc: autoDesc},
			},
		},
		{
			title: "Display",
			entries: []helpOverlayEntry{
				{keys: "v", desc: "Toggle VM statistics"},
				{keys: "?", desc: "Close this help"},
			},
		},
		{
			title: "Exit",
			entries: []helpOverlayEntry{
				{keys: "q / Esc", desc: "Quit"},
				{keys: "Ctrl+C", desc: "Quit immediately"},
				{keys: "Ctrl+Z", desc: "Suspend to shell"},
			},
		},
	}

	lines := make([]string, 0, 24)
	for i, section := range sections {
		if i > 0 {
			lines = append(lines, "")
		}
		lines = append(lines, section.title)
		for _, entry := range section.entries {
			lines = append(lines, fmt.Sprintf("  %-14s %s", entry.keys, entry.desc))
		}
	}
	return lines
}

func (r *Renderer) drawHelpOverlay(state *statepkg.AppState, w, h int) {
	baseStyle := tcell.StyleDefault.Background(r.theme.Background).Foreground(r.theme.HeaderFg)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r.screen.SetContent(x, y, ' ', nil, baseStyle)
		}
	}

	title := " Help "
	headerStyle := baseStyle.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg).Bold(true)
	titleStart := 0
	if tw := measureTextWidth(title); w > tw {
		titleStart = (w - tw) / 2
	}
	r.drawTextLine(titleStart, 0, w-titleStart, title, headerStyle)

	row := 2
	for _, line := range buildHelpOverlayLines(state) {
		if row >= h-1 {
			break
		}
		text := truncateTextToWidth(strings.TrimRight(line, " "), w-4)
		r.drawTextLine(2, row, w-4, text, baseStyle)
		row++
	}

	if h > 0 {
		r.drawTextLine(0, h-1, w, truncateTextToWidth("? toggle · Esc/q close", w), headerStyle)
	}
}

// drawVMStatsOverlay draws a framed box in the top right corner of the grid.
func (r *Renderer) drawVMStatsOverlay(state *statepkg.AppState, w, h int) {
	lines := buildVMStatsLines(state.VMStats)
	boxW := 0
	for _, line := range lines {
		if lw := measureTextWidth(line); lw > boxW {
			boxW = lw
		}
	}
	boxW += 4
	boxH := len(lines) + 2
	if boxW > w || boxH+1 > h {
		return
	}

	startX := w - boxW - 1
	if startX < 0 {
		startX = 0
	}
	startY := 1
	style := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg)
	border := style.Bold(true)

	for y := 0; y < boxH; y++ {
		for x := 0; x < boxW; x++ {
			ch := ' '
			switch {
			case (y == 0 || y == boxH-1) && (x == 0 || x == boxW-1):
				ch = '+'
			case y == 0 || y == boxH-1:
				ch = '-'
			case x == 0 || x == boxW-1:
				ch = '|'
			}
			r.screen.SetContent(startX+x, startY+y, ch, nil, border)
		}
	}
	r.drawTextLine(startX+2, startY, boxW-4, " VM stats ", border)
	for i, line := range lines {
		r.drawTextLine(startX+2, startY+1+i, boxW-4, line, style)
	}
}
