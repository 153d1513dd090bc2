package render

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/internal/textutil"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

const tooSmallMessage = "Window too small"

// Renderer handles all UI rendering
type Renderer struct {
	screen tcell.Screen
	theme  ColorTheme
	labels *LabelCache
}

// NewRenderer creates a new renderer
func NewRenderer(screen tcell.Screen) *Renderer {
	labels, _ := NewLabelCache(defaultLabelCacheSize)
	return &Renderer{
		screen: screen,
		theme:  GetColorTheme(),
		labels: labels,
	}
}

// Render builds the frame for state, draws it and returns it so the caller
// can inspect read failures.
func (r *Renderer) Render(state *statepkg.AppState, src Source) Frame {
	frame := BuildFrame(state, src, r.labels)
	r.Draw(state, frame)
	return frame
}

// Draw puts frame on the screen.
func (r *Renderer) Draw(state *statepkg.AppState, frame Frame) {
	r.screen.Clear()
	w, h := r.screen.Size()

	if frame.TooSmall {
		r.drawTooSmall(w, h)
		r.screen.Show()
		return
	}

	if state.HelpVisible {
		r.drawHelpOverlay(state, w, h)
		r.screen.Show()
		return
	}

	r.drawHeader(frame.Header, w)
	if state.Mode == statepkg.ViewMemory {
		r.drawMemoryGrid(frame, w)
	} else {
		r.drawPageGrid(frame, w)
	}
	r.drawFooter(state, w, h)
	if state.ShowVMStats {
		r.drawVMStatsOverlay(state, w, h)
	}

	r.screen.Show()
}

// drawHeader renders the top bar with the cursor address and region details
func (r *Renderer) drawHeader(header Header, w int) {
	style := tcell.StyleDefault.Background(r.theme.HeaderBg).Foreground(r.theme.HeaderFg).Bold(true)
	r.fillLine(0, 0, w, style)

	right := formatHeaderRight(header)
	rightW := measureTextWidth(right)
	leftMax := w - rightW - 1
	if leftMax < 0 {
		leftMax = w
		right = ""
	}
	left := formatHeaderLeft(header)
	if over := textutil.DisplayWidth(left) - leftMax; over > 0 && header.Mapped {
		// Shorten the region name from the left so the file name stays visible.
		keep := textutil.DisplayWidth(header.Label) - over
		if keep < 0 {
			keep = 0
		}
		header.Label = textutil.TruncateLeft(header.Label, keep)
		left = formatHeaderLeft(header)
	}
	r.drawTextLine(0, 0, leftMax, truncateTextToWidth(left, leftMax), style)
	if right != "" {
		r.drawTextLine(w-rightW, 0, rightW, right, style)
	}
}

func (r *Renderer) drawGutter(row Row, y int) {
	style := tcell.StyleDefault.Background(r.theme.GutterBg).Foreground(r.theme.GutterFg)
	r.drawTextLine(0, y, statepkg.AddressColumnWidth, formatGutter(row), style)
}

func (r *Renderer) drawPageGrid(frame Frame, w int) {
	for y, row := range frame.Rows {
		screenY := y + 1
		r.drawGutter(row, screenY)
		for x, cell := range row.Cells {
			screenX := statepkg.AddressColumnWidth + x
			if screenX >= w {
				break
			}
			ch, style := cell.Rune, r.theme.CellStyle(cell.Class)
			if frame.ShowCursor && x == frame.CursorX && y == frame.CursorY {
				ch, style = '#', r.theme.CursorStyle()
			}
			r.screen.SetContent(screenX, screenY, ch, nil, style)
		}
	}
}

func (r *Renderer) drawMemoryGrid(frame Frame, w int) {
	for y, row := range frame.Rows {
		screenY := y + 1
		r.drawGutter(row, screenY)
		asciiStart := statepkg.AddressColumnWidth + 3*len(row.Cells)
		for x, cell := range row.Cells {
			style := r.theme.CellStyle(cell.Class)
			if frame.ShowCursor && x == frame.CursorX && y == frame.CursorY {
				style = r.theme.CursorStyle().Reverse(true)
			}
			hex := "   "
			switch cell.Class {
			case CellByte:
				hex = fmt.Sprintf("%02x ", cell.Byte)
			case CellUnreadable:
				hex = "?? "
			}
			hexX := statepkg.AddressColumnWidth + 3*x
			if hexX+2 <= w {
				r.drawTextLine(hexX, screenY, 2, hex[:2], style)
			}
			if asciiStart+x < w {
				r.screen.SetContent(asciiStart+x, screenY, cell.Rune, nil, style)
			}
		}
	}
}

func (r *Renderer) drawFooter(state *statepkg.AppState, w, h int) {
	y := h - 1
	if y < 1 {
		return
	}
	base := tcell.StyleDefault.Background(r.theme.FooterBg).Foreground(r.theme.FooterFg)
	r.fillLine(0, y, w, base)

	x := r.drawTextLine(0, y, w, "KEY: ", base.Bold(true))
	for _, item := range buildLegend(state.Mode) {
		x = r.drawTextLine(x, y, w-x, item.glyph, r.theme.CellStyle(item.class))
		x = r.drawTextLine(x, y, w-x, " "+item.desc+" ", base)
	}
	if x < w {
		hint := truncateTextToWidth(buildFooterHelpText(state), w-x)
		r.drawTextLine(x, y, w-x, hint, base)
	}
}

func (r *Renderer) drawTooSmall(w, h int) {
	style := tcell.StyleDefault.Background(r.theme.BannerBg).Foreground(r.theme.BannerFg).Bold(true)
	msg := truncateTextToWidth(tooSmallMessage, w)
	y := h / 2
	x := (w - measureTextWidth(msg)) / 2
	if x < 0 {
		x = 0
	}
	r.fillLine(0, y, w, style)
	r.drawTextLine(x, y, w-x, msg, style)
}
