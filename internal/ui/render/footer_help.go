package render

import (
	"strings"

	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

// legendItem is one colored glyph in the footer key.
type legendItem struct {
	glyph string
	class CellClass
	desc  string
}

func buildLegend(mode statepkg.ViewMode) []legendItem {
	if mode == statepkg.ViewMemory {
		return []legendItem{
			{glyph: "??", class: CellUnreadable, desc: "unreadable"},
		}
	}
	return []legendItem{
		{glyph: "A", class: CellFileShared, desc: "Anon/File"},
		{glyph: "R", class: CellPresent, desc: "in RAM"},
		{glyph: "D", class: CellSoftDirty, desc: "Dirty"},
		{glyph: "S", class: CellSwapped, desc: "Swap"},
		{glyph: ".", class: CellNotPresent, desc: "not in RAM"},
	}
}

// buildFooterHelpText returns the key hints shown right of the legend.
func buildFooterHelpText(state *statepkg.AppState) string {
	parts := buildFooterHelpSegments(state)
	if len(parts) == 0 {
		return ""
	}
	return " " + strings.Join(parts, "  ") + " "
}

func buildFooterHelpSegments(state *statepkg.AppState) []string {
	if state == nil {
		return nil
	}
	segments := []string{"↵: view"}
	if state.Mode == statepkg.ViewPage {
		segments = append(segments, "+/-: zoom", "z: auto")
	}
	return append(segments, "v: stats", "?: help", "q: quit")
}
