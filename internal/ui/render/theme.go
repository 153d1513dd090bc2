package render

import "github.com/gdamore/tcell/v2"

// ColorTheme defines application colors.
type ColorTheme struct {
	Background tcell.Color
	Foreground tcell.Color
	HeaderBg   tcell.Color
	HeaderFg   tcell.Color
	GutterBg   tcell.Color
	GutterFg   tcell.Color
	FooterBg   tcell.Color
	FooterFg   tcell.Color
	CursorBg   tcell.Color
	CursorFg   tcell.Color

	NotPresentBg tcell.Color
	NotPresentFg tcell.Color
	PresentBg    tcell.Color
	SwappedBg    tcell.Color
	FileSharedBg tcell.Color
	SoftDirtyBg  tcell.Color
	GlyphFg      tcell.Color
	UnknownFg    tcell.Color

	ByteFg       tcell.Color
	UnreadableFg tcell.Color

	BannerBg tcell.Color
	BannerFg tcell.Color
}

// GetColorTheme returns the default color scheme.
func GetColorTheme() ColorTheme {
	return ColorTheme{
		Background: tcell.ColorNavy,
		Foreground: tcell.ColorRed,
		HeaderBg:   tcell.ColorNavy,
		HeaderFg:   tcell.ColorWhite,
		GutterBg:   tcell.ColorWhite,
		GutterFg:   tcell.ColorBlack,
		FooterBg:   tcell.ColorNavy,
		FooterFg:   tcell.ColorWhite,
		CursorBg:   tcell.ColorNavy,
		CursorFg:   tcell.ColorAqua,

		NotPresentBg: tcell.ColorWhite,
		NotPresentFg: tcell.ColorBlack,
		PresentBg:    tcell.ColorOlive,
		SwappedBg:    tcell.ColorGreen,
		FileSharedBg: tcell.ColorMaroon,
		SoftDirtyBg:  tcell.ColorTeal,
		GlyphFg:      tcell.ColorWhite,
		UnknownFg:    tcell.ColorYellow,

		ByteFg:       tcell.ColorWhite,
		UnreadableFg: tcell.ColorYellow,

		BannerBg: tcell.ColorMaroon,
		BannerFg: tcell.ColorYellow,
	}
}

// CellStyle returns the style of a grid cell of class c.
func (t ColorTheme) CellStyle(c CellClass) tcell.Style {
	base := tcell.StyleDefault.Background(t.Background).Foreground(t.Foreground)
	switch c {
	case CellNotPresent:
		return base.Background(t.NotPresentBg).Foreground(t.NotPresentFg)
	case CellPresent:
		return base.Background(t.PresentBg).Foreground(t.GlyphFg)
	case CellSwapped:
		return base.Background(t.SwappedBg).Foreground(t.GlyphFg)
	case CellFileShared:
		return base.Background(t.FileSharedBg).Foreground(t.GlyphFg)
	case CellSoftDirty:
		return base.Background(t.SoftDirtyBg).Foreground(t.GlyphFg)
	case CellUnknown:
		return base.Foreground(t.UnknownFg).Bold(true)
	case CellByte:
		return base.Foreground(t.ByteFg)
	case CellUnreadable:
		return base.Foreground(t.UnreadableFg)
	default:
		return base
	}
}

// CursorStyle returns the style of the cursor cell.
func (t ColorTheme) CursorStyle() tcell.Style {
	return tcell.StyleDefault.Background(t.CursorBg).Foreground(t.CursorFg).Bold(true)
}
