package state

// GridWidth returns the number of grid columns mode can show on a screen of
// the given width.
func GridWidth(mode ViewMode, screenWidth int) int {
	cols := screenWidth - AddressColumnWidth
	if mode == ViewMemory {
		cols /= BytesCellWidth
	}
	if cols < 0 {
		return 0
	}
	return cols
}

// GridHeight returns the number of grid rows on a screen of the given height.
func GridHeight(screenHeight int) int {
	rows := screenHeight - headerRows - footerRows
	if rows < 0 {
		return 0
	}
	return rows
}

// WindowTooSmall reports whether the screen cannot hold the minimum grid.
func WindowTooSmall(width, height int) bool {
	return width < MinScreenWidth || height < MinScreenHeight
}

// setScreenSize updates both views' geometry and clamps their cursors into
// the new grid without trying to preserve the cursor location.
func (s *AppState) setScreenSize(width, height int) {
	s.ScreenWidth = width
	s.ScreenHeight = height
	s.TooSmall = WindowTooSmall(width, height)
	for mode := ViewPage; mode <= ViewMemory; mode++ {
		v := &s.Views[mode]
		v.Width = GridWidth(mode, width)
		v.Height = GridHeight(height)
		v.YMax = v.Height - 1
		if v.YMax < 0 {
			v.YMax = 0
		}
		clampCursor(v)
	}
}

func clampCursor(v *ViewState) {
	if v.X >= v.Width {
		v.X = v.Width - 1
	}
	if v.Y > v.YMax {
		v.Y = v.YMax
	}
	if v.X < 0 {
		v.X = 0
	}
	if v.Y < 0 {
		v.Y = 0
	}
}
