package state

// ClampZoom limits z to [MinZoom, MaxZoom].
func ClampZoom(z int) int {
	if z < MinZoom {
		return MinZoom
	}
	if z > MaxZoom {
		return MaxZoom
	}
	return z
}

// positionValid reports whether the active cursor designates an existing page
// (page view) or byte (memory view).
func (s *AppState) positionValid() bool {
	if s.PageIndex < 0 || s.DataIndex < 0 || int64(s.DataIndex) >= s.pageSize() {
		return false
	}
	total := s.TotalPages()
	if total == 0 {
		return false
	}
	v := s.View()
	if v.X < 0 || v.Y < 0 || v.X >= v.Width || v.Y >= v.Height {
		return false
	}
	if s.Mode == ViewMemory {
		return s.CursorByte() < int64(total)*s.pageSize()
	}
	return s.CursorPage() < total
}

// commitOrRollback keeps the transition if it is valid, otherwise restores
// snap in full.
func (s *AppState) commitOrRollback(snap navSnapshot) bool {
	if s.positionValid() {
		s.markValid()
		return true
	}
	s.restore(snap)
	return false
}

func (s *AppState) moveCursor(dx, dy int) {
	if s.TooSmall || s.TotalPages() == 0 {
		return
	}
	snap := s.snapshot()
	v := s.View()
	v.PrevX, v.PrevY = v.X, v.Y
	v.X += dx
	v.Y += dy
	wrapColumn(v)
	s.scrollRows(v)
	s.commitOrRollback(snap)
}

// scrollPage moves the grid by a full screen, leaving the cursor cell alone.
func (s *AppState) scrollPage(direction int) {
	if s.TooSmall || s.TotalPages() == 0 {
		return
	}
	snap := s.snapshot()
	v := s.View()
	s.shiftRows(v, direction*v.Height)
	s.commitOrRollback(snap)
}

func wrapColumn(v *ViewState) {
	if v.X >= v.Width {
		v.X = 0
		v.Y++
	}
	if v.X < 0 {
		v.X = v.Width - 1
		v.Y--
	}
}

// scrollRows turns a row outside the visible grid into a scroll of the grid.
func (s *AppState) scrollRows(v *ViewState) {
	if v.Y > v.YMax {
		s.shiftRows(v, v.Y-v.YMax)
		v.Y = v.YMax
	} else if v.Y < 0 {
		s.shiftRows(v, v.Y)
		v.Y = 0
	}
}

// shiftRows scrolls by rows grid rows. The memory view scrolls bytes and
// carries into PageIndex; the page view scrolls pages directly.
func (s *AppState) shiftRows(v *ViewState, rows int) {
	if s.Mode == ViewMemory {
		s.DataIndex += rows * v.Width
		s.carryDataIndex()
		return
	}
	s.PageIndex += s.Zoom * v.Width * rows
}

func (s *AppState) carryDataIndex() {
	ps := int(s.pageSize())
	if s.DataIndex >= ps {
		s.PageIndex += s.DataIndex / ps
		s.DataIndex %= ps
	}
	if s.DataIndex < 0 {
		borrow := (-s.DataIndex + ps - 1) / ps
		s.PageIndex -= borrow
		s.DataIndex += borrow * ps
	}
}

// home puts the grid and the active cursor at the first page.
func (s *AppState) home() {
	s.PageIndex = 0
	s.DataIndex = 0
	v := s.View()
	v.X, v.Y = 0, 0
	if s.positionValid() {
		s.markValid()
	}
}

func (s *AppState) setZoom(z int) {
	if s.Mode != ViewPage {
		return
	}
	s.Zoom = ClampZoom(z)
	s.home()
}

// jumpEnd shows the last page (or byte) at the bottom of the grid with the
// cursor on it.
func (s *AppState) jumpEnd() {
	total := s.TotalPages()
	v := s.View()
	if total == 0 || v.Width <= 0 || v.Height <= 0 {
		s.home()
		return
	}
	snap := s.snapshot()

	if s.Mode == ViewPage {
		span := s.Zoom * v.Width
		rows := (total + span - 1) / span
		// Rightmost column of the ragged last row.
		lastCol := v.Width - ((rows*span - total) / s.Zoom)
		if rows <= v.Height {
			s.PageIndex = 0
			v.Y = rows - 1
		} else {
			s.PageIndex = (rows - v.Height) * span
			v.Y = v.Height - 1
		}
		s.DataIndex = 0
		v.X = lastCol - 1
	} else {
		ps := s.pageSize()
		width := int64(v.Width)
		totalBytes := int64(total) * ps
		rows := (totalBytes + width - 1) / width
		var start int64
		if rows <= int64(v.Height) {
			v.Y = int(rows - 1)
		} else {
			start = (rows - int64(v.Height)) * width
			v.Y = v.Height - 1
		}
		s.PageIndex = int(start / ps)
		s.DataIndex = int(start % ps)
		v.X = int(totalBytes - 1 - start - int64(v.Y)*width)
	}
	s.commitOrRollback(snap)
}

// recomputeAutoZoom fits every page onto one screen. It reports whether the
// zoom changed.
func (s *AppState) recomputeAutoZoom() bool {
	if !s.AutoZoom {
		return false
	}
	v := &s.Views[ViewPage]
	cells := v.Width * v.Height
	zoom := MinZoom
	if total := s.TotalPages(); total > 0 && cells > 0 {
		zoom = (total + cells - 1) / cells
	}
	zoom = ClampZoom(zoom)
	if zoom == s.Zoom {
		return false
	}
	s.Zoom = zoom
	if s.Mode == ViewPage {
		s.home()
	} else {
		s.revalidate()
	}
	return true
}

// resize changes the grid geometry and keeps the page or byte under the
// active cursor in place.
func (s *AppState) resize(width, height int) {
	pagePos := s.CursorPage()
	bytePos := s.CursorByte()

	s.setScreenSize(width, height)
	if s.TooSmall || s.TotalPages() == 0 {
		return
	}

	v := s.View()
	if s.Mode == ViewPage {
		s.placePage(v, pagePos)
	} else {
		s.placeByte(v, bytePos)
	}
	s.revalidate()
}

func (s *AppState) placePage(v *ViewState, pos int) {
	offset := pos - s.PageIndex
	if offset < 0 {
		s.PageIndex = pos
		offset = 0
	}
	cell := offset / s.Zoom
	v.Y = cell / v.Width
	v.X = cell % v.Width
	if v.Y > v.YMax {
		s.PageIndex += (v.Y - v.YMax) * s.Zoom * v.Width
		v.Y = v.YMax
	}
}

func (s *AppState) placeByte(v *ViewState, pos int64) {
	offset := pos - s.baseByte()
	if offset < 0 {
		ps := s.pageSize()
		s.PageIndex = int(pos / ps)
		s.DataIndex = int(pos % ps)
		offset = 0
	}
	width := int64(v.Width)
	row := offset / width
	v.X = int(offset % width)
	if row > int64(v.YMax) {
		s.DataIndex += int(row-int64(v.YMax)) * v.Width
		s.carryDataIndex()
		row = int64(v.YMax)
	}
	v.Y = int(row)
}

// revalidate re-checks the cursor against the current index, which may have
// shrunk since the last frame. It falls back to the last validated position
// and then to the last page.
func (s *AppState) revalidate() {
	if s.TotalPages() == 0 {
		s.home()
		return
	}
	if s.positionValid() {
		s.markValid()
		return
	}
	if s.hasLastValid && s.lastValid.mode == s.Mode {
		snap := s.snapshot()
		s.restore(s.lastValid)
		clampCursor(s.View())
		if s.positionValid() {
			s.markValid()
			return
		}
		s.restore(snap)
	}
	s.jumpEnd()
	if !s.positionValid() {
		s.home()
	}
}

func (s *AppState) toggleView() {
	if s.Mode == ViewPage {
		s.Mode = ViewMemory
	} else {
		s.Mode = ViewPage
	}
	s.Blink = 0
	if !s.TooSmall {
		s.revalidate()
	}
}
