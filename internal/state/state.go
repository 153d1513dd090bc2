package state

import (
	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/procfs"
)

// ViewMode selects which grid is active.
type ViewMode int

const (
	ViewPage ViewMode = iota
	ViewMemory
)

func (m ViewMode) String() string {
	if m == ViewMemory {
		return "memory"
	}
	return "page"
}

const (
	// AddressColumnWidth is the "%016x " address gutter left of every grid row.
	AddressColumnWidth = 17
	// BytesCellWidth is the screen width one byte occupies in the memory view:
	// two hex digits, a space and the ASCII column.
	BytesCellWidth = 4

	headerRows = 1
	footerRows = 1

	MinScreenWidth  = AddressColumnWidth + BytesCellWidth
	MinScreenHeight = headerRows + footerRows + 3

	MinZoom = 1
	MaxZoom = 999
)

// ===== STATE DEFINITIONS =====

// ViewState is the cursor and grid geometry of one view.
type ViewState struct {
	X, Y         int // cursor column/row within the grid
	PrevX, PrevY int // cursor before the last move
	YMax         int // last usable row
	Width        int // grid columns (pages or bytes per row)
	Height       int // grid rows
}

// navSnapshot is everything a rejected move rolls back.
type navSnapshot struct {
	mode      ViewMode
	pageIndex int
	dataIndex int
	x, y      int
}

// AppState is the single source of truth for the viewer.
type AppState struct {
	// Navigation
	Mode      ViewMode
	Views     [2]ViewState
	PageIndex int // page at the grid's top-left
	DataIndex int // byte offset inside PageIndex (memory view)
	Zoom      int // pages per grid column (page view)
	AutoZoom  bool

	// Refresh cadence
	Tick       int
	ResetTick  int // ticks since the last soft-dirty reset
	ResetTicks int // soft-dirty reset cadence

	// Target
	PID      int
	PageSize uint64
	Index    *pageindex.Index

	// Dimensions
	ScreenWidth  int
	ScreenHeight int
	TooSmall     bool

	// Overlays
	Blink       int
	HelpVisible bool
	ShowVMStats bool
	VMStats     *procfs.VMStats

	// Error state
	LastError error

	lastValid    navSnapshot
	hasLastValid bool
}

// NewAppState returns a state with the given geometry and no index yet.
func NewAppState(pid int, pageSize uint64, width, height int) *AppState {
	s := &AppState{
		PID:      pid,
		PageSize: pageSize,
		Zoom:     MinZoom,
	}
	s.setScreenSize(width, height)
	return s
}

// ===== HELPER METHODS =====

// View returns the active view.
func (s *AppState) View() *ViewState {
	return &s.Views[s.Mode]
}

// TotalPages is the number of pages in the current index.
func (s *AppState) TotalPages() int {
	if s.Index == nil {
		return 0
	}
	return s.Index.TotalPages
}

func (s *AppState) pageSize() int64 {
	if s.PageSize == 0 {
		return 1
	}
	return int64(s.PageSize)
}

// CursorPage is the index of the page under the page-view cursor.
func (s *AppState) CursorPage() int {
	v := &s.Views[ViewPage]
	return s.PageIndex + s.Zoom*(v.X+v.Y*v.Width)
}

// CursorByte is the linear byte position (page*PageSize + offset) under the
// memory-view cursor.
func (s *AppState) CursorByte() int64 {
	v := &s.Views[ViewMemory]
	return s.baseByte() + int64(v.X+v.Y*v.Width)
}

// baseByte is the linear byte position of the grid's top-left cell.
func (s *AppState) baseByte() int64 {
	return int64(s.PageIndex)*s.pageSize() + int64(s.DataIndex)
}

// CursorAddress is the virtual address under the active cursor.
func (s *AppState) CursorAddress() (uint64, bool) {
	if s.Index == nil {
		return 0, false
	}
	if s.Mode == ViewMemory {
		pos := s.CursorByte()
		if pos < 0 {
			return 0, false
		}
		return s.Index.ByteAddress(uint64(pos))
	}
	ref, ok := s.Index.Page(s.CursorPage())
	return ref.Address, ok
}

// AdvanceTick bumps the frame counters.
func (s *AppState) AdvanceTick() {
	s.Tick++
	s.Blink++
}

func (s *AppState) snapshot() navSnapshot {
	v := s.View()
	return navSnapshot{mode: s.Mode, pageIndex: s.PageIndex, dataIndex: s.DataIndex, x: v.X, y: v.Y}
}

func (s *AppState) restore(snap navSnapshot) {
	s.PageIndex = snap.pageIndex
	s.DataIndex = snap.dataIndex
	v := &s.Views[snap.mode]
	v.X, v.Y = snap.x, snap.y
}

func (s *AppState) markValid() {
	s.lastValid = s.snapshot()
	s.hasLastValid = true
}
