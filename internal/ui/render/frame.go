package render

import (
	"io"

	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/pagemap"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

// CellClass selects the style of one grid cell.
type CellClass int

const (
	CellEmpty CellClass = iota // past the last page or byte
	CellNotPresent
	CellPresent
	CellSwapped
	CellFileShared
	CellSoftDirty
	CellUnknown    // pagemap entry could not be read
	CellByte       // memory view byte
	CellUnreadable // memory view byte that could not be read
)

func classFor(c pagemap.Class) CellClass {
	switch c {
	case pagemap.ClassNotPresent:
		return CellNotPresent
	case pagemap.ClassPresent:
		return CellPresent
	case pagemap.ClassSwapped:
		return CellSwapped
	case pagemap.ClassFileShared:
		return CellFileShared
	case pagemap.ClassSoftDirty:
		return CellSoftDirty
	default:
		return CellUnknown
	}
}

// Cell is one grid position. In the memory view Byte holds the value and Rune
// its printable form.
type Cell struct {
	Rune  rune
	Class CellClass
	Byte  byte
}

// Row is one grid line with the address shown in its gutter.
type Row struct {
	Address    uint64
	HasAddress bool
	Cells      []Cell
}

// Header describes the top status line.
type Header struct {
	Mode       statepkg.ViewMode
	Address    uint64
	HasAddress bool
	Zoom       int
	AutoZoom   bool
	Mapped     bool
	Perms      string
	Dev        string
	Label      string
	Percent    float64
}

// Frame is everything drawn for one tick.
type Frame struct {
	Header     Header
	Rows       []Row
	CursorX    int
	CursorY    int
	ShowCursor bool
	TooSmall   bool

	// Memory view read accounting, used to detect a target whose memory
	// cannot be read at all.
	MemReads    int
	MemFailures int
}

// MemUnreadable reports whether every memory read of the frame failed.
func (f Frame) MemUnreadable() bool {
	return f.MemReads > 0 && f.MemFailures == f.MemReads
}

// PageDecoder decodes consecutive pagemap entries.
type PageDecoder interface {
	DecodeRange(addr uint64, count int) ([]pagemap.Flags, error)
}

// Source supplies the live data a frame is built from. Either field may be
// nil, in which case the affected cells render as unknown.
type Source struct {
	Pagemap PageDecoder
	Mem     io.ReaderAt
}

// blinkPeriod is the number of ticks the cursor stays in one blink phase.
const blinkPeriod = 16

// BuildFrame computes the visible grid for state. labels may be nil.
func BuildFrame(state *statepkg.AppState, src Source, labels *LabelCache) Frame {
	frame := Frame{TooSmall: state.TooSmall}
	frame.Header = buildHeader(state, labels)
	if state.TooSmall {
		return frame
	}

	v := state.View()
	frame.CursorX, frame.CursorY = v.X, v.Y
	frame.ShowCursor = (state.Blink/blinkPeriod)%2 == 0

	if state.Mode == statepkg.ViewMemory {
		buildMemoryRows(&frame, state, src)
	} else {
		buildPageRows(&frame, state, src)
	}
	return frame
}

func buildHeader(state *statepkg.AppState, labels *LabelCache) Header {
	h := Header{
		Mode:     state.Mode,
		Zoom:     state.Zoom,
		AutoZoom: state.AutoZoom,
	}
	addr, ok := state.CursorAddress()
	if !ok {
		return h
	}
	h.Address, h.HasAddress = addr, true

	ix := state.Index
	h.Percent = ix.Percent(addr)
	region, regionIdx, ok := ix.RegionFor(addr)
	if !ok {
		return h
	}
	h.Mapped = true
	h.Perms = region.Perms
	h.Dev = region.Dev
	h.Label = labels.Label(ix.Checksum, regionIdx, region)
	return h
}

func buildPageRows(frame *Frame, state *statepkg.AppState, src Source) {
	v := state.View()
	ix := state.Index
	frame.Rows = make([]Row, v.Height)

	for y := 0; y < v.Height; y++ {
		row := &frame.Rows[y]
		row.Cells = make([]Cell, v.Width)
		first := state.PageIndex + state.Zoom*y*v.Width
		if ref, ok := ix.Page(first); ok {
			row.Address, row.HasAddress = ref.Address, true
		}

		// Pages are fetched in runs of consecutive addresses; with zoom 1
		// inside one region a whole row is a single read.
		for x := 0; x < v.Width; {
			ref, ok := ix.Page(first + state.Zoom*x)
			if !ok {
				for ; x < v.Width; x++ {
					row.Cells[x] = Cell{Rune: ' ', Class: CellEmpty}
				}
				break
			}
			run := pageRun(ix, first, x, v.Width, state.Zoom, ref.Address)
			fillPageCells(row.Cells[x:x+run], src.Pagemap, ref.Address, run)
			x += run
		}
	}
}

// pageRun counts how many cells from x onward map to consecutive pages.
func pageRun(ix *pageindex.Index, first, x, width, zoom int, addr uint64) int {
	if zoom != 1 {
		return 1
	}
	run := 1
	for x+run < width {
		ref, ok := ix.Page(first + x + run)
		if !ok || ref.Address != addr+uint64(run)*ix.PageSize {
			break
		}
		run++
	}
	return run
}

func fillPageCells(cells []Cell, dec PageDecoder, addr uint64, count int) {
	var flags []pagemap.Flags
	if dec != nil {
		// Partial reads still return the entries that were read.
		flags, _ = dec.DecodeRange(addr, count)
	}
	for i := range cells {
		if i < len(flags) {
			cells[i] = Cell{Rune: flags[i].Glyph(), Class: classFor(flags[i].Class())}
			continue
		}
		cells[i] = Cell{Rune: '?', Class: CellUnknown}
	}
}

func buildMemoryRows(frame *Frame, state *statepkg.AppState, src Source) {
	v := state.View()
	ix := state.Index
	base := state.CursorByte() - int64(v.X+v.Y*v.Width)
	total := int64(ix.TotalBytes())
	frame.Rows = make([]Row, v.Height)

	buf := make([]byte, v.Width)
	for y := 0; y < v.Height; y++ {
		row := &frame.Rows[y]
		row.Cells = make([]Cell, v.Width)
		start := base + int64(y*v.Width)
		if start >= 0 {
			row.Address, row.HasAddress = ix.ByteAddress(uint64(start))
		}

		for x := 0; x < v.Width; {
			pos := start + int64(x)
			if pos < 0 || pos >= total {
				row.Cells[x] = Cell{Rune: ' ', Class: CellEmpty}
				x++
				continue
			}
			addr, _ := ix.ByteAddress(uint64(pos))
			run := byteRun(ix, pos, x, v.Width, total)
			frame.MemReads++
			if !readBytes(src.Mem, buf[:run], addr) {
				frame.MemFailures++
				for i := 0; i < run; i++ {
					row.Cells[x+i] = Cell{Rune: '?', Class: CellUnreadable}
				}
			} else {
				for i := 0; i < run; i++ {
					row.Cells[x+i] = Cell{Rune: printable(buf[i]), Class: CellByte, Byte: buf[i]}
				}
			}
			x += run
		}
	}
}

// byteRun counts the cells from x onward whose bytes lie in the same page as
// pos, which makes them contiguous in the target's address space.
func byteRun(ix *pageindex.Index, pos int64, x, width int, total int64) int {
	ps := int64(ix.PageSize)
	left := ps - pos%ps
	run := int64(width - x)
	if left < run {
		run = left
	}
	if total-pos < run {
		run = total - pos
	}
	return int(run)
}

func readBytes(mem io.ReaderAt, buf []byte, addr uint64) bool {
	if mem == nil || addr > 1<<63-1 {
		return false
	}
	n, err := mem.ReadAt(buf, int64(addr))
	return err == nil && n == len(buf)
}

func printable(b byte) rune {
	if b < 0x20 || b > 0x7e {
		return '.'
	}
	return rune(b)
}
