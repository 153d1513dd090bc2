package pageindex

import (
	"iter"
	"sort"
)

// PageRef is one page of the flattened index. Region is a position in the
// owning Index's Regions slice; it is only meaningful for that Index.
type PageRef struct {
	Address uint64
	Region  int
}

// Index is an immutable snapshot of the target's mapped pages.
type Index struct {
	Regions     []Region
	Pages       []PageRef
	TotalPages  int
	LastAddress uint64 // highest mapped end address (exclusive)
	Checksum    uint64
	PageSize    uint64
}

// Page returns the i-th page reference.
func (ix *Index) Page(i int) (PageRef, bool) {
	if ix == nil || i < 0 || i >= len(ix.Pages) {
		return PageRef{}, false
	}
	return ix.Pages[i], true
}

// RegionOf returns the region owning the i-th page.
func (ix *Index) RegionOf(i int) (Region, bool) {
	ref, ok := ix.Page(i)
	if !ok || ref.Region < 0 || ref.Region >= len(ix.Regions) {
		return Region{}, false
	}
	return ix.Regions[ref.Region], true
}

// RegionFor finds the region containing addr.
func (ix *Index) RegionFor(addr uint64) (Region, int, bool) {
	if ix == nil || len(ix.Regions) == 0 {
		return Region{}, -1, false
	}
	i := sort.Search(len(ix.Regions), func(i int) bool {
		return ix.Regions[i].End > addr
	})
	if i < len(ix.Regions) && ix.Regions[i].Contains(addr) {
		return ix.Regions[i], i, true
	}
	return Region{}, -1, false
}

// TotalBytes is the number of addressable bytes in the flattened index.
func (ix *Index) TotalBytes() uint64 {
	if ix == nil {
		return 0
	}
	return uint64(ix.TotalPages) * ix.PageSize
}

// ByteAddress translates a linear byte position in the flattened index
// (page*PageSize + offset) to a virtual address.
func (ix *Index) ByteAddress(linear uint64) (uint64, bool) {
	if ix == nil || ix.PageSize == 0 || linear >= ix.TotalBytes() {
		return 0, false
	}
	ref := ix.Pages[linear/ix.PageSize]
	return ref.Address + linear%ix.PageSize, true
}

// Percent reports how far addr lies through the mapped address space.
func (ix *Index) Percent(addr uint64) float64 {
	if ix == nil || ix.LastAddress == 0 {
		return 0
	}
	return 100.0 * float64(addr) / float64(ix.LastAddress)
}

// Addresses yields the address of every page in index order.
func (ix *Index) Addresses() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		if ix == nil {
			return
		}
		for _, p := range ix.Pages {
			if !yield(p.Address) {
				return
			}
		}
	}
}
