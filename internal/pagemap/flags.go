package pagemap

// Bit layout of a /proc/<pid>/pagemap entry.
const (
	bitPresent    = 63
	bitSwapped    = 62
	bitFileShared = 61
	bitExclusive  = 56
	bitSoftDirty  = 55

	pfnBits      = 55
	pfnMask      = uint64(1)<<pfnBits - 1
	swapTypeBits = 5
	swapTypeMask = uint64(1)<<swapTypeBits - 1

	// EntrySize is the width of one pagemap entry in bytes.
	EntrySize = 8
)

// Flags is the decoded state of one page.
type Flags struct {
	Present    bool
	Swapped    bool
	FileShared bool // file-backed or shared anonymous
	SoftDirty  bool
	Exclusive  bool

	SwapType   uint8  // valid when Swapped
	SwapOffset uint64 // valid when Swapped
	PFN        uint64 // valid when !Swapped; zero without CAP_SYS_ADMIN
}

// Decode unpacks a pagemap word.
func Decode(word uint64) Flags {
	f := Flags{
		Present:    word&(1<<bitPresent) != 0,
		Swapped:    word&(1<<bitSwapped) != 0,
		FileShared: word&(1<<bitFileShared) != 0,
		Exclusive:  word&(1<<bitExclusive) != 0,
		SoftDirty:  word&(1<<bitSoftDirty) != 0,
	}
	low := word & pfnMask
	if f.Swapped {
		f.SwapType = uint8(low & swapTypeMask)
		f.SwapOffset = low >> swapTypeBits
	} else {
		f.PFN = low
	}
	return f
}

// Encode packs f back into a pagemap word.
func (f Flags) Encode() uint64 {
	var word uint64
	if f.Present {
		word |= 1 << bitPresent
	}
	if f.Swapped {
		word |= 1 << bitSwapped
	}
	if f.FileShared {
		word |= 1 << bitFileShared
	}
	if f.Exclusive {
		word |= 1 << bitExclusive
	}
	if f.SoftDirty {
		word |= 1 << bitSoftDirty
	}
	if f.Swapped {
		word |= (uint64(f.SwapType)&swapTypeMask | f.SwapOffset<<swapTypeBits) & pfnMask
	} else {
		word |= f.PFN & pfnMask
	}
	return word
}

// Class is the semantic color class of a rendered page cell.
type Class int

const (
	ClassNotPresent Class = iota
	ClassPresent
	ClassSwapped
	ClassFileShared
	ClassSoftDirty
	ClassUnknown
)

// Glyph returns the single character shown for the page. Indicators override
// in the order present < swapped < file/shared < soft-dirty.
func (f Flags) Glyph() rune {
	glyph := '.'
	if f.Present {
		glyph = 'R'
	}
	if f.Swapped {
		glyph = 'S'
	}
	if f.FileShared {
		glyph = 'A'
	}
	if f.SoftDirty {
		glyph = 'D'
	}
	return glyph
}

// Class returns the color class matching Glyph.
func (f Flags) Class() Class {
	switch f.Glyph() {
	case 'R':
		return ClassPresent
	case 'S':
		return ClassSwapped
	case 'A':
		return ClassFileShared
	case 'D':
		return ClassSoftDirty
	default:
		return ClassNotPresent
	}
}
