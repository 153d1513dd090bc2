package pagemap

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Reader decodes entries from a pagemap table.
type Reader struct {
	src      io.ReaderAt
	pageSize uint64
	buf      []byte
}

// NewReader wraps an open pagemap table.
func NewReader(src io.ReaderAt, pageSize uint64) *Reader {
	return &Reader{src: src, pageSize: pageSize}
}

// Offset returns the table offset of the entry describing addr.
func Offset(addr, pageSize uint64) int64 {
	return int64((addr / pageSize) * EntrySize)
}

// Word reads the raw entry for the page containing addr.
func (r *Reader) Word(addr uint64) (uint64, error) {
	var raw [EntrySize]byte
	n, err := r.src.ReadAt(raw[:], Offset(addr, r.pageSize))
	if n < EntrySize {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return 0, fmt.Errorf("pagemap entry for %#x: %w", addr, err)
	}
	return binary.NativeEndian.Uint64(raw[:]), nil
}

// Decode reads and decodes the entry for the page containing addr.
func (r *Reader) Decode(addr uint64) (Flags, error) {
	word, err := r.Word(addr)
	if err != nil {
		return Flags{}, err
	}
	return Decode(word), nil
}

// DecodeRange decodes count consecutive pages starting at addr with a single
// read. On a short read the returned slice holds only the entries that were
// read, together with the error; callers treat the rest as unknown.
func (r *Reader) DecodeRange(addr uint64, count int) ([]Flags, error) {
	if count <= 0 {
		return nil, nil
	}
	if count > math.MaxInt/EntrySize {
		return nil, fmt.Errorf("pagemap range of %d entries too large", count)
	}
	size := count * EntrySize
	if cap(r.buf) < size {
		r.buf = make([]byte, size)
	}
	buf := r.buf[:size]

	n, err := r.src.ReadAt(buf, Offset(addr, r.pageSize))
	entries := n / EntrySize
	flags := make([]Flags, entries)
	for i := 0; i < entries; i++ {
		flags[i] = Decode(binary.NativeEndian.Uint64(buf[i*EntrySize:]))
	}
	if entries < count {
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return flags, fmt.Errorf("pagemap range at %#x: read %d of %d entries: %w", addr, entries, count, err)
	}
	return flags, nil
}
