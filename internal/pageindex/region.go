package pageindex

import (
	"path/filepath"
	"strconv"
	"strings"
)

// Region is one contiguous mapping from the kernel's map listing.
type Region struct {
	Start uint64
	End   uint64 // exclusive
	Perms string
	Dev   string
	Name  string
}

// Anonymous reports whether the region has no backing file name.
func (r Region) Anonymous() bool {
	return r.Name == ""
}

// Contains reports whether addr lies in [Start, End).
func (r Region) Contains(addr uint64) bool {
	return addr >= r.Start && addr < r.End
}

// Pages returns the number of pages the region spans.
func (r Region) Pages(pageSize uint64) uint64 {
	if pageSize == 0 || r.End <= r.Start {
		return 0
	}
	return (r.End - r.Start) / pageSize
}

// Label is the short name shown for the region: the base name of the backing
// file, the bracketed pseudo name (e.g. [heap]) or [Anonymous].
func (r Region) Label() string {
	switch {
	case r.Name == "":
		return "[Anonymous]"
	case strings.HasPrefix(r.Name, "["):
		return r.Name
	default:
		return filepath.Base(r.Name)
	}
}

// parseRegion parses one map listing record:
//
//	START-END PERMS OFFSET DEV [INODE [NAME...]]
//
// Records missing the range, permissions, offset or device are rejected.
func parseRegion(line string) (Region, bool) {
	fields := strings.Fields(line)
	if len(fields) < 4 {
		return Region{}, false
	}

	bounds := strings.SplitN(fields[0], "-", 2)
	if len(bounds) != 2 {
		return Region{}, false
	}
	start, err := strconv.ParseUint(bounds[0], 16, 64)
	if err != nil {
		return Region{}, false
	}
	end, err := strconv.ParseUint(bounds[1], 16, 64)
	if err != nil {
		return Region{}, false
	}
	if _, err := strconv.ParseUint(fields[2], 16, 64); err != nil {
		return Region{}, false
	}

	region := Region{
		Start: start,
		End:   end,
		Perms: fields[1],
		Dev:   fields[3],
	}
	if len(fields) > 5 {
		region.Name = nameField(line)
	}
	return region, true
}

// nameField returns everything after the fifth column, keeping embedded
// spaces in file names.
func nameField(line string) string {
	rest := line
	for i := 0; i < 5; i++ {
		rest = strings.TrimLeft(rest, " \t")
		cut := strings.IndexAny(rest, " \t")
		if cut < 0 {
			return ""
		}
		rest = rest[cut:]
	}
	return strings.TrimSpace(rest)
}
