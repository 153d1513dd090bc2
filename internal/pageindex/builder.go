package pageindex

import (
	"bufio"
	"bytes"
	"fmt"
	"math"
	"slices"

	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"github.com/sirupsen/logrus"
)

const (
	// DefaultMaxRegions bounds the region list of one index.
	DefaultMaxRegions = 65536
	// DefaultMaxPages bounds the flattened page array (256 GiB of 4 KiB pages).
	DefaultMaxPages = 1 << 26

	checksumPrime = 0x100000001b3
	checksumSeed  = 0xcbf29ce484222325
)

// MapSource supplies the raw map listing.
type MapSource interface {
	ReadMaps() ([]byte, error)
}

// Builder turns map listings into page indexes, skipping the rebuild when the
// listing is unchanged.
type Builder struct {
	PageSize   uint64
	MaxRegions int
	MaxPages   uint64

	current *Index
	force   bool
	log     *logrus.Entry
}

// NewBuilder returns a builder with default bounds.
func NewBuilder(pageSize uint64) *Builder {
	return &Builder{
		PageSize:   pageSize,
		MaxRegions: DefaultMaxRegions,
		MaxPages:   DefaultMaxPages,
		log:        logflags.IndexLogger(),
	}
}

// Current returns the most recently built index, or nil.
func (b *Builder) Current() *Index {
	return b.current
}

// Invalidate forces the next Rebuild to reconstruct the index.
func (b *Builder) Invalidate() {
	b.force = true
}

// Rebuild reads the listing and returns the current index. changed is false
// when the checksum matched the previous index, which is then returned as is.
func (b *Builder) Rebuild(src MapSource) (ix *Index, changed bool, err error) {
	data, err := src.ReadMaps()
	if err != nil {
		return nil, false, pmerr.Wrap(pmerr.NoMapInfo, err, "cannot read map listing")
	}

	scan, err := b.scan(data)
	if err != nil {
		return nil, false, err
	}

	if b.current != nil && !b.force && scan.checksum == b.current.Checksum {
		return b.current, false, nil
	}

	ix, err = b.build(scan)
	if err != nil {
		return nil, false, err
	}
	b.current = ix
	b.force = false
	if b.log != nil {
		b.log.Debugf("rebuilt index: %d regions, %d pages, checksum %016x", len(ix.Regions), ix.TotalPages, ix.Checksum)
	}
	return ix, true, nil
}

type scanResult struct {
	regions  []Region
	pages    uint64
	checksum uint64
}

func (b *Builder) scan(data []byte) (scanResult, error) {
	maxRegions := b.MaxRegions
	if maxRegions <= 0 {
		maxRegions = DefaultMaxRegions
	}

	var res scanResult
	sum := uint64(checksumSeed)
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	for sc.Scan() {
		region, ok := parseRegion(sc.Text())
		if !ok {
			continue
		}
		if region.End < region.Start {
			continue
		}
		pages := region.Pages(b.PageSize)
		if res.pages+pages < res.pages {
			continue
		}
		if len(res.regions) >= maxRegions {
			return scanResult{}, pmerr.New(pmerr.TooManyRegions, "map listing has more than %d regions", maxRegions)
		}
		res.pages += pages
		res.regions = append(res.regions, region)

		sum = fold(sum, region.Start)
		sum = fold(sum, region.End)
		sum = fold(sum, permBits(region.Perms))
		sum = fold(sum, region.End-region.Start)
	}
	if err := sc.Err(); err != nil {
		return scanResult{}, pmerr.Wrap(pmerr.NoMapInfo, err, "cannot parse map listing")
	}
	sum = fold(sum, res.pages)
	sum = fold(sum, uint64(len(res.regions)))
	res.checksum = sum

	slices.SortStableFunc(res.regions, func(x, y Region) int {
		switch {
		case x.Start < y.Start:
			return -1
		case x.Start > y.Start:
			return 1
		default:
			return 0
		}
	})
	return res, nil
}

func (b *Builder) build(scan scanResult) (*Index, error) {
	if len(scan.regions) == 0 {
		return nil, pmerr.New(pmerr.NoMapInfo, "map listing has no usable regions")
	}
	if scan.pages == 0 {
		return nil, pmerr.New(pmerr.TooFewPages, "%d regions span no pages", len(scan.regions))
	}
	if limit := b.pageLimit(); scan.pages > limit {
		return nil, pmerr.New(pmerr.TooManyPages, "%d pages exceed the limit of %d", scan.pages, limit)
	}

	pages, err := allocPages(scan.pages)
	if err != nil {
		return nil, err
	}

	ix := &Index{
		Regions:    scan.regions,
		Pages:      pages,
		TotalPages: len(pages),
		Checksum:   scan.checksum,
		PageSize:   b.PageSize,
	}
	n := 0
	for ri, region := range scan.regions {
		if region.End > ix.LastAddress {
			ix.LastAddress = region.End
		}
		count := region.Pages(b.PageSize)
		addr := region.Start
		for j := uint64(0); j < count; j++ {
			pages[n] = PageRef{Address: addr, Region: ri}
			addr += b.PageSize
			n++
		}
	}
	return ix, nil
}

// pageLimit is the smaller of the address-space bound and MaxPages.
func (b *Builder) pageLimit() uint64 {
	limit := uint64(math.MaxUint64)
	if b.PageSize > 1 {
		limit = math.MaxUint64/b.PageSize + 1
	}
	if b.MaxPages > 0 && b.MaxPages < limit {
		limit = b.MaxPages
	}
	if limit > math.MaxInt {
		limit = math.MaxInt
	}
	return limit
}

func allocPages(n uint64) (pages []PageRef, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages = nil
			err = pmerr.New(pmerr.AllocFailed, "cannot allocate %d page entries: %v", n, r)
		}
	}()
	return make([]PageRef, n), nil
}

func fold(sum, v uint64) uint64 {
	return (sum ^ v) * checksumPrime
}

// permBits packs the first four permission characters.
func permBits(perms string) uint64 {
	var v uint64
	for i := 0; i < 4 && i < len(perms); i++ {
		v |= uint64(perms[i]) << (8 * i)
	}
	return v
}

func (ix *Index) String() string {
	if ix == nil {
		return "<nil index>"
	}
	return fmt.Sprintf("index{regions=%d pages=%d last=%#x}", len(ix.Regions), ix.TotalPages, ix.LastAddress)
}
