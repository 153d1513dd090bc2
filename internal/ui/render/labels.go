package render

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/kk-code-lab/pagemon/internal/pageindex"
	"github.com/kk-code-lab/pagemon/internal/textutil"
)

const defaultLabelCacheSize = 256

type labelKey struct {
	checksum uint64
	region   int
}

// LabelCache memoizes the display label of a region. Entries are keyed by the
// index checksum, so a rebuilt index never sees labels of the previous one.
type LabelCache struct {
	cache *lru.Cache
}

// NewLabelCache returns a cache holding up to size labels.
func NewLabelCache(size int) (*LabelCache, error) {
	if size <= 0 {
		size = defaultLabelCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &LabelCache{cache: c}, nil
}

// Label returns the normalized display label of region. A nil cache computes
// the label every time.
func (lc *LabelCache) Label(checksum uint64, idx int, region pageindex.Region) string {
	if lc == nil {
		return regionLabel(region)
	}
	key := labelKey{checksum: checksum, region: idx}
	if v, ok := lc.cache.Get(key); ok {
		return v.(string)
	}
	label := regionLabel(region)
	lc.cache.Add(key, label)
	return label
}

// Len reports the number of cached labels.
func (lc *LabelCache) Len() int {
	if lc == nil {
		return 0
	}
	return lc.cache.Len()
}

func regionLabel(region pageindex.Region) string {
	label := textutil.NormalizeName(region.Label())
	if label == "" {
		return "[Anonymous]"
	}
	return label
}
