package pageindex

import (
	"errors"
	"strings"
	"testing"

	"github.com/kk-code-lab/pagemon/internal/pmerr"
)

const testPageSize = 0x1000

type stringSource struct {
	text  string
	err   error
	reads int
}

func (s *stringSource) ReadMaps() ([]byte, error) {
	s.reads++
	if s.err != nil {
		return nil, s.err
	}
	return []byte(s.text), nil
}

const sampleMaps = `00400000-00452000 r-xp 00000000 08:02 173521      /usr/bin/dbus-daemon
00651000-00652000 r--p 00051000 08:02 173521      /usr/bin/dbus-daemon
00652000-00655000 rw-p 00052000 08:02 173521      /usr/bin/dbus-daemon
00e03000-00e24000 rw-p 00000000 00:00 0           [heap]
7f5a1c000000-7f5a1c021000 rw-p 00000000 00:00 0
7ffc4a5b4000-7ffc4a5d5000 rw-p 00000000 00:00 0   [stack]
7ffc4a5f0000-7ffc4a5f2000 r-xp 00000000 00:00 0   [vdso]
`

func TestRebuildSinglePage(t *testing.T) {
	b := NewBuilder(testPageSize)
	src := &stringSource{text: "1000-2000 r-xp 00000000 08:01 1234 /bin/x\n"}

	ix, changed, err := b.Rebuild(src)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if !changed {
		t.Fatalf("first rebuild should report a change")
	}
	if len(ix.Regions) != 1 || ix.TotalPages != 1 {
		t.Fatalf("expected 1 region and 1 page, got %d regions %d pages", len(ix.Regions), ix.TotalPages)
	}
	if ix.Pages[0].Address != 0x1000 {
		t.Fatalf("expected page address 0x1000, got %#x", ix.Pages[0].Address)
	}
	region := ix.Regions[0]
	if region.Perms != "r-xp" || region.Dev != "08:01" || region.Name != "/bin/x" {
		t.Fatalf("unexpected region %+v", region)
	}
	if ix.LastAddress != 0x2000 {
		t.Fatalf("expected last address 0x2000, got %#x", ix.LastAddress)
	}
}

func TestRebuildSkippedWhenChecksumUnchanged(t *testing.T) {
	b := NewBuilder(testPageSize)
	src := &stringSource{text: sampleMaps}

	first, _, err := b.Rebuild(src)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	second, changed, err := b.Rebuild(src)
	if err != nil {
		t.Fatalf("second rebuild failed: %v", err)
	}
	if changed {
		t.Fatalf("unchanged listing should not rebuild")
	}
	if first != second {
		t.Fatalf("expected identical index instance")
	}
	if first.Checksum != second.Checksum {
		t.Fatalf("checksum drifted: %x vs %x", first.Checksum, second.Checksum)
	}
}

func TestRebuildDetectsPermissionChange(t *testing.T) {
	b := NewBuilder(testPageSize)
	first, _, err := b.Rebuild(&stringSource{text: sampleMaps})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	mprotected := strings.Replace(sampleMaps, "00e03000-00e24000 rw-p", "00e03000-00e24000 r--p", 1)
	second, changed, err := b.Rebuild(&stringSource{text: mprotected})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if !changed || first == second {
		t.Fatalf("permission change should rebuild the index")
	}
	if first.Checksum == second.Checksum {
		t.Fatalf("checksum should differ after permission change")
	}
}

func TestInvalidateForcesRebuild(t *testing.T) {
	b := NewBuilder(testPageSize)
	src := &stringSource{text: sampleMaps}
	first, _, _ := b.Rebuild(src)

	b.Invalidate()
	second, changed, err := b.Rebuild(src)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if !changed || first == second {
		t.Fatalf("invalidated builder should produce a fresh index")
	}

	_, changed, _ = b.Rebuild(src)
	if changed {
		t.Fatalf("force flag should clear after one rebuild")
	}
}

func TestPageCountConservation(t *testing.T) {
	b := NewBuilder(testPageSize)
	ix, _, err := b.Rebuild(&stringSource{text: sampleMaps})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	var sum uint64
	for _, r := range ix.Regions {
		sum += r.Pages(testPageSize)
	}
	if int(sum) != ix.TotalPages || len(ix.Pages) != ix.TotalPages {
		t.Fatalf("page count mismatch: regions=%d total=%d slice=%d", sum, ix.TotalPages, len(ix.Pages))
	}

	for i, ref := range ix.Pages {
		region := ix.Regions[ref.Region]
		if !region.Contains(ref.Address) {
			t.Fatalf("page %d at %#x outside its region %#x-%#x", i, ref.Address, region.Start, region.End)
		}
		if i == 0 {
			continue
		}
		prev := ix.Pages[i-1]
		if ref.Address < prev.Address {
			t.Fatalf("addresses decrease at page %d", i)
		}
		if ref.Region == prev.Region && ref.Address != prev.Address+testPageSize {
			t.Fatalf("gap inside region at page %d", i)
		}
	}
}

func TestMalformedRecordsAreSkipped(t *testing.T) {
	listing := strings.Join([]string{
		"garbage line",
		"zzzz-2000 r-xp 00000000 08:01 1 /bin/bad",
		"3000-2000 r-xp 00000000 08:01 1 /bin/backwards",
		"1000-3000 rw-p 00000000 00:00 0",
		"4000-5000 r--p 0000",
		"",
	}, "\n")

	ix, _, err := NewBuilder(testPageSize).Rebuild(&stringSource{text: listing})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	if len(ix.Regions) != 1 {
		t.Fatalf("expected only the anonymous region to survive, got %+v", ix.Regions)
	}
	if !ix.Regions[0].Anonymous() || ix.TotalPages != 2 {
		t.Fatalf("unexpected result %+v pages=%d", ix.Regions[0], ix.TotalPages)
	}
}

func TestNameWithSpacesIsKept(t *testing.T) {
	region, ok := parseRegion("7f00-8f00 r--p 00000000 08:01 99   /tmp/my file (deleted)")
	if !ok {
		t.Fatalf("expected record to parse")
	}
	if region.Name != "/tmp/my file (deleted)" {
		t.Fatalf("unexpected name %q", region.Name)
	}
	if region.Label() != "my file (deleted)" {
		t.Fatalf("unexpected label %q", region.Label())
	}
}

func TestRebuildErrors(t *testing.T) {
	tests := []struct {
		name    string
		src     *stringSource
		limit   uint64
		regions int
		kind    pmerr.Kind
	}{
		{name: "unreadable listing", src: &stringSource{err: errors.New("EACCES")}, kind: pmerr.NoMapInfo},
		{name: "empty listing", src: &stringSource{text: ""}, kind: pmerr.NoMapInfo},
		{name: "regions without pages", src: &stringSource{text: "1000-1000 r--p 00000000 00:00 0\n"}, kind: pmerr.TooFewPages},
		{name: "page limit", src: &stringSource{text: sampleMaps}, limit: 4, kind: pmerr.TooManyPages},
		{name: "region limit", src: &stringSource{text: sampleMaps}, regions: 2, kind: pmerr.TooManyRegions},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := NewBuilder(testPageSize)
			if tt.limit > 0 {
				b.MaxPages = tt.limit
			}
			if tt.regions > 0 {
				b.MaxRegions = tt.regions
			}
			_, _, err := b.Rebuild(tt.src)
			if err == nil {
				t.Fatalf("expected error")
			}
			if got := pmerr.KindOf(err); got != tt.kind {
				t.Fatalf("expected %v, got %v (%v)", tt.kind, got, err)
			}
		})
	}
}

func TestOverflowingRegionIsRejected(t *testing.T) {
	b := NewBuilder(1)
	listing := "0-ffffffffffffffff rw-p 00000000 00:00 0\n" +
		"0-ffffffffffffffff rw-p 00000000 00:00 0\n"
	b.MaxPages = 0
	scan, err := b.scan([]byte(listing))
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(scan.regions) != 1 {
		t.Fatalf("second region should overflow the accumulator, got %d regions", len(scan.regions))
	}
}

func TestIndexLookups(t *testing.T) {
	ix, _, err := NewBuilder(testPageSize).Rebuild(&stringSource{text: sampleMaps})
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}

	region, i, ok := ix.RegionFor(0x00e05000)
	if !ok || region.Name != "[heap]" || i != 3 {
		t.Fatalf("expected heap region, got %+v (%d, %v)", region, i, ok)
	}
	if _, _, ok := ix.RegionFor(0x1000); ok {
		t.Fatalf("unmapped address should not resolve")
	}

	addr, ok := ix.ByteAddress(0x52*testPageSize + 0x10)
	if !ok || addr != 0x00651010 {
		t.Fatalf("expected second region byte, got %#x (%v)", addr, ok)
	}
	if _, ok := ix.ByteAddress(ix.TotalBytes()); ok {
		t.Fatalf("position past the end should be invalid")
	}
}
