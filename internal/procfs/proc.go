package procfs

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"math"
	"os"
	"path/filepath"
	"strconv"

	"github.com/kk-code-lab/pagemon/internal/logflags"
	"github.com/kk-code-lab/pagemon/internal/pmerr"
	"golang.org/x/sys/unix"
)

// DefaultRoot is where the kernel mounts procfs.
const DefaultRoot = "/proc"

// softDirtyClear is the clear_refs command that resets soft-dirty bits.
const softDirtyClear = "4"

// Proc addresses the procfs files of one process.
type Proc struct {
	Root string
	PID  int
}

// New returns a Proc rooted at DefaultRoot.
func New(pid int) Proc {
	return Proc{Root: DefaultRoot, PID: pid}
}

// Path returns the path of a per-process procfs file.
func (p Proc) Path(name string) string {
	root := p.Root
	if root == "" {
		root = DefaultRoot
	}
	return filepath.Join(root, strconv.Itoa(p.PID), name)
}

// ReadMaps returns the raw map listing. It satisfies pageindex.MapSource.
func (p Proc) ReadMaps() ([]byte, error) {
	return os.ReadFile(p.Path("maps"))
}

// OpenPagemap opens the per-page status table.
func (p Proc) OpenPagemap() (*File, error) {
	return openFile(p.Path("pagemap"))
}

// OpenMem opens the raw memory of the process.
func (p Proc) OpenMem() (*File, error) {
	return openFile(p.Path("mem"))
}

// ResetSoftDirty clears the soft-dirty bits of every page of the process.
func (p Proc) ResetSoftDirty() error {
	f, err := os.OpenFile(p.Path("clear_refs"), os.O_WRONLY, 0)
	if err != nil {
		return fmt.Errorf("open clear_refs: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()
	if _, err := f.WriteString(softDirtyClear); err != nil {
		return fmt.Errorf("write clear_refs: %w", err)
	}
	return nil
}

// Alive probes whether the process still exists. A vanished process yields a
// NoProcess error.
func (p Proc) Alive() error {
	if p.Root == "" || p.Root == DefaultRoot {
		if err := unix.Kill(p.PID, 0); err != nil && !errors.Is(err, unix.EPERM) {
			return pmerr.Wrap(pmerr.NoProcess, err, "process %d", p.PID)
		}
	}
	if _, err := os.Stat(p.Path("")); err != nil {
		return pmerr.Wrap(pmerr.NoProcess, err, "process %d", p.PID)
	}
	return nil
}

// File is a procfs file read with positioned reads.
type File struct {
	fd   int
	path string
}

func openFile(path string) (*File, error) {
	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, &os.PathError{Op: "open", Path: path, Err: err}
	}
	return &File{fd: fd, path: path}, nil
}

// ReadAt implements io.ReaderAt with pread(2). Kernel tables return short
// reads at unmapped holes, so a short read is reported as an error.
func (f *File) ReadAt(buf []byte, off int64) (int, error) {
	if off < 0 {
		return 0, &os.PathError{Op: "pread", Path: f.path, Err: unix.EINVAL}
	}
	total := 0
	for total < len(buf) {
		n, err := unix.Pread(f.fd, buf[total:], off+int64(total))
		if err != nil {
			if errors.Is(err, unix.EINTR) {
				continue
			}
			return total, &os.PathError{Op: "pread", Path: f.path, Err: err}
		}
		if n == 0 {
			return total, fmt.Errorf("pread %s: short read at %#x", f.path, off+int64(total))
		}
		total += n
	}
	return total, nil
}

// Close releases the descriptor.
func (f *File) Close() error {
	if f == nil || f.fd < 0 {
		return nil
	}
	err := unix.Close(f.fd)
	f.fd = -1
	return err
}

// TouchPages reads the first byte of every address in addrs so the kernel
// faults the pages in. It returns how many reads succeeded and failed.
func TouchPages(mem io.ReaderAt, addrs iter.Seq[uint64]) (touched, failed int) {
	log := logflags.ProcfsLogger()
	var b [1]byte
	for addr := range addrs {
		if addr > math.MaxInt64 {
			failed++
			continue
		}
		if _, err := mem.ReadAt(b[:], int64(addr)); err != nil {
			failed++
			continue
		}
		touched++
	}
	log.Debugf("touched %d pages, %d failed", touched, failed)
	return touched, failed
}
