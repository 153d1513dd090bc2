package procfs

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/kk-code-lab/pagemon/internal/pmerr"
)

// FindPIDByName resolves a process name to a PID by scanning comm and the
// executable name in cmdline. The process self is never matched. More than one
// candidate is reported as an error listing them.
func FindPIDByName(root, name string, self int) (int, error) {
	if root == "" {
		root = DefaultRoot
	}
	if name == "" {
		return 0, pmerr.New(pmerr.NoPID, "empty process name")
	}
	entries, err := os.ReadDir(root)
	if err != nil {
		return 0, pmerr.Wrap(pmerr.NoPID, err, "cannot list %s", root)
	}

	var matches []int
	for _, entry := range entries {
		pid, err := strconv.Atoi(entry.Name())
		if err != nil || pid <= 0 || pid == self {
			continue
		}
		if processMatches(filepath.Join(root, entry.Name()), name) {
			matches = append(matches, pid)
		}
	}

	switch len(matches) {
	case 0:
		return 0, pmerr.New(pmerr.NoPID, "no process named %q", name)
	case 1:
		return matches[0], nil
	default:
		sort.Ints(matches)
		ids := make([]string, len(matches))
		for i, pid := range matches {
			ids[i] = strconv.Itoa(pid)
		}
		return 0, pmerr.New(pmerr.NoPID, "process name %q is ambiguous (pids %s)", name, strings.Join(ids, ", "))
	}
}

func processMatches(dir, name string) bool {
	if comm, err := os.ReadFile(filepath.Join(dir, "comm")); err == nil {
		if strings.TrimSpace(string(comm)) == name {
			return true
		}
	}
	cmdline, err := os.ReadFile(filepath.Join(dir, "cmdline"))
	if err != nil || len(cmdline) == 0 {
		return false
	}
	argv0 := cmdline
	if i := bytes.IndexByte(cmdline, 0); i >= 0 {
		argv0 = cmdline[:i]
	}
	return filepath.Base(string(argv0)) == name
}
