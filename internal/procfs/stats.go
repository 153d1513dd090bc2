package procfs

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// VMStats is a snapshot of the memory statistics shown in the overlay. Sizes
// are in KiB, as reported by the kernel.
type VMStats struct {
	VmSize   uint64
	VmRSS    uint64
	VmSwap   uint64
	VmData   uint64
	VmStk    uint64
	VmLck    uint64
	MinFlt   uint64
	MajFlt   uint64
	OOMScore int64
	OOMAdj   int64
}

// ReadVMStats gathers status, stat and OOM information. Missing optional
// files leave their fields zero; only an unreadable status file is an error.
func (p Proc) ReadVMStats() (VMStats, error) {
	var stats VMStats

	status, err := os.ReadFile(p.Path("status"))
	if err != nil {
		return stats, fmt.Errorf("read status: %w", err)
	}
	parseStatus(status, &stats)

	if stat, err := os.ReadFile(p.Path("stat")); err == nil {
		stats.MinFlt, stats.MajFlt = parseStatFaults(stat)
	}
	if score, err := readInt(p.Path("oom_score")); err == nil {
		stats.OOMScore = score
	}
	if adj, err := readInt(p.Path("oom_score_adj")); err == nil {
		stats.OOMAdj = adj
	}
	return stats, nil
}

func parseStatus(data []byte, stats *VMStats) {
	fields := map[string]*uint64{
		"VmSize:": &stats.VmSize,
		"VmRSS:":  &stats.VmRSS,
		"VmSwap:": &stats.VmSwap,
		"VmData:": &stats.VmData,
		"VmStk:":  &stats.VmStk,
		"VmLck:":  &stats.VmLck,
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		parts := strings.Fields(sc.Text())
		if len(parts) < 2 {
			continue
		}
		dst, ok := fields[parts[0]]
		if !ok {
			continue
		}
		if v, err := strconv.ParseUint(parts[1], 10, 64); err == nil {
			*dst = v
		}
	}
}

// parseStatFaults extracts minflt (field 10) and majflt (field 12) from
// /proc/<pid>/stat. The command name may contain spaces and parentheses, so
// fields are counted from the last ')'.
func parseStatFaults(data []byte) (minflt, majflt uint64) {
	text := string(data)
	end := strings.LastIndexByte(text, ')')
	if end < 0 {
		return 0, 0
	}
	rest := strings.Fields(text[end+1:])
	// rest[0] is field 3 (state).
	if len(rest) > 9 {
		minflt, _ = strconv.ParseUint(rest[7], 10, 64)
		majflt, _ = strconv.ParseUint(rest[9], 10, 64)
	}
	return minflt, majflt
}

func readInt(path string) (int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	return strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
}
