package render

import (
	"fmt"
	"strings"

	"github.com/kk-code-lab/pagemon/internal/procfs"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

const headerTitle = "pagemon"

// formatHeaderLeft renders the cursor address and the region under it.
func formatHeaderLeft(h Header) string {
	var b strings.Builder
	b.WriteString(headerTitle)
	if !h.HasAddress {
		b.WriteString(" ---------------- ")
	} else {
		fmt.Fprintf(&b, " 0x%016x ", h.Address)
	}
	if h.Mapped {
		fmt.Fprintf(&b, "%s %s %s", h.Perms, h.Dev, h.Label)
	} else {
		b.WriteString("Unmapped Page")
	}
	return b.String()
}

// formatHeaderRight renders the view, zoom and percent indicators.
func formatHeaderRight(h Header) string {
	parts := []string{strings.ToUpper(h.Mode.String())}
	if h.Mode == statepkg.ViewPage {
		zoom := fmt.Sprintf("zoom x%d", h.Zoom)
		if h.AutoZoom {
			zoom = fmt.Sprintf("auto x%d", h.Zoom)
		}
		parts = append(parts, zoom)
	}
	if h.HasAddress {
		parts = append(parts, fmt.Sprintf("%5.1f%%", h.Percent))
	}
	return strings.Join(parts, " · ")
}

func formatGutter(row Row) string {
	if !row.HasAddress {
		return strings.Repeat(" ", statepkg.AddressColumnWidth)
	}
	return fmt.Sprintf("%016x ", row.Address)
}

// formatKiB renders a kernel kB figure with a binary unit.
func formatKiB(kb uint64) string {
	switch {
	case kb >= 1<<30:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(kb)/(1<<30))) + " TiB"
	case kb >= 1<<20:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(kb)/(1<<20))) + " GiB"
	case kb >= 1<<10:
		return trimTrailingZero(fmt.Sprintf("%.1f", float64(kb)/(1<<10))) + " MiB"
	default:
		return fmt.Sprintf("%d KiB", kb)
	}
}

func formatCompactNumber(n uint64) string {
	switch {
	case n >= 1_000_000_000:
		return fmt.Sprintf("%.1fB", float64(n)/1_000_000_000.0)
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000.0)
	case n >= 1_000:
		return fmt.Sprintf("%.1fk", float64(n)/1_000.0)
	default:
		return fmt.Sprintf("%d", n)
	}
}

func trimTrailingZero(s string) string {
	return strings.TrimSuffix(strings.TrimSuffix(s, "0"), ".")
}

func buildVMStatsLines(stats *procfs.VMStats) []string {
	if stats == nil {
		return []string{"no statistics yet"}
	}
	rows := []struct {
		name  string
		value string
	}{
		{"Virtual", formatKiB(stats.VmSize)},
		{"Resident", formatKiB(stats.VmRSS)},
		{"Swapped", formatKiB(stats.VmSwap)},
		{"Data", formatKiB(stats.VmData)},
		{"Stack", formatKiB(stats.VmStk)},
		{"Locked", formatKiB(stats.VmLck)},
		{"Minor faults", formatCompactNumber(stats.MinFlt)},
		{"Major faults", formatCompactNumber(stats.MajFlt)},
		{"OOM score", fmt.Sprintf("%d", stats.OOMScore)},
		{"OOM adjust", fmt.Sprintf("%d", stats.OOMAdj)},
	}
	lines := make([]string, len(rows))
	for i, row := range rows {
		lines[i] = fmt.Sprintf("%-13s %10s", row.name, row.value)
	}
	return lines
}
