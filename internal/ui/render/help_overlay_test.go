package render

import (
	"strings"
	"testing"

	"github.com/kk-code-lab/pagemon/internal/procfs"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

func TestBuildHelpOverlayLinesIncludesSections(t *testing.T) {
	lines := buildHelpOverlayLines(&statepkg.AppState{})

	assertContains := func(substr string) {
		found := false
		for _, line := range lines {
			if strings.Contains(line, substr) {
				found = true
				break
			}
		}
		if !found {
			t.Fatalf("expected lines to contain %q, got %v", substr, lines)
		}
	}

	assertContains("Navigation")
	assertContains("Page view")
	assertContains("Exit")
	assertContains("Enable auto zoom")
	assertContains("Suspend to shell")
}

func TestBuildHelpOverlayLinesReflectsAutoZoom(t *testing.T) {
	lines := buildHelpOverlayLines(&statepkg.AppState{AutoZoom: true})

	joined := strings.Join(lines, " ")
	if !strings.Contains(joined, "Disable auto zoom") {
		t.Fatalf("expected help to offer disabling auto zoom, got %v", lines)
	}
}

func TestBuildVMStatsLines(t *testing.T) {
	lines := buildVMStatsLines(&procfs.VMStats{
		VmSize:   2 << 20,
		VmRSS:    1536,
		VmSwap:   12,
		MinFlt:   12345,
		MajFlt:   7,
		OOMScore: 666,
		OOMAdj:   -17,
	})
	joined := strings.Join(lines, "\n")
	for _, want := range []string{"2 GiB", "1.5 MiB", "12 KiB", "12.3k", "666", "-17"} {
		if !strings.Contains(joined, want) {
			t.Errorf("expected %q in stats overlay:\n%s", want, joined)
		}
	}

	if got := buildVMStatsLines(nil); len(got) != 1 {
		t.Fatalf("expected placeholder line without stats, got %v", got)
	}
}
