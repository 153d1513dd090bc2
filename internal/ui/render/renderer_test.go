package render

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/kk-code-lab/pagemon/internal/pageindex"
	statepkg "github.com/kk-code-lab/pagemon/internal/state"
)

func newSimScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("UTF-8")
	if err := screen.Init(); err != nil {
		t.Fatalf("screen init: %v", err)
	}
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func screenLine(screen tcell.SimulationScreen, y int) string {
	w, _ := screen.Size()
	var b strings.Builder
	for x := 0; x < w; x++ {
		ch, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(ch)
	}
	return b.String()
}

func TestTruncateTextToWidth(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		width  int
		expect string
	}{
		{name: "fits without truncation", text: "libc.so.6", width: 20, expect: "libc.so.6"},
		{name: "adds ellipsis when needed", text: "verylongname", width: 6, expect: "veryl…"},
		{name: "only ellipsis when width too small", text: "example", width: 1, expect: "…"},
		{name: "multi-byte characters respected", text: "你好世界", width: 5, expect: "你好…"},
		{name: "returns empty when width is zero", text: "anything", width: 0, expect: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actual := truncateTextToWidth(tt.text, tt.width)
			if actual != tt.expect {
				t.Fatalf("expected %q, got %q (width %d)", tt.expect, actual, tt.width)
			}
		})
	}
}

func TestRenderPageView(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	state := newTestState(t)
	r := NewRenderer(screen)

	frame := r.Render(state, Source{Pagemap: testDecoder()})
	if frame.TooSmall {
		t.Fatalf("unexpected too-small frame")
	}

	header := screenLine(screen, 0)
	if !strings.HasPrefix(header, "pagemon 0x0000000000400000 r-xp 08:01 target") {
		t.Fatalf("unexpected header %q", header)
	}
	if !strings.Contains(header, "PAGE · zoom x1") {
		t.Errorf("expected zoom indicator in header %q", header)
	}

	row := screenLine(screen, 1)
	if !strings.HasPrefix(row, "0000000000400000 #D.SA") {
		t.Fatalf("unexpected first grid row %q", row)
	}

	footer := screenLine(screen, 23)
	if !strings.HasPrefix(footer, "KEY: A Anon/File") {
		t.Errorf("unexpected footer %q", footer)
	}
}

func TestRenderCursorBlinkPhase(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	state := newTestState(t)
	state.Blink = blinkPeriod
	r := NewRenderer(screen)

	r.Render(state, Source{Pagemap: testDecoder()})

	if ch, _, _, _ := screen.GetContent(statepkg.AddressColumnWidth, 1); ch != 'R' {
		t.Fatalf("expected glyph under hidden cursor, got %q", ch)
	}
}

func TestRenderMemoryView(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	state := newTestState(t)
	if _, err := statepkg.NewStateReducer().Reduce(state, statepkg.ToggleViewAction{}); err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	r := NewRenderer(screen)

	r.Render(state, Source{Mem: fakeMem{base: 0x400000, data: []byte("ABCDEFGHIJKLMNO")}})

	row := screenLine(screen, 1)
	if !strings.HasPrefix(row, "0000000000400000 41 42 43") {
		t.Fatalf("unexpected hex row %q", row)
	}
	if !strings.Contains(row, "ABCDEFGHIJKLMNO") {
		t.Errorf("expected ascii column in %q", row)
	}
	if next := screenLine(screen, 2); !strings.HasPrefix(next, "000000000040000f ?? ??") {
		t.Errorf("expected unreadable marker row, got %q", next)
	}
}

func TestRenderTooSmallBanner(t *testing.T) {
	screen := newSimScreen(t, 12, 4)
	state := newTestState(t)
	if _, err := statepkg.NewStateReducer().Reduce(state, statepkg.ResizeAction{Width: 12, Height: 4}); err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}
	r := NewRenderer(screen)
	r.Render(state, Source{})

	if line := screenLine(screen, 2); !strings.Contains(line, "Window too") {
		t.Fatalf("expected banner, got %q", line)
	}
}

func TestRenderHelpOverlay(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	state := newTestState(t)
	state.HelpVisible = true
	r := NewRenderer(screen)
	r.Render(state, Source{})

	if line := screenLine(screen, 0); !strings.Contains(line, "Help") {
		t.Fatalf("expected help title, got %q", line)
	}
}

func TestRenderVMStatsOverlay(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	state := newTestState(t)
	state.ShowVMStats = true
	r := NewRenderer(screen)
	r.Render(state, Source{})

	if line := screenLine(screen, 1); !strings.Contains(line, "VM stats") {
		t.Fatalf("expected stats box title, got %q", line)
	}
}

func TestRenderHeaderKeepsLabelTail(t *testing.T) {
	screen := newSimScreen(t, 80, 24)
	maps := mapsText("00400000-00401000 r--p 00000000 08:01 77 /opt/app/libverylongname-with-version-1.2.3.so\n")
	ix, _, err := pageindex.NewBuilder(testPageSize).Rebuild(maps)
	if err != nil {
		t.Fatalf("Rebuild failed: %v", err)
	}
	state := statepkg.NewAppState(1, testPageSize, 80, 24)
	if _, err := statepkg.NewStateReducer().Reduce(state, statepkg.IndexChangedAction{Index: ix}); err != nil {
		t.Fatalf("Reduce failed: %v", err)
	}

	NewRenderer(screen).Render(state, Source{Pagemap: testDecoder()})

	header := screenLine(screen, 0)
	if !strings.Contains(header, "r--p 08:01 …-version-1.2.3.so") {
		t.Fatalf("expected label truncated from the left, got %q", header)
	}
}
