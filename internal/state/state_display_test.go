package state

import "testing"

func TestGridGeometry(t *testing.T) {
	if got := GridWidth(ViewPage, 80); got != 63 {
		t.Errorf("page grid width: expected 63, got %d", got)
	}
	if got := GridWidth(ViewMemory, 80); got != 15 {
		t.Errorf("memory grid width: expected 15, got %d", got)
	}
	if got := GridWidth(ViewPage, 5); got != 0 {
		t.Errorf("narrow screen: expected 0, got %d", got)
	}
	if got := GridHeight(24); got != 22 {
		t.Errorf("grid height: expected 22, got %d", got)
	}
	if !WindowTooSmall(MinScreenWidth-1, 24) || !WindowTooSmall(80, MinScreenHeight-1) {
		t.Errorf("expected undersized windows to be too small")
	}
	if WindowTooSmall(MinScreenWidth, MinScreenHeight) {
		t.Errorf("minimum window should be usable")
	}
}

func TestNewAppStateGeometry(t *testing.T) {
	s := NewAppState(42, 4096, 80, 24)
	if s.Zoom != MinZoom || s.Mode != ViewPage {
		t.Fatalf("unexpected defaults: zoom=%d mode=%v", s.Zoom, s.Mode)
	}
	page, mem := s.Views[ViewPage], s.Views[ViewMemory]
	if page.Width != 63 || page.Height != 22 || page.YMax != 21 {
		t.Errorf("page view geometry: %+v", page)
	}
	if mem.Width != 15 || mem.Height != 22 {
		t.Errorf("memory view geometry: %+v", mem)
	}
	if _, ok := s.CursorAddress(); ok {
		t.Errorf("cursor address without an index should be unavailable")
	}
}

func TestAdvanceTick(t *testing.T) {
	s := NewAppState(1, 4096, 80, 24)
	s.AdvanceTick()
	s.AdvanceTick()
	if s.Tick != 2 || s.Blink != 2 {
		t.Fatalf("expected tick=2 blink=2, got %d %d", s.Tick, s.Blink)
	}
}
