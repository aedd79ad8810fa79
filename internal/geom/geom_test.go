package geom

import "testing"

func TestOverlap(t *testing.T) {
	var tests = []struct {
		a, b Rect
		out  int
	}{
		{Rect{0, 0, 100, 100}, Rect{0, 0, 100, 100}, 10000},
		{Rect{0, 0, 100, 100}, Rect{50, 50, 100, 100}, 2500},
		{Rect{0, 0, 100, 100}, Rect{100, 0, 100, 100}, 0},
		{Rect{0, 0, 100, 100}, Rect{200, 200, 10, 10}, 0},
		{Rect{10, 10, 1, 1}, Rect{0, 0, 100, 100}, 1},
		{Rect{-50, 0, 100, 100}, Rect{0, 0, 100, 100}, 5000},
	}
	for _, tt := range tests {
		if ret := Overlap(tt.a, tt.b); ret != tt.out {
			t.Errorf("Overlap(%v, %v) = %d, want %d", tt.a, tt.b, ret, tt.out)
		}
		if ret := Overlap(tt.b, tt.a); ret != tt.out {
			t.Errorf("Overlap(%v, %v) = %d, want %d", tt.b, tt.a, ret, tt.out)
		}
	}
}

func TestContains(t *testing.T) {
	r := Rect{10, 20, 100, 50}
	var tests = []struct {
		x, y int
		out  bool
	}{
		{10, 20, true},
		{109, 69, true},
		{110, 69, false},
		{109, 70, false},
		{9, 20, false},
		{60, 40, true},
	}
	for _, tt := range tests {
		if ret := r.Contains(tt.x, tt.y); ret != tt.out {
			t.Errorf("%v.Contains(%d, %d) = %t, want %t", r, tt.x, tt.y, ret, tt.out)
		}
	}
}

func TestUnique(t *testing.T) {
	// A mirrored laptop + projector setup reports the same geometry twice.
	heads := []Rect{
		{0, 0, 1920, 1080},
		{0, 0, 1920, 1080},
		{1920, 0, 1280, 1024},
		{0, 0, 1920, 1080},
	}
	got := Unique(heads)
	want := []Rect{
		{0, 0, 1920, 1080},
		{1920, 0, 1280, 1024},
	}
	if len(got) != len(want) {
		t.Fatalf("Unique returned %d heads, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unique[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
