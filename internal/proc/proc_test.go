package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
)

// fakeProc builds a procfs fixture from child to parent pid mappings
// and points the package at it for the duration of the test.
func fakeProc(t *testing.T, parents map[int]int, comms map[int]string) {
	t.Helper()
	dir := t.TempDir()
	for pid, ppid := range parents {
		comm := comms[pid]
		if comm == "" {
			comm = "proc"
		}
		stat := strconv.Itoa(pid) + " (" + comm + ") S " + strconv.Itoa(ppid) + " 1 1 0 -1 4194304 170 0 0 0\n"
		if err := os.MkdirAll(filepath.Join(dir, strconv.Itoa(pid)), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(filepath.Join(dir, strconv.Itoa(pid), "stat"), []byte(stat), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	old := root
	root = dir
	t.Cleanup(func() { root = old })
}

func TestParent(t *testing.T) {
	fakeProc(t,
		map[int]int{100: 1, 200: 100, 300: 200},
		map[int]string{200: "tmux: server", 300: "a (weird) name"},
	)
	var tests = []struct {
		pid  int
		want int
	}{
		{100, 1},
		{200, 100}, // comm contains a space
		{300, 200}, // comm contains parens
		{999, 0},   // no such process
		{0, 0},
		{-4, 0},
	}
	for _, tt := range tests {
		if got := Parent(tt.pid); got != tt.want {
			t.Errorf("Parent(%d) = %d, want %d", tt.pid, got, tt.want)
		}
	}
}

func TestParentMalformed(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "50"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "50", "stat"), []byte("garbage"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := root
	root = dir
	t.Cleanup(func() { root = old })
	if got := Parent(50); got != 0 {
		t.Errorf("Parent of malformed stat = %d, want 0", got)
	}
}

func TestIsDescendant(t *testing.T) {
	// 1 -> 100 (terminal) -> 200 (shell) -> 300 (app)
	//   -> 400 (unrelated)
	fakeProc(t,
		map[int]int{100: 1, 200: 100, 300: 200, 400: 1},
		nil,
	)
	var tests = []struct {
		ancestor, pid int
		want          bool
	}{
		{100, 300, true},
		{100, 200, true},
		{100, 100, true}, // a process is its own ancestor
		{100, 400, false},
		{300, 100, false}, // wrong direction
		{100, 0, false},
		{0, 300, false},
	}
	for _, tt := range tests {
		if got := IsDescendant(tt.ancestor, tt.pid); got != tt.want {
			t.Errorf("IsDescendant(%d, %d) = %v, want %v", tt.ancestor, tt.pid, got, tt.want)
		}
	}
}
