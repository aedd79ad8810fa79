// Package proc walks the local procfs to relate window owners to their
// ancestor processes. The window manager uses it to find the terminal a
// freshly mapped window was spawned from.
package proc

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

var root = "/proc"

// Parent returns the parent pid of pid, or 0 when the stat file is
// missing or malformed.
func Parent(pid int) int {
	if pid <= 0 {
		return 0
	}
	b, err := os.ReadFile(filepath.Join(root, strconv.Itoa(pid), "stat"))
	if err != nil {
		return 0
	}
	// The comm field is parenthesized and may itself contain spaces,
	// so the numeric fields start after the last closing paren.
	s := string(b)
	i := strings.LastIndexByte(s, ')')
	if i < 0 {
		return 0
	}
	fields := strings.Fields(s[i+1:])
	if len(fields) < 2 {
		return 0
	}
	ppid, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0
	}
	return ppid
}

// IsDescendant reports whether pid is ancestor itself or runs somewhere
// underneath it.
func IsDescendant(ancestor, pid int) bool {
	for pid != ancestor && pid != 0 {
		pid = Parent(pid)
	}
	return pid != 0
}
