// Package pathutil provides structural path comparison helpers.
//
// Paths are compared as parsed segment sequences rather than strings or
// patterns, so names containing glob metacharacters need no escaping.
package pathutil

import (
	"os"
	"path/filepath"
	"strings"
)

// Normalize returns the cleaned absolute form of path.
func Normalize(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	return filepath.Clean(abs)
}

// Segments splits a cleaned path into its non-empty components.
// The filesystem root yields an empty slice.
func Segments(path string) []string {
	path = filepath.ToSlash(filepath.Clean(path))
	if vol := filepath.VolumeName(path); vol != "" {
		path = path[len(vol):]
	}
	parts := strings.Split(path, "/")
	segs := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" && p != "." {
			segs = append(segs, p)
		}
	}
	return segs
}

// IsFSRoot reports whether path is the filesystem root (it has no parent).
func IsFSRoot(path string) bool {
	path = filepath.Clean(path)
	return filepath.Dir(path) == path
}

// Equal reports whether two paths name the same location.
func Equal(a, b string) bool {
	return filepath.Clean(a) == filepath.Clean(b)
}

// Within reports whether child is strictly beneath parent.
// Equal paths are not within each other.
func Within(parent, child string) bool {
	ps := Segments(parent)
	cs := Segments(child)
	if len(cs) <= len(ps) {
		return false
	}
	for i, seg := range ps {
		if cs[i] != seg {
			return false
		}
	}
	return true
}

// Rel returns the segments of child below parent, and whether child is at
// or beneath parent. Rel(p, p) returns an empty slice and true.
func Rel(parent, child string) ([]string, bool) {
	ps := Segments(parent)
	cs := Segments(child)
	if len(cs) < len(ps) {
		return nil, false
	}
	for i, seg := range ps {
		if cs[i] != seg {
			return nil, false
		}
	}
	return cs[len(ps):], true
}

// HomeShorten replaces the user's home prefix with "~" for display.
func HomeShorten(path string) string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	if Equal(path, home) {
		return "~"
	}
	if rel, ok := Rel(home, path); ok {
		return "~" + string(filepath.Separator) + filepath.Join(rel...)
	}
	return path
}
