// Package diag defines the diagnostics source consumed by the tree's
// severity overlay.
package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Severity ranks a diagnostic. Higher values are more urgent; a directory
// shows the maximum severity among the files beneath it.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityHint
	SeverityInfo
	SeverityWarning
	SeverityError
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityHint:
		return "hint"
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "none"
	}
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "hint":
		return SeverityHint, nil
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "", "none":
		return SeverityNone, nil
	}
	return SeverityNone, fmt.Errorf("unknown severity %q", name)
}

// Max returns the more urgent of two severities.
func Max(a, b Severity) Severity {
	if b > a {
		return b
	}
	return a
}

// Source maps absolute paths to severities. SeverityNone means the path
// has no diagnostics.
type Source interface {
	Severity(path string) Severity
}

// MapSource is a Source backed by a plain map of absolute paths.
type MapSource map[string]Severity

// Severity implements Source.
func (m MapSource) Severity(path string) Severity {
	return m[filepath.Clean(path)]
}

// LoadFile reads a JSON object of {"path": "severity"} pairs. Relative
// paths are resolved against baseDir.
func LoadFile(path, baseDir string) (MapSource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	src := make(MapSource, len(raw))
	for p, name := range raw {
		sev, err := ParseSeverity(name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		if !filepath.IsAbs(p) {
			p = filepath.Join(baseDir, p)
		}
		src[filepath.Clean(p)] = sev
	}
	return src, nil
}
