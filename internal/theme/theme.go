// Package theme holds the panel's visual configuration.
package theme

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
)

// Palette colors.
var (
	Sky      = lipgloss.Color("#7DCFFF") // directories
	Fog      = lipgloss.Color("#A9B1D6") // files
	Slate    = lipgloss.Color("#565F89") // header, ".." row, muted text
	Moss     = lipgloss.Color("#9ECE6A") // added
	Amber    = lipgloss.Color("#E0AF68") // modified, warnings
	Ember    = lipgloss.Color("#F7768E") // deleted, conflicts, errors
	Iris     = lipgloss.Color("#BB9AF7") // untracked
	Seafoam  = lipgloss.Color("#73DACA") // renamed, hints
	Ink      = lipgloss.Color("#1A1B26") // selection foreground
	Moonbeam = lipgloss.Color("#C0CAF5") // selection background
)

// Row styles.
var (
	Header   = lipgloss.NewStyle().Foreground(Slate).Bold(true)
	UpRow    = lipgloss.NewStyle().Foreground(Slate)
	Dir      = lipgloss.NewStyle().Foreground(Sky).Bold(true)
	File     = lipgloss.NewStyle().Foreground(Fog)
	Symlink  = lipgloss.NewStyle().Foreground(Seafoam).Italic(true)
	Ignored  = lipgloss.NewStyle().Foreground(Slate).Faint(true)
	Selected = lipgloss.NewStyle().Foreground(Ink).Background(Moonbeam)
	Muted    = lipgloss.NewStyle().Foreground(Slate)
	Search   = lipgloss.NewStyle().Foreground(Iris)
	Branch   = lipgloss.NewStyle().Foreground(Iris).Bold(true)
)

// Expander glyphs for directory rows.
const (
	IconOpen   = "▾"
	IconClosed = "▸"
	IconLeaf   = " "
)

// StatusStyle returns the style for a git status indicator.
func StatusStyle(code git.StatusCode) lipgloss.Style {
	switch code {
	case git.StatusAdded, git.StatusCopied:
		return lipgloss.NewStyle().Foreground(Moss)
	case git.StatusModified:
		return lipgloss.NewStyle().Foreground(Amber)
	case git.StatusDeleted, git.StatusConflicted:
		return lipgloss.NewStyle().Foreground(Ember)
	case git.StatusRenamed:
		return lipgloss.NewStyle().Foreground(Seafoam)
	case git.StatusUntracked:
		return lipgloss.NewStyle().Foreground(Iris)
	default:
		return lipgloss.NewStyle().Foreground(Slate)
	}
}

// SeverityIndicator returns the styled marker for a diagnostics severity,
// or "" when there is nothing to show.
func SeverityIndicator(sev diag.Severity) string {
	switch sev {
	case diag.SeverityError:
		return lipgloss.NewStyle().Foreground(Ember).Render("●")
	case diag.SeverityWarning:
		return lipgloss.NewStyle().Foreground(Amber).Render("●")
	case diag.SeverityInfo:
		return lipgloss.NewStyle().Foreground(Sky).Render("○")
	case diag.SeverityHint:
		return lipgloss.NewStyle().Foreground(Seafoam).Render("○")
	default:
		return ""
	}
}
