// Package treepanel renders the tree projection as a scrollable panel and
// translates key presses into tree operations.
package treepanel

import (
	"context"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/sahilm/fuzzy"

	"github.com/arbornav/arbor/internal/components"
	"github.com/arbornav/arbor/internal/pathutil"
	"github.com/arbornav/arbor/internal/theme"
	"github.com/arbornav/arbor/internal/tree"
)

// Messages
type (
	// SelectMsg is sent when a file row is opened.
	SelectMsg struct {
		Path string
	}

	// RootChangedMsg is sent after the tree was re-rooted.
	RootChangedMsg struct {
		Path string
	}
)

// KeyMap defines the key bindings for the panel.
type KeyMap struct {
	Up          key.Binding
	Down        key.Binding
	Left        key.Binding
	Right       key.Binding
	Enter       key.Binding
	PageUp      key.Binding
	PageDown    key.Binding
	Home        key.Binding
	End         key.Binding
	Toggle      key.Binding
	SibNext     key.Binding
	SibPrev     key.Binding
	RootUp      key.Binding
	RootInto    key.Binding
	ShowHidden  key.Binding
	ShowIgnored key.Binding
	Refresh     key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:          key.NewBinding(key.WithKeys("up", "k")),
		Down:        key.NewBinding(key.WithKeys("down", "j")),
		Left:        key.NewBinding(key.WithKeys("left", "h")),
		Right:       key.NewBinding(key.WithKeys("right", "l")),
		Enter:       key.NewBinding(key.WithKeys("enter")),
		PageUp:      key.NewBinding(key.WithKeys("pgup", "ctrl+u")),
		PageDown:    key.NewBinding(key.WithKeys("pgdown", "ctrl+d")),
		Home:        key.NewBinding(key.WithKeys("home", "g")),
		End:         key.NewBinding(key.WithKeys("end", "G")),
		Toggle:      key.NewBinding(key.WithKeys(" ", "o")),
		SibNext:     key.NewBinding(key.WithKeys("J")),
		SibPrev:     key.NewBinding(key.WithKeys("K")),
		RootUp:      key.NewBinding(key.WithKeys("-")),
		RootInto:    key.NewBinding(key.WithKeys("c")),
		ShowHidden:  key.NewBinding(key.WithKeys(".")),
		ShowIgnored: key.NewBinding(key.WithKeys("I")),
		Refresh:     key.NewBinding(key.WithKeys("R")),
	}
}

// Model is the tree panel component.
type Model struct {
	components.Base

	tree   *tree.Tree
	rows   []tree.Row
	cursor int // index into rows
	offset int // scroll offset for the viewport

	searching   bool
	searchInput textinput.Model
	searchQuery string
	matchCount  int

	keys KeyMap
}

// New creates a panel over an existing tree.
func New(t *tree.Tree) Model {
	ti := textinput.New()
	ti.Placeholder = "Filter files..."
	ti.CharLimit = 100

	m := Model{
		tree:        t,
		keys:        DefaultKeyMap(),
		searchInput: ti,
		cursor:      1,
	}
	m.Reload()
	return m
}

// Init initializes the panel.
func (m Model) Init() tea.Cmd {
	return nil
}

// Tree exposes the underlying tree for the host application.
func (m Model) Tree() *tree.Tree {
	return m.tree
}

// Reload re-derives the row projection from the tree.
func (m *Model) Reload() {
	m.rows = m.tree.Rows()
	if m.searchQuery != "" {
		m.rows, m.matchCount = filterRows(m.rows, m.tree.Root, m.searchQuery)
	} else {
		m.matchCount = 0
	}
	m.clampCursor()
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if !m.Focused() {
			return m, nil
		}
		if m.searching {
			return m.handleSearchKey(msg)
		}
		return m.handleKey(msg)
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if msg.String() == "/" {
		m.searching = true
		m.searchInput.SetValue("")
		m.searchInput.Focus()
		return m, textinput.Blink
	}
	if msg.String() == "esc" && m.searchQuery != "" {
		m.searchQuery = ""
		m.Reload()
		return m, nil
	}

	ctx := context.Background()

	switch {
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)

	case key.Matches(msg, m.keys.PageUp):
		_, h := m.Size()
		m.moveCursor(-h / 2)

	case key.Matches(msg, m.keys.PageDown):
		_, h := m.Size()
		m.moveCursor(h / 2)

	case key.Matches(msg, m.keys.Home):
		m.cursor = 1
		m.offset = 0

	case key.Matches(msg, m.keys.End):
		m.cursor = len(m.rows) - 1
		m.ensureVisible()

	case key.Matches(msg, m.keys.Enter), key.Matches(msg, m.keys.Right):
		return m.handleSelect(ctx)

	case key.Matches(msg, m.keys.Toggle):
		if node := m.SelectedNode(); node != nil && node.IsDir() {
			_ = m.tree.UnrollDir(ctx, node)
			m.Reload()
		}

	case key.Matches(msg, m.keys.Left):
		if node := m.SelectedNode(); node != nil {
			m.moveToNode(m.tree.ParentNode(node, true))
			m.Reload()
		}

	case key.Matches(msg, m.keys.SibNext):
		if node := m.SelectedNode(); node != nil {
			m.moveToNode(m.tree.Sibling(node, 1))
		}

	case key.Matches(msg, m.keys.SibPrev):
		if node := m.SelectedNode(); node != nil {
			m.moveToNode(m.tree.Sibling(node, -1))
		}

	case key.Matches(msg, m.keys.RootUp):
		return m.rootUp()

	case key.Matches(msg, m.keys.RootInto):
		if node := m.SelectedNode(); node != nil && node.IsDir() {
			return m.changeRoot(node.LastGroupNode().Path)
		}

	case key.Matches(msg, m.keys.ShowHidden):
		cfg := m.tree.Config()
		cfg.ShowHidden = !cfg.ShowHidden
		m.tree.SetConfig(cfg)
		m.Reload()

	case key.Matches(msg, m.keys.ShowIgnored):
		cfg := m.tree.Config()
		cfg.ShowIgnored = !cfg.ShowIgnored
		m.tree.SetConfig(cfg)
		m.Reload()

	case key.Matches(msg, m.keys.Refresh):
		// Explicit refresh also re-resolves repository roots, so a repo
		// initialized or moved mid-session is picked up.
		m.tree.ReloadRoots()
		_, _ = m.tree.Refresh(ctx)
		m.Reload()
	}

	return m, nil
}

func (m Model) handleSearchKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searching = false
		m.searchQuery = m.searchInput.Value()
		m.searchInput.Blur()
		m.Reload()
		if len(m.rows) > 1 {
			m.cursor = 1
			m.offset = 0
		}
		return m, nil

	case "esc":
		m.searching = false
		m.searchQuery = ""
		m.searchInput.Blur()
		m.Reload()
		return m, nil
	}

	var cmd tea.Cmd
	m.searchInput, cmd = m.searchInput.Update(msg)
	m.searchQuery = m.searchInput.Value()
	m.Reload()
	return m, cmd
}

// handleSelect opens the row under the cursor: directories toggle, files
// are reported to the host, the ".." row re-roots one level up.
func (m Model) handleSelect(ctx context.Context) (Model, tea.Cmd) {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return m, nil
	}
	row := m.rows[m.cursor]

	if row.IsUp {
		return m.rootUp()
	}
	if row.Node == nil {
		return m, nil
	}
	if row.Node.IsDir() {
		_ = m.tree.UnrollDir(ctx, row.Node)
		m.Reload()
		return m, nil
	}

	path := row.Node.Path
	return m, func() tea.Msg {
		return SelectMsg{Path: path}
	}
}

func (m Model) rootUp() (Model, tea.Cmd) {
	if pathutil.IsFSRoot(m.tree.Root) {
		return m, nil
	}
	return m.changeRoot(filepath.Dir(m.tree.Root))
}

func (m Model) changeRoot(dir string) (Model, tea.Cmd) {
	if err := m.tree.ChangeRoot(dir); err != nil {
		return m, nil
	}
	m.cursor = 1
	m.offset = 0
	m.searchQuery = ""
	m.Reload()
	root := m.tree.Root
	return m, func() tea.Msg {
		return RootChangedMsg{Path: root}
	}
}

// Searching reports whether the filter input is capturing key presses.
func (m Model) Searching() bool {
	return m.searching
}

// SelectedNode returns the node under the cursor, nil on header/".." rows.
func (m Model) SelectedNode() *tree.Node {
	if m.cursor < 0 || m.cursor >= len(m.rows) {
		return nil
	}
	return m.rows[m.cursor].Node
}

// SelectedPath returns the path under the cursor.
func (m Model) SelectedPath() string {
	if node := m.SelectedNode(); node != nil {
		return node.Path
	}
	return ""
}

// SyncTo expands ancestors of path and moves the cursor to its row.
func (m *Model) SyncTo(path string) bool {
	line, ok := m.tree.ExpandPath(context.Background(), path)
	if !ok {
		return false
	}
	m.searchQuery = ""
	m.Reload()
	m.cursor = line - 1
	m.clampCursor()
	m.ensureVisible()
	return true
}

// moveToNode places the cursor on node's display row, if visible.
func (m *Model) moveToNode(node *tree.Node) {
	if node == nil {
		return
	}
	for i, row := range m.rows {
		if row.Node == node {
			m.cursor = i
			m.ensureVisible()
			return
		}
	}
}

func (m *Model) moveCursor(delta int) {
	m.cursor += delta
	m.clampCursor()
	m.ensureVisible()
}

func (m *Model) clampCursor() {
	if m.cursor >= len(m.rows) {
		m.cursor = len(m.rows) - 1
	}
	if m.cursor < 1 {
		m.cursor = 1
	}
	if len(m.rows) == 0 {
		m.cursor = 0
	}
}

func (m *Model) ensureVisible() {
	_, h := m.Size()
	viewport := h - m.searchBarHeight()
	if viewport <= 0 {
		return
	}
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+viewport {
		m.offset = m.cursor - viewport + 1
	}
}

func (m Model) searchBarHeight() int {
	if m.searching || m.searchQuery != "" {
		return 1
	}
	return 0
}

// filterRows keeps rows whose node path fuzzy-matches query, plus every
// ancestor directory row so matches stay anchored in the hierarchy.
// Header rows always survive. Returns the filtered rows and match count.
func filterRows(rows []tree.Row, root, query string) ([]tree.Row, int) {
	targets := make([]string, len(rows))
	for i, row := range rows {
		if row.Node != nil {
			if rel, ok := pathutil.Rel(root, row.Node.Path); ok {
				targets[i] = filepath.Join(rel...)
			}
		}
	}

	matched := make(map[int]bool)
	matches := fuzzy.Find(query, targets)
	for _, match := range matches {
		matched[match.Index] = true
	}
	if len(matches) == 0 {
		return rows, 0
	}

	keep := make(map[string]bool)
	for i := range rows {
		if !matched[i] || rows[i].Node == nil {
			continue
		}
		keep[rows[i].Node.Path] = true
		for p := rows[i].Node.Parent; p != nil; p = p.Parent {
			keep[p.Path] = true
		}
	}

	var out []tree.Row
	count := 0
	for _, row := range rows {
		if row.Node == nil {
			out = append(out, row)
			continue
		}
		if keep[row.Node.Path] {
			out = append(out, row)
			count++
		}
	}
	return out, count
}

// View renders the panel.
func (m Model) View() string {
	w, h := m.Size()
	if w == 0 || h == 0 {
		return ""
	}

	contentHeight := h - m.searchBarHeight()
	var lines []string
	for i := m.offset; i < len(m.rows) && len(lines) < contentHeight; i++ {
		lines = append(lines, m.renderRow(m.rows[i], i == m.cursor, w))
	}
	for len(lines) < contentHeight {
		lines = append(lines, "")
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	if m.searchBarHeight() > 0 {
		content = lipgloss.JoinVertical(lipgloss.Left, content, m.renderSearchBar())
	}
	return content
}

func (m Model) renderRow(row tree.Row, selected bool, maxWidth int) string {
	if row.Node == nil && !row.IsUp {
		return theme.Header.Render(truncate(row.Label, maxWidth))
	}
	if row.IsUp {
		line := theme.UpRow.Render(row.Label)
		if selected {
			line = theme.Selected.Render(row.Label)
		}
		return line
	}

	indent := strings.Repeat("  ", row.Depth)

	icon := theme.IconLeaf
	if row.IsDir {
		icon = theme.IconClosed
		if row.IsOpen {
			icon = theme.IconOpen
		}
	}

	label := row.Label
	if row.IsDir {
		label += "/"
	}
	if row.Node.LinkTo != "" {
		label += " → " + row.Node.LinkTo
	}

	var indicators []string
	if s := row.Status; s != ' ' && s != 0 {
		indicators = append(indicators, theme.StatusStyle(s).Render(s.String()))
	}
	if dot := theme.SeverityIndicator(row.Severity); dot != "" {
		indicators = append(indicators, dot)
	}
	suffix := strings.Join(indicators, " ")

	line := indent + icon + " " + label
	available := maxWidth - lipgloss.Width(suffix) - 1
	line = truncate(line, available)

	var style lipgloss.Style
	switch {
	case selected:
		style = theme.Selected
	case row.Node.Ignored:
		style = theme.Ignored
	case row.Node.Kind == tree.KindSymlinkFile || row.Node.Kind == tree.KindSymlinkDir:
		style = theme.Symlink
	case row.IsDir:
		style = theme.Dir
	default:
		style = theme.File
	}

	result := style.Render(line)
	if suffix != "" {
		result += " " + suffix
	}
	return result
}

func (m Model) renderSearchBar() string {
	if m.searching {
		return "/" + m.searchInput.View()
	}
	bar := theme.Search.Render("/ " + m.searchQuery)
	if m.matchCount > 0 {
		bar += theme.Muted.Render(" (" + strconv.Itoa(m.matchCount) + " matches)")
	}
	return bar
}

func truncate(s string, width int) string {
	if width <= 1 || lipgloss.Width(s) <= width {
		return s
	}
	runes := []rune(s)
	if len(runes) > width-1 {
		runes = runes[:width-1]
	}
	return string(runes) + "…"
}

// Focus gives focus to this component.
func (m Model) Focus() Model {
	m.Base.Focus()
	return m
}

// Blur removes focus from this component.
func (m Model) Blur() Model {
	m.Base.Blur()
	return m
}

// SetSize updates the component's dimensions.
func (m Model) SetSize(width, height int) Model {
	m.Base.SetSize(width, height)
	m.ensureVisible()
	return m
}
