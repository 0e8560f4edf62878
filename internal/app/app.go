// Package app hosts the tree panel: it owns the tree, the git status
// cache, the filesystem watcher, and the status bar, and wires them
// together in the bubbletea update loop.
package app

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/fsnotify/fsnotify"

	"github.com/arbornav/arbor/internal/components/treepanel"
	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/pathutil"
	"github.com/arbornav/arbor/internal/state"
	"github.com/arbornav/arbor/internal/theme"
	"github.com/arbornav/arbor/internal/tree"
)

// Version is the application version, set at build time via ldflags
var Version = "dev"

// FileChangeMsg is sent when the file system changes
type FileChangeMsg struct {
	Path string
	Op   fsnotify.Op
}

type fileChangeDebounceMsg struct{}

type gitTickMsg struct{}

// gitTickInterval is how often the status overlay is re-queried even
// without filesystem events. Covers index-only changes (git add, commit)
// happening in another terminal.
const gitTickInterval = 10 * time.Second

// fileChangeDebounceInterval is how long rapid bursts of watcher events
// are coalesced before the tree is reconciled.
const fileChangeDebounceInterval = 500 * time.Millisecond

// opTimeout bounds every synchronous tree/status pass in the update loop.
const opTimeout = 5 * time.Second

// Options configures the application model.
type Options struct {
	Root        string
	Config      tree.Config
	Provider    git.ProviderFunc
	Diagnostics diag.Source
	Persist     bool // save toggles and root on quit
}

// Model is the root application model.
type Model struct {
	panel treepanel.Model
	cache *git.RootCache
	keys  KeyMap

	width  int
	height int
	ready  bool

	showHelp bool
	branch   string
	isRepo   bool
	selected string // last opened file, shown in the status bar

	persist bool

	watcher            *fsnotify.Watcher
	pendingFileChanges map[string]fsnotify.Op
	debouncing         bool
}

// New creates the application model rooted at opts.Root.
func New(opts Options) (Model, error) {
	t, err := tree.New(opts.Root, opts.Config)
	if err != nil {
		return Model{}, err
	}

	cache := git.NewRootCache(opts.Provider)
	t.SetStatusCache(cache)
	if opts.Diagnostics != nil {
		t.SetDiagnostics(opts.Diagnostics)
	}

	// Best effort: without a watcher the tree still refreshes on R and on
	// the git tick.
	watcher, _ := fsnotify.NewWatcher()

	panel := treepanel.New(t)
	panel = panel.Focus()

	return Model{
		panel:              panel,
		cache:              cache,
		keys:               DefaultKeyMap(),
		persist:            opts.Persist,
		watcher:            watcher,
		pendingFileChanges: make(map[string]fsnotify.Op),
	}, nil
}

// Init initializes the application.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{gitTick()}

	if m.watcher != nil {
		m.addWatchRecursive(m.panel.Tree().Root)
		cmds = append(cmds, m.watchFilesCmd())
	}

	return tea.Batch(cmds...)
}

// addWatchRecursive adds watches for a directory and its subdirectories
func (m Model) addWatchRecursive(root string) {
	if m.watcher == nil {
		return
	}

	skipDirs := map[string]bool{
		".git":         true,
		"node_modules": true,
		"vendor":       true,
		".venv":        true,
		"__pycache__":  true,
		".cache":       true,
		"dist":         true,
		"build":        true,
	}

	filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // Skip errors
		}
		if !info.IsDir() {
			return nil
		}

		name := info.Name()
		if skipDirs[name] {
			return filepath.SkipDir
		}
		// Skip hidden directories (except the root itself)
		if path != root && strings.HasPrefix(name, ".") {
			return filepath.SkipDir
		}

		m.watcher.Add(path)
		return nil
	})

	// Note: we don't watch .git to avoid lock file churn. Index changes
	// are picked up by the periodic git tick instead.
}

// watchFilesCmd returns a command that blocks until the next watcher event.
func (m Model) watchFilesCmd() tea.Cmd {
	return func() tea.Msg {
		if m.watcher == nil {
			return nil
		}
		for {
			select {
			case event, ok := <-m.watcher.Events:
				if !ok {
					return nil
				}
				return FileChangeMsg{Path: event.Name, Op: event.Op}
			case <-m.watcher.Errors:
				continue
			}
		}
	}
}

// gitTick returns a command that sends a gitTickMsg after the tick interval
func gitTick() tea.Cmd {
	return tea.Tick(gitTickInterval, func(time.Time) tea.Msg {
		return gitTickMsg{}
	})
}

// scheduleFileChangeDebounce schedules processing of pending file changes
func (m *Model) scheduleFileChangeDebounce() tea.Cmd {
	if m.debouncing {
		return nil
	}
	m.debouncing = true
	return tea.Tick(fileChangeDebounceInterval, func(time.Time) tea.Msg {
		return fileChangeDebounceMsg{}
	})
}

// refreshOverlays re-queries git status and diagnostics for the current
// structure and re-derives the panel rows. Runs synchronously in the
// update loop: the tree is single-threaded by design.
func (m *Model) refreshOverlays() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	t := m.panel.Tree()
	m.cache.Invalidate()
	_ = t.UpdateStatus(ctx)
	t.UpdateDiagnostics()

	m.branch, m.isRepo = m.cache.BranchFor(ctx, t.Root)
	m.reproject()
}

// reconcile runs a structural refresh over the open subtrees, then the
// overlay passes.
func (m *Model) reconcile() {
	ctx, cancel := context.WithTimeout(context.Background(), opTimeout)
	defer cancel()

	_, _ = m.panel.Tree().Refresh(ctx)
	m.branch, m.isRepo = m.cache.BranchFor(ctx, m.panel.Tree().Root)
	m.reproject()
}

// reproject re-derives the panel rows, unless the panel is hidden behind
// the help overlay; then the tree is marked not loaded so the next
// display rebuilds instead of trusting a stale incremental state.
func (m *Model) reproject() {
	if m.showHelp {
		m.panel.Tree().Loaded = false
		return
	}
	m.panel.Reload()
}

// reloadIfStale rebuilds the panel rows when a refresh happened while the
// panel was hidden.
func (m *Model) reloadIfStale() {
	if !m.panel.Tree().Loaded {
		m.panel.Reload()
	}
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		wasReady := m.ready
		m.ready = true
		m.panel = m.panel.SetSize(msg.Width, msg.Height-1)
		if !wasReady {
			m.refreshOverlays()
		}
		return m, nil

	case gitTickMsg:
		// Without a watcher the tick is the only change detector: re-list
		// when the root's mtime moved out from under us.
		if m.watcher == nil && m.panel.Tree().RootModified() {
			m.reconcile()
		} else {
			m.refreshOverlays()
		}
		return m, gitTick()

	case FileChangeMsg:
		// Always rearm the watcher first.
		cmds = append(cmds, m.watchFilesCmd())
		if msg.Path == "" {
			return m, tea.Batch(cmds...)
		}

		// Newly created directories need their own watch.
		if msg.Op&fsnotify.Create != 0 && m.watcher != nil {
			if info, err := os.Stat(msg.Path); err == nil && info.IsDir() {
				name := filepath.Base(msg.Path)
				if !strings.HasPrefix(name, ".") && name != "node_modules" && name != "vendor" {
					m.watcher.Add(msg.Path)
				}
			}
		}

		m.pendingFileChanges[msg.Path] = msg.Op
		if cmd := m.scheduleFileChangeDebounce(); cmd != nil {
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case fileChangeDebounceMsg:
		m.debouncing = false
		if len(m.pendingFileChanges) == 0 {
			return m, nil
		}
		m.pendingFileChanges = make(map[string]fsnotify.Op)
		m.reconcile()
		return m, nil

	case treepanel.SelectMsg:
		m.selected = msg.Path
		return m, nil

	case treepanel.RootChangedMsg:
		if m.watcher != nil {
			m.addWatchRecursive(msg.Path)
		}
		m.refreshOverlays()
		return m, nil

	case tea.KeyMsg:
		// The filter input owns the keyboard while active.
		if m.panel.Searching() {
			break
		}

		switch {
		case key.Matches(msg, m.keys.Quit):
			m.saveState()
			if m.watcher != nil {
				m.watcher.Close()
			}
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			if !m.showHelp {
				m.reloadIfStale()
			}
			return m, nil
		}

		if m.showHelp {
			m.showHelp = false
			m.reloadIfStale()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.panel, cmd = m.panel.Update(msg)
	if cmd != nil {
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

// View renders the application.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return lipgloss.JoinVertical(lipgloss.Left, m.panel.View(), m.renderStatusBar())
}

// renderStatusBar renders the bottom status line: branch, last opened
// file, active toggles, version.
func (m Model) renderStatusBar() string {
	var left string
	if m.isRepo && m.branch != "" {
		left = theme.Branch.Render(" " + m.branch)
	} else {
		left = theme.Muted.Render(pathutil.HomeShorten(m.panel.Tree().Root))
	}
	if m.selected != "" {
		if rel, ok := pathutil.Rel(m.panel.Tree().Root, m.selected); ok {
			left += theme.Muted.Render(" │ " + filepath.Join(rel...))
		}
	}

	cfg := m.panel.Tree().Config()
	var toggles []string
	if cfg.ShowHidden {
		toggles = append(toggles, "hidden")
	}
	if cfg.ShowIgnored {
		toggles = append(toggles, "ignored")
	}
	right := ""
	if len(toggles) > 0 {
		right = theme.Muted.Render("[" + strings.Join(toggles, " ") + "] ")
	}
	right += theme.Muted.Render("? help │ " + Version)

	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	return left + strings.Repeat(" ", gap) + right
}

func (m Model) renderHelp() string {
	lines := []string{
		"arbor — directory tree panel",
		"",
		"  ↑/k ↓/j      move",
		"  J/K          next/previous sibling",
		"  h/←          close, then ascend",
		"  l/→/enter    open directory / select file",
		"  space/o      toggle directory",
		"  -            re-root one level up",
		"  c            re-root at directory under cursor",
		"  .            toggle dotfiles",
		"  I            toggle gitignored entries",
		"  R            refresh from disk",
		"  /            filter (esc clears)",
		"  g/G          first/last row",
		"  ?            toggle this help",
		"  q            quit",
	}
	box := theme.Header.Render(strings.Join(lines, "\n"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// saveState persists the toggles and root. Best-effort.
func (m Model) saveState() {
	if !m.persist {
		return
	}
	cfg := m.panel.Tree().Config()
	_ = state.Save(state.State{
		ShowHidden:  cfg.ShowHidden,
		ShowIgnored: cfg.ShowIgnored,
		GroupDirs:   cfg.GroupDirs,
		DirsFirst:   cfg.DirsFirst,
		LastRoot:    m.panel.Tree().Root,
	})
}

// Panel exposes the tree panel, for tests.
func (m Model) Panel() treepanel.Model {
	return m.panel
}
