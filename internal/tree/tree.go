// Package tree implements the in-memory file-tree model behind the panel:
// lazy population, reconciliation against fresh directory listings, the
// git-status and diagnostics overlays, and the bidirectional mapping
// between nodes and 1-based display lines.
//
// The tree is single-threaded by design: every operation runs to
// completion under one logical caller, so no internal locking exists.
package tree

import (
	"fmt"
	"os"
	"time"

	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/pathutil"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Config carries the display toggles and ordering policy. It is read
// per-call and only replaced wholesale through SetConfig, which also
// invalidates the visibility memo.
type Config struct {
	ShowHidden  bool // include dotfiles in the projection
	ShowIgnored bool // include gitignored entries in the projection
	DirsFirst   bool // directories before files; otherwise one name sort
	GroupDirs   bool // collapse single-child directory chains into one row
}

// DefaultConfig matches the out-of-the-box panel behavior.
func DefaultConfig() Config {
	return Config{
		DirsFirst: true,
		GroupDirs: true,
	}
}

// Tree is an explicit, caller-owned tree instance. Multiple independent
// trees may coexist; nothing here is process-global except the git root
// cache the caller chooses to share.
type Tree struct {
	Root         string
	Entries      []*Node
	LastModified time.Time
	// Loaded tracks whether the current structure has been projected at
	// least once. A hidden panel clears it so the next display rebuilds
	// instead of trusting a stale incremental state.
	Loaded bool

	cfg    Config
	gen    uint64
	ignore gitignore.Matcher
	status *git.RootCache
	diags  diag.Source

	rootVisible    []*Node
	rootVisibleGen uint64
}

// New creates a tree rooted at root and populates the top level.
func New(root string, cfg Config) (*Tree, error) {
	root = pathutil.Normalize(root)
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: not a directory", root)
	}

	t := &Tree{
		Root:         root,
		cfg:          cfg,
		gen:          1,
		LastModified: info.ModTime(),
	}
	t.loadIgnoreMatcher()
	if err := t.Populate(nil); err != nil {
		return nil, err
	}
	return t, nil
}

// Config returns the current configuration.
func (t *Tree) Config() Config {
	return t.cfg
}

// SetConfig replaces the configuration and invalidates the projection.
// Ordering and grouping changes take effect on the next refresh.
func (t *Tree) SetConfig(cfg Config) {
	t.cfg = cfg
	t.bump()
}

// SetStatusCache attaches the shared git root cache. A nil cache disables
// the status overlay.
func (t *Tree) SetStatusCache(c *git.RootCache) {
	t.status = c
}

// SetDiagnostics attaches the diagnostics source. A nil source disables
// the severity overlay.
func (t *Tree) SetDiagnostics(src diag.Source) {
	t.diags = src
}

// ReloadRoots drops the status cache's repository-root lookups, for
// explicit refreshes where the repository layout itself may have changed
// (repo init, branch switch, directory move). A nil cache is a no-op.
func (t *Tree) ReloadRoots() {
	if t.status != nil {
		t.status.ReloadRoots()
	}
}

// RootModified reports whether the root directory's mtime moved since the
// last refresh snapshot: an out-of-band change detector for hosts running
// without a filesystem watcher.
func (t *Tree) RootModified() bool {
	info, err := os.Stat(t.Root)
	if err != nil {
		return false
	}
	return !info.ModTime().Equal(t.LastModified)
}

// ChangeRoot re-roots the tree at dir, discarding all structure.
func (t *Tree) ChangeRoot(dir string) error {
	dir = pathutil.Normalize(dir)
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s: not a directory", dir)
	}

	t.Root = dir
	t.Entries = nil
	t.LastModified = info.ModTime()
	t.Loaded = false
	t.loadIgnoreMatcher()
	t.bump()
	return t.Populate(nil)
}

// bump invalidates every memoized visibility slice.
func (t *Tree) bump() {
	t.gen++
}

// loadIgnoreMatcher compiles the .gitignore patterns under the root.
// Missing or unreadable patterns simply disable ignore marking.
func (t *Tree) loadIgnoreMatcher() {
	t.ignore = nil
	patterns, err := gitignore.ReadPatterns(osfs.New(t.Root), nil)
	if err != nil || len(patterns) == 0 {
		return
	}
	t.ignore = gitignore.NewMatcher(patterns)
}

// isIgnored checks a path against the root's gitignore patterns.
func (t *Tree) isIgnored(path string, isDir bool) bool {
	if t.ignore == nil {
		return false
	}
	rel, ok := pathutil.Rel(t.Root, path)
	if !ok || len(rel) == 0 {
		return false
	}
	return t.ignore.Match(rel, isDir)
}

// entriesOf returns the owned entry slice for n, or the top level when n
// is nil.
func (t *Tree) entriesOf(n *Node) []*Node {
	if n == nil {
		return t.Entries
	}
	return n.Entries
}
