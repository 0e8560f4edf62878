package tree

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arbornav/arbor/internal/git"
)

// maxGroupChain caps how far single-child directory chains are collapsed.
// A chain longer than this is drawn ungrouped rather than walked further.
const maxGroupChain = 64

// entryDesc is one directory-listing result before it becomes a Node.
type entryDesc struct {
	name   string
	kind   Kind
	linkTo string
}

// listDir returns descriptors for dir's immediate children. Entries that
// cannot be classified (permission denied, vanished mid-listing) are
// skipped; only a listing that produced nothing at all fails.
func listDir(dir string) ([]entryDesc, error) {
	entries, err := os.ReadDir(dir)
	if err != nil && len(entries) == 0 {
		return nil, err
	}

	descs := make([]entryDesc, 0, len(entries))
	for _, entry := range entries {
		desc, ok := classify(dir, entry)
		if !ok {
			continue
		}
		descs = append(descs, desc)
	}
	return descs, nil
}

// classify resolves an entry's kind, following symlinks one level.
func classify(dir string, entry fs.DirEntry) (entryDesc, bool) {
	desc := entryDesc{name: entry.Name()}

	if entry.Type()&fs.ModeSymlink != 0 {
		path := filepath.Join(dir, entry.Name())
		target, err := os.Readlink(path)
		if err != nil {
			return desc, false
		}
		desc.linkTo = target
		// A broken link still gets a row; it just is not expandable.
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			desc.kind = KindSymlinkDir
		} else {
			desc.kind = KindSymlinkFile
		}
		return desc, true
	}

	if entry.IsDir() {
		desc.kind = KindDir
	} else {
		desc.kind = KindFile
	}
	return desc, true
}

// sortDescs orders a listing per the configured policy.
func sortDescs(descs []entryDesc, cfg Config) {
	isDir := func(d entryDesc) bool { return d.kind == KindDir || d.kind == KindSymlinkDir }
	sort.SliceStable(descs, func(i, j int) bool {
		if cfg.DirsFirst && isDir(descs[i]) != isDir(descs[j]) {
			return isDir(descs[i])
		}
		return strings.ToLower(descs[i].name) < strings.ToLower(descs[j].name)
	})
}

// newNode builds a Node for a listing entry under parentPath.
func (t *Tree) newNode(parent *Node, parentPath string, desc entryDesc) *Node {
	path := filepath.Join(parentPath, desc.name)
	n := &Node{
		Name:   desc.name,
		Path:   path,
		Kind:   desc.kind,
		LinkTo: desc.linkTo,
		Parent: parent,
		Status: git.StatusUnmodified,
	}
	n.Ignored = t.isIgnored(path, n.IsDir())
	if n.Kind == KindDir {
		n.HasChildren = dirNonEmpty(path)
	}
	return n
}

// dirNonEmpty peeks at one directory entry so the renderer can hint an
// expander without a full listing.
func dirNonEmpty(path string) bool {
	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()
	names, _ := f.Readdirnames(1)
	return len(names) > 0
}

// Populate lists the directory behind n (the top level when n is nil) and
// builds its entries. Already-populated nodes are repopulated from
// scratch; use RefreshEntries to reconcile instead.
func (t *Tree) Populate(n *Node) error {
	return t.populate(n, 0)
}

func (t *Tree) populate(n *Node, depth int) error {
	dir := t.Root
	if n != nil {
		dir = n.Path
	}

	descs, err := listDir(dir)
	if err != nil {
		return err
	}
	sortDescs(descs, t.cfg)

	entries := make([]*Node, 0, len(descs))
	for _, desc := range descs {
		entries = append(entries, t.newNode(n, dir, desc))
	}

	if n == nil {
		t.Entries = entries
	} else {
		n.Entries = entries
		n.Populated = true
		n.HasChildren = false // now definitively known
	}
	t.bump()
	t.applyGrouping(n, depth)
	return nil
}

// applyGrouping re-evaluates the grouping of n against the current
// config: it collapses a single-directory chain, or dissolves one when
// GroupDirs was switched off since the node grouped. Only real
// directories group; symlinked directories stay their own row so a link
// loop can never fold into a display cycle.
func (t *Tree) applyGrouping(n *Node, depth int) {
	if n == nil || depth >= maxGroupChain {
		return
	}
	n.Grouped = false
	if !t.cfg.GroupDirs {
		return
	}
	if len(n.Entries) != 1 || n.Entries[0].Kind != KindDir {
		return
	}
	child := n.Entries[0]
	if !child.Populated {
		if err := t.populate(child, depth+1); err != nil {
			return
		}
	}
	n.Grouped = true
}

// RefreshEntries re-lists the directory behind n and reconciles the
// in-memory entries: vanished paths are dropped, new paths inserted at
// their ordered position, and surviving nodes are reused untouched so
// their open state and populated subtrees persist. Returns whether
// anything changed, letting the caller skip a redraw.
func (t *Tree) RefreshEntries(n *Node) (bool, error) {
	dir := t.Root
	if n != nil {
		dir = n.Path
	}

	descs, err := listDir(dir)
	if err != nil {
		return false, err
	}
	sortDescs(descs, t.cfg)

	old := t.entriesOf(n)
	byPath := make(map[string]*Node, len(old))
	for _, e := range old {
		byPath[e.Path] = e
	}

	changed := false
	fresh := make([]*Node, 0, len(descs))
	for _, desc := range descs {
		path := filepath.Join(dir, desc.name)
		if prev, ok := byPath[path]; ok && prev.Kind == desc.kind {
			prev.LinkTo = desc.linkTo
			fresh = append(fresh, prev)
			delete(byPath, path)
			continue
		}
		// New path, or the same name changed kind underneath us.
		fresh = append(fresh, t.newNode(n, dir, desc))
		changed = true
	}
	if len(byPath) > 0 {
		changed = true // something on disk vanished
	}
	if !changed {
		if len(fresh) != len(old) {
			changed = true
		} else {
			for i := range fresh {
				if fresh[i] != old[i] {
					changed = true
					break
				}
			}
		}
	}
	if !changed {
		// No structural change, but the grouping config may have flipped
		// since this directory last grouped.
		if n != nil {
			was := n.Grouped
			t.applyGrouping(n, 0)
			if n.Grouped != was {
				t.bump()
				return true, nil
			}
		}
		return false, nil
	}

	if n == nil {
		t.Entries = fresh
	} else {
		n.Entries = fresh
		n.Populated = true
		n.HasChildren = false
	}
	t.bump()
	t.applyGrouping(n, 0)
	return true, nil
}
