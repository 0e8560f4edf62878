package tree

import (
	"strings"

	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/pathutil"
)

// Kind tags what a node points at on disk. Symlinks are resolved one level
// so the tree knows whether following them yields a file or a directory.
type Kind int

const (
	KindFile Kind = iota
	KindDir
	KindSymlinkFile
	KindSymlinkDir
)

// Node is one entry in the tree. Entries are owned exclusively by their
// parent; a node appears under exactly one parent for the lifetime of a
// snapshot.
type Node struct {
	Name   string
	Path   string // absolute, always a strict extension of Parent.Path
	Kind   Kind
	LinkTo string // symlink target, empty otherwise

	Parent  *Node
	Entries []*Node

	// Open is only ever true for directories.
	Open bool
	// Populated records whether Entries reflects a directory listing.
	// An empty populated directory is distinct from a never-listed one.
	Populated bool
	// HasChildren hints that an unpopulated directory is non-empty, so
	// the renderer can draw an expander without another stat round-trip.
	HasChildren bool
	// Grouped marks a directory whose sole entry is a subdirectory; the
	// chain is displayed as one "a/b/c" row. Following the chain walks
	// ownership edges downward, so it cannot cycle.
	Grouped bool
	// Ignored nodes stay in Entries but drop out of the projection
	// unless the show-ignored toggle is on.
	Ignored bool

	Status   git.StatusCode
	Severity diag.Severity

	visible    []*Node
	visibleGen uint64
}

// IsDir reports whether the node behaves as a directory in the tree.
func (n *Node) IsDir() bool {
	return n.Kind == KindDir || n.Kind == KindSymlinkDir
}

// IsHidden reports whether the node is a dotfile.
func (n *Node) IsHidden() bool {
	return len(n.Name) > 0 && n.Name[0] == '.'
}

// LastGroupNode follows a grouped chain to its end: the directory the user
// is conceptually looking at when the cursor sits on an "a/b/c" row.
// Returns the node itself when ungrouped.
func (n *Node) LastGroupNode() *Node {
	cur := n
	for cur.Grouped && len(cur.Entries) == 1 && cur.Entries[0].Kind == KindDir {
		cur = cur.Entries[0]
	}
	return cur
}

// GroupLabel returns the display label: the node name, or the joined names
// of the grouped chain.
func (n *Node) GroupLabel() string {
	if !n.Grouped {
		return n.Name
	}
	var names []string
	cur := n
	for {
		names = append(names, cur.Name)
		if !cur.Grouped || len(cur.Entries) != 1 || cur.Entries[0].Kind != KindDir {
			break
		}
		cur = cur.Entries[0]
	}
	return strings.Join(names, "/")
}

// inGroupChain reports whether n is a non-head member of a grouped chain,
// i.e. it shares a display row with its parent.
func (n *Node) inGroupChain() bool {
	return n.Parent != nil && n.Parent.Grouped &&
		len(n.Parent.Entries) == 1 && n.Kind == KindDir
}

// displayNode walks up to the node that owns the display row n appears on.
func (n *Node) displayNode() *Node {
	cur := n
	for cur.inGroupChain() {
		cur = cur.Parent
	}
	return cur
}

// FindByPath searches the populated subtree for an exact path match.
func (n *Node) FindByPath(path string) *Node {
	if pathutil.Equal(n.Path, path) {
		return n
	}
	if !pathutil.Within(n.Path, path) {
		return nil
	}
	for _, child := range n.Entries {
		if found := child.FindByPath(path); found != nil {
			return found
		}
	}
	return nil
}
