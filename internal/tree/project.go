package tree

import (
	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/pathutil"
)

// Row is one line of the visible projection, consumed by the renderer.
type Row struct {
	Depth    int
	Label    string
	Node     *Node // nil for the header and ".." rows
	IsUp     bool
	IsDir    bool
	IsOpen   bool
	Status   git.StatusCode
	Severity diag.Severity
}

// VisibleEntries filters n's entries (the top level when n is nil) down to
// what the projection shows: dotfiles drop out unless ShowHidden, ignored
// entries unless ShowIgnored. The result is memoized against the tree's
// generation counter, so repeated calls during a recursive walk are no-ops.
func (t *Tree) VisibleEntries(n *Node) []*Node {
	if n == nil {
		if t.rootVisibleGen == t.gen && t.rootVisible != nil {
			return t.rootVisible
		}
		t.rootVisible = t.filterVisible(t.Entries)
		t.rootVisibleGen = t.gen
		return t.rootVisible
	}

	if n.visibleGen == t.gen && n.visible != nil {
		return n.visible
	}
	n.visible = t.filterVisible(n.Entries)
	n.visibleGen = t.gen
	return n.visible
}

func (t *Tree) filterVisible(entries []*Node) []*Node {
	visible := make([]*Node, 0, len(entries))
	for _, e := range entries {
		if !t.cfg.ShowHidden && e.IsHidden() {
			continue
		}
		if !t.cfg.ShowIgnored && e.Ignored {
			continue
		}
		visible = append(visible, e)
	}
	return visible
}

// hasUpRow reports whether the projection carries a ".." row, which it
// does whenever the root can still be ascended from.
func (t *Tree) hasUpRow() bool {
	return !pathutil.IsFSRoot(t.Root)
}

// headerLines counts the rows before the first node: the root header plus
// the optional ".." row.
func (t *Tree) headerLines() int {
	if t.hasUpRow() {
		return 2
	}
	return 1
}

// Rows materializes the visible projection in depth-first pre-order. Row
// i corresponds to display line i+1.
func (t *Tree) Rows() []Row {
	rows := []Row{{Label: pathutil.HomeShorten(t.Root), IsDir: true, IsOpen: true}}
	if t.hasUpRow() {
		rows = append(rows, Row{Label: "..", IsUp: true, IsDir: true})
	}
	rows = t.appendRows(rows, t.VisibleEntries(nil), 0)
	t.Loaded = true
	return rows
}

func (t *Tree) appendRows(rows []Row, entries []*Node, depth int) []Row {
	for _, n := range entries {
		last := n.LastGroupNode()
		rows = append(rows, Row{
			Depth:    depth,
			Label:    n.GroupLabel(),
			Node:     n,
			IsDir:    n.IsDir(),
			IsOpen:   last.Open,
			Status:   n.Status,
			Severity: n.Severity,
		})
		if last.IsDir() && last.Open {
			rows = t.appendRows(rows, t.VisibleEntries(last), depth+1)
		}
	}
	return rows
}

// NodeAtLine resolves a 1-based display line to its node. The second
// result is true for the ".." row; both results are zero for the header
// and for lines past the end.
func (t *Tree) NodeAtLine(line int) (*Node, bool) {
	if t.hasUpRow() && line == 2 {
		return nil, true
	}
	if line <= t.headerLines() {
		return nil, false
	}
	n, _ := nodeAtLine(t, t.VisibleEntries(nil), line, t.headerLines())
	return n, false
}

// nodeAtLine threads the running line counter through return values; it
// reports the found node and the last line consumed.
func nodeAtLine(t *Tree, entries []*Node, line, cur int) (*Node, int) {
	for _, n := range entries {
		cur++
		if cur == line {
			return n, cur
		}
		last := n.LastGroupNode()
		if last.IsDir() && last.Open {
			var found *Node
			found, cur = nodeAtLine(t, t.VisibleEntries(last), line, cur)
			if found != nil {
				return found, cur
			}
		}
	}
	return nil, cur
}

// LineForNode returns the display line of target's row, or of the row
// holding target's parent when findParent is set. Matching is by exact
// path equality against every member of a grouped chain. Returns 0 when
// the node is not in the projection.
func (t *Tree) LineForNode(target *Node, findParent bool) (int, *Node) {
	if target == nil {
		return 0, nil
	}
	path := target.Path
	if findParent {
		if target.Parent == nil {
			return 0, nil
		}
		path = target.Parent.Path
	}
	return t.LineForPath(path)
}

// LineForPath locates the row whose node (or grouped chain) matches path
// exactly. Returns the 1-based line and the matched entry, or 0 and nil.
func (t *Tree) LineForPath(path string) (int, *Node) {
	line, node, _ := lineForPath(t, t.VisibleEntries(nil), path, t.headerLines())
	return line, node
}

func lineForPath(t *Tree, entries []*Node, path string, cur int) (int, *Node, int) {
	for _, n := range entries {
		cur++
		for c := n; ; c = c.Entries[0] {
			if pathutil.Equal(c.Path, path) {
				return cur, n, cur
			}
			if !(c.Grouped && len(c.Entries) == 1 && c.Entries[0].Kind == KindDir) {
				break
			}
		}
		last := n.LastGroupNode()
		if last.IsDir() && last.Open {
			// Only descend toward the target; unrelated subtrees cannot
			// contain an exact match.
			if pathutil.Within(last.Path, path) {
				line, node, next := lineForPath(t, t.VisibleEntries(last), path, cur)
				if node != nil {
					return line, node, next
				}
				cur = next
			} else {
				cur += t.visibleCount(last)
			}
		}
	}
	return 0, nil, cur
}

// visibleCount returns how many lines n's open subtree occupies.
func (t *Tree) visibleCount(n *Node) int {
	count := 0
	for _, c := range t.VisibleEntries(n) {
		count++
		last := c.LastGroupNode()
		if last.IsDir() && last.Open {
			count += t.visibleCount(last)
		}
	}
	return count
}

// VisibleLines returns the total line count of the projection, header
// rows included.
func (t *Tree) VisibleLines() int {
	count := t.headerLines()
	for _, n := range t.VisibleEntries(nil) {
		count++
		last := n.LastGroupNode()
		if last.IsDir() && last.Open {
			count += t.visibleCount(last)
		}
	}
	return count
}

// Sibling moves delta positions among the visible siblings of n's display
// row, clamping at both ends instead of wrapping. Top-level entries are
// siblings of each other.
func (t *Tree) Sibling(n *Node, delta int) *Node {
	if n == nil {
		return nil
	}
	head := n.displayNode()
	siblings := t.VisibleEntries(head.Parent)
	idx := -1
	for i, s := range siblings {
		if s == head {
			idx = i
			break
		}
	}
	if idx < 0 {
		return n
	}
	idx += delta
	if idx < 0 {
		idx = 0
	}
	if idx >= len(siblings) {
		idx = len(siblings) - 1
	}
	return siblings[idx]
}

// ParentNode navigates toward n's parent with close-before-ascend
// semantics: an open directory is closed in place first; a second call
// then moves to the parent row. Returns the node whose row the cursor
// should sit on, or nil when already at the top level and closed.
func (t *Tree) ParentNode(n *Node, shouldClose bool) *Node {
	if n == nil {
		return nil
	}
	last := n.LastGroupNode()
	if shouldClose && last.IsDir() && last.Open {
		last.Open = false
		t.bump()
		return n.displayNode()
	}
	parent := n.displayNode().Parent
	if parent == nil {
		return nil
	}
	return parent.displayNode()
}
