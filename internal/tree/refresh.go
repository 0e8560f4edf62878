package tree

import (
	"context"
	"os"

	"github.com/arbornav/arbor/internal/pathutil"
)

// UnrollDir toggles a directory open or closed. A never-populated
// directory is populated first, with a status pass scoped to the new
// subtree so its rows are annotated before they are ever drawn.
func (t *Tree) UnrollDir(ctx context.Context, n *Node) error {
	if n == nil {
		return nil
	}
	last := n.LastGroupNode()
	if !last.IsDir() {
		return nil
	}

	if last.Open {
		last.Open = false
		t.bump()
		return nil
	}

	if !last.Populated {
		if err := t.Populate(last); err != nil {
			return err
		}
		// Population may have collapsed a fresh single-child chain; the
		// open flag belongs on the chain tail.
		last = last.LastGroupNode()
		if t.status != nil {
			// Scoped overlay refresh; stale cache is fine here, the
			// periodic refresh reconciles it.
			_, _ = t.updateStatusEntries(ctx, last.Entries, last.Path)
		}
		if t.diags != nil {
			updateDiagEntries(last.Entries, t.diags)
		}
	} else {
		// The grouping config may have flipped while this directory sat
		// closed; re-evaluate before deciding where the open flag lands.
		t.applyGrouping(last, 0)
		last = last.LastGroupNode()
	}
	last.Open = true
	t.bump()
	return nil
}

// Refresh is the single entry point after external events: it reconciles
// every currently-open directory against the filesystem, then reruns the
// overlays on the final node set. Closed and never-populated subtrees are
// skipped entirely, so cost tracks the expanded-node count. Returns
// whether the structure or overlay changed.
func (t *Tree) Refresh(ctx context.Context) (bool, error) {
	changed, err := t.refreshOpen(nil)
	if err != nil {
		return changed, err
	}

	if info, statErr := os.Stat(t.Root); statErr == nil {
		t.LastModified = info.ModTime()
	}

	// Overlays run strictly after the structural pass: their correctness
	// depends on the final node set. They contribute to changed only when
	// an annotation actually moved, so a quiet pass skips the redraw.
	if t.status != nil {
		t.status.Invalidate()
		statusChanged, err := t.updateStatus(ctx)
		changed = changed || statusChanged
		if err != nil {
			return changed, err
		}
	}
	if t.diags != nil {
		changed = t.UpdateDiagnostics() || changed
	}
	return changed, nil
}

// refreshOpen reconciles n's entries and recurses into open, populated
// directories. Grouped chain members count as open: their listings decide
// the chain label, so they stay honest even while collapsed.
func (t *Tree) refreshOpen(n *Node) (bool, error) {
	if n != nil {
		if !n.Populated {
			return false, nil
		}
		if !n.Open && !n.Grouped {
			return false, nil
		}
	}

	changed, err := t.RefreshEntries(n)
	if err != nil {
		// The directory itself became unreadable or vanished; its own
		// parent's next refresh will drop it.
		return false, nil
	}

	for _, e := range t.entriesOf(n) {
		if !e.IsDir() {
			continue
		}
		childChanged, err := t.refreshOpen(e)
		if err != nil {
			return changed, err
		}
		changed = changed || childChanged
	}
	return changed, nil
}

// ExpandPath opens every ancestor of target inside the root, populating
// lazily along the way, and returns the display line of target's row so a
// viewer can move its cursor there. A path outside the root returns ok ==
// false and mutates nothing.
func (t *Tree) ExpandPath(ctx context.Context, target string) (int, bool) {
	target = pathutil.Normalize(target)
	segs, ok := pathutil.Rel(t.Root, target)
	if !ok || len(segs) == 0 {
		return 0, false
	}

	entries := t.Entries
	for i, seg := range segs {
		var match *Node
		for _, e := range entries {
			if e.Name == seg {
				match = e
				break
			}
		}
		if match == nil {
			return 0, false
		}

		if i == len(segs)-1 {
			line, found := t.LineForPath(match.Path)
			if found == nil {
				return 0, false
			}
			return line, true
		}

		if !match.IsDir() {
			return 0, false
		}
		if !match.Populated {
			if err := t.Populate(match); err != nil {
				return 0, false
			}
			if t.status != nil {
				_, _ = t.updateStatusEntries(ctx, match.Entries, match.Path)
			}
		}
		if !match.Open {
			match.Open = true
			t.bump()
		}
		entries = match.Entries
	}
	return 0, false
}
