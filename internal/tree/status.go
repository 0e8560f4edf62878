package tree

import (
	"context"
	"path/filepath"

	"github.com/arbornav/arbor/internal/diag"
	"github.com/arbornav/arbor/internal/git"
	"github.com/arbornav/arbor/internal/pathutil"
)

// UpdateStatus re-annotates every populated node with its git status. The
// walk recurses into collapsed subtrees too: the overlay must already be
// correct for whatever the user expands next. Directory rows show the
// worst status among the files strictly beneath them.
func (t *Tree) UpdateStatus(ctx context.Context) error {
	_, err := t.updateStatus(ctx)
	return err
}

// updateStatus additionally reports whether any annotation moved, so a
// caller can skip a redraw on a quiet pass.
func (t *Tree) updateStatus(ctx context.Context) (bool, error) {
	if t.status == nil {
		return false, nil
	}
	changed, err := t.updateStatusEntries(ctx, t.Entries, t.Root)
	if changed {
		t.bump()
	}
	return changed, err
}

// updateStatusEntries annotates one entry slice. dir is the directory the
// entries live in; each subtree resolves its own repository root through
// the cache, so nested repositories annotate correctly. A provider error
// leaves its own subtree as it was and the walk carries on, so one broken
// nested repository cannot stale its siblings; the first error is still
// reported.
func (t *Tree) updateStatusEntries(ctx context.Context, entries []*Node, dir string) (bool, error) {
	st, root, err := t.status.StatusFor(ctx, dir)
	if err != nil {
		return false, err
	}

	changed := false
	var firstErr error
	for _, n := range entries {
		// Directories aggregate from the overlay map, not from populated
		// children: the worst file may live in a subtree never expanded.
		code := fileStatus(st, root, n.Path)
		if n.IsDir() {
			code = dirStatus(st, root, n.Path)
		}
		if n.Status != code {
			n.Status = code
			changed = true
		}

		if n.IsDir() && n.Populated {
			childChanged, err := t.updateStatusEntries(ctx, n.Entries, n.Path)
			changed = changed || childChanged
			if err != nil && firstErr == nil {
				firstErr = err
			}
		}
	}
	return changed, firstErr
}

func fileStatus(st *git.Status, root, path string) git.StatusCode {
	if st == nil {
		return git.StatusUnmodified
	}
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return git.StatusUnmodified
	}
	if fs, ok := st.Files[rel]; ok {
		return fs.Code()
	}
	return git.StatusUnmodified
}

func dirStatus(st *git.Status, root, dir string) git.StatusCode {
	if st == nil {
		return git.StatusUnmodified
	}
	worst := git.StatusUnmodified
	for rel, fs := range st.Files {
		if pathutil.Within(dir, filepath.Join(root, rel)) {
			worst = git.Worse(worst, fs.Code())
		}
	}
	return worst
}

// UpdateDiagnostics re-annotates the populated tree from the diagnostics
// source and reports whether any severity moved. A directory's severity
// is the maximum among its descendants.
func (t *Tree) UpdateDiagnostics() bool {
	if t.diags == nil {
		return false
	}
	_, changed := updateDiagEntries(t.Entries, t.diags)
	if changed {
		t.bump()
	}
	return changed
}

func updateDiagEntries(entries []*Node, src diag.Source) (diag.Severity, bool) {
	worst := diag.SeverityNone
	changed := false
	for _, n := range entries {
		sev := src.Severity(n.Path)
		if n.IsDir() && n.Populated {
			childWorst, childChanged := updateDiagEntries(n.Entries, src)
			sev = diag.Max(sev, childWorst)
			changed = changed || childChanged
		}
		if n.Severity != sev {
			n.Severity = sev
			changed = true
		}
		worst = diag.Max(worst, sev)
	}
	return worst, changed
}
