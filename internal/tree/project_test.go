package tree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisibleEntries(t *testing.T) {
	root := scaffold(t)

	tr, err := New(root, Config{DirsFirst: true})
	require.NoError(t, err)

	t.Run("filters dotfiles and ignored entries", func(t *testing.T) {
		visible := tr.VisibleEntries(nil)
		assert.Equal(t, []string{"src", "main.go"}, names(visible))
	})

	t.Run("filtering is idempotent and memoized", func(t *testing.T) {
		first := tr.VisibleEntries(nil)
		second := tr.VisibleEntries(nil)
		assert.Equal(t, names(first), names(second))
		// Same backing slice: the memo answered, no re-filtering.
		assert.Same(t, &first[0], &second[0])
	})

	t.Run("show-hidden exposes dotfiles", func(t *testing.T) {
		cfg := tr.Config()
		cfg.ShowHidden = true
		tr.SetConfig(cfg)

		assert.Equal(t, []string{"src", ".gitignore", ".hidden", "main.go"}, names(tr.VisibleEntries(nil)))
	})

	t.Run("show-ignored exposes gitignored entries", func(t *testing.T) {
		cfg := tr.Config()
		cfg.ShowHidden = false
		cfg.ShowIgnored = true
		tr.SetConfig(cfg)

		assert.Equal(t, []string{"src", "vendor", "main.go"}, names(tr.VisibleEntries(nil)))
	})
}

func TestRowsAndLines(t *testing.T) {
	root := scaffold(t)

	tr, err := New(root, Config{DirsFirst: true})
	require.NoError(t, err)

	src := tr.Entries[0]
	require.NoError(t, tr.UnrollDir(t.Context(), src))

	// Header, "..", src (open), a.txt, b.txt, main.go
	rows := tr.Rows()
	require.Len(t, rows, 6)

	t.Run("header and up rows", func(t *testing.T) {
		assert.Nil(t, rows[0].Node)
		assert.True(t, rows[1].IsUp)
		assert.Equal(t, "..", rows[1].Label)
	})

	t.Run("depth follows nesting", func(t *testing.T) {
		assert.Equal(t, 0, rows[2].Depth) // src
		assert.Equal(t, 1, rows[3].Depth) // a.txt
		assert.Equal(t, 0, rows[5].Depth) // main.go
	})

	t.Run("node_at_line inverts line_for_node for every row", func(t *testing.T) {
		for i, row := range rows {
			if row.Node == nil {
				continue
			}
			line := i + 1
			got, isUp := tr.NodeAtLine(line)
			assert.False(t, isUp)
			assert.Same(t, row.Node, got)

			backLine, matched := tr.LineForNode(row.Node, false)
			assert.Equal(t, line, backLine)
			assert.Same(t, row.Node, matched)
		}
	})

	t.Run("line 2 is the up marker", func(t *testing.T) {
		node, isUp := tr.NodeAtLine(2)
		assert.Nil(t, node)
		assert.True(t, isUp)
	})

	t.Run("header line has no node", func(t *testing.T) {
		node, isUp := tr.NodeAtLine(1)
		assert.Nil(t, node)
		assert.False(t, isUp)
	})

	t.Run("past the end has no node", func(t *testing.T) {
		node, _ := tr.NodeAtLine(len(rows) + 1)
		assert.Nil(t, node)
	})

	t.Run("exact path equality, never prefix", func(t *testing.T) {
		line, matched := tr.LineForPath(filepath.Join(root, "sr"))
		assert.Zero(t, line)
		assert.Nil(t, matched)
	})

	t.Run("find_parent resolves to the parent row", func(t *testing.T) {
		aTxt := src.Entries[0]
		line, matched := tr.LineForNode(aTxt, true)
		assert.Equal(t, 3, line) // src's row
		assert.Same(t, src, matched)
	})
}

func TestLazyExpandGrowsProjection(t *testing.T) {
	root := scaffold(t)

	tr, err := New(root, Config{DirsFirst: true})
	require.NoError(t, err)

	src := tr.Entries[0]
	require.Empty(t, src.Entries)
	before := tr.VisibleLines()

	require.NoError(t, tr.UnrollDir(t.Context(), src))

	assert.True(t, src.Open)
	assert.False(t, src.HasChildren, "hint cleared once known")
	assert.Equal(t, []string{"a.txt", "b.txt"}, names(src.Entries))
	assert.Equal(t, before+2, tr.VisibleLines())
}

func TestSibling(t *testing.T) {
	root := t.TempDir()
	for _, name := range []string{"one.txt", "two.txt", "three.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(""), 0644))
	}

	tr, err := New(root, Config{})
	require.NoError(t, err)
	require.Len(t, tr.Entries, 3)

	first := tr.Entries[0]
	last := tr.Entries[2]

	t.Run("clamps below the first sibling", func(t *testing.T) {
		assert.Same(t, first, tr.Sibling(first, -5))
	})

	t.Run("clamps past the last sibling", func(t *testing.T) {
		assert.Same(t, last, tr.Sibling(first, +5))
	})

	t.Run("single steps", func(t *testing.T) {
		assert.Same(t, tr.Entries[1], tr.Sibling(first, +1))
		assert.Same(t, tr.Entries[1], tr.Sibling(last, -1))
	})
}

func TestParentNode(t *testing.T) {
	root := scaffold(t)

	tr, err := New(root, Config{DirsFirst: true})
	require.NoError(t, err)

	src := tr.Entries[0]
	require.NoError(t, tr.UnrollDir(t.Context(), src))
	aTxt := src.Entries[0]

	t.Run("child ascends to parent", func(t *testing.T) {
		assert.Same(t, src, tr.ParentNode(aTxt, true))
	})

	t.Run("open directory closes before ascending", func(t *testing.T) {
		require.True(t, src.Open)
		got := tr.ParentNode(src, true)
		assert.Same(t, src, got, "first press stays put")
		assert.False(t, src.Open)

		assert.Nil(t, tr.ParentNode(src, true), "second press leaves the top level")
	})

	t.Run("without should_close it ascends immediately", func(t *testing.T) {
		require.NoError(t, tr.UnrollDir(t.Context(), src))
		require.True(t, src.Open)
		assert.Nil(t, tr.ParentNode(src, false))
		assert.True(t, src.Open)
	})
}

func TestGroupedProjection(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "a", "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a", "b", "f.txt"), []byte(""), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "top.txt"), []byte(""), 0644))

	tr, err := New(root, DefaultConfig())
	require.NoError(t, err)

	a := tr.Entries[0]
	require.NoError(t, tr.UnrollDir(t.Context(), a))

	rows := tr.Rows()
	// Header, "..", a/b (open), f.txt, top.txt
	require.Len(t, rows, 5)
	assert.Equal(t, "a/b", rows[2].Label)
	assert.True(t, rows[2].IsOpen)
	assert.Equal(t, 1, rows[3].Depth)
	assert.Equal(t, "f.txt", rows[3].Label)

	t.Run("chain members match the grouped row", func(t *testing.T) {
		line, matched := tr.LineForPath(filepath.Join(root, "a", "b"))
		assert.Equal(t, 3, line)
		assert.Same(t, a, matched)
	})

	t.Run("sibling navigation from the chain tail", func(t *testing.T) {
		tail := a.LastGroupNode()
		top := tr.Entries[1]
		assert.Same(t, top, tr.Sibling(tail, +1))
	})
}
