package git

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		code StatusCode
		str  string
	}{
		{StatusUnmodified, " "},
		{StatusModified, "M"},
		{StatusAdded, "A"},
		{StatusDeleted, "D"},
		{StatusRenamed, "R"},
		{StatusCopied, "C"},
		{StatusConflicted, "U"},
		{StatusUntracked, "?"},
		{StatusIgnored, "!"},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			assert.Equal(t, tt.str, tt.code.String())
		})
	}
}

func TestWorse(t *testing.T) {
	t.Run("conflicts dominate everything", func(t *testing.T) {
		assert.Equal(t, StatusConflicted, Worse(StatusConflicted, StatusModified))
		assert.Equal(t, StatusConflicted, Worse(StatusDeleted, StatusConflicted))
	})

	t.Run("modified beats added and untracked", func(t *testing.T) {
		assert.Equal(t, StatusModified, Worse(StatusModified, StatusAdded))
		assert.Equal(t, StatusModified, Worse(StatusUntracked, StatusModified))
	})

	t.Run("anything beats unmodified", func(t *testing.T) {
		assert.Equal(t, StatusIgnored, Worse(StatusUnmodified, StatusIgnored))
	})
}

func TestFileStatusCode(t *testing.T) {
	t.Run("picks worst of staging and worktree", func(t *testing.T) {
		fs := FileStatus{Staging: StatusAdded, Worktree: StatusModified}
		assert.Equal(t, StatusModified, fs.Code())
	})

	t.Run("zero values count as unmodified", func(t *testing.T) {
		fs := FileStatus{}
		assert.Equal(t, StatusUnmodified, fs.Code())
		assert.False(t, fs.HasChanges())
	})
}

func TestParsePorcelain(t *testing.T) {
	out := "" +
		" M modified.go\n" +
		"A  added.go\n" +
		"?? untracked.txt\n" +
		"R  old.go -> new.go\n" +
		"UU conflicted.go\n"

	status := NewStatus()
	parsePorcelain(out, status)

	require.Len(t, status.Files, 5)

	assert.Equal(t, StatusModified, status.Files["modified.go"].Worktree)
	assert.Equal(t, StatusAdded, status.Files["added.go"].Staging)
	assert.Equal(t, StatusUntracked, status.Files["untracked.txt"].Code())

	// Renamed entries keep only the new path.
	_, hasOld := status.Files["old.go"]
	assert.False(t, hasOld)
	assert.Equal(t, StatusRenamed, status.Files["new.go"].Staging)

	assert.Equal(t, StatusConflicted, status.Files["conflicted.go"].Code())
}

// stubProvider returns a fixed status and counts queries.
type stubProvider struct {
	root    string
	status  *Status
	queries int
}

func (s *stubProvider) Root() string { return s.root }

func (s *stubProvider) Branch(ctx context.Context) (string, error) { return "main", nil }

func (s *stubProvider) Status(ctx context.Context) (*Status, error) {
	s.queries++
	return s.status, nil
}

func TestRootCache(t *testing.T) {
	tmp := t.TempDir()
	repo := filepath.Join(tmp, "proj")
	require.NoError(t, os.MkdirAll(filepath.Join(repo, ".git"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(repo, "src", "deep"), 0755))

	stub := &stubProvider{status: NewStatus()}
	cache := NewRootCache(func(root string) Provider {
		stub.root = root
		return stub
	})

	t.Run("finds root from nested directory", func(t *testing.T) {
		root, ok := cache.FindRoot(filepath.Join(repo, "src", "deep"))
		assert.True(t, ok)
		assert.Equal(t, repo, root)
	})

	t.Run("caches negative lookups", func(t *testing.T) {
		_, ok := cache.FindRoot(tmp)
		assert.False(t, ok)
		_, ok = cache.FindRoot(tmp)
		assert.False(t, ok)
	})

	t.Run("queries status once per root", func(t *testing.T) {
		ctx := context.Background()
		_, root, err := cache.StatusFor(ctx, filepath.Join(repo, "src"))
		require.NoError(t, err)
		assert.Equal(t, repo, root)

		_, _, err = cache.StatusFor(ctx, filepath.Join(repo, "src", "deep"))
		require.NoError(t, err)
		assert.Equal(t, 1, stub.queries)
	})

	t.Run("Invalidate forces a requery", func(t *testing.T) {
		cache.Invalidate()
		_, _, err := cache.StatusFor(context.Background(), repo)
		require.NoError(t, err)
		assert.Equal(t, 2, stub.queries)
	})

	t.Run("ReloadRoots drops lookups too", func(t *testing.T) {
		cache.ReloadRoots()
		root, ok := cache.FindRoot(repo)
		assert.True(t, ok)
		assert.Equal(t, repo, root)
	})

	t.Run("outside any repo yields no status", func(t *testing.T) {
		st, root, err := cache.StatusFor(context.Background(), tmp)
		require.NoError(t, err)
		assert.Nil(t, st)
		assert.Empty(t, root)
	})
}
