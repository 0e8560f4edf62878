package git

import (
	"testing"

	gogit "github.com/go-git/go-git/v5"
	"github.com/stretchr/testify/assert"
)

func TestFromGoGitAgreesWithPorcelain(t *testing.T) {
	// Both providers must land on the same code for the same condition, so
	// a tree annotated by one renders identically under the other.
	cases := map[gogit.StatusCode]StatusCode{
		gogit.Unmodified:         StatusUnmodified,
		gogit.Modified:           StatusModified,
		gogit.Added:              StatusAdded,
		gogit.Deleted:            StatusDeleted,
		gogit.Renamed:            StatusRenamed,
		gogit.Copied:             StatusCopied,
		gogit.UpdatedButUnmerged: StatusConflicted,
		gogit.Untracked:          StatusUntracked,
	}
	for in, want := range cases {
		assert.Equal(t, want, fromGoGit(in))
	}

	t.Run("porcelain letters parse to the same codes", func(t *testing.T) {
		status := NewStatus()
		parsePorcelain(" M modified.go\nA  added.go\n?? untracked.go\n", status)

		assert.Equal(t, StatusModified, status.Files["modified.go"].Code())
		assert.Equal(t, StatusAdded, status.Files["added.go"].Code())
		assert.Equal(t, StatusUntracked, status.Files["untracked.go"].Code())
	})
}
