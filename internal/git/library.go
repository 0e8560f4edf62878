package git

import (
	"context"
	"path/filepath"
	"sync"

	gogit "github.com/go-git/go-git/v5"
)

// LibraryProvider implements Provider with go-git, so status works without
// a git binary on PATH.
type LibraryProvider struct {
	root string
	mu   sync.Mutex
}

// NewLibraryProvider creates a go-git backed provider rooted at root.
func NewLibraryProvider(root string) *LibraryProvider {
	return &LibraryProvider{root: root}
}

// Root returns the repository root.
func (p *LibraryProvider) Root() string {
	return p.root
}

// Branch returns the current branch name, or the short hash when detached.
func (p *LibraryProvider) Branch(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	repo, err := gogit.PlainOpen(p.root)
	if err != nil {
		return "", err
	}
	head, err := repo.Head()
	if err != nil {
		return "", err
	}
	if head.Name().IsBranch() {
		return head.Name().Short(), nil
	}
	return "(" + head.Hash().String()[:7] + ")", nil
}

// Status returns the per-path working tree status.
func (p *LibraryProvider) Status(ctx context.Context) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := NewStatus()

	repo, err := gogit.PlainOpen(p.root)
	if err != nil {
		return status, err
	}

	if head, err := repo.Head(); err == nil && head.Name().IsBranch() {
		status.Branch = head.Name().Short()
	}

	wt, err := repo.Worktree()
	if err != nil {
		return status, err
	}
	st, err := wt.Status()
	if err != nil {
		return status, err
	}

	for path, fs := range st {
		path = filepath.Clean(filepath.FromSlash(path))
		status.Files[path] = FileStatus{
			Path:     path,
			Staging:  fromGoGit(fs.Staging),
			Worktree: fromGoGit(fs.Worktree),
		}
	}
	return status, nil
}

// fromGoGit maps go-git status codes onto ours. The code letters coincide,
// but the mapping is explicit so a library change cannot shift meanings
// silently.
func fromGoGit(c gogit.StatusCode) StatusCode {
	switch c {
	case gogit.Unmodified:
		return StatusUnmodified
	case gogit.Modified:
		return StatusModified
	case gogit.Added:
		return StatusAdded
	case gogit.Deleted:
		return StatusDeleted
	case gogit.Renamed:
		return StatusRenamed
	case gogit.Copied:
		return StatusCopied
	case gogit.UpdatedButUnmerged:
		return StatusConflicted
	case gogit.Untracked:
		return StatusUntracked
	default:
		return StatusUnmodified
	}
}
