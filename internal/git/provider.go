package git

import "context"

// Provider answers status queries for a single repository root.
type Provider interface {
	// Root returns the repository root the provider was opened at.
	Root() string

	// Status returns the per-path status of the working tree.
	// Paths in the result are relative to Root.
	Status(ctx context.Context) (*Status, error)

	// Branch returns the current branch name.
	Branch(ctx context.Context) (string, error)
}

// ProviderFunc constructs a Provider for a repository root.
type ProviderFunc func(root string) Provider

// Status represents the working tree status of one repository.
type Status struct {
	Branch string
	Files  map[string]FileStatus
}

// FileStatus represents the status of a single file.
type FileStatus struct {
	Path     string
	Staging  StatusCode
	Worktree StatusCode
}

// StatusCode represents a git status code.
type StatusCode rune

const (
	StatusUnmodified StatusCode = ' '
	StatusModified   StatusCode = 'M'
	StatusAdded      StatusCode = 'A'
	StatusDeleted    StatusCode = 'D'
	StatusRenamed    StatusCode = 'R'
	StatusCopied     StatusCode = 'C'
	StatusConflicted StatusCode = 'U'
	StatusUntracked  StatusCode = '?'
	StatusIgnored    StatusCode = '!'
)

// String returns the single-character representation.
func (s StatusCode) String() string {
	return string(s)
}

// rank orders codes by how urgently they should be surfaced. A directory
// shows the highest-ranked code among the files beneath it.
func (s StatusCode) rank() int {
	switch s {
	case StatusConflicted:
		return 8
	case StatusDeleted:
		return 7
	case StatusModified:
		return 6
	case StatusRenamed:
		return 5
	case StatusCopied:
		return 4
	case StatusAdded:
		return 3
	case StatusUntracked:
		return 2
	case StatusIgnored:
		return 1
	default:
		return 0
	}
}

// Worse returns the more urgent of two codes.
func Worse(a, b StatusCode) StatusCode {
	if b.rank() > a.rank() {
		return b
	}
	return a
}

// Code collapses the staging/worktree pair into the single code shown on a
// tree row.
func (f FileStatus) Code() StatusCode {
	return Worse(normalize(f.Staging), normalize(f.Worktree))
}

// HasChanges returns true if the file differs from HEAD in any way.
func (f FileStatus) HasChanges() bool {
	return normalize(f.Staging) != StatusUnmodified || normalize(f.Worktree) != StatusUnmodified
}

func normalize(s StatusCode) StatusCode {
	// Porcelain uses space for "unmodified"; go-git uses its own zero value.
	if s == 0 || s == ' ' {
		return StatusUnmodified
	}
	return s
}

// NewStatus creates a new Status with initialized maps.
func NewStatus() *Status {
	return &Status{
		Files: make(map[string]FileStatus),
	}
}
