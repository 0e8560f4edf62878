package git

import (
	"context"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
)

// ShellProvider implements Provider by shelling out to the git binary.
type ShellProvider struct {
	root string
	mu   sync.Mutex // Prevents concurrent git operations
}

// NewShellProvider creates a shell-based provider rooted at root.
func NewShellProvider(root string) *ShellProvider {
	return &ShellProvider{root: root}
}

// Root returns the repository root.
func (p *ShellProvider) Root() string {
	return p.root
}

// Branch returns the current branch name.
func (p *ShellProvider) Branch(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.branchInternal(ctx)
}

// branchInternal returns the branch without locking (for internal use).
func (p *ShellProvider) branchInternal(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "git", "--no-optional-locks", "branch", "--show-current")
	cmd.Dir = p.root
	out, err := cmd.Output()
	if err != nil {
		// Try getting HEAD ref for detached state
		cmd = exec.CommandContext(ctx, "git", "--no-optional-locks", "rev-parse", "--short", "HEAD")
		cmd.Dir = p.root
		out, err = cmd.Output()
		if err != nil {
			return "", err
		}
		return "(" + strings.TrimSpace(string(out)) + ")", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// Status returns the per-path working tree status.
func (p *ShellProvider) Status(ctx context.Context) (*Status, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status := NewStatus()

	// Use internal version since we already hold the lock.
	if branch, err := p.branchInternal(ctx); err == nil {
		status.Branch = branch
	}

	// --no-optional-locks avoids taking index.lock for a read-only query.
	cmd := exec.CommandContext(ctx, "git", "--no-optional-locks", "status", "--porcelain=v1", "-uall")
	cmd.Dir = p.root
	out, err := cmd.Output()
	if err != nil {
		return status, err
	}

	parsePorcelain(string(out), status)
	return status, nil
}

// parsePorcelain fills status from `git status --porcelain=v1` output.
func parsePorcelain(out string, status *Status) {
	for _, line := range strings.Split(out, "\n") {
		if len(line) < 4 {
			continue
		}

		staging := StatusCode(line[0])
		worktree := StatusCode(line[1])
		path := strings.TrimSpace(line[3:])

		// Renamed files are reported as "old -> new"; the new path is the
		// one that exists on disk.
		if i := strings.Index(path, " -> "); i >= 0 {
			path = path[i+4:]
		}

		path = strings.Trim(path, `"`)
		if !filepath.IsAbs(path) {
			path = filepath.Clean(filepath.FromSlash(path))
		}

		status.Files[path] = FileStatus{
			Path:     path,
			Staging:  staging,
			Worktree: worktree,
		}
	}
}
