package git

import (
	"context"
	"os"
	"path/filepath"
	"sync"
)

// RootCache resolves directories to their repository roots and caches one
// status snapshot per root. Entries never expire on their own: a stale
// status is tolerable, a wrong root after a directory move is not, so
// invalidation is explicit via ReloadRoots.
type RootCache struct {
	mu          sync.Mutex
	newProvider ProviderFunc
	roots       map[string]string  // directory -> repo root ("" = not in a repo)
	statuses    map[string]*Status // repo root -> last snapshot
	providers   map[string]Provider
}

// NewRootCache creates a cache that opens repositories with newProvider.
func NewRootCache(newProvider ProviderFunc) *RootCache {
	return &RootCache{
		newProvider: newProvider,
		roots:       make(map[string]string),
		statuses:    make(map[string]*Status),
		providers:   make(map[string]Provider),
	}
}

// FindRoot walks up from dir looking for a .git directory. The result,
// including "not a repository", is cached for dir and every directory
// visited on the way up.
func (c *RootCache) FindRoot(dir string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.findRootLocked(dir)
}

func (c *RootCache) findRootLocked(dir string) (string, bool) {
	dir = filepath.Clean(dir)
	if root, ok := c.roots[dir]; ok {
		return root, root != ""
	}

	var visited []string
	cur := dir
	root := ""
	for {
		visited = append(visited, cur)
		if info, err := os.Stat(filepath.Join(cur, ".git")); err == nil && info.IsDir() {
			root = cur
			break
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			break
		}
		if known, ok := c.roots[parent]; ok {
			root = known
			break
		}
		cur = parent
	}

	for _, d := range visited {
		c.roots[d] = root
	}
	return root, root != ""
}

// StatusFor returns the status snapshot covering dir and the repository
// root it belongs to. The snapshot is queried once per root and reused
// until Invalidate or ReloadRoots.
func (c *RootCache) StatusFor(ctx context.Context, dir string) (*Status, string, error) {
	c.mu.Lock()
	root, ok := c.findRootLocked(dir)
	if !ok {
		c.mu.Unlock()
		return nil, "", nil
	}
	if st, ok := c.statuses[root]; ok {
		c.mu.Unlock()
		return st, root, nil
	}
	provider, ok := c.providers[root]
	if !ok {
		provider = c.newProvider(root)
		c.providers[root] = provider
	}
	c.mu.Unlock()

	// Query outside the lock: status may shell out or read the index.
	st, err := provider.Status(ctx)
	if err != nil {
		return nil, root, err
	}

	c.mu.Lock()
	c.statuses[root] = st
	c.mu.Unlock()
	return st, root, nil
}

// BranchFor returns the current branch of the repository containing dir,
// or false when dir is not inside one.
func (c *RootCache) BranchFor(ctx context.Context, dir string) (string, bool) {
	c.mu.Lock()
	root, ok := c.findRootLocked(dir)
	if !ok {
		c.mu.Unlock()
		return "", false
	}
	provider, ok := c.providers[root]
	if !ok {
		provider = c.newProvider(root)
		c.providers[root] = provider
	}
	c.mu.Unlock()

	branch, err := provider.Branch(ctx)
	if err != nil {
		return "", false
	}
	return branch, true
}

// Invalidate drops cached status snapshots but keeps root lookups, for
// refreshes where the working tree changed but no directory moved.
func (c *RootCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = make(map[string]*Status)
}

// ReloadRoots drops every cached lookup. Call before a full status refresh
// when the repository layout itself may have changed (branch switch,
// directory move, repo init).
func (c *RootCache) ReloadRoots() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.roots = make(map[string]string)
	c.statuses = make(map[string]*Status)
	c.providers = make(map[string]Provider)
}
