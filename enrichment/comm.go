package enrichment

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/procfs"
)

type commEntry struct {
	name string
	ts   time.Time
}

// CommCache resolves process names through procfs. Names are kept for a
// while as pids tend to show up on several resources. We could consider
// using sync.Map, but it doesn't really fit our use case...
type CommCache struct {
	sync.Mutex

	fs    procfs.FS
	ttl   time.Duration
	cache map[uint32]commEntry
}

// NewCommCache looks up names on the procfs mounted at mountPoint. A ttl of 0
// disables caching altogether.
func NewCommCache(mountPoint string, ttl time.Duration) (*CommCache, error) {
	fs, err := procfs.NewFS(mountPoint)
	if err != nil {
		return nil, fmt.Errorf("couldn't initialise the procfs filesystem: %w", err)
	}

	return &CommCache{fs: fs, ttl: ttl, cache: map[uint32]commEntry{}}, nil
}

// Comm returns the name of process pid.
func (c *CommCache) Comm(pid uint32) (string, error) {
	now := time.Now()

	c.Lock()
	entry, ok := c.cache[pid]
	c.Unlock()

	if ok && now.Sub(entry.ts) < c.ttl {
		return entry.name, nil
	}

	proc, err := c.fs.Proc(int(pid))
	if err != nil {
		return "", fmt.Errorf("couldn't find process %d: %w", pid, err)
	}

	name, err := proc.Comm()
	if err != nil {
		return "", fmt.Errorf("couldn't get the name of process %d: %w", pid, err)
	}

	if c.ttl > 0 {
		c.Lock()
		c.cache[pid] = commEntry{name: name, ts: now}
		c.Unlock()
	}

	return name, nil
}

// Prune drops expired names and returns how many were dropped.
func (c *CommCache) Prune() int {
	now := time.Now()

	c.Lock()
	defer c.Unlock()

	n := 0
	for pid, entry := range c.cache {
		if now.Sub(entry.ts) >= c.ttl {
			delete(c.cache, pid)
			n++
		}
	}

	if n > 0 {
		slog.Debug("pruned process names", "n", n, "left", len(c.cache))
	}
	return n
}

// Len returns the number of cached names.
func (c *CommCache) Len() int {
	c.Lock()
	defer c.Unlock()
	return len(c.cache)
}
