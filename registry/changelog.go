package registry

import (
	"sync"
	"time"

	"github.com/feckmell/instanceregistry/domain"
)

// changeLogEntry is one recorded mutation, held only long enough to satisfy
// delta reads from clients that last fetched within retentionMs.
type changeLogEntry struct {
	info       domain.InstanceInfo
	recordedAt int64
}

// changeLog is the append-only list of recent ADDED/MODIFIED/DELETED
// mutations backing delta reads. Entries are appended at the tail and
// pruned from the head once older than the configured retention; callers
// never remove from the middle.
type changeLog struct {
	mu      sync.Mutex
	entries []changeLogEntry
}

func newChangeLog() *changeLog {
	return &changeLog{}
}

// Append records info's current ActionType in the log.
func (c *changeLog) Append(info domain.InstanceInfo, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = append(c.entries, changeLogEntry{info: info.Clone(), recordedAt: nowMs(now)})
}

// Snapshot returns a copy of every entry currently retained, oldest first.
func (c *changeLog) Snapshot() []domain.InstanceInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.InstanceInfo, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.info
	}
	return out
}

// Prune drops every entry older than retention, measured against now, by
// advancing the head of the slice past them. Returns the number dropped.
func (c *changeLog) Prune(retention time.Duration, now time.Time) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	cutoff := nowMs(now) - retention.Milliseconds()
	i := 0
	for i < len(c.entries) && c.entries[i].recordedAt < cutoff {
		i++
	}
	if i == 0 {
		return 0
	}
	remaining := len(c.entries) - i
	copy(c.entries, c.entries[i:])
	c.entries = c.entries[:remaining]
	return i
}

// Len reports how many entries are currently retained.
func (c *changeLog) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
