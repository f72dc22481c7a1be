package registry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feckmell/instanceregistry/domain"
)

func TestChangeLog_AppendAndSnapshotOrder(t *testing.T) {
	now := time.Unix(0, 0)
	log := newChangeLog()
	log.Append(domain.InstanceInfo{ID: "1", ActionType: domain.ActionAdded}, now)
	log.Append(domain.InstanceInfo{ID: "1", ActionType: domain.ActionDeleted}, now)

	snap := log.Snapshot()
	assert.Len(t, snap, 2)
	assert.Equal(t, domain.ActionAdded, snap[0].ActionType)
	assert.Equal(t, domain.ActionDeleted, snap[1].ActionType)
}

func TestChangeLog_PruneDropsOnlyStaleHead(t *testing.T) {
	now := time.Unix(0, 0)
	log := newChangeLog()
	log.Append(domain.InstanceInfo{ID: "old"}, now)
	log.Append(domain.InstanceInfo{ID: "new"}, now.Add(2*time.Minute))

	dropped := log.Prune(time.Minute, now.Add(2*time.Minute+30*time.Second))
	assert.Equal(t, 1, dropped)
	assert.Equal(t, 1, log.Len())
	assert.Equal(t, "new", log.Snapshot()[0].ID)
}

func TestChangeLog_PruneNoStaleEntries(t *testing.T) {
	now := time.Unix(0, 0)
	log := newChangeLog()
	log.Append(domain.InstanceInfo{ID: "1"}, now)

	assert.Equal(t, 0, log.Prune(time.Minute, now))
	assert.Equal(t, 1, log.Len())
}
