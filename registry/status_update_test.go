package registry

import (
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feckmell/instanceregistry/domain"
)

// Scenario 2: register, override to UP, delete override with a new status —
// the override map must end up empty and the instance carries the new
// status.
func TestRegistry_StatusUpdateThenDeleteOverride(t *testing.T) {
	now := time.Unix(0, 0)
	reg := New(DefaultConfig(), &fakeCache{}, &fakeASG{}, nil, log.NewNopLogger())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1"}, 30, false)
	require.True(t, reg.StatusUpdate("A", "1", domain.StatusUp, 0, false))

	_, ok := reg.overrides.Get("1")
	assert.True(t, ok)

	require.True(t, reg.DeleteStatusOverride("A", "1", domain.StatusOutOfService, 0, false))

	_, ok = reg.overrides.Get("1")
	assert.False(t, ok)

	inst := reg.GetInstanceByAppAndId("A", "1", false)
	require.NotNil(t, inst)
	assert.Equal(t, domain.StatusOutOfService, inst.Status)
	assert.Equal(t, domain.StatusUnknown, inst.OverriddenStatus)
}

func TestRegistry_StatusUpdateOnAbsentLeaseFails(t *testing.T) {
	reg := New(DefaultConfig(), &fakeCache{}, &fakeASG{}, nil, log.NewNopLogger())
	assert.False(t, reg.StatusUpdate("A", "missing", domain.StatusUp, 0, false))
}

func TestRegistry_CancelOnAbsentLeaseFails(t *testing.T) {
	reg := New(DefaultConfig(), &fakeCache{}, &fakeASG{}, nil, log.NewNopLogger())
	assert.False(t, reg.Cancel("A", "missing", false))
}

// Scenario 5: register then cancel within retention window — the delta
// read contains both the ADDED and DELETED records, in that order.
func TestRegistry_DeltaContainsAddedThenDeleted(t *testing.T) {
	now := time.Unix(0, 0)
	reg := New(DefaultConfig(), &fakeCache{}, &fakeASG{}, nil, log.NewNopLogger())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1"}, 30, false)
	reg.Cancel("A", "1", false)

	delta := reg.GetApplicationDeltasFromMultipleRegions(nil)
	app := delta.ByName("A")
	require.NotNil(t, app)
	require.Len(t, app.Instances, 2)
	assert.Equal(t, domain.ActionAdded, app.Instances[0].ActionType)
	assert.Equal(t, domain.ActionDeleted, app.Instances[1].ActionType)
}

func TestRegistry_EvictionCancelsExpiredLeasesWhenEnabled(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := DefaultConfig()
	cfg.RenewalPercentThreshold = 0
	reg := New(cfg, &fakeCache{}, &fakeASG{}, nil, log.NewNopLogger())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1"}, 30, false)

	now = now.Add(90 * time.Second)
	reg.evictOnce()

	apps := reg.appMap("A", false)
	assert.Equal(t, 0, apps.len())
}
