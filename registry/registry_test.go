package registry

import (
	"strconv"
	"testing"
	"time"

	"github.com/go-kit/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feckmell/instanceregistry/domain"
	"github.com/feckmell/instanceregistry/interfaces"
)

type fakeRemoteRegistry struct {
	app   *domain.Application
	apps  *domain.Applications
	delta *domain.Applications
}

func (f *fakeRemoteRegistry) GetApplication(string) *domain.Application { return f.app }
func (f *fakeRemoteRegistry) GetApplications() *domain.Applications      { return f.apps }
func (f *fakeRemoteRegistry) GetApplicationDeltas() *domain.Applications { return f.delta }

type fakeCache struct {
	invalidations []fakeInvalidation
	deltaVersion  int64
}

type fakeInvalidation struct {
	appName, vip, secureVip string
}

func (f *fakeCache) Invalidate(appName, vip, secureVip string) {
	f.invalidations = append(f.invalidations, fakeInvalidation{appName, vip, secureVip})
}
func (f *fakeCache) GetVersionDelta() int64 { f.deltaVersion++; return f.deltaVersion }
func (f *fakeCache) GetVersionDeltaWithRegions() int64 {
	f.deltaVersion++
	return f.deltaVersion
}

type fakeASG struct{ enabled map[string]bool }

func (f *fakeASG) IsASGEnabled(name string) bool {
	if f.enabled == nil {
		return true
	}
	v, ok := f.enabled[name]
	if !ok {
		return true
	}
	return v
}

func newTestRegistry(t *testing.T, cfg Config) (*Registry, *fakeCache) {
	t.Helper()
	cache := &fakeCache{}
	reg := New(cfg, cache, &fakeASG{}, nil, log.NewNopLogger())
	return reg, cache
}

func setClock(r *Registry, now *time.Time) {
	r.clock = func() time.Time { return *now }
}

// P1: dirty timestamp monotonicity across register/statusUpdate.
func TestRegistry_DirtyMonotonicity(t *testing.T) {
	now := time.Unix(0, 0)
	reg, _ := newTestRegistry(t, DefaultConfig())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1", LastDirtyTimestamp: 100}, 30, false)
	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1", LastDirtyTimestamp: 50}, 30, false)

	inst := reg.GetInstanceByAppAndId("A", "1", false)
	require.NotNil(t, inst)
	assert.Equal(t, int64(100), inst.LastDirtyTimestamp)
}

// P2: lease lifecycle - register, renew within window, expire beyond it.
func TestRegistry_LeaseLifecycle(t *testing.T) {
	now := time.Unix(0, 0)
	reg, _ := newTestRegistry(t, DefaultConfig())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1"}, 30, false)

	now = now.Add(25 * time.Second)
	assert.True(t, reg.Renew("A", "1", false))

	apps := reg.appMap("A", false)
	lease := apps.get("1")
	require.NotNil(t, lease)

	now = now.Add(40 * time.Second)
	assert.False(t, lease.IsExpired(now))

	now = now.Add(40 * time.Second)
	assert.True(t, lease.IsExpired(now))
}

// P3: self-preservation suppresses eviction below threshold.
func TestRegistry_SelfPreservationBlocksEviction(t *testing.T) {
	now := time.Unix(0, 0)
	reg, _ := newTestRegistry(t, DefaultConfig())
	setClock(reg, &now)

	for i := 0; i < 100; i++ {
		reg.Register(domain.InstanceInfo{AppName: "A", ID: strconv.Itoa(i)}, 30, false)
	}

	threshold := reg.renewsPerMinThreshold()
	assert.Equal(t, int64(170), threshold)

	now = now.Add(2 * time.Minute)
	reg.evictOnce()

	apps := reg.appMap("A", false)
	assert.Equal(t, 100, apps.len(), "self-preservation must prevent any cancellation")
}

// P4: delta retention window.
func TestRegistry_DeltaRetention(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := DefaultConfig()
	cfg.RetentionTimeInDeltaQueue = 3 * time.Minute
	reg, _ := newTestRegistry(t, cfg)
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1"}, 30, false)

	now = now.Add(2 * time.Minute)
	delta := reg.GetApplicationDeltasFromMultipleRegions(nil)
	assert.NotNil(t, delta.ByName("A"))

	reg.changes.Prune(cfg.RetentionTimeInDeltaQueue, now.Add(10*time.Minute))
	delta = reg.GetApplicationDeltasFromMultipleRegions(nil)
	assert.Nil(t, delta.ByName("A"))
}

// P5: cache coherence - exactly one invalidate call per successful mutator.
func TestRegistry_CacheCoherence(t *testing.T) {
	now := time.Unix(0, 0)
	reg, cache := newTestRegistry(t, DefaultConfig())
	setClock(reg, &now)

	reg.Register(domain.InstanceInfo{AppName: "A", ID: "1", VIPAddress: "vipA"}, 30, false)
	assert.Len(t, cache.invalidations, 1)
	assert.Equal(t, fakeInvalidation{"A", "vipA", ""}, cache.invalidations[0])

	reg.Cancel("A", "1", false)
	assert.Len(t, cache.invalidations, 2)
}

// P7: whitelist filtering for cross-region union views.
func TestRegistry_WhitelistFiltering(t *testing.T) {
	now := time.Unix(0, 0)
	cfg := DefaultConfig()
	cfg.RemoteRegionAppWhitelist = map[string]map[string]struct{}{
		"eu": {"allowed": {}},
	}
	cache := &fakeCache{}
	remote := &fakeRemoteRegistry{
		apps: &domain.Applications{Applications: []*domain.Application{
			{Name: "allowed", Instances: []domain.InstanceInfo{{ID: "r1"}}},
			{Name: "blocked", Instances: []domain.InstanceInfo{{ID: "r2"}}},
		}},
	}
	reg := New(cfg, cache, &fakeASG{}, map[string]interfaces.RemoteRegionRegistry{"eu": remote}, log.NewNopLogger())
	setClock(reg, &now)

	out := reg.GetApplicationsFromMultipleRegions([]string{"eu"})
	assert.NotNil(t, out.ByName("allowed"))
	assert.Nil(t, out.ByName("blocked"))
}

// Scenario 6: GetApplication falls back to remote region, honoring
// DisableTransparentFallbackToOtherRegion.
func TestRegistry_RemoteFallback(t *testing.T) {
	remote := &fakeRemoteRegistry{app: &domain.Application{Name: "B", Instances: []domain.InstanceInfo{{ID: "1"}}}}
	cfg := DefaultConfig()
	reg := New(cfg, &fakeCache{}, &fakeASG{}, map[string]interfaces.RemoteRegionRegistry{"eu": remote}, log.NewNopLogger())

	got := reg.GetApplication("B", true)
	require.NotNil(t, got)
	assert.Equal(t, "B", got.Name)

	cfg.DisableTransparentFallbackToOtherRegion = true
	reg2 := New(cfg, &fakeCache{}, &fakeASG{}, map[string]interfaces.RemoteRegionRegistry{"eu": remote}, log.NewNopLogger())
	assert.Nil(t, reg2.GetApplication("B", true))
}

