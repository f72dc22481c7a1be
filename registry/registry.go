// Package registry implements the in-memory service registry core: the
// two-level application/instance lease map, its mutators, the eviction
// sweeper, the change-log pruner, and the read views built on top of them.
package registry

import (
	"sync"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/feckmell/instanceregistry/domain"
	"github.com/feckmell/instanceregistry/interfaces"
)

const (
	recentRegisteredCapacity = 1000
	recentCancelledCapacity  = 1000
)

// Registry is the registry core. All exported methods are safe for
// concurrent use.
//
// The locking discipline is deliberately asymmetric: the single-instance
// mutators (Register, Cancel, StatusUpdate, DeleteStatusOverride) take the
// READ side of globalLock, so distinct instances can be mutated in
// parallel; GetApplicationDeltasFromMultipleRegions takes the WRITE side,
// so it observes the change log at a point no mutator is concurrently
// appending to it. Renew and the full-snapshot reads take no global lock at
// all, relying on the per-app map's own synchronization.
type Registry struct {
	globalLock sync.RWMutex

	cfg   Config
	clock func() time.Time

	apps   sync.Map // string -> *appLeaseMap
	logger log.Logger

	overrides *overridesMap
	changes   *changeLog

	recentRegistered *activityRing
	recentCancelled  *activityRing

	renewalRate *renewalRateMeter

	rateMu                        sync.Mutex
	expectedNumberOfRenewsPerMin  int64
	numberOfRenewsPerMinThreshold int64

	cache   interfaces.ResponseCache
	asg     interfaces.ASGOracle
	remotes map[string]interfaces.RemoteRegionRegistry
}

// New constructs a Registry. cache and asg may be nil-free stand-ins (see
// adapters/) when a caller has no real backend to wire up; remotes may be
// empty for a single-region deployment.
func New(cfg Config, cache interfaces.ResponseCache, asg interfaces.ASGOracle, remotes map[string]interfaces.RemoteRegionRegistry, logger log.Logger) *Registry {
	if remotes == nil {
		remotes = map[string]interfaces.RemoteRegionRegistry{}
	}
	logger = log.WithPrefix(logger, "component", "Registry")
	return &Registry{
		cfg:              cfg,
		clock:            time.Now,
		logger:           logger,
		overrides:        newOverridesMap(),
		changes:          newChangeLog(),
		recentRegistered: newActivityRing(recentRegisteredCapacity),
		recentCancelled:  newActivityRing(recentCancelledCapacity),
		renewalRate:      newRenewalRateMeter(time.Minute, time.Now),
		cache:            cache,
		asg:              asg,
		remotes:          remotes,
	}
}

func (r *Registry) appMap(appName string, createIfAbsent bool) *appLeaseMap {
	if v, ok := r.apps.Load(appName); ok {
		return v.(*appLeaseMap)
	}
	if !createIfAbsent {
		return nil
	}
	m := newAppLeaseMap()
	actual, _ := r.apps.LoadOrStore(appName, m)
	return actual.(*appLeaseMap)
}

func (r *Registry) invalidateCache(appName, vip, secureVip string) {
	if r.cache != nil {
		r.cache.Invalidate(appName, vip, secureVip)
	}
}

// adjustExpectedRenews bumps the expected-renews-per-minute counter and
// recomputes its derived threshold, both under the dedicated rate lock so
// they never observe each other half-updated.
func (r *Registry) adjustExpectedRenews(delta int64) {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()
	r.expectedNumberOfRenewsPerMin += delta
	if r.expectedNumberOfRenewsPerMin < 0 {
		r.expectedNumberOfRenewsPerMin = 0
	}
	r.numberOfRenewsPerMinThreshold = r.cfg.renewsPerMinThreshold(r.expectedNumberOfRenewsPerMin)
}

func (r *Registry) renewsPerMinThreshold() int64 {
	r.rateMu.Lock()
	defer r.rateMu.Unlock()
	return r.numberOfRenewsPerMinThreshold
}

// Register upserts the lease for (info.AppName, info.ID). isReplication
// marks a call arriving via peer replication rather than directly from the
// client, which changes how the status arbiter weighs the server's own
// existing opinion.
func (r *Registry) Register(info domain.InstanceInfo, leaseDurationSec int, isReplication bool) {
	r.globalLock.RLock()
	defer r.globalLock.RUnlock()

	now := r.clock()
	apps := r.appMap(info.AppName, true)

	existing := apps.get(info.ID)
	if existing != nil {
		if existing.Holder.LastDirtyTimestamp > info.LastDirtyTimestamp {
			info.LastDirtyTimestamp = existing.Holder.LastDirtyTimestamp
		}
	} else {
		r.adjustExpectedRenews(2)
	}

	durationMs := int64(leaseDurationSec) * 1000
	if durationMs <= 0 {
		durationMs = r.cfg.DefaultLeaseDuration.Milliseconds()
	}
	lease := NewLease(info, durationMs, now)
	if existing != nil && existing.ServiceUpTimestamp != 0 {
		lease.ServiceUpTimestamp = existing.ServiceUpTimestamp
	}

	r.recentRegistered.add(activityEntry{Timestamp: nowMs(now), Label: info.AppName + "(" + info.ID + ")"})

	if info.OverriddenStatus != domain.StatusUnknown && info.OverriddenStatus != "" {
		if _, ok := r.overrides.Get(info.ID); !ok {
			r.overrides.Put(info.ID, info.OverriddenStatus)
		}
	}
	if override, ok := r.overrides.Get(info.ID); ok {
		lease.Holder.OverriddenStatus = override
	}

	resolved := getOverriddenInstanceStatus(lease.Holder, existing, isReplication, r.arbiterDeps())
	lease.Holder.Status = resolved
	if resolved == domain.StatusUp {
		lease.ServiceUp(now)
	}

	lease.Holder.ActionType = domain.ActionAdded
	lease.Holder.LastUpdatedTimestamp = nowMs(now)
	apps.put(info.ID, lease)

	r.changes.Append(lease.Holder, now)
	r.invalidateCache(info.AppName, info.VIPAddress, info.SecureVIPAddress)

	level.Debug(r.logger).Log("msg", "registered instance", "app", info.AppName, "id", info.ID, "status", resolved)
}

func (r *Registry) arbiterDeps() arbiterDeps {
	return arbiterDeps{
		override: r.overrides.Get,
		asg:      r.asg.IsASGEnabled,
	}
}

// Renew extends the lease for (appName, id). It returns false when the
// lease is absent or when the arbitrated status resolves to UNKNOWN,
// signalling the caller that it must re-register.
func (r *Registry) Renew(appName, id string, isReplication bool) bool {
	apps := r.appMap(appName, false)
	if apps == nil {
		return false
	}
	lease := apps.get(id)
	if lease == nil {
		return false
	}

	now := r.clock()
	resolved := getOverriddenInstanceStatus(lease.Holder, lease, isReplication, r.arbiterDeps())
	if resolved == domain.StatusUnknown {
		return false
	}
	if lease.Holder.Status != resolved {
		lease.Holder.Status = resolved
	}
	r.renewalRate.Increment()
	lease.Renew(now)
	return true
}

// Cancel removes the lease for (appName, id), returning false if it was
// already absent.
func (r *Registry) Cancel(appName, id string, isReplication bool) bool {
	r.globalLock.RLock()
	defer r.globalLock.RUnlock()

	now := r.clock()
	apps := r.appMap(appName, false)
	if apps == nil {
		return false
	}
	lease := apps.remove(id)
	r.recentCancelled.add(activityEntry{Timestamp: nowMs(now), Label: appName + "(" + id + ")"})
	r.overrides.Delete(id)
	if lease == nil {
		return false
	}

	lease.Cancel(now)
	lease.Holder.ActionType = domain.ActionDeleted
	lease.Holder.LastUpdatedTimestamp = nowMs(now)
	r.changes.Append(lease.Holder, now)
	r.invalidateCache(appName, lease.Holder.VIPAddress, lease.Holder.SecureVIPAddress)
	return true
}

// StatusUpdate installs an operator-imposed status override for (appName,
// id) and renews the lease. Returns false if the lease is absent.
func (r *Registry) StatusUpdate(appName, id string, newStatus domain.InstanceStatus, lastDirtyTimestamp int64, isReplication bool) bool {
	r.globalLock.RLock()
	defer r.globalLock.RUnlock()

	now := r.clock()
	apps := r.appMap(appName, false)
	if apps == nil {
		return false
	}
	lease := apps.get(id)
	if lease == nil {
		return false
	}

	lease.Renew(now)
	r.overrides.Put(id, newStatus)
	lease.Holder.OverriddenStatus = newStatus

	if lastDirtyTimestamp > lease.Holder.LastDirtyTimestamp {
		// The caller already carries a newer version: adopt it verbatim.
		lease.Holder.LastDirtyTimestamp = lastDirtyTimestamp
	} else {
		// Otherwise this status change is itself the newer event.
		lease.Holder.LastDirtyTimestamp = nowMs(now)
	}
	lease.Holder.Status = newStatus

	lease.Holder.ActionType = domain.ActionModified
	lease.Holder.LastUpdatedTimestamp = nowMs(now)
	r.changes.Append(lease.Holder, now)
	r.invalidateCache(appName, lease.Holder.VIPAddress, lease.Holder.SecureVIPAddress)
	return true
}

// DeleteStatusOverride removes any operator override for (appName, id) and
// adopts newStatus as the effective status. Returns false if the lease is
// absent.
func (r *Registry) DeleteStatusOverride(appName, id string, newStatus domain.InstanceStatus, lastDirtyTimestamp int64, isReplication bool) bool {
	r.globalLock.RLock()
	defer r.globalLock.RUnlock()

	now := r.clock()
	apps := r.appMap(appName, false)
	if apps == nil {
		return false
	}
	lease := apps.get(id)
	if lease == nil {
		return false
	}

	lease.Renew(now)
	r.overrides.Delete(id)
	lease.Holder.OverriddenStatus = domain.StatusUnknown

	if lastDirtyTimestamp > lease.Holder.LastDirtyTimestamp {
		lease.Holder.LastDirtyTimestamp = lastDirtyTimestamp
	} else {
		lease.Holder.LastDirtyTimestamp = nowMs(now)
	}
	lease.Holder.Status = newStatus

	lease.Holder.ActionType = domain.ActionModified
	lease.Holder.LastUpdatedTimestamp = nowMs(now)
	r.changes.Append(lease.Holder, now)
	r.invalidateCache(appName, lease.Holder.VIPAddress, lease.Holder.SecureVIPAddress)
	return true
}

// Clear drops every lease, override, and change-log entry. It exists for
// tests and for operator-triggered full resets; it is not part of the
// mutation contract any client can reach.
func (r *Registry) Clear() {
	r.globalLock.Lock()
	defer r.globalLock.Unlock()

	r.apps.Range(func(key, _ any) bool {
		r.apps.Delete(key)
		return true
	})
	r.changes = newChangeLog()
	r.overrides.Close()
	r.overrides = newOverridesMap()
	r.recentRegistered.clear()
	r.recentCancelled.clear()
	r.rateMu.Lock()
	r.expectedNumberOfRenewsPerMin = 0
	r.numberOfRenewsPerMinThreshold = 0
	r.rateMu.Unlock()
}

// RenewsLastMin reports the renewal count observed in the last complete
// one-minute window.
func (r *Registry) RenewsLastMin() int64 {
	return r.renewalRate.Count()
}

// RecentlyRegistered returns the recent-registration activity ring,
// newest-first.
func (r *Registry) RecentlyRegistered() []activityEntry {
	return r.recentRegistered.snapshot()
}

// RecentlyCancelled returns the recent-cancellation activity ring,
// newest-first.
func (r *Registry) RecentlyCancelled() []activityEntry {
	return r.recentCancelled.snapshot()
}

// leaseExpirationEnabled is the self-preservation predicate: eviction stays
// enabled only while the observed renewal rate meets or exceeds the
// expected threshold.
func (r *Registry) leaseExpirationEnabled() bool {
	return r.renewalRate.Count() >= r.renewsPerMinThreshold()
}
