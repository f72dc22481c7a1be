package registry

import (
	"github.com/feckmell/instanceregistry/domain"
)

// decorate builds the read-facing copy of info: a fresh LeaseInfo summary
// plus the coordinating-server flag. The point reads and the snapshot reads
// hand back decorated copies, never the stored InstanceInfo. The delta read
// returns the change-log copies as they were recorded: they are not
// decorated and carry no fresh LeaseInfo summary.
func decorate(info domain.InstanceInfo, lease *Lease, renewalIntervalSec, durationSec int) domain.InstanceInfo {
	out := info.Clone()
	out.LeaseInfo = &domain.LeaseInfo{
		RegistrationTimestamp: lease.RegistrationTimestamp,
		LastRenewalTimestamp:  lease.LastRenewalTimestamp,
		ServiceUpTimestamp:    lease.ServiceUpTimestamp,
		EvictionTimestamp:     lease.EvictionTimestamp,
		RenewalIntervalSec:    renewalIntervalSec,
		DurationSec:           durationSec,
	}
	out.IsCoordinatingDiscoveryServer = true
	return out
}

func leaseDurationSec(lease *Lease) int {
	return int(lease.DurationMs / 1000)
}

// GetInstanceByAppAndId returns the decorated instance (appName, id), or
// nil if absent or, when skipExpired is true, expired.
func (r *Registry) GetInstanceByAppAndId(appName, id string, skipExpired bool) *domain.InstanceInfo {
	apps := r.appMap(appName, false)
	if apps == nil {
		return nil
	}
	lease := apps.get(id)
	if lease == nil {
		return nil
	}
	if skipExpired && lease.IsExpired(r.clock()) {
		return nil
	}
	out := decorate(lease.Holder, lease, leaseDurationSec(lease), leaseDurationSec(lease))
	return &out
}

// GetInstancesById scans every application for instances with the given
// id, skipping expired leases when skipExpired is true.
func (r *Registry) GetInstancesById(id string, skipExpired bool) []domain.InstanceInfo {
	now := r.clock()
	var out []domain.InstanceInfo
	r.apps.Range(func(_, value any) bool {
		apps := value.(*appLeaseMap)
		if lease := apps.get(id); lease != nil {
			if !skipExpired || !lease.IsExpired(now) {
				out = append(out, decorate(lease.Holder, lease, leaseDurationSec(lease), leaseDurationSec(lease)))
			}
		}
		return true
	})
	return out
}

// snapshotApplication builds a decorated Application from the local leases
// under appName, skipping expired ones when skipExpired is true. Returns
// nil if the application has no leases at all.
func (r *Registry) snapshotApplication(appName string, skipExpired bool) *domain.Application {
	apps := r.appMap(appName, false)
	if apps == nil {
		return nil
	}
	leases := apps.all()
	if len(leases) == 0 {
		return nil
	}
	now := r.clock()
	app := &domain.Application{Name: appName}
	for _, lease := range leases {
		if skipExpired && lease.IsExpired(now) {
			continue
		}
		app.AddInstance(decorate(lease.Holder, lease, leaseDurationSec(lease), leaseDurationSec(lease)))
	}
	if len(app.Instances) == 0 && skipExpired {
		return nil
	}
	return app
}

// GetApplication returns the named application. When the local registry has
// no such application and includeRemote is true (and the server is not
// configured to disable cross-region fallback), remote regions are
// consulted in map-iteration order and the first non-nil hit wins.
func (r *Registry) GetApplication(appName string, includeRemote bool) *domain.Application {
	if app := r.snapshotApplication(appName, true); app != nil {
		return app
	}
	if !includeRemote || r.cfg.DisableTransparentFallbackToOtherRegion {
		return nil
	}
	for _, remote := range r.remotes {
		if app := remote.GetApplication(appName); app != nil {
			return app
		}
	}
	return nil
}

// snapshotLocal builds the full local Applications snapshot.
func (r *Registry) snapshotLocal() *domain.Applications {
	out := domain.NewApplications()
	r.apps.Range(func(key, value any) bool {
		appName := key.(string)
		if app := r.snapshotApplication(appName, true); app != nil {
			out.AddApplication(app)
		} else {
			out.AddApplication(&domain.Application{Name: appName})
		}
		return true
	})
	out.AppsHashCode = out.ReconcileHashCode()
	return out
}

// mergeRemote folds remoteApps into running, filtered by the resolved
// whitelist for region, creating application entries on demand.
func mergeRemote(running *domain.Applications, region string, remoteApps *domain.Applications, whitelist map[string]struct{}) {
	if remoteApps == nil {
		return
	}
	for _, remoteApp := range remoteApps.Applications {
		if whitelist != nil {
			if _, ok := whitelist[remoteApp.Name]; !ok {
				continue
			}
		}
		app := running.ByName(remoteApp.Name)
		if app == nil {
			app = &domain.Application{Name: remoteApp.Name}
			running.AddApplication(app)
		}
		for _, inst := range remoteApp.Instances {
			app.AddInstance(inst)
		}
	}
}

// GetApplicationsFromMultipleRegions returns the full local snapshot merged
// with the filtered application sets of every named region. The reconcile
// hash is recomputed over the merged result.
func (r *Registry) GetApplicationsFromMultipleRegions(regions []string) *domain.Applications {
	out := r.snapshotLocal()
	if r.cache != nil {
		out.Version = r.cache.GetVersionDeltaWithRegions()
	}
	for _, region := range regions {
		remote, ok := r.remotes[region]
		if !ok {
			continue
		}
		mergeRemote(out, region, remote.GetApplications(), r.cfg.whitelistFor(region))
	}
	out.AppsHashCode = out.ReconcileHashCode()
	return out
}

// GetApplicationDeltasFromMultipleRegions takes the registry's write lock to
// snapshot the change log consistently, builds an Applications from it,
// then merges in the filtered remote deltas for each region. Its
// AppsHashCode is computed from the full current snapshot over the same
// region set, not from the delta itself, so clients can reconcile the
// applied delta against the same fingerprint a full fetch would produce.
func (r *Registry) GetApplicationDeltasFromMultipleRegions(regions []string) *domain.Applications {
	r.globalLock.Lock()
	entries := r.changes.Snapshot()
	r.globalLock.Unlock()

	out := domain.NewApplications()
	for _, entry := range entries {
		app := out.ByName(entry.AppName)
		if app == nil {
			app = &domain.Application{Name: entry.AppName}
			out.AddApplication(app)
		}
		app.AddInstance(entry)
	}
	if r.cache != nil {
		out.Version = r.cache.GetVersionDeltaWithRegions()
	}

	for _, region := range regions {
		remote, ok := r.remotes[region]
		if !ok {
			continue
		}
		mergeRemote(out, region, remote.GetApplicationDeltas(), r.cfg.whitelistFor(region))
	}

	out.AppsHashCode = r.snapshotWithRegionsHash(regions)
	return out
}

// snapshotWithRegionsHash recomputes the reconcile hash over the full
// current union snapshot for the same region set a delta read was asked
// for.
func (r *Registry) snapshotWithRegionsHash(regions []string) string {
	full := r.GetApplicationsFromMultipleRegions(regions)
	return full.ReconcileHashCode()
}
