package registry

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
)

// RunEvictionSweeper blocks, cancelling expired leases on cfg.EvictionInterval
// until ctx is done. Each sweep is skipped entirely while self-preservation
// has disabled expiration.
func (r *Registry) RunEvictionSweeper(ctx context.Context) {
	interval := r.cfg.EvictionInterval
	if interval <= 0 {
		interval = 60 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.evictOnce()
		}
	}
}

func (r *Registry) evictOnce() {
	if !r.leaseExpirationEnabled() {
		level.Debug(r.logger).Log("msg", "eviction disabled by self-preservation, skipping sweep")
		return
	}

	now := r.clock()
	var victims []struct{ appName, id string }
	r.apps.Range(func(key, value any) bool {
		appName := key.(string)
		apps := value.(*appLeaseMap)
		for _, lease := range apps.all() {
			if lease.IsExpired(now) {
				victims = append(victims, struct{ appName, id string }{appName, lease.Holder.ID})
			}
		}
		return true
	})

	for _, v := range victims {
		if r.Cancel(v.appName, v.id, false) {
			level.Info(r.logger).Log("msg", "evicted expired lease", "app", v.appName, "id", v.id)
		}
	}
}
