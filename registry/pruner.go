package registry

import (
	"context"
	"time"

	"github.com/go-kit/log/level"
)

// RunChangeLogPruner blocks, dropping change-log entries older than
// cfg.RetentionTimeInDeltaQueue on cfg.DeltaRetentionPruneInterval, until
// ctx is done.
func (r *Registry) RunChangeLogPruner(ctx context.Context) {
	interval := r.cfg.DeltaRetentionPruneInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			dropped := r.changes.Prune(r.cfg.RetentionTimeInDeltaQueue, r.clock())
			if dropped > 0 {
				level.Debug(r.logger).Log("msg", "pruned change log", "dropped", dropped)
			}
		}
	}
}
