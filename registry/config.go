package registry

import "time"

// Config bundles every tunable the registry core consumes. Values mirror
// the options a Eureka-style server exposes; callers populate this from
// environment variables or a config file (see cmd/registryd) and hand it to
// New.
type Config struct {
	// RenewalPercentThreshold is the fraction of expected renews per
	// minute the observed rate must stay at or above for eviction to remain
	// enabled.
	RenewalPercentThreshold float64

	// EvictionInterval is how often the eviction sweeper runs.
	EvictionInterval time.Duration
	// DeltaRetentionPruneInterval is how often the change-log pruner runs.
	DeltaRetentionPruneInterval time.Duration
	// RetentionTimeInDeltaQueue is how long a change-log entry is kept
	// before the pruner drops it.
	RetentionTimeInDeltaQueue time.Duration

	// DefaultLeaseDuration is used for instances that do not specify their
	// own renewal duration.
	DefaultLeaseDuration time.Duration

	// RemoteRegionURLsWithName maps a region name to the URL its
	// registry is reachable at. Only used by cmd/registryd when wiring
	// adapters/httpremote; the core itself takes ready-made
	// interfaces.RemoteRegionRegistry handles.
	RemoteRegionURLsWithName map[string]string
	// RemoteRegionAppWhitelist maps a region name to the set of app names
	// allowed through cross-region union views for that region. The
	// entry keyed "" is the global whitelist, used when a region has no
	// entry of its own. A nil value for a region means "allow all"; a nil
	// global entry likewise means "allow all" when no per-region entry
	// exists either.
	RemoteRegionAppWhitelist map[string]map[string]struct{}
	// DisableTransparentFallbackToOtherRegion, when true, makes
	// GetApplication skip consulting remote regions on a local miss.
	DisableTransparentFallbackToOtherRegion bool
}

// DefaultConfig returns the configuration a standalone, single-region
// server starts with absent any overrides.
func DefaultConfig() Config {
	return Config{
		RenewalPercentThreshold:     0.85,
		EvictionInterval:            60 * time.Second,
		DeltaRetentionPruneInterval: 30 * time.Second,
		RetentionTimeInDeltaQueue:   3 * time.Minute,
		DefaultLeaseDuration:        90 * time.Second,
	}
}

// whitelistFor resolves the effective whitelist for region, falling back to
// the global ("") entry when the region has none of its own. A nil result
// means "allow all".
func (c Config) whitelistFor(region string) map[string]struct{} {
	if wl, ok := c.RemoteRegionAppWhitelist[region]; ok {
		return wl
	}
	return c.RemoteRegionAppWhitelist[""]
}

func (c Config) renewsPerMinThreshold(expectedRenewsPerMin int64) int64 {
	return int64(float64(expectedRenewsPerMin) * c.RenewalPercentThreshold)
}
