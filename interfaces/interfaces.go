// Package interfaces declares the contracts the registry core consumes
// from its external collaborators. The core depends only on these
// interfaces; concrete implementations live under adapters/.
package interfaces

import "github.com/feckmell/instanceregistry/domain"

// ResponseCache is the write-through cache the core invalidates on every
// mutation and reads version counters from for delta reads.
//
//go:generate moq -stub -out mock/response_cache.go -pkg mock . ResponseCache
type ResponseCache interface {
	// Invalidate drops any cached response keyed on appName, vipAddress or
	// secureVipAddress. Any of vipAddress/secureVipAddress may be empty.
	Invalidate(appName, vipAddress, secureVipAddress string)
	// GetVersionDelta returns a monotonic counter installed into
	// Applications.Version for single-region delta reads.
	GetVersionDelta() int64
	// GetVersionDeltaWithRegions returns a monotonic counter installed into
	// Applications.Version for multi-region delta reads.
	GetVersionDeltaWithRegions() int64
}

// RemoteRegionRegistry is a read-only handle onto a peer region's registry,
// used by the remote region aggregator.
//
//go:generate moq -stub -out mock/remote_region_registry.go -pkg mock . RemoteRegionRegistry
type RemoteRegionRegistry interface {
	GetApplication(appName string) *domain.Application
	GetApplications() *domain.Applications
	GetApplicationDeltas() *domain.Applications
}

// ASGOracle answers whether a named autoscaling group is currently enabled.
//
//go:generate moq -stub -out mock/asg_oracle.go -pkg mock . ASGOracle
type ASGOracle interface {
	IsASGEnabled(asgName string) bool
}
