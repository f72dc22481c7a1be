package registry

import (
	"time"

	"github.com/maypok86/otter/v2"

	"github.com/feckmell/instanceregistry/domain"
)

// overridesDefaultTTL is the access-bumped expiry an operator override
// carries once it stops being touched. Renews and status reads that hit the
// same instance push the deadline back out; an override an operator never
// revisits ages out on its own after an hour of silence.
const overridesDefaultTTL = time.Hour

// overridesMap is the operator-supplied status override store. It is backed
// by an otter cache configured with an access-expiry calculator, so every
// successful lookup extends the entry's lifetime the way a read-through
// cache would, rather than expiring strictly from the write (Eureka's
// StatusUpdate "overriddenInstanceStatusMap" equivalent).
type overridesMap struct {
	cache *otter.Cache[string, domain.InstanceStatus]
}

func newOverridesMap() *overridesMap {
	cache, err := otter.New(&otter.Options[string, domain.InstanceStatus]{
		MaximumSize:      100_000,
		ExpiryCalculator: otter.ExpiryAccessing[string, domain.InstanceStatus](overridesDefaultTTL),
	})
	if err != nil {
		// otter.New only fails on invalid Options; the literal above is
		// static and known good.
		panic(err)
	}
	return &overridesMap{cache: cache}
}

// Get returns the override for id and whether one is set.
func (m *overridesMap) Get(id string) (domain.InstanceStatus, bool) {
	return m.cache.GetIfPresent(id)
}

// Put installs or replaces the override for id.
func (m *overridesMap) Put(id string, status domain.InstanceStatus) {
	m.cache.Set(id, status)
}

// Delete removes any override for id, reporting whether one was present.
func (m *overridesMap) Delete(id string) bool {
	_, ok := m.cache.GetIfPresent(id)
	m.cache.Invalidate(id)
	return ok
}

// Len reports the number of overrides currently held.
func (m *overridesMap) Len() int {
	return m.cache.EstimatedSize()
}

// Close stops the cache's background maintenance goroutines.
func (m *overridesMap) Close() {
	m.cache.StopAllGoroutines()
}
