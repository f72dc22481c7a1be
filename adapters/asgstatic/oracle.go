// Package asgstatic provides an interfaces.ASGOracle backed by a
// process-local map from autoscaling group name to enabled flag, seeded at
// startup and changed at runtime rather than fetched from a cloud API.
package asgstatic

import "sync"

// Oracle answers ASG-enabled lookups from a mutable in-memory set. New
// groups can be toggled at runtime via Enable/Disable, for operator tooling
// or tests; groups absent from the set are treated as enabled, matching
// the common default of "no ASG override configured".
type Oracle struct {
	mu      sync.RWMutex
	enabled map[string]bool
}

// New returns an Oracle seeded with the given initial enabled/disabled
// state. Groups not present in initial default to enabled.
func New(initial map[string]bool) *Oracle {
	enabled := make(map[string]bool, len(initial))
	for name, v := range initial {
		enabled[name] = v
	}
	return &Oracle{enabled: enabled}
}

// IsASGEnabled implements interfaces.ASGOracle.
func (o *Oracle) IsASGEnabled(asgName string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.enabled[asgName]
	if !ok {
		return true
	}
	return v
}

// Enable marks asgName as enabled.
func (o *Oracle) Enable(asgName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled[asgName] = true
}

// Disable marks asgName as disabled.
func (o *Oracle) Disable(asgName string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.enabled[asgName] = false
}
