package domain

import "strconv"

// LeaseInfo is the decorated lease summary attached to every InstanceInfo
// handed back by a read view. DurationSec/RenewalIntervalSec describe the
// client's requested cadence; the timestamps come from the Lease itself.
type LeaseInfo struct {
	RegistrationTimestamp int64
	LastRenewalTimestamp  int64
	ServiceUpTimestamp    int64
	EvictionTimestamp     int64
	RenewalIntervalSec    int
	DurationSec           int
}

// InstanceInfo is the instance descriptor the registry core stores and
// mutates in narrow, spec-defined ways (status, overridden status, action
// type, lease summary, dirty/updated timestamps). Everything else is opaque
// payload carried through unmodified.
type InstanceInfo struct {
	AppName string
	ID      string

	Status           InstanceStatus
	OverriddenStatus InstanceStatus
	ActionType       ActionType

	// LastDirtyTimestamp is client-supplied and never allowed to regress
	// once stored for a given (AppName, ID).
	LastDirtyTimestamp int64
	// LastUpdatedTimestamp is server-assigned on every mutation.
	LastUpdatedTimestamp int64

	VIPAddress       string
	SecureVIPAddress string
	ASGName          string

	LeaseInfo *LeaseInfo

	// IsCoordinatingDiscoveryServer marks that this process answered the
	// read; set on every decorated copy.
	IsCoordinatingDiscoveryServer bool
}

// Clone returns a shallow copy of info, deep-copying the LeaseInfo pointer
// so callers can freely mutate the returned InstanceInfo without racing the
// registry's authoritative copy. Registry read views always hand back a
// Clone, never the stored pointer.
func (i InstanceInfo) Clone() InstanceInfo {
	out := i
	if i.LeaseInfo != nil {
		li := *i.LeaseInfo
		out.LeaseInfo = &li
	}
	return out
}

// Application is a named group of instances, mirroring Eureka's
// Application shape.
type Application struct {
	Name      string
	Instances []InstanceInfo
}

// AddInstance appends inst to the application.
func (a *Application) AddInstance(inst InstanceInfo) {
	a.Instances = append(a.Instances, inst)
}

// ByInstanceID returns the instance with the given ID, or nil.
func (a *Application) ByInstanceID(id string) *InstanceInfo {
	for i := range a.Instances {
		if a.Instances[i].ID == id {
			return &a.Instances[i]
		}
	}
	return nil
}

// Applications is the full-snapshot / delta wire shape returned by the read
// views. Version and AppsHashCode are populated by the caller. The hash is
// always computed over a full snapshot, even when Applications itself holds
// only a delta, so clients can reconcile a delta against the same
// fingerprint a full fetch would have produced.
type Applications struct {
	Version      int64
	AppsHashCode string
	Applications []*Application
}

// NewApplications returns an empty Applications with Version set to 1, as
// the original registry does when building a fresh snapshot.
func NewApplications() *Applications {
	return &Applications{Version: 1, Applications: []*Application{}}
}

// ByName returns the application with the given name, or nil.
func (a *Applications) ByName(name string) *Application {
	for _, app := range a.Applications {
		if app.Name == name {
			return app
		}
	}
	return nil
}

// AddApplication appends app to the set.
func (a *Applications) AddApplication(app *Application) {
	a.Applications = append(a.Applications, app)
}

// ReconcileHashCode computes the status-distribution fingerprint clients use
// to detect drift after applying a delta. It counts instances per status
// across all applications and renders a deterministic "STATUS_n_" string
// per status in a fixed ordering, skipping statuses with a zero count.
func (a *Applications) ReconcileHashCode() string {
	counts := map[InstanceStatus]int{}
	for _, app := range a.Applications {
		for _, inst := range app.Instances {
			counts[inst.Status]++
		}
	}
	order := []InstanceStatus{StatusUp, StatusDown, StatusStarting, StatusOutOfService, StatusUnknown}
	hash := ""
	for _, status := range order {
		if n := counts[status]; n > 0 {
			hash += string(status) + "_" + strconv.Itoa(n) + "_"
		}
	}
	return hash
}
