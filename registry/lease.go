package registry

import (
	"time"

	"github.com/feckmell/instanceregistry/domain"
)

// Lease wraps one instance descriptor with the registration, renewal,
// service-up and eviction timestamps plus its configured duration.
type Lease struct {
	Holder domain.InstanceInfo

	DurationMs int64

	RegistrationTimestamp int64
	LastRenewalTimestamp  int64
	EvictionTimestamp     int64
	ServiceUpTimestamp    int64
}

// NewLease creates a lease for holder with the given duration, registered
// and last-renewed at now.
func NewLease(holder domain.InstanceInfo, durationMs int64, now time.Time) *Lease {
	ms := nowMs(now)
	return &Lease{
		Holder:                holder,
		DurationMs:            durationMs,
		RegistrationTimestamp: ms,
		LastRenewalTimestamp:  ms,
	}
}

// Renew sets LastRenewalTimestamp to now.
func (l *Lease) Renew(now time.Time) {
	l.LastRenewalTimestamp = nowMs(now)
}

// Cancel sets EvictionTimestamp to now.
func (l *Lease) Cancel(now time.Time) {
	l.EvictionTimestamp = nowMs(now)
}

// ServiceUp sets ServiceUpTimestamp to now iff it has not already been set,
// so only the first transition to UP is recorded.
func (l *Lease) ServiceUp(now time.Time) {
	if l.ServiceUpTimestamp == 0 {
		l.ServiceUpTimestamp = nowMs(now)
	}
}

// IsExpired reports whether the lease has been cancelled or its renewal
// window has elapsed. The window is doubled against DurationMs to tolerate
// clock skew between the reporting instance and this server. A zero
// EvictionTimestamp means the lease has not been cancelled.
func (l *Lease) IsExpired(now time.Time) bool {
	if l.EvictionTimestamp != 0 {
		return true
	}
	return nowMs(now) > l.LastRenewalTimestamp+2*l.DurationMs
}

func nowMs(t time.Time) int64 {
	return t.UnixMilli()
}
