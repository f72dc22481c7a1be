package registry

import (
	"sync"
	"time"
)

// renewalRateMeter is a sliding one-minute counter of successful renewals.
// It tracks two buckets, the one currently accumulating and the one just
// closed, and reports the closed bucket's count, so a reader always sees a
// complete trailing minute rather than a partial one.
type renewalRateMeter struct {
	mu sync.Mutex

	bucketMs    int64
	currentSlot int64
	currentCnt  int64
	lastCnt     int64

	clock func() time.Time
}

func newRenewalRateMeter(bucket time.Duration, clock func() time.Time) *renewalRateMeter {
	return &renewalRateMeter{
		bucketMs: bucket.Milliseconds(),
		clock:    clock,
	}
}

func (m *renewalRateMeter) slotFor(now time.Time) int64 {
	return now.UnixMilli() / m.bucketMs
}

// Increment records one renewal in the current bucket, rolling buckets
// forward if the clock has moved into a new minute.
func (m *renewalRateMeter) Increment() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked(m.clock())
	m.currentCnt++
}

// Count returns the last fully-closed bucket's renewal count, the value
// self-preservation compares against its threshold.
func (m *renewalRateMeter) Count() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rollLocked(m.clock())
	return m.lastCnt
}

func (m *renewalRateMeter) rollLocked(now time.Time) {
	slot := m.slotFor(now)
	switch {
	case slot == m.currentSlot:
		return
	case slot == m.currentSlot+1:
		m.lastCnt = m.currentCnt
	default:
		// More than one bucket elapsed with no activity: both buckets are
		// stale.
		m.lastCnt = 0
	}
	m.currentSlot = slot
	m.currentCnt = 0
}
