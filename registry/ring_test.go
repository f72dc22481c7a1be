package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActivityRing_BoundAndOrder(t *testing.T) {
	ring := newActivityRing(3)
	for i := 0; i < 5; i++ {
		ring.add(activityEntry{Timestamp: int64(i), Label: "e"})
	}

	snap := ring.snapshot()
	assert.Len(t, snap, 3)
	assert.Equal(t, int64(4), snap[0].Timestamp)
	assert.Equal(t, int64(3), snap[1].Timestamp)
	assert.Equal(t, int64(2), snap[2].Timestamp)
}

func TestActivityRing_Clear(t *testing.T) {
	ring := newActivityRing(2)
	ring.add(activityEntry{Timestamp: 1})
	ring.clear()
	assert.Empty(t, ring.snapshot())
}
