package broker

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConnTrackerStale(t *testing.T) {
	ct := newConnTracker()
	now := time.Now()

	ct.Add(1, now.Add(-10*time.Second))
	ct.Add(2, now.Add(-time.Second))
	ct.Add(3, now)
	assert.Equal(t, 3, ct.Len())

	stale := ct.Stale(now, 5*time.Second)
	assert.Equal(t, []int{1}, stale)
	assert.Equal(t, 2, ct.Len())

	// Stale entries are removed once returned.
	assert.Empty(t, ct.Stale(now, 5*time.Second))
}

func TestConnTrackerRemove(t *testing.T) {
	ct := newConnTracker()
	ct.Add(1, time.Now().Add(-time.Hour))
	ct.Remove(1)
	ct.Remove(42)

	assert.Equal(t, 0, ct.Len())
	assert.Empty(t, ct.Stale(time.Now(), time.Second))
}
