package replacer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pagecache/frame"
)

func TestLRUKEvictsLargestBackwardDistance(t *testing.T) {
	r := NewLRUK(2)

	// access history: p1, p2, p3, p1 (frame ids used directly as proxies)
	r.RecordAccess(1) // t=1
	r.RecordAccess(2) // t=2
	r.RecordAccess(3) // t=3
	r.RecordAccess(1) // t=4

	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	r.SetEvictable(3, true)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, frame.ID(2), victim, "frame 2 has the earliest oldest access among infinite-distance frames")
}

func TestLRUKSkipsNonEvictableFrames(t *testing.T) {
	r := NewLRUK(2)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(1, true)
	// frame 2 stays pinned (not evictable)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, frame.ID(1), victim)
}

func TestLRUKReturnsFalseWhenNothingEvictable(t *testing.T) {
	r := NewLRUK(2)
	r.RecordAccess(1)
	// never marked evictable

	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestLRUKSizeTracksEvictableCount(t *testing.T) {
	r := NewLRUK(2)
	r.RecordAccess(1)
	r.RecordAccess(2)
	r.SetEvictable(1, true)
	r.SetEvictable(2, true)
	assert.Equal(t, 2, r.Size())

	r.SetEvictable(1, false)
	assert.Equal(t, 1, r.Size())
}

func TestLRUKEvictRemovesHistoryAndEvictableBit(t *testing.T) {
	r := NewLRUK(2)
	r.RecordAccess(1)
	r.SetEvictable(1, true)

	victim, ok := r.Evict()
	require.True(t, ok)
	assert.Equal(t, frame.ID(1), victim)
	assert.Equal(t, 0, r.Size())

	// frame 1 is gone; re-evicting without a fresh access finds nothing.
	_, ok = r.Evict()
	assert.False(t, ok)
}

func TestLRUKForgetDropsBookkeeping(t *testing.T) {
	r := NewLRUK(2)
	r.RecordAccess(5)
	r.SetEvictable(5, true)

	r.Forget(5)
	assert.Equal(t, 0, r.Size())
	_, ok := r.Evict()
	assert.False(t, ok)
}

func TestNewLRUKPanicsOnInvalidK(t *testing.T) {
	assert.Panics(t, func() { NewLRUK(0) })
}
