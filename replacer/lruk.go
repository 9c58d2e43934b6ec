// Package replacer implements the LRU-K eviction policy consumed by the
// buffer pool manager: among evictable frames, it picks the one with the
// largest backward K-distance, breaking ties by earliest oldest access.
package replacer

import "pagecache/frame"

// LRUK tracks, for each frame, up to K most recent access timestamps and
// an evictable flag, and serves Evict() by backward-K-distance.
type LRUK struct {
	k   int
	now int64 // monotonically increasing logical clock

	history   map[frame.ID][]int64 // oldest first, len <= k
	evictable map[frame.ID]bool
}

// NewLRUK constructs a replacer with backward-distance parameter k. It
// takes no pool size: any frame id passed to it is tracked. k must be >= 1.
func NewLRUK(k int) *LRUK {
	if k < 1 {
		panic("replacer: k must be >= 1")
	}
	return &LRUK{
		k:         k,
		history:   make(map[frame.ID][]int64),
		evictable: make(map[frame.ID]bool),
	}
}

// RecordAccess appends the current logical timestamp to frame id's
// history, dropping the oldest entry once the history exceeds k.
func (r *LRUK) RecordAccess(id frame.ID) {
	r.now++
	h := append(r.history[id], r.now)
	if len(h) > r.k {
		h = h[len(h)-r.k:]
	}
	r.history[id] = h
}

// SetEvictable sets the per-frame evictable bit.
func (r *LRUK) SetEvictable(id frame.ID, evictable bool) {
	if evictable {
		r.evictable[id] = true
	} else {
		delete(r.evictable, id)
	}
}

// Size returns the number of currently evictable frames.
func (r *LRUK) Size() int { return len(r.evictable) }

// Forget drops a frame's history and evictable bit outright, without
// returning it as a victim. Used when a frame is freed through a path
// other than eviction (DeletePage), so a reused frame id never carries
// stale bookkeeping forward.
func (r *LRUK) Forget(id frame.ID) {
	delete(r.history, id)
	delete(r.evictable, id)
}

// Evict returns the evictable frame with the largest backward K-distance,
// tiebroken by earliest oldest access. It removes the winner's history
// and clears its evictable bit. Returns ok=false if no frame is evictable.
func (r *LRUK) Evict() (id frame.ID, ok bool) {
	var (
		best       frame.ID
		bestDist   int64 = -1
		bestOldest int64
		found      bool
	)

	for fid := range r.evictable {
		h := r.history[fid]
		dist, oldest := kDistance(h, r.k, r.now)

		switch {
		case !found:
			best, bestDist, bestOldest, found = fid, dist, oldest, true
		case dist > bestDist:
			best, bestDist, bestOldest = fid, dist, oldest
		case dist == bestDist && oldest < bestOldest:
			best, bestDist, bestOldest = fid, dist, oldest
		}
	}

	if !found {
		return 0, false
	}

	delete(r.history, best)
	delete(r.evictable, best)
	return best, true
}

// kDistance returns a frame's backward K-distance and its oldest
// recorded access timestamp. A frame with fewer than k accesses has
// infinite distance, represented here as a sentinel larger than any
// timestamp difference that could otherwise occur.
func kDistance(history []int64, k int, now int64) (dist int64, oldest int64) {
	if len(history) == 0 {
		return infiniteDistance, 0
	}
	oldest = history[0]
	if len(history) < k {
		return infiniteDistance, oldest
	}
	kth := history[0] // history is oldest-first and capped at k entries
	return now - kth, oldest
}

// infiniteDistance stands in for "fewer than K accesses observed".
// It is larger than any distance derivable from the logical clock, so
// it always wins ranking against a real distance.
const infiniteDistance = int64(1) << 62
