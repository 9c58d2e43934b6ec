package pagecache

// Stats is a read-only snapshot of cumulative buffer pool counters.
// It never influences eviction or any other decision; it exists purely
// for operational introspection.
type Stats struct {
	Hits       uint64
	Misses     uint64
	Evictions  uint64
	Flushes    uint64
	PageReads  uint64
	PageWrites uint64
}

// counters is plain, non-atomic state: every increment happens under
// the pool latch (see Manager.mu), and Stats() takes that same latch
// before calling snapshot, so no field is ever touched without it.
type counters struct {
	hits, misses, evictions, flushes, pageReads, pageWrites uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Flushes:    c.flushes,
		PageReads:  c.pageReads,
		PageWrites: c.pageWrites,
	}
}
