package pagecache

import (
	"pagecache/frame"
)

// ReadGuard is a scoped token carrying a pin and a shared latch on a
// frame. Read accessors are valid until Drop is called.
type ReadGuard struct {
	pool  *Manager
	fh    *frame.Header
	pid   PageID
	valid bool
}

// WriteGuard is a scoped token carrying a pin and an exclusive latch on
// a frame. Any call to Data() marks the frame dirty.
type WriteGuard struct {
	pool  *Manager
	fh    *frame.Header
	pid   PageID
	valid bool
}

// PageID returns the id of the guarded page.
func (g *ReadGuard) PageID() PageID {
	g.assertValid()
	return g.pid
}

// Data returns the page's bytes. The returned pointer must not be
// retained past Drop.
func (g *ReadGuard) Data() *[frame.PageSize]byte {
	g.assertValid()
	return g.fh.Data()
}

// IsDirty reports whether the page currently differs from its on-disk
// contents.
func (g *ReadGuard) IsDirty() bool {
	g.assertValid()
	return g.fh.Dirty()
}

// Drop releases the shared latch, decrements the pin count, and — if
// the pin count reaches zero — marks the frame evictable again. Calling
// Drop twice, or any accessor after Drop, is a contract violation.
func (g *ReadGuard) Drop() {
	if !g.valid {
		violation("ReadGuard.Drop called on an invalid guard")
	}
	g.valid = false
	g.fh.RUnlock()

	g.pool.mu.Lock()
	defer g.pool.mu.Unlock()
	if g.fh.Unpin() == 0 {
		g.pool.replacer.SetEvictable(g.fh.ID(), true)
	}
}

func (g *ReadGuard) assertValid() {
	if !g.valid {
		violation("use of invalidated ReadGuard")
	}
}

// PageID returns the id of the guarded page.
func (g *WriteGuard) PageID() PageID {
	g.assertValid()
	return g.pid
}

// Data returns the page's bytes for mutation and marks the frame dirty.
// There is no way to clear dirtiness short of a successful writeback.
func (g *WriteGuard) Data() *[frame.PageSize]byte {
	g.assertValid()
	g.fh.SetDirty(true)
	return g.fh.Data()
}

// IsDirty reports whether the page currently differs from its on-disk
// contents.
func (g *WriteGuard) IsDirty() bool {
	g.assertValid()
	return g.fh.Dirty()
}

// Drop releases the exclusive latch, decrements the pin count, and — if
// the pin count reaches zero — marks the frame evictable again.
func (g *WriteGuard) Drop() {
	if !g.valid {
		violation("WriteGuard.Drop called on an invalid guard")
	}
	g.valid = false
	g.fh.Unlock()

	g.pool.mu.Lock()
	defer g.pool.mu.Unlock()
	if g.fh.Unpin() == 0 {
		g.pool.replacer.SetEvictable(g.fh.ID(), true)
	}
}

func (g *WriteGuard) assertValid() {
	if !g.valid {
		violation("use of invalidated WriteGuard")
	}
}

// CheckedReadPage acquires a shared guard on page id, bringing it
// resident if necessary. Returns ok=false only when every resident
// frame is currently pinned (out of memory).
func (m *Manager) CheckedReadPage(id PageID) (*ReadGuard, bool) {
	fh, ok := m.acquireFrame(id)
	if !ok {
		return nil, false
	}
	fh.RLock()
	fh.Pin()
	m.replacer.SetEvictable(fh.ID(), false)
	m.mu.Unlock()

	return &ReadGuard{pool: m, fh: fh, pid: id, valid: true}, true
}

// CheckedWritePage acquires an exclusive guard on page id, bringing it
// resident if necessary. Returns ok=false only when every resident
// frame is currently pinned (out of memory).
func (m *Manager) CheckedWritePage(id PageID) (*WriteGuard, bool) {
	fh, ok := m.acquireFrame(id)
	if !ok {
		return nil, false
	}
	fh.Lock()
	fh.Pin()
	m.replacer.SetEvictable(fh.ID(), false)
	m.mu.Unlock()

	return &WriteGuard{pool: m, fh: fh, pid: id, valid: true}, true
}

// ReadPage and WritePage are non-checked convenience wrappers that
// panic when the pool is out of memory rather than returning an option.
func (m *Manager) ReadPage(id PageID) *ReadGuard {
	g, ok := m.CheckedReadPage(id)
	if !ok {
		violation("ReadPage: pool out of memory for page " + pageIDString(id))
	}
	return g
}

func (m *Manager) WritePage(id PageID) *WriteGuard {
	g, ok := m.CheckedWritePage(id)
	if !ok {
		violation("WritePage: pool out of memory for page " + pageIDString(id))
	}
	return g
}

// acquireFrame implements the shared resident/free-frame/eviction
// acquisition protocol: resident hit, free frame available, or eviction
// required. It returns the target frame with the pool latch still held;
// the caller completes the protocol by taking the frame's latch (in
// whichever mode), pinning it, marking it non-evictable, and releasing
// the pool latch. Returns ok=false (with the pool latch released) only
// when eviction is required and the replacer has no evictable frame.
func (m *Manager) acquireFrame(id PageID) (fh *frame.Header, ok bool) {
	m.mu.Lock()

	// Case A: resident.
	if fid, resident := m.pageTbl[id]; resident {
		fh := m.frames[fid]
		m.replacer.RecordAccess(fid)
		m.counters.hits++
		m.log.WithField("page_id", int32(id)).Debug("pagecache: hit")
		return fh, true
	}

	m.counters.misses++

	// Case B: free frame available.
	if n := len(m.freeList); n > 0 {
		fid := m.freeList[n-1]
		m.freeList = m.freeList[:n-1]

		fh := m.frames[fid]
		m.pageTbl[id] = fid
		fh.SetPage(id)
		m.replacer.RecordAccess(fid)

		if err := m.scheduler.ScheduleRead(id, fh.Data()); err != nil {
			violation("read page " + pageIDString(id) + " failed: " + err.Error())
		}
		m.counters.pageReads++
		m.log.WithField("page_id", int32(id)).Debug("pagecache: miss, loaded into free frame")
		return fh, true
	}

	// Case C: eviction required.
	fid, evicted := m.replacer.Evict()
	if !evicted {
		m.mu.Unlock()
		return nil, false
	}

	fh = m.frames[fid]
	oldPID := fh.Page()

	m.flushLocked(oldPID, fh)

	fh.Lock()
	fh.Reset()
	fh.Unlock()

	delete(m.pageTbl, oldPID)
	m.pageTbl[id] = fid
	fh.SetPage(id)
	m.replacer.RecordAccess(fid)
	m.counters.evictions++

	if err := m.scheduler.ScheduleRead(id, fh.Data()); err != nil {
		violation("read page " + pageIDString(id) + " failed: " + err.Error())
	}
	m.counters.pageReads++
	m.log.WithFields(map[string]interface{}{
		"page_id":    int32(id),
		"evicted_id": int32(oldPID),
	}).Debug("pagecache: miss, evicted frame")

	return fh, true
}
