// Package pagecache implements a fixed-capacity buffer pool manager: it
// owns the frame table, the page index, the free list, the page-id
// counter, and the LRU-K replacer and disk scheduler instances, and
// exposes page allocation, deletion, flush, pinned acquisition, and
// pin-count inspection to callers.
package pagecache

import (
	"sync"

	"github.com/sirupsen/logrus"

	"pagecache/diskio"
	"pagecache/diskscheduler"
	"pagecache/frame"
	"pagecache/replacer"
)

// PageID, FrameID and InvalidPageID are re-exported from frame for
// callers that only need the root package.
type (
	PageID  = frame.PageID
	FrameID = frame.ID
)

const InvalidPageID = frame.InvalidPageID

// LogManager is an optional log manager collaborator accepted at
// construction for forward compatibility with a write-ahead log. This
// pool does not coordinate with one: the handle is only stored, never
// consulted by any operation below.
type LogManager interface{}

// Manager is the buffer pool manager facade.
type Manager struct {
	mu sync.Mutex // the "pool latch": page index, free list, counter, guard sequencing

	frames   []*frame.Header
	freeList []frame.ID
	pageTbl  map[PageID]frame.ID // resident pages only

	nextPageID PageID

	replacer  *replacer.LRUK
	scheduler *diskscheduler.Scheduler
	logMgr    LogManager

	log      *logrus.Logger
	counters counters
}

// New constructs a pool of capacity n frames over disk, with LRU-K
// parameter k, and an optional log manager handle (stored, never
// consulted — see LogManager). A nil logger installs a silent default.
func New(n int, disk diskio.Manager, k int, logMgr LogManager, log *logrus.Logger) *Manager {
	if n <= 0 {
		panic("pagecache: pool capacity must be positive")
	}
	if log == nil {
		log = logrus.New()
		log.Out = discardWriter{}
	}

	frames := make([]*frame.Header, n)
	freeList := make([]frame.ID, n)
	for i := 0; i < n; i++ {
		frames[i] = frame.NewHeader(frame.ID(i))
		freeList[i] = frame.ID(i)
	}

	return &Manager{
		frames:    frames,
		freeList:  freeList,
		pageTbl:   make(map[PageID]frame.ID, n),
		replacer:  replacer.NewLRUK(k),
		scheduler: diskscheduler.New(disk, log),
		logMgr:    logMgr,
		log:       log,
	}
}

// Close shuts down the pool's disk scheduler. Calling it while any
// guard is still live leaves the pool's behavior undefined.
func (m *Manager) Close() { m.scheduler.Close() }

// Size returns the pool's fixed frame capacity.
func (m *Manager) Size() int { return len(m.frames) }

// Stats returns a snapshot of cumulative counters, taken under the pool
// latch so it never races with the increments in acquireFrame/
// flushLocked.
func (m *Manager) Stats() Stats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.counters.snapshot()
}

// NewPage allocates a fresh page id and grows the disk address space to
// cover it. It cannot fail: disk space is assumed unbounded.
func (m *Manager) NewPage() PageID {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextPageID
	m.nextPageID++

	if err := m.scheduler.IncreaseDiskSpace(m.nextPageID); err != nil {
		violation("disk space growth failed: " + err.Error())
	}
	return id
}

// GetPinCount returns the pin count of a resident page, or ok=false if
// the page is not resident.
func (m *Manager) GetPinCount(id PageID) (count int32, ok bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, resident := m.pageTbl[id]
	if !resident {
		return 0, false
	}
	return m.frames[fid].PinCount(), true
}

// DeletePage evicts page id from memory (if resident) and asks the disk
// scheduler to release its on-disk space. Returns false only if the
// page is resident and pinned; an absent page is treated as already
// deleted and returns true.
func (m *Manager) DeletePage(id PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, resident := m.pageTbl[id]
	if !resident {
		return true
	}

	fh := m.frames[fid]
	if fh.PinCount() > 0 {
		return false
	}

	m.flushLocked(id, fh)

	delete(m.pageTbl, id)
	fh.Lock()
	fh.Reset()
	fh.Unlock()
	m.replacer.Forget(fid)
	m.freeList = append(m.freeList, fid)

	if err := m.scheduler.DeallocatePage(id); err != nil {
		violation("deallocate page failed: " + err.Error())
	}
	return true
}

// FlushPage writes page id's data to disk if it is resident and dirty.
// Returns false if the page is absent or clean; in either case no I/O
// is performed.
func (m *Manager) FlushPage(id PageID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	fid, resident := m.pageTbl[id]
	if !resident {
		return false
	}
	return m.flushLocked(id, m.frames[fid])
}

// flushLocked takes fh's own latch, checks the dirty bit under it, and —
// if dirty — writes fh's buffer to disk and clears the bit. The pool
// latch must already be held by the caller; the dirty check happens
// inside the frame latch because a live WriteGuard can flip the bit
// under only that latch, never the pool latch. Returns whether it
// actually flushed.
func (m *Manager) flushLocked(id PageID, fh *frame.Header) bool {
	fh.Lock()
	defer fh.Unlock()

	if !fh.Dirty() {
		return false
	}

	if err := m.scheduler.ScheduleWrite(id, fh.Data()); err != nil {
		violation("flush page " + pageIDString(id) + " failed: " + err.Error())
	}
	fh.SetDirty(false)
	m.counters.flushes++
	m.counters.pageWrites++
	m.log.WithField("page_id", int32(id)).Debug("pagecache: flushed page")
	return true
}

// FlushAllPages flushes every resident dirty page. No ordering between
// pages is guaranteed.
func (m *Manager) FlushAllPages() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, fid := range m.pageTbl {
		m.flushLocked(id, m.frames[fid])
	}
}
