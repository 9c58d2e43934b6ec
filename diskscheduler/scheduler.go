// Package diskscheduler serializes disk I/O on a single background
// worker: callers enqueue read/write requests against a caller-owned
// buffer and block on a one-shot completion signal. A bounded channel
// holds the FIFO queue, one goroutine runs the worker loop, and a
// sentinel channel drives shutdown.
package diskscheduler

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"pagecache/diskio"
	"pagecache/frame"
)

// Request is a single read or write against a page id, targeting a
// caller-owned buffer. The buffer must outlive the request; the
// scheduler never copies it.
type Request struct {
	IsWrite bool
	PageID  frame.PageID
	Buf     *[frame.PageSize]byte
	done    chan error
}

// newRequest builds a request with its completion channel pre-allocated.
func newRequest(isWrite bool, id frame.PageID, buf *[frame.PageSize]byte) *Request {
	return &Request{IsWrite: isWrite, PageID: id, Buf: buf, done: make(chan error, 1)}
}

// Scheduler owns the bounded queue and the single worker goroutine that
// drains it against a diskio.Manager.
//
// closeMu guards the check-then-enqueue in submit against Close: submit
// holds the read side while it is enqueuing and waiting for a reply,
// Close takes the write side before flipping closed, so Close can never
// observe closed==false, decide to shut down, and have a submitter
// enqueue behind its back — by the time Close's Lock() succeeds, every
// submitter that had already passed the closed check has also finished
// its round trip through the worker.
type Scheduler struct {
	disk  diskio.Manager
	log   *logrus.Logger
	queue chan *Request
	stop  chan struct{}
	done  chan struct{}

	closeMu sync.RWMutex
	closed  bool // guarded by closeMu
}

// New starts a scheduler's worker goroutine against disk.
func New(disk diskio.Manager, log *logrus.Logger) *Scheduler {
	if log == nil {
		log = silentLogger()
	}
	s := &Scheduler{
		disk:  disk,
		log:   log,
		queue: make(chan *Request, 256),
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go s.run()
	return s
}

// ScheduleRead enqueues a read of id into buf and blocks until the
// worker has serviced it (or every previously enqueued request has
// drained during shutdown).
func (s *Scheduler) ScheduleRead(id frame.PageID, buf *[frame.PageSize]byte) error {
	return s.submit(newRequest(false, id, buf))
}

// ScheduleWrite enqueues a write of buf to id and blocks until serviced.
func (s *Scheduler) ScheduleWrite(id frame.PageID, buf *[frame.PageSize]byte) error {
	return s.submit(newRequest(true, id, buf))
}

func (s *Scheduler) submit(req *Request) error {
	s.closeMu.RLock()
	defer s.closeMu.RUnlock()

	if s.closed {
		return fmt.Errorf("diskscheduler: scheduler is closed")
	}
	s.queue <- req
	return <-req.done
}

// IncreaseDiskSpace and DeallocatePage are cheap metadata operations and
// run directly on the caller's goroutine, bypassing the queue.
func (s *Scheduler) IncreaseDiskSpace(upToPageID frame.PageID) error {
	return s.disk.IncreaseDiskSpace(upToPageID)
}

func (s *Scheduler) DeallocatePage(id frame.PageID) error {
	return s.disk.DeallocatePage(id)
}

// Close enqueues shutdown and waits for the worker to drain every
// previously enqueued request and exit. Close blocks until every
// submit call already past its closed-check has completed its round
// trip through the worker, so closed only flips once no submitter can
// still be racing to enqueue.
func (s *Scheduler) Close() {
	s.closeMu.Lock()
	s.closed = true
	s.closeMu.Unlock()

	close(s.stop)
	<-s.done
}

func (s *Scheduler) run() {
	defer close(s.done)
	for {
		select {
		case req := <-s.queue:
			s.dispatch(req)
		case <-s.stop:
			s.drain()
			return
		}
	}
}

// drain services whatever is already queued after shutdown was
// signaled, so no caller blocked in submit is left waiting forever.
func (s *Scheduler) drain() {
	for {
		select {
		case req := <-s.queue:
			s.dispatch(req)
		default:
			return
		}
	}
}

func (s *Scheduler) dispatch(req *Request) {
	start := time.Now()
	var err error
	if req.IsWrite {
		err = s.disk.WritePage(req.PageID, req.Buf)
	} else {
		err = s.disk.ReadPage(req.PageID, req.Buf)
	}
	s.log.WithFields(logrus.Fields{
		"page_id":  int32(req.PageID),
		"is_write": req.IsWrite,
		"latency":  time.Since(start),
	}).Debug("diskscheduler: dispatched request")
	req.done <- err
}

func silentLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(discard{})
	return l
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }
