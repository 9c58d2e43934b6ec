// Package diskio provides byte-level page reads and writes against a
// single growable backing file, addressed by a dense page-id space
// starting at 0. The buffer pool manager consumes only the Manager
// interface; FileManager is the concrete, file-backed implementation
// that exercises it.
package diskio

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"pagecache/frame"
)

// Manager is the interface the buffer cache consumes. PageID growth and
// deallocation are synchronous, cheap metadata operations; ReadPage and
// WritePage move PageSize bytes.
type Manager interface {
	ReadPage(id frame.PageID, dest *[frame.PageSize]byte) error
	WritePage(id frame.PageID, src *[frame.PageSize]byte) error
	IncreaseDiskSpace(upToPageID frame.PageID) error
	DeallocatePage(id frame.PageID) error
}

// FileManager is a single-file, growable implementation of Manager.
type FileManager struct {
	mu       sync.Mutex
	file     *os.File
	numPages int64 // pages the backing file is known to span
}

// NewFileManager opens (creating if necessary) a single backing file for
// a dense, zero-based page address space.
func NewFileManager(path string) (*FileManager, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, fmt.Errorf("diskio: open %s: %w", path, err)
	}
	stat, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("diskio: stat %s: %w", path, err)
	}
	return &FileManager{
		file:     f,
		numPages: stat.Size() / int64(frame.PageSize),
	}, nil
}

// ReadPage reads PageSize bytes for id into dest. Reading a page beyond
// the current file extent yields zeros, matching a page that was grown
// via IncreaseDiskSpace but never written.
func (m *FileManager) ReadPage(id frame.PageID, dest *[frame.PageSize]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offset := int64(id) * int64(frame.PageSize)
	n, err := m.file.ReadAt(dest[:], offset)
	if err != nil && n == 0 {
		if errors.Is(err, io.EOF) {
			for i := range dest {
				dest[i] = 0
			}
			return nil
		}
		return fmt.Errorf("diskio: read page %d: %w", id, err)
	}
	for i := n; i < len(dest); i++ {
		dest[i] = 0
	}
	return nil
}

// WritePage writes PageSize bytes from src at id's offset.
func (m *FileManager) WritePage(id frame.PageID, src *[frame.PageSize]byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	offset := int64(id) * int64(frame.PageSize)
	if _, err := m.file.WriteAt(src[:], offset); err != nil {
		return fmt.Errorf("diskio: write page %d: %w", id, err)
	}
	return nil
}

// IncreaseDiskSpace ensures the backing file spans at least
// upToPageID inclusive. It never shrinks the file.
func (m *FileManager) IncreaseDiskSpace(upToPageID frame.PageID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	want := int64(upToPageID) + 1
	if want <= m.numPages {
		return nil
	}
	if err := m.file.Truncate(want * int64(frame.PageSize)); err != nil {
		return fmt.Errorf("diskio: grow to page %d: %w", upToPageID, err)
	}
	m.numPages = want
	return nil
}

// DeallocatePage marks id's on-disk space as free. Disk space is never
// reclaimed, so this is a no-op kept only to satisfy the Manager
// interface consumed by DeletePage.
func (m *FileManager) DeallocatePage(frame.PageID) error { return nil }

// Close syncs and closes the backing file.
func (m *FileManager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.file.Sync(); err != nil {
		m.file.Close()
		return fmt.Errorf("diskio: sync before close: %w", err)
	}
	return m.file.Close()
}

