package diskio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"pagecache/frame"
)

func newTestFileManager(t *testing.T) *FileManager {
	t.Helper()
	dir := t.TempDir()
	m, err := NewFileManager(filepath.Join(dir, "pages.db"))
	require.NoError(t, err)
	t.Cleanup(func() { m.Close() })
	return m
}

func TestFileManagerGrowThenReadIsZeroed(t *testing.T) {
	m := newTestFileManager(t)
	require.NoError(t, m.IncreaseDiskSpace(frame.PageID(3)))

	var buf [frame.PageSize]byte
	require.NoError(t, m.ReadPage(frame.PageID(2), &buf))
	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}
}

func TestFileManagerWriteThenReadRoundTrips(t *testing.T) {
	m := newTestFileManager(t)
	require.NoError(t, m.IncreaseDiskSpace(frame.PageID(0)))

	var write [frame.PageSize]byte
	copy(write[:], "HELLO!!!")
	require.NoError(t, m.WritePage(frame.PageID(0), &write))

	var read [frame.PageSize]byte
	require.NoError(t, m.ReadPage(frame.PageID(0), &read))
	require.Equal(t, write, read)
}

func TestFileManagerReadBeyondFileIsZeroed(t *testing.T) {
	m := newTestFileManager(t)

	var buf [frame.PageSize]byte
	require.NoError(t, m.ReadPage(frame.PageID(5), &buf))
	for _, b := range buf {
		require.Equal(t, byte(0), b)
	}
}

func TestFileManagerPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pages.db")

	m1, err := NewFileManager(path)
	require.NoError(t, err)
	require.NoError(t, m1.IncreaseDiskSpace(frame.PageID(0)))
	var write [frame.PageSize]byte
	write[0] = 'A'
	require.NoError(t, m1.WritePage(frame.PageID(0), &write))
	require.NoError(t, m1.Close())

	m2, err := NewFileManager(path)
	require.NoError(t, err)
	defer m2.Close()

	var read [frame.PageSize]byte
	require.NoError(t, m2.ReadPage(frame.PageID(0), &read))
	require.Equal(t, byte('A'), read[0])

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.EqualValues(t, frame.PageSize, info.Size())
}
