package frame

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewHeaderStartsFreeAndClean(t *testing.T) {
	h := NewHeader(3)
	assert.Equal(t, ID(3), h.ID())
	assert.Equal(t, InvalidPageID, h.Page())
	assert.Equal(t, int32(0), h.PinCount())
	assert.False(t, h.Dirty())
}

func TestPinUnpinRoundTrip(t *testing.T) {
	h := NewHeader(0)
	assert.Equal(t, int32(1), h.Pin())
	assert.Equal(t, int32(2), h.Pin())
	assert.Equal(t, int32(1), h.Unpin())
	assert.Equal(t, int32(0), h.Unpin())
}

func TestUnpinBelowZeroPanics(t *testing.T) {
	h := NewHeader(0)
	assert.Panics(t, func() { h.Unpin() })
}

func TestResetClearsEverything(t *testing.T) {
	h := NewHeader(1)
	h.SetPage(PageID(7))
	h.Pin()
	h.Lock()
	h.Data()[0] = 0xFF
	h.SetDirty(true)
	h.Unlock()

	h.Reset()

	assert.Equal(t, InvalidPageID, h.Page())
	assert.Equal(t, int32(0), h.PinCount())
	assert.False(t, h.Dirty())
	assert.Equal(t, byte(0), h.Data()[0])
}
