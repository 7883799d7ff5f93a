//go:build windows

package input

import (
	"testing"
	"unsafe"

	"github.com/lxn/win"
	"github.com/stretchr/testify/assert"
)

func TestToOSInput(t *testing.T) {
	key := toOSInput(Record{Type: RecordKeyboard, Vk: 0x41, Flags: keyUp})
	assert.Equal(t, uint32(win.INPUT_KEYBOARD), key.Type)
	kb := (*win.KEYBDINPUT)(unsafe.Pointer(&key.Mi))
	assert.Equal(t, uint16(0x41), kb.WVk)
	assert.Equal(t, keyUp, kb.DwFlags)

	wheel := toOSInput(Record{Type: RecordMouse, MouseData: WheelDelta, Flags: mouseWheel})
	assert.Equal(t, uint32(win.INPUT_MOUSE), wheel.Type)
	assert.Equal(t, uint32(WheelDelta), wheel.Mi.MouseData)
	assert.Equal(t, mouseWheel, wheel.Mi.DwFlags)
}

func TestVirtualScreenCoversPrimary(t *testing.T) {
	vs := systemBackend{}.VirtualScreen()
	if vs.Width == 0 {
		t.Skip("no interactive desktop")
	}
	assert.GreaterOrEqual(t, vs.Width, win.GetSystemMetrics(win.SM_CXSCREEN))
	assert.GreaterOrEqual(t, vs.Height, win.GetSystemMetrics(win.SM_CYSCREEN))
}
