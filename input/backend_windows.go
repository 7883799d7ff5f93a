//go:build windows

package input

import (
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procVkKeyScanExW             = user32.NewProc("VkKeyScanExW")
	procGetKeyboardLayout        = user32.NewProc("GetKeyboardLayout")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
)

// osInput mirrors the C INPUT struct. MOUSEINPUT is the largest member of
// the union, so keyboard records are written over the same bytes. Go's
// alignment rules place the union at the same offset as the C compiler on
// both 386 and amd64.
type osInput struct {
	Type uint32
	Mi   win.MOUSEINPUT
}

func toOSInput(r Record) osInput {
	var in osInput
	switch r.Type {
	case RecordKeyboard:
		in.Type = win.INPUT_KEYBOARD
		*(*win.KEYBDINPUT)(unsafe.Pointer(&in.Mi)) = win.KEYBDINPUT{
			WVk:     r.Vk,
			WScan:   r.Scan,
			DwFlags: r.Flags,
		}
	default:
		in.Type = win.INPUT_MOUSE
		in.Mi = win.MOUSEINPUT{
			Dx:        r.Dx,
			Dy:        r.Dy,
			MouseData: r.MouseData,
			DwFlags:   r.Flags,
		}
	}
	return in
}

type systemBackend struct{}

func newSystemBackend() Backend { return systemBackend{} }

func (systemBackend) SendInput(records []Record) (uint32, error) {
	if len(records) == 0 {
		return 0, nil
	}
	buf := make([]osInput, len(records))
	for i, r := range records {
		buf[i] = toOSInput(r)
	}
	n := win.SendInput(uint32(len(buf)), unsafe.Pointer(&buf[0]), int32(unsafe.Sizeof(buf[0])))
	if n < uint32(len(buf)) {
		return n, windows.Errno(win.GetLastError())
	}
	return n, nil
}

// LookupChar asks the layout of the foreground window's thread, which is
// the layout the injected keys will be interpreted with.
func (systemBackend) LookupChar(ch uint16) int16 {
	var tid uintptr
	if hwnd := win.GetForegroundWindow(); hwnd != 0 {
		tid, _, _ = procGetWindowThreadProcessId.Call(uintptr(hwnd), 0)
	}
	hkl, _, _ := procGetKeyboardLayout.Call(tid)
	r, _, _ := procVkKeyScanExW.Call(uintptr(ch), hkl)
	return int16(r)
}

func (systemBackend) CursorPos() (int32, int32, error) {
	var pt win.POINT
	if !win.GetCursorPos(&pt) {
		return 0, 0, windows.Errno(win.GetLastError())
	}
	return pt.X, pt.Y, nil
}

func (systemBackend) SetCursorPos(x, y int32) error {
	if !win.SetCursorPos(x, y) {
		return windows.Errno(win.GetLastError())
	}
	return nil
}

func (systemBackend) VirtualScreen() Rect {
	return Rect{
		X:      win.GetSystemMetrics(win.SM_XVIRTUALSCREEN),
		Y:      win.GetSystemMetrics(win.SM_YVIRTUALSCREEN),
		Width:  win.GetSystemMetrics(win.SM_CXVIRTUALSCREEN),
		Height: win.GetSystemMetrics(win.SM_CYVIRTUALSCREEN),
	}
}
