//go:build windows

package hook

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/Alia5/vinject/input"
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookExW   = user32.NewProc("SetWindowsHookExW")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procGetMessageW         = user32.NewProc("GetMessageW")
	procPeekMessageW        = user32.NewProc("PeekMessageW")
	procPostThreadMessageW  = user32.NewProc("PostThreadMessageW")
	kernel32                = windows.NewLazySystemDLL("kernel32.dll")
	procGetModuleHandleW    = kernel32.NewProc("GetModuleHandleW")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14
	hcAction     = 0

	wmQuit        = 0x0012
	wmUser        = 0x0400
	wmKeyUp       = 0x0101
	wmSysKeyUp    = 0x0105
	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020a
	wmXButtonDown = 0x020b
	wmXButtonUp   = 0x020c
	wmMouseHWheel = 0x020e

	pmNoRemove = 0x0000

	llkhfInjected = 0x10
	llmhfInjected = 0x01
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msllHookStruct struct {
	Pt          struct{ X, Y int32 }
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

// Hook procedures are process-global, so only one loop may run at a time.
// emitHook is written before the hooks are installed and only read on the
// hook thread.
var (
	loopActive atomic.Bool
	emitHook   func(Event)

	keyboardCallback = windows.NewCallback(keyboardProc)
	mouseCallback    = windows.NewCallback(mouseProc)
)

type systemSource struct{}

// SystemSource returns the low-level hook source. If stop cannot post the
// quit message the loop keeps running and every later Start returns
// ErrAlreadyActive for the life of the process.
func SystemSource() Source { return systemSource{} }

func (systemSource) Start(emit func(Event)) (func() error, error) {
	if !loopActive.CompareAndSwap(false, true) {
		return nil, ErrAlreadyActive
	}

	ready := make(chan error, 1)
	done := make(chan struct{})
	var threadID uint32

	go func() {
		runtime.LockOSThread()
		defer runtime.UnlockOSThread()
		defer close(done)

		threadID = windows.GetCurrentThreadId()
		emitHook = emit

		hMod, _, _ := procGetModuleHandleW.Call(0)
		kh, _, err := procSetWindowsHookExW.Call(whKeyboardLL, keyboardCallback, hMod, 0)
		if kh == 0 {
			ready <- fmt.Errorf("SetWindowsHookExW(WH_KEYBOARD_LL): %w", err)
			return
		}
		defer procUnhookWindowsHookEx.Call(kh)

		mh, _, err := procSetWindowsHookExW.Call(whMouseLL, mouseCallback, hMod, 0)
		if mh == 0 {
			ready <- fmt.Errorf("SetWindowsHookExW(WH_MOUSE_LL): %w", err)
			return
		}
		defer procUnhookWindowsHookEx.Call(mh)

		// Create the thread's message queue so PostThreadMessageW from stop
		// cannot race the first GetMessageW.
		var m msg
		procPeekMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, wmUser, wmUser, pmNoRemove)
		ready <- nil

		for {
			r, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
			if int32(r) <= 0 {
				return
			}
		}
	}()

	if err := <-ready; err != nil {
		<-done
		loopActive.Store(false)
		return nil, err
	}

	stop := sync.OnceValue(func() error {
		r, _, err := procPostThreadMessageW.Call(uintptr(threadID), wmQuit, 0, 0)
		if r == 0 {
			return fmt.Errorf("PostThreadMessageW: %w", err)
		}
		<-done
		loopActive.Store(false)
		return nil
	})
	return stop, nil
}

func keyboardProc(nCode int32, wParam, lParam uintptr) uintptr {
	if nCode == hcAction {
		k := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		action := input.Press
		if wParam == wmKeyUp || wParam == wmSysKeyUp {
			action = input.Release
		}
		emitHook(Event{
			Kind:     KeyboardEvent,
			Key:      input.FromRaw(uint16(k.VkCode)),
			ScanCode: k.ScanCode,
			Action:   action,
			Injected: k.Flags&llkhfInjected != 0,
			Time:     k.Time,
		})
	}
	r, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

func mouseProc(nCode int32, wParam, lParam uintptr) uintptr {
	if nCode == hcAction {
		m := (*msllHookStruct)(unsafe.Pointer(lParam))
		if e, ok := mouseEvent(wParam, m); ok {
			emitHook(e)
		}
	}
	r, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return r
}

func mouseEvent(wParam uintptr, m *msllHookStruct) (Event, bool) {
	e := Event{
		X:        m.Pt.X,
		Y:        m.Pt.Y,
		Injected: m.Flags&llmhfInjected != 0,
		Time:     m.Time,
	}
	button := func(b input.Button, a input.Action) (Event, bool) {
		e.Kind, e.Button, e.Action = MouseButtonEvent, b, a
		return e, true
	}
	xButton := input.ButtonX1
	if m.MouseData>>16 == 2 {
		xButton = input.ButtonX2
	}

	switch wParam {
	case wmMouseMove:
		e.Kind = MouseMoveEvent
		return e, true
	case wmLButtonDown:
		return button(input.ButtonLeft, input.Press)
	case wmLButtonUp:
		return button(input.ButtonLeft, input.Release)
	case wmRButtonDown:
		return button(input.ButtonRight, input.Press)
	case wmRButtonUp:
		return button(input.ButtonRight, input.Release)
	case wmMButtonDown:
		return button(input.ButtonMiddle, input.Press)
	case wmMButtonUp:
		return button(input.ButtonMiddle, input.Release)
	case wmXButtonDown:
		return button(xButton, input.Press)
	case wmXButtonUp:
		return button(xButton, input.Release)
	case wmMouseWheel, wmMouseHWheel:
		e.Kind = MouseWheelEvent
		e.Delta = float32(int16(m.MouseData>>16)) / input.WheelDelta
		if wParam == wmMouseHWheel {
			e.Direction = input.Horizontal
		}
		return e, true
	}
	return e, false
}
