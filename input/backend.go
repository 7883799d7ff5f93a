package input

import "log/slog"

// Injector hands a batch of records to the OS in one call and returns how
// many were accepted. A short count comes with the OS error describing why.
type Injector interface {
	SendInput(records []Record) (uint32, error)
}

// Cursor queries and places the pointer directly, without injecting input.
type Cursor interface {
	CursorPos() (x, y int32, err error)
	SetCursorPos(x, y int32) error
	// VirtualScreen returns the bounds of the desktop spanning all monitors.
	VirtualScreen() Rect
}

// Rect is a screen rectangle in pixels.
type Rect struct {
	X, Y          int32
	Width, Height int32
}

// Backend bundles the OS primitives a Dispatcher needs.
type Backend interface {
	Injector
	Layout
	Cursor
}

// SystemBackend returns the backend for the host OS. On platforms other
// than Windows every operation fails with ErrUnsupported.
func SystemBackend() Backend { return newSystemBackend() }

// NewSystem returns a Dispatcher that injects into the host OS.
func NewSystem(logger *slog.Logger) *Dispatcher {
	return NewDispatcher(newSystemBackend(), logger)
}
