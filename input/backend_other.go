//go:build !windows

package input

// unsupportedBackend keeps the package buildable on platforms without
// SendInput. Every call fails with ErrUnsupported.
type unsupportedBackend struct{}

func newSystemBackend() Backend { return unsupportedBackend{} }

func (unsupportedBackend) SendInput([]Record) (uint32, error) { return 0, ErrUnsupported }

func (unsupportedBackend) LookupChar(uint16) int16 { return -1 }

func (unsupportedBackend) CursorPos() (int32, int32, error) { return 0, 0, ErrUnsupported }

func (unsupportedBackend) SetCursorPos(int32, int32) error { return ErrUnsupported }

func (unsupportedBackend) VirtualScreen() Rect { return Rect{} }
