package input

import (
	"fmt"
	"math"
)

// Position returns the cursor position in screen pixels.
func (d *Dispatcher) Position() (x, y int32, err error) {
	x, y, err = d.backend.CursorPos()
	if err != nil {
		return 0, 0, wrapOS("GetCursorPos", err)
	}
	return x, y, nil
}

// SetPosition places the cursor at (x, y) directly. No input is injected,
// so applications do not see a mouse move event.
func (d *Dispatcher) SetPosition(x, y int32) error {
	if err := d.backend.SetCursorPos(x, y); err != nil {
		return wrapOS("SetCursorPos", err)
	}
	return nil
}

// MoveAbsolute injects a move to the normalized position (nx, ny) on the
// primary monitor. See Absolute for clamping.
func (d *Dispatcher) MoveAbsolute(nx, ny float32) uint32 {
	return d.SendInputs([]Input{FromMotion(Absolute(nx, ny))})
}

// MoveRelative injects a move by (dx, dy). The OS applies pointer
// acceleration, so the cursor may travel a different number of pixels.
func (d *Dispatcher) MoveRelative(dx, dy int32) uint32 {
	return d.SendInputs([]Input{FromMotion(Relative(dx, dy))})
}

// MoveTo injects a move to the pixel position (x, y) on the virtual
// desktop.
func (d *Dispatcher) MoveTo(x, y int32) (uint32, error) {
	screen := d.backend.VirtualScreen()
	if screen.Width <= 0 || screen.Height <= 0 {
		return 0, fmt.Errorf("%w: empty virtual screen %+v", ErrOSQuery, screen)
	}
	m := MouseMotion{
		Absolute:    true,
		VirtualDesk: true,
		X:           pixelToAbsolute(x-screen.X, screen.Width),
		Y:           pixelToAbsolute(y-screen.Y, screen.Height),
	}
	return d.SendInputs([]Input{FromMotion(m)}), nil
}

// pixelToAbsolute maps an offset within extent pixels onto [0, AbsoluteMax].
func pixelToAbsolute(offset, extent int32) int32 {
	if extent <= 1 {
		return 0
	}
	n := math.Round(float64(offset) * AbsoluteMax / float64(extent-1))
	return int32(math.Max(0, math.Min(n, AbsoluteMax)))
}

// Scroll rotates the vertical wheel by delta notches; positive is away
// from the user.
func (d *Dispatcher) Scroll(delta float32) uint32 {
	return d.SendInputs([]Input{FromWheel(delta, Vertical)})
}

// ScrollH rotates the horizontal wheel by delta notches; positive is to
// the right.
func (d *Dispatcher) ScrollH(delta float32) uint32 {
	return d.SendInputs([]Input{FromWheel(delta, Horizontal)})
}

// Click presses and releases b.
func (d *Dispatcher) Click(b Button) (uint32, error) {
	return d.Send(b)
}

func wrapOS(op string, err error) error {
	return &OSError{Op: op, Err: err}
}
