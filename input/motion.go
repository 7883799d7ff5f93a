package input

import "math"

// AbsoluteMax is the upper bound of the normalized absolute coordinate space.
const AbsoluteMax = 65535

// MouseMotion describes a pointer movement.
//
// Absolute motions carry coordinates already normalized into
// [0, AbsoluteMax]; relative motions carry signed pixel deltas that the OS
// scales by the user's pointer speed settings.
type MouseMotion struct {
	Absolute    bool  `json:"absolute,omitempty"`
	X           int32 `json:"x"`
	Y           int32 `json:"y"`
	VirtualDesk bool  `json:"virtualDesk,omitempty"`
}

// Relative returns a motion by (dx, dy) pixels.
func Relative(dx, dy int32) MouseMotion {
	return MouseMotion{X: dx, Y: dy}
}

// Absolute returns a motion to (nx, ny) on the primary monitor, where
// 0 is the left/top edge and 1 the right/bottom edge. Values outside
// [0, 1] are clamped and NaN is treated as 0.
func Absolute(nx, ny float32) MouseMotion {
	return MouseMotion{Absolute: true, X: normalize(nx), Y: normalize(ny)}
}

// AbsoluteVirtual is Absolute mapped onto the whole virtual desktop.
func AbsoluteVirtual(nx, ny float32) MouseMotion {
	m := Absolute(nx, ny)
	m.VirtualDesk = true
	return m
}

func normalize(n float32) int32 {
	f := float64(n)
	switch {
	case math.IsNaN(f) || f <= 0:
		return 0
	case f >= 1:
		return AbsoluteMax
	}
	return int32(math.Round(f * AbsoluteMax))
}

func (m MouseMotion) record() Record {
	flags := mouseMove
	if m.Absolute {
		flags |= mouseAbsolute
		if m.VirtualDesk {
			flags |= mouseVirtualDesk
		}
	}
	return Record{Type: RecordMouse, Dx: m.X, Dy: m.Y, Flags: flags}
}
