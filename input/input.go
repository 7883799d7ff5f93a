// Package input encodes keyboard and mouse actions into OS input records
// and injects them in batches.
//
// An Input is an immutable description of one injectable action. Inputs are
// built with the From* constructors, resolved from characters or keys through
// the Keylike interface, and sent with a Dispatcher, which turns a slice of
// inputs into a single injection call.
package input

import (
	"fmt"
	"math"
)

// Kind tags the variant held by an Input.
type Kind uint8

const (
	KindKeyboard Kind = iota
	KindMouseButton
	KindMouseMotion
	KindMouseWheel
)

var kindNames = [...]string{"keyboard", "button", "motion", "wheel"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

func (k Kind) MarshalText() ([]byte, error) {
	if int(k) >= len(kindNames) {
		return nil, fmt.Errorf("unknown input kind %d", uint8(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	for i, n := range kindNames {
		if n == string(b) {
			*k = Kind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown input kind %q", b)
}

// Input is one injectable keyboard or mouse action. Only the fields that
// belong to Kind are meaningful; the others stay zero so that equal actions
// compare equal.
type Input struct {
	Kind Kind

	// Keyboard
	Key      Vk
	Scan     uint16
	ScanCode bool // address the key by Scan instead of Key
	Extended bool
	Action   Action

	// Mouse button
	Button Button

	// Mouse motion
	Motion MouseMotion

	// Mouse wheel, in notches
	Delta     float32
	Direction WheelDirection
}

// FromVk returns a key press or release of vk.
func FromVk(vk Vk, a Action) Input {
	return Input{Kind: KindKeyboard, Key: vk, Extended: vk.Extended(), Action: a}
}

// FromScanCode returns a key press or release addressed by hardware scan
// code. Extended marks scan codes that carry the 0xE0 prefix.
func FromScanCode(scan uint16, extended bool, a Action) Input {
	return Input{Kind: KindKeyboard, Scan: scan, ScanCode: true, Extended: extended, Action: a}
}

// FromChar resolves ch through l and returns the key and modifier inputs
// needed to type it.
func FromChar(l Layout, ch rune, a Action) ([]Input, error) {
	return Char(ch).Inputs(l, a)
}

// FromMotion returns a pointer movement.
func FromMotion(m MouseMotion) Input {
	return Input{Kind: KindMouseMotion, Motion: m}
}

// FromButton returns a mouse button press or release.
func FromButton(b Button, a Action) Input {
	return Input{Kind: KindMouseButton, Button: b, Action: a}
}

// FromWheel returns a wheel rotation of delta notches. Positive values
// scroll up (vertical) or right (horizontal).
func FromWheel(delta float32, d WheelDirection) Input {
	return Input{Kind: KindMouseWheel, Delta: delta, Direction: d}
}

// Validate rejects inputs that have no OS encoding: an unknown Kind, or a
// button input naming an unknown Button.
func (in Input) Validate() error {
	switch {
	case int(in.Kind) >= len(kindNames):
		return fmt.Errorf("%w: %s", ErrInvalidInput, in.Kind)
	case in.Kind == KindMouseButton && !in.Button.valid():
		return fmt.Errorf("%w: %s", ErrInvalidInput, in.Button)
	}
	return nil
}

// Record encodes the input into the OS record layout. It panics for an
// input that fails Validate.
func (in Input) Record() Record {
	switch in.Kind {
	case KindKeyboard:
		r := Record{Type: RecordKeyboard}
		if in.ScanCode {
			r.Scan = in.Scan
			r.Flags |= keyScanCode
		} else {
			r.Vk = in.Key.Raw()
		}
		if in.Extended {
			r.Flags |= keyExtended
		}
		if in.Action == Release {
			r.Flags |= keyUp
		}
		return r
	case KindMouseButton:
		if !in.Button.valid() {
			break
		}
		flags, data := in.Button.flags(in.Action)
		return Record{Type: RecordMouse, MouseData: data, Flags: flags}
	case KindMouseMotion:
		return in.Motion.record()
	case KindMouseWheel:
		flags := mouseWheel
		if in.Direction == Horizontal {
			flags = mouseHWheel
		}
		return Record{Type: RecordMouse, MouseData: uint32(wheelData(in.Delta)), Flags: flags}
	}
	panic(fmt.Sprintf("input: cannot encode %v", in.Kind))
}

func (in Input) String() string {
	switch in.Kind {
	case KindKeyboard:
		if in.ScanCode {
			return fmt.Sprintf("key scan 0x%02x %s", in.Scan, in.Action)
		}
		return fmt.Sprintf("key %s %s", in.Key, in.Action)
	case KindMouseButton:
		return fmt.Sprintf("button %s %s", in.Button, in.Action)
	case KindMouseMotion:
		if in.Motion.Absolute {
			return fmt.Sprintf("move to %d,%d", in.Motion.X, in.Motion.Y)
		}
		return fmt.Sprintf("move by %d,%d", in.Motion.X, in.Motion.Y)
	case KindMouseWheel:
		return fmt.Sprintf("wheel %s %g", in.Direction, in.Delta)
	}
	return in.Kind.String()
}

// wheelData scales notches to OS wheel units, truncating toward zero and
// saturating at the int32 range.
func wheelData(delta float32) int32 {
	v := math.Trunc(float64(delta) * WheelDelta)
	switch {
	case math.IsNaN(v):
		return 0
	case v > math.MaxInt32:
		return math.MaxInt32
	case v < math.MinInt32:
		return math.MinInt32
	}
	return int32(v)
}
