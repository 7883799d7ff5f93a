package input

import (
	"fmt"
	"strings"
)

// Action distinguishes key/button presses from releases.
type Action uint8

const (
	Press Action = iota
	Release
)

func (a Action) String() string {
	if a == Release {
		return "release"
	}
	return "press"
}

func (a Action) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

func (a *Action) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "press", "down":
		*a = Press
	case "release", "up":
		*a = Release
	default:
		return fmt.Errorf("unknown action %q", b)
	}
	return nil
}

// Button is a mouse button.
type Button uint8

const (
	ButtonLeft Button = iota
	ButtonRight
	ButtonMiddle
	ButtonX1
	ButtonX2
)

var buttonNames = [...]string{"left", "right", "middle", "x1", "x2"}

func (b Button) String() string {
	if int(b) < len(buttonNames) {
		return buttonNames[b]
	}
	return fmt.Sprintf("Button(%d)", uint8(b))
}

// ParseButton resolves a button name case-insensitively.
func ParseButton(s string) (Button, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	for i, n := range buttonNames {
		if n == t {
			return Button(i), nil
		}
	}
	return 0, fmt.Errorf("unknown mouse button %q", s)
}

func (b Button) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *Button) UnmarshalText(t []byte) error {
	v, err := ParseButton(string(t))
	if err != nil {
		return err
	}
	*b = v
	return nil
}

func (b Button) valid() bool { return int(b) < len(buttonNames) }

// flags returns the MOUSEEVENTF flag and mouse data word for the button.
func (b Button) flags(a Action) (flags, data uint32) {
	switch b {
	case ButtonLeft:
		flags = mouseLeftDown
	case ButtonRight:
		flags = mouseRightDown
	case ButtonMiddle:
		flags = mouseMiddleDown
	case ButtonX1:
		flags, data = mouseXDown, xButton1
	case ButtonX2:
		flags, data = mouseXDown, xButton2
	}
	// each *UP flag is the matching *DOWN flag shifted left by one
	if a == Release {
		flags <<= 1
	}
	return flags, data
}

// WheelDirection selects the vertical or horizontal wheel.
type WheelDirection uint8

const (
	Vertical WheelDirection = iota
	Horizontal
)

func (d WheelDirection) String() string {
	if d == Horizontal {
		return "horizontal"
	}
	return "vertical"
}

func (d WheelDirection) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *WheelDirection) UnmarshalText(b []byte) error {
	switch strings.ToLower(string(b)) {
	case "vertical", "v", "":
		*d = Vertical
	case "horizontal", "h":
		*d = Horizontal
	default:
		return fmt.Errorf("unknown wheel direction %q", b)
	}
	return nil
}
