package input

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Layout answers which key produces a character in the active keyboard
// layout. LookupChar returns the packed VkKeyScanEx word: the virtual key
// in the low byte and the shift state in the high byte, or -1 when no key
// produces ch.
type Layout interface {
	LookupChar(ch uint16) int16
}

// LayoutFunc adapts a function to Layout.
type LayoutFunc func(ch uint16) int16

func (f LayoutFunc) LookupChar(ch uint16) int16 { return f(ch) }

// Modifiers is the shift state needed to type a character.
type Modifiers uint8

const (
	ModShift   Modifiers = 0x01
	ModControl Modifiers = 0x02
	ModAlt     Modifiers = 0x04
	// ModHankaku and the bits above it select input methods that cannot be
	// reproduced with plain key events.
	ModHankaku Modifiers = 0x08

	modSupported = ModShift | ModControl | ModAlt
)

// modifierOrder is the press order; releases walk it backwards.
var modifierOrder = [...]struct {
	mod Modifiers
	vk  Vk
}{
	{ModShift, VkShift},
	{ModControl, VkControl},
	{ModAlt, VkAlt},
}

// ResolveChar maps ch to its virtual key and required modifiers.
func ResolveChar(l Layout, ch rune) (Vk, Modifiers, error) {
	if ch > 0xffff || !utf8.ValidRune(ch) {
		return 0, 0, &CharError{Char: ch}
	}
	packed := l.LookupChar(uint16(ch))
	if packed == -1 {
		return 0, 0, &CharError{Char: ch}
	}
	vk := Vk(uint16(packed) & 0xff)
	mods := Modifiers(uint16(packed) >> 8)
	if mods&^modSupported != 0 {
		return 0, 0, &CharError{Char: ch}
	}
	return vk, mods, nil
}

// Keylike is anything that can be pressed and released: virtual keys,
// characters and mouse buttons.
type Keylike interface {
	Inputs(l Layout, a Action) ([]Input, error)
}

// Inputs returns the single key event for v. The layout is not consulted.
func (v Vk) Inputs(_ Layout, a Action) ([]Input, error) {
	return []Input{FromVk(v, a)}, nil
}

// Inputs returns the single button event for b.
func (b Button) Inputs(_ Layout, a Action) ([]Input, error) {
	if !b.valid() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, b)
	}
	return []Input{FromButton(b, a)}, nil
}

// Char is a character typed through the active keyboard layout.
type Char rune

// Inputs resolves c and wraps its key event with the modifier events it
// needs. Presses go Shift, Control, Alt, key; releases go key, Alt,
// Control, Shift.
func (c Char) Inputs(l Layout, a Action) ([]Input, error) {
	vk, mods, err := ResolveChar(l, rune(c))
	if err != nil {
		return nil, err
	}
	out := make([]Input, 0, 4)
	if a == Press {
		for _, m := range modifierOrder {
			if mods&m.mod != 0 {
				out = append(out, FromVk(m.vk, Press))
			}
		}
		return append(out, FromVk(vk, Press)), nil
	}
	out = append(out, FromVk(vk, Release))
	for i := len(modifierOrder) - 1; i >= 0; i-- {
		if mods&modifierOrder[i].mod != 0 {
			out = append(out, FromVk(modifierOrder[i].vk, Release))
		}
	}
	return out, nil
}

func (c Char) String() string { return string(rune(c)) }

// ParseKeylike turns a user-supplied key spec into a Keylike. A single
// character is a Char, "mouse.<button>" is a Button and anything else is
// looked up as a virtual key name.
func ParseKeylike(s string) (Keylike, error) {
	if s == "" {
		return nil, fmt.Errorf("empty key")
	}
	if utf8.RuneCountInString(s) == 1 {
		r, _ := utf8.DecodeRuneInString(s)
		return Char(r), nil
	}
	if name, ok := strings.CutPrefix(strings.ToLower(s), "mouse."); ok {
		b, err := ParseButton(name)
		if err != nil {
			return nil, err
		}
		return b, nil
	}
	vk, err := ParseVk(s)
	if err != nil {
		return nil, err
	}
	return vk, nil
}
